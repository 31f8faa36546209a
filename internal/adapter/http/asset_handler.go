package http

import (
	"net/http"

	"tier0-lending/internal/domain/asset"
	"tier0-lending/internal/domain/loan"
	"tier0-lending/pkg/address"

	"github.com/labstack/echo/v4"
)

// AssetHandler exposes the local development ledger: approvals, balances and
// an operator-only faucet.
type AssetHandler struct {
	ledger   asset.Ledger
	minter   asset.Minter // nil disables the faucet
	pool     string
	operator string
}

func NewAssetHandler(l asset.Ledger, pool, operator string) *AssetHandler {
	h := &AssetHandler{ledger: l, pool: pool, operator: operator}
	if m, ok := l.(asset.Minter); ok {
		h.minter = m
	}
	return h
}

type approveReq struct {
	Spender string  `json:"spender" validate:"omitempty,evmaddr"`
	Amount  *uint64 `json:"amount" validate:"required"`
}

type mintReq struct {
	To     string  `json:"to" validate:"required,evmaddr"`
	Amount *uint64 `json:"amount" validate:"required"`
}

// Approve sets the caller's allowance for spender, the pool when omitted.
func (h *AssetHandler) Approve(c echo.Context) error {
	var req approveReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body", nil)
	}
	if err := c.Validate(&req); err != nil {
		return badRequest(c, "validation failed", ToFieldErrors(err))
	}
	spender := h.pool
	if req.Spender != "" {
		spender, _ = address.Normalize(req.Spender)
	}
	owner := caller(c)
	ctx := c.Request().Context()
	if err := h.ledger.Approve(ctx, owner, spender, *req.Amount); err != nil {
		return writeError(c, err)
	}
	allowance, err := h.ledger.Allowance(ctx, owner, spender)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{"owner": owner, "spender": spender, "allowance": allowance})
}

func (h *AssetHandler) Balance(c echo.Context) error {
	who, ok, err := addressPathParam(c)
	if !ok {
		return err
	}
	bal, err := h.ledger.BalanceOf(c.Request().Context(), who)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{"address": who, "balance": bal})
}

func (h *AssetHandler) Mint(c echo.Context) error {
	if h.minter == nil {
		return c.JSON(http.StatusNotImplemented, ErrorResponse{Error: "ledger does not support minting"})
	}
	if !address.Equal(caller(c), h.operator) {
		return writeError(c, loan.ErrUnauthorized)
	}
	var req mintReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body", nil)
	}
	if err := c.Validate(&req); err != nil {
		return badRequest(c, "validation failed", ToFieldErrors(err))
	}
	to, _ := address.Normalize(req.To)
	ctx := c.Request().Context()
	if err := h.minter.Mint(ctx, to, *req.Amount); err != nil {
		return writeError(c, err)
	}
	bal, err := h.ledger.BalanceOf(ctx, to)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{"address": to, "balance": bal})
}
