package http

import (
	"net/http"

	"tier0-lending/internal/usecase/lending"

	"github.com/labstack/echo/v4"
)

type PoolHandler struct{ uc *lending.Usecase }

func NewPoolHandler(uc *lending.Usecase) *PoolHandler { return &PoolHandler{uc: uc} }

func (h *PoolHandler) Params(c echo.Context) error {
	return c.JSON(http.StatusOK, h.uc.Params())
}

func (h *PoolHandler) Stats(c echo.Context) error {
	dto, err := h.uc.GetStats(c.Request().Context())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}

func (h *PoolHandler) Deposit(c echo.Context) error {
	amount, ok, err := bindAmount(c)
	if !ok {
		return err
	}
	dto, err := h.uc.DepositLiquidity(c.Request().Context(), caller(c), amount)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}

func (h *PoolHandler) Withdraw(c echo.Context) error {
	amount, ok, err := bindAmount(c)
	if !ok {
		return err
	}
	dto, err := h.uc.WithdrawLiquidity(c.Request().Context(), caller(c), amount)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}
