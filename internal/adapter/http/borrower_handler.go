package http

import (
	"net/http"

	"tier0-lending/internal/usecase/lending"

	"github.com/labstack/echo/v4"
)

type BorrowerHandler struct{ uc *lending.Usecase }

func NewBorrowerHandler(uc *lending.Usecase) *BorrowerHandler { return &BorrowerHandler{uc: uc} }

func (h *BorrowerHandler) Eligibility(c echo.Context) error {
	who, ok, err := addressPathParam(c)
	if !ok {
		return err
	}
	dto, err := h.uc.GetBorrower(c.Request().Context(), who)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}

func (h *BorrowerHandler) Blacklisted(c echo.Context) error {
	who, ok, err := addressPathParam(c)
	if !ok {
		return err
	}
	bl, err := h.uc.IsBlacklisted(c.Request().Context(), who)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{"address": who, "blacklisted": bl})
}

func (h *BorrowerHandler) Loans(c echo.Context) error {
	who, ok, err := addressPathParam(c)
	if !ok {
		return err
	}
	ids, err := h.uc.GetBorrowerLoans(c.Request().Context(), who)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{"address": who, "loan_ids": ids})
}
