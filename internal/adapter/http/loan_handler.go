package http

import (
	"net/http"

	"tier0-lending/internal/usecase/lending"

	"github.com/labstack/echo/v4"
)

type LoanHandler struct{ uc *lending.Usecase }

func NewLoanHandler(uc *lending.Usecase) *LoanHandler { return &LoanHandler{uc: uc} }

func (h *LoanHandler) RequestLoan(c echo.Context) error {
	amount, ok, err := bindAmount(c)
	if !ok {
		return err
	}
	dto, err := h.uc.RequestLoan(c.Request().Context(), caller(c), amount)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, dto)
}

func (h *LoanHandler) GetLoan(c echo.Context) error {
	id, ok, err := loanIDParam(c)
	if !ok {
		return err
	}
	dto, err := h.uc.GetLoan(c.Request().Context(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}

func (h *LoanHandler) Repay(c echo.Context) error {
	id, ok, err := loanIDParam(c)
	if !ok {
		return err
	}
	dto, err := h.uc.RepayLoan(c.Request().Context(), caller(c), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}

// MarkDefault is open to any authenticated caller.
func (h *LoanHandler) MarkDefault(c echo.Context) error {
	id, ok, err := loanIDParam(c)
	if !ok {
		return err
	}
	dto, err := h.uc.MarkDefault(c.Request().Context(), caller(c), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}
