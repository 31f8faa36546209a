package http

import (
	"errors"
	"net/http"

	"tier0-lending/internal/domain/asset"
	"tier0-lending/internal/domain/loan"

	"github.com/labstack/echo/v4"
)

var statusTable = []struct {
	err    error
	status int
}{
	{loan.ErrUnauthorized, http.StatusForbidden},
	{loan.ErrNotBorrower, http.StatusForbidden},
	{loan.ErrAmountOutOfRange, http.StatusUnprocessableEntity},
	{loan.ErrInvalidAmount, http.StatusUnprocessableEntity},
	{loan.ErrInvalidAddress, http.StatusUnprocessableEntity},
	{loan.ErrNotFound, http.StatusNotFound},
	{loan.ErrBlacklisted, http.StatusConflict},
	{loan.ErrActiveLoanExists, http.StatusConflict},
	{loan.ErrInsufficientLiquidity, http.StatusConflict},
	{loan.ErrInsufficientBalance, http.StatusConflict},
	{loan.ErrAlreadyRepaid, http.StatusConflict},
	{loan.ErrAlreadyDefaulted, http.StatusConflict},
	{loan.ErrNotPastDue, http.StatusConflict},
	{loan.ErrReentrantCall, http.StatusConflict},
	{loan.ErrAmountOverflow, http.StatusConflict},
	// checked before the raw ledger errors it wraps
	{loan.ErrTransferFailed, http.StatusPaymentRequired},
	{asset.ErrInvalidAmount, http.StatusUnprocessableEntity},
	{asset.ErrInvalidAccount, http.StatusUnprocessableEntity},
	{asset.ErrInsufficientFunds, http.StatusConflict},
	{asset.ErrInsufficientAllowance, http.StatusConflict},
}

func statusFor(err error) int {
	for _, s := range statusTable {
		if errors.Is(err, s.err) {
			return s.status
		}
	}
	return http.StatusInternalServerError
}

// writeError renders a usecase or ledger error. Unknown errors are not echoed
// to the client.
func writeError(c echo.Context, err error) error {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		c.Logger().Errorf("%s %s: %v", c.Request().Method, c.Path(), err)
		return c.JSON(status, ErrorResponse{Error: "internal error", Reason: "internal"})
	}
	reason := loan.Reason(err)
	if reason == "internal" {
		reason = "ledger_rejected"
	}
	return c.JSON(status, ErrorResponse{Error: err.Error(), Reason: reason})
}

func badRequest(c echo.Context, msg string, details []FieldError) error {
	return c.JSON(http.StatusBadRequest, ErrorResponse{Error: msg, Details: details})
}
