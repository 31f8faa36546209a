package http

import (
	"strconv"

	"tier0-lending/internal/adapter/middleware"
	"tier0-lending/pkg/address"

	"github.com/labstack/echo/v4"
)

type amountReq struct {
	// pointer so a missing field is told apart from an explicit zero
	Amount *uint64 `json:"amount" validate:"required"`
}

type addressParam struct {
	Address string `json:"address" validate:"required,evmaddr"`
}

// bindAmount decodes and validates {"amount": n}. On failure the 400 has
// already been written and ok is false.
func bindAmount(c echo.Context) (amount uint64, ok bool, err error) {
	var req amountReq
	if err := c.Bind(&req); err != nil {
		return 0, false, badRequest(c, "invalid body", nil)
	}
	if err := c.Validate(&req); err != nil {
		return 0, false, badRequest(c, "validation failed", ToFieldErrors(err))
	}
	return *req.Amount, true, nil
}

func loanIDParam(c echo.Context) (uint64, bool, error) {
	id, err := strconv.ParseUint(c.Param("loan_id"), 10, 64)
	if err != nil {
		return 0, false, badRequest(c, "invalid loan id", []FieldError{{Field: "loan_id", Message: "must be an unsigned integer"}})
	}
	return id, true, nil
}

func addressPathParam(c echo.Context) (string, bool, error) {
	p := addressParam{Address: c.Param("address")}
	if err := c.Validate(&p); err != nil {
		return "", false, badRequest(c, "validation failed", ToFieldErrors(err))
	}
	who, _ := address.Normalize(p.Address)
	return who, true, nil
}

func caller(c echo.Context) string { return middleware.CallerFrom(c) }
