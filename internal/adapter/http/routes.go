package http

import (
	"net/http"
	"time"

	"tier0-lending/internal/adapter/middleware"
	"tier0-lending/internal/domain/asset"
	"tier0-lending/internal/usecase/lending"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

type Deps struct {
	Lending   *lending.Usecase
	Ledger    asset.Ledger
	JWTSecret []byte

	// Redis enables idempotent replays of mutating routes when set.
	Redis          *redis.Client
	IdempotencyTTL time.Duration

	Checks  []Check
	Metrics http.Handler // defaults to the global prometheus registry
	Log     logrus.FieldLogger
}

func RegisterRoutes(e *echo.Echo, d Deps) {
	if e.Validator == nil {
		e.Validator = NewValidator()
	}
	if d.Metrics == nil {
		d.Metrics = promhttp.Handler()
	}
	if d.Log == nil {
		d.Log = logrus.StandardLogger()
	}

	auth := []echo.MiddlewareFunc{middleware.JWTAuth(d.JWTSecret)}
	mutating := auth
	if d.Redis != nil {
		ttl := d.IdempotencyTTL
		if ttl <= 0 {
			ttl = 5 * time.Minute
		}
		mutating = append(append([]echo.MiddlewareFunc{}, auth...), middleware.IdempotencyMiddleware(d.Redis, ttl, d.Log))
	}
	// role is checked before a refused request can claim an idempotency key
	operatorOnly := append([]echo.MiddlewareFunc{}, auth...)
	operatorOnly = append(operatorOnly, middleware.RequireRole(middleware.RoleOperator))
	operatorOnly = append(operatorOnly, mutating[len(auth):]...)

	h := NewHandler(d.Checks...)
	ph := NewPoolHandler(d.Lending)
	lh := NewLoanHandler(d.Lending)
	bh := NewBorrowerHandler(d.Lending)

	e.GET("/health", h.Health)
	e.GET("/metrics", echo.WrapHandler(d.Metrics))

	e.GET("/pool/params", ph.Params)
	e.GET("/pool/stats", ph.Stats)
	e.POST("/pool/liquidity/deposit", ph.Deposit, operatorOnly...)
	e.POST("/pool/liquidity/withdraw", ph.Withdraw, operatorOnly...)

	e.POST("/loans", lh.RequestLoan, mutating...)
	e.GET("/loans/:loan_id", lh.GetLoan)
	e.POST("/loans/:loan_id/repay", lh.Repay, mutating...)
	e.POST("/loans/:loan_id/default", lh.MarkDefault, mutating...)

	e.GET("/borrowers/:address/eligibility", bh.Eligibility)
	e.GET("/borrowers/:address/blacklisted", bh.Blacklisted)
	e.GET("/borrowers/:address/loans", bh.Loans)

	if d.Ledger != nil {
		ah := NewAssetHandler(d.Ledger, d.Lending.PoolAddress(), d.Lending.OperatorAddress())
		e.GET("/asset/balances/:address", ah.Balance)
		e.POST("/asset/approve", ah.Approve, mutating...)
		e.POST("/asset/mint", ah.Mint, operatorOnly...)
	}
}
