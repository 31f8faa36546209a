// Command devtoken prints a bearer token for local testing of the API.
//
//	devtoken -sub 0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed -role operator
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/sirupsen/logrus"

	"tier0-lending/internal/adapter/middleware"
	"tier0-lending/internal/config"
)

func main() {
	cfg := config.Load()

	sub := flag.String("sub", cfg.OperatorAddress, "caller address")
	role := flag.String("role", "", `optional role claim, e.g. "operator"`)
	ttl := flag.Duration("ttl", 24*time.Hour, "token lifetime")
	flag.Parse()

	if cfg.JWTSecret == "" {
		logrus.Fatal("JWT_SECRET is not set")
	}
	tok, err := middleware.SignToken([]byte(cfg.JWTSecret), *sub, *role, *ttl)
	if err != nil {
		logrus.WithError(err).WithField("sub", *sub).Fatal("sign token")
	}
	fmt.Fprintln(os.Stdout, tok)
}
