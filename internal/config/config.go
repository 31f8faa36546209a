package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"

	"tier0-lending/pkg/address"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
)

const (
	DriverMySQL    = "mysql"
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"

	LedgerMemory = "memory"
	LedgerRedis  = "redis"
)

type Config struct {
	AppPort string

	DBDriver    string
	MySQLHost   string
	MySQLPort   string
	MySQLDB     string
	MySQLUser   string
	MySQLPass   string
	PostgresDSN string
	SQLitePath  string

	// empty RedisAddr disables idempotency and the redis ledger
	RedisAddr string
	RedisDB   int

	IdempTTLSecs int

	LedgerBackend string
	AssetSymbol   string

	JWTSecret       string
	OperatorAddress string
	PoolAddress     string

	SweepSchedule string
	SweepBatch    int

	LogLevel  string
	LogFormat string
}

func getenv(k, d string) string {
	if v := strings.TrimSpace(os.Getenv(k)); v != "" {
		return v
	}
	return d
}

func getint(k string, d int) int {
	if v := os.Getenv(k); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return d
}

// Load reads the environment after merging the given dotenv files (".env"
// when none are named). Variables already set in the process win, and a
// missing file is not an error.
func Load(files ...string) *Config {
	_ = godotenv.Load(files...)

	return &Config{
		AppPort: getenv("APP_PORT", "8080"),

		DBDriver:    strings.ToLower(getenv("DB_DRIVER", DriverSQLite)),
		MySQLHost:   getenv("MYSQL_HOST", "mysql"),
		MySQLPort:   getenv("MYSQL_PORT", "3306"),
		MySQLDB:     getenv("MYSQL_DB", "tier0"),
		MySQLUser:   getenv("MYSQL_USER", "tier0"),
		MySQLPass:   getenv("MYSQL_PASS", "tier0"),
		PostgresDSN: getenv("POSTGRES_DSN", ""),
		SQLitePath:  getenv("SQLITE_PATH", "tier0.db"),

		RedisAddr:    getenv("REDIS_ADDR", ""),
		RedisDB:      getint("REDIS_DB", 0),
		IdempTTLSecs: getint("IDEMPOTENCY_TTL_SECONDS", 300),

		LedgerBackend: strings.ToLower(getenv("LEDGER_BACKEND", LedgerMemory)),
		AssetSymbol:   strings.ToLower(getenv("ASSET_SYMBOL", "usdc")),

		JWTSecret:       getenv("JWT_SECRET", ""),
		OperatorAddress: getenv("OPERATOR_ADDRESS", ""),
		PoolAddress:     getenv("POOL_ADDRESS", ""),

		SweepSchedule: getenv("SWEEP_SCHEDULE", ""),
		SweepBatch:    getint("SWEEP_BATCH", 100),

		LogLevel:  getenv("LOG_LEVEL", "info"),
		LogFormat: strings.ToLower(getenv("LOG_FORMAT", "json")),
	}
}

func (c *Config) Validate() error {
	if c.AppPort == "" {
		return errors.New("missing APP_PORT")
	}
	switch c.DBDriver {
	case DriverMySQL:
		if c.MySQLHost == "" || c.MySQLPort == "" || c.MySQLDB == "" || c.MySQLUser == "" {
			return errors.New("missing MySQL config (MYSQL_HOST/PORT/DB/USER)")
		}
		// ensure port is valid
		if _, err := net.LookupPort("tcp", c.MySQLPort); err != nil {
			return fmt.Errorf("invalid MYSQL_PORT %q: %w", c.MySQLPort, err)
		}
	case DriverPostgres:
		if c.PostgresDSN == "" {
			return errors.New("missing POSTGRES_DSN")
		}
	case DriverSQLite:
		if c.SQLitePath == "" {
			return errors.New("missing SQLITE_PATH")
		}
	default:
		return fmt.Errorf("unknown DB_DRIVER %q", c.DBDriver)
	}

	switch c.LedgerBackend {
	case LedgerMemory:
	case LedgerRedis:
		if c.RedisAddr == "" {
			return errors.New("LEDGER_BACKEND=redis requires REDIS_ADDR")
		}
	default:
		return fmt.Errorf("unknown LEDGER_BACKEND %q", c.LedgerBackend)
	}

	if c.JWTSecret == "" {
		return errors.New("missing JWT_SECRET")
	}
	if !address.Valid(c.OperatorAddress) {
		return fmt.Errorf("invalid OPERATOR_ADDRESS %q", c.OperatorAddress)
	}
	if !address.Valid(c.PoolAddress) {
		return fmt.Errorf("invalid POOL_ADDRESS %q", c.PoolAddress)
	}
	if address.Equal(c.OperatorAddress, c.PoolAddress) {
		return errors.New("OPERATOR_ADDRESS and POOL_ADDRESS must differ")
	}
	if c.SweepSchedule != "" {
		if _, err := cron.ParseStandard(c.SweepSchedule); err != nil {
			return fmt.Errorf("invalid SWEEP_SCHEDULE %q: %w", c.SweepSchedule, err)
		}
	}
	if c.IdempTTLSecs <= 0 {
		return fmt.Errorf("invalid IDEMPOTENCY_TTL_SECONDS %d", c.IdempTTLSecs)
	}
	return nil
}

func (c *Config) mysqlAddr() string { return net.JoinHostPort(c.MySQLHost, c.MySQLPort) }

func (c *Config) MySQLDSN() string {
	// parseTime needed for DATETIME
	return fmt.Sprintf("%s:%s@tcp(%s)/%s?parseTime=true&loc=UTC&charset=utf8mb4",
		c.MySQLUser, c.MySQLPass, c.mysqlAddr(), c.MySQLDB)
}

// DSN returns the connection string for the configured driver.
func (c *Config) DSN() string {
	switch c.DBDriver {
	case DriverMySQL:
		return c.MySQLDSN()
	case DriverPostgres:
		return c.PostgresDSN
	default:
		return c.SQLitePath
	}
}
