package db

import (
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Dialector picks the gorm driver for one of "mysql", "postgres", "sqlite".
func Dialector(driver, dsn string) (gorm.Dialector, error) {
	switch driver {
	case "mysql":
		return mysql.Open(dsn), nil
	case "postgres":
		return postgres.Open(dsn), nil
	case "sqlite":
		return sqlite.Open(dsn), nil
	}
	return nil, fmt.Errorf("db: unsupported driver %q", driver)
}

func OpenGorm(driver, dsn string, log *logrus.Logger) (*gorm.DB, error) {
	dial, err := Dialector(driver, dsn)
	if err != nil {
		return nil, err
	}
	db, err := OpenGormWithDialector(dial, gormLogLevel(log))
	if err != nil {
		return nil, err
	}
	if driver == "sqlite" {
		// sqlite allows a single writer; keep one connection so the pool
		// never queues writers behind a busy file lock
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		sqlDB.SetMaxOpenConns(1)
	}
	if log != nil {
		log.WithField("driver", driver).Info("gorm: connected")
	}
	return db, nil
}

// OpenGormWithDialector opens, sizes the pool and pings. An optional level
// overrides the default warn-level gorm logger.
func OpenGormWithDialector(dial gorm.Dialector, level ...logger.LogLevel) (*gorm.DB, error) {
	lvl := logger.Warn
	if len(level) > 0 {
		lvl = level[0]
	}
	cfg := &gorm.Config{
		Logger:               logger.Default.LogMode(lvl),
		NowFunc:              func() time.Time { return time.Now().UTC() },
		DisableAutomaticPing: true,
	}
	db, err := gorm.Open(dial, cfg)
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(30)
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)
	sqlDB.SetConnMaxIdleTime(10 * time.Minute)

	if err := sqlDB.Ping(); err != nil {
		return nil, err
	}
	return db, nil
}

func gormLogLevel(log *logrus.Logger) logger.LogLevel {
	if log == nil {
		return logger.Warn
	}
	switch {
	case log.IsLevelEnabled(logrus.DebugLevel):
		return logger.Info
	case log.IsLevelEnabled(logrus.WarnLevel):
		return logger.Warn
	default:
		return logger.Error
	}
}
