// Package database opens and tunes SQL connection pools for the drivers
// Vessel ships with: mysql, postgres, and sqlite3.
package database

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

// Config describes a database connection. When DSN is set it is used
// verbatim and the host fields are ignored.
type Config struct {
	Driver   string
	Host     string
	Port     int
	Name     string
	Username string
	Password string
	DSN      string

	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
}

// Defaults returns a Config with conservative pool settings for a local
// sqlite database.
func Defaults() Config {
	return Config{
		Driver:          "sqlite3",
		Name:            ":memory:",
		MaxOpenConns:    25,
		MaxIdleConns:    5,
		ConnMaxLifetime: 5 * time.Minute,
		ConnMaxIdleTime: time.Minute,
	}
}

// DataSourceName builds the driver-specific DSN.
func (c Config) DataSourceName() (string, error) {
	if c.DSN != "" {
		return c.DSN, nil
	}
	switch c.Driver {
	case "mysql":
		return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true",
			c.Username, c.Password, c.Host, c.Port, c.Name), nil
	case "postgres":
		return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
			c.Username, c.Password, c.Host, c.Port, c.Name), nil
	case "sqlite3":
		if c.Name == "" {
			return ":memory:", nil
		}
		return c.Name, nil
	default:
		return "", fmt.Errorf("unsupported database driver: %q", c.Driver)
	}
}

// Open connects with the configured driver, applies pool tuning, and
// verifies the connection with a ping.
func Open(c Config) (*sql.DB, error) {
	dsn, err := c.DataSourceName()
	if err != nil {
		return nil, err
	}
	db, err := sql.Open(c.Driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", c.Driver, err)
	}
	if c.MaxOpenConns > 0 {
		db.SetMaxOpenConns(c.MaxOpenConns)
	}
	if c.MaxIdleConns > 0 {
		db.SetMaxIdleConns(c.MaxIdleConns)
	}
	if c.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(c.ConnMaxLifetime)
	}
	if c.ConnMaxIdleTime > 0 {
		db.SetConnMaxIdleTime(c.ConnMaxIdleTime)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping %s: %w", c.Driver, err)
	}
	return db, nil
}
