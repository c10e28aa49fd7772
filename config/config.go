// Package config provides Vessel's configuration layer: an environment
// helper backed by .env files and a directory-backed Repository looked up by
// dotted path.
package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// LoadEnv reads the given .env files into the process environment (defaults
// to ".env"). Missing files are not an error: production deployments set
// real environment variables instead.
func LoadEnv(files ...string) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	_ = godotenv.Load(files...)
}

// Env returns an environment value, falling back to fallback when unset or
// empty.
func Env(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// EnvInt returns an integer environment value.
func EnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return i
}

// EnvBool returns a boolean environment value.
func EnvBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}
