// Package config reads binary settings from the environment.
package config

import (
	"log"
	"os"
	"strconv"
)

// GetEnv returns the value of the environment variable named by the key,
// or fallback if the variable is not set.
func GetEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

// GetEnvInt is GetEnv for integers. A value that does not parse is logged
// and the fallback is used.
func GetEnvInt(key string, fallback int) int {
	value, ok := os.LookupEnv(key)
	if !ok || value == "" {
		return fallback
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		log.Printf("config: %s=%q is not a number, using %d", key, value, fallback)
		return fallback
	}
	return n
}

// GetEnvBool is GetEnv for booleans ("1", "true", "yes" and friends).
func GetEnvBool(key string, fallback bool) bool {
	value, ok := os.LookupEnv(key)
	if !ok || value == "" {
		return fallback
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		switch value {
		case "yes", "on":
			return true
		case "no", "off":
			return false
		}
		log.Printf("config: %s=%q is not a bool, using %v", key, value, fallback)
		return fallback
	}
	return b
}
