package config

import (
	"os"
	"strconv"
)

// Get reads an environment variable, falling back to defaultValue when
// it is unset or empty. Used to override file-based settings, secrets
// in particular, from the environment.
func Get(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func GetInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	parsed, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return parsed
}
