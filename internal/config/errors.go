package config

import "fmt"

// ConfigurationError reports a merchant setting that is missing or unusable.
type ConfigurationError struct {
	Setting string
	Reason  string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("config: %s: %s", e.Setting, e.Reason)
}
