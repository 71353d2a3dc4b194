// config_keys.go provides key-value access to configuration settings.
//
// Separated from config.go to isolate the key enumeration and string-based
// get/set logic. This separation allows config.go to focus on YAML structure
// and loading, while this file handles the CLI interface where config is
// accessed by string keys (e.g., "csv.delimiter").
//
// Design: Pointers are used for optional fields so we can distinguish between
// "not set" (nil) and "explicitly set to zero/false". This enables proper
// defaulting - we only apply defaults when the user hasn't set a value.

package config

import (
	"fmt"
	"slices"
	"strconv"
)

// ValidKeys returns all valid configuration keys.
func ValidKeys() []string {
	return []string{
		"csv.delimiter", "csv.header", "csv.encoding",
		"limits.max_file_size",
	}
}

// IsValidKey returns true if the key is a valid configuration key.
func IsValidKey(key string) bool {
	return slices.Contains(ValidKeys(), key)
}

// Get returns the value of a configuration key as a string.
func (c *Config) Get(key string) (string, error) {
	switch key {
	case "csv.delimiter":
		return string(c.Delimiter()), nil
	case "csv.header":
		return strconv.FormatBool(c.Header()), nil
	case "csv.encoding":
		return c.Encoding(), nil
	case "limits.max_file_size":
		return strconv.FormatInt(c.MaxFileSize(), 10), nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnknownKey, key)
	}
}

// Set sets the value of a configuration key.
func (c *Config) Set(key, value string) error {
	switch key {
	case "csv.delimiter":
		c.CSV.Delimiter = &value
	case "csv.header":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("%w: csv.header must be true or false, got %q", ErrInvalidValue, value)
		}
		c.CSV.Header = &b
	case "csv.encoding":
		c.CSV.Encoding = &value
	case "limits.max_file_size":
		n, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return fmt.Errorf("%w: limits.max_file_size must be an integer, got %q", ErrInvalidValue, value)
		}
		c.Limits.MaxFileSize = &n
	default:
		return fmt.Errorf("%w: %s", ErrUnknownKey, key)
	}
	return c.Validate()
}

// All returns every configuration key with its effective value, in the
// order of ValidKeys.
func (c *Config) All() []KeyValue {
	kvs := make([]KeyValue, 0, len(ValidKeys()))
	for _, k := range ValidKeys() {
		v, _ := c.Get(k)
		kvs = append(kvs, KeyValue{Key: k, Value: v})
	}
	return kvs
}

// KeyValue is a single configuration entry.
type KeyValue struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// Unset clears a configuration key back to its default.
func (c *Config) Unset(key string) error {
	switch key {
	case "csv.delimiter":
		c.CSV.Delimiter = nil
	case "csv.header":
		c.CSV.Header = nil
	case "csv.encoding":
		c.CSV.Encoding = nil
	case "limits.max_file_size":
		c.Limits.MaxFileSize = nil
	default:
		return fmt.Errorf("%w: %s", ErrUnknownKey, key)
	}
	return nil
}
