package config

import "log"

func MustNonEmpty(value, envName string) {
	if value == "" {
		log.Fatalf("missing required env %s", envName)
	}
}

func MustValid(c Config) {
	if err := c.Validate(); err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}
}
