package config

import "time"

func (c *Config) JWTKey() []byte {
	return []byte(c.JWTSecret)
}

func (c *Config) JWTExpiration() time.Duration {
	return time.Duration(c.JWTExpirationHours) * time.Hour
}
