package config

import (
	"fmt"
)

func (c *Config) validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	if (c.Server.TLSCert != "") != (c.Server.TLSKey != "") {
		return fmt.Errorf("both TLS cert and key must be provided")
	}
	if c.Database.Port < 1 || c.Database.Port > 65535 {
		return fmt.Errorf("invalid database port: %d", c.Database.Port)
	}
	if c.Database.MaxOpenConns < 1 {
		return fmt.Errorf("invalid max open connections: %d", c.Database.MaxOpenConns)
	}
	if c.Database.MaxIdleConns < 1 {
		return fmt.Errorf("invalid max idle connections: %d", c.Database.MaxIdleConns)
	}
	if c.Redis.Addr == "" {
		return fmt.Errorf("redis address is required")
	}
	if c.Link.Port < 1 || c.Link.Port > 65535 {
		return fmt.Errorf("invalid printer link port: %d", c.Link.Port)
	}
	if c.Link.Username == "" {
		return fmt.Errorf("printer link username is required")
	}
	for name, l := range map[string]Limit{
		"apiRequests":   c.RateLimit.APIRequests,
		"statusPolls":   c.RateLimit.StatusPolls,
		"wsConnections": c.RateLimit.WSConnections,
	} {
		if l.Rate < 1 || l.Period <= 0 {
			return fmt.Errorf("invalid rate limit %q: rate=%d period=%s", name, l.Rate, l.Period)
		}
	}
	return nil
}
