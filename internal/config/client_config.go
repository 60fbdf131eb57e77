package config

import "time"

type ClientConfig interface {
	GetRequestTimeout() time.Duration
	GetLoginTimeout() time.Duration
	GetLogoutTimeout() time.Duration
}

type Client struct{}

var _ ClientConfig = Client{}

func (Client) GetRequestTimeout() time.Duration {
	return 15 * time.Second
}

func (Client) GetLoginTimeout() time.Duration {
	return 10 * time.Second
}

// GetLogoutTimeout bounds the best-effort server-side logout call.
// Local teardown never waits on it longer than this.
func (Client) GetLogoutTimeout() time.Duration {
	return 5 * time.Second
}
