package config

import "time"

type Session struct{}

var _ SessionConfig = Session{}

// GetRefreshWindow is how close to expiry an access token may get before it is refreshed proactively
func (Session) GetRefreshWindow() time.Duration {
	return getDuration("QLVS_REFRESH_WINDOW", 2*time.Minute)
}

func (Session) GetRequestTimeout() time.Duration {
	return getDuration("QLVS_REQUEST_TIMEOUT", 30*time.Second)
}

func (Session) GetKeepAliveInterval() time.Duration {
	return getDuration("QLVS_KEEPALIVE_INTERVAL", 30*time.Second)
}
