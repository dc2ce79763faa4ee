package monitor

import "time"

// Component reports one dependency. Disabled components never affect health.
type Component struct {
	Enabled bool `json:"enabled"`
	Online  bool `json:"online"`
}

func (c Component) healthy() bool {
	return !c.Enabled || c.Online
}

type Status struct {
	PostgreSQL Component `json:"postgresql"`
	Redis      Component `json:"redis"`
	Buffer     Component `json:"buffer"`
	BufferSize int       `json:"buffer_size"`
	LastCheck  time.Time `json:"last_check"`
}

// Healthy reports whether every enabled dependency is online.
func (s Status) Healthy() bool {
	return s.PostgreSQL.healthy() && s.Redis.healthy() && s.Buffer.healthy()
}
