package connector

import "fmt"

// ConnectionStats represents database connection pool statistics.
type ConnectionStats struct {
	OpenConnections int `json:"open_connections" yaml:"open_connections"`
	InUse           int `json:"in_use" yaml:"in_use"`
	Idle            int `json:"idle" yaml:"idle"`
}

func (s ConnectionStats) String() string {
	return fmt.Sprintf("open=%d in_use=%d idle=%d", s.OpenConnections, s.InUse, s.Idle)
}
