package connector

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

var globalManager = &Manager{
	providers: make(map[string]Provider),
}

// Manager is the provider registry.
type Manager struct {
	providers map[string]Provider
	mu        sync.RWMutex
}

// Register makes provider available under name. Registering a name twice
// replaces the earlier provider.
func Register(name string, provider Provider) {
	globalManager.mu.Lock()
	defer globalManager.mu.Unlock()
	globalManager.providers[name] = provider
}

// Providers lists registered provider names in sorted order.
func Providers() []string {
	globalManager.mu.RLock()
	defer globalManager.mu.RUnlock()

	names := make([]string, 0, len(globalManager.providers))
	for name := range globalManager.providers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// New returns a Connector for the named provider. No connection is made
// until Connect.
func New(name string, config Config) (Connector, error) {
	globalManager.mu.RLock()
	provider, ok := globalManager.providers[name]
	globalManager.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("provider %s not registered", name)
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid %s config: %w", name, err)
	}
	return &standardConnector{provider: provider, config: config}, nil
}

type standardConnector struct {
	provider Provider
	config   Config

	mu    sync.Mutex
	conns []Connection
}

// Connect opens a Connection, honoring ConnectTimeout and Retry.
func (c *standardConnector) Connect(ctx context.Context) (Connection, error) {
	if c.config.ConnectTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.config.ConnectTimeout)
		defer cancel()
	}

	connect := func(ctx context.Context) (Connection, error) {
		conn, err := c.provider.Connect(ctx, c.config)
		if err != nil {
			return nil, err
		}
		if err := conn.Health(ctx); err != nil {
			conn.Close()
			return nil, err
		}
		return conn, nil
	}

	var (
		conn Connection
		err  error
	)
	if c.config.Retry != nil {
		conn, err = retryConnect(ctx, c.config.Retry, connect)
		if err != nil {
			return nil, fmt.Errorf("failed to connect after %d retries: %w", c.config.Retry.MaxRetries, err)
		}
	} else if conn, err = connect(ctx); err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.conns = append(c.conns, conn)
	c.mu.Unlock()
	return conn, nil
}

// Close closes every Connection this Connector opened.
func (c *standardConnector) Close() error {
	c.mu.Lock()
	conns := c.conns
	c.conns = nil
	c.mu.Unlock()

	var first error
	for _, conn := range conns {
		if err := conn.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}
