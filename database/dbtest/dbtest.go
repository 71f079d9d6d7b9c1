// Package dbtest provides an in-memory database.Pool that records every
// statement it receives and can be told to fail, for testing code that
// executes queries without a real server.
package dbtest

import (
	"context"
	"strings"
	"sync"

	"github.com/Konsultn-Engineering/pitwall/database"
)

// Call is one statement received by a Conn.
type Call struct {
	Text string
	Args []any
}

// Pool is a fake database.Pool. The zero value is ready to use and answers
// every statement with an empty result.
type Pool struct {
	// ConnectErr, when set, is returned by every Connect.
	ConnectErr error
	// Fail decides whether a statement errors. A nil Fail never fails.
	Fail func(text string) error
	// Result, when set, produces the result for a successful statement.
	Result func(text string, args []any) *database.Result
	// HonorContext makes Query fail with ctx.Err() once ctx is done, without
	// recording the statement, the way a real driver never sends it.
	HonorContext bool

	mu       sync.Mutex
	calls    []Call
	connects int
	releases int
}

// FailOn returns a Fail func that errors with err for any statement
// containing substr.
func FailOn(substr string, err error) func(string) error {
	return func(text string) error {
		if strings.Contains(text, substr) {
			return err
		}
		return nil
	}
}

// Connect implements database.Pool.
func (p *Pool) Connect(ctx context.Context) (database.Conn, error) {
	if p.ConnectErr != nil {
		return nil, p.ConnectErr
	}

	p.mu.Lock()
	p.connects++
	p.mu.Unlock()
	return &Conn{pool: p}, nil
}

// Texts returns the text of every statement issued, successful or not, in
// order.
func (p *Pool) Texts() []string {
	p.mu.Lock()
	defer p.mu.Unlock()

	out := make([]string, len(p.calls))
	for i, c := range p.calls {
		out[i] = c.Text
	}
	return out
}

// Calls returns every statement issued with its arguments.
func (p *Pool) Calls() []Call {
	p.mu.Lock()
	defer p.mu.Unlock()

	out := make([]Call, len(p.calls))
	copy(out, p.calls)
	return out
}

// Connects reports how many connections were handed out.
func (p *Pool) Connects() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.connects
}

// Releases reports how many times Release was called across all connections.
func (p *Pool) Releases() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.releases
}

// Reset forgets recorded statements and counters.
func (p *Pool) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls = nil
	p.connects = 0
	p.releases = 0
}

// Conn is the connection handed out by Pool.
type Conn struct {
	pool     *Pool
	released bool
}

// Query records the statement, then fails or answers according to the pool.
func (c *Conn) Query(ctx context.Context, text string, args ...any) (*database.Result, error) {
	p := c.pool
	if p.HonorContext {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
	}

	p.mu.Lock()
	p.calls = append(p.calls, Call{Text: text, Args: args})
	p.mu.Unlock()

	if p.Fail != nil {
		if err := p.Fail(text); err != nil {
			return nil, err
		}
	}
	if p.Result != nil {
		return p.Result(text, args), nil
	}
	return &database.Result{}, nil
}

// Release counts the release. Releasing the same Conn twice is recorded
// too, so tests can assert exactly-once semantics.
func (c *Conn) Release() {
	c.pool.mu.Lock()
	defer c.pool.mu.Unlock()
	c.released = true
	c.pool.releases++
}

// Released reports whether Release was called on this connection.
func (c *Conn) Released() bool {
	c.pool.mu.Lock()
	defer c.pool.mu.Unlock()
	return c.released
}

var _ database.Pool = (*Pool)(nil)
