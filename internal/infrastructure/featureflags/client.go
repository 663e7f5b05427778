// Package featureflags implements ports.FeatureFlags over a pluggable
// evaluator. Tracked events are handed to a queue and never block callers.
package featureflags

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/udla/user-directory/internal/core/domain"
	"github.com/udla/user-directory/internal/core/ports"
)

// Evaluator answers whether a flag is on for a context key.
type Evaluator interface {
	Enabled(ctx context.Context, key, contextKey string) (bool, error)
}

// Tracker accepts flag events for asynchronous delivery.
type Tracker interface {
	Enqueue(event ports.FlagEvent) bool
}

// Client is the service's feature-flag client.
type Client struct {
	eval    Evaluator
	tracker Tracker
	log     zerolog.Logger
}

// New returns a Client. A nil eval leaves the client uninitialized: every
// flag reads as off. A nil tracker discards tracked events.
func New(eval Evaluator, tracker Tracker, log zerolog.Logger) *Client {
	return &Client{eval: eval, tracker: tracker, log: log}
}

func (c *Client) Initialized() bool {
	return c != nil && c.eval != nil
}

// IsEnabled evaluates key for fc. Backend failures read as off.
func (c *Client) IsEnabled(ctx context.Context, key string, fc domain.FlagContext) bool {
	if !c.Initialized() {
		return false
	}
	contextKey := fc.Key
	if fc.Anonymous() {
		contextKey = ""
	}
	on, err := c.eval.Enabled(ctx, key, contextKey)
	if err != nil {
		c.log.Warn().Err(err).Str("flag", key).Msg("flag evaluation failed")
		return false
	}
	return on
}

func (c *Client) Track(_ context.Context, event string, fc domain.FlagContext) {
	if c == nil || c.tracker == nil {
		return
	}
	c.tracker.Enqueue(ports.FlagEvent{Name: event, Context: fc})
}

var _ ports.FeatureFlags = (*Client)(nil)
