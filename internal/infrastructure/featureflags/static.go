package featureflags

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/udla/user-directory/internal/core/ports"
)

// Static evaluates flags from a fixed map, typically loaded from the
// environment. Unknown flags are off.
type Static map[string]bool

func (s Static) Enabled(_ context.Context, key, _ string) (bool, error) {
	return s[key], nil
}

// LogSink records flag events to the service log. It is used when no Redis
// stream is configured.
type LogSink struct {
	Log zerolog.Logger
}

func (s LogSink) Record(_ context.Context, event ports.FlagEvent) error {
	s.Log.Info().
		Str("event", event.Name).
		Str("context_kind", event.Context.Kind).
		Str("context_key", event.Context.Key).
		Msg("flag event")
	return nil
}
