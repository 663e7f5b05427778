package ports

import (
	"context"

	"github.com/udla/user-directory/internal/core/domain"
)

// FeatureFlags is the external flag service.
type FeatureFlags interface {
	Initialized() bool
	IsEnabled(ctx context.Context, key string, fc domain.FlagContext) bool
	Track(ctx context.Context, event string, fc domain.FlagContext)
}

// FlagEvent is a tracked occurrence reported to the flag backend.
type FlagEvent struct {
	Name    string
	Context domain.FlagContext
}

// FlagEventSink persists tracked flag events.
type FlagEventSink interface {
	Record(ctx context.Context, event FlagEvent) error
}
