package redis

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/udla/user-directory/internal/core/ports"
)

const (
	flagPrefix   = "flags:"
	eventsStream = "flags:events"
	// eventsMaxLen caps the stream; trimming is approximate.
	eventsMaxLen = 10000
)

// FlagStore reads flag state and appends tracked events.
//
// Key format:
//
//	flags:<key>        "true" / "false" default for everyone
//	flags:<key>:users  set of context keys that always see the flag on
type FlagStore struct {
	client *redis.Client
}

func NewFlagStore(client *redis.Client) *FlagStore {
	return &FlagStore{client: client}
}

// Enabled reports whether key is on for the context identified by contextKey.
// A missing flag is off.
func (s *FlagStore) Enabled(ctx context.Context, key, contextKey string) (bool, error) {
	if contextKey != "" {
		member, err := s.client.SIsMember(ctx, s.usersKey(key), contextKey).Result()
		if err != nil {
			return false, fmt.Errorf("flag override: %w", err)
		}
		if member {
			return true, nil
		}
	}

	raw, err := s.client.Get(ctx, flagPrefix+key).Result()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("flag get: %w", err)
	}

	on, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("flag %q: %w", key, err)
	}
	return on, nil
}

// ErrInvalidFlagKey is returned for empty keys and keys containing ':'.
var ErrInvalidFlagKey = errors.New("invalid flag key")

// Set stores the default value of key. Per-user overrides are untouched.
func (s *FlagStore) Set(ctx context.Context, key string, on bool) error {
	if key == "" || strings.ContainsAny(key, ": ") {
		return fmt.Errorf("%w: %q", ErrInvalidFlagKey, key)
	}
	if err := s.client.Set(ctx, flagPrefix+key, strconv.FormatBool(on), 0).Err(); err != nil {
		return fmt.Errorf("flag set: %w", err)
	}
	return nil
}

// Record implements ports.FlagEventSink by appending to the events stream.
func (s *FlagStore) Record(ctx context.Context, event ports.FlagEvent) error {
	return s.client.XAdd(ctx, &redis.XAddArgs{
		Stream: eventsStream,
		MaxLen: eventsMaxLen,
		Approx: true,
		Values: map[string]any{
			"event":        event.Name,
			"context_kind": event.Context.Kind,
			"context_key":  event.Context.Key,
			"ts":           time.Now().UTC().Unix(),
		},
	}).Err()
}

func (s *FlagStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s *FlagStore) usersKey(key string) string {
	return flagPrefix + key + ":users"
}
