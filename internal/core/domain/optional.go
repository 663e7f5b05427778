package domain

import (
	"bytes"
	"encoding/json"
)

// Optional distinguishes an absent JSON field from one explicitly sent.
// Set is true when the key appeared in the payload; Null is true when its
// value was JSON null.
type Optional[T any] struct {
	Value T
	Set   bool
	Null  bool
}

// Some returns a present, non-null Optional.
func Some[T any](v T) Optional[T] {
	return Optional[T]{Value: v, Set: true}
}

// UnmarshalJSON is only invoked by encoding/json when the key is present.
func (o *Optional[T]) UnmarshalJSON(data []byte) error {
	o.Set = true
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		o.Null = true
		return nil
	}
	return json.Unmarshal(data, &o.Value)
}

// Present reports whether the field carries a usable value.
func (o Optional[T]) Present() bool {
	return o.Set && !o.Null
}

// UserPatch is a partial update of a user. Only fields that are Set are
// validated and applied.
type UserPatch struct {
	Username Optional[string] `json:"username"`
	Email    Optional[string] `json:"email"`
	Password Optional[string] `json:"password"`
	Role     Optional[string] `json:"role"`
}

// Empty reports whether the patch touches no field.
func (p UserPatch) Empty() bool {
	return !p.Username.Set && !p.Email.Set && !p.Password.Set && !p.Role.Set
}
