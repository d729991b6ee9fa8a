package apperrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorsIsMatchesKind(t *testing.T) {
	err := NotFound("no user found for the given id")

	assert.True(t, errors.Is(err, ErrNotFound))
	assert.False(t, errors.Is(err, ErrConflict))
	assert.True(t, errors.Is(fmt.Errorf("advance: %w", err), ErrNotFound))
}

func TestStoreWrapsOnlyForeignErrors(t *testing.T) {
	cause := errors.New("connection refused")
	wrapped := Store("load user", cause)

	assert.True(t, errors.Is(wrapped, ErrStore))
	assert.True(t, errors.Is(wrapped, cause))
	assert.Equal(t, KindStore, KindOf(wrapped))

	conflict := Conflict("stale")
	assert.Same(t, conflict, Store("advance", conflict))
	assert.Nil(t, Store("noop", nil))
}

func TestMessagesOfHidesStoreInternals(t *testing.T) {
	err := Store("load user", errors.New("pq: password authentication failed"))
	assert.Equal(t, []string{"error while accessing the database"}, MessagesOf(err))

	v := Validation("a valid userID must be set", "a valid trackID must be set")
	assert.Equal(t, []string{"a valid userID must be set", "a valid trackID must be set"}, MessagesOf(v))
	assert.Equal(t, KindValidation, KindOf(v))
}
