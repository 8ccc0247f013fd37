package apperror

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOf(t *testing.T) {
	assert.Equal(t, KindValidation, KindOf(Validation("bad tax id %q", "x")))
	assert.Equal(t, KindNotFound, KindOf(NotFound("missing")))
	assert.Equal(t, KindConflict, KindOf(Conflict("dup")))
	assert.Equal(t, KindInternal, KindOf(errors.New("boom")))

	wrapped := fmt.Errorf("outer: %w", Conflict("dup"))
	assert.Equal(t, KindConflict, KindOf(wrapped))
	assert.True(t, IsKind(wrapped, KindConflict))
	assert.False(t, IsKind(nil, KindInternal))
}

func TestWrap(t *testing.T) {
	cause := errors.New("disk full")
	err := Wrap(KindInternal, cause, "failed to save sale")

	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "failed to save sale", MessageOf(err))
	assert.Contains(t, err.Error(), "disk full")
	assert.Nil(t, Wrap(KindInternal, nil, "unused"))
}

func TestErrorIs(t *testing.T) {
	err := fmt.Errorf("ctx: %w", NotFound("sale with id %d not found", 7))
	assert.ErrorIs(t, err, NotFound("sale with id 7 not found"))
	assert.NotErrorIs(t, err, Conflict("sale with id 7 not found"))
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "validation", KindValidation.String())
	assert.Equal(t, "not_found", KindNotFound.String())
	assert.Equal(t, "conflict", KindConflict.String())
	assert.Equal(t, "internal", KindInternal.String())
	assert.Equal(t, "boom", MessageOf(errors.New("boom")))
}
