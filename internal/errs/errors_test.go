package errs

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOf(t *testing.T) {
	assert.Equal(t, KindNotFound, KindOf(NotFoundf("table %d not found", 3)))
	assert.Equal(t, KindInvalidState, KindOf(InvalidStatef("table is open")))
	assert.Equal(t, KindValidation, KindOf(Validationf("bad input")))
	assert.Equal(t, KindConflict, KindOf(Conflictf("duplicate bill")))
	assert.Equal(t, KindUnavailable, KindOf(Unavailablef("sold out")))
	assert.Equal(t, KindNoCapacity, KindOf(NoCapacityf("no tables")))
	assert.Equal(t, KindInternal, KindOf(errors.New("plain")))
	assert.Equal(t, KindInternal, KindOf(nil))
}

func TestKindSurvivesWrapping(t *testing.T) {
	inner := Conflictf("bill already archived")
	wrapped := fmt.Errorf("closing table: %w", inner)

	assert.Equal(t, KindConflict, KindOf(wrapped))
	assert.True(t, IsKind(wrapped, KindConflict))
	assert.False(t, IsKind(wrapped, KindNotFound))
}

func TestWrapPreservesCause(t *testing.T) {
	cause := errors.New("disk full")
	err := Wrap(KindInternal, "failed to save bill", cause)

	assert.Contains(t, err.Error(), "failed to save bill")
	assert.Contains(t, err.Error(), "disk full")
	assert.True(t, errors.Is(err, cause))
}
