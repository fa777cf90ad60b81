package liberr

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWrappersKeepSentinelInChain(t *testing.T) {
	assert.ErrorIs(t, Validationf("total_copies must be at least 1, got %d", 0), ErrValidation)
	assert.ErrorIs(t, NotFoundf("book %d", 7), ErrNotFound)
	assert.ErrorIs(t, Conflictf("duplicate reservation"), ErrConflict)
	assert.ErrorIs(t, Transitionf("rejected -> approved"), ErrInvalidTransition)
}

func TestBackendfKeepsBothErrors(t *testing.T) {
	cause := errors.New("disk I/O error")
	err := Backendf("list books", cause)

	assert.ErrorIs(t, err, ErrBackend)
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "list books")
}

func TestSentinelsAreDistinct(t *testing.T) {
	err := Conflictf("duplicate reservation")
	assert.NotErrorIs(t, err, ErrValidation)
	assert.NotErrorIs(t, err, ErrNotFound)
	assert.NotErrorIs(t, err, ErrInvalidTransition)
}
