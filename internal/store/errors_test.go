package store

import (
	"errors"
	"fmt"
	"testing"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
)

func TestClassifyPermissionDenied(t *testing.T) {
	pqErr := &pq.Error{Code: "42501", Message: "permission denied for table reservations"}

	err := classify(fmt.Errorf("query failed: %w", pqErr))
	assert.True(t, errors.Is(err, ErrPermissionDenied))
	assert.Contains(t, err.Error(), "permission denied for table reservations")
}

func TestClassifyPassesThroughOtherErrors(t *testing.T) {
	assert.NoError(t, classify(nil))

	pqErr := &pq.Error{Code: "23505", Message: "duplicate key"}
	err := classify(pqErr)
	assert.False(t, errors.Is(err, ErrPermissionDenied))
	assert.Equal(t, pqErr, err)

	plain := errors.New("connection reset")
	assert.Equal(t, plain, classify(plain))
}
