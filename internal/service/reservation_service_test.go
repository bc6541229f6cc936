package service

import (
	"testing"

	"popera/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestFirstActive(t *testing.T) {
	cancelled := models.Reservation{ID: "r1", Status: models.StatusCancelled}
	active := models.Reservation{ID: "r2", Status: models.StatusReserved}
	unknown := models.Reservation{ID: "r3", Status: "something-else"}

	assert.Nil(t, firstActive(nil))
	assert.Nil(t, firstActive([]models.Reservation{cancelled, unknown}))

	got := firstActive([]models.Reservation{cancelled, active})
	if assert.NotNil(t, got) {
		assert.Equal(t, "r2", got.ID)
	}
}

func TestReserve(t *testing.T) {
	// This would require mocking the store
	t.Skip("Requires mocked store")
}
