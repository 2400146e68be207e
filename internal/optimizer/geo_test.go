package optimizer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHaversineKm(t *testing.T) {
	london := Location{Latitude: 51.5074, Longitude: -0.1278}
	manchester := Location{Latitude: 53.4808, Longitude: -2.2426}

	d := HaversineKm(london, manchester)
	assert.InDelta(t, 262, d, 5)

	assert.Zero(t, HaversineKm(london, london))
	assert.InDelta(t, HaversineKm(london, manchester), HaversineKm(manchester, london), 1e-9)
}
