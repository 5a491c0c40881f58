package geo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDistanceSamePointIsZero(t *testing.T) {
	points := [][2]float64{
		{0, 0},
		{13.7563, 100.5018},
		{-33.8688, 151.2093},
		{89.9, -179.9},
	}
	for _, p := range points {
		assert.InDelta(t, 0, Distance(p[0], p[1], p[0], p[1]), 1e-9)
	}
}

func TestDistanceSymmetric(t *testing.T) {
	d1 := Distance(13.7563, 100.5018, 13.7650, 100.5380)
	d2 := Distance(13.7650, 100.5380, 13.7563, 100.5018)
	assert.InDelta(t, d1, d2, 1e-9)
}

func TestDistanceKnownReference(t *testing.T) {
	// Bangkok to Chiang Mai, roughly 580 km great-circle
	d := Distance(13.7563, 100.5018, 18.7883, 98.9853)
	require.InDelta(t, 580, d, 10)
}

func TestDeliveryFeeTierBoundaries(t *testing.T) {
	tests := []struct {
		distance float64
		fee      float64
	}{
		{0, 50},
		{5, 50},
		{5.0001, 100},
		{10, 100},
		{12.5, 150},
		{15, 150},
		{20, 200},
		{25, 300},
		{30, 300},
		{50, 500},
		{50.0001, 800},
		{120, 800},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.fee, DeliveryFee(tt.distance), "distance %v", tt.distance)
	}
}

func TestDeliveryFeeMonotonic(t *testing.T) {
	prev := DeliveryFee(0)
	for d := 0.5; d <= 60; d += 0.5 {
		fee := DeliveryFee(d)
		require.GreaterOrEqual(t, fee, prev, "fee must not decrease at %v km", d)
		prev = fee
	}
}

func TestDistanceFromBusiness(t *testing.T) {
	assert.InDelta(t, 0, DistanceFromBusiness(Business.Lat, Business.Lon), 1e-9)

	o := Origin{Lat: Business.Lat, Lon: Business.Lon}
	assert.Equal(t, o.DistanceTo(13.80, 100.55), DistanceFromBusiness(13.80, 100.55))
}
