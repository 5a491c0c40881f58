package session

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rentaflow/internal/catalog"
	"rentaflow/internal/models"
	"rentaflow/internal/orders"
	"rentaflow/internal/telemetry"
)

func testConfig() *models.Config {
	return &models.Config{
		Seed:                  42,
		SessionOrders:         10,
		InvalidOrderRatio:     0.3,
		BusinessLat:           13.7563,
		BusinessLon:           100.5018,
		UrbanRadius:           8,
		NearLocationThreshold: 1.0,
		DriverSpeedKmh:        30,
		DriverStepInterval:    200 * time.Millisecond,
		TickInterval:          time.Second,
	}
}

func TestSessionBatchCompletesEveryOrder(t *testing.T) {
	cfg := testConfig()
	tel := telemetry.New(1000)
	svc := orders.NewService(cfg, tel, nil, nil)
	cat, err := catalog.NewStore("")
	require.NoError(t, err)

	s := New(cfg, svc, cat)
	require.NoError(t, s.Run(context.Background()))

	all := svc.Orders()
	require.Len(t, all, cfg.SessionOrders)
	for _, o := range all {
		assert.Equal(t, models.StatusCompleted, o.Status, "order %s", o.ID)
		assert.True(t, o.NotificationSent, "driver reached the pin for %s", o.ID)
	}

	snap := tel.Metrics.Snapshot()
	assert.Equal(t, cfg.SessionOrders, snap.TotalOrders)
	assert.Equal(t, cfg.SessionOrders, snap.StatusCounts[models.StatusCompleted])
}

func TestSessionDeterministicWithSeed(t *testing.T) {
	run := func() []models.Order {
		cfg := testConfig()
		svc := orders.NewService(cfg, telemetry.New(100), nil, nil)
		cat, err := catalog.NewStore("")
		require.NoError(t, err)
		require.NoError(t, New(cfg, svc, cat).Run(context.Background()))
		return svc.Orders()
	}

	a, b := run(), run()
	require.Equal(t, len(a), len(b))
	for i := range a {
		assert.Equal(t, a[i].CustomerInfo.Name, b[i].CustomerInfo.Name)
		assert.Equal(t, a[i].TotalAmount, b[i].TotalAmount)
		assert.Equal(t, a[i].PaymentMethod, b[i].PaymentMethod)
	}
}

func TestMoveTowardClampsAtDestination(t *testing.T) {
	cur := models.Location{Lat: 13.75, Lon: 100.50}
	dest := models.Location{Lat: 13.751, Lon: 100.501}

	got := moveToward(cur, dest, 100) // one giant step
	assert.Equal(t, dest, got)

	small := moveToward(cur, dest, 0.01)
	assert.NotEqual(t, dest, small)
	assert.Greater(t, small.Lat, cur.Lat)
}

func TestRandomDropOffWithinRadius(t *testing.T) {
	cfg := testConfig()
	svc := orders.NewService(cfg, telemetry.New(100), nil, nil)
	cat, err := catalog.NewStore("")
	require.NoError(t, err)
	s := New(cfg, svc, cat)

	for i := 0; i < 100; i++ {
		loc := s.randomDropOff()
		// crude bound: 1 degree is at most ~111 km
		assert.InDelta(t, cfg.BusinessLat, loc.Lat, cfg.UrbanRadius/111.0+1e-6)
	}
}
