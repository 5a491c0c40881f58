// Package session drives the order lifecycle the way the storefront UI did:
// synthetic customers browse the tool catalog, check out, pay, and a driver
// carries the order to their pinned address. Useful for demos, load shaping
// and exercising every lifecycle path end to end.
package session

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/jaswdr/faker"
	"github.com/schollz/progressbar/v3"

	"rentaflow/internal/catalog"
	"rentaflow/internal/models"
	"rentaflow/internal/orders"
)

type Session struct {
	cfg     *models.Config
	svc     *orders.Service
	catalog *catalog.Store
	rng     *rand.Rand
	fake    faker.Faker
}

func New(cfg *models.Config, svc *orders.Service, cat *catalog.Store) *Session {
	seed := int64(cfg.Seed)
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Session{
		cfg:     cfg,
		svc:     svc,
		catalog: cat,
		rng:     rand.New(rand.NewSource(seed)),
		fake:    faker.NewWithSeed(rand.NewSource(seed)),
	}
}

// Run executes the session: a fixed batch of orders, or one order per tick
// until the context is cancelled when continuous mode is on.
func (s *Session) Run(ctx context.Context) error {
	if s.cfg.Continuous {
		ticker := time.NewTicker(s.cfg.TickInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				s.svc.Wait()
				return ctx.Err()
			case <-ticker.C:
				s.placeAndFulfil(ctx)
			}
		}
	}

	bar := progressbar.Default(int64(s.cfg.SessionOrders), "orders")
	for i := 0; i < s.cfg.SessionOrders; i++ {
		if ctx.Err() != nil {
			break
		}
		s.placeAndFulfil(ctx)
		_ = bar.Add(1)
	}
	s.svc.Wait()
	return ctx.Err()
}

// placeAndFulfil creates one order and walks it through its whole lifecycle.
func (s *Session) placeAndFulfil(ctx context.Context) {
	input := s.buildOrderInput()
	o := s.svc.AddOrder(input)

	if o.Status == models.StatusValidationFailed {
		// the customer "fixes" the basket and retries, as the storefront
		// form flow would
		_ = s.svc.AmendOrder(o.ID, func(ord *models.Order) {
			var sum float64
			for _, it := range ord.Items {
				sum += it.LineTotal()
			}
			ord.TotalAmount = sum
		})
		ok, err := s.svc.RetryOrderProcessing(o.ID)
		if err != nil || !ok {
			return
		}
		next := models.StatusProcessing
		if st, _ := s.svc.GetOrderByID(o.ID); statusForRetry(st.PaymentMethod) {
			next = models.StatusPaymentVerification
		}
		if err := s.svc.UpdateOrderStatus(o.ID, next); err != nil {
			return
		}
	}

	if st, err := s.svc.GetOrderByID(o.ID); err == nil && st.Status == models.StatusPaymentVerification {
		if err := s.svc.VerifyPayment(o.ID); err != nil {
			return
		}
	}

	if err := s.svc.UpdateOrderStatus(o.ID, models.StatusOnOurWay); err != nil {
		return
	}
	s.driveToCustomer(ctx, o.ID)

	if err := s.svc.UpdateOrderStatus(o.ID, models.StatusDelivered); err != nil {
		return
	}
	_ = s.svc.UpdateOrderStatus(o.ID, models.StatusCompleted)
}

// driveToCustomer steps the driver from the depot toward the customer's pin,
// reporting each position so proximity alerts fire naturally.
func (s *Session) driveToCustomer(ctx context.Context, orderID string) {
	o, err := s.svc.GetOrderByID(orderID)
	if err != nil || o.GPSCoordinates == nil {
		return
	}

	cur := models.Location{Lat: s.cfg.BusinessLat, Lon: s.cfg.BusinessLon}
	dest := *o.GPSCoordinates
	// distance covered per reported position; clamped so even a slow tick
	// setting converges well inside the step cap
	stepKm := s.cfg.DriverSpeedKmh * s.cfg.DriverStepInterval.Hours()
	if stepKm < 0.5 {
		stepKm = 0.5
	}

	for i := 0; i < 500; i++ { // hard cap, a stuck driver ends the trip
		if ctx.Err() != nil {
			return
		}
		cur = moveToward(cur, dest, stepKm)
		if err := s.svc.UpdateDriverLocation(orderID, cur.Lat, cur.Lon); err != nil {
			return
		}
		if cur == dest {
			return
		}
		if s.cfg.Continuous {
			time.Sleep(s.cfg.DriverStepInterval)
		}
	}
}

// moveToward advances cur by stepKm along the straight line to dest,
// clamping at the destination.
func moveToward(cur, dest models.Location, stepKm float64) models.Location {
	dLat := dest.Lat - cur.Lat
	dLon := dest.Lon - cur.Lon
	// flat-earth approximation is fine at urban scale
	kmLat := dLat * 111.0
	kmLon := dLon * 111.0 * math.Cos(cur.Lat*math.Pi/180)
	total := math.Sqrt(kmLat*kmLat + kmLon*kmLon)
	if total <= stepKm || total == 0 {
		return dest
	}
	frac := stepKm / total
	return models.Location{
		Lat: cur.Lat + dLat*frac,
		Lon: cur.Lon + dLon*frac,
	}
}

func (s *Session) buildOrderInput() models.Order {
	products := s.catalog.All()
	itemCount := 1 + s.rng.Intn(3)
	items := make([]models.OrderItem, 0, itemCount)
	var total float64
	for i := 0; i < itemCount && len(products) > 0; i++ {
		p := products[s.rng.Intn(len(products))]
		item := models.OrderItem{
			ID:       p.ID,
			Name:     p.Name,
			Brand:    p.Brand,
			Price:    p.PricePerDay,
			Quantity: 1 + s.rng.Intn(2),
			Days:     1 + s.rng.Intn(7),
			Image:    p.Image,
		}
		items = append(items, item)
		total += item.LineTotal()
	}

	if s.rng.Float64() < s.cfg.InvalidOrderRatio {
		// corrupt the total to exercise validation_failed -> retry
		total += 50 + s.rng.Float64()*100
	}

	person := s.fake.Person()
	gps := s.randomDropOff()
	return models.Order{
		CustomerInfo: models.CustomerInfo{
			Name:  person.Name(),
			Email: s.fake.Internet().Email(),
			Phone: fmt.Sprintf("+668%08d", s.rng.Intn(100_000_000)),
		},
		Items:           items,
		TotalAmount:     total,
		DeliveryAddress: s.fake.Address().Address(),
		GPSCoordinates:  &gps,
		PaymentMethod:   s.pickPaymentMethod(),
	}
}

// randomDropOff samples a delivery pin uniformly within the urban radius of
// the depot.
func (s *Session) randomDropOff() models.Location {
	radiusKm := s.cfg.UrbanRadius * math.Sqrt(s.rng.Float64())
	angle := s.rng.Float64() * 2 * math.Pi
	dLat := (radiusKm * math.Sin(angle)) / 111.0
	dLon := (radiusKm * math.Cos(angle)) / (111.0 * math.Cos(s.cfg.BusinessLat*math.Pi/180))
	return models.Location{
		Lat: s.cfg.BusinessLat + dLat,
		Lon: s.cfg.BusinessLon + dLon,
	}
}

func (s *Session) pickPaymentMethod() string {
	r := s.rng.Float64()
	switch {
	case r < 0.25:
		return "bank"
	case r < 0.45:
		return "promptpay"
	case r < 0.80:
		return "cod"
	default:
		return "card"
	}
}

func statusForRetry(paymentMethod string) bool {
	return paymentMethod == "bank" || paymentMethod == "promptpay"
}
