package orders

import (
	"fmt"
	"sync/atomic"
	"time"
)

// orderSeq disambiguates orders created within the same millisecond. The
// storefront used a random 4-digit suffix, which could collide; a process-wide
// counter keeps the same ORD-\d{6}\d{4} shape without the collision risk.
var orderSeq atomic.Uint64

// GenerateOrderID returns an order id of the form ORD-XXXXXXYYYY, where
// XXXXXX are the last six digits of the epoch-millisecond clock and YYYY a
// monotonic sequence number.
func GenerateOrderID() string {
	ms := time.Now().UnixMilli() % 1_000_000
	seq := orderSeq.Add(1) % 10_000
	return fmt.Sprintf("ORD-%06d%04d", ms, seq)
}
