package orders

import (
	"regexp"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rentaflow/internal/models"
)

func TestCanTransitionAllowsLifecyclePath(t *testing.T) {
	path := []models.OrderStatus{
		models.StatusPending,
		models.StatusPaymentVerification,
		models.StatusProcessing,
		models.StatusOnOurWay,
		models.StatusDelivered,
		models.StatusCompleted,
	}
	for i := 0; i < len(path)-1; i++ {
		assert.NoError(t, CanTransition(path[i], path[i+1]), "%s -> %s", path[i], path[i+1])
	}
}

func TestCanTransitionRejectsBackwardsMoves(t *testing.T) {
	illegal := [][2]models.OrderStatus{
		{models.StatusCompleted, models.StatusPending},
		{models.StatusDelivered, models.StatusProcessing},
		{models.StatusOnOurWay, models.StatusPaymentVerification},
		{models.StatusProcessing, models.StatusPending},
		{models.StatusPending, models.StatusDelivered},
		{models.StatusValidationFailed, models.StatusProcessing},
	}
	for _, pair := range illegal {
		err := CanTransition(pair[0], pair[1])
		require.ErrorIs(t, err, ErrInvalidTransition, "%s -> %s", pair[0], pair[1])
	}
}

func TestCompletedIsTerminal(t *testing.T) {
	assert.Empty(t, ValidTransitionsFrom(models.StatusCompleted))
	assert.True(t, models.StatusCompleted.Terminal())
	assert.False(t, models.StatusDelivered.Terminal())
}

func TestValidTransitionsFromProcessing(t *testing.T) {
	nexts := ValidTransitionsFrom(models.StatusProcessing)
	assert.ElementsMatch(t, []models.OrderStatus{models.StatusOnOurWay, models.StatusDelivered}, nexts)
}

func TestGenerateOrderIDShape(t *testing.T) {
	pattern := regexp.MustCompile(`^ORD-\d{10}$`)
	id := GenerateOrderID()
	assert.Regexp(t, pattern, id)
}

func TestGenerateOrderIDUniqueUnderConcurrency(t *testing.T) {
	const n = 2000
	ids := make(chan string, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ids <- GenerateOrderID()
		}()
	}
	wg.Wait()
	close(ids)

	seen := make(map[string]bool, n)
	for id := range ids {
		require.False(t, seen[id], "duplicate order id %s", id)
		seen[id] = true
	}
}
