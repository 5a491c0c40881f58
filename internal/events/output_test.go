package events

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJSONOutputWritesPerTopicFiles(t *testing.T) {
	dir := t.TempDir()
	out := NewJSONOutput(dir)

	require.NoError(t, out.WriteMessage(TopicOrderCreated, []byte(`{"orderId":"ORD-1"}`)))
	require.NoError(t, out.WriteMessage(TopicOrderCreated, []byte(`{"orderId":"ORD-2"}`)))
	require.NoError(t, out.WriteMessage(TopicOrderStatus, []byte(`{"orderId":"ORD-1"}`)))
	require.NoError(t, out.Close())

	f, err := os.Open(filepath.Join(dir, TopicOrderCreated+".jsonl"))
	require.NoError(t, err)
	defer f.Close()

	var lines []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	require.Len(t, lines, 2)
	assert.JSONEq(t, `{"orderId":"ORD-1"}`, lines[0])

	_, err = os.Stat(filepath.Join(dir, TopicOrderStatus+".jsonl"))
	assert.NoError(t, err)
}

func TestPublisherSerializesEvents(t *testing.T) {
	dir := t.TempDir()
	pub := NewPublisher(NewJSONOutput(dir))

	ev := OrderStatusEvent{
		BaseEvent:  NewBaseEvent("order_status_changed", "ORD-42", time.Unix(1700000000, 0)),
		FromStatus: "processing",
		ToStatus:   "on our way",
	}
	require.NoError(t, pub.Publish(TopicOrderStatus, ev))
	require.NoError(t, pub.Close())

	raw, err := os.ReadFile(filepath.Join(dir, TopicOrderStatus+".jsonl"))
	require.NoError(t, err)

	var got OrderStatusEvent
	require.NoError(t, json.Unmarshal(raw, &got))
	assert.Equal(t, "ORD-42", got.OrderID)
	assert.Equal(t, int64(1700000000), got.Timestamp)
	assert.Equal(t, "on our way", got.ToStatus)
}

func TestNilPublisherDiscards(t *testing.T) {
	var pub *Publisher
	assert.NoError(t, pub.Publish(TopicOrderCreated, struct{}{}))
	assert.NoError(t, pub.Close())

	empty := NewPublisher(nil)
	assert.NoError(t, empty.Publish(TopicOrderCreated, struct{}{}))
}
