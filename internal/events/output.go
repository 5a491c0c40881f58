// Package events streams order lifecycle events to a configurable sink:
// console for local runs, per-topic JSON files for offline analysis, or Kafka
// for downstream pipelines.
package events

import (
	"fmt"
	"os"
	"path/filepath"
)

// Topics published by the order service.
const (
	TopicOrderCreated   = "order_created_events"
	TopicOrderStatus    = "order_status_events"
	TopicDriverLocation = "driver_location_events"
	TopicOrderDelivered = "order_delivered_events"
)

// OutputDestination receives serialized lifecycle events.
type OutputDestination interface {
	WriteMessage(topic string, msg []byte) error
	Close() error
}

type ConsoleOutput struct{}

func (c *ConsoleOutput) WriteMessage(topic string, msg []byte) error {
	output := fmt.Sprintf("[%s] %s\n", topic, string(msg))
	if _, err := os.Stdout.Write([]byte(output)); err != nil {
		return fmt.Errorf("failed to write to stdout: %w", err)
	}
	_ = os.Stdout.Sync()
	return nil
}

func (c *ConsoleOutput) Close() error { return nil }

// JSONOutput appends newline-delimited JSON to one file per topic.
type JSONOutput struct {
	basePath string
	files    map[string]*os.File
}

func NewJSONOutput(basePath string) *JSONOutput {
	return &JSONOutput{
		basePath: basePath,
		files:    make(map[string]*os.File),
	}
}

func (j *JSONOutput) WriteMessage(topic string, msg []byte) error {
	file, ok := j.files[topic]
	if !ok {
		if err := os.MkdirAll(j.basePath, os.ModePerm); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
		filename := filepath.Join(j.basePath, topic+".jsonl")
		f, err := os.OpenFile(filename, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("failed to create file for topic %s: %w", topic, err)
		}
		j.files[topic] = f
		file = f
	}

	if _, err := file.Write(append(msg, '\n')); err != nil {
		return fmt.Errorf("failed to write message to topic %s: %w", topic, err)
	}
	return nil
}

func (j *JSONOutput) Close() error {
	var firstErr error
	for topic, f := range j.files {
		if err := f.Close(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("failed to close file for topic %s: %w", topic, err)
		}
	}
	j.files = make(map[string]*os.File)
	return firstErr
}
