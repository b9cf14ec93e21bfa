package optsim

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"gocloud.dev/pubsub"
)

// RunNotifier publishes run summaries to a pubsub topic.
type RunNotifier struct {
	topic *pubsub.Topic
}

// OpenRunNotifier opens the topic at url. The driver for the url scheme must
// be linked into the binary.
func OpenRunNotifier(ctx context.Context, url string) (*RunNotifier, error) {
	topic, err := pubsub.OpenTopic(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("opening run topic %s: %w", url, err)
	}
	return &RunNotifier{topic: topic}, nil
}

// Publish sends the summary as JSON with the run number in the metadata.
func (n *RunNotifier) Publish(ctx context.Context, summary RunSummary) error {
	body, err := json.Marshal(summary)
	if err != nil {
		return fmt.Errorf("encoding run summary: %w", err)
	}
	msg := &pubsub.Message{
		Body:     body,
		Metadata: map[string]string{"run_number": strconv.Itoa(summary.RunNumber)},
	}
	if err := n.topic.Send(ctx, msg); err != nil {
		return fmt.Errorf("publishing run %d summary: %w", summary.RunNumber, err)
	}
	return nil
}

func (n *RunNotifier) Close(ctx context.Context) error {
	return n.topic.Shutdown(ctx)
}
