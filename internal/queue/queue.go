package queue

import (
	"context"

	"github.com/emrgen/shortpage/internal/model"
)

// ClickTopic is the topic click events are published to when a broker-backed
// queue is configured.
var ClickTopic = "shortpage.clicks"

// ClickQueue carries click events to an external consumer. The in-process
// recorder is the default sink, a broker-backed queue takes over when
// aggregation runs outside the service.
type ClickQueue interface {
	// Publish appends a click event to the queue.
	Publish(ctx context.Context, click *model.ClickEvent) error
	// Close flushes pending events and releases the producer.
	Close()
}
