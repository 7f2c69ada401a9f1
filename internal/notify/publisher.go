package notify

import (
	"context"
	"fmt"

	"cloud.google.com/go/pubsub/v2"
	"github.com/rs/zerolog"
	"google.golang.org/api/option"

	"github.com/ecoroute/ecoroute/internal/review"
)

// PublisherConfig holds configuration for the Pub/Sub publisher.
type PublisherConfig struct {
	ProjectID string
	TopicName string
	Logger    zerolog.Logger

	// ClientOptions are passed to the Pub/Sub client (e.g. an emulator connection).
	ClientOptions []option.ClientOption
}

// Publisher publishes review notifications to a Pub/Sub topic.
type Publisher struct {
	client    *pubsub.Client
	publisher *pubsub.Publisher
	logger    zerolog.Logger
}

var _ review.Notifier = (*Publisher)(nil)

// NewPublisher creates a new Pub/Sub publisher.
func NewPublisher(ctx context.Context, cfg PublisherConfig) (*Publisher, error) {
	client, err := pubsub.NewClient(ctx, cfg.ProjectID, cfg.ClientOptions...)
	if err != nil {
		return nil, fmt.Errorf("creating pubsub client: %w", err)
	}

	return &Publisher{
		client:    client,
		publisher: client.Publisher(cfg.TopicName),
		logger:    cfg.Logger,
	}, nil
}

// ReviewSubmitted publishes the review and waits for the server acknowledgement.
func (p *Publisher) ReviewSubmitted(ctx context.Context, r review.Review) error {
	data, err := Encode(r)
	if err != nil {
		return err
	}

	id, err := p.publisher.Publish(ctx, &pubsub.Message{
		Data:       data,
		Attributes: map[string]string{"type": MessageType},
	}).Get(ctx)
	if err != nil {
		return fmt.Errorf("publish review notification: %w", err)
	}

	p.logger.Debug().
		Str("message_id", id).
		Str("review_id", r.ID).
		Msg("review notification published")
	return nil
}

// Close flushes pending messages and closes the client.
func (p *Publisher) Close() error {
	p.publisher.Stop()
	return p.client.Close()
}

// LogNotifier records review notifications in the log instead of publishing them.
// Used when no Pub/Sub topic is configured.
type LogNotifier struct {
	Logger zerolog.Logger
}

var _ review.Notifier = LogNotifier{}

// ReviewSubmitted logs the notification that would have been sent.
func (n LogNotifier) ReviewSubmitted(_ context.Context, r review.Review) error {
	n.Logger.Info().
		Str("review_id", r.ID).
		Str("subject", Subject(r)).
		Int("rating", r.Rating).
		Msg("review notification (not published)")
	return nil
}
