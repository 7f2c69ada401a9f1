package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"cloud.google.com/go/pubsub/v2"
	"github.com/rs/zerolog"
	"google.golang.org/api/option"

	"github.com/ecoroute/ecoroute/internal/notify"
	"github.com/ecoroute/ecoroute/internal/review"
)

var (
	// ErrMalformedMessage is returned for payloads that cannot be decoded.
	ErrMalformedMessage = errors.New("malformed message")

	// ErrUnknownMessageType is returned for payloads of another type.
	ErrUnknownMessageType = errors.New("unknown message type")
)

// PubSubHandler handles review notification messages.
type PubSubHandler struct {
	client           *pubsub.Client
	subscriber       *pubsub.Subscriber
	subscriptionName string
	processor        *Processor
	logger           zerolog.Logger
}

// PubSubConfig holds configuration for the Pub/Sub handler.
type PubSubConfig struct {
	ProjectID        string
	SubscriptionName string
	Config           Config
	Notifier         review.Notifier
	Metrics          *Metrics
	Logger           zerolog.Logger

	// ClientOptions are passed to the Pub/Sub client (e.g. an emulator connection).
	ClientOptions []option.ClientOption
}

// NewPubSubHandler creates a new Pub/Sub handler.
func NewPubSubHandler(ctx context.Context, cfg PubSubConfig) (*PubSubHandler, error) {
	client, err := pubsub.NewClient(ctx, cfg.ProjectID, cfg.ClientOptions...)
	if err != nil {
		return nil, fmt.Errorf("creating pubsub client: %w", err)
	}

	settings := cfg.Config.withDefaults()
	subscriber := client.Subscriber(cfg.SubscriptionName)
	subscriber.ReceiveSettings.MaxOutstandingMessages = settings.MaxOutstandingMessages
	subscriber.ReceiveSettings.MaxExtension = settings.MaxExtension

	return &PubSubHandler{
		client:           client,
		subscriber:       subscriber,
		subscriptionName: cfg.SubscriptionName,
		processor: NewProcessor(ProcessorConfig{
			Notifier: cfg.Notifier,
			Metrics:  cfg.Metrics,
			Timeout:  settings.HandleTimeout,
			Logger:   cfg.Logger,
		}),
		logger: cfg.Logger,
	}, nil
}

// Start begins processing Pub/Sub messages. It blocks until ctx is done.
func (h *PubSubHandler) Start(ctx context.Context) error {
	h.logger.Info().
		Str("subscription", h.subscriptionName).
		Msg("starting pubsub handler")

	return h.subscriber.Receive(ctx, func(ctx context.Context, msg *pubsub.Message) {
		h.handleMessage(ctx, msg)
	})
}

// Close closes the Pub/Sub client.
func (h *PubSubHandler) Close() error {
	return h.client.Close()
}

func (h *PubSubHandler) handleMessage(ctx context.Context, msg *pubsub.Message) {
	logger := h.logger.With().
		Str("message_id", msg.ID).
		Str("publish_time", msg.PublishTime.Format(time.RFC3339)).
		Logger()

	logger.Debug().Msg("received pubsub message")

	err := h.processor.Process(ctx, msg.Data)
	switch {
	case err == nil:
		msg.Ack()
	case errors.Is(err, ErrMalformedMessage), errors.Is(err, ErrUnknownMessageType):
		// Redelivery cannot fix these.
		logger.Warn().Err(err).Msg("dropping message")
		msg.Ack()
	default:
		logger.Error().Err(err).Msg("notification failed")
		msg.Nack()
	}
}

// ProcessorConfig holds configuration for a Processor.
type ProcessorConfig struct {
	Notifier review.Notifier
	Metrics  *Metrics
	Timeout  time.Duration
	Logger   zerolog.Logger
}

// Processor decodes review notifications and forwards them to a notifier.
type Processor struct {
	notifier review.Notifier
	metrics  *Metrics
	timeout  time.Duration
	logger   zerolog.Logger
}

// NewProcessor creates a new message processor.
func NewProcessor(cfg ProcessorConfig) *Processor {
	metrics := cfg.Metrics
	if metrics == nil {
		metrics = &Metrics{}
	}
	return &Processor{
		notifier: cfg.Notifier,
		metrics:  metrics,
		timeout:  cfg.Timeout,
		logger:   cfg.Logger,
	}
}

// Metrics returns the processor's counters.
func (p *Processor) Metrics() *Metrics {
	return p.metrics
}

// Process handles one message payload.
func (p *Processor) Process(ctx context.Context, data []byte) error {
	start := time.Now()

	var msg notify.ReviewMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		p.metrics.Skipped.Add(1)
		return fmt.Errorf("%w: %v", ErrMalformedMessage, err)
	}
	if msg.Type != notify.MessageType {
		p.metrics.Skipped.Add(1)
		return fmt.Errorf("%w: %q", ErrUnknownMessageType, msg.Type)
	}
	if msg.Review.ID == "" {
		p.metrics.Skipped.Add(1)
		return fmt.Errorf("%w: missing review id", ErrMalformedMessage)
	}

	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	if err := p.notifier.ReviewSubmitted(ctx, msg.Review); err != nil {
		p.metrics.Failed.Add(1)
		return err
	}

	p.metrics.Delivered.Add(1)
	p.logger.Info().
		Str("review_id", msg.Review.ID).
		Dur("duration", time.Since(start)).
		Msg("review notification delivered")
	return nil
}
