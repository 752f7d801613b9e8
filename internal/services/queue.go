package services

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/storage/azqueue"
	"github.com/rs/zerolog"
)

// EventType names a session event.
type EventType string

const (
	EventUploadReplaced    EventType = "upload_replaced"
	EventTransactionEdited EventType = "transaction_edited"
	EventReportGenerated   EventType = "report_generated"
	EventReportFailed      EventType = "report_failed"
	EventSnapshotSaved     EventType = "snapshot_saved"
)

// SessionEvent is the queue message body.
type SessionEvent struct {
	Type          EventType `json:"type"`
	Session       string    `json:"session"`
	TransactionID string    `json:"transaction_id,omitempty"`
	Count         int       `json:"count,omitempty"`
	Score         *int      `json:"score,omitempty"`
	Error         string    `json:"error,omitempty"`
	At            time.Time `json:"at"`
}

// QueueService publishes session events to Azure Queue Storage.
type QueueService struct {
	serviceClient *azqueue.ServiceClient
	queue         string
	log           zerolog.Logger
}

// NewQueueService creates a QueueService publishing to queue.
func NewQueueService(queueURL, queue string, log zerolog.Logger) (*QueueService, error) {
	if queueURL == "" {
		return nil, fmt.Errorf("queue service URL is required")
	}
	log = log.With().Str("service", "queue").Logger()

	log.Info().Str("queue_url", queueURL).Msg("initializing queue service")
	var client *azqueue.ServiceClient

	if isLocal(queueURL) {
		log.Info().Msg("using Azurite shared key credentials for queue service")
		name, key := getAzuriteCredentials()
		cred, err := azqueue.NewSharedKeyCredential(name, key)
		if err != nil {
			return nil, fmt.Errorf("failed to create shared key credential: %w", err)
		}
		client, err = azqueue.NewServiceClientWithSharedKeyCredential(queueURL, cred, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create queue service client with shared key: %w", err)
		}
	} else {
		cred, err := newDefaultAzureCredential(log)
		if err != nil {
			return nil, fmt.Errorf("failed to create default azure credential: %w", err)
		}
		client, err = azqueue.NewServiceClient(queueURL, cred, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create queue service client: %w", err)
		}
	}

	log.Info().Str("queue", queue).Msg("queue service initialized successfully")
	return &QueueService{serviceClient: client, queue: queue, log: log}, nil
}

// Publish enqueues ev as a base64 encoded JSON message.
func (s *QueueService) Publish(ctx context.Context, ev SessionEvent) error {
	if ev.At.IsZero() {
		ev.At = time.Now().UTC()
	}
	queueClient := s.serviceClient.NewQueueClient(s.queue)

	// Create queue if not exists (mostly for dev)
	_, err := queueClient.Create(ctx, nil)
	if err != nil && !strings.Contains(err.Error(), "QueueAlreadyExists") {
		s.log.Warn().Err(err).Str("queue", s.queue).Msg("failed to create queue (may already exist)")
	}

	msg, err := EncodeEvent(ev)
	if err != nil {
		return err
	}

	if _, err := queueClient.EnqueueMessage(ctx, msg, nil); err != nil {
		s.log.Error().Err(err).Str("queue", s.queue).Str("type", string(ev.Type)).Msg("failed to enqueue event")
		return fmt.Errorf("failed to enqueue message to %s: %w", s.queue, err)
	}

	s.log.Debug().Str("queue", s.queue).Str("type", string(ev.Type)).Msg("published event")
	return nil
}

// EncodeEvent renders ev the way queue consumers expect: base64 of its JSON.
func EncodeEvent(ev SessionEvent) (string, error) {
	b, err := json.Marshal(ev)
	if err != nil {
		return "", fmt.Errorf("failed to marshal message: %w", err)
	}
	return base64.StdEncoding.EncodeToString(b), nil
}
