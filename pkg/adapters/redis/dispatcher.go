package redis

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aretw0/onboard/pkg/domain"
	"github.com/aretw0/onboard/pkg/ports"
	backend "github.com/redis/go-redis/v9"
)

var _ ports.ActionDispatcher = (*Outbox)(nil)

// Outbox implements ports.ActionDispatcher by appending actions to a Redis
// stream. Workers that deliver email, Slack or provisioning read from it.
type Outbox struct {
	client *backend.Client
	stream string
	maxLen int64
}

// NewOutbox creates an outbox writing to prefix+"actions".
// maxLen caps the stream approximately; 0 keeps everything.
func NewOutbox(client *backend.Client, prefix string, maxLen int64) *Outbox {
	return &Outbox{
		client: client,
		stream: prefix + "actions",
		maxLen: maxLen,
	}
}

// Stream returns the stream key actions are written to.
func (o *Outbox) Stream() string {
	return o.stream
}

// Dispatch appends the action to the stream.
func (o *Outbox) Dispatch(ctx context.Context, req domain.ActionRequest) error {
	payload, err := json.Marshal(req.Payload)
	if err != nil {
		return fmt.Errorf("failed to marshal %s payload: %w", req.Type, err)
	}

	args := &backend.XAddArgs{
		Stream: o.stream,
		Values: map[string]any{
			"type":    req.Type,
			"user_id": req.UserID,
			"payload": string(payload),
		},
	}
	if o.maxLen > 0 {
		args.MaxLen = o.maxLen
		args.Approx = true
	}

	if err := o.client.XAdd(ctx, args).Err(); err != nil {
		return fmt.Errorf("failed to append %s to outbox: %w", req.Type, err)
	}
	return nil
}
