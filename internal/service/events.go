package service

import (
	"context"
	"errors"
	"time"

	"github.com/damoang/angple-cms/internal/common"
)

// Event is a domain event delivered to webhooks
type Event struct {
	Name          string      `json:"event"`
	SiteID        string      `json:"siteId"`
	OccurredAt    time.Time   `json:"occurredAt"`
	Data          interface{} `json:"data"`
	ChangedFields []string    `json:"changedFields,omitempty"`
}

// EventPublisher hands events to asynchronous delivery; Publish never blocks on delivery
type EventPublisher interface {
	Publish(ctx context.Context, ev Event)
}

type noopPublisher struct{}

func (noopPublisher) Publish(context.Context, Event) {}

// wrapErr passes application errors through and wraps everything else as internal
func wrapErr(op string, err error) error {
	if err == nil {
		return nil
	}
	var appErr *common.AppError
	if errors.As(err, &appErr) {
		return err
	}
	return common.Internal(op, err)
}
