package service

import (
	"context"

	"github.com/iliyamo/seat-booking/internal/model"
)

// EventPublisher hands committed domain changes to downstream consumers.
// Implementations are called after the change is durable; a failed
// publish never undoes it.
type EventPublisher interface {
	PublishSeatBooked(ctx context.Context, seat model.Seat) error
	PublishReviewRecorded(ctx context.Context, seat model.Seat, review model.Review) error
}

// NopPublisher drops every event.  It is used when no broker is configured.
type NopPublisher struct{}

func (NopPublisher) PublishSeatBooked(context.Context, model.Seat) error { return nil }

func (NopPublisher) PublishReviewRecorded(context.Context, model.Seat, model.Review) error {
	return nil
}
