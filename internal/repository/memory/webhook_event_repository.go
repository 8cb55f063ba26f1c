package memory

import (
	"context"
	"sort"
	"time"

	"calext-licensing-be/internal/entity"
	"calext-licensing-be/internal/repository/specification"

	"github.com/google/uuid"
)

type WebhookEventRepository struct {
	store *Store
}

// Insert mirrors the database's unique index on provider_event_id: the
// duplicate check and the insert happen under one lock.
func (r *WebhookEventRepository) Insert(ctx context.Context, event *entity.WebhookEvent) (bool, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	for _, existing := range r.store.events {
		if existing.ProviderEventId == event.ProviderEventId {
			return false, nil
		}
	}
	if event.Id == uuid.Nil {
		event.Id = uuid.New()
	}
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now()
	}
	r.store.events[event.Id] = copyEvent(event)
	return true, nil
}

func (r *WebhookEventRepository) MarkProcessed(ctx context.Context, event *entity.WebhookEvent) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	now := time.Now()
	event.Processed = true
	event.ProcessedAt = &now
	r.store.events[event.Id] = copyEvent(event)
	return nil
}

func (r *WebhookEventRepository) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.WebhookEvent, error) {
	events, err := r.FindAll(ctx, specs...)
	if err != nil || len(events) == 0 {
		return nil, err
	}
	return events[0], nil
}

func (r *WebhookEventRepository) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.WebhookEvent, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	var out []*entity.WebhookEvent
	for _, event := range r.store.events {
		if matchEvent(event, specs) {
			out = append(out, copyEvent(event))
		}
	}

	q := collectQuery(specs)
	sort.Slice(out, func(i, j int) bool {
		if q.orderDesc {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return page(out, q), nil
}

func matchEvent(event *entity.WebhookEvent, specs []specification.Specification) bool {
	for _, spec := range specs {
		switch s := spec.(type) {
		case specification.ByID:
			if event.Id != s.ID {
				return false
			}
		case specification.ByProviderEventID:
			if event.ProviderEventId != s.EventID {
				return false
			}
		case specification.FilterBy:
			if s.Field == "event_type" && event.EventType != toString(s.Value) {
				return false
			}
		}
	}
	return true
}
