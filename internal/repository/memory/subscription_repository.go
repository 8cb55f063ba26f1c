package memory

import (
	"context"
	"sort"
	"time"

	"calext-licensing-be/internal/entity"
	"calext-licensing-be/internal/repository/specification"

	"github.com/google/uuid"
)

type SubscriptionRepository struct {
	store *Store
}

func (r *SubscriptionRepository) Create(ctx context.Context, subscription *entity.Subscription) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if subscription.Id == uuid.Nil {
		subscription.Id = uuid.New()
	}
	if subscription.CreatedAt.IsZero() {
		subscription.CreatedAt = time.Now()
	}
	r.store.subscriptions[subscription.Id] = copySubscription(subscription)
	return nil
}

func (r *SubscriptionRepository) Update(ctx context.Context, subscription *entity.Subscription) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	subscription.UpdatedAt = time.Now()
	r.store.subscriptions[subscription.Id] = copySubscription(subscription)
	return nil
}

func (r *SubscriptionRepository) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Subscription, error) {
	subs, err := r.FindAll(ctx, specs...)
	if err != nil || len(subs) == 0 {
		return nil, err
	}
	return subs[0], nil
}

func (r *SubscriptionRepository) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Subscription, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	var out []*entity.Subscription
	for _, sub := range r.store.subscriptions {
		if matchSubscription(sub, specs) {
			out = append(out, copySubscription(sub))
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

func (r *SubscriptionRepository) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	subs, err := r.FindAll(ctx, specs...)
	if err != nil {
		return 0, err
	}
	return int64(len(subs)), nil
}

func matchSubscription(sub *entity.Subscription, specs []specification.Specification) bool {
	for _, spec := range specs {
		switch s := spec.(type) {
		case specification.ByID:
			if sub.Id != s.ID {
				return false
			}
		case specification.UserOwnedBy:
			if sub.UserId != s.UserID {
				return false
			}
		case specification.ByLicenseKey:
			if sub.LicenseKey != s.Key {
				return false
			}
		case specification.ByPaddleSubscriptionID:
			if sub.PaddleSubscriptionId == nil || *sub.PaddleSubscriptionId != s.SubscriptionID {
				return false
			}
		case specification.ByStatus:
			if string(sub.Status) != s.Status {
				return false
			}
		case specification.FilterBy:
			if s.Field == "status" && string(sub.Status) != toString(s.Value) {
				return false
			}
		}
	}
	return true
}

func toString(v interface{}) string {
	switch s := v.(type) {
	case string:
		return s
	case entity.SubscriptionStatus:
		return string(s)
	case entity.PaymentAttemptStatus:
		return string(s)
	}
	return ""
}
