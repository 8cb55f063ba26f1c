package memory

import (
	"context"
	"sort"
	"time"

	"calext-licensing-be/internal/entity"
	"calext-licensing-be/internal/repository/specification"

	"github.com/google/uuid"
)

type PaymentAttemptRepository struct {
	store *Store
}

func (r *PaymentAttemptRepository) Create(ctx context.Context, attempt *entity.PaymentAttempt) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if attempt.Id == uuid.Nil {
		attempt.Id = uuid.New()
	}
	if attempt.CreatedAt.IsZero() {
		attempt.CreatedAt = time.Now()
	}
	r.store.attempts[attempt.Id] = copyAttempt(attempt)
	return nil
}

func (r *PaymentAttemptRepository) Update(ctx context.Context, attempt *entity.PaymentAttempt) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	r.store.attempts[attempt.Id] = copyAttempt(attempt)
	return nil
}

func (r *PaymentAttemptRepository) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.PaymentAttempt, error) {
	attempts, err := r.FindAll(ctx, specs...)
	if err != nil || len(attempts) == 0 {
		return nil, err
	}
	return attempts[0], nil
}

func (r *PaymentAttemptRepository) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.PaymentAttempt, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	var out []*entity.PaymentAttempt
	for _, attempt := range r.store.attempts {
		if matchAttempt(attempt, specs) {
			out = append(out, copyAttempt(attempt))
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

func matchAttempt(attempt *entity.PaymentAttempt, specs []specification.Specification) bool {
	for _, spec := range specs {
		switch s := spec.(type) {
		case specification.ByID:
			if attempt.Id != s.ID {
				return false
			}
		case specification.UserOwnedBy:
			if attempt.UserId != s.UserID {
				return false
			}
		case specification.ByStatus:
			if string(attempt.Status) != s.Status {
				return false
			}
		case specification.FilterBy:
			if s.Field == "status" && string(attempt.Status) != toString(s.Value) {
				return false
			}
		}
	}
	return true
}
