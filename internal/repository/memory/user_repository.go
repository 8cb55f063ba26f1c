package memory

import (
	"context"
	"time"

	"calext-licensing-be/internal/entity"
	"calext-licensing-be/internal/repository/specification"

	"github.com/google/uuid"
)

type UserRepository struct {
	store *Store
}

func (r *UserRepository) Create(ctx context.Context, user *entity.User) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if user.Id == uuid.Nil {
		user.Id = uuid.New()
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now()
	}
	r.store.users[user.Id] = copyUser(user)
	return nil
}

func (r *UserRepository) Update(ctx context.Context, user *entity.User) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	user.UpdatedAt = time.Now()
	r.store.users[user.Id] = copyUser(user)
	return nil
}

func (r *UserRepository) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.User, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	for _, user := range r.store.users {
		if matchUser(user, specs) {
			return copyUser(user), nil
		}
	}
	return nil, nil
}

func (r *UserRepository) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	var count int64
	for _, user := range r.store.users {
		if matchUser(user, specs) {
			count++
		}
	}
	return count, nil
}

func (r *UserRepository) UpsertByEmail(ctx context.Context, user *entity.User) (*entity.User, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	for _, existing := range r.store.users {
		if existing.Email == user.Email {
			return copyUser(existing), nil
		}
	}
	if user.Id == uuid.Nil {
		user.Id = uuid.New()
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now()
	}
	r.store.users[user.Id] = copyUser(user)
	return copyUser(user), nil
}

func matchUser(user *entity.User, specs []specification.Specification) bool {
	for _, spec := range specs {
		switch s := spec.(type) {
		case specification.ByID:
			if user.Id != s.ID {
				return false
			}
		case specification.ByEmail:
			if user.Email != s.Email {
				return false
			}
		}
	}
	return true
}
