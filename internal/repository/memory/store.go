// Package memory provides an in-process implementation of the repository
// contracts. It backs the service test suites so webhook and license
// semantics can be exercised without a database.
package memory

import (
	"context"
	"sync"

	"calext-licensing-be/internal/entity"
	"calext-licensing-be/internal/repository/contract"
	"calext-licensing-be/internal/repository/specification"
	"calext-licensing-be/internal/repository/unitofwork"

	"github.com/google/uuid"
)

type Store struct {
	mu            sync.Mutex
	txMu          sync.Mutex
	users         map[uuid.UUID]*entity.User
	subscriptions map[uuid.UUID]*entity.Subscription
	attempts      map[uuid.UUID]*entity.PaymentAttempt
	events        map[uuid.UUID]*entity.WebhookEvent
}

func NewStore() *Store {
	return &Store{
		users:         make(map[uuid.UUID]*entity.User),
		subscriptions: make(map[uuid.UUID]*entity.Subscription),
		attempts:      make(map[uuid.UUID]*entity.PaymentAttempt),
		events:        make(map[uuid.UUID]*entity.WebhookEvent),
	}
}

type Factory struct {
	store *Store
}

func NewFactory(store *Store) unitofwork.RepositoryFactory {
	return &Factory{store: store}
}

func (f *Factory) NewUnitOfWork(ctx context.Context) unitofwork.UnitOfWork {
	return &memoryUnitOfWork{store: f.store}
}

// memoryUnitOfWork serializes transactions on a store-wide mutex. Begin
// snapshots the maps so Rollback can restore them, approximating the
// transactional isolation the database implementation gets for free.
type memoryUnitOfWork struct {
	store *Store
	inTx  bool

	snapUsers         map[uuid.UUID]*entity.User
	snapSubscriptions map[uuid.UUID]*entity.Subscription
	snapAttempts      map[uuid.UUID]*entity.PaymentAttempt
	snapEvents        map[uuid.UUID]*entity.WebhookEvent
}

func (u *memoryUnitOfWork) Begin(ctx context.Context) error {
	u.store.txMu.Lock()
	u.inTx = true

	u.store.mu.Lock()
	defer u.store.mu.Unlock()
	u.snapUsers = make(map[uuid.UUID]*entity.User, len(u.store.users))
	for k, v := range u.store.users {
		u.snapUsers[k] = copyUser(v)
	}
	u.snapSubscriptions = make(map[uuid.UUID]*entity.Subscription, len(u.store.subscriptions))
	for k, v := range u.store.subscriptions {
		u.snapSubscriptions[k] = copySubscription(v)
	}
	u.snapAttempts = make(map[uuid.UUID]*entity.PaymentAttempt, len(u.store.attempts))
	for k, v := range u.store.attempts {
		u.snapAttempts[k] = copyAttempt(v)
	}
	u.snapEvents = make(map[uuid.UUID]*entity.WebhookEvent, len(u.store.events))
	for k, v := range u.store.events {
		u.snapEvents[k] = copyEvent(v)
	}
	return nil
}

func (u *memoryUnitOfWork) Commit() error {
	if !u.inTx {
		return nil
	}
	u.inTx = false
	u.store.txMu.Unlock()
	return nil
}

func (u *memoryUnitOfWork) Rollback() error {
	if !u.inTx {
		return nil
	}
	u.store.mu.Lock()
	u.store.users = u.snapUsers
	u.store.subscriptions = u.snapSubscriptions
	u.store.attempts = u.snapAttempts
	u.store.events = u.snapEvents
	u.store.mu.Unlock()

	u.inTx = false
	u.store.txMu.Unlock()
	return nil
}

func (u *memoryUnitOfWork) UserRepository() contract.UserRepository {
	return &UserRepository{store: u.store}
}

func (u *memoryUnitOfWork) SubscriptionRepository() contract.SubscriptionRepository {
	return &SubscriptionRepository{store: u.store}
}

func (u *memoryUnitOfWork) PaymentAttemptRepository() contract.PaymentAttemptRepository {
	return &PaymentAttemptRepository{store: u.store}
}

func (u *memoryUnitOfWork) WebhookEventRepository() contract.WebhookEventRepository {
	return &WebhookEventRepository{store: u.store}
}

// query captures the ordering and paging specs that apply after filtering.
type query struct {
	orderField string
	orderDesc  bool
	limit      int
	offset     int
}

func collectQuery(specs []specification.Specification) query {
	q := query{limit: -1}
	for _, spec := range specs {
		switch s := spec.(type) {
		case specification.OrderBy:
			q.orderField = s.Field
			q.orderDesc = s.Desc
		case specification.Pagination:
			q.limit = s.Limit
			q.offset = s.Offset
		}
	}
	return q
}

func page[T any](items []T, q query) []T {
	if q.offset > 0 {
		if q.offset >= len(items) {
			return nil
		}
		items = items[q.offset:]
	}
	if q.limit >= 0 && q.limit < len(items) {
		items = items[:q.limit]
	}
	return items
}
