package contract

import (
	"context"

	"calext-licensing-be/internal/entity"
	"calext-licensing-be/internal/repository/specification"
)

type UserRepository interface {
	Create(ctx context.Context, user *entity.User) error
	Update(ctx context.Context, user *entity.User) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.User, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)

	// UpsertByEmail inserts the user unless a row with the same email already
	// exists, then returns the surviving row. Relies on the unique index on
	// email, so a webhook racing a signup converges on one user.
	UpsertByEmail(ctx context.Context, user *entity.User) (*entity.User, error)
}
