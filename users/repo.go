package users

import "context"

// UserRepo is the credential store. GetByLogin returns (nil, nil) when no row matches,
// GetByID returns an error wrapping errors.ErrNotFound.
type UserRepo interface {
	GetByLogin(ctx context.Context, login string) (*User, error)
	GetByID(ctx context.Context, id int) (*User, error)
	List(ctx context.Context, storeID *int) ([]*User, error)
	Update(ctx context.Context, update Update) error
	UpdateProfile(ctx context.Context, id int, update ProfileUpdate) error
	SetSecret(ctx context.Context, id int, secret string) error
}
