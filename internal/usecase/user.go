package usecase

import (
	"context"

	"libraryapi/internal/entity"
)

type UserRepository interface {
	Create(ctx context.Context, user *entity.User) error
	GetByEmail(ctx context.Context, email string) (entity.User, error)
	GetByID(ctx context.Context, id string) (entity.User, error)
	List(ctx context.Context) ([]entity.User, error)
}
