package usecase

import (
	"context"

	"libraryapi/internal/entity"
)

// ListParams bounds a paginated catalog listing.
type ListParams struct {
	Limit  int
	Offset int
}

type BookRepository interface {
	Create(ctx context.Context, book *entity.Book) error
	List(ctx context.Context, params ListParams) ([]entity.Book, int, error)
	GetByID(ctx context.Context, id string) (entity.Book, error)
	Update(ctx context.Context, book *entity.Book) error
	Delete(ctx context.Context, id, ownerID string) error
}
