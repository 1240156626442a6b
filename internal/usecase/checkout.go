package usecase

import (
	"context"
	"time"

	"libraryapi/internal/entity"
)

// CreateCheckout is the command to lend a book to a user.
type CreateCheckout struct {
	BookID       string
	UserID       string
	CheckedOutAt time.Time
}

// ReturnCheckout is the command to complete an active loan. CheckoutID and
// UserID must both match the active checkout or the command is rejected.
type ReturnCheckout struct {
	CheckoutID string
	BookID     string
	UserID     string
	ReturnedAt time.Time
}

// CheckoutRepository is the contract for checkout storage.
//
// Create and Return are state transitions and must be race-safe: two
// concurrent Creates for the same book may not both succeed, and a losing
// Create fails with ErrAlreadyCheckedOut or ErrSerialization. The listing
// methods are plain reads.
type CheckoutRepository interface {
	Create(ctx context.Context, event CreateCheckout) error
	Return(ctx context.Context, event ReturnCheckout) error
	ListUnreturned(ctx context.Context) ([]entity.Checkout, error)
	ListUnreturnedByUser(ctx context.Context, userID string) ([]entity.Checkout, error)
	HistoryByBook(ctx context.Context, bookID string) ([]entity.Checkout, error)
}

// CheckoutUsecase stamps commands with the current time and delegates to the
// repository, which owns all transactional logic.
type CheckoutUsecase struct {
	repo CheckoutRepository
	now  func() time.Time
}

func NewCheckoutUsecase(repo CheckoutRepository) *CheckoutUsecase {
	return &CheckoutUsecase{repo: repo, now: time.Now}
}

func (uc *CheckoutUsecase) Checkout(ctx context.Context, bookID, userID string) error {
	return uc.repo.Create(ctx, CreateCheckout{
		BookID:       bookID,
		UserID:       userID,
		CheckedOutAt: uc.now().UTC(),
	})
}

func (uc *CheckoutUsecase) Return(ctx context.Context, checkoutID, bookID, userID string) error {
	return uc.repo.Return(ctx, ReturnCheckout{
		CheckoutID: checkoutID,
		BookID:     bookID,
		UserID:     userID,
		ReturnedAt: uc.now().UTC(),
	})
}

func (uc *CheckoutUsecase) ListUnreturned(ctx context.Context) ([]entity.Checkout, error) {
	return uc.repo.ListUnreturned(ctx)
}

func (uc *CheckoutUsecase) ListUnreturnedByUser(ctx context.Context, userID string) ([]entity.Checkout, error) {
	return uc.repo.ListUnreturnedByUser(ctx, userID)
}

func (uc *CheckoutUsecase) HistoryByBook(ctx context.Context, bookID string) ([]entity.Checkout, error) {
	return uc.repo.HistoryByBook(ctx, bookID)
}
