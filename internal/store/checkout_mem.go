package store

import (
	"context"
	"sort"
	"sync"

	"libraryapi/internal/entity"
	"libraryapi/internal/usecase"

	"github.com/google/uuid"
)

// CheckoutMem is an in-memory CheckoutRepository. It mirrors the state
// machine of CheckoutPG exactly, but swaps the database's serializable
// isolation for a single mutex, which makes it deterministic for unit tests
// of the lifecycle without a live database.
type CheckoutMem struct {
	mu       sync.Mutex
	books    map[string]entity.CheckoutBook
	active   map[string]entity.Checkout   // keyed by book id, at most one per book
	returned map[string][]entity.Checkout // keyed by book id, append order
}

func NewCheckoutMem() *CheckoutMem {
	return &CheckoutMem{
		books:    make(map[string]entity.CheckoutBook),
		active:   make(map[string]entity.Checkout),
		returned: make(map[string][]entity.Checkout),
	}
}

// PutBook registers a book so the existence precondition can pass. It stands
// in for the catalog collaborator, which owns the books relation.
func (r *CheckoutMem) PutBook(book entity.CheckoutBook) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.books[book.ID] = book
}

func (r *CheckoutMem) Create(_ context.Context, event usecase.CreateCheckout) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	book, ok := r.books[event.BookID]
	if !ok {
		return usecase.ErrNotFound
	}
	if _, ok := r.active[event.BookID]; ok {
		return usecase.ErrAlreadyCheckedOut
	}

	r.active[event.BookID] = entity.Checkout{
		ID:           uuid.NewString(),
		UserID:       event.UserID,
		CheckedOutAt: event.CheckedOutAt,
		Book:         book,
	}
	return nil
}

func (r *CheckoutMem) Return(_ context.Context, event usecase.ReturnCheckout) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.books[event.BookID]; !ok {
		return usecase.ErrNotFound
	}
	active, ok := r.active[event.BookID]
	if !ok {
		return usecase.ErrNotCheckedOut
	}
	if active.ID != event.CheckoutID || active.UserID != event.UserID {
		return usecase.ErrCheckoutMismatch
	}

	returnedAt := event.ReturnedAt
	active.ReturnedAt = &returnedAt
	r.returned[event.BookID] = append(r.returned[event.BookID], active)
	delete(r.active, event.BookID)
	return nil
}

func (r *CheckoutMem) ListUnreturned(_ context.Context) ([]entity.Checkout, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var checkouts []entity.Checkout
	for _, c := range r.active {
		checkouts = append(checkouts, c)
	}
	sortByCheckedOutAsc(checkouts)
	return checkouts, nil
}

func (r *CheckoutMem) ListUnreturnedByUser(_ context.Context, userID string) ([]entity.Checkout, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var checkouts []entity.Checkout
	for _, c := range r.active {
		if c.UserID == userID {
			checkouts = append(checkouts, c)
		}
	}
	sortByCheckedOutAsc(checkouts)
	return checkouts, nil
}

func (r *CheckoutMem) HistoryByBook(_ context.Context, bookID string) ([]entity.Checkout, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	history := make([]entity.Checkout, len(r.returned[bookID]))
	copy(history, r.returned[bookID])
	sort.SliceStable(history, func(i, j int) bool {
		return history[i].CheckedOutAt.After(history[j].CheckedOutAt)
	})

	// The active loan leads the history regardless of its timestamp.
	if active, ok := r.active[bookID]; ok {
		history = append([]entity.Checkout{active}, history...)
	}
	return history, nil
}

// ActiveCount reports the number of active loans for a book. Test helper for
// asserting the at-most-one invariant.
func (r *CheckoutMem) ActiveCount(bookID string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.active[bookID]; ok {
		return 1
	}
	return 0
}

func sortByCheckedOutAsc(checkouts []entity.Checkout) {
	sort.SliceStable(checkouts, func(i, j int) bool {
		return checkouts[i].CheckedOutAt.Before(checkouts[j].CheckedOutAt)
	})
}
