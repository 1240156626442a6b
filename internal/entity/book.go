package entity

import "time"

type Book struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Author      string    `json:"author"`
	ISBN        string    `json:"isbn"`
	Description string    `json:"description"`
	OwnerID     string    `json:"owner_id"`
	OwnerName   string    `json:"owner_name,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	// Checkout is the active loan on this book, if any. Only populated
	// on single-book lookups.
	Checkout *BookCheckout `json:"checkout,omitempty"`
}

// BookCheckout is the loan summary embedded in a book response.
type BookCheckout struct {
	CheckoutID   string    `json:"checkout_id"`
	UserID       string    `json:"user_id"`
	CheckedOutAt time.Time `json:"checked_out_at"`
}
