package entity

import "time"

// Checkout is a single loan of a book, either active (ReturnedAt nil) or
// completed. Completed loans live in the append-only returned_checkouts
// relation and are never modified again.
type Checkout struct {
	ID           string       `json:"id"`
	UserID       string       `json:"checked_out_by"`
	CheckedOutAt time.Time    `json:"checked_out_at"`
	ReturnedAt   *time.Time   `json:"returned_at,omitempty"`
	Book         CheckoutBook `json:"book"`
}

// CheckoutBook is the book summary joined onto a loan for display.
type CheckoutBook struct {
	ID     string `json:"id"`
	Title  string `json:"title"`
	Author string `json:"author"`
	ISBN   string `json:"isbn"`
}
