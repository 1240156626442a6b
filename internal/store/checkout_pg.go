package store

import (
	"context"
	"errors"
	"time"

	"libraryapi/internal/entity"
	"libraryapi/internal/usecase"

	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// CheckoutPG stores loans in two relations: checkouts holds the active loan
// per book (at most one, enforced by a unique constraint on book_id on top of
// the transaction isolation), and returned_checkouts is the append-only
// history. A book's availability is derived from row presence, never from a
// status column, so every state transition runs under a SERIALIZABLE
// transaction.
type CheckoutPG struct {
	db      *pgxpool.Pool
	timeout time.Duration
}

func NewCheckoutPG(db *pgxpool.Pool, timeout time.Duration) *CheckoutPG {
	return &CheckoutPG{db: db, timeout: timeout}
}

// withTimeout bounds a whole command. On expiry the open transaction is
// rolled back by the driver and the context error surfaces to the caller.
func (r *CheckoutPG) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, r.timeout)
}

// checkoutState is the result of probing a book's current state inside a
// transaction. CheckoutID and UserID are nil when the book is on the shelf.
type checkoutState struct {
	BookID     string
	CheckoutID *string
	UserID     *string
}

// inSerializableTx begins a SERIALIZABLE transaction, runs fn against it, and
// commits only if fn returns nil. The deferred rollback is a no-op once the
// commit has gone through, so every exit path releases the connection.
func (r *CheckoutPG) inSerializableTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.Serializable})
	if err != nil {
		return mapPgError(err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(tx); err != nil {
		return mapPgError(err)
	}
	return mapPgError(tx.Commit(ctx))
}

// stateOf resolves the current state of a book on the open transaction. The
// subsequent write must happen on the same transaction for the isolation
// level to protect the check-then-act sequence.
func (r *CheckoutPG) stateOf(ctx context.Context, tx pgx.Tx, bookID string) (checkoutState, error) {
	const query = `
	SELECT b.id, c.id, c.user_id
	FROM books AS b
	LEFT OUTER JOIN checkouts AS c ON c.book_id = b.id
	WHERE b.id = $1
	`
	var state checkoutState
	err := tx.QueryRow(ctx, query, bookID).Scan(&state.BookID, &state.CheckoutID, &state.UserID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return checkoutState{}, usecase.ErrNotFound
		}
		return checkoutState{}, err
	}
	return state, nil
}

func (r *CheckoutPG) Create(ctx context.Context, event usecase.CreateCheckout) error {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()
	return r.inSerializableTx(ctx, func(tx pgx.Tx) error {
		state, err := r.stateOf(ctx, tx, event.BookID)
		if err != nil {
			return err
		}
		if state.CheckoutID != nil {
			return usecase.ErrAlreadyCheckedOut
		}

		const insertSQL = `
		INSERT INTO checkouts (id, book_id, user_id, checked_out_at)
		VALUES ($1, $2, $3, $4)
		`
		tag, err := tx.Exec(ctx, insertSQL, uuid.NewString(), event.BookID, event.UserID, event.CheckedOutAt)
		if err != nil {
			return err
		}
		if tag.RowsAffected() != 1 {
			return usecase.ErrRowsAffected
		}
		return nil
	})
}

func (r *CheckoutPG) Return(ctx context.Context, event usecase.ReturnCheckout) error {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()
	return r.inSerializableTx(ctx, func(tx pgx.Tx) error {
		state, err := r.stateOf(ctx, tx, event.BookID)
		if err != nil {
			return err
		}
		if state.CheckoutID == nil {
			return usecase.ErrNotCheckedOut
		}
		if *state.CheckoutID != event.CheckoutID || *state.UserID != event.UserID {
			return usecase.ErrCheckoutMismatch
		}

		// Copy the active row into history, then delete it. Both writes
		// sit in the same transaction, so a failure after the insert
		// rolls the copy back and the move stays atomic.
		const moveSQL = `
		INSERT INTO returned_checkouts (id, book_id, user_id, checked_out_at, returned_at)
		SELECT id, book_id, user_id, checked_out_at, $2
		FROM checkouts
		WHERE id = $1
		`
		tag, err := tx.Exec(ctx, moveSQL, event.CheckoutID, event.ReturnedAt)
		if err != nil {
			return err
		}
		if tag.RowsAffected() != 1 {
			return usecase.ErrRowsAffected
		}

		const deleteSQL = `DELETE FROM checkouts WHERE id = $1`
		tag, err = tx.Exec(ctx, deleteSQL, event.CheckoutID)
		if err != nil {
			return err
		}
		if tag.RowsAffected() != 1 {
			return usecase.ErrRowsAffected
		}
		return nil
	})
}

func (r *CheckoutPG) ListUnreturned(ctx context.Context) ([]entity.Checkout, error) {
	const query = `
	SELECT c.id, c.user_id, c.checked_out_at, b.id, b.title, b.author, b.isbn
	FROM checkouts AS c
	INNER JOIN books AS b ON b.id = c.book_id
	ORDER BY c.checked_out_at ASC
	`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanCheckouts(rows)
}

func (r *CheckoutPG) ListUnreturnedByUser(ctx context.Context, userID string) ([]entity.Checkout, error) {
	const query = `
	SELECT c.id, c.user_id, c.checked_out_at, b.id, b.title, b.author, b.isbn
	FROM checkouts AS c
	INNER JOIN books AS b ON b.id = c.book_id
	WHERE c.user_id = $1
	ORDER BY c.checked_out_at ASC
	`
	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanCheckouts(rows)
}

// HistoryByBook returns the completed loans for a book, newest first, with
// the active loan (if any) prepended. The active loan always leads even when
// it started before the newest historical entry; "in progress" outranks the
// timestamp sort.
func (r *CheckoutPG) HistoryByBook(ctx context.Context, bookID string) ([]entity.Checkout, error) {
	active, err := r.unreturnedByBook(ctx, bookID)
	if err != nil {
		return nil, err
	}

	const query = `
	SELECT rc.id, rc.user_id, rc.checked_out_at, rc.returned_at, b.id, b.title, b.author, b.isbn
	FROM returned_checkouts AS rc
	INNER JOIN books AS b ON b.id = rc.book_id
	WHERE rc.book_id = $1
	ORDER BY rc.checked_out_at DESC
	`
	rows, err := r.db.Query(ctx, query, bookID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var history []entity.Checkout
	for rows.Next() {
		var c entity.Checkout
		if err := rows.Scan(
			&c.ID, &c.UserID, &c.CheckedOutAt, &c.ReturnedAt,
			&c.Book.ID, &c.Book.Title, &c.Book.Author, &c.Book.ISBN,
		); err != nil {
			return nil, err
		}
		history = append(history, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if active != nil {
		history = append([]entity.Checkout{*active}, history...)
	}
	return history, nil
}

func (r *CheckoutPG) unreturnedByBook(ctx context.Context, bookID string) (*entity.Checkout, error) {
	const query = `
	SELECT c.id, c.user_id, c.checked_out_at, b.id, b.title, b.author, b.isbn
	FROM checkouts AS c
	INNER JOIN books AS b ON b.id = c.book_id
	WHERE c.book_id = $1
	LIMIT 1
	`
	var c entity.Checkout
	err := r.db.QueryRow(ctx, query, bookID).Scan(
		&c.ID, &c.UserID, &c.CheckedOutAt,
		&c.Book.ID, &c.Book.Title, &c.Book.Author, &c.Book.ISBN,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &c, nil
}

func scanCheckouts(rows pgx.Rows) ([]entity.Checkout, error) {
	var checkouts []entity.Checkout
	for rows.Next() {
		var c entity.Checkout
		if err := rows.Scan(
			&c.ID, &c.UserID, &c.CheckedOutAt,
			&c.Book.ID, &c.Book.Title, &c.Book.Author, &c.Book.ISBN,
		); err != nil {
			return nil, err
		}
		checkouts = append(checkouts, c)
	}
	return checkouts, rows.Err()
}

// mapPgError translates driver errors into the usecase sentinels. A
// serialization failure means this command lost a race and may be retried by
// the caller. A unique violation on checkouts.book_id is the constraint
// backstop catching the same race; it reads the same as losing it upfront.
func mapPgError(err error) error {
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgerrcode.SerializationFailure:
			return usecase.ErrSerialization
		case pgerrcode.UniqueViolation:
			if pgErr.ConstraintName == "checkouts_book_id_key" {
				return usecase.ErrAlreadyCheckedOut
			}
			return usecase.ErrAlreadyExists
		}
	}
	return err
}
