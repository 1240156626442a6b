package store

import (
	"context"
	"errors"
	"time"

	"libraryapi/internal/entity"
	"libraryapi/internal/usecase"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type BookPG struct {
	db *pgxpool.Pool
}

func NewBookPG(db *pgxpool.Pool) *BookPG {
	return &BookPG{db: db}
}

func (r *BookPG) Create(ctx context.Context, book *entity.Book) error {
	const query = `
	INSERT INTO books (id, title, author, isbn, description, user_id)
	VALUES (gen_random_uuid(), $1, $2, $3, $4, $5)
	RETURNING id, created_at, updated_at
	`
	err := r.db.QueryRow(ctx, query,
		book.Title, book.Author, book.ISBN, book.Description, book.OwnerID,
	).Scan(&book.ID, &book.CreatedAt, &book.UpdatedAt)
	return mapPgError(err)
}

// List pages through the catalog in two steps: first the id window with the
// full count, then the rows for those ids with owner enrichment. An empty
// window means a zero total as well, since the count rides on the first
// query's rows.
func (r *BookPG) List(ctx context.Context, params usecase.ListParams) ([]entity.Book, int, error) {
	const windowSQL = `
	SELECT COUNT(*) OVER() AS total, b.id
	FROM books AS b
	ORDER BY b.created_at DESC
	LIMIT $1 OFFSET $2
	`
	rows, err := r.db.Query(ctx, windowSQL, params.Limit, params.Offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var total int
	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&total, &id); err != nil {
			return nil, 0, err
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	if len(ids) == 0 {
		return nil, 0, nil
	}

	const dataSQL = `
	SELECT b.id, b.title, b.author, b.isbn, b.description, b.user_id, u.username
	FROM books AS b
	INNER JOIN users AS u ON u.id = b.user_id
	WHERE b.id = ANY($1)
	ORDER BY b.created_at DESC
	`
	dataRows, err := r.db.Query(ctx, dataSQL, ids)
	if err != nil {
		return nil, 0, err
	}
	defer dataRows.Close()

	var books []entity.Book
	for dataRows.Next() {
		var b entity.Book
		if err := dataRows.Scan(
			&b.ID, &b.Title, &b.Author, &b.ISBN, &b.Description, &b.OwnerID, &b.OwnerName,
		); err != nil {
			return nil, 0, err
		}
		books = append(books, b)
	}
	return books, total, dataRows.Err()
}

// GetByID loads a book with its owner and, when the book is out on loan, the
// active checkout summary.
func (r *BookPG) GetByID(ctx context.Context, id string) (entity.Book, error) {
	const query = `
	SELECT b.id, b.title, b.author, b.isbn, b.description, b.user_id, u.username,
	       b.created_at, b.updated_at,
	       c.id, c.user_id, c.checked_out_at
	FROM books AS b
	INNER JOIN users AS u ON u.id = b.user_id
	LEFT OUTER JOIN checkouts AS c ON c.book_id = b.id
	WHERE b.id = $1
	`
	var b entity.Book
	var checkoutID, checkoutUserID *string
	var checkedOutAt *time.Time
	err := r.db.QueryRow(ctx, query, id).Scan(
		&b.ID, &b.Title, &b.Author, &b.ISBN, &b.Description, &b.OwnerID, &b.OwnerName,
		&b.CreatedAt, &b.UpdatedAt,
		&checkoutID, &checkoutUserID, &checkedOutAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return entity.Book{}, usecase.ErrNotFound
		}
		return entity.Book{}, err
	}
	if checkoutID != nil {
		b.Checkout = &entity.BookCheckout{
			CheckoutID:   *checkoutID,
			UserID:       *checkoutUserID,
			CheckedOutAt: *checkedOutAt,
		}
	}
	return b, nil
}

func (r *BookPG) Update(ctx context.Context, book *entity.Book) error {
	const query = `
	UPDATE books
	SET title = $1, author = $2, isbn = $3, description = $4, updated_at = now()
	WHERE id = $5 AND user_id = $6
	`
	tag, err := r.db.Exec(ctx, query,
		book.Title, book.Author, book.ISBN, book.Description, book.ID, book.OwnerID,
	)
	if err != nil {
		return mapPgError(err)
	}
	if tag.RowsAffected() == 0 {
		return usecase.ErrNotFound
	}
	return nil
}

func (r *BookPG) Delete(ctx context.Context, id, ownerID string) error {
	const query = `DELETE FROM books WHERE id = $1 AND user_id = $2`
	tag, err := r.db.Exec(ctx, query, id, ownerID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return usecase.ErrNotFound
	}
	return nil
}
