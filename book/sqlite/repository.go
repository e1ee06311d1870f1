package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	_ "github.com/glebarez/go-sqlite" // pure Go sqlite driver
	"github.com/marcelsud/book-catalog/book"
)

type Repository struct {
	DB *sql.DB
}

// NewRepository opens (or creates) the database file at path and makes sure the books table exists.
func NewRepository(ctx context.Context, path string) (*Repository, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite database: %w", err)
	}
	// one writer at a time, sqlite would answer SQLITE_BUSY otherwise
	db.SetMaxOpenConns(1)
	r := &Repository{DB: db}
	if err := r.CreateTable(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return r, nil
}

const selectColumns = "id, title, author, publisher, publication_year, cover, description, price"

func scanBook(s interface{ Scan(...any) error }) (book.Book, error) {
	var b book.Book
	err := s.Scan(&b.ID, &b.Title, &b.Author, &b.Publisher, &b.PublicationYear, &b.Cover, &b.Description, &b.Price)
	return b, err
}

func (r *Repository) selectOne(ctx context.Context, where string, arg any) (book.Book, error) {
	row := r.DB.QueryRowContext(ctx, "SELECT "+selectColumns+" FROM books WHERE "+where, arg)
	b, err := scanBook(row)
	if errors.Is(err, sql.ErrNoRows) {
		return book.Book{}, book.ErrNotFound
	}
	if err != nil {
		return book.Book{}, fmt.Errorf("selecting book: %w", err)
	}
	return b, nil
}

func (r *Repository) Select(ctx context.Context, id int64) (book.Book, error) {
	return r.selectOne(ctx, "id = ?", id)
}

func (r *Repository) SelectByTitle(ctx context.Context, title string) (book.Book, error) {
	return r.selectOne(ctx, "title = ?", title)
}

func (r *Repository) SelectAll(ctx context.Context) ([]book.Book, error) {
	rows, err := r.DB.QueryContext(ctx, "SELECT "+selectColumns+" FROM books ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("selecting books: %w", err)
	}
	defer rows.Close()

	books := []book.Book{}
	for rows.Next() {
		b, err := scanBook(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning book: %w", err)
		}
		books = append(books, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("interacting with books: %w", err)
	}
	return books, nil
}

func (r *Repository) Insert(ctx context.Context, b book.Book) (int64, error) {
	result, err := r.DB.ExecContext(ctx, `
		insert into books (title, author, publisher, publication_year, cover, description, price)
		values(?,?,?,?,?,?,?)`,
		b.Title, b.Author, b.Publisher, b.PublicationYear, b.Cover, b.Description, b.Price,
	)
	if isUniqueViolation(err) {
		return 0, book.ErrDuplicateTitle
	}
	if err != nil {
		return 0, fmt.Errorf("executing statement: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("getting last insert ID: %w", err)
	}
	return id, nil
}

func (r *Repository) Update(ctx context.Context, b book.Book) error {
	result, err := r.DB.ExecContext(ctx, `
		update books set title=?, author=?, publisher=?, publication_year=?, cover=?, description=?, price=?
		where id=?`,
		b.Title, b.Author, b.Publisher, b.PublicationYear, b.Cover, b.Description, b.Price, b.ID,
	)
	if isUniqueViolation(err) {
		return book.ErrDuplicateTitle
	}
	if err != nil {
		return fmt.Errorf("executing statement: %w", err)
	}
	return checkAffected(result)
}

func (r *Repository) Delete(ctx context.Context, id int64) error {
	result, err := r.DB.ExecContext(ctx, `DELETE FROM books WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting book: %w", err)
	}
	return checkAffected(result)
}

func checkAffected(result sql.Result) error {
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("getting rows affected: %w", err)
	}
	if n == 0 {
		return book.ErrNotFound
	}
	return nil
}

func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

func (r *Repository) CreateTable(ctx context.Context) error {
	_, err := r.DB.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS books (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  title TEXT NOT NULL UNIQUE,
  author TEXT NOT NULL,
  publisher TEXT NOT NULL DEFAULT '',
  publication_year TEXT NOT NULL DEFAULT '',
  cover TEXT NOT NULL DEFAULT '',
  description TEXT NOT NULL DEFAULT '',
  price TEXT NOT NULL DEFAULT ''
);`)
	if err != nil {
		return fmt.Errorf("creating table: %w", err)
	}
	return nil
}

func (r *Repository) Close(ctx context.Context) error {
	if err := r.DB.Close(); err != nil {
		return fmt.Errorf("closing repository: %w", err)
	}
	return nil
}
