package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres" // goqu postgres dialect
	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib" // pgx database/sql driver
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq" // PostgreSQL driver
	"github.com/marcelsud/book-catalog/book"
)

/*
PostgreSQL Repository Implementation

- SQL gerado com goqu (dialeto postgres, placeholders $1, $2)
- Scan de linhas com sqlx
- Dois drivers database/sql possíveis: lib/pq ("postgres") ou pgx ("pgx")
- Unicidade do título garantida pela constraint UNIQUE da tabela
*/

const (
	DriverPQ  = "postgres"
	DriverPGX = "pgx"

	table = "books"

	// SQLSTATE unique_violation
	uniqueViolation = "23505"
)

var (
	dialect = goqu.Dialect("postgres")
	columns = []interface{}{"id", "title", "author", "publisher", "publication_year", "cover", "description", "price"}
)

type bookRow struct {
	ID              int64  `db:"id" goqu:"skipinsert,skipupdate"`
	Title           string `db:"title"`
	Author          string `db:"author"`
	Publisher       string `db:"publisher"`
	PublicationYear string `db:"publication_year"`
	Cover           string `db:"cover"`
	Description     string `db:"description"`
	Price           string `db:"price"`
}

func newRow(b book.Book) bookRow {
	return bookRow{
		ID:              b.ID,
		Title:           b.Title,
		Author:          b.Author,
		Publisher:       b.Publisher,
		PublicationYear: b.PublicationYear,
		Cover:           b.Cover,
		Description:     b.Description,
		Price:           b.Price,
	}
}

func (r bookRow) book() book.Book {
	return book.Book{
		ID:              r.ID,
		Title:           r.Title,
		Author:          r.Author,
		Publisher:       r.Publisher,
		PublicationYear: r.PublicationYear,
		Cover:           r.Cover,
		Description:     r.Description,
		Price:           r.Price,
	}
}

type Repository struct {
	DB *sqlx.DB
}

// NewRepository cria uma nova instância do repositório PostgreSQL (lib/pq) com pool padrão (25, 5, 5 min)
func NewRepository(connectionString string) (*Repository, error) {
	return NewRepositoryWithPoolConfig(DriverPQ, connectionString, 25, 5, 5)
}

// NewRepositoryWithPoolConfig cria uma nova instância do repositório PostgreSQL com configuração customizável
// driver: DriverPQ ou DriverPGX
// maxOpenConns: máximo de conexões simultâneas (0 = ilimitado)
// maxIdleConns: máximo de conexões inativas mantidas no pool
// maxLifeMinutes: duração máxima em minutos que uma conexão pode ser reutilizada
func NewRepositoryWithPoolConfig(driver, connectionString string, maxOpenConns, maxIdleConns, maxLifeMinutes int) (*Repository, error) {
	if driver != DriverPQ && driver != DriverPGX {
		return nil, fmt.Errorf("unsupported postgres driver %q", driver)
	}
	db, err := sqlx.Open(driver, connectionString)
	if err != nil {
		return nil, fmt.Errorf("opening postgres connection: %w", err)
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("pinging postgres: %w", err)
	}

	if maxOpenConns > 0 {
		db.SetMaxOpenConns(maxOpenConns)
	}
	if maxIdleConns > 0 {
		db.SetMaxIdleConns(maxIdleConns)
	}
	if maxLifeMinutes > 0 {
		db.SetConnMaxLifetime(time.Duration(maxLifeMinutes) * time.Minute)
	}

	return &Repository{
		DB: db,
	}, nil
}

func selectByIDQuery(id int64) (string, []interface{}, error) {
	return dialect.From(table).Prepared(true).Select(columns...).Where(goqu.C("id").Eq(id)).ToSQL()
}

func selectByTitleQuery(title string) (string, []interface{}, error) {
	return dialect.From(table).Prepared(true).Select(columns...).Where(goqu.C("title").Eq(title)).ToSQL()
}

func selectAllQuery() (string, []interface{}, error) {
	return dialect.From(table).Prepared(true).Select(columns...).Order(goqu.C("id").Asc()).ToSQL()
}

func insertQuery(b book.Book) (string, []interface{}, error) {
	return dialect.Insert(table).Prepared(true).Rows(newRow(b)).Returning("id").ToSQL()
}

func updateQuery(b book.Book) (string, []interface{}, error) {
	return dialect.Update(table).Prepared(true).Set(newRow(b)).Where(goqu.C("id").Eq(b.ID)).ToSQL()
}

func deleteQuery(id int64) (string, []interface{}, error) {
	return dialect.Delete(table).Prepared(true).Where(goqu.C("id").Eq(id)).ToSQL()
}

func (r *Repository) selectOne(ctx context.Context, query string, args []interface{}) (book.Book, error) {
	var row bookRow
	err := r.DB.GetContext(ctx, &row, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return book.Book{}, book.ErrNotFound
	}
	if err != nil {
		return book.Book{}, fmt.Errorf("selecting book: %w", err)
	}
	return row.book(), nil
}

// Select busca um livro por ID
func (r *Repository) Select(ctx context.Context, id int64) (book.Book, error) {
	query, args, err := selectByIDQuery(id)
	if err != nil {
		return book.Book{}, fmt.Errorf("building query: %w", err)
	}
	return r.selectOne(ctx, query, args)
}

// SelectByTitle busca um livro pelo título exato
func (r *Repository) SelectByTitle(ctx context.Context, title string) (book.Book, error) {
	query, args, err := selectByTitleQuery(title)
	if err != nil {
		return book.Book{}, fmt.Errorf("building query: %w", err)
	}
	return r.selectOne(ctx, query, args)
}

// SelectAll retorna todos os livros ordenados por id
func (r *Repository) SelectAll(ctx context.Context) ([]book.Book, error) {
	query, args, err := selectAllQuery()
	if err != nil {
		return nil, fmt.Errorf("building query: %w", err)
	}

	var rows []bookRow
	if err := r.DB.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("selecting books: %w", err)
	}

	books := make([]book.Book, 0, len(rows))
	for _, row := range rows {
		books = append(books, row.book())
	}
	return books, nil
}

// Insert insere um novo livro e retorna o ID gerado
func (r *Repository) Insert(ctx context.Context, b book.Book) (int64, error) {
	query, args, err := insertQuery(b)
	if err != nil {
		return 0, fmt.Errorf("building query: %w", err)
	}

	var id int64
	err = r.DB.QueryRowxContext(ctx, query, args...).Scan(&id)
	if isUniqueViolation(err) {
		return 0, book.ErrDuplicateTitle
	}
	if err != nil {
		return 0, fmt.Errorf("inserting book: %w", err)
	}

	return id, nil
}

// Update atualiza um livro existente
func (r *Repository) Update(ctx context.Context, b book.Book) error {
	query, args, err := updateQuery(b)
	if err != nil {
		return fmt.Errorf("building query: %w", err)
	}

	result, err := r.DB.ExecContext(ctx, query, args...)
	if isUniqueViolation(err) {
		return book.ErrDuplicateTitle
	}
	if err != nil {
		return fmt.Errorf("updating book: %w", err)
	}

	return checkAffected(result)
}

// Delete remove um livro por ID
func (r *Repository) Delete(ctx context.Context, id int64) error {
	query, args, err := deleteQuery(id)
	if err != nil {
		return fmt.Errorf("building query: %w", err)
	}

	result, err := r.DB.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("deleting book: %w", err)
	}

	return checkAffected(result)
}

func checkAffected(result sql.Result) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("getting rows affected: %w", err)
	}
	if rows == 0 {
		return book.ErrNotFound
	}
	return nil
}

// isUniqueViolation reconhece o erro de constraint UNIQUE dos dois drivers
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == uniqueViolation
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == uniqueViolation
	}
	return false
}

// Close fecha a conexão com o banco de dados
func (r *Repository) Close(ctx context.Context) error {
	if r.DB != nil {
		return r.DB.Close()
	}
	return nil
}

const schema = `
	CREATE TABLE IF NOT EXISTS books (
		id BIGSERIAL PRIMARY KEY,
		title TEXT NOT NULL UNIQUE,
		author VARCHAR(255) NOT NULL,
		publisher TEXT NOT NULL DEFAULT '',
		publication_year TEXT NOT NULL DEFAULT '',
		cover TEXT NOT NULL DEFAULT '',
		description TEXT NOT NULL DEFAULT '',
		price TEXT NOT NULL DEFAULT ''
	)
`

// CreateTable cria a tabela books
func (r *Repository) CreateTable(ctx context.Context) error {
	_, err := r.DB.ExecContext(ctx, schema)
	if err != nil {
		return fmt.Errorf("creating table: %w", err)
	}

	return nil
}

// DropTable remove a tabela books (útil para testes)
func (r *Repository) DropTable(ctx context.Context) error {
	_, err := r.DB.ExecContext(ctx, "DROP TABLE IF EXISTS books CASCADE")
	if err != nil {
		return fmt.Errorf("dropping table: %w", err)
	}

	return nil
}
