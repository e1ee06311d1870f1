//go:build integration

package postgres

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

/*
Test Helpers para PostgreSQL com Testcontainers

- Sobe um container Docker do PostgreSQL
- Cria banco de dados de teste
- Retorna connection string
- Cleanup automático após testes

Referências:
- https://golang.testcontainers.org/modules/postgres/
- https://eltonminetto.dev/post/2024-02-15-using-test-helpers/
*/

const (
	defaultDatabase = "testdb"
	defaultUser     = "testuser"
	defaultPassword = "testpass"
)

// PostgresContainer encapsula o container e a conexão
type PostgresContainer struct {
	Container testcontainers.Container
	DB        *sql.DB
	ConnStr   string
}

// SetupPostgresContainer cria e inicia um container PostgreSQL real
func SetupPostgresContainer(tb testing.TB, ctx context.Context) (*PostgresContainer, func()) {
	tb.Helper()

	pgContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase(defaultDatabase),
		postgres.WithUsername(defaultUser),
		postgres.WithPassword(defaultPassword),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	require.NoError(tb, err)

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(tb, err)

	db, err := sql.Open("postgres", connStr)
	require.NoError(tb, err)
	require.NoError(tb, db.PingContext(ctx))

	container := &PostgresContainer{
		Container: pgContainer,
		DB:        db,
		ConnStr:   connStr,
	}

	cleanup := func() {
		if db != nil {
			_ = db.Close()
		}
		if pgContainer != nil {
			_ = pgContainer.Terminate(ctx)
		}
	}

	return container, cleanup
}

// CreateTestRepository cria um repositório para testes com a tabela books recriada do zero
func CreateTestRepository(tb testing.TB, ctx context.Context, driver, connStr string) *Repository {
	tb.Helper()

	var repo *Repository
	var err error
	if driver == DriverPQ {
		repo, err = NewRepository(connStr)
	} else {
		repo, err = NewRepositoryWithPoolConfig(driver, connStr, 10, 5, 5)
	}
	require.NoError(tb, err)
	require.NoError(tb, repo.DropTable(ctx))
	require.NoError(tb, repo.CreateTable(ctx))

	return repo
}

// CleanupDatabase remove todos os registros da tabela books
func CleanupDatabase(tb testing.TB, ctx context.Context, db *sql.DB) {
	tb.Helper()

	_, err := db.ExecContext(ctx, "TRUNCATE TABLE books RESTART IDENTITY CASCADE")
	require.NoError(tb, err)
}

// AssertBookCount verifica quantos livros estão no banco
func AssertBookCount(tb testing.TB, ctx context.Context, db *sql.DB, expected int) {
	tb.Helper()

	var count int
	err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM books").Scan(&count)
	require.NoError(tb, err)
	require.Equal(tb, expected, count)
}
