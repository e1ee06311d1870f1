//go:build integration

package postgres

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/marcelsud/book-catalog/book"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

/*
Testes de Integração com PostgreSQL + Testcontainers

Um container por driver; os subtestes compartilham o container e limpam
a tabela entre si.

Execute com: go test -tags=integration ./book/postgres/...

REQUISITOS:
- Docker rodando localmente
*/

func TestPostgresRepository_Integration(t *testing.T) {
	for _, driver := range []string{DriverPQ, DriverPGX} {
		t.Run(driver, func(t *testing.T) {
			ctx := context.Background()
			pgContainer, cleanup := SetupPostgresContainer(t, ctx)
			defer cleanup()

			repo := CreateTestRepository(t, ctx, driver, pgContainer.ConnStr)
			defer repo.Close(ctx)

			t.Run("crud round trip", func(t *testing.T) {
				CleanupDatabase(t, ctx, pgContainer.DB)

				b := book.Book{
					Title:           "Eating Clean",
					Author:          "Robb Wolf",
					Publisher:       "Kawan Pustaka",
					PublicationYear: "2016",
					Cover:           "https://example.com/cover.jpg",
					Description:     "The book is about eating clean and healthy food",
					Price:           "100000",
				}
				id, err := repo.Insert(ctx, b)
				require.NoError(t, err)
				assert.Equal(t, int64(1), id)
				AssertBookCount(t, ctx, pgContainer.DB, 1)

				saved, err := repo.Select(ctx, id)
				require.NoError(t, err)
				b.ID = id
				assert.Equal(t, b, saved)

				byTitle, err := repo.SelectByTitle(ctx, "Eating Clean")
				require.NoError(t, err)
				assert.Equal(t, id, byTitle.ID)

				b.Description = ""
				b.Title = "Eating Clean, 2nd edition"
				require.NoError(t, repo.Update(ctx, b))
				saved, err = repo.Select(ctx, id)
				require.NoError(t, err)
				assert.Equal(t, b, saved)

				require.NoError(t, repo.Delete(ctx, id))
				_, err = repo.Select(ctx, id)
				assert.ErrorIs(t, err, book.ErrNotFound)
				all, err := repo.SelectAll(ctx)
				require.NoError(t, err)
				assert.Empty(t, all)
			})

			t.Run("missing ids", func(t *testing.T) {
				CleanupDatabase(t, ctx, pgContainer.DB)

				assert.ErrorIs(t, repo.Update(ctx, book.Book{ID: 404, Title: "x", Author: "y"}), book.ErrNotFound)
				assert.ErrorIs(t, repo.Delete(ctx, 404), book.ErrNotFound)
			})

			t.Run("title uniqueness is enforced by the table", func(t *testing.T) {
				CleanupDatabase(t, ctx, pgContainer.DB)

				_, err := repo.Insert(ctx, book.Book{Title: "Dune", Author: "Frank Herbert"})
				require.NoError(t, err)
				other, err := repo.Insert(ctx, book.Book{Title: "Emma", Author: "Jane Austen"})
				require.NoError(t, err)

				_, err = repo.Insert(ctx, book.Book{Title: "Dune", Author: "Someone Else"})
				assert.ErrorIs(t, err, book.ErrDuplicateTitle)

				err = repo.Update(ctx, book.Book{ID: other, Title: "Dune", Author: "Jane Austen"})
				assert.ErrorIs(t, err, book.ErrDuplicateTitle)
			})

			t.Run("concurrent inserts of one title", func(t *testing.T) {
				CleanupDatabase(t, ctx, pgContainer.DB)

				const writers = 10
				var wg sync.WaitGroup
				errs := make(chan error, writers)
				for i := 0; i < writers; i++ {
					wg.Add(1)
					go func(i int) {
						defer wg.Done()
						_, err := repo.Insert(ctx, book.Book{Title: "Neuromancer", Author: fmt.Sprintf("author %d", i)})
						errs <- err
					}(i)
				}
				wg.Wait()
				close(errs)

				succeeded := 0
				for err := range errs {
					if err == nil {
						succeeded++
						continue
					}
					assert.ErrorIs(t, err, book.ErrDuplicateTitle)
				}
				assert.Equal(t, 1, succeeded)
				AssertBookCount(t, ctx, pgContainer.DB, 1)
			})

			t.Run("service on top of postgres", func(t *testing.T) {
				CleanupDatabase(t, ctx, pgContainer.DB)

				s := book.NewService(repo)
				created, err := s.Create(ctx, book.Book{Title: "Eating Clean", Author: "Robb Wolf"})
				require.NoError(t, err)

				_, err = s.Create(ctx, book.Book{Title: "Eating Clean", Author: "Someone Else"})
				var verr *book.ValidationError
				assert.ErrorAs(t, err, &verr)

				require.NoError(t, s.Delete(ctx, created.ID))
				_, err = s.Get(ctx, created.ID)
				assert.ErrorIs(t, err, book.ErrNotFound)
			})
		})
	}
}
