package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/marcelsud/book-catalog/book"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRepository(t *testing.T) *Repository {
	t.Helper()
	ctx := context.Background()
	repo, err := NewRepository(ctx, filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = repo.Close(ctx) })
	return repo
}

func TestRepository(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository(t)
	b := book.Book{
		Title:           "Foundation",
		Author:          "Isaac Asimov",
		Publisher:       "Gnome Press",
		PublicationYear: "1951",
	}
	id, err := repo.Insert(ctx, b)
	require.NoError(t, err)
	assert.Equal(t, int64(1), id)

	saved, err := repo.Select(ctx, id)
	require.NoError(t, err)
	b.ID = id
	assert.Equal(t, b, saved)

	all, err := repo.SelectAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, len(all))
	assert.Equal(t, b.Title, all[0].Title)

	b.Title = "The Foundation"
	b.Publisher = ""
	require.NoError(t, repo.Update(ctx, b))
	saved, err = repo.Select(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, b, saved)

	require.NoError(t, repo.Delete(ctx, id))
	all, err = repo.SelectAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
	_, err = repo.Select(ctx, id)
	assert.ErrorIs(t, err, book.ErrNotFound)
}

func TestRepository_MissingIDs(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository(t)
	assert.ErrorIs(t, repo.Update(ctx, book.Book{ID: 3, Title: "x", Author: "y"}), book.ErrNotFound)
	assert.ErrorIs(t, repo.Delete(ctx, 3), book.ErrNotFound)
	_, err := repo.SelectByTitle(ctx, "x")
	assert.ErrorIs(t, err, book.ErrNotFound)
}

func TestRepository_TitleUniqueness(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository(t)
	_, err := repo.Insert(ctx, book.Book{Title: "Dune", Author: "Frank Herbert"})
	require.NoError(t, err)
	other, err := repo.Insert(ctx, book.Book{Title: "Emma", Author: "Jane Austen"})
	require.NoError(t, err)

	_, err = repo.Insert(ctx, book.Book{Title: "Dune", Author: "Someone Else"})
	assert.ErrorIs(t, err, book.ErrDuplicateTitle)

	err = repo.Update(ctx, book.Book{ID: other, Title: "Dune", Author: "Jane Austen"})
	assert.ErrorIs(t, err, book.ErrDuplicateTitle)

	found, err := repo.SelectByTitle(ctx, "Emma")
	require.NoError(t, err)
	assert.Equal(t, other, found.ID)
}

func TestRepository_PersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "catalog.db")

	repo, err := NewRepository(ctx, path)
	require.NoError(t, err)
	id, err := repo.Insert(ctx, book.Book{Title: "Neuromancer", Author: "William Gibson"})
	require.NoError(t, err)
	require.NoError(t, repo.Close(ctx))

	reopened, err := NewRepository(ctx, path)
	require.NoError(t, err)
	defer reopened.Close(ctx)
	saved, err := reopened.Select(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Neuromancer", saved.Title)
}
