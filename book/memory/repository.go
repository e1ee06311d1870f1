package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/marcelsud/book-catalog/book"
)

/*
Repository em memória

Útil para desenvolvimento local e testes de ponta a ponta da API.
O índice por título fica sob o mesmo lock dos registros, então a
verificação de unicidade e a escrita acontecem de forma atômica.
*/

type Repository struct {
	mu      sync.RWMutex
	nextID  int64
	books   map[int64]book.Book
	byTitle map[string]int64
}

func NewRepository() *Repository {
	return &Repository{
		books:   make(map[int64]book.Book),
		byTitle: make(map[string]int64),
	}
}

func (r *Repository) Select(ctx context.Context, id int64) (book.Book, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	b, ok := r.books[id]
	if !ok {
		return book.Book{}, book.ErrNotFound
	}
	return b, nil
}

func (r *Repository) SelectByTitle(ctx context.Context, title string) (book.Book, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.byTitle[title]
	if !ok {
		return book.Book{}, book.ErrNotFound
	}
	return r.books[id], nil
}

// SelectAll returns the books ordered by id.
func (r *Repository) SelectAll(ctx context.Context) ([]book.Book, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	all := make([]book.Book, 0, len(r.books))
	for _, b := range r.books {
		all = append(all, b)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })
	return all, nil
}

func (r *Repository) Insert(ctx context.Context, b book.Book) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, taken := r.byTitle[b.Title]; taken {
		return 0, book.ErrDuplicateTitle
	}
	r.nextID++
	b.ID = r.nextID
	r.books[b.ID] = b
	r.byTitle[b.Title] = b.ID
	return b.ID, nil
}

func (r *Repository) Update(ctx context.Context, b book.Book) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	current, ok := r.books[b.ID]
	if !ok {
		return book.ErrNotFound
	}
	if owner, taken := r.byTitle[b.Title]; taken && owner != b.ID {
		return book.ErrDuplicateTitle
	}
	delete(r.byTitle, current.Title)
	r.books[b.ID] = b
	r.byTitle[b.Title] = b.ID
	return nil
}

func (r *Repository) Delete(ctx context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.books[id]
	if !ok {
		return book.ErrNotFound
	}
	delete(r.books, id)
	delete(r.byTitle, b.Title)
	return nil
}

func (r *Repository) Close(ctx context.Context) error {
	return nil
}
