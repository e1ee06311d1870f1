package book

import (
	"context"
	"errors"
	"fmt"
)

/*
 * - Quando uma struct representa DADOS deveria usar sempre value semantics e não pointer (ex: Book) .
 * Se a struct representa uma API deveria ser pointer (ex: Service).
 */

type UseCase interface {
	Create(ctx context.Context, b Book) (Book, error)
	List(ctx context.Context) ([]Book, error)
	Get(ctx context.Context, id int64) (Book, error)
	Update(ctx context.Context, id int64, b Book) (Book, error)
	Delete(ctx context.Context, id int64) error
}

type Service struct {
	Repo      Repository
	Validator *Validator
}

func NewService(repo Repository) *Service {
	return &Service{
		Repo:      repo,
		Validator: NewValidator(repo),
	}
}

func (s *Service) Create(ctx context.Context, b Book) (Book, error) {
	b.ID = 0
	if err := s.Validator.Validate(ctx, b); err != nil {
		return Book{}, err
	}
	id, err := s.Repo.Insert(ctx, b)
	if errors.Is(err, ErrDuplicateTitle) {
		/* outra requisição gravou o mesmo título entre a validação e o insert */
		return Book{}, titleTaken()
	}
	if err != nil {
		return Book{}, fmt.Errorf("inserting book: %w", err)
	}
	b.ID = id
	return b, nil
}

func (s *Service) List(ctx context.Context) ([]Book, error) {
	all, err := s.Repo.SelectAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("selecting books: %w", err)
	}
	return all, nil
}

func (s *Service) Get(ctx context.Context, id int64) (Book, error) {
	b, err := s.Repo.Select(ctx, id)
	if err != nil {
		return Book{}, fmt.Errorf("selecting book: %w", err)
	}
	return b, nil
}

// Update replaces every field of the stored book with b. Optional fields left empty in b are cleared.
func (s *Service) Update(ctx context.Context, id int64, b Book) (Book, error) {
	if _, err := s.Repo.Select(ctx, id); err != nil {
		return Book{}, fmt.Errorf("selecting book: %w", err)
	}
	b.ID = id
	if err := s.Validator.Validate(ctx, b); err != nil {
		return Book{}, err
	}
	err := s.Repo.Update(ctx, b)
	if errors.Is(err, ErrDuplicateTitle) {
		return Book{}, titleTaken()
	}
	if err != nil {
		return Book{}, fmt.Errorf("updating book: %w", err)
	}
	return b, nil
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	if _, err := s.Repo.Select(ctx, id); err != nil {
		return fmt.Errorf("selecting book: %w", err)
	}
	err := s.Repo.Delete(ctx, id)
	if err != nil {
		return fmt.Errorf("deleting book: %w", err)
	}
	return nil
}
