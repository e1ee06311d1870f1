package book

import "context"

/* Interfaces pequenas */

/*
 * Quando uma struct representa DADOS deveria usar sempre value semantics e não pointer (ex: Book) .
 * Se a struct representa uma API deveria ser pointer (ex: Service).
 */

/* Interfaces abstraem comportamento e não coisas*/

type Reader interface {
	Select(ctx context.Context, id int64) (Book, error)
	SelectByTitle(ctx context.Context, title string) (Book, error)
	SelectAll(ctx context.Context) ([]Book, error)
}

// Writer implementations enforce title uniqueness atomically and report it as ErrDuplicateTitle.
type Writer interface {
	Insert(ctx context.Context, book Book) (int64, error)
	Update(ctx context.Context, book Book) error
	Delete(ctx context.Context, id int64) error
}

/* Composição de interfaces */

type Repository interface {
	Reader
	Writer
	Close(ctx context.Context) error
}
