package chi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httplog"
	"github.com/marcelsud/book-catalog/book"
	"github.com/marcelsud/book-catalog/metrics"
)

/*
* Representa o livro na camada web, por isso ele tem as tags json
 */
type bookRequest struct {
	Title           string `json:"title"`
	Author          string `json:"author"`
	Publisher       string `json:"publisher"`
	PublicationYear text   `json:"publication_year"`
	Cover           string `json:"cover"`
	Description     string `json:"description"`
	Price           text   `json:"price"`
}

func (br bookRequest) book() book.Book {
	return book.Book{
		Title:           br.Title,
		Author:          br.Author,
		Publisher:       br.Publisher,
		PublicationYear: string(br.PublicationYear),
		Cover:           br.Cover,
		Description:     br.Description,
		Price:           string(br.Price),
	}
}

/*
* Representa o livro na camada web
 */
type bookResponse struct {
	ID              int64  `json:"id"`
	Title           string `json:"title"`
	Author          string `json:"author"`
	Publisher       string `json:"publisher"`
	PublicationYear string `json:"publication_year"`
	Cover           string `json:"cover"`
	Description     string `json:"description"`
	Price           string `json:"price"`
}

func newBookResponse(b book.Book) bookResponse {
	return bookResponse{
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

type messageResponse struct {
	Message string `json:"message"`
}

// text accepts a JSON string, number or null. Clients send publication_year and price both ways.
type text string

func (t *text) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*t = ""
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*t = text(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("expected a string or a number")
	}
	*t = text(n.String())
	return nil
}

const (
	msgNotFound      = "Item not found"
	msgMalformed     = "invalid data - malformed request body"
	msgPersistFailed = "invalid data - unable to persist book"
	msgListFailed    = "unable to list books"
	msgFetchFailed   = "unable to fetch book"
	msgUpdated       = "Update successfully"
	msgDeleted       = "Delete successfully"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeMessage(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, messageResponse{Message: message})
}

// bookID parses the {id} path parameter. Anything that is not a positive integer cannot name a book.
func bookID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// fail maps an error from the use case to a response. Store errors are logged, never echoed.
func fail(w http.ResponseWriter, r *http.Request, rec metrics.Recorder, operation string, err error, storeStatus int, storeMessage string) {
	var verr *book.ValidationError
	switch {
	case errors.As(err, &verr):
		rec.RecordOperation(r.Context(), operation, metrics.OutcomeInvalid)
		writeMessage(w, http.StatusBadRequest, "invalid data - "+verr.Message)
	case errors.Is(err, book.ErrNotFound):
		rec.RecordOperation(r.Context(), operation, metrics.OutcomeNotFound)
		writeMessage(w, http.StatusNotFound, msgNotFound)
	default:
		oplog := httplog.LogEntry(r.Context())
		oplog.Error().Err(err).Str("operation", operation).Msg("book store failure")
		rec.RecordOperation(r.Context(), operation, metrics.OutcomeStoreError)
		writeMessage(w, storeStatus, storeMessage)
	}
}

func notFound(w http.ResponseWriter, r *http.Request, rec metrics.Recorder, operation string) {
	rec.RecordOperation(r.Context(), operation, metrics.OutcomeNotFound)
	writeMessage(w, http.StatusNotFound, msgNotFound)
}

// maxBodyBytes caps a book payload
const maxBodyBytes = 1 << 20

func decodeBook(w http.ResponseWriter, r *http.Request) (book.Book, error) {
	var br bookRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&br); err != nil {
		return book.Book{}, err
	}
	return br.book(), nil
}

func malformed(w http.ResponseWriter, r *http.Request, rec metrics.Recorder, operation string) {
	rec.RecordOperation(r.Context(), operation, metrics.OutcomeInvalid)
	writeMessage(w, http.StatusBadRequest, msgMalformed)
}

func getBooks(bookService book.UseCase, rec metrics.Recorder) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		all, err := bookService.List(r.Context())
		if err != nil {
			fail(w, r, rec, "list", err, http.StatusInternalServerError, msgListFailed)
			return
		}
		result := make([]bookResponse, 0, len(all))
		for _, b := range all {
			result = append(result, newBookResponse(b))
		}
		rec.RecordOperation(r.Context(), "list", metrics.OutcomeSuccess)
		writeJSON(w, http.StatusOK, result)
	})
}

func getBook(bookService book.UseCase, rec metrics.Recorder) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := bookID(r)
		if !ok {
			notFound(w, r, rec, "show")
			return
		}
		b, err := bookService.Get(r.Context(), id)
		if err != nil {
			fail(w, r, rec, "show", err, http.StatusInternalServerError, msgFetchFailed)
			return
		}
		rec.RecordOperation(r.Context(), "show", metrics.OutcomeSuccess)
		writeJSON(w, http.StatusOK, newBookResponse(b))
	})
}

func postBooks(bookService book.UseCase, rec metrics.Recorder) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, err := decodeBook(w, r)
		if err != nil {
			malformed(w, r, rec, "create")
			return
		}
		created, err := bookService.Create(r.Context(), b)
		if err != nil {
			fail(w, r, rec, "create", err, http.StatusBadRequest, msgPersistFailed)
			return
		}
		rec.RecordOperation(r.Context(), "create", metrics.OutcomeSuccess)
		writeJSON(w, http.StatusCreated, newBookResponse(created))
	})
}

func putBook(bookService book.UseCase, rec metrics.Recorder) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := bookID(r)
		if !ok {
			notFound(w, r, rec, "update")
			return
		}
		b, err := decodeBook(w, r)
		if err != nil {
			// a missing book wins over a bad body
			if _, getErr := bookService.Get(r.Context(), id); getErr != nil {
				fail(w, r, rec, "update", getErr, http.StatusBadRequest, msgPersistFailed)
				return
			}
			malformed(w, r, rec, "update")
			return
		}
		if _, err := bookService.Update(r.Context(), id, b); err != nil {
			fail(w, r, rec, "update", err, http.StatusBadRequest, msgPersistFailed)
			return
		}
		rec.RecordOperation(r.Context(), "update", metrics.OutcomeSuccess)
		writeMessage(w, http.StatusOK, msgUpdated)
	})
}

func deleteBook(bookService book.UseCase, rec metrics.Recorder) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := bookID(r)
		if !ok {
			notFound(w, r, rec, "delete")
			return
		}
		if err := bookService.Delete(r.Context(), id); err != nil {
			fail(w, r, rec, "delete", err, http.StatusBadRequest, msgPersistFailed)
			return
		}
		rec.RecordOperation(r.Context(), "delete", metrics.OutcomeSuccess)
		writeMessage(w, http.StatusOK, msgDeleted)
	})
}
