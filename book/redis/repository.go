package redis

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/marcelsud/book-catalog/book"
	"github.com/redis/go-redis/v9"
)

/* Redis read-through cache in front of any book.Repository
 * Only lookups by id are cached: uniqueness checks and listings always hit the store
 * Every write bumps book:{id}:version and drops book:{id}, before and after the store write
 * A read fills the cache only if the version it saw before going to the store is unchanged (WATCH/MULTI)
 * Read-side cache failures fall back to the store; a write whose invalidation fails returns the error
 */

const (
	keyPrefix = "book" // Key naming: book:{id} and book:{id}:version

	// versionTTL outlives any read in flight
	versionTTL = 24 * time.Hour
)

var errStaleFill = errors.New("cached book invalidated during read")

var json = jsoniter.ConfigCompatibleWithStandardLibrary

type cachedBook struct {
	ID              int64  `json:"id"`
	Title           string `json:"title"`
	Author          string `json:"author"`
	Publisher       string `json:"publisher"`
	PublicationYear string `json:"publication_year"`
	Cover           string `json:"cover"`
	Description     string `json:"description"`
	Price           string `json:"price"`
}

type Repository struct {
	next   book.Repository
	client *redis.Client
	ttl    time.Duration
}

// NewRepository connects to Redis and wraps next with a cache
func NewRepository(next book.Repository, addr, password string, db int, ttl time.Duration) (*Repository, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("connecting to Redis: %w", err)
	}

	return NewRepositoryWithClient(next, client, ttl), nil
}

// NewRepositoryWithClient wraps next with a cache backed by an existing client
func NewRepositoryWithClient(next book.Repository, client *redis.Client, ttl time.Duration) *Repository {
	return &Repository{
		next:   next,
		client: client,
		ttl:    ttl,
	}
}

func cacheKey(id int64) string {
	return keyPrefix + ":" + strconv.FormatInt(id, 10)
}

func versionKey(id int64) string {
	return cacheKey(id) + ":version"
}

// Select serves from the cache when possible and fills it on a miss
func (r *Repository) Select(ctx context.Context, id int64) (book.Book, error) {
	if b, ok := r.lookup(ctx, id); ok {
		return b, nil
	}
	version, versionErr := r.version(ctx, id)
	b, err := r.next.Select(ctx, id)
	if err != nil {
		return book.Book{}, err
	}
	if versionErr == nil {
		r.fill(ctx, b, version)
	}
	return b, nil
}

func (r *Repository) lookup(ctx context.Context, id int64) (book.Book, bool) {
	data, err := r.client.Get(ctx, cacheKey(id)).Bytes()
	if err != nil {
		// redis.Nil is a plain miss, anything else is an unavailable cache
		return book.Book{}, false
	}
	var cb cachedBook
	if err := json.Unmarshal(data, &cb); err != nil {
		return book.Book{}, false
	}
	return book.Book(cb), true
}

func (r *Repository) version(ctx context.Context, id int64) (int64, error) {
	v, err := r.client.Get(ctx, versionKey(id)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return v, err
}

// fill caches b unless an invalidation ran after version was read
func (r *Repository) fill(ctx context.Context, b book.Book, version int64) {
	data, err := json.Marshal(cachedBook(b))
	if err != nil {
		return
	}
	vkey := versionKey(b.ID)
	_ = r.client.Watch(ctx, func(tx *redis.Tx) error {
		current, err := tx.Get(ctx, vkey).Int64()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		if current != version {
			return errStaleFill
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, cacheKey(b.ID), data, r.ttl)
			return nil
		})
		return err
	}, vkey)
}

func (r *Repository) invalidate(ctx context.Context, id int64) error {
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, versionKey(id))
		pipe.Expire(ctx, versionKey(id), versionTTL)
		pipe.Del(ctx, cacheKey(id))
		return nil
	})
	if err != nil {
		return fmt.Errorf("invalidating cached book %d: %w", id, err)
	}
	return nil
}

func (r *Repository) SelectByTitle(ctx context.Context, title string) (book.Book, error) {
	return r.next.SelectByTitle(ctx, title)
}

func (r *Repository) SelectAll(ctx context.Context) ([]book.Book, error) {
	return r.next.SelectAll(ctx)
}

func (r *Repository) Insert(ctx context.Context, b book.Book) (int64, error) {
	return r.next.Insert(ctx, b)
}

// Update refuses to touch the store while the cached entry cannot be dropped
func (r *Repository) Update(ctx context.Context, b book.Book) error {
	if err := r.invalidate(ctx, b.ID); err != nil {
		return err
	}
	if err := r.next.Update(ctx, b); err != nil {
		return err
	}
	return r.invalidate(ctx, b.ID)
}

func (r *Repository) Delete(ctx context.Context, id int64) error {
	if err := r.invalidate(ctx, id); err != nil {
		return err
	}
	if err := r.next.Delete(ctx, id); err != nil {
		return err
	}
	return r.invalidate(ctx, id)
}

// Close closes the Redis client and the wrapped repository
func (r *Repository) Close(ctx context.Context) error {
	errClient := r.client.Close()
	errNext := r.next.Close(ctx)
	if err := errors.Join(errClient, errNext); err != nil {
		return fmt.Errorf("closing cached repository: %w", err)
	}
	return nil
}
