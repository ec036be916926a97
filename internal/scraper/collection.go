package scraper

import (
	"context"
	"errors"
	"fmt"
	"net/url"

	"bangumi/internal/fetcher"
	"bangumi/internal/logger"
	"bangumi/pkg/models"
)

const (
	// DefaultPageSize is the largest page the collection endpoint serves.
	DefaultPageSize = 100
	// SubjectTypeAnime restricts the collection to anime subjects.
	SubjectTypeAnime = 2
)

// ErrNoCollection means the first collection page failed or reported no
// entries. It is fatal for the run.
var ErrNoCollection = errors.New("no collection found or user not found")

// Paginator walks every page of a user's collection.
type Paginator struct {
	Getter      fetcher.Getter
	BaseURL     string
	PageSize    int
	SubjectType int
	Log         logger.Logger
}

// NewPaginator creates a Paginator with the default page size and subject type.
func NewPaginator(g fetcher.Getter, baseURL string, log logger.Logger) *Paginator {
	if log == nil {
		log = logger.NewNop()
	}
	return &Paginator{
		Getter:      g,
		BaseURL:     baseURL,
		PageSize:    DefaultPageSize,
		SubjectType: SubjectTypeAnime,
		Log:         log,
	}
}

// CollectionURL is the collection endpoint of username.
func (p *Paginator) CollectionURL(username string) string {
	return fmt.Sprintf("%s/v0/users/%s/collections", p.BaseURL, url.PathEscape(username))
}

// FetchAll returns every entry of the collection in API order.
//
// The first page decides the page count. A later page that fails contributes
// nothing and the walk continues, so the result may be shorter than the
// reported total.
func (p *Paginator) FetchAll(ctx context.Context, username string) ([]models.RawCollectionEntry, error) {
	limit := p.PageSize
	if limit <= 0 {
		limit = DefaultPageSize
	}
	endpoint := p.CollectionURL(username)

	p.Log.Info("Start fetching collection", logger.String("user", username))
	first, err := p.page(ctx, endpoint, limit, 0)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNoCollection, err)
	}
	if first.Total <= 0 {
		return nil, ErrNoCollection
	}
	p.Log.Info("Collection size", logger.Int("total", first.Total))

	entries := make([]models.RawCollectionEntry, 0, first.Total)
	entries = append(entries, first.Data...)

	pages := (first.Total + limit - 1) / limit
	for page := 1; page < pages; page++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		p.Log.Info("Fetching page", logger.Int("page", page+1), logger.Int("pages", pages))
		next, err := p.page(ctx, endpoint, limit, page*limit)
		if err != nil {
			p.Log.Warn("Skipping collection page", logger.Int("page", page+1), logger.Error(err))
			continue
		}
		entries = append(entries, next.Data...)
	}

	if len(entries) < first.Total {
		p.Log.Warn("Collection incomplete", logger.Int("total", first.Total), logger.Int("fetched", len(entries)))
	}
	return entries, nil
}

func (p *Paginator) page(ctx context.Context, endpoint string, limit, offset int) (*models.CollectionPage, error) {
	return fetcher.Get[models.CollectionPage](ctx, p.Getter, endpoint, fetcher.Params{
		{Key: "subject_type", Value: p.SubjectType},
		{Key: "limit", Value: limit},
		{Key: "offset", Value: offset},
	})
}

// Partitions groups collection entries by category key.
type Partitions map[string][]models.RawCollectionEntry

// Partition splits entries into the want/watched/watching groups, keeping
// their relative order. Entries with any other status are returned as dropped.
func Partition(entries []models.RawCollectionEntry) (Partitions, []models.RawCollectionEntry) {
	parts := make(Partitions, len(models.Categories))
	for _, key := range models.Categories {
		parts[key] = []models.RawCollectionEntry{}
	}

	var dropped []models.RawCollectionEntry
	for _, e := range entries {
		key, ok := e.Status.Category()
		if !ok {
			dropped = append(dropped, e)
			continue
		}
		parts[key] = append(parts[key], e)
	}
	return parts, dropped
}
