package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/adampresley/mediaentity/pkg/gallery"
	"github.com/adampresley/mediaentity/pkg/image/hydrateoptions"
	"github.com/adampresley/mediaentity/pkg/models"
	"github.com/goccy/go-json"
	"github.com/rfberaldo/sqlz"
)

type GalleryServicer interface {
	GetGallery(id string, options ...hydrateoptions.HydrateOption) (gallery.Gallery, error)
	GetGalleryIDs() ([]string, error)
	SaveGallery(id string, raw gallery.Response) (gallery.Gallery, error)
	UpdateGallery(id string, update GalleryUpdateFunc) (gallery.Gallery, error)
}

/*
GalleryUpdateFunc receives the currently stored gallery and returns the gallery
to store. Returning an error aborts the update.
*/
type GalleryUpdateFunc func(current gallery.Gallery) (gallery.Gallery, error)

type GalleryServiceConfig struct {
	DB *sqlz.DB
}

type GalleryService struct {
	db    *sqlz.DB
	locks *galleryLocks
}

func NewGalleryService(config GalleryServiceConfig) GalleryService {
	return GalleryService{
		db:    config.DB,
		locks: &galleryLocks{locks: map[string]*galleryLock{}},
	}
}

/*
GetGallery loads a stored gallery and hydrates it. models.ErrGalleryNotFound
is returned when there is no gallery with the given id.
*/
func (s GalleryService) GetGallery(id string, options ...hydrateoptions.HydrateOption) (gallery.Gallery, error) {
	var (
		err    error
		raw    gallery.Response
		record models.GalleryRecord
	)

	sql := `
SELECT
   g.id
   , g.payload
FROM galleries AS g
WHERE 1=1
   AND g.id=?
   `

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	defer cancel()

	if err = s.db.QueryRow(ctx, &record, sql, id); err != nil {
		if sqlz.IsNotFound(err) {
			return gallery.Gallery{}, fmt.Errorf("gallery %s: %w", id, models.ErrGalleryNotFound)
		}

		return gallery.Gallery{}, fmt.Errorf("error querying for gallery %s: %w", id, err)
	}

	if err = json.Unmarshal([]byte(record.Payload), &raw); err != nil {
		return gallery.Gallery{}, fmt.Errorf("error decoding payload of gallery %s: %w", id, err)
	}

	return gallery.Hydrate(raw, options...), nil
}

func (s GalleryService) GetGalleryIDs() ([]string, error) {
	var (
		err     error
		records []models.GalleryRecord
	)

	sql := `
SELECT
   g.id
   , g.payload
FROM galleries AS g
ORDER BY g.id
`

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	defer cancel()

	if err = s.db.Query(ctx, &records, sql); err != nil && !sqlz.IsNotFound(err) {
		return nil, fmt.Errorf("error querying for gallery ids: %w", err)
	}

	result := make([]string, 0, len(records))
	for _, record := range records {
		result = append(result, record.ID)
	}

	return result, nil
}

/*
SaveGallery hydrates the raw gallery and stores the result, replacing a gallery
with the same id. The hydrated gallery is returned.
*/
func (s GalleryService) SaveGallery(id string, raw gallery.Response) (gallery.Gallery, error) {
	var (
		err error
		b   []byte
	)

	result := gallery.Hydrate(raw)

	unlock := s.locks.lock(id)
	defer unlock()

	if b, err = json.Marshal(result); err != nil {
		return result, fmt.Errorf("error encoding gallery %s: %w", id, err)
	}

	sql := `
INSERT INTO galleries (
   id,
   payload
) VALUES (?, ?)
ON CONFLICT(id) DO UPDATE SET
   payload=excluded.payload,
   updated_at=CURRENT_TIMESTAMP
`

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	defer cancel()

	if _, err = s.db.Exec(ctx, sql, id, string(b)); err != nil {
		return result, fmt.Errorf("error saving gallery %s: %w", id, err)
	}

	return result, nil
}

/*
UpdateGallery reads the stored gallery, passes it to update and stores the
result. The read and the write happen in one transaction, and writes to the
same gallery through this service wait until the update is done, so changes
stored in between cannot be lost. models.ErrGalleryNotFound is returned when
there is no gallery with the given id.
*/
func (s GalleryService) UpdateGallery(id string, update GalleryUpdateFunc) (gallery.Gallery, error) {
	var (
		err     error
		tx      *sqlz.Tx
		b       []byte
		raw     gallery.Response
		record  models.GalleryRecord
		updated gallery.Gallery
	)

	unlock := s.locks.lock(id)
	defer unlock()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	defer cancel()

	if tx, err = s.db.Begin(ctx); err != nil {
		return gallery.Gallery{}, fmt.Errorf("error starting transaction for gallery %s: %w", id, err)
	}

	defer tx.Rollback()

	sql := `
SELECT
   g.id
   , g.payload
FROM galleries AS g
WHERE 1=1
   AND g.id=?
   `

	if err = tx.QueryRow(ctx, &record, sql, id); err != nil {
		if sqlz.IsNotFound(err) {
			return gallery.Gallery{}, fmt.Errorf("gallery %s: %w", id, models.ErrGalleryNotFound)
		}

		return gallery.Gallery{}, fmt.Errorf("error querying for gallery %s: %w", id, err)
	}

	if err = json.Unmarshal([]byte(record.Payload), &raw); err != nil {
		return gallery.Gallery{}, fmt.Errorf("error decoding payload of gallery %s: %w", id, err)
	}

	if updated, err = update(gallery.Hydrate(raw)); err != nil {
		return gallery.Gallery{}, fmt.Errorf("error updating gallery %s: %w", id, err)
	}

	updated = gallery.Hydrate(updated.Response())

	if b, err = json.Marshal(updated); err != nil {
		return gallery.Gallery{}, fmt.Errorf("error encoding gallery %s: %w", id, err)
	}

	sql = `
UPDATE galleries SET
   payload=?,
   updated_at=CURRENT_TIMESTAMP
WHERE id=?
`

	if _, err = tx.Exec(ctx, sql, string(b), id); err != nil {
		return gallery.Gallery{}, fmt.Errorf("error saving gallery %s: %w", id, err)
	}

	if err = tx.Commit(); err != nil {
		return gallery.Gallery{}, fmt.Errorf("error committing gallery %s: %w", id, err)
	}

	return updated, nil
}

type galleryLock struct {
	sync.Mutex
	refs int
}

// galleryLocks serializes writes per gallery id.
type galleryLocks struct {
	mu    sync.Mutex
	locks map[string]*galleryLock
}

func (l *galleryLocks) lock(id string) func() {
	l.mu.Lock()

	entry, ok := l.locks[id]
	if !ok {
		entry = &galleryLock{}
		l.locks[id] = entry
	}

	entry.refs++
	l.mu.Unlock()

	entry.Lock()

	return func() {
		entry.Unlock()

		l.mu.Lock()
		defer l.mu.Unlock()

		entry.refs--
		if entry.refs == 0 {
			delete(l.locks, id)
		}
	}
}
