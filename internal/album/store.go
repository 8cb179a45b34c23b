package album

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/codyseavey/pokido/internal/metrics"
	"github.com/codyseavey/pokido/internal/models"
)

// DefaultKey is the storage key used when a client does not name an album
const DefaultKey = "pokido-collection"

// Store runs the reducers against a persistence port. Every mutation loads
// the whole document, reduces and saves it back; concurrent writers to one key
// overwrite each other (last write wins).
type Store struct {
	persistence Persistence
	now         func() time.Time
}

func NewStore(p Persistence) *Store {
	return &Store{persistence: p, now: time.Now}
}

// Load returns the album for key. Corrupted documents load as an empty album.
func (s *Store) Load(ctx context.Context, key string) (models.AlbumState, error) {
	data, err := s.persistence.Load(ctx, key)
	if err != nil {
		return models.NewAlbumState(), err
	}
	state, err := Unmarshal(data)
	if err != nil {
		log.Printf("Album: discarding corrupted document %q: %v", key, err)
		return models.NewAlbumState(), nil
	}
	return state, nil
}

// AddCard adds (or rescans) a card and returns the stored entry
func (s *Store) AddCard(ctx context.Context, key string, req models.AddCardRequest) (models.AlbumState, models.AlbumEntry, error) {
	state, err := s.Load(ctx, key)
	if err != nil {
		return state, models.AlbumEntry{}, err
	}

	setID, cardID := EntryKey(req)
	operation := "add"
	for _, e := range state.Collection[setID] {
		if e.ID == cardID {
			operation = "rescan"
			break
		}
	}

	next := AddCard(state, req, s.now())
	if err := s.save(ctx, key, next, operation); err != nil {
		return state, models.AlbumEntry{}, err
	}

	for _, e := range next.Collection[setID] {
		if e.ID == cardID {
			return next, e, nil
		}
	}
	return next, models.AlbumEntry{}, fmt.Errorf("card %s missing after add", cardID)
}

// Import replaces the album with a whole document
func (s *Store) Import(ctx context.Context, key string, state models.AlbumState) error {
	return s.save(ctx, key, normalize(state), "import")
}

// Export returns the album encoded in the document format
func (s *Store) Export(ctx context.Context, key string) ([]byte, error) {
	state, err := s.Load(ctx, key)
	if err != nil {
		return nil, err
	}
	return Marshal(state)
}

func (s *Store) save(ctx context.Context, key string, state models.AlbumState, operation string) error {
	data, err := Marshal(state)
	if err != nil {
		return err
	}
	if err := s.persistence.Save(ctx, key, data); err != nil {
		return err
	}
	metrics.AlbumWritesTotal.WithLabelValues(operation).Inc()
	metrics.AlbumCardsTotal.Set(float64(TotalStats(state).TotalCards))
	return nil
}
