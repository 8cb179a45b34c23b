package album

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/codyseavey/pokido/internal/database"
	"github.com/codyseavey/pokido/internal/metrics"
	"github.com/codyseavey/pokido/internal/models"
)

type memoryPersistence struct {
	mu   sync.Mutex
	docs map[string][]byte
}

func newMemoryPersistence() *memoryPersistence {
	return &memoryPersistence{docs: map[string][]byte{}}
}

func (m *memoryPersistence) Load(_ context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.docs[key], nil
}

func (m *memoryPersistence) Save(_ context.Context, key string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.docs[key] = data
	return nil
}

func TestStoreAddCardPersists(t *testing.T) {
	ctx := context.Background()
	p := newMemoryPersistence()
	store := NewStore(p)
	store.now = func() time.Time { return t0 }

	if _, entry, err := store.AddCard(ctx, DefaultKey, pikachu()); err != nil {
		t.Fatalf("AddCard() error: %v", err)
	} else if entry.ScanCount != 1 {
		t.Errorf("first add ScanCount = %d, want 1", entry.ScanCount)
	}

	_, entry, err := store.AddCard(ctx, DefaultKey, pikachu())
	if err != nil {
		t.Fatalf("AddCard() error: %v", err)
	}
	if entry.ScanCount != 2 {
		t.Errorf("rescan ScanCount = %d, want 2", entry.ScanCount)
	}

	state, err := store.Load(ctx, DefaultKey)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if len(state.Collection["swsh4"]) != 1 {
		t.Errorf("expected 1 stored entry, got %+v", state.Collection)
	}
}

func TestStoreKeysAreIndependent(t *testing.T) {
	ctx := context.Background()
	store := NewStore(newMemoryPersistence())

	if _, _, err := store.AddCard(ctx, "alice", pikachu()); err != nil {
		t.Fatalf("AddCard() error: %v", err)
	}

	state, err := store.Load(ctx, "bob")
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if len(state.Collection) != 0 {
		t.Errorf("album bob should be empty, got %+v", state.Collection)
	}
}

func TestStoreCardGaugeIgnoresAlbumKeys(t *testing.T) {
	ctx := context.Background()
	store := NewStore(newMemoryPersistence())

	for i := 0; i < 20; i++ {
		if _, _, err := store.AddCard(ctx, fmt.Sprintf("client-%d", i), pikachu()); err != nil {
			t.Fatalf("AddCard() error: %v", err)
		}
	}

	ch := make(chan prometheus.Metric, 32)
	metrics.AlbumCardsTotal.Collect(ch)
	close(ch)
	if n := len(ch); n != 1 {
		t.Errorf("album card gauge exported %d series, want 1", n)
	}
}

func TestStoreLoadCorruptedDocument(t *testing.T) {
	ctx := context.Background()
	p := newMemoryPersistence()
	p.docs[DefaultKey] = []byte("{not json")
	store := NewStore(p)

	state, err := store.Load(ctx, DefaultKey)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if len(state.Collection) != 0 || len(state.Sets) != 0 {
		t.Errorf("corrupted document should load empty, got %+v", state)
	}

	// The next write replaces the corrupted document
	if _, _, err := store.AddCard(ctx, DefaultKey, pikachu()); err != nil {
		t.Fatalf("AddCard() error: %v", err)
	}
	if _, err := Unmarshal(p.docs[DefaultKey]); err != nil {
		t.Errorf("document still corrupted after write: %v", err)
	}
}

func TestStoreImportExport(t *testing.T) {
	ctx := context.Background()
	store := NewStore(newMemoryPersistence())

	imported := AddCard(models.NewAlbumState(), pikachu(), t0)
	if err := store.Import(ctx, DefaultKey, imported); err != nil {
		t.Fatalf("Import() error: %v", err)
	}

	data, err := store.Export(ctx, DefaultKey)
	if err != nil {
		t.Fatalf("Export() error: %v", err)
	}
	want, _ := Marshal(imported)
	if string(data) != string(want) {
		t.Errorf("Export() = %s, want %s", data, want)
	}
}

func TestPersistenceAdapters(t *testing.T) {
	dir := t.TempDir()
	db, err := database.Open(filepath.Join(dir, "album.db"))
	if err != nil {
		t.Fatalf("database.Open() error: %v", err)
	}

	adapters := []struct {
		name string
		p    Persistence
	}{
		{"gorm", NewGormPersistence(db)},
		{"file", NewFilePersistence(filepath.Join(dir, "albums"))},
	}

	for _, tt := range adapters {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()

			data, err := tt.p.Load(ctx, "never-written")
			if err != nil || data != nil {
				t.Fatalf("Load(missing) = %q, %v; want nil, nil", data, err)
			}

			if err := tt.p.Save(ctx, "family/kids", []byte(`{"v":1}`)); err != nil {
				t.Fatalf("Save() error: %v", err)
			}
			if err := tt.p.Save(ctx, "family/kids", []byte(`{"v":2}`)); err != nil {
				t.Fatalf("Save() overwrite error: %v", err)
			}

			data, err = tt.p.Load(ctx, "family/kids")
			if err != nil {
				t.Fatalf("Load() error: %v", err)
			}
			if string(data) != `{"v":2}` {
				t.Errorf("Load() = %s, want last write", data)
			}
		})
	}
}
