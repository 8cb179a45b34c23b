package album

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/codyseavey/pokido/internal/models"
)

// Persistence loads and saves one album document per key. Load returns nil
// data and a nil error when the key has never been written.
type Persistence interface {
	Load(ctx context.Context, key string) ([]byte, error)
	Save(ctx context.Context, key string, data []byte) error
}

// GormPersistence stores album documents in the album_documents table
type GormPersistence struct {
	db *gorm.DB
}

func NewGormPersistence(db *gorm.DB) *GormPersistence {
	return &GormPersistence{db: db}
}

func (p *GormPersistence) Load(ctx context.Context, key string) ([]byte, error) {
	var doc models.AlbumDocument
	err := p.db.WithContext(ctx).Where(&models.AlbumDocument{Key: key}).First(&doc).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load album %q: %w", key, err)
	}
	return []byte(doc.Payload), nil
}

func (p *GormPersistence) Save(ctx context.Context, key string, data []byte) error {
	doc := models.AlbumDocument{
		Key:       key,
		Payload:   string(data),
		UpdatedAt: time.Now(),
	}
	if err := p.db.WithContext(ctx).Save(&doc).Error; err != nil {
		return fmt.Errorf("failed to save album %q: %w", key, err)
	}
	return nil
}

// Keys lists every stored album key
func (p *GormPersistence) Keys(ctx context.Context) ([]string, error) {
	var keys []string
	if err := p.db.WithContext(ctx).Model(&models.AlbumDocument{}).Pluck("key", &keys).Error; err != nil {
		return nil, fmt.Errorf("failed to list albums: %w", err)
	}
	sort.Strings(keys)
	return keys, nil
}

// FilePersistence stores each album as <dir>/<key>.json
type FilePersistence struct {
	dir string
}

func NewFilePersistence(dir string) *FilePersistence {
	return &FilePersistence{dir: dir}
}

var unsafeKeyChars = regexp.MustCompile(`[^a-zA-Z0-9_-]`)

func (p *FilePersistence) path(key string) string {
	return filepath.Join(p.dir, unsafeKeyChars.ReplaceAllString(key, "_")+".json")
}

// Keys lists the album files in the directory. Keys that were sanitized on
// save come back in their sanitized form.
func (p *FilePersistence) Keys(_ context.Context) ([]string, error) {
	entries, err := os.ReadDir(p.dir)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list albums: %w", err)
	}

	var keys []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || strings.HasPrefix(name, ".") || filepath.Ext(name) != ".json" {
			continue
		}
		keys = append(keys, strings.TrimSuffix(name, ".json"))
	}
	sort.Strings(keys)
	return keys, nil
}

func (p *FilePersistence) Load(_ context.Context, key string) ([]byte, error) {
	data, err := os.ReadFile(p.path(key))
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read album %q: %w", key, err)
	}
	return data, nil
}

// Save writes through a temp file and renames it over the document
func (p *FilePersistence) Save(_ context.Context, key string, data []byte) error {
	if err := os.MkdirAll(p.dir, 0755); err != nil {
		return fmt.Errorf("failed to create album directory: %w", err)
	}

	target := p.path(key)
	tmp, err := os.CreateTemp(p.dir, ".album-*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write album %q: %w", key, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to write album %q: %w", key, err)
	}
	if err := os.Rename(tmpName, target); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to replace album %q: %w", key, err)
	}
	return nil
}
