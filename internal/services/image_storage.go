package services

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
)

// maxUploadBytes caps a single spooled upload
const maxUploadBytes = 20 << 20

// UploadSpooler stores uploaded card photos in a scratch directory for the
// lifetime of one request
type UploadSpooler struct {
	scratchDir    string
	maxAge        time.Duration
	sweepInterval time.Duration
}

// NewUploadSpooler creates a spooler rooted at dir
func NewUploadSpooler(dir string) *UploadSpooler {
	if dir == "" {
		dir = filepath.Join(os.TempDir(), "pokido-uploads")
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		// Writes will fail later with a clearer error
		log.Printf("Upload spooler: could not create scratch directory %s: %v", dir, err)
	}

	return &UploadSpooler{
		scratchDir:    dir,
		maxAge:        time.Hour,
		sweepInterval: 15 * time.Minute,
	}
}

// Spool copies r into a new scratch file and returns its path
func (s *UploadSpooler) Spool(r io.Reader) (string, error) {
	path := filepath.Join(s.scratchDir, uuid.New().String()+".upload")

	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0600)
	if err != nil {
		return "", fmt.Errorf("failed to create scratch file: %w", err)
	}

	n, err := io.Copy(f, io.LimitReader(r, maxUploadBytes+1))
	closeErr := f.Close()
	if err == nil {
		err = closeErr
	}
	if err != nil {
		s.Discard(path)
		return "", fmt.Errorf("failed to spool upload: %w", err)
	}
	if n == 0 {
		s.Discard(path)
		return "", fmt.Errorf("%w: empty upload", ErrValidation)
	}
	if n > maxUploadBytes {
		s.Discard(path)
		return "", fmt.Errorf("%w: upload exceeds %d bytes", ErrValidation, maxUploadBytes)
	}

	return path, nil
}

// Discard removes a spooled file. Errors are ignored.
func (s *UploadSpooler) Discard(path string) {
	if path == "" {
		return
	}
	_ = os.Remove(path)
}

// GetScratchDir returns the scratch directory path
func (s *UploadSpooler) GetScratchDir() string {
	return s.scratchDir
}

// Start periodically removes scratch files left behind by crashed requests
func (s *UploadSpooler) Start(ctx context.Context) {
	s.sweep()

	ticker := time.NewTicker(s.sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.sweep()
		}
	}
}

// sweep deletes scratch files older than maxAge and returns how many it removed
func (s *UploadSpooler) sweep() int {
	entries, err := os.ReadDir(s.scratchDir)
	if err != nil {
		return 0
	}

	cutoff := time.Now().Add(-s.maxAge)
	removed := 0
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != ".upload" {
			continue
		}
		info, err := e.Info()
		if err != nil || info.ModTime().After(cutoff) {
			continue
		}
		if os.Remove(filepath.Join(s.scratchDir, e.Name())) == nil {
			removed++
		}
	}
	if removed > 0 {
		log.Printf("Upload spooler: removed %d stale scratch files", removed)
	}
	return removed
}
