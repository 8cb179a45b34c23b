package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/codyseavey/pokido/internal/metrics"
	"github.com/codyseavey/pokido/internal/models"
)

// Extractor reads a candidate identity from a card photo
type Extractor interface {
	Extract(ctx context.Context, imageBytes []byte) (*models.CandidateIdentity, error)
}

// ScanService chains extraction, catalog resolution and presentation
type ScanService struct {
	extractor Extractor
	resolver  *CatalogResolver
	presenter *Presenter
	db        *gorm.DB
}

// NewScanService creates a scan service. db may be nil to skip the scan log.
func NewScanService(extractor Extractor, resolver *CatalogResolver, presenter *Presenter, db *gorm.DB) *ScanService {
	return &ScanService{
		extractor: extractor,
		resolver:  resolver,
		presenter: presenter,
		db:        db,
	}
}

// Presenter returns the presenter used for locale handling
func (s *ScanService) Presenter() *Presenter {
	return s.presenter
}

// Scan identifies the card in a photo
func (s *ScanService) Scan(ctx context.Context, image []byte, locale string) (*models.ResolvedCard, error) {
	start := time.Now()
	record := models.ScanRecord{Source: models.ScanSourceImage}

	identity, err := s.extractor.Extract(ctx, image)
	if err != nil {
		s.finish(&record, start, nil, err)
		return nil, err
	}

	record.DetectedName = identity.Name
	record.Language = identity.Language
	if identity.CardNumber != nil {
		record.DetectedNumber = *identity.CardNumber
	}

	if strings.TrimSpace(identity.Name) == "" {
		err := fmt.Errorf("%w: no pokemon name detected", ErrValidation)
		s.finish(&record, start, nil, err)
		return nil, err
	}

	return s.resolve(ctx, &record, start, identity, locale)
}

// Lookup resolves a manually entered name and optional printed number
func (s *ScanService) Lookup(ctx context.Context, name, number string, lang models.Language, locale string) (*models.ResolvedCard, error) {
	start := time.Now()
	name = strings.TrimSpace(name)
	number = strings.TrimSpace(number)
	record := models.ScanRecord{
		Source:         models.ScanSourceManual,
		DetectedName:   name,
		DetectedNumber: number,
		Language:       lang,
	}

	if name == "" {
		err := fmt.Errorf("%w: pokemon name is required", ErrValidation)
		s.finish(&record, start, nil, err)
		return nil, err
	}

	identity := &models.CandidateIdentity{Name: name, Language: lang}
	if number != "" {
		identity.CardNumber = &number
		if _, total, ok := ParseCardNumber(number); ok && total > 0 {
			identity.SetSizeHint = &total
		}
	}

	return s.resolve(ctx, &record, start, identity, locale)
}

func (s *ScanService) resolve(ctx context.Context, record *models.ScanRecord, start time.Time, identity *models.CandidateIdentity, locale string) (*models.ResolvedCard, error) {
	number := ""
	if identity.CardNumber != nil {
		number = *identity.CardNumber
	}

	card, res, err := s.resolver.Resolve(ctx, identity.Name, number, identity.Language)
	if err != nil {
		s.finish(record, start, res, err)
		return nil, err
	}

	resolved := s.presenter.Present(card, identity, locale)
	record.CardID = card.ID
	record.SetID = card.Set.ID
	s.finish(record, start, res, nil)
	return &resolved, nil
}

// finish records metrics and stores the scan record. Storage errors are logged.
func (s *ScanService) finish(record *models.ScanRecord, start time.Time, res *Resolution, err error) {
	elapsed := time.Since(start)
	record.DurationMs = elapsed.Milliseconds()
	record.Outcome = OutcomeFor(err)
	if res != nil {
		record.Branch = res.Branch
	}
	if record.Language == "" {
		record.Language = models.LanguageEnglish
	}

	metrics.ScansTotal.WithLabelValues(string(record.Source), string(record.Outcome)).Inc()
	metrics.ScanDuration.Observe(elapsed.Seconds())

	if s.db == nil {
		return
	}
	if dbErr := s.db.Create(record).Error; dbErr != nil {
		log.Printf("Scan service: failed to record scan: %v", dbErr)
	}
}

// OutcomeFor classifies a scan error
func OutcomeFor(err error) models.ScanOutcome {
	switch {
	case err == nil:
		return models.OutcomeResolved
	case errors.Is(err, ErrValidation):
		return models.OutcomeInvalid
	case errors.Is(err, ErrNotFound):
		return models.OutcomeNotFound
	case errors.Is(err, ErrUnparsableResponse):
		return models.OutcomeUnparsable
	default:
		return models.OutcomeUpstream
	}
}

// RecentScans returns the latest scan records, newest first
func (s *ScanService) RecentScans(limit int) ([]models.ScanRecord, error) {
	if s.db == nil {
		return []models.ScanRecord{}, nil
	}
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	var records []models.ScanRecord
	if err := s.db.Order("created_at DESC").Order("id DESC").Limit(limit).Find(&records).Error; err != nil {
		return nil, fmt.Errorf("failed to load scans: %w", err)
	}
	return records, nil
}
