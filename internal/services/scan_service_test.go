package services

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/codyseavey/pokido/internal/database"
	"github.com/codyseavey/pokido/internal/models"
)

type fakeExtractor struct {
	identity *models.CandidateIdentity
	err      error
}

func (f *fakeExtractor) Extract(_ context.Context, _ []byte) (*models.CandidateIdentity, error) {
	return f.identity, f.err
}

func newTestScanService(t *testing.T, extractor Extractor, catalog *fakeCatalog) *ScanService {
	t.Helper()
	db, err := database.Open(filepath.Join(t.TempDir(), "scans.db"))
	if err != nil {
		t.Fatalf("database.Open() error: %v", err)
	}
	resolver := NewCatalogResolver(catalog, nil, DefaultNearNumberTolerance)
	return NewScanService(extractor, resolver, NewPresenter(4, 3.5, "ILS", "he"), db)
}

func TestScanResolvesAndRecords(t *testing.T) {
	number := "25/202"
	extractor := &fakeExtractor{identity: &models.CandidateIdentity{
		Name:       "Pikachu",
		CardNumber: &number,
		Language:   models.LanguageEnglish,
	}}
	catalog := catalogOf(
		card("sv1-25", "25", "sv1", 198, 258),
		card("swsh1-25", "25", "swsh1", 202, 216),
	)
	svc := newTestScanService(t, extractor, catalog)

	got, err := svc.Scan(context.Background(), []byte("img"), LocaleEnglish)
	if err != nil {
		t.Fatalf("Scan() error: %v", err)
	}
	if got.ID != "swsh1-25" || got.Locale != LocaleEnglish {
		t.Errorf("Scan() = %s (%s), want swsh1-25 (en)", got.ID, got.Locale)
	}
	if got.Detected == nil || got.Detected.Name != "Pikachu" {
		t.Errorf("Detected = %+v, want the extracted identity", got.Detected)
	}

	records, err := svc.RecentScans(10)
	if err != nil {
		t.Fatalf("RecentScans() error: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected 1 scan record, got %d", len(records))
	}
	rec := records[0]
	if rec.Outcome != models.OutcomeResolved || rec.Branch != BranchSetSize || rec.CardID != "swsh1-25" || rec.DetectedNumber != "25/202" {
		t.Errorf("record = %+v", rec)
	}
}

func TestScanFailures(t *testing.T) {
	tests := []struct {
		name        string
		extractor   *fakeExtractor
		catalog     *fakeCatalog
		wantErr     error
		wantOutcome models.ScanOutcome
	}{
		{
			name:        "vision unavailable",
			extractor:   &fakeExtractor{err: ErrUpstreamUnavailable},
			catalog:     catalogOf(),
			wantErr:     ErrUpstreamUnavailable,
			wantOutcome: models.OutcomeUpstream,
		},
		{
			name:        "vision unparsable",
			extractor:   &fakeExtractor{err: ErrUnparsableResponse},
			catalog:     catalogOf(),
			wantErr:     ErrUnparsableResponse,
			wantOutcome: models.OutcomeUnparsable,
		},
		{
			name:        "no name detected",
			extractor:   &fakeExtractor{identity: &models.CandidateIdentity{Language: models.LanguageEnglish}},
			catalog:     catalogOf(card("a-1", "1", "a", 1, 1)),
			wantErr:     ErrValidation,
			wantOutcome: models.OutcomeInvalid,
		},
		{
			name:        "catalog has nothing",
			extractor:   &fakeExtractor{identity: &models.CandidateIdentity{Name: "Missingno", Language: models.LanguageEnglish}},
			catalog:     catalogOf(),
			wantErr:     ErrNotFound,
			wantOutcome: models.OutcomeNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newTestScanService(t, tt.extractor, tt.catalog)

			got, err := svc.Scan(context.Background(), []byte("img"), LocaleHebrew)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Scan() error = %v, want %v", err, tt.wantErr)
			}
			if got != nil {
				t.Errorf("Scan() returned partial result %+v", got)
			}

			records, _ := svc.RecentScans(10)
			if len(records) != 1 || records[0].Outcome != tt.wantOutcome {
				t.Errorf("records = %+v, want one with outcome %s", records, tt.wantOutcome)
			}
		})
	}
}

func TestLookup(t *testing.T) {
	catalog := catalogOf(card("a-4", "4", "a", 102, 102), card("b-5", "5", "b", 102, 102))
	svc := newTestScanService(t, &fakeExtractor{}, catalog)

	got, err := svc.Lookup(context.Background(), " Charizard ", "4/102", models.LanguageJapanese, LocaleHebrew)
	if err != nil {
		t.Fatalf("Lookup() error: %v", err)
	}
	if got.ID != "a-4" || !got.IsJapanese {
		t.Errorf("Lookup() = %s japanese=%v, want a-4 japanese", got.ID, got.IsJapanese)
	}
	if catalog.searchedLang != "ja" {
		t.Errorf("searched %q catalog, want ja", catalog.searchedLang)
	}
	if got.Detected == nil || got.Detected.SetSizeHint == nil || *got.Detected.SetSizeHint != 102 {
		t.Errorf("manual identity should carry the set size hint, got %+v", got.Detected)
	}

	if _, err := svc.Lookup(context.Background(), "", "4", models.LanguageEnglish, LocaleHebrew); !errors.Is(err, ErrValidation) {
		t.Errorf("Lookup(empty) error = %v, want ErrValidation", err)
	}

	records, _ := svc.RecentScans(10)
	if len(records) != 2 || records[0].Source != models.ScanSourceManual {
		t.Errorf("expected 2 manual records, got %+v", records)
	}
}

func TestOutcomeFor(t *testing.T) {
	tests := []struct {
		err  error
		want models.ScanOutcome
	}{
		{nil, models.OutcomeResolved},
		{ErrValidation, models.OutcomeInvalid},
		{ErrNotFound, models.OutcomeNotFound},
		{ErrUnparsableResponse, models.OutcomeUnparsable},
		{ErrUpstreamUnavailable, models.OutcomeUpstream},
		{errors.New("boom"), models.OutcomeUpstream},
	}
	for _, tt := range tests {
		if got := OutcomeFor(tt.err); got != tt.want {
			t.Errorf("OutcomeFor(%v) = %s, want %s", tt.err, got, tt.want)
		}
	}
}

func TestScanWithoutDatabase(t *testing.T) {
	resolver := NewCatalogResolver(catalogOf(card("a-1", "1", "a", 1, 1)), nil, DefaultNearNumberTolerance)
	svc := NewScanService(&fakeExtractor{}, resolver, NewPresenter(4, 3.5, "ILS", "he"), nil)

	if _, err := svc.Lookup(context.Background(), "Pikachu", "", models.LanguageEnglish, LocaleHebrew); err != nil {
		t.Fatalf("Lookup() error: %v", err)
	}
	records, err := svc.RecentScans(10)
	if err != nil || len(records) != 0 {
		t.Errorf("RecentScans() = %v, %v; want empty", records, err)
	}
}
