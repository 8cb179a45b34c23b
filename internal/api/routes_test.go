package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/codyseavey/pokido/internal/album"
	"github.com/codyseavey/pokido/internal/config"
	"github.com/codyseavey/pokido/internal/models"
	"github.com/codyseavey/pokido/internal/services"
)

type stubExtractor struct {
	identity *models.CandidateIdentity
	err      error
}

func (s *stubExtractor) Extract(_ context.Context, _ []byte) (*models.CandidateIdentity, error) {
	return s.identity, s.err
}

type stubCatalog struct {
	cards []*models.CatalogCard
}

func (s *stubCatalog) SearchByName(_ context.Context, _, name string) ([]models.CatalogSummary, error) {
	out := make([]models.CatalogSummary, 0, len(s.cards))
	for _, c := range s.cards {
		if !strings.EqualFold(c.Name, name) {
			continue
		}
		out = append(out, models.CatalogSummary{ID: c.ID, LocalID: c.LocalID, Name: c.Name, SetID: c.Set.ID})
	}
	return out, nil
}

func (s *stubCatalog) GetCard(_ context.Context, _, id string) (*models.CatalogCard, error) {
	for _, c := range s.cards {
		if c.ID == id {
			copied := *c
			return &copied, nil
		}
	}
	return nil, nil
}

var pikachu = &models.CatalogCard{
	ID:      "swsh4-44",
	LocalID: "44",
	Name:    "Pikachu",
	Rarity:  "Common",
	HP:      60,
	Types:   []string{"Lightning"},
	Image:   "https://assets.tcgdex.net/en/swsh/swsh4/44",
	Set: models.CardSet{
		ID:        "swsh4",
		Name:      "Vivid Voltage",
		CardCount: models.CardCount{Official: 185, Total: 203},
	},
}

type testEnv struct {
	router    *gin.Engine
	extractor *stubExtractor
	spooler   *services.UploadSpooler
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	extractor := &stubExtractor{identity: &models.CandidateIdentity{Name: "Pikachu", Language: models.LanguageEnglish}}
	resolver := services.NewCatalogResolver(&stubCatalog{cards: []*models.CatalogCard{pikachu}}, nil, services.DefaultNearNumberTolerance)
	scanService := services.NewScanService(extractor, resolver, services.NewPresenter(4, 3.5, "ILS", "he"), nil)
	spooler := services.NewUploadSpooler(t.TempDir())
	store := album.NewStore(album.NewFilePersistence(t.TempDir()))

	cfg := config.Default()
	cfg.FrontendDistPath = ""

	return &testEnv{
		router:    SetupRouter(cfg, scanService, spooler, store),
		extractor: extractor,
		spooler:   spooler,
	}
}

func (e *testEnv) do(req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func uploadRequest(t *testing.T, field string, content []byte) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile(field, "card.jpg")
	if err != nil {
		t.Fatalf("CreateFormFile: %v", err)
	}
	fw.Write(content)
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/analyze", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func decodeIdentification(t *testing.T, w *httptest.ResponseRecorder) models.ResolvedCard {
	t.Helper()
	var resp models.IdentificationResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid response %s: %v", w.Body.String(), err)
	}
	if len(resp.Records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(resp.Records))
	}
	return resp.Records[0].Identification
}

func TestAnalyze(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(uploadRequest(t, "file", []byte("jpeg bytes")))
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}

	card := decodeIdentification(t, w)
	if card.ID != "swsh4-44" || card.Image != "https://assets.tcgdex.net/en/swsh/swsh4/44/high.png" {
		t.Errorf("identification = %s %s", card.ID, card.Image)
	}
	if card.Locale != "he" || card.TypeLabels[0] != "חשמלי" {
		t.Errorf("default locale not applied: %s %v", card.Locale, card.TypeLabels)
	}

	entries, _ := os.ReadDir(env.spooler.GetScratchDir())
	if len(entries) != 0 {
		t.Errorf("scratch directory not cleaned, %d files left", len(entries))
	}
}

func TestAnalyzeErrors(t *testing.T) {
	tests := []struct {
		name       string
		identity   *models.CandidateIdentity
		err        error
		wantStatus int
	}{
		{"unparsable", nil, services.ErrUnparsableResponse, http.StatusUnprocessableEntity},
		{"upstream", nil, services.ErrUpstreamUnavailable, http.StatusBadGateway},
		{"not configured", nil, fmt.Errorf("%w: %w", services.ErrUpstreamUnavailable, services.ErrNotConfigured), http.StatusServiceUnavailable},
		{"no name", &models.CandidateIdentity{Language: models.LanguageEnglish}, nil, http.StatusBadRequest},
		{"not in catalog", &models.CandidateIdentity{Name: "Missingno", Language: models.LanguageEnglish}, nil, http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			env.extractor.identity, env.extractor.err = tt.identity, tt.err

			w := env.do(uploadRequest(t, "file", []byte("jpeg bytes")))
			if w.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d (body %s)", w.Code, tt.wantStatus, w.Body.String())
			}
			if !strings.Contains(w.Body.String(), `"error"`) {
				t.Errorf("error body missing: %s", w.Body.String())
			}
		})
	}
}

func TestAnalyzeMissingFile(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(uploadRequest(t, "image", []byte("jpeg bytes")))
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}

	var body map[string]string
	json.Unmarshal(w.Body.Bytes(), &body)
	if body["error"] != services.Translate("he", "errNoFile") {
		t.Errorf("error = %q, want localized no-file message", body["error"])
	}
}

func TestSearch(t *testing.T) {
	env := newTestEnv(t)

	req := httptest.NewRequest(http.MethodGet, "/api/search?name=pikachu&number=44/185", nil)
	req.Header.Set("Accept-Language", "en-US,en;q=0.8")
	w := env.do(req)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}
	card := decodeIdentification(t, w)
	if card.Locale != "en" || card.RarityLabel != "Common" {
		t.Errorf("locale %s label %s, want en Common", card.Locale, card.RarityLabel)
	}

	w = env.do(httptest.NewRequest(http.MethodGet, "/api/search?name=", nil))
	if w.Code != http.StatusBadRequest {
		t.Errorf("empty name status = %d, want 400", w.Code)
	}
}

func TestAlbumFlow(t *testing.T) {
	env := newTestEnv(t)

	add := func(key string, body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/api/album/cards", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		if key != "" {
			req.Header.Set("X-Album-Key", key)
		}
		return env.do(req)
	}

	card := `{"id":"swsh4-44","name":"Pikachu","number":"44","setId":"swsh4","set":"Vivid Voltage","setTotal":185}`
	if w := add("", card); w.Code != http.StatusCreated {
		t.Fatalf("first add status = %d, body %s", w.Code, w.Body.String())
	}
	w := add("", card)
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `"scanCount":2`) {
		t.Errorf("rescan = %d %s", w.Code, w.Body.String())
	}
	if w := add("", `{"number":"1"}`); w.Code != http.StatusBadRequest {
		t.Errorf("add without name status = %d, want 400", w.Code)
	}

	w = env.do(httptest.NewRequest(http.MethodGet, "/api/album/sets", nil))
	var sets []models.SetStats
	if err := json.Unmarshal(w.Body.Bytes(), &sets); err != nil {
		t.Fatalf("sets response: %v", err)
	}
	if len(sets) != 1 || sets[0].Collected != 1 || sets[0].Percentage != 1 {
		t.Errorf("sets = %+v", sets)
	}

	w = env.do(httptest.NewRequest(http.MethodGet, "/api/album/sets/swsh4", nil))
	if !strings.Contains(w.Body.String(), `"name":"Pikachu"`) {
		t.Errorf("set cards = %s", w.Body.String())
	}

	// Another album key sees nothing
	req := httptest.NewRequest(http.MethodGet, "/api/album/stats", nil)
	req.Header.Set("X-Album-Key", "sibling")
	w = env.do(req)
	if !strings.Contains(w.Body.String(), `"totalCards":0`) {
		t.Errorf("sibling stats = %s", w.Body.String())
	}

	req = httptest.NewRequest(http.MethodGet, "/api/album/stats", nil)
	req.Header.Set("X-Album-Key", strings.Repeat("k", 200))
	if w := env.do(req); w.Code != http.StatusBadRequest {
		t.Errorf("long key status = %d, want 400", w.Code)
	}
}

func TestAlbumImportExport(t *testing.T) {
	env := newTestEnv(t)

	doc := `{"collection":{"sv1":[{"id":"sv1-25","name":"Pikachu","number":"25","scannedAt":"2026-03-01T10:00:00Z","scanCount":3}]},"sets":{"sv1":{"id":"sv1","name":"Scarlet & Violet","total":198}}}`
	req := httptest.NewRequest(http.MethodPut, "/api/album", strings.NewReader(doc))
	req.Header.Set("Content-Type", "application/json")
	if w := env.do(req); w.Code != http.StatusOK {
		t.Fatalf("import status = %d, body %s", w.Code, w.Body.String())
	}

	w := env.do(httptest.NewRequest(http.MethodGet, "/api/album", nil))
	state, err := album.Unmarshal(w.Body.Bytes())
	if err != nil {
		t.Fatalf("export is not an album document: %v", err)
	}
	if state.Collection["sv1"][0].ScanCount != 3 || state.Sets["sv1"].Total != 198 {
		t.Errorf("exported state = %+v", state)
	}

	req = httptest.NewRequest(http.MethodPut, "/api/album", strings.NewReader("{"))
	req.Header.Set("Content-Type", "application/json")
	if w := env.do(req); w.Code != http.StatusBadRequest {
		t.Errorf("corrupted import status = %d, want 400", w.Code)
	}
}

func TestCardQR(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(httptest.NewRequest(http.MethodGet, "/api/cards/swsh4-44/qr", nil))
	if w.Code != http.StatusOK || w.Header().Get("Content-Type") != "image/png" {
		t.Errorf("qr = %d %s", w.Code, w.Header().Get("Content-Type"))
	}

	w = env.do(httptest.NewRequest(http.MethodGet, "/api/cards/nodash/qr", nil))
	if w.Code != http.StatusBadRequest {
		t.Errorf("bad id status = %d, want 400", w.Code)
	}
}

func TestMiscRoutes(t *testing.T) {
	env := newTestEnv(t)

	tests := []struct {
		path       string
		wantStatus int
	}{
		{"/health", http.StatusOK},
		{"/metrics", http.StatusOK},
		{"/api/i18n/en", http.StatusOK},
		{"/api/i18n/fr", http.StatusNotFound},
		{"/api/scans", http.StatusOK},
	}
	for _, tt := range tests {
		if w := env.do(httptest.NewRequest(http.MethodGet, tt.path, nil)); w.Code != tt.wantStatus {
			t.Errorf("GET %s status = %d, want %d", tt.path, w.Code, tt.wantStatus)
		}
	}
}
