package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/hashicorp/go-cleanhttp"
	"github.com/hashicorp/golang-lru/v2/expirable"
	"golang.org/x/time/rate"

	"github.com/codyseavey/pokido/internal/metrics"
	"github.com/codyseavey/pokido/internal/models"
)

const (
	tcgdexBaseURL       = "https://api.tcgdex.net/v2"
	tcgdexDetailTTL     = 30 * time.Minute
	tcgdexDetailEntries = 512
)

// TCGdexService talks to the TCGdex card catalog
type TCGdexService struct {
	client  *http.Client
	baseURL string
	timeout time.Duration
	limiter *rate.Limiter
	details *expirable.LRU[string, *models.CatalogCard] // "lang/id" -> card
}

// NewTCGdexService creates a catalog client. Each call gets its own timeout.
func NewTCGdexService(timeout time.Duration) *TCGdexService {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &TCGdexService{
		client:  cleanhttp.DefaultPooledClient(),
		baseURL: tcgdexBaseURL,
		timeout: timeout,
		// TCGdex has no published quota; stay polite
		limiter: rate.NewLimiter(rate.Limit(20), 10),
		details: expirable.NewLRU[string, *models.CatalogCard](tcgdexDetailEntries, nil, tcgdexDetailTTL),
	}
}

// WithBaseURL points the client at another host (used by tests)
func (s *TCGdexService) WithBaseURL(baseURL string) *TCGdexService {
	s.baseURL = strings.TrimRight(baseURL, "/")
	return s
}

type tcgdexSearchResult struct {
	ID      string `json:"id"`
	LocalID string `json:"localId"`
	Name    string `json:"name"`
	Image   string `json:"image"`
}

// SearchByName returns the catalog's name-search rows in catalog order.
// A 404 from TCGdex means no match and yields an empty slice.
func (s *TCGdexService) SearchByName(ctx context.Context, lang, name string) ([]models.CatalogSummary, error) {
	reqURL := fmt.Sprintf("%s/%s/cards?name=%s", s.baseURL, lang, url.QueryEscape(name))

	var results []tcgdexSearchResult
	found, err := s.getJSON(ctx, "search", reqURL, &results)
	if err != nil {
		return nil, err
	}
	if !found {
		return []models.CatalogSummary{}, nil
	}

	summaries := make([]models.CatalogSummary, 0, len(results))
	for _, r := range results {
		summaries = append(summaries, models.CatalogSummary{
			ID:      r.ID,
			LocalID: r.LocalID,
			Name:    r.Name,
			Image:   r.Image,
			SetID:   setIDFromCardID(r.ID, r.LocalID),
		})
	}
	return summaries, nil
}

// GetCard fetches a single card with set and pricing data.
// Returns nil, nil when the card does not exist.
func (s *TCGdexService) GetCard(ctx context.Context, lang, id string) (*models.CatalogCard, error) {
	cacheKey := lang + "/" + id
	if card, ok := s.details.Get(cacheKey); ok {
		metrics.CatalogCacheHits.Inc()
		copied := *card
		return &copied, nil
	}

	reqURL := fmt.Sprintf("%s/%s/cards/%s", s.baseURL, lang, url.PathEscape(id))

	var card models.CatalogCard
	found, err := s.getJSON(ctx, "detail", reqURL, &card)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, nil
	}

	s.details.Add(cacheKey, &card)
	copied := card
	return &copied, nil
}

// getJSON performs a GET and decodes the body into out. It reports
// found=false on 404.
func (s *TCGdexService) getJSON(ctx context.Context, endpoint, reqURL string, out any) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	if err := s.limiter.Wait(ctx); err != nil {
		metrics.CatalogErrorsTotal.WithLabelValues(endpoint).Inc()
		return false, fmt.Errorf("%w: tcgdex rate limit wait: %v", ErrUpstreamUnavailable, err)
	}

	req, err := http.NewRequestWithContext(ctx, "GET", reqURL, nil)
	if err != nil {
		return false, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	metrics.CatalogRequestsTotal.WithLabelValues(endpoint).Inc()
	resp, err := s.client.Do(req)
	if err != nil {
		metrics.CatalogErrorsTotal.WithLabelValues(endpoint).Inc()
		return false, fmt.Errorf("%w: tcgdex %s: %v", ErrUpstreamUnavailable, endpoint, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return false, nil
	}

	if resp.StatusCode != http.StatusOK {
		metrics.CatalogErrorsTotal.WithLabelValues(endpoint).Inc()
		return false, fmt.Errorf("%w: tcgdex API returned status %d", ErrUpstreamUnavailable, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		metrics.CatalogErrorsTotal.WithLabelValues(endpoint).Inc()
		log.Printf("TCGdex: failed to decode %s response from %s: %v", endpoint, reqURL, err)
		return false, fmt.Errorf("%w: failed to decode tcgdex response: %v", ErrUpstreamUnavailable, err)
	}
	return true, nil
}

// setIDFromCardID derives the set id from a TCGdex card id, which is
// "<setId>-<localId>" (e.g. "swsh3-136", "sv03.5-025")
func setIDFromCardID(id, localID string) string {
	if localID != "" && strings.HasSuffix(id, "-"+localID) {
		return strings.TrimSuffix(id, "-"+localID)
	}
	if i := strings.LastIndex(id, "-"); i > 0 {
		return id[:i]
	}
	return ""
}
