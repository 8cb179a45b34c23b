package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/hashicorp/go-cleanhttp"

	"github.com/codyseavey/pokido/internal/metrics"
)

const pokemonTCGBaseURL = "https://api.pokemontcg.io/v2"

// PokemonTCGService is the secondary image source used when TCGdex has no
// artwork for a card
type PokemonTCGService struct {
	client  *http.Client
	apiKey  string
	baseURL string
	timeout time.Duration
}

func NewPokemonTCGService(apiKey string, timeout time.Duration) *PokemonTCGService {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &PokemonTCGService{
		client:  cleanhttp.DefaultPooledClient(),
		apiKey:  apiKey,
		baseURL: pokemonTCGBaseURL,
		timeout: timeout,
	}
}

// WithBaseURL points the client at another host (used by tests)
func (s *PokemonTCGService) WithBaseURL(baseURL string) *PokemonTCGService {
	s.baseURL = strings.TrimRight(baseURL, "/")
	return s
}

type pokemonSearchResponse struct {
	Data []struct {
		ID     string `json:"id"`
		Images struct {
			Small string `json:"small"`
			Large string `json:"large"`
		} `json:"images"`
	} `json:"data"`
}

// LargeImageURL returns the large image of the first card matching name and
// (optionally) number. An empty string with a nil error means no image.
func (s *PokemonTCGService) LargeImageURL(ctx context.Context, name, number string) (string, error) {
	query := "name:" + strings.ToLower(name)
	if number != "" {
		query += " number:" + number
	}
	reqURL := fmt.Sprintf("%s/cards?q=%s&pageSize=1", s.baseURL, url.QueryEscape(query))

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, "GET", reqURL, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	if s.apiKey != "" {
		req.Header.Set("X-Api-Key", s.apiKey)
	}

	metrics.CatalogRequestsTotal.WithLabelValues("image_fallback").Inc()
	resp, err := s.client.Do(req)
	if err != nil {
		metrics.CatalogErrorsTotal.WithLabelValues("image_fallback").Inc()
		return "", fmt.Errorf("%w: pokemon tcg: %v", ErrUpstreamUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		metrics.CatalogErrorsTotal.WithLabelValues("image_fallback").Inc()
		return "", fmt.Errorf("%w: pokemon tcg API returned status %d", ErrUpstreamUnavailable, resp.StatusCode)
	}

	var searchResp pokemonSearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&searchResp); err != nil {
		return "", fmt.Errorf("failed to decode pokemon tcg response: %w", err)
	}

	if len(searchResp.Data) == 0 {
		return "", nil
	}
	return searchResp.Data[0].Images.Large, nil
}
