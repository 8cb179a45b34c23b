package services

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/disintegration/imaging"
	"github.com/hashicorp/go-cleanhttp"
	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/codyseavey/pokido/internal/metrics"
	"github.com/codyseavey/pokido/internal/models"
)

const (
	geminiAPIURL       = "https://generativelanguage.googleapis.com/v1beta/models/%s:generateContent"
	defaultGeminiModel = "gemini-2.0-flash"
	maxImageEdge       = 1600
	extractionCacheTTL = 15 * time.Minute
)

const extractionPrompt = `Analyze this Pokemon card image and extract:
1. Pokemon name (exact English name, e.g., "Pikachu", "Charizard", "Mew")
2. Card number if visible, exactly as printed at the bottom (e.g., "025/102")
3. Set name if visible
4. The language the card is printed in ("english", "japanese" or another language name)

Return ONLY a JSON object in this exact format:
{
  "pokemonName": "PokemonName",
  "cardNumber": "XX/YY",
  "setName": "Set Name",
  "language": "english"
}

If any field is not found, use null.`

// VisionService extracts a candidate card identity from a photo using the
// Gemini generateContent API
type VisionService struct {
	apiKey     string
	model      string
	apiURL     string
	timeout    time.Duration
	httpClient *http.Client
	enabled    bool
	cache      *expirable.LRU[string, models.CandidateIdentity] // sha256(image) -> extraction
}

// NewVisionService creates the adapter. An empty apiKey leaves it disabled.
func NewVisionService(apiKey, model string, timeout time.Duration) *VisionService {
	if model == "" {
		model = defaultGeminiModel
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	svc := &VisionService{
		apiKey:     apiKey,
		model:      model,
		apiURL:     fmt.Sprintf(geminiAPIURL, model),
		timeout:    timeout,
		httpClient: cleanhttp.DefaultPooledClient(),
		enabled:    apiKey != "",
		cache:      expirable.NewLRU[string, models.CandidateIdentity](100, nil, extractionCacheTTL),
	}

	if svc.enabled {
		log.Printf("Vision service: enabled (model=%s, timeout=%s)", model, timeout)
	} else {
		log.Printf("Vision service: disabled (no GOOGLE_API_KEY)")
	}

	return svc
}

// WithAPIURL overrides the endpoint (used by tests)
func (s *VisionService) WithAPIURL(apiURL string) *VisionService {
	s.apiURL = apiURL
	return s
}

// IsEnabled returns whether an API key is configured
func (s *VisionService) IsEnabled() bool {
	return s.enabled
}

// Extract sends the image to the vision model and parses its answer. It never
// retries; callers decide whether to resubmit.
func (s *VisionService) Extract(ctx context.Context, imageBytes []byte) (*models.CandidateIdentity, error) {
	if len(imageBytes) == 0 {
		return nil, fmt.Errorf("%w: empty image", ErrValidation)
	}
	if !s.enabled {
		return nil, fmt.Errorf("%w: vision service %w", ErrUpstreamUnavailable, ErrNotConfigured)
	}

	sum := sha256.Sum256(imageBytes)
	cacheKey := hex.EncodeToString(sum[:])
	if cached, ok := s.cache.Get(cacheKey); ok {
		metrics.VisionCacheHits.Inc()
		return cached.Clone(), nil
	}

	payload, mimeType := prepareImage(imageBytes)

	text, err := s.generate(ctx, payload, mimeType)
	if err != nil {
		return nil, err
	}

	candidate, err := ParseCandidate(text)
	if err != nil {
		metrics.VisionErrorsTotal.WithLabelValues("unparsable").Inc()
		log.Printf("Vision: unparsable response: %q", truncate(text, 200))
		return nil, err
	}

	s.cache.Add(cacheKey, *candidate.Clone())
	return candidate, nil
}

// generate performs one generateContent call and returns the model's text
func (s *VisionService) generate(ctx context.Context, imageBytes []byte, mimeType string) (string, error) {
	start := time.Now()
	defer func() {
		metrics.VisionAPILatency.Observe(time.Since(start).Seconds())
	}()

	req := geminiRequest{
		Contents: []geminiContent{{
			Parts: []geminiPart{
				{Text: extractionPrompt},
				{InlineData: &geminiInlineData{MimeType: mimeType, Data: base64.StdEncoding.EncodeToString(imageBytes)}},
			},
		}},
		GenerationConfig: geminiGenConfig{
			Temperature:     0.1,
			MaxOutputTokens: 256,
		},
	}

	reqJSON, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	httpReq, err := http.NewRequestWithContext(ctx, "POST", s.apiURL+"?key="+s.apiKey, bytes.NewReader(reqJSON))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	metrics.VisionRequestsTotal.Inc()
	resp, err := s.httpClient.Do(httpReq)
	if err != nil {
		metrics.VisionErrorsTotal.WithLabelValues("network").Inc()
		return "", fmt.Errorf("%w: vision request failed: %v", ErrUpstreamUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		metrics.VisionErrorsTotal.WithLabelValues("read").Inc()
		return "", fmt.Errorf("%w: failed to read vision response: %v", ErrUpstreamUnavailable, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		metrics.VisionErrorsTotal.WithLabelValues("api").Inc()
		return "", fmt.Errorf("%w: vision API returned status %d: %s", ErrUpstreamUnavailable, resp.StatusCode, truncate(string(body), 200))
	}

	var apiResp geminiResponse
	if err := json.Unmarshal(body, &apiResp); err != nil {
		metrics.VisionErrorsTotal.WithLabelValues("parse").Inc()
		return "", fmt.Errorf("%w: failed to parse vision API envelope: %v", ErrUpstreamUnavailable, err)
	}

	if apiResp.Error != nil {
		metrics.VisionErrorsTotal.WithLabelValues("api").Inc()
		return "", fmt.Errorf("%w: vision API error %d: %s", ErrUpstreamUnavailable, apiResp.Error.Code, apiResp.Error.Message)
	}

	if len(apiResp.Candidates) == 0 {
		metrics.VisionErrorsTotal.WithLabelValues("no_candidates").Inc()
		return "", fmt.Errorf("%w: vision API returned no candidates", ErrUpstreamUnavailable)
	}

	var text strings.Builder
	for _, part := range apiResp.Candidates[0].Content.Parts {
		text.WriteString(part.Text)
	}
	if strings.TrimSpace(text.String()) == "" {
		metrics.VisionErrorsTotal.WithLabelValues("empty").Inc()
		return "", fmt.Errorf("%w: vision model returned no text", ErrUnparsableResponse)
	}

	return text.String(), nil
}

var fencePattern = regexp.MustCompile("(?s)```[a-zA-Z]*\\s*(.*?)```")

// ParseCandidate pulls the identity object out of free model text. A fenced
// code block is searched first; otherwise the first brace-delimited JSON
// object in the text is used. Missing fields stay nil, except language which
// defaults to english.
func ParseCandidate(text string) (*models.CandidateIdentity, error) {
	raw, ok := "", false
	for _, m := range fencePattern.FindAllStringSubmatch(text, -1) {
		if raw, ok = firstJSONObject(m[1]); ok {
			break
		}
	}
	if !ok {
		raw, ok = firstJSONObject(text)
	}
	if !ok {
		return nil, fmt.Errorf("%w: no JSON object in %q", ErrUnparsableResponse, truncate(text, 80))
	}

	var fields map[string]any
	if err := json.Unmarshal([]byte(raw), &fields); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnparsableResponse, err)
	}

	candidate := &models.CandidateIdentity{
		CardNumber: stringField(fields, "cardNumber"),
		SetName:    stringField(fields, "setName"),
		Language:   models.LanguageEnglish,
	}
	if name := stringField(fields, "pokemonName"); name != nil {
		candidate.Name = *name
	}
	if lang := stringField(fields, "language"); lang != nil {
		candidate.Language = models.NormalizeLanguage(*lang)
	}
	if candidate.CardNumber != nil {
		if _, total, ok := ParseCardNumber(*candidate.CardNumber); ok && total > 0 {
			candidate.SetSizeHint = &total
		}
	}

	return candidate, nil
}

// firstJSONObject returns the first balanced {...} span that is valid JSON.
// Braces inside string literals are ignored. An unclosed or invalid span
// moves the search to the next opening brace.
func firstJSONObject(text string) (string, bool) {
	for start := strings.IndexByte(text, '{'); start >= 0; {
		depth := 0
		inString, escaped := false, false
		end := -1

	scan:
		for i := start; i < len(text); i++ {
			ch := text[i]
			switch {
			case escaped:
				escaped = false
			case inString && ch == '\\':
				escaped = true
			case ch == '"':
				inString = !inString
			case inString:
			case ch == '{':
				depth++
			case ch == '}':
				depth--
				if depth == 0 {
					end = i
					break scan
				}
			}
		}

		if end >= 0 {
			if candidate := text[start : end+1]; json.Valid([]byte(candidate)) {
				return candidate, true
			}
		}

		next := strings.IndexByte(text[start+1:], '{')
		if next < 0 {
			break
		}
		start += next + 1
	}
	return "", false
}

// stringField reads a JSON value as a string. null, empty strings and the
// literal "null" count as absent; numbers are formatted.
func stringField(fields map[string]any, key string) *string {
	switch v := fields[key].(type) {
	case string:
		if strings.TrimSpace(v) == "" || strings.EqualFold(strings.TrimSpace(v), "null") {
			return nil
		}
		return &v
	case float64:
		s := strconv.FormatFloat(v, 'f', -1, 64)
		return &s
	default:
		return nil
	}
}

// prepareImage shrinks oversized photos before upload. Bytes that cannot be
// decoded are sent unchanged.
func prepareImage(data []byte) ([]byte, string) {
	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return data, detectMimeType(data)
	}

	b := img.Bounds()
	if b.Dx() <= maxImageEdge && b.Dy() <= maxImageEdge {
		return data, detectMimeType(data)
	}

	resized := imaging.Fit(img, maxImageEdge, maxImageEdge, imaging.Lanczos)
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, resized, imaging.JPEG, imaging.JPEGQuality(85)); err != nil {
		log.Printf("Vision: failed to re-encode resized image: %v", err)
		return data, detectMimeType(data)
	}
	return buf.Bytes(), "image/jpeg"
}

// detectMimeType returns the MIME type for image bytes
func detectMimeType(data []byte) string {
	contentType := http.DetectContentType(data)
	// For non-image types or unknown, default to jpeg (most common for photos)
	if !strings.HasPrefix(contentType, "image/") {
		return "image/jpeg"
	}
	return contentType
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

// Gemini API types

type geminiRequest struct {
	Contents         []geminiContent `json:"contents"`
	GenerationConfig geminiGenConfig `json:"generationConfig"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text       string            `json:"text,omitempty"`
	InlineData *geminiInlineData `json:"inline_data,omitempty"`
}

type geminiInlineData struct {
	MimeType string `json:"mime_type"`
	Data     string `json:"data"`
}

type geminiGenConfig struct {
	Temperature     float64 `json:"temperature"`
	MaxOutputTokens int     `json:"maxOutputTokens"`
}

type geminiResponse struct {
	Candidates []struct {
		Content struct {
			Parts []geminiPart `json:"parts"`
			Role  string       `json:"role"`
		} `json:"content"`
	} `json:"candidates"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error,omitempty"`
}
