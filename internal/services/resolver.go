package services

import (
	"context"
	"fmt"
	"log"
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/text/cases"

	"github.com/codyseavey/pokido/internal/metrics"
	"github.com/codyseavey/pokido/internal/models"
)

// DefaultNearNumberTolerance is how far a misread card number may be from an
// accepted alternative when nothing matches exactly
const DefaultNearNumberTolerance = 5

const tcgdexAssetsURL = "https://assets.tcgdex.net"

// Selection branches reported in Resolution.Branch
const (
	BranchFirst           = "first"             // no usable number hint
	BranchExact           = "exact"             // one card (or no set size to split ties) with that number
	BranchNear            = "near"              // no exact match, nearby number accepted
	BranchFallback        = "fallback"          // no exact or nearby match, first search result
	BranchSetSize         = "set_size"          // same number in several sets, set size decided
	BranchSetSizeFallback = "set_size_fallback" // same number in several sets, no set size matched
)

// CatalogSource is the subset of the catalog the resolver needs
type CatalogSource interface {
	SearchByName(ctx context.Context, lang, name string) ([]models.CatalogSummary, error)
	GetCard(ctx context.Context, lang, id string) (*models.CatalogCard, error)
}

// ImageFallback finds artwork for cards the catalog has no image for
type ImageFallback interface {
	LargeImageURL(ctx context.Context, name, number string) (string, error)
}

// Resolution describes how a card was picked
type Resolution struct {
	Branch        string `json:"branch"`
	Candidates    int    `json:"candidates"`
	SameNumber    int    `json:"same_number"`
	DetailFetches int    `json:"detail_fetches"`
	LocalNumber   int    `json:"local_number,omitempty"`
	SetSizeHint   int    `json:"set_size_hint,omitempty"`
}

// CatalogResolver turns a detected name and printed number into one catalog card
type CatalogResolver struct {
	catalog   CatalogSource
	images    ImageFallback
	tolerance int
}

// NewCatalogResolver creates a resolver. images may be nil to skip the
// secondary artwork lookup.
func NewCatalogResolver(catalog CatalogSource, images ImageFallback, tolerance int) *CatalogResolver {
	if tolerance < 0 {
		tolerance = DefaultNearNumberTolerance
	}
	return &CatalogResolver{
		catalog:   catalog,
		images:    images,
		tolerance: tolerance,
	}
}

var (
	slashNumberPattern   = regexp.MustCompile(`(\d+)\s*/\s*(\d+)`)
	leadingNumberPattern = regexp.MustCompile(`^\s*#?\s*(\d+)`)
)

// ParseCardNumber splits a printed card number such as "132/214" into its
// local number and set size. The set size is 0 when absent. Leading zeros are
// ignored ("099/214" is 99). ok is false when no number can be read.
func ParseCardNumber(hint string) (local, total int, ok bool) {
	m := slashNumberPattern.FindStringSubmatch(hint)
	if m == nil {
		m = leadingNumberPattern.FindStringSubmatch(hint)
	}
	if m == nil {
		return 0, 0, false
	}

	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, 0, false
	}
	if len(m) > 2 {
		total, _ = strconv.Atoi(m[2])
	}
	return n, total, true
}

// localNumber parses a catalog localId. Ids with letters ("TG05", "SV001")
// never equal a printed number and report ok=false.
func localNumber(localID string) (int, bool) {
	if localID == "" {
		return 0, false
	}
	n, err := strconv.Atoi(localID)
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}

// Resolve finds the catalog card for a detected name and optional printed
// number. Every failure, network errors included, is reported as ErrNotFound.
func (r *CatalogResolver) Resolve(ctx context.Context, name, cardNumber string, lang models.Language) (*models.CatalogCard, *Resolution, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, nil, fmt.Errorf("%w: pokemon name is required", ErrValidation)
	}

	catalogLang := lang.CatalogCode()
	folded := cases.Fold().String(name)

	results, err := r.catalog.SearchByName(ctx, catalogLang, folded)
	if err != nil {
		log.Printf("Resolver: search for %q failed: %v", folded, err)
		return nil, nil, fmt.Errorf("%w: search failed for %q", ErrNotFound, name)
	}
	if len(results) == 0 {
		return nil, nil, fmt.Errorf("%w: no cards named %q", ErrNotFound, name)
	}

	res := &Resolution{Candidates: len(results)}
	fetched := map[string]*models.CatalogCard{}

	selected := r.selectCandidate(ctx, results, cardNumber, catalogLang, res, fetched)
	metrics.ResolutionBranchTotal.WithLabelValues(res.Branch).Inc()

	card, ok := fetched[selected.ID]
	if !ok {
		res.DetailFetches++
		card, err = r.catalog.GetCard(ctx, catalogLang, selected.ID)
		if err != nil {
			log.Printf("Resolver: detail fetch for %s failed: %v", selected.ID, err)
			return nil, res, fmt.Errorf("%w: detail fetch failed for %s", ErrNotFound, selected.ID)
		}
		if card == nil {
			return nil, res, fmt.Errorf("%w: card %s disappeared from catalog", ErrNotFound, selected.ID)
		}
	}

	card.Image = r.normalizeImage(ctx, card, lang)

	log.Printf("Resolver: %q #%s -> %s (branch=%s, candidates=%d, same_number=%d, fetches=%d)",
		name, cardNumber, card.ID, res.Branch, res.Candidates, res.SameNumber, res.DetailFetches)

	return card, res, nil
}

// selectCandidate applies the number heuristics to the search results. It
// may fetch card details while disambiguating; those land in fetched.
func (r *CatalogResolver) selectCandidate(
	ctx context.Context,
	results []models.CatalogSummary,
	cardNumber, catalogLang string,
	res *Resolution,
	fetched map[string]*models.CatalogCard,
) models.CatalogSummary {
	target, setSize, ok := ParseCardNumber(cardNumber)
	if strings.TrimSpace(cardNumber) == "" || !ok {
		res.Branch = BranchFirst
		return results[0]
	}
	res.LocalNumber = target
	res.SetSizeHint = setSize

	var matching []models.CatalogSummary
	for _, c := range results {
		if n, ok := localNumber(c.LocalID); ok && n == target {
			matching = append(matching, c)
		}
	}
	res.SameNumber = len(matching)

	switch {
	case len(matching) == 0:
		if near, ok := r.nearestCandidate(results, target); ok {
			res.Branch = BranchNear
			return near
		}
		res.Branch = BranchFallback
		return results[0]

	case len(matching) == 1 || setSize == 0:
		res.Branch = BranchExact
		return matching[0]
	}

	// Same local number in several sets: the printed set size decides
	for _, c := range matching {
		res.DetailFetches++
		card, err := r.catalog.GetCard(ctx, catalogLang, c.ID)
		if err != nil || card == nil {
			log.Printf("Resolver: skipping %s while comparing set sizes: %v", c.ID, err)
			continue
		}
		fetched[c.ID] = card
		if card.Set.CardCount.Matches(setSize) {
			res.Branch = BranchSetSize
			return c
		}
	}

	res.Branch = BranchSetSizeFallback
	return matching[0]
}

// nearestCandidate returns the closest numeric candidate that is either within
// the tolerance band or a single-digit misread of the target (same digit
// count, one digit different). Ties keep catalog order.
func (r *CatalogResolver) nearestCandidate(results []models.CatalogSummary, target int) (models.CatalogSummary, bool) {
	best := -1
	bestDist := 0
	for i, c := range results {
		n, ok := localNumber(c.LocalID)
		if !ok {
			continue
		}
		dist := n - target
		if dist < 0 {
			dist = -dist
		}
		if dist > r.tolerance && !singleDigitMisread(n, target) {
			continue
		}
		if best == -1 || dist < bestDist {
			best, bestDist = i, dist
		}
	}
	if best == -1 {
		return models.CatalogSummary{}, false
	}
	return results[best], true
}

func singleDigitMisread(a, b int) bool {
	sa, sb := strconv.Itoa(a), strconv.Itoa(b)
	if len(sa) != len(sb) {
		return false
	}
	diff := 0
	for i := range sa {
		if sa[i] != sb[i] {
			diff++
		}
	}
	return diff == 1
}

// normalizeImage returns a high resolution image URL for the card, asking the
// secondary service and finally synthesizing an asset URL when the catalog
// has none
func (r *CatalogResolver) normalizeImage(ctx context.Context, card *models.CatalogCard, lang models.Language) string {
	if card.Image != "" {
		if strings.HasSuffix(card.Image, "/high.png") {
			return card.Image
		}
		return strings.TrimRight(card.Image, "/") + "/high.png"
	}

	if r.images != nil {
		imageURL, err := r.images.LargeImageURL(ctx, card.Name, card.LocalID)
		if err != nil {
			log.Printf("Resolver: image fallback failed for %s: %v", card.ID, err)
		} else if imageURL != "" {
			return imageURL
		}
	}

	if card.Set.ID != "" {
		return SynthesizeImageURL(card.Set.ID, card.LocalID, lang)
	}
	return ""
}

// SynthesizeImageURL builds the TCGdex asset URL from set-id conventions:
// dots are dropped from the set id and the series is the set id without its
// trailing digits ("swsh3" -> "swsh/swsh3", "sv03.5" -> "sv/sv035").
func SynthesizeImageURL(setID, localID string, lang models.Language) string {
	id := strings.ReplaceAll(setID, ".", "")
	series := strings.TrimRight(id, "0123456789")
	return fmt.Sprintf("%s/%s/%s/%s/%s/high.png", tcgdexAssetsURL, lang.CatalogCode(), series, id, localID)
}
