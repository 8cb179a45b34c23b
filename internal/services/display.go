package services

import (
	"math"
	"strings"

	"golang.org/x/text/language"

	"github.com/codyseavey/pokido/internal/models"
)

// Presenter turns catalog cards into locale-specific display records
type Presenter struct {
	eurRate       float64
	usdRate       float64
	currency      string
	defaultLocale string
	matcher       language.Matcher
}

// NewPresenter creates a presenter. Rates convert catalog EUR (Cardmarket) and
// USD (TCGplayer) prices into currency.
func NewPresenter(eurRate, usdRate float64, currency, defaultLocale string) *Presenter {
	supported := []language.Tag{language.Hebrew, language.English}
	if defaultLocale == LocaleEnglish {
		supported = []language.Tag{language.English, language.Hebrew}
	} else {
		defaultLocale = LocaleHebrew
	}
	return &Presenter{
		eurRate:       eurRate,
		usdRate:       usdRate,
		currency:      currency,
		defaultLocale: defaultLocale,
		matcher:       language.NewMatcher(supported),
	}
}

// MatchLocale picks a supported locale from an explicit choice and/or an
// Accept-Language header, falling back to the default locale
func (p *Presenter) MatchLocale(explicit, acceptLanguage string) string {
	tag, _ := language.MatchStrings(p.matcher, explicit, acceptLanguage)
	base, _ := tag.Base()
	switch base.String() {
	case LocaleHebrew, LocaleEnglish:
		return base.String()
	default:
		return p.defaultLocale
	}
}

// EstimateValue converts the catalog price to the display currency. Cardmarket
// trend wins over the TCGplayer market price; 0 means no price.
func (p *Presenter) EstimateValue(pricing *models.Pricing) int {
	if pricing == nil {
		return 0
	}
	if pricing.Cardmarket != nil && pricing.Cardmarket.Trend > 0 {
		return int(math.Round(pricing.Cardmarket.Trend * p.eurRate))
	}
	if market := pricing.TCGPlayer.MarketPrice(); market > 0 {
		return int(math.Round(market * p.usdRate))
	}
	return 0
}

// Present merges a catalog card with its presentation for locale
func (p *Presenter) Present(card *models.CatalogCard, detected *models.CandidateIdentity, locale string) models.ResolvedCard {
	if _, ok := translations[locale]; !ok {
		locale = p.defaultLocale
	}

	rarity := card.Rarity
	if rarity == "" {
		rarity = "Common"
	}

	value := p.EstimateValue(card.Pricing)
	displayValue := value
	if displayValue == 0 {
		displayValue = 10
	}

	labels, colors := TypeLabels(card.Types, locale)

	description := card.FlavorText
	if description == "" {
		description = card.Name + " - " + Translate(locale, descriptionTail)
	}

	types := card.Types
	if types == nil {
		types = []string{}
	}

	return models.ResolvedCard{
		ID:          card.ID,
		Name:        card.Name,
		Number:      card.LocalID,
		SetID:       card.Set.ID,
		SetName:     orDefault(card.Set.Name, "Unknown"),
		SetTotal:    card.Set.CardCount.Size(),
		SetLogo:     card.Set.Logo,
		Rarity:      rarity,
		HP:          card.HP,
		Types:       types,
		Attacks:     card.Attacks,
		Weaknesses:  card.Weaknesses,
		Resistances: card.Resistances,
		Retreat:     card.Retreat,
		Illustrator: card.Illustrator,
		Category:    card.Category,
		EvolveFrom:  card.EvolveFrom,
		Description: description,
		Image:       card.Image,
		Prices:      card.Pricing,
		IsJapanese:  detected != nil && detected.Language == models.LanguageJapanese,

		Locale:         locale,
		TypeLabels:     labels,
		TypeColors:     colors,
		RarityLabel:    RarityLabel(card.Rarity, locale),
		Stars:          Stars(rarity),
		EstimatedValue: displayValue,
		Currency:       p.currency,
		Tips:           Tips(rarity, value, card.HP, locale),
		Detected:       detected,
	}
}

// TypeLabels maps energy types to labels and colours. Unknown types pass
// through unchanged with a neutral colour.
func TypeLabels(types []string, locale string) ([]string, []string) {
	labels := make([]string, 0, len(types))
	colors := make([]string, 0, len(types))
	for _, t := range types {
		style, ok := typeStyles[strings.ToLower(t)]
		switch {
		case !ok:
			labels = append(labels, t)
			colors = append(colors, unknownTypeColor)
		case locale == LocaleHebrew:
			labels = append(labels, style.He)
			colors = append(colors, style.Color)
		default:
			labels = append(labels, t)
			colors = append(colors, style.Color)
		}
	}
	return labels, colors
}

// RarityLabel translates a catalog rarity; unknown rarities pass through
func RarityLabel(rarity, locale string) string {
	if rarity == "" {
		return Translate(locale, "commonRarity")
	}
	if locale == LocaleHebrew {
		if label, ok := rarityLabelsHe[rarity]; ok {
			return label
		}
	}
	return rarity
}

func Stars(rarity string) string {
	r := strings.ToLower(rarity)
	switch {
	case strings.Contains(r, "ultra"):
		return "⭐⭐⭐⭐⭐"
	case strings.Contains(r, "rare"):
		return "⭐⭐⭐⭐"
	default:
		return "⭐⭐"
	}
}

// Tips returns the advisory strings for a card. value is the converted
// estimate before any display default is applied.
func Tips(rarity string, value, hp int, locale string) []string {
	r := strings.ToLower(rarity)
	var keys []string

	switch {
	case strings.Contains(r, "ultra") || strings.Contains(r, "secret"):
		keys = append(keys, tipVeryRare, tipFutureValue)
	case strings.Contains(r, "holo") || strings.Contains(r, "rare"):
		keys = append(keys, tipHolo, tipCollectible)
	}
	if value > 50 {
		keys = append(keys, tipExpensive)
	}
	if hp > 200 {
		keys = append(keys, tipHighHP)
	}
	if len(keys) == 0 {
		keys = append(keys, tipNiceCard, tipKeepSafe)
	}

	tips := make([]string, len(keys))
	for i, k := range keys {
		tips[i] = Translate(locale, k)
	}
	return tips
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
