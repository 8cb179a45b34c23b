package models

import (
	"strings"
)

// Language is the printing language reported by the vision model
type Language string

const (
	LanguageEnglish  Language = "english"
	LanguageJapanese Language = "japanese"
	LanguageOther    Language = "other"
)

// NormalizeLanguage maps the free-form language string returned by the vision
// model to a Language. Empty input means the model did not say, which is
// treated as English.
func NormalizeLanguage(lang string) Language {
	switch strings.ToLower(strings.TrimSpace(lang)) {
	case "", "english", "en", "eng":
		return LanguageEnglish
	case "japanese", "ja", "jp", "jpn":
		return LanguageJapanese
	default:
		return LanguageOther
	}
}

// CatalogCode returns the TCGdex language segment used to query the catalog
func (l Language) CatalogCode() string {
	if l == LanguageJapanese {
		return "ja"
	}
	return "en"
}

// CandidateIdentity is the vision model's guess at which card is in the photo.
// It only lives for the duration of one resolution.
type CandidateIdentity struct {
	Name        string   `json:"pokemonName"`
	CardNumber  *string  `json:"cardNumber"`
	SetName     *string  `json:"setName"`
	SetSizeHint *int     `json:"setSizeHint,omitempty"`
	Language    Language `json:"language"`
}

// Clone returns a deep copy; the pointer fields are not shared
func (c *CandidateIdentity) Clone() *CandidateIdentity {
	out := *c
	if c.CardNumber != nil {
		v := *c.CardNumber
		out.CardNumber = &v
	}
	if c.SetName != nil {
		v := *c.SetName
		out.SetName = &v
	}
	if c.SetSizeHint != nil {
		v := *c.SetSizeHint
		out.SetSizeHint = &v
	}
	return &out
}

// CatalogSummary is one row of a catalog name search
type CatalogSummary struct {
	ID      string `json:"id"`
	LocalID string `json:"localId"`
	Name    string `json:"name"`
	Image   string `json:"image,omitempty"`
	SetID   string `json:"set_id,omitempty"`
}

// CatalogCard is a full card record as served by the catalog
type CatalogCard struct {
	ID          string     `json:"id"`
	LocalID     string     `json:"localId"`
	Name        string     `json:"name"`
	Category    string     `json:"category,omitempty"`
	Illustrator string     `json:"illustrator,omitempty"`
	Rarity      string     `json:"rarity,omitempty"`
	HP          int        `json:"hp,omitempty"`
	Types       []string   `json:"types,omitempty"`
	EvolveFrom  string     `json:"evolveFrom,omitempty"`
	FlavorText  string     `json:"description,omitempty"`
	Attacks     []Attack   `json:"attacks,omitempty"`
	Weaknesses  []Modifier `json:"weaknesses,omitempty"`
	Resistances []Modifier `json:"resistances,omitempty"`
	Retreat     int        `json:"retreat,omitempty"`
	Image       string     `json:"image,omitempty"`
	Set         CardSet    `json:"set"`
	Pricing     *Pricing   `json:"pricing,omitempty"`
}

// CardSet is the set block embedded in a catalog card
type CardSet struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Logo      string    `json:"logo,omitempty"`
	CardCount CardCount `json:"cardCount"`
}

// CardCount holds the printed (official) and real (total, secret rares
// included) size of a set
type CardCount struct {
	Official int `json:"official"`
	Total    int `json:"total"`
}

// Size returns the official count, falling back to the total count
func (c CardCount) Size() int {
	if c.Official > 0 {
		return c.Official
	}
	return c.Total
}

// Matches reports whether a printed set size equals either count
func (c CardCount) Matches(size int) bool {
	return size > 0 && (c.Official == size || c.Total == size)
}

type Attack struct {
	Name   string   `json:"name"`
	Cost   []string `json:"cost,omitempty"`
	Damage any      `json:"damage,omitempty"` // TCGdex sends numbers or strings like "30+"
	Effect string   `json:"effect,omitempty"`
}

type Modifier struct {
	Type  string `json:"type"`
	Value string `json:"value,omitempty"`
}

// Pricing carries the marketplace price blocks from the catalog
type Pricing struct {
	Cardmarket *CardmarketPrice `json:"cardmarket,omitempty"`
	TCGPlayer  *TCGPlayerPrice  `json:"tcgplayer,omitempty"`
}

// CardmarketPrice prices are in EUR
type CardmarketPrice struct {
	Unit  string  `json:"unit,omitempty"`
	Avg   float64 `json:"avg,omitempty"`
	Low   float64 `json:"low,omitempty"`
	Trend float64 `json:"trend,omitempty"`
}

// TCGPlayerPrice prices are in USD
type TCGPlayerPrice struct {
	Unit     string           `json:"unit,omitempty"`
	Normal   *TCGPlayerVariant `json:"normal,omitempty"`
	Holofoil *TCGPlayerVariant `json:"holofoil,omitempty"`
	Reverse  *TCGPlayerVariant `json:"reverse-holofoil,omitempty"`
}

type TCGPlayerVariant struct {
	LowPrice    float64 `json:"lowPrice,omitempty"`
	MidPrice    float64 `json:"midPrice,omitempty"`
	HighPrice   float64 `json:"highPrice,omitempty"`
	MarketPrice float64 `json:"marketPrice,omitempty"`
}

// MarketPrice returns the first non-zero market price, preferring the normal
// printing, then holofoil, then reverse holofoil
func (p *TCGPlayerPrice) MarketPrice() float64 {
	if p == nil {
		return 0
	}
	for _, v := range []*TCGPlayerVariant{p.Normal, p.Holofoil, p.Reverse} {
		if v != nil && v.MarketPrice > 0 {
			return v.MarketPrice
		}
	}
	return 0
}
