package models

// ResolvedCard is a catalog card merged with its locale-specific presentation.
// It is what the scan and search endpoints return under `_identification`.
type ResolvedCard struct {
	ID          string     `json:"id"`
	Name        string     `json:"pokemon_name"`
	Number      string     `json:"card_number"`
	SetID       string     `json:"setId"`
	SetName     string     `json:"set"`
	SetTotal    int        `json:"set_total,omitempty"`
	SetLogo     string     `json:"setLogo,omitempty"`
	Rarity      string     `json:"rarity"`
	HP          int        `json:"hp,omitempty"`
	Types       []string   `json:"types"`
	Attacks     []Attack   `json:"attacks,omitempty"`
	Weaknesses  []Modifier `json:"weaknesses,omitempty"`
	Resistances []Modifier `json:"resistances,omitempty"`
	Retreat     int        `json:"retreat,omitempty"`
	Illustrator string     `json:"illustrator,omitempty"`
	Category    string     `json:"category,omitempty"`
	EvolveFrom  string     `json:"evolveFrom,omitempty"`
	Description string     `json:"description"`
	Image       string     `json:"image"`
	Prices      *Pricing   `json:"prices,omitempty"`
	IsJapanese  bool       `json:"isJapanese"`

	Locale         string   `json:"locale"`
	TypeLabels     []string `json:"typeNames"`
	TypeColors     []string `json:"typeColors"`
	RarityLabel    string   `json:"rarityLabel"`
	Stars          string   `json:"stars"`
	EstimatedValue int      `json:"value"`
	Currency       string   `json:"currency"`
	Tips           []string `json:"tips"`

	Detected *CandidateIdentity `json:"geminiDetected,omitempty"`
}

// IdentificationRecord wraps a resolved card in the response envelope
type IdentificationRecord struct {
	Identification ResolvedCard `json:"_identification"`
}

// IdentificationResponse is the body returned by /api/analyze and /api/search
type IdentificationResponse struct {
	Records []IdentificationRecord `json:"records"`
}
