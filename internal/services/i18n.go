package services

// Supported UI locales
const (
	LocaleHebrew  = "he"
	LocaleEnglish = "en"
)

type typeStyle struct {
	He    string
	Color string
}

// typeStyles maps lowercase energy types to their Hebrew label and badge colour
var typeStyles = map[string]typeStyle{
	"water":     {"מים", "#6890F0"},
	"fire":      {"אש", "#F08030"},
	"grass":     {"עשב", "#78C850"},
	"electric":  {"חשמלי", "#F8D030"},
	"lightning": {"חשמלי", "#F8D030"},
	"psychic":   {"פסיכי", "#F85888"},
	"fighting":  {"לחימה", "#C03028"},
	"darkness":  {"אופל", "#705848"},
	"dark":      {"אופל", "#705848"},
	"metal":     {"מתכת", "#B8B8D0"},
	"steel":     {"פלדה", "#B8B8D0"},
	"fairy":     {"פיה", "#EE99AC"},
	"dragon":    {"דרקון", "#7038F8"},
	"colorless": {"נטול צבע", "#A8A878"},
	"flying":    {"מעופף", "#A890F0"},
	"poison":    {"רעל", "#A040A0"},
	"ice":       {"קרח", "#98D8D8"},
	"ground":    {"קרקע", "#E0C068"},
	"rock":      {"סלע", "#B8A038"},
	"bug":       {"חרק", "#A8B820"},
	"ghost":     {"רוח", "#705898"},
}

const unknownTypeColor = "#A8A878"

var rarityLabelsHe = map[string]string{
	"Common":       "נפוץ",
	"Uncommon":     "לא נפוץ",
	"Rare":         "נדיר",
	"Rare Holo":    "הולוגרפי נדיר",
	"Rare Ultra":   "אולטרה נדיר",
	"Ultra Rare":   "אולטרה נדיר",
	"Secret Rare":  "סודי נדיר",
	"Promo":        "פרומו",
	"Amazing Rare": "מדהים נדיר",
	"Shiny Rare":   "מבריק נדיר",
	"Radiant Rare": "זוהר נדיר",
}

// tip keys resolved through the translation table
const (
	tipVeryRare     = "tipVeryRare"
	tipFutureValue  = "tipFutureValue"
	tipHolo         = "tipHolo"
	tipCollectible  = "tipCollectible"
	tipExpensive    = "tipExpensive"
	tipHighHP       = "tipHighHP"
	tipNiceCard     = "tipNiceCard"
	tipKeepSafe     = "tipKeepSafe"
	descriptionTail = "pokemonCard"
)

// translations holds UI strings per locale. Lookups for unknown keys return
// the key itself.
var translations = map[string]map[string]string{
	LocaleHebrew: {
		"appName":         "Pokido",
		"loading":         "טוען...",
		"error":           "שגיאה",
		"welcomeSubtitle": "מכשיר זיהוי קלפי פוקימון",
		"scanCard":        "סרוק קלף",
		"myAlbum":         "האלבום שלי",
		"emptyAlbum":      "האלבום ריק!",
		"noCardsInSet":    "אין קלפים בסט זה",
		"savedToAlbum":    "נשמר לאלבום!",
		"saveToAlbum":     "שמור לאלבום",
		"analyzing":       "מנתח את הקלף...",
		"identifying":     "מזהה פוקימון...",
		"scanFailed":      "הסריקה נכשלה",
		"set":             "סט",
		"rarity":          "נדירות",
		"estimatedValue":  "ערך משוער",
		"illustrator":     "מאייר",
		"weakness":        "חולשה",
		"retreat":         "נסיגה",
		"commonRarity":    "נפוץ",

		"errNoFile":       "לא נבחר קובץ",
		"errNoName":       "לא זוהה שם פוקימון בתמונה",
		"errNameRequired": "יש להזין שם פוקימון",
		"errNotFound":     "לא נמצאו קלפים",
		"errUnparsable":   "לא ניתן לזהות את הקלף",
		"errUpstream":     "השירות אינו זמין כרגע, נסה שוב",
		"errBadRequest":   "בקשה לא תקינה",

		tipVeryRare:     "💎 קלף נדיר מאוד! שמור במכסה מגן",
		tipFutureValue:  "📈 ערך עתידי גבוה",
		tipHolo:         "✨ קלף הולוגרפי - שמור בטוב",
		tipCollectible:  "💎 ערך אספני",
		tipExpensive:    "💰 קלף יקר! שמור במקום בטוח",
		tipHighHP:       "⚡ HP גבוה - קלף חזק במשחק!",
		tipNiceCard:     "📚 קלף נחמד לאוסף",
		tipKeepSafe:     "✨ שמור בתנאים טובים",
		descriptionTail: "קלף פוקימון",
	},
	LocaleEnglish: {
		"appName":         "Pokido",
		"loading":         "Loading...",
		"error":           "Error",
		"welcomeSubtitle": "Pokemon Card Scanner",
		"scanCard":        "Scan Card",
		"myAlbum":         "My Album",
		"emptyAlbum":      "Album is empty!",
		"noCardsInSet":    "No cards in this set",
		"savedToAlbum":    "Saved to album!",
		"saveToAlbum":     "Save to Album",
		"analyzing":       "Analyzing card...",
		"identifying":     "Identifying Pokemon...",
		"scanFailed":      "Scan failed",
		"set":             "Set",
		"rarity":          "Rarity",
		"estimatedValue":  "Estimated Value",
		"illustrator":     "Illustrator",
		"weakness":        "Weakness",
		"retreat":         "Retreat",
		"commonRarity":    "Common",

		"errNoFile":       "No file uploaded",
		"errNoName":       "No Pokemon name was detected in the image",
		"errNameRequired": "Pokemon name is required",
		"errNotFound":     "Card not found",
		"errUnparsable":   "Could not identify the card",
		"errUpstream":     "The service is unavailable right now, please try again",
		"errBadRequest":   "Invalid request",

		tipVeryRare:     "💎 Very rare card! Keep it in a protective case",
		tipFutureValue:  "📈 High future value",
		tipHolo:         "✨ Holographic card - store it well",
		tipCollectible:  "💎 Collectible value",
		tipExpensive:    "💰 Valuable card! Keep it somewhere safe",
		tipHighHP:       "⚡ High HP - a strong card in play!",
		tipNiceCard:     "📚 A nice card for the collection",
		tipKeepSafe:     "✨ Keep it in good condition",
		descriptionTail: "Pokemon card",
	},
}

// Translate returns the UI string for key in locale, falling back to the key
func Translate(locale, key string) string {
	if table, ok := translations[locale]; ok {
		if s, ok := table[key]; ok {
			return s
		}
	}
	return key
}

// Translations returns a copy of the full string table for a locale
func Translations(locale string) (map[string]string, bool) {
	table, ok := translations[locale]
	if !ok {
		return nil, false
	}
	out := make(map[string]string, len(table))
	for k, v := range table {
		out[k] = v
	}
	return out, true
}
