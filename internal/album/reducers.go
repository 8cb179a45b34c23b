// Package album keeps a card collection grouped by set. The reducers in this
// file are pure: they never mutate their input state.
package album

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/codyseavey/pokido/internal/models"
)

const (
	unknownSetID   = "unknown"
	unknownSetName = "Unknown Set"
)

// EntryKey returns the (set id, card id) pair an add request is stored under
func EntryKey(req models.AddCardRequest) (setID, cardID string) {
	setID = req.SetID
	if setID == "" {
		setID = unknownSetID
	}
	cardID = req.ID
	if cardID == "" {
		cardID = setID + "-" + req.Number
	}
	return setID, cardID
}

// AddCard returns a new state with the card added. A card already present in
// its set gets its scan count bumped and its scan time refreshed. The set's
// name, total and logo are replaced by the request's values.
func AddCard(state models.AlbumState, req models.AddCardRequest, now time.Time) models.AlbumState {
	next := clone(state)
	setID, cardID := EntryKey(req)

	// The latest add always rewrites the set metadata
	meta := models.SetMeta{
		ID:    setID,
		Name:  req.SetName,
		Total: req.SetTotal,
		Logo:  req.SetLogo,
	}
	if meta.Name == "" {
		meta.Name = unknownSetName
	}
	next.Sets[setID] = meta

	entries := next.Collection[setID]
	for i := range entries {
		if entries[i].ID == cardID {
			entries[i].ScanCount++
			entries[i].ScannedAt = now
			return next
		}
	}

	next.Collection[setID] = append(entries, models.AlbumEntry{
		ID:        cardID,
		Name:      req.Name,
		Number:    req.Number,
		Image:     req.Image,
		Rarity:    req.Rarity,
		Types:     append([]string(nil), req.Types...),
		HP:        req.HP,
		ScannedAt: now,
		ScanCount: 1,
	})
	return next
}

// SetsWithStats lists every known set with completion figures, most collected
// first. Ties are ordered by set id.
func SetsWithStats(state models.AlbumState) []models.SetStats {
	seen := make(map[string]bool, len(state.Sets))
	stats := make([]models.SetStats, 0, len(state.Sets))

	add := func(meta models.SetMeta) {
		collected := len(state.Collection[meta.ID])
		stats = append(stats, models.SetStats{
			SetMeta:    meta,
			Collected:  collected,
			Percentage: percentage(collected, meta.Total),
		})
		seen[meta.ID] = true
	}

	for id, meta := range state.Sets {
		if meta.ID == "" {
			meta.ID = id
		}
		add(meta)
	}
	// Imported documents may carry cards for sets without metadata
	for id := range state.Collection {
		if !seen[id] {
			add(models.SetMeta{ID: id, Name: unknownSetName})
		}
	}

	sort.Slice(stats, func(i, j int) bool {
		if stats[i].Collected != stats[j].Collected {
			return stats[i].Collected > stats[j].Collected
		}
		return stats[i].ID < stats[j].ID
	})
	return stats
}

func percentage(collected, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(float64(collected) / float64(total) * 100))
}

// SetCards returns a copy of the cards collected for one set in insertion order
func SetCards(state models.AlbumState, setID string) []models.AlbumEntry {
	entries := state.Collection[setID]
	out := make([]models.AlbumEntry, len(entries))
	copy(out, entries)
	return out
}

// TotalStats counts distinct cards and sets
func TotalStats(state models.AlbumState) models.TotalStats {
	total := 0
	for _, entries := range state.Collection {
		total += len(entries)
	}
	return models.TotalStats{
		TotalCards: total,
		TotalSets:  len(state.Sets),
	}
}

// Marshal encodes the state in the {collection, sets} document format
func Marshal(state models.AlbumState) ([]byte, error) {
	state = normalize(state)
	data, err := json.Marshal(state)
	if err != nil {
		return nil, fmt.Errorf("failed to encode album: %w", err)
	}
	return data, nil
}

// Unmarshal decodes a document. Empty input yields an empty album.
func Unmarshal(data []byte) (models.AlbumState, error) {
	if len(data) == 0 {
		return models.NewAlbumState(), nil
	}
	var state models.AlbumState
	if err := json.Unmarshal(data, &state); err != nil {
		return models.NewAlbumState(), fmt.Errorf("failed to decode album: %w", err)
	}
	return normalize(state), nil
}

func normalize(state models.AlbumState) models.AlbumState {
	if state.Collection == nil {
		state.Collection = map[string][]models.AlbumEntry{}
	}
	if state.Sets == nil {
		state.Sets = map[string]models.SetMeta{}
	}
	return state
}

// clone deep-copies the parts of the state the reducers write to
func clone(state models.AlbumState) models.AlbumState {
	next := models.NewAlbumState()
	for id, entries := range state.Collection {
		cp := make([]models.AlbumEntry, len(entries))
		copy(cp, entries)
		next.Collection[id] = cp
	}
	for id, meta := range state.Sets {
		next.Sets[id] = meta
	}
	return next
}
