package models

import (
	"time"
)

// AlbumEntry is one collected card inside a set. Entries are unique per
// (set id, card id); a rescan bumps ScanCount and ScannedAt.
type AlbumEntry struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Number    string    `json:"number"`
	Image     string    `json:"image,omitempty"`
	Rarity    string    `json:"rarity,omitempty"`
	Types     []string  `json:"types,omitempty"`
	HP        int       `json:"hp,omitempty"`
	ScannedAt time.Time `json:"scannedAt"`
	ScanCount int       `json:"scanCount"`
}

// SetMeta describes a set the album has seen at least one card from
type SetMeta struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Total int    `json:"total"`
	Logo  string `json:"logo,omitempty"`
}

// SetStats is a SetMeta with completion figures
type SetStats struct {
	SetMeta
	Collected  int `json:"collected"`
	Percentage int `json:"percentage"`
}

type TotalStats struct {
	TotalCards int `json:"totalCards"`
	TotalSets  int `json:"totalSets"`
}

// AlbumState is the whole persisted album document
type AlbumState struct {
	Collection map[string][]AlbumEntry `json:"collection"`
	Sets       map[string]SetMeta      `json:"sets"`
}

// NewAlbumState returns an empty album with non-nil maps
func NewAlbumState() AlbumState {
	return AlbumState{
		Collection: map[string][]AlbumEntry{},
		Sets:       map[string]SetMeta{},
	}
}

// AddCardRequest is the body of POST /api/album/cards. It mirrors the subset
// of a ResolvedCard the album keeps.
type AddCardRequest struct {
	ID       string   `json:"id"`
	Name     string   `json:"name" binding:"required"`
	Number   string   `json:"number"`
	SetID    string   `json:"setId"`
	SetName  string   `json:"set"`
	SetTotal int      `json:"setTotal"`
	SetLogo  string   `json:"setLogo"`
	Image    string   `json:"image"`
	Rarity   string   `json:"rarity"`
	Types    []string `json:"types"`
	HP       int      `json:"hp"`
}

// AddCardRequestFromResolved builds an album add request from a scan result
func AddCardRequestFromResolved(card ResolvedCard) AddCardRequest {
	return AddCardRequest{
		ID:       card.ID,
		Name:     card.Name,
		Number:   card.Number,
		SetID:    card.SetID,
		SetName:  card.SetName,
		SetTotal: card.SetTotal,
		SetLogo:  card.SetLogo,
		Image:    card.Image,
		Rarity:   card.Rarity,
		Types:    card.Types,
		HP:       card.HP,
	}
}
