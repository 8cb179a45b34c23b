package models

import (
	"time"
)

// ScanSource tells whether a scan came from a photo or a manual search
type ScanSource string

const (
	ScanSourceImage  ScanSource = "image"
	ScanSourceManual ScanSource = "manual"
)

// ScanOutcome classifies how a scan ended
type ScanOutcome string

const (
	OutcomeResolved   ScanOutcome = "resolved"
	OutcomeNotFound   ScanOutcome = "not_found"
	OutcomeUnparsable ScanOutcome = "unparsable"
	OutcomeUpstream   ScanOutcome = "upstream"
	OutcomeInvalid    ScanOutcome = "invalid"
)

// ScanRecord stores one scan or lookup attempt for history and diagnostics
type ScanRecord struct {
	ID             uint        `json:"id" gorm:"primaryKey;autoIncrement"`
	Source         ScanSource  `json:"source" gorm:"not null;index"`
	DetectedName   string      `json:"detected_name"`
	DetectedNumber string      `json:"detected_number"`
	Language       Language    `json:"language" gorm:"default:'english'"`
	CardID         string      `json:"card_id" gorm:"index"`
	SetID          string      `json:"set_id"`
	Outcome        ScanOutcome `json:"outcome" gorm:"not null;index"`
	Branch         string      `json:"branch,omitempty"`
	DurationMs     int64       `json:"duration_ms"`
	CreatedAt      time.Time   `json:"created_at" gorm:"index"`
}

// AlbumDocument is the server-side twin of the browser's single storage key:
// the whole album serialized as one JSON payload.
type AlbumDocument struct {
	Key       string    `json:"key" gorm:"primaryKey"`
	Payload   string    `json:"payload" gorm:"type:text;not null"`
	UpdatedAt time.Time `json:"updated_at"`
}
