package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// LitterReport is one geotagged photo report. Entries and the analysis_*
// columns stay empty until the background enrichment for this report
// succeeds; they are written at most once and never regress.
type LitterReport struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	OwnerID   uuid.UUID `gorm:"type:uuid;not null;index" json:"-"`
	Lat       float64   `gorm:"not null" json:"lat"`
	Lng       float64   `gorm:"not null" json:"lng"`
	Photo     []byte    `gorm:"type:bytea" json:"-"`
	MediaType string    `gorm:"size:50;not null" json:"type"`
	CreatedAt time.Time `gorm:"not null" json:"created_at"`

	Entries datatypes.JSONType[[]Entry] `gorm:"type:jsonb" json:"entries"`

	AnalysisCounts           datatypes.JSONType[map[string]int] `gorm:"type:jsonb" json:"analysis_counts,omitempty"`
	AnalysisTotalItems       *int                               `json:"analysis_total_items,omitempty"`
	AnalysisNotes            *string                            `gorm:"type:text" json:"analysis_notes,omitempty"`
	AnalysisProcessingTimeMs *float64                           `json:"analysis_processing_time_ms,omitempty"`
	AnalysisModel            *string                            `gorm:"size:100" json:"analysis_model,omitempty"`
}

// Entry is one detected litter object. It only exists embedded in a report.
type Entry struct {
	Category        string   `json:"category"`
	Material        string   `json:"material"`
	WeightGEstimate *float64 `json:"weight_g_estimate,omitempty"`
	Brand           *string  `json:"brand,omitempty"`
	Confidence      float64  `json:"confidence"`
}
