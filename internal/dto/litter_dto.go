package dto

import (
	"time"

	"github.com/litterscan/backend/internal/models"
)

type CreateLitterRequest struct {
	Lat  float64 `json:"lat"`
	Lng  float64 `json:"lng"`
	File []byte  `json:"file"`
	Type string  `json:"type"`
}

type CreateLitterResponse struct {
	ID string `json:"id"`
}

type LitterEntryResponse struct {
	Category        string   `json:"category"`
	Material        string   `json:"material"`
	WeightGEstimate *float64 `json:"weight_g_estimate,omitempty"`
	Brand           *string  `json:"brand,omitempty"`
	Confidence      float64  `json:"confidence"`
}

type LitterResponse struct {
	ID      string                `json:"id"`
	Lat     float64               `json:"lat"`
	Lng     float64               `json:"lng"`
	File    []byte                `json:"file"`
	Type    string                `json:"type"`
	Entries []LitterEntryResponse `json:"entries"`
	Date    string                `json:"date"`

	AnalysisCounts           map[string]int `json:"analysis_counts,omitempty"`
	AnalysisTotalItems       *int           `json:"analysis_total_items,omitempty"`
	AnalysisNotes            *string        `json:"analysis_notes,omitempty"`
	AnalysisProcessingTimeMs *float64       `json:"analysis_processing_time_ms,omitempty"`
	AnalysisModel            *string        `json:"analysis_model,omitempty"`
}

// LitterResponseFrom flattens a stored report into its API shape.
func LitterResponseFrom(r models.LitterReport) LitterResponse {
	entries := r.Entries.Data()
	out := LitterResponse{
		ID:      r.ID.String(),
		Lat:     r.Lat,
		Lng:     r.Lng,
		File:    r.Photo,
		Type:    r.MediaType,
		Entries: make([]LitterEntryResponse, 0, len(entries)),
		Date:    r.CreatedAt.UTC().Format(time.RFC3339),

		AnalysisTotalItems:       r.AnalysisTotalItems,
		AnalysisNotes:            r.AnalysisNotes,
		AnalysisProcessingTimeMs: r.AnalysisProcessingTimeMs,
		AnalysisModel:            r.AnalysisModel,
	}
	if counts := r.AnalysisCounts.Data(); len(counts) > 0 {
		out.AnalysisCounts = counts
	}
	for _, e := range entries {
		out.Entries = append(out.Entries, LitterEntryResponse{
			Category:        e.Category,
			Material:        e.Material,
			WeightGEstimate: e.WeightGEstimate,
			Brand:           e.Brand,
			Confidence:      e.Confidence,
		})
	}
	return out
}
