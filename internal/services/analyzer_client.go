package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/litterscan/backend/internal/models"
)

var (
	ErrAnalyzerUnreachable = errors.New("analyzer unreachable")
	ErrAnalyzerBadResponse = errors.New("analyzer returned a bad response")
)

// Average weights in grams, used when the analyzer omits an estimate.
// An empty material matches any material.
var avgWeightG = []struct {
	category string
	material string
	grams    float64
}{
	{"Can", "Aluminium", 14.0},
	{"Bottle", "Plastic", 35.0},
	{"Bottle", "Glass", 240.0},
	{"Cup", "Paper", 9.0},
	{"Snack Wrapper", "", 2.0},
	{"Cigarette Butt", "", 0.2},
	{"Straw", "", 0.5},
	{"Cup Lid", "", 2.5},
	{"Bag", "", 5.0},
}

const defaultWeightG = 5.0

// AnalysisResult is the fully post-processed outcome of one analyzer call.
type AnalysisResult struct {
	Entries          []models.Entry
	Counts           map[string]int
	TotalItems       int
	Notes            *string
	ProcessingTimeMs float64
	Model            string
}

// Analyzer submits image bytes for object detection.
type Analyzer interface {
	Analyze(ctx context.Context, photo []byte) (*AnalysisResult, error)
}

// Analyzer wire format.
type analyzerResponse struct {
	Analysis struct {
		Objects []struct {
			Category        string   `json:"category"`
			Material        string   `json:"material"`
			WeightGEstimate *float64 `json:"weight_g_estimate"`
			Brand           *string  `json:"brand"`
			Confidence      float64  `json:"confidence"`
		} `json:"objects"`
		Counts     map[string]int `json:"counts"`
		TotalItems *int           `json:"total_items"`
		Notes      *string        `json:"notes"`
	} `json:"analysis"`
	ProcessingTimeMs float64 `json:"processing_time_ms"`
	Model            string  `json:"model"`
}

// AnalyzerClient talks to the external image-recognition service.
type AnalyzerClient struct {
	baseURL string
	client  *http.Client
}

func NewAnalyzerClient(baseURL string, timeout time.Duration) *AnalyzerClient {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &AnalyzerClient{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
	}
}

// Analyze posts the photo as a multipart form and decodes the detection
// result. Any transport error maps to ErrAnalyzerUnreachable; a non-2xx
// status or undecodable body maps to ErrAnalyzerBadResponse.
func (a *AnalyzerClient) Analyze(ctx context.Context, photo []byte) (*AnalysisResult, error) {
	started := time.Now()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("file", "image.jpg")
	if err != nil {
		return nil, fmt.Errorf("failed to build multipart form: %w", err)
	}
	if _, err := part.Write(photo); err != nil {
		return nil, fmt.Errorf("failed to write photo to form: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("failed to finalize multipart form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.baseURL+"/v1/analyze", &body)
	if err != nil {
		return nil, fmt.Errorf("failed to build analyzer request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAnalyzerUnreachable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: status %d", ErrAnalyzerBadResponse, resp.StatusCode)
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAnalyzerBadResponse, err)
	}

	var decoded analyzerResponse
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAnalyzerBadResponse, err)
	}

	result := &AnalysisResult{
		Counts:           decoded.Analysis.Counts,
		Notes:            decoded.Analysis.Notes,
		ProcessingTimeMs: decoded.ProcessingTimeMs,
		Model:            decoded.Model,
	}

	for _, obj := range decoded.Analysis.Objects {
		entry := models.Entry{
			Category:        obj.Category,
			Material:        obj.Material,
			WeightGEstimate: obj.WeightGEstimate,
			Brand:           obj.Brand,
			Confidence:      obj.Confidence,
		}
		if entry.WeightGEstimate == nil {
			w := weightEstimate(obj.Category, obj.Material)
			entry.WeightGEstimate = &w
		}
		result.Entries = append(result.Entries, entry)
	}

	if result.Counts == nil {
		result.Counts = make(map[string]int)
		for _, e := range result.Entries {
			result.Counts[e.Category]++
		}
	}
	if decoded.Analysis.TotalItems != nil {
		result.TotalItems = *decoded.Analysis.TotalItems
	} else {
		result.TotalItems = len(result.Entries)
	}
	if result.ProcessingTimeMs == 0 {
		result.ProcessingTimeMs = float64(time.Since(started).Milliseconds())
	}

	return result, nil
}

func weightEstimate(category, material string) float64 {
	for _, row := range avgWeightG {
		if row.category == category && (row.material == "" || row.material == material) {
			return row.grams
		}
	}
	return defaultWeightG
}
