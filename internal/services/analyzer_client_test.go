package services

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const analyzerOKBody = `{
	"analysis": {
		"objects": [
			{"category": "Can", "material": "Aluminium", "brand": "Coca-Cola", "confidence": 0.93},
			{"category": "Bottle", "material": "Glass", "weight_g_estimate": 300.0, "confidence": 0.77},
			{"category": "Vape", "material": "Plastic", "confidence": 0.55}
		],
		"notes": "partially occluded items"
	},
	"processing_time_ms": 812.4,
	"model": "litter-vision-2"
}`

func TestAnalyzerClient_Analyze(t *testing.T) {
	photo := []byte{0xFF, 0xD8, 0xFF, 0xE0}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/v1/analyze", r.URL.Path)

		file, header, err := r.FormFile("file")
		require.NoError(t, err)
		defer file.Close()
		assert.Equal(t, "image.jpg", header.Filename)

		got, err := io.ReadAll(file)
		require.NoError(t, err)
		assert.Equal(t, photo, got)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(analyzerOKBody))
	}))
	defer server.Close()

	client := NewAnalyzerClient(server.URL, 5*time.Second)
	result, err := client.Analyze(context.Background(), photo)
	require.NoError(t, err)

	require.Len(t, result.Entries, 3)

	// Explicit estimate passes through untouched.
	require.NotNil(t, result.Entries[1].WeightGEstimate)
	assert.Equal(t, 300.0, *result.Entries[1].WeightGEstimate)

	// Missing estimates are backfilled from the lookup table; unknown
	// category/material pairs get the default.
	require.NotNil(t, result.Entries[0].WeightGEstimate)
	assert.Equal(t, 14.0, *result.Entries[0].WeightGEstimate)
	require.NotNil(t, result.Entries[2].WeightGEstimate)
	assert.Equal(t, 5.0, *result.Entries[2].WeightGEstimate)

	require.NotNil(t, result.Entries[0].Brand)
	assert.Equal(t, "Coca-Cola", *result.Entries[0].Brand)
	assert.Nil(t, result.Entries[1].Brand)

	// Counts and totals are computed when the analyzer omits them.
	assert.Equal(t, map[string]int{"Can": 1, "Bottle": 1, "Vape": 1}, result.Counts)
	assert.Equal(t, 3, result.TotalItems)

	require.NotNil(t, result.Notes)
	assert.Equal(t, "partially occluded items", *result.Notes)
	assert.Equal(t, 812.4, result.ProcessingTimeMs)
	assert.Equal(t, "litter-vision-2", result.Model)
}

func TestAnalyzerClient_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewAnalyzerClient(server.URL, 5*time.Second)
	_, err := client.Analyze(context.Background(), []byte{1})
	assert.ErrorIs(t, err, ErrAnalyzerBadResponse)
}

func TestAnalyzerClient_MalformedBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("not json at all"))
	}))
	defer server.Close()

	client := NewAnalyzerClient(server.URL, 5*time.Second)
	_, err := client.Analyze(context.Background(), []byte{1})
	assert.ErrorIs(t, err, ErrAnalyzerBadResponse)
}

func TestAnalyzerClient_Unreachable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close() // nothing listens anymore

	client := NewAnalyzerClient(server.URL, time.Second)
	_, err := client.Analyze(context.Background(), []byte{1})
	assert.ErrorIs(t, err, ErrAnalyzerUnreachable)
}
