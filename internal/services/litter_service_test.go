package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/litterscan/backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func twoObjectResult() *AnalysisResult {
	canWeight := 14.0
	bottleWeight := 35.0
	notes := "clear photo"
	return &AnalysisResult{
		Entries: []models.Entry{
			{Category: "Can", Material: "Aluminium", WeightGEstimate: &canWeight, Confidence: 0.94},
			{Category: "Bottle", Material: "Plastic", WeightGEstimate: &bottleWeight, Confidence: 0.81},
		},
		Counts:           map[string]int{"Can": 1, "Bottle": 1},
		TotalItems:       2,
		Notes:            &notes,
		ProcessingTimeMs: 412.5,
		Model:            "litter-vision-2",
	}
}

func seedOwner(t *testing.T, gateway *fakeGateway) uuid.UUID {
	t.Helper()
	owner := &models.User{ID: uuid.New(), Username: "greta", PasswordHash: "irrelevant"}
	require.NoError(t, gateway.InsertUser(context.Background(), owner))
	return owner.ID
}

func TestLitterService_CreateReturnsBeforeEnrichment(t *testing.T) {
	gateway := newFakeGateway()
	ownerID := seedOwner(t, gateway)

	analyzer := &fakeAnalyzer{gate: make(chan struct{}), result: twoObjectResult()}
	pool := NewEnrichmentPool(gateway, analyzer, 2, 8)
	svc := NewLitterService(gateway, pool)
	ctx := context.Background()

	photo := []byte{0xFF, 0xD8, 0xFF} // jpeg magic
	reportID, err := svc.Create(ctx, ownerID, 59.33, 18.07, photo, "jpg")
	require.NoError(t, err)
	require.NotEqual(t, uuid.Nil, reportID)

	// The analyzer has not answered yet: the report is already visible,
	// with empty entries and no summary.
	reports, err := svc.List(ctx, ownerID)
	require.NoError(t, err)
	require.Len(t, reports, 1)
	assert.Equal(t, reportID, reports[0].ID)
	assert.Empty(t, reports[0].Entries.Data())
	assert.Nil(t, reports[0].AnalysisModel)

	close(analyzer.gate)
	require.Eventually(t, func() bool {
		reports, err := svc.List(ctx, ownerID)
		return err == nil && len(reports) == 1 && reports[0].AnalysisModel != nil
	}, 2*time.Second, 10*time.Millisecond)

	reports, err = svc.List(ctx, ownerID)
	require.NoError(t, err)
	got := reports[0]

	entries := got.Entries.Data()
	require.Len(t, entries, 2)
	assert.Equal(t, "Can", entries[0].Category)
	assert.Equal(t, "Bottle", entries[1].Category)

	// Everything set at creation is untouched by the patch.
	assert.Equal(t, reportID, got.ID)
	assert.Equal(t, 59.33, got.Lat)
	assert.Equal(t, 18.07, got.Lng)
	assert.Equal(t, "jpg", got.MediaType)
	assert.False(t, got.CreatedAt.IsZero())

	require.NotNil(t, got.AnalysisTotalItems)
	assert.Equal(t, 2, *got.AnalysisTotalItems)
	assert.Equal(t, map[string]int{"Can": 1, "Bottle": 1}, got.AnalysisCounts.Data())
	assert.Equal(t, "litter-vision-2", *got.AnalysisModel)

	pool.Stop()
	assert.Equal(t, int32(1), analyzer.calls.Load())
}

func TestLitterService_ConcurrentCreatesBothSurvive(t *testing.T) {
	gateway := newFakeGateway()
	gateway.appendDelay = 50 * time.Millisecond // widen the race window
	ownerID := seedOwner(t, gateway)

	analyzer := &fakeAnalyzer{err: errors.New("analyzer down")}
	pool := NewEnrichmentPool(gateway, analyzer, 2, 8)
	defer pool.Stop()
	svc := NewLitterService(gateway, pool)

	var wg sync.WaitGroup
	ids := make([]uuid.UUID, 2)
	errs := make([]error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			ids[i], errs[i] = svc.Create(context.Background(), ownerID, float64(i), float64(i), []byte{1}, "jpg")
		}(i)
	}
	wg.Wait()

	require.NoError(t, errs[0])
	require.NoError(t, errs[1])

	reports, err := svc.List(context.Background(), ownerID)
	require.NoError(t, err)
	require.Len(t, reports, 2, "one concurrent append overwrote the other")

	seen := map[uuid.UUID]bool{}
	for _, r := range reports {
		seen[r.ID] = true
	}
	assert.True(t, seen[ids[0]])
	assert.True(t, seen[ids[1]])
}

func TestLitterService_AnalyzerFailureLeavesReportUnenriched(t *testing.T) {
	gateway := newFakeGateway()
	ownerID := seedOwner(t, gateway)
	ctx := context.Background()

	analyzer := &fakeAnalyzer{err: ErrAnalyzerUnreachable}
	pool := NewEnrichmentPool(gateway, analyzer, 1, 4)
	svc := NewLitterService(gateway, pool)

	// An already enriched sibling must not be disturbed.
	enrichedSvc := NewLitterService(gateway, NewEnrichmentPool(gateway, &fakeAnalyzer{result: twoObjectResult()}, 1, 4))
	siblingID, err := enrichedSvc.Create(ctx, ownerID, 1, 1, []byte{1}, "jpg")
	require.NoError(t, err)
	require.Eventually(t, func() bool {
		reports, err := svc.List(ctx, ownerID)
		return err == nil && len(reports) == 1 && reports[0].AnalysisModel != nil
	}, 2*time.Second, 10*time.Millisecond)

	reportID, err := svc.Create(ctx, ownerID, 2, 2, []byte{2}, "jpg")
	require.NoError(t, err)

	pool.Stop() // waits for the failed enrichment attempt to finish
	assert.Equal(t, int32(1), analyzer.calls.Load())

	reports, err := svc.List(ctx, ownerID)
	require.NoError(t, err)
	require.Len(t, reports, 2)

	byID := map[uuid.UUID]models.LitterReport{}
	for _, r := range reports {
		byID[r.ID] = r
	}

	failed := byID[reportID]
	assert.Empty(t, failed.Entries.Data())
	assert.Nil(t, failed.AnalysisModel)
	assert.Nil(t, failed.AnalysisTotalItems)

	sibling := byID[siblingID]
	require.NotNil(t, sibling.AnalysisModel)
	assert.Len(t, sibling.Entries.Data(), 2)
}

func TestLitterService_UnknownOwner(t *testing.T) {
	gateway := newFakeGateway()
	pool := NewEnrichmentPool(gateway, &fakeAnalyzer{}, 1, 4)
	defer pool.Stop()
	svc := NewLitterService(gateway, pool)

	_, err := svc.Create(context.Background(), uuid.New(), 0, 0, []byte{1}, "jpg")
	assert.ErrorIs(t, err, ErrOwnerNotFound)

	_, err = svc.List(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrOwnerNotFound)
}

func TestLitterService_ListKeepsCreationOrder(t *testing.T) {
	gateway := newFakeGateway()
	ownerID := seedOwner(t, gateway)
	ctx := context.Background()

	pool := NewEnrichmentPool(gateway, &fakeAnalyzer{err: errors.New("down")}, 1, 8)
	defer pool.Stop()
	svc := NewLitterService(gateway, pool)

	var created []uuid.UUID
	for i := 0; i < 3; i++ {
		id, err := svc.Create(ctx, ownerID, float64(i), float64(i), []byte{byte(i)}, "jpg")
		require.NoError(t, err)
		created = append(created, id)
	}

	reports, err := svc.List(ctx, ownerID)
	require.NoError(t, err)
	require.Len(t, reports, 3)
	for i, r := range reports {
		assert.Equal(t, created[i], r.ID)
	}
}
