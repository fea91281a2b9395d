package services

import (
	"context"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"github.com/litterscan/backend/internal/store"
)

type enrichJob struct {
	ownerID  uuid.UUID
	reportID uuid.UUID
	photo    []byte
}

// EnrichmentPool runs report enrichment on a fixed set of workers behind a
// bounded queue, so a burst of report creations cannot launch an unbounded
// number of outstanding analyzer calls. Each job is attempted exactly once:
// a failed analysis is logged and abandoned, never retried.
type EnrichmentPool struct {
	gateway  store.Gateway
	analyzer Analyzer
	jobs     chan enrichJob
	wg       sync.WaitGroup
}

func NewEnrichmentPool(gateway store.Gateway, analyzer Analyzer, workers, queueSize int) *EnrichmentPool {
	if workers <= 0 {
		workers = 4
	}
	if queueSize <= 0 {
		queueSize = 64
	}
	p := &EnrichmentPool{
		gateway:  gateway,
		analyzer: analyzer,
		jobs:     make(chan enrichJob, queueSize),
	}
	for i := 0; i < workers; i++ {
		p.wg.Add(1)
		go p.worker()
	}
	return p
}

// Submit enqueues one enrichment attempt for a freshly created report.
// When the queue is full this blocks the creating request instead of
// dropping the attempt.
func (p *EnrichmentPool) Submit(ownerID, reportID uuid.UUID, photo []byte) {
	p.jobs <- enrichJob{ownerID: ownerID, reportID: reportID, photo: photo}
}

// Stop drains the queue and waits for in-flight jobs to finish.
func (p *EnrichmentPool) Stop() {
	close(p.jobs)
	p.wg.Wait()
}

func (p *EnrichmentPool) worker() {
	defer p.wg.Done()
	for job := range p.jobs {
		p.enrich(job)
	}
}

// enrich runs detached from any request lifetime. Failures stay here: the
// report simply remains unenriched.
func (p *EnrichmentPool) enrich(job enrichJob) {
	ctx := context.Background()

	result, err := p.analyzer.Analyze(ctx, job.photo)
	if err != nil {
		slog.Error("image analysis failed",
			"error", err,
			"action", "enrich",
			"report_id", job.reportID.String())
		return
	}

	patch := store.AnalysisPatch{
		Entries:          result.Entries,
		Counts:           result.Counts,
		TotalItems:       result.TotalItems,
		Notes:            result.Notes,
		ProcessingTimeMs: result.ProcessingTimeMs,
		Model:            result.Model,
	}
	if err := p.gateway.PatchReportAnalysis(ctx, job.ownerID, job.reportID, patch); err != nil {
		slog.Error("failed to persist analysis",
			"error", err,
			"action", "enrich",
			"report_id", job.reportID.String())
		return
	}

	slog.Info("report enriched",
		"report_id", job.reportID.String(),
		"items", result.TotalItems,
		"model", result.Model)
}
