// Package store is the only component that touches durable state. Every
// write is a targeted, independently atomic statement against the store;
// appending a report and patching its analysis never go through a
// load-mutate-save cycle of the owning user, so concurrent writers cannot
// lose each other's updates.
package store

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/litterscan/backend/internal/models"
)

var (
	ErrUsernameTaken  = errors.New("username already taken")
	ErrUserNotFound   = errors.New("user not found")
	ErrReportNotFound = errors.New("report not found")
)

// AnalysisPatch carries the enrichment fields written to a single report.
type AnalysisPatch struct {
	Entries          []models.Entry
	Counts           map[string]int
	TotalItems       int
	Notes            *string
	ProcessingTimeMs float64
	Model            string
}

// Gateway exposes exactly the persistence operations the services need.
type Gateway interface {
	FindUserByUsername(ctx context.Context, username string) (*models.User, error)
	FindUserByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	InsertUser(ctx context.Context, user *models.User) error
	AppendReport(ctx context.Context, userID uuid.UUID, report *models.LitterReport) error
	PatchReportAnalysis(ctx context.Context, userID, reportID uuid.UUID, patch AnalysisPatch) error
}
