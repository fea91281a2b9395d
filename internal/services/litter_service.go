package services

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/litterscan/backend/internal/models"
	"github.com/litterscan/backend/internal/store"
	"gorm.io/datatypes"
)

var ErrOwnerNotFound = errors.New("owner not found")

// LitterService persists reports synchronously and hands each new report
// to the enrichment pool. The creating call never waits on the analyzer.
type LitterService struct {
	gateway  store.Gateway
	enricher *EnrichmentPool
}

func NewLitterService(gateway store.Gateway, enricher *EnrichmentPool) *LitterService {
	return &LitterService{gateway: gateway, enricher: enricher}
}

// Create appends a new report to the owner and returns its id as soon as
// the append is durable. Enrichment is scheduled afterwards and may finish
// long after the response went out.
func (s *LitterService) Create(ctx context.Context, ownerID uuid.UUID, lat, lng float64, photo []byte, mediaType string) (uuid.UUID, error) {
	if _, err := s.gateway.FindUserByID(ctx, ownerID); err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			return uuid.Nil, ErrOwnerNotFound
		}
		slog.Error("owner lookup failed", "error", err, "action", "create_report")
		return uuid.Nil, ErrStorageUnavailable
	}

	report := &models.LitterReport{
		ID:        uuid.New(),
		OwnerID:   ownerID,
		Lat:       lat,
		Lng:       lng,
		Photo:     photo,
		MediaType: mediaType,
		CreatedAt: time.Now().UTC(),
		Entries:   datatypes.NewJSONType([]models.Entry{}),
	}

	if err := s.gateway.AppendReport(ctx, ownerID, report); err != nil {
		slog.Error("report append failed", "error", err, "action", "create_report")
		return uuid.Nil, ErrStorageUnavailable
	}

	s.enricher.Submit(ownerID, report.ID, photo)

	slog.Info("report created", "report_id", report.ID.String(), "user_id", ownerID.String())
	return report.ID, nil
}

// List returns the owner's reports in creation order, each in whatever
// enrichment state it currently has.
func (s *LitterService) List(ctx context.Context, ownerID uuid.UUID) ([]models.LitterReport, error) {
	user, err := s.gateway.FindUserByID(ctx, ownerID)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			return nil, ErrOwnerNotFound
		}
		slog.Error("owner lookup failed", "error", err, "action", "list_reports")
		return nil, ErrStorageUnavailable
	}
	return user.Reports, nil
}
