package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/litterscan/backend/internal/models"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// GormStore implements Gateway on top of GORM/Postgres.
type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) FindUserByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).Where("username = ?", username).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find user by username: %w", err)
	}
	return &user, nil
}

func (s *GormStore) FindUserByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).
		Preload("Reports", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC")
		}).
		First(&user, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find user by id: %w", err)
	}
	return &user, nil
}

func (s *GormStore) InsertUser(ctx context.Context, user *models.User) error {
	err := s.db.WithContext(ctx).Create(user).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrUsernameTaken
	}
	if err != nil {
		return fmt.Errorf("failed to insert user: %w", err)
	}
	return nil
}

// AppendReport inserts the report as its own row keyed by owner id. Two
// concurrent appends for the same owner both land; the owning user row is
// never read or rewritten here.
func (s *GormStore) AppendReport(ctx context.Context, userID uuid.UUID, report *models.LitterReport) error {
	report.OwnerID = userID
	if err := s.db.WithContext(ctx).Create(report).Error; err != nil {
		return fmt.Errorf("failed to append report: %w", err)
	}
	return nil
}

// PatchReportAnalysis updates exactly one report matched by (owner, id),
// independent of any sibling report. The analysis_model guard makes the
// empty-to-enriched transition one-shot: an already enriched report is
// left untouched.
func (s *GormStore) PatchReportAnalysis(ctx context.Context, userID, reportID uuid.UUID, patch AnalysisPatch) error {
	result := s.db.WithContext(ctx).
		Model(&models.LitterReport{}).
		Where("id = ? AND owner_id = ? AND analysis_model IS NULL", reportID, userID).
		Updates(map[string]interface{}{
			"entries":                     datatypes.NewJSONType(patch.Entries),
			"analysis_counts":             datatypes.NewJSONType(patch.Counts),
			"analysis_total_items":        patch.TotalItems,
			"analysis_notes":              patch.Notes,
			"analysis_processing_time_ms": patch.ProcessingTimeMs,
			"analysis_model":              patch.Model,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to patch report analysis: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrReportNotFound
	}
	return nil
}
