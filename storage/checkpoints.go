package storage

import (
	"context"
	"errors"
	"github.com/alex-pricope/hackathon-coordinator/logging"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"time"
)

type CheckpointStorage interface {
	Get(ctx context.Context, teamID string, number int) (*TeamCheckpoint, error)
	GetByTeam(ctx context.Context, teamID string) ([]*TeamCheckpoint, error)
	Upsert(ctx context.Context, teamID string, status CheckpointStatus, data CheckpointData, completedAt *time.Time) (*TeamCheckpoint, error)
	SetStatus(ctx context.Context, teamID string, number int, status CheckpointStatus, completedAt *time.Time) error
	Delete(ctx context.Context, teamID string, numbers ...int) error
}

type GormCheckpointStorage struct {
	DB *gorm.DB
}

func (s *GormCheckpointStorage) Get(ctx context.Context, teamID string, number int) (*TeamCheckpoint, error) {
	var cp TeamCheckpoint
	err := s.DB.WithContext(ctx).
		Where("team_id = ? AND checkpoint_number = ?", teamID, number).
		First(&cp).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		logging.Log.Errorf("CHECKPOINT: get %d for team %s failed: %v", number, teamID, err)
		return nil, err
	}
	return &cp, nil
}

func (s *GormCheckpointStorage) GetByTeam(ctx context.Context, teamID string) ([]*TeamCheckpoint, error) {
	var cps []*TeamCheckpoint
	err := s.DB.WithContext(ctx).
		Where("team_id = ?", teamID).
		Order("checkpoint_number asc").
		Find(&cps).Error
	if err != nil {
		logging.Log.Errorf("CHECKPOINT: list for team %s failed: %v", teamID, err)
		return nil, err
	}
	return cps, nil
}

// Upsert replaces the checkpoint record wholesale; the checkpoint number comes from data.
func (s *GormCheckpointStorage) Upsert(ctx context.Context, teamID string, status CheckpointStatus, data CheckpointData, completedAt *time.Time) (*TeamCheckpoint, error) {
	if data == nil {
		return nil, errors.New("checkpoint data is required")
	}
	number := data.CheckpointNumber()
	raw, err := EncodeCheckpointData(data)
	if err != nil {
		return nil, err
	}
	cp := &TeamCheckpoint{
		TeamID:           teamID,
		CheckpointNumber: number,
		Status:           status,
		Data:             raw,
		CompletedAt:      completedAt,
	}
	err = s.DB.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "team_id"}, {Name: "checkpoint_number"}},
		DoUpdates: clause.AssignmentColumns([]string{"status", "data", "completed_at", "updated_at"}),
	}).Create(cp).Error
	if err != nil {
		logging.Log.Errorf("CHECKPOINT: upsert %d for team %s failed: %v", number, teamID, err)
		return nil, err
	}
	return cp, nil
}

// SetStatus changes status and completion time and keeps the stored payload.
func (s *GormCheckpointStorage) SetStatus(ctx context.Context, teamID string, number int, status CheckpointStatus, completedAt *time.Time) error {
	res := s.DB.WithContext(ctx).Model(&TeamCheckpoint{}).
		Where("team_id = ? AND checkpoint_number = ?", teamID, number).
		Updates(map[string]interface{}{"status": status, "completed_at": completedAt})
	if res.Error != nil {
		logging.Log.Errorf("CHECKPOINT: set status of %d for team %s failed: %v", number, teamID, res.Error)
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *GormCheckpointStorage) Delete(ctx context.Context, teamID string, numbers ...int) error {
	if len(numbers) == 0 {
		return nil
	}
	err := s.DB.WithContext(ctx).
		Where("team_id = ? AND checkpoint_number IN ?", teamID, numbers).
		Delete(&TeamCheckpoint{}).Error
	if err != nil {
		logging.Log.Errorf("CHECKPOINT: delete %v for team %s failed: %v", numbers, teamID, err)
	}
	return err
}
