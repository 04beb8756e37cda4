package storage

import (
	"context"
	"errors"
	"github.com/alex-pricope/hackathon-coordinator/logging"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"strconv"
	"time"
)

type SettingStorage interface {
	// Get returns ErrNotFound when the key was never written.
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	GetAll(ctx context.Context) (map[string]string, error)
}

// IsLocked reads a boolean flag. A missing key is unlocked.
func IsLocked(ctx context.Context, settings SettingStorage, key string) (bool, error) {
	value, err := settings.Get(ctx, key)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	locked, err := strconv.ParseBool(value)
	if err != nil {
		logging.Log.Warnf("SETTINGS: value %q of %s is not a boolean, treating as unlocked", value, key)
		return false, nil
	}
	return locked, nil
}

type GormSettingStorage struct {
	DB *gorm.DB
}

func (s *GormSettingStorage) Get(ctx context.Context, key string) (string, error) {
	var setting SystemSetting
	if err := s.DB.WithContext(ctx).Where(&SystemSetting{Key: key}).First(&setting).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", ErrNotFound
		}
		logging.Log.Errorf("SETTINGS: get %s failed: %v", key, err)
		return "", err
	}
	return setting.Value, nil
}

func (s *GormSettingStorage) Set(ctx context.Context, key, value string) error {
	setting := &SystemSetting{Key: key, Value: value, UpdatedAt: time.Now().UTC()}
	err := s.DB.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(setting).Error
	if err != nil {
		logging.Log.Errorf("SETTINGS: set %s failed: %v", key, err)
		return err
	}
	return nil
}

func (s *GormSettingStorage) GetAll(ctx context.Context) (map[string]string, error) {
	var settings []SystemSetting
	if err := s.DB.WithContext(ctx).Find(&settings).Error; err != nil {
		logging.Log.Errorf("SETTINGS: list failed: %v", err)
		return nil, err
	}
	out := make(map[string]string, len(settings))
	for _, setting := range settings {
		out[setting.Key] = setting.Value
	}
	return out, nil
}
