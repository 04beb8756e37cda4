package storage

import (
	"context"
	"errors"
	"github.com/alex-pricope/hackathon-coordinator/access"
	"github.com/alex-pricope/hackathon-coordinator/logging"
	"gorm.io/gorm"
)

type UserStorage interface {
	Get(ctx context.Context, id uint) (*User, error)
	GetByUsername(ctx context.Context, username string) (*User, error)
	GetByTeam(ctx context.Context, teamID string) (*User, error)
	GetByRole(ctx context.Context, role access.Role) ([]*User, error)
	Create(ctx context.Context, user *User) error
	UpdatePassword(ctx context.Context, id uint, hash string) error
	DeleteByTeam(ctx context.Context, teamID string) error
}

type GormUserStorage struct {
	DB *gorm.DB
}

func (s *GormUserStorage) Get(ctx context.Context, id uint) (*User, error) {
	return s.first(ctx, "id = ?", id)
}

func (s *GormUserStorage) GetByUsername(ctx context.Context, username string) (*User, error) {
	return s.first(ctx, "username = ?", username)
}

func (s *GormUserStorage) GetByTeam(ctx context.Context, teamID string) (*User, error) {
	return s.first(ctx, "team_id = ?", teamID)
}

func (s *GormUserStorage) GetByRole(ctx context.Context, role access.Role) ([]*User, error) {
	var users []*User
	if err := s.DB.WithContext(ctx).Where("role = ?", role).Order("id asc").Find(&users).Error; err != nil {
		logging.Log.Errorf("USER: list for role %s failed: %v", role, err)
		return nil, err
	}
	return users, nil
}

func (s *GormUserStorage) Create(ctx context.Context, user *User) error {
	var count int64
	if err := s.DB.WithContext(ctx).Model(&User{}).Where("username = ?", user.Username).Count(&count).Error; err != nil {
		logging.Log.Errorf("USER: existence check for %s failed: %v", user.Username, err)
		return err
	}
	if count > 0 {
		logging.Log.Warnf("USER: username %s already taken", user.Username)
		return ErrAlreadyExists
	}
	if err := s.DB.WithContext(ctx).Create(user).Error; err != nil {
		logging.Log.Errorf("USER: failed to create user: %v", err)
		return err
	}
	return nil
}

func (s *GormUserStorage) UpdatePassword(ctx context.Context, id uint, hash string) error {
	res := s.DB.WithContext(ctx).Model(&User{}).Where("id = ?", id).Update("password_hash", hash)
	if res.Error != nil {
		logging.Log.Errorf("USER: failed to update password of %d: %v", id, res.Error)
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *GormUserStorage) DeleteByTeam(ctx context.Context, teamID string) error {
	if err := s.DB.WithContext(ctx).Where("team_id = ?", teamID).Delete(&User{}).Error; err != nil {
		logging.Log.Errorf("USER: failed to delete account of team %s: %v", teamID, err)
		return err
	}
	return nil
}

func (s *GormUserStorage) first(ctx context.Context, query string, arg interface{}) (*User, error) {
	var user User
	if err := s.DB.WithContext(ctx).Where(query, arg).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		logging.Log.Errorf("USER: lookup %q failed: %v", query, err)
		return nil, err
	}
	return &user, nil
}
