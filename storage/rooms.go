package storage

import (
	"context"
	"errors"
	"github.com/alex-pricope/hackathon-coordinator/logging"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type RoomStorage interface {
	Get(ctx context.Context, id uint) (*Room, error)
	GetAll(ctx context.Context) ([]*Room, error)
	Create(ctx context.Context, room *Room) error
	AllocateFirstFree(ctx context.Context) (*Room, error)
	Release(ctx context.Context, id uint) error
}

type GormRoomStorage struct {
	DB *gorm.DB
}

func (s *GormRoomStorage) Get(ctx context.Context, id uint) (*Room, error) {
	var room Room
	if err := s.DB.WithContext(ctx).Where("id = ?", id).First(&room).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		logging.Log.Errorf("ROOM: get for ID %d failed: %v", id, err)
		return nil, err
	}
	return &room, nil
}

func (s *GormRoomStorage) GetAll(ctx context.Context) ([]*Room, error) {
	var rooms []*Room
	if err := s.DB.WithContext(ctx).Order("id asc").Find(&rooms).Error; err != nil {
		logging.Log.Errorf("ROOM: list failed: %v", err)
		return nil, err
	}
	return rooms, nil
}

func (s *GormRoomStorage) Create(ctx context.Context, room *Room) error {
	var count int64
	if err := s.DB.WithContext(ctx).Model(&Room{}).Where("name = ?", room.Name).Count(&count).Error; err != nil {
		logging.Log.Errorf("ROOM: existence check for %s failed: %v", room.Name, err)
		return err
	}
	if count > 0 {
		return ErrAlreadyExists
	}
	if err := s.DB.WithContext(ctx).Create(room).Error; err != nil {
		logging.Log.Errorf("ROOM: failed to create room: %v", err)
		return err
	}
	return nil
}

// AllocateFirstFree takes one seat in the lowest-id room that still has capacity.
// Candidates are locked and the increment is guarded by filled < capacity, so a
// concurrent allocation that won the seat makes this one move on to the next room.
// Returns ErrNotFound when every room is full.
func (s *GormRoomStorage) AllocateFirstFree(ctx context.Context) (*Room, error) {
	db := s.DB.WithContext(ctx)
	var candidates []*Room
	err := db.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("filled < capacity").
		Order("id asc").
		Find(&candidates).Error
	if err != nil {
		logging.Log.Errorf("ROOM: failed to load free rooms: %v", err)
		return nil, err
	}

	for _, room := range candidates {
		res := db.Model(&Room{}).
			Where("id = ? AND filled < capacity", room.ID).
			Update("filled", gorm.Expr("filled + 1"))
		if res.Error != nil {
			logging.Log.Errorf("ROOM: failed to take seat in room %d: %v", room.ID, res.Error)
			return nil, res.Error
		}
		if res.RowsAffected == 1 {
			room.Filled++
			return room, nil
		}
	}
	return nil, ErrNotFound
}

// Release frees one seat; filled never drops below zero.
func (s *GormRoomStorage) Release(ctx context.Context, id uint) error {
	res := s.DB.WithContext(ctx).Model(&Room{}).
		Where("id = ? AND filled > 0", id).
		Update("filled", gorm.Expr("filled - 1"))
	if res.Error != nil {
		logging.Log.Errorf("ROOM: failed to release seat in room %d: %v", id, res.Error)
		return res.Error
	}
	if res.RowsAffected == 0 {
		logging.Log.Warnf("ROOM: release on room %d changed nothing", id)
	}
	return nil
}
