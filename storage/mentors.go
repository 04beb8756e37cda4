package storage

import (
	"context"
	"errors"
	"github.com/alex-pricope/hackathon-coordinator/logging"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"time"
)

type MentorStorage interface {
	Get(ctx context.Context, id uint) (*Mentor, error)
	GetByUser(ctx context.Context, userID uint) (*Mentor, error)
	GetAll(ctx context.Context) ([]*Mentor, error)
	Create(ctx context.Context, mentor *Mentor) error
	// Lock reads the mentor row with FOR UPDATE; use it inside a transaction.
	Lock(ctx context.Context, id uint) (*Mentor, error)
	SetAvailable(ctx context.Context, id uint, available bool) error
	SetMeetLink(ctx context.Context, id uint, link string) error
}

type QueueStorage interface {
	Get(ctx context.Context, id uint) (*MentorshipQueueEntry, error)
	Create(ctx context.Context, entry *MentorshipQueueEntry) error
	CountWaiting(ctx context.Context, mentorID uint) (int64, error)
	HasWaiting(ctx context.Context, teamID string, mentorID uint) (bool, error)
	ListWaiting(ctx context.Context, mentorID uint) ([]*MentorshipQueueEntry, error)
	ListByMentor(ctx context.Context, mentorID uint) ([]*MentorshipQueueEntry, error)
	ListByTeam(ctx context.Context, teamID string) ([]*MentorshipQueueEntry, error)
	// Transition moves a WAITING entry to a terminal status. ErrStaleState when the
	// entry is no longer WAITING.
	Transition(ctx context.Context, id uint, to QueueStatus, notes, reason string) error
}

type GormMentorStorage struct {
	DB *gorm.DB
}

func (s *GormMentorStorage) Get(ctx context.Context, id uint) (*Mentor, error) {
	return s.first(s.DB.WithContext(ctx), "id = ?", id)
}

func (s *GormMentorStorage) GetByUser(ctx context.Context, userID uint) (*Mentor, error) {
	return s.first(s.DB.WithContext(ctx), "user_id = ?", userID)
}

func (s *GormMentorStorage) Lock(ctx context.Context, id uint) (*Mentor, error) {
	return s.first(s.DB.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}), "id = ?", id)
}

func (s *GormMentorStorage) GetAll(ctx context.Context) ([]*Mentor, error) {
	var mentors []*Mentor
	if err := s.DB.WithContext(ctx).Order("id asc").Find(&mentors).Error; err != nil {
		logging.Log.Errorf("MENTOR: list failed: %v", err)
		return nil, err
	}
	return mentors, nil
}

func (s *GormMentorStorage) Create(ctx context.Context, mentor *Mentor) error {
	if err := s.DB.WithContext(ctx).Create(mentor).Error; err != nil {
		logging.Log.Errorf("MENTOR: failed to create mentor: %v", err)
		return err
	}
	return nil
}

func (s *GormMentorStorage) SetAvailable(ctx context.Context, id uint, available bool) error {
	return s.update(ctx, id, "is_available", available)
}

func (s *GormMentorStorage) SetMeetLink(ctx context.Context, id uint, link string) error {
	return s.update(ctx, id, "meet_link", link)
}

func (s *GormMentorStorage) update(ctx context.Context, id uint, column string, value interface{}) error {
	res := s.DB.WithContext(ctx).Model(&Mentor{}).Where("id = ?", id).Update(column, value)
	if res.Error != nil {
		logging.Log.Errorf("MENTOR: failed to update %s of %d: %v", column, id, res.Error)
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *GormMentorStorage) first(db *gorm.DB, query string, arg interface{}) (*Mentor, error) {
	var mentor Mentor
	if err := db.Where(query, arg).First(&mentor).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		logging.Log.Errorf("MENTOR: lookup %q failed: %v", query, err)
		return nil, err
	}
	return &mentor, nil
}

type GormQueueStorage struct {
	DB *gorm.DB
}

func (s *GormQueueStorage) Get(ctx context.Context, id uint) (*MentorshipQueueEntry, error) {
	var entry MentorshipQueueEntry
	if err := s.DB.WithContext(ctx).Where("id = ?", id).First(&entry).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		logging.Log.Errorf("QUEUE: get for ID %d failed: %v", id, err)
		return nil, err
	}
	return &entry, nil
}

func (s *GormQueueStorage) Create(ctx context.Context, entry *MentorshipQueueEntry) error {
	if entry.Status == "" {
		entry.Status = QueueWaiting
	}
	if err := s.DB.WithContext(ctx).Create(entry).Error; err != nil {
		logging.Log.Errorf("QUEUE: failed to create entry: %v", err)
		return err
	}
	return nil
}

func (s *GormQueueStorage) CountWaiting(ctx context.Context, mentorID uint) (int64, error) {
	var count int64
	err := s.DB.WithContext(ctx).Model(&MentorshipQueueEntry{}).
		Where("mentor_id = ? AND status = ?", mentorID, QueueWaiting).
		Count(&count).Error
	if err != nil {
		logging.Log.Errorf("QUEUE: count waiting for mentor %d failed: %v", mentorID, err)
	}
	return count, err
}

func (s *GormQueueStorage) HasWaiting(ctx context.Context, teamID string, mentorID uint) (bool, error) {
	var count int64
	err := s.DB.WithContext(ctx).Model(&MentorshipQueueEntry{}).
		Where("team_id = ? AND mentor_id = ? AND status = ?", teamID, mentorID, QueueWaiting).
		Count(&count).Error
	if err != nil {
		logging.Log.Errorf("QUEUE: duplicate check for team %s and mentor %d failed: %v", teamID, mentorID, err)
		return false, err
	}
	return count > 0, nil
}

// ListWaiting returns the mentor's WAITING entries in FIFO order.
func (s *GormQueueStorage) ListWaiting(ctx context.Context, mentorID uint) ([]*MentorshipQueueEntry, error) {
	return s.list(s.DB.WithContext(ctx).
		Where("mentor_id = ? AND status = ?", mentorID, QueueWaiting).
		Order("created_at asc, id asc"))
}

// ListByMentor returns every entry of the mentor, newest first.
func (s *GormQueueStorage) ListByMentor(ctx context.Context, mentorID uint) ([]*MentorshipQueueEntry, error) {
	return s.list(s.DB.WithContext(ctx).
		Where("mentor_id = ?", mentorID).
		Order("created_at desc, id desc"))
}

func (s *GormQueueStorage) ListByTeam(ctx context.Context, teamID string) ([]*MentorshipQueueEntry, error) {
	return s.list(s.DB.WithContext(ctx).
		Where("team_id = ?", teamID).
		Order("created_at desc, id desc"))
}

func (s *GormQueueStorage) Transition(ctx context.Context, id uint, to QueueStatus, notes, reason string) error {
	now := time.Now().UTC()
	res := s.DB.WithContext(ctx).Model(&MentorshipQueueEntry{}).
		Where("id = ? AND status = ?", id, QueueWaiting).
		Updates(map[string]interface{}{
			"status":        to,
			"notes":         notes,
			"cancel_reason": reason,
			"closed_at":     &now,
		})
	if res.Error != nil {
		logging.Log.Errorf("QUEUE: failed to move entry %d to %s: %v", id, to, res.Error)
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrStaleState
	}
	return nil
}

func (s *GormQueueStorage) list(db *gorm.DB) ([]*MentorshipQueueEntry, error) {
	var entries []*MentorshipQueueEntry
	if err := db.Find(&entries).Error; err != nil {
		logging.Log.Errorf("QUEUE: list failed: %v", err)
		return nil, err
	}
	return entries, nil
}
