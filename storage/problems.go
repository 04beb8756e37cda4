package storage

import (
	"context"
	"errors"
	"github.com/alex-pricope/hackathon-coordinator/logging"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ProblemStatementStorage interface {
	Get(ctx context.Context, id uint) (*ProblemStatement, error)
	GetAll(ctx context.Context) ([]*ProblemStatement, error)
	Create(ctx context.Context, statement *ProblemStatement) error
	// Lock reads the statement with FOR UPDATE; use it inside a transaction.
	Lock(ctx context.Context, id uint) (*ProblemStatement, error)
}

type GormProblemStatementStorage struct {
	DB *gorm.DB
}

func (s *GormProblemStatementStorage) Get(ctx context.Context, id uint) (*ProblemStatement, error) {
	return s.first(s.DB.WithContext(ctx), id)
}

func (s *GormProblemStatementStorage) Lock(ctx context.Context, id uint) (*ProblemStatement, error) {
	return s.first(s.DB.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}), id)
}

func (s *GormProblemStatementStorage) first(db *gorm.DB, id uint) (*ProblemStatement, error) {
	var statement ProblemStatement
	if err := db.Where("id = ?", id).First(&statement).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		logging.Log.Errorf("PROBLEM: get for ID %d failed: %v", id, err)
		return nil, err
	}
	return &statement, nil
}

func (s *GormProblemStatementStorage) GetAll(ctx context.Context) ([]*ProblemStatement, error) {
	var statements []*ProblemStatement
	if err := s.DB.WithContext(ctx).Order("id asc").Find(&statements).Error; err != nil {
		logging.Log.Errorf("PROBLEM: list failed: %v", err)
		return nil, err
	}
	return statements, nil
}

func (s *GormProblemStatementStorage) Create(ctx context.Context, statement *ProblemStatement) error {
	if err := s.DB.WithContext(ctx).Create(statement).Error; err != nil {
		logging.Log.Errorf("PROBLEM: failed to create problem statement: %v", err)
		return err
	}
	return nil
}
