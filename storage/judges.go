package storage

import (
	"context"
	"errors"
	"github.com/alex-pricope/hackathon-coordinator/logging"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type JudgeStorage interface {
	Get(ctx context.Context, id uint) (*Judge, error)
	GetByUser(ctx context.Context, userID uint) (*Judge, error)
	GetAll(ctx context.Context) ([]*Judge, error)
	Create(ctx context.Context, judge *Judge) error
}

type EvaluationStorage interface {
	Get(ctx context.Context, teamID string, judgeID uint, round int) (*Evaluation, error)
	Create(ctx context.Context, evaluation *Evaluation) error
	ListByJudge(ctx context.Context, judgeID uint) ([]*Evaluation, error)
	SetStatus(ctx context.Context, id uint, status EvaluationStatus) error
}

type ScoreStorage interface {
	Upsert(ctx context.Context, score *TeamScore) error
	GetByTeam(ctx context.Context, teamID string) ([]*TeamScore, error)
	ListByRound(ctx context.Context, round int) ([]*TeamScore, error)
}

type GormJudgeStorage struct {
	DB *gorm.DB
}

func (s *GormJudgeStorage) Get(ctx context.Context, id uint) (*Judge, error) {
	return s.first(ctx, "id = ?", id)
}

func (s *GormJudgeStorage) GetByUser(ctx context.Context, userID uint) (*Judge, error) {
	return s.first(ctx, "user_id = ?", userID)
}

func (s *GormJudgeStorage) GetAll(ctx context.Context) ([]*Judge, error) {
	var judges []*Judge
	if err := s.DB.WithContext(ctx).Order("id asc").Find(&judges).Error; err != nil {
		logging.Log.Errorf("JUDGE: list failed: %v", err)
		return nil, err
	}
	return judges, nil
}

func (s *GormJudgeStorage) Create(ctx context.Context, judge *Judge) error {
	if err := s.DB.WithContext(ctx).Create(judge).Error; err != nil {
		logging.Log.Errorf("JUDGE: failed to create judge: %v", err)
		return err
	}
	return nil
}

func (s *GormJudgeStorage) first(ctx context.Context, query string, arg interface{}) (*Judge, error) {
	var judge Judge
	if err := s.DB.WithContext(ctx).Where(query, arg).First(&judge).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		logging.Log.Errorf("JUDGE: lookup %q failed: %v", query, err)
		return nil, err
	}
	return &judge, nil
}

type GormEvaluationStorage struct {
	DB *gorm.DB
}

func (s *GormEvaluationStorage) Get(ctx context.Context, teamID string, judgeID uint, round int) (*Evaluation, error) {
	var evaluation Evaluation
	err := s.DB.WithContext(ctx).
		Where("team_id = ? AND judge_id = ? AND round = ?", teamID, judgeID, round).
		First(&evaluation).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		logging.Log.Errorf("EVAL: get for team %s, judge %d, round %d failed: %v", teamID, judgeID, round, err)
		return nil, err
	}
	return &evaluation, nil
}

// Create inserts a PENDING evaluation. The (team, judge, round) unique index turns a
// concurrent duplicate into ErrAlreadyExists.
func (s *GormEvaluationStorage) Create(ctx context.Context, evaluation *Evaluation) error {
	if evaluation.Status == "" {
		evaluation.Status = EvaluationPending
	}
	res := s.DB.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(evaluation)
	if res.Error != nil {
		logging.Log.Errorf("EVAL: failed to create evaluation: %v", res.Error)
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrAlreadyExists
	}
	return nil
}

func (s *GormEvaluationStorage) ListByJudge(ctx context.Context, judgeID uint) ([]*Evaluation, error) {
	var evaluations []*Evaluation
	err := s.DB.WithContext(ctx).
		Where("judge_id = ?", judgeID).
		Order("round asc, team_id asc").
		Find(&evaluations).Error
	if err != nil {
		logging.Log.Errorf("EVAL: list for judge %d failed: %v", judgeID, err)
		return nil, err
	}
	return evaluations, nil
}

func (s *GormEvaluationStorage) SetStatus(ctx context.Context, id uint, status EvaluationStatus) error {
	res := s.DB.WithContext(ctx).Model(&Evaluation{}).Where("id = ?", id).Update("status", status)
	if res.Error != nil {
		logging.Log.Errorf("EVAL: failed to set status of evaluation %d: %v", id, res.Error)
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

type GormScoreStorage struct {
	DB *gorm.DB
}

// Upsert writes the score row for (team, judge, round); a resubmission overwrites it.
func (s *GormScoreStorage) Upsert(ctx context.Context, score *TeamScore) error {
	err := s.DB.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "team_id"}, {Name: "judge_id"}, {Name: "round"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"innovation", "technical", "presentation", "feasibility", "impact",
			"total_score", "feedback", "updated_at",
		}),
	}).Create(score).Error
	if err != nil {
		logging.Log.Errorf("EVAL: score upsert for team %s by judge %d failed: %v", score.TeamID, score.JudgeID, err)
		return err
	}
	return nil
}

func (s *GormScoreStorage) GetByTeam(ctx context.Context, teamID string) ([]*TeamScore, error) {
	var scores []*TeamScore
	if err := s.DB.WithContext(ctx).Where("team_id = ?", teamID).Order("round asc, judge_id asc").Find(&scores).Error; err != nil {
		logging.Log.Errorf("EVAL: scores for team %s failed: %v", teamID, err)
		return nil, err
	}
	return scores, nil
}

func (s *GormScoreStorage) ListByRound(ctx context.Context, round int) ([]*TeamScore, error) {
	var scores []*TeamScore
	if err := s.DB.WithContext(ctx).Where("round = ?", round).Order("team_id asc").Find(&scores).Error; err != nil {
		logging.Log.Errorf("EVAL: scores for round %d failed: %v", round, err)
		return nil, err
	}
	return scores, nil
}
