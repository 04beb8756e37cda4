package storage

import (
	"context"
	"errors"
	"github.com/alex-pricope/hackathon-coordinator/logging"
	"gorm.io/gorm"
)

type TeamStorage interface {
	Get(ctx context.Context, id string) (*Team, error)
	GetAll(ctx context.Context) ([]*Team, error)
	Create(ctx context.Context, team *Team) error
	UpdateStatus(ctx context.Context, id string, status TeamStatus) error
	SetRound1Room(ctx context.Context, id string, roomID *uint) error
	SetProblemStatement(ctx context.Context, id string, statementID uint) error
	SetSubmission(ctx context.Context, id string, url string) error
	CountByProblemStatement(ctx context.Context, statementID uint) (int64, error)
}

type ParticipantStorage interface {
	GetByTeam(ctx context.Context, teamID string) ([]*TeamParticipant, error)
	ReplaceForTeam(ctx context.Context, teamID string, participants []TeamParticipant) error
}

type GormTeamStorage struct {
	DB *gorm.DB
}

func (s *GormTeamStorage) Get(ctx context.Context, id string) (*Team, error) {
	var team Team
	if err := s.DB.WithContext(ctx).Where("id = ?", id).First(&team).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logging.Log.Warnf("TEAM: no team found with ID %s", id)
			return nil, ErrNotFound
		}
		logging.Log.Errorf("TEAM: get for ID %s failed: %v", id, err)
		return nil, err
	}
	return &team, nil
}

func (s *GormTeamStorage) GetAll(ctx context.Context) ([]*Team, error) {
	var teams []*Team
	if err := s.DB.WithContext(ctx).Order("id asc").Find(&teams).Error; err != nil {
		logging.Log.Errorf("TEAM: list failed: %v", err)
		return nil, err
	}
	return teams, nil
}

func (s *GormTeamStorage) Create(ctx context.Context, team *Team) error {
	var count int64
	if err := s.DB.WithContext(ctx).Model(&Team{}).Where("id = ?", team.ID).Count(&count).Error; err != nil {
		logging.Log.Errorf("TEAM: existence check for ID %s failed: %v", team.ID, err)
		return err
	}
	if count > 0 {
		logging.Log.Warnf("TEAM: item with ID %s already exists", team.ID)
		return ErrAlreadyExists
	}
	if team.Status == "" {
		team.Status = TeamStatusRegistered
	}
	if team.SubmissionStatus == "" {
		team.SubmissionStatus = SubmissionNotSubmitted
	}
	if err := s.DB.WithContext(ctx).Create(team).Error; err != nil {
		logging.Log.Errorf("TEAM: failed to create team: %v", err)
		return err
	}
	return nil
}

func (s *GormTeamStorage) UpdateStatus(ctx context.Context, id string, status TeamStatus) error {
	return s.update(ctx, id, map[string]interface{}{"status": status})
}

func (s *GormTeamStorage) SetRound1Room(ctx context.Context, id string, roomID *uint) error {
	return s.update(ctx, id, map[string]interface{}{"round1_room_id": roomID})
}

func (s *GormTeamStorage) SetProblemStatement(ctx context.Context, id string, statementID uint) error {
	return s.update(ctx, id, map[string]interface{}{
		"problem_statement_id": statementID,
		"status":               TeamStatusProblemSelected,
	})
}

func (s *GormTeamStorage) SetSubmission(ctx context.Context, id string, url string) error {
	return s.update(ctx, id, map[string]interface{}{
		"submission_url":    url,
		"submission_status": SubmissionSubmitted,
		"status":            TeamStatusRound1Submitted,
	})
}

func (s *GormTeamStorage) CountByProblemStatement(ctx context.Context, statementID uint) (int64, error) {
	var count int64
	err := s.DB.WithContext(ctx).Model(&Team{}).Where("problem_statement_id = ?", statementID).Count(&count).Error
	if err != nil {
		logging.Log.Errorf("TEAM: count for problem statement %d failed: %v", statementID, err)
	}
	return count, err
}

func (s *GormTeamStorage) update(ctx context.Context, id string, fields map[string]interface{}) error {
	res := s.DB.WithContext(ctx).Model(&Team{}).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		logging.Log.Errorf("TEAM: failed to update team %s: %v", id, res.Error)
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

type GormParticipantStorage struct {
	DB *gorm.DB
}

func (s *GormParticipantStorage) GetByTeam(ctx context.Context, teamID string) ([]*TeamParticipant, error) {
	var participants []*TeamParticipant
	if err := s.DB.WithContext(ctx).Where("team_id = ?", teamID).Order("id asc").Find(&participants).Error; err != nil {
		logging.Log.Errorf("PARTICIPANT: list for team %s failed: %v", teamID, err)
		return nil, err
	}
	return participants, nil
}

// ReplaceForTeam deletes every participant of the team and inserts the given roster.
func (s *GormParticipantStorage) ReplaceForTeam(ctx context.Context, teamID string, participants []TeamParticipant) error {
	db := s.DB.WithContext(ctx)
	if err := db.Where("team_id = ?", teamID).Delete(&TeamParticipant{}).Error; err != nil {
		logging.Log.Errorf("PARTICIPANT: failed to clear team %s: %v", teamID, err)
		return err
	}
	if len(participants) == 0 {
		return nil
	}
	for i := range participants {
		participants[i].ID = 0
		participants[i].TeamID = teamID
	}
	if err := db.Create(&participants).Error; err != nil {
		logging.Log.Errorf("PARTICIPANT: failed to insert roster for team %s: %v", teamID, err)
		return err
	}
	return nil
}
