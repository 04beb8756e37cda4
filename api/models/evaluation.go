package models

import (
	"github.com/alex-pricope/hackathon-coordinator/coordinator"
	"github.com/alex-pricope/hackathon-coordinator/storage"
)

type AssignJudgeRequest struct {
	TeamID  string `json:"teamId"`
	JudgeID uint   `json:"judgeId"`
	Round   int    `json:"round"`
}

type EvaluationResponse struct {
	ID       uint                     `json:"id"`
	TeamID   string                   `json:"teamId"`
	TeamName string                   `json:"teamName,omitempty"`
	JudgeID  uint                     `json:"judgeId"`
	Round    int                      `json:"round"`
	Status   storage.EvaluationStatus `json:"status"`
}

type ScoreRequest struct {
	TeamID       string  `json:"teamId"`
	Innovation   float64 `json:"innovation"`
	Technical    float64 `json:"technical"`
	Presentation float64 `json:"presentation"`
	Feasibility  float64 `json:"feasibility"`
	Impact       float64 `json:"impact"`
	Feedback     string  `json:"feedback"`
}

type ScoreResponse struct {
	TeamID     string  `json:"teamId"`
	JudgeID    uint    `json:"judgeId"`
	Round      int     `json:"round"`
	TotalScore float64 `json:"totalScore"`
	Feedback   string  `json:"feedback,omitempty"`
}

func (r ScoreRequest) Scores() coordinator.Scores {
	return coordinator.Scores{
		Innovation:   r.Innovation,
		Technical:    r.Technical,
		Presentation: r.Presentation,
		Feasibility:  r.Feasibility,
		Impact:       r.Impact,
	}
}

func TransformEvaluation(e *storage.Evaluation, teamName string) EvaluationResponse {
	return EvaluationResponse{
		ID:       e.ID,
		TeamID:   e.TeamID,
		TeamName: teamName,
		JudgeID:  e.JudgeID,
		Round:    e.Round,
		Status:   e.Status,
	}
}

func TransformScore(s *storage.TeamScore) ScoreResponse {
	return ScoreResponse{
		TeamID:     s.TeamID,
		JudgeID:    s.JudgeID,
		Round:      s.Round,
		TotalScore: s.TotalScore,
		Feedback:   s.Feedback,
	}
}
