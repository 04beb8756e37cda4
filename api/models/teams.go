package models

import (
	"github.com/alex-pricope/hackathon-coordinator/coordinator"
	"github.com/alex-pricope/hackathon-coordinator/storage"
	"time"
)

type CreateTeamRequest struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type TeamResponse struct {
	ID                 string                   `json:"id"`
	Name               string                   `json:"name"`
	Status             storage.TeamStatus       `json:"status"`
	SubmissionStatus   storage.SubmissionStatus `json:"submissionStatus"`
	SubmissionURL      string                   `json:"submissionUrl,omitempty"`
	ProblemStatementID *uint                    `json:"problemStatementId,omitempty"`
	Round1RoomID       *uint                    `json:"round1RoomId,omitempty"`
}

type ParticipantRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Role    string `json:"role"`
	Present bool   `json:"present"`
}

type ParticipantResponse struct {
	Name     string                  `json:"name"`
	Email    string                  `json:"email,omitempty"`
	Phone    string                  `json:"phone,omitempty"`
	Role     storage.ParticipantRole `json:"role"`
	Verified bool                    `json:"verified"`
}

type Checkpoint1Request struct {
	WifiOptIn    bool                 `json:"wifiOptIn"`
	Participants []ParticipantRequest `json:"participants"`
}

type Checkpoint1Response struct {
	Status       storage.CheckpointStatus `json:"status"`
	PresentCount int                      `json:"presentCount"`
	TotalCount   int                      `json:"totalCount"`
	Note         string                   `json:"note,omitempty"`
}

// Checkpoint2Response is the only place the team password is ever returned.
type Checkpoint2Response struct {
	Username string `json:"username"`
	Password string `json:"password"`
	RoomID   uint   `json:"roomId"`
	RoomName string `json:"roomName"`
	Reused   bool   `json:"reused"`
}

type Checkpoint3Request struct {
	Notes string `json:"notes"`
}

type CheckpointResponse struct {
	Number      int                      `json:"number"`
	Status      storage.CheckpointStatus `json:"status"`
	CompletedAt *time.Time               `json:"completedAt,omitempty"`
	Data        interface{}              `json:"data,omitempty"`
}

type TeamProgressResponse struct {
	Team         TeamResponse          `json:"team"`
	Participants []ParticipantResponse `json:"participants"`
	Checkpoints  []CheckpointResponse  `json:"checkpoints"`
}

type RoomRequest struct {
	Name     string `json:"name"`
	Capacity int    `json:"capacity"`
}

type ProblemStatementRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	MaxTeams    int    `json:"maxTeams"`
}

type SelectProblemRequest struct {
	ProblemStatementID uint `json:"problemStatementId"`
}

type SubmissionRequest struct {
	URL string `json:"url"`
}

func TransformTeamFromStorage(t *storage.Team) TeamResponse {
	return TeamResponse{
		ID:                 t.ID,
		Name:               t.Name,
		Status:             t.Status,
		SubmissionStatus:   t.SubmissionStatus,
		SubmissionURL:      t.SubmissionURL,
		ProblemStatementID: t.ProblemStatementID,
		Round1RoomID:       t.Round1RoomID,
	}
}

func TransformParticipants(in []ParticipantRequest) []coordinator.ParticipantInput {
	out := make([]coordinator.ParticipantInput, 0, len(in))
	for _, p := range in {
		out = append(out, coordinator.ParticipantInput{
			Name:    p.Name,
			Email:   p.Email,
			Phone:   p.Phone,
			Role:    storage.ParticipantRole(p.Role),
			Present: p.Present,
		})
	}
	return out
}

// TransformProgress drops the checkpoint 2 password; progress views are shared
// with every admin.
func TransformProgress(p *coordinator.TeamProgress) TeamProgressResponse {
	resp := TeamProgressResponse{
		Team:         TransformTeamFromStorage(p.Team),
		Participants: make([]ParticipantResponse, 0, len(p.Participants)),
		Checkpoints:  make([]CheckpointResponse, 0, len(p.Checkpoints)),
	}
	for _, participant := range p.Participants {
		resp.Participants = append(resp.Participants, ParticipantResponse{
			Name:     participant.Name,
			Email:    participant.Email,
			Phone:    participant.Phone,
			Role:     participant.Role,
			Verified: participant.Verified,
		})
	}
	for _, cp := range p.Checkpoints {
		data := interface{}(cp.Data)
		if cp2, ok := cp.Data.(storage.Checkpoint2Data); ok {
			cp2.Password = ""
			data = cp2
		}
		resp.Checkpoints = append(resp.Checkpoints, CheckpointResponse{
			Number:      cp.Number,
			Status:      cp.Status,
			CompletedAt: cp.CompletedAt,
			Data:        data,
		})
	}
	return resp
}
