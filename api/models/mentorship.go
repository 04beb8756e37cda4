package models

import (
	"github.com/alex-pricope/hackathon-coordinator/coordinator"
	"github.com/alex-pricope/hackathon-coordinator/storage"
	"time"
)

type MentorResponse struct {
	ID           uint   `json:"id"`
	Name         string `json:"name"`
	Expertise    string `json:"expertise,omitempty"`
	MeetLink     string `json:"meetLink,omitempty"`
	IsAvailable  bool   `json:"isAvailable"`
	WaitingTeams int    `json:"waitingTeams"`
}

type BookSessionRequest struct {
	MentorID uint   `json:"mentorId"`
	Query    string `json:"query"`
}

type CloseSessionRequest struct {
	Notes  string `json:"notes"`
	Reason string `json:"reason"`
}

type AvailabilityRequest struct {
	Available bool `json:"available"`
}

type MeetLinkRequest struct {
	MeetLink string `json:"meetLink"`
}

type QueueEntryResponse struct {
	ID           uint                `json:"id"`
	TeamID       string              `json:"teamId"`
	TeamName     string              `json:"teamName,omitempty"`
	MentorID     uint                `json:"mentorId"`
	Query        string              `json:"query"`
	Status       storage.QueueStatus `json:"status"`
	Notes        string              `json:"notes,omitempty"`
	CancelReason string              `json:"cancelReason,omitempty"`
	CreatedAt    time.Time           `json:"createdAt"`
	ClosedAt     *time.Time          `json:"closedAt,omitempty"`
}

func TransformMentor(m *storage.Mentor, waiting int) MentorResponse {
	return MentorResponse{
		ID:           m.ID,
		Name:         m.Name,
		Expertise:    m.Expertise,
		MeetLink:     m.MeetLink,
		IsAvailable:  m.IsAvailable,
		WaitingTeams: waiting,
	}
}

func TransformQueueEntry(e *storage.MentorshipQueueEntry, teamName string) QueueEntryResponse {
	return QueueEntryResponse{
		ID:           e.ID,
		TeamID:       e.TeamID,
		TeamName:     teamName,
		MentorID:     e.MentorID,
		Query:        e.Query,
		Status:       e.Status,
		Notes:        e.Notes,
		CancelReason: e.CancelReason,
		CreatedAt:    e.CreatedAt,
		ClosedAt:     e.ClosedAt,
	}
}

func TransformQueue(items []coordinator.QueueItem) []QueueEntryResponse {
	out := make([]QueueEntryResponse, 0, len(items))
	for _, item := range items {
		out = append(out, TransformQueueEntry(item.Entry, item.TeamName))
	}
	return out
}
