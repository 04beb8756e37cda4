package storage

import (
	"github.com/alex-pricope/hackathon-coordinator/access"
	"gorm.io/datatypes"
	"time"
)

type TeamStatus string

const (
	TeamStatusRegistered      TeamStatus = "REGISTERED"
	TeamStatusProblemSelected TeamStatus = "PROBLEM_SELECTED"
	TeamStatusRound1Submitted TeamStatus = "ROUND1_SUBMITTED"
	TeamStatusRound1Qualified TeamStatus = "ROUND1_QUALIFIED"
	TeamStatusRound2Submitted TeamStatus = "ROUND2_SUBMITTED"
	TeamStatusFinalist        TeamStatus = "FINALIST"
	TeamStatusEliminated      TeamStatus = "ELIMINATED"
)

type SubmissionStatus string

const (
	SubmissionNotSubmitted SubmissionStatus = "NOT_SUBMITTED"
	SubmissionSubmitted    SubmissionStatus = "SUBMITTED"
)

type ParticipantRole string

const (
	ParticipantLeader ParticipantRole = "LEADER"
	ParticipantMember ParticipantRole = "MEMBER"
)

type CheckpointStatus string

const (
	CheckpointPending            CheckpointStatus = "PENDING"
	CheckpointPartiallyCompleted CheckpointStatus = "PARTIALLY_COMPLETED"
	CheckpointCompleted          CheckpointStatus = "COMPLETED"
)

type QueueStatus string

const (
	QueueWaiting   QueueStatus = "WAITING"
	QueueResolved  QueueStatus = "RESOLVED"
	QueueCancelled QueueStatus = "CANCELLED"
)

type EvaluationStatus string

const (
	EvaluationPending   EvaluationStatus = "PENDING"
	EvaluationCompleted EvaluationStatus = "COMPLETED"
)

// Setting keys read before gated writes.
const (
	SettingProblemStatementsLocked = "problem_statements_locked"
	SettingMentorshipLocked        = "mentorship_locked"
	SettingRound1Locked            = "round1_locked"
)

var KnownSettings = []string{SettingProblemStatementsLocked, SettingMentorshipLocked, SettingRound1Locked}

type User struct {
	ID           uint        `gorm:"primaryKey"`
	Username     string      `gorm:"size:100;uniqueIndex;not null"`
	Name         string      `gorm:"size:100"`
	PasswordHash string      `gorm:"size:255;not null"`
	Role         access.Role `gorm:"size:20;not null;index"`
	TeamID       *string     `gorm:"size:32;uniqueIndex"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type Team struct {
	ID                 string            `gorm:"primaryKey;size:32"`
	Name               string            `gorm:"size:100;not null"`
	Status             TeamStatus        `gorm:"size:32;not null;index"`
	SubmissionStatus   SubmissionStatus  `gorm:"size:32;not null"`
	SubmissionURL      string            `gorm:"size:500"`
	ProblemStatementID *uint             `gorm:"index"`
	Round1RoomID       *uint             `gorm:"index"`
	Round2RoomID       *uint             `gorm:"index"`
	Participants       []TeamParticipant `gorm:"foreignKey:TeamID;constraint:OnDelete:CASCADE"`
	Checkpoints        []TeamCheckpoint  `gorm:"foreignKey:TeamID;constraint:OnDelete:CASCADE"`
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

type TeamParticipant struct {
	ID       uint            `gorm:"primaryKey"`
	TeamID   string          `gorm:"size:32;not null;index"`
	Name     string          `gorm:"size:100;not null"`
	Email    string          `gorm:"size:255"`
	Phone    string          `gorm:"size:32"`
	Role     ParticipantRole `gorm:"size:16;not null"`
	Verified bool            `gorm:"not null"`
}

// TeamCheckpoint is keyed by (team, checkpoint number). Data holds one of the
// Checkpoint*Data variants; use DecodeCheckpointData to read it.
type TeamCheckpoint struct {
	TeamID           string           `gorm:"primaryKey;size:32"`
	CheckpointNumber int              `gorm:"primaryKey;autoIncrement:false"`
	Status           CheckpointStatus `gorm:"size:32;not null"`
	Data             datatypes.JSON
	CompletedAt      *time.Time
	UpdatedAt        time.Time
}

type Room struct {
	ID       uint   `gorm:"primaryKey"`
	Name     string `gorm:"size:100;uniqueIndex;not null"`
	Capacity int    `gorm:"not null"`
	Filled   int    `gorm:"not null"`
}

type Mentor struct {
	ID          uint   `gorm:"primaryKey"`
	UserID      uint   `gorm:"uniqueIndex;not null"`
	Name        string `gorm:"size:100;not null"`
	Expertise   string `gorm:"size:255"`
	MeetLink    string `gorm:"size:500"`
	IsAvailable bool   `gorm:"not null"`
}

type MentorshipQueueEntry struct {
	ID           uint        `gorm:"primaryKey"`
	TeamID       string      `gorm:"size:32;not null;index"`
	MentorID     uint        `gorm:"not null;index"`
	Query        string      `gorm:"type:text;not null"`
	Status       QueueStatus `gorm:"size:16;not null;index"`
	Notes        string      `gorm:"type:text"`
	CancelReason string      `gorm:"type:text"`
	CreatedAt    time.Time   `gorm:"index"`
	ClosedAt     *time.Time
}

type Judge struct {
	ID        uint   `gorm:"primaryKey"`
	UserID    uint   `gorm:"uniqueIndex;not null"`
	Name      string `gorm:"size:100;not null"`
	Expertise string `gorm:"size:255"`
}

type Evaluation struct {
	ID        uint             `gorm:"primaryKey"`
	TeamID    string           `gorm:"size:32;not null;uniqueIndex:idx_evaluation_assignment"`
	JudgeID   uint             `gorm:"not null;uniqueIndex:idx_evaluation_assignment"`
	Round     int              `gorm:"not null;uniqueIndex:idx_evaluation_assignment"`
	Status    EvaluationStatus `gorm:"size:16;not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

type TeamScore struct {
	ID           uint    `gorm:"primaryKey"`
	TeamID       string  `gorm:"size:32;not null;uniqueIndex:idx_team_score"`
	JudgeID      uint    `gorm:"not null;uniqueIndex:idx_team_score"`
	Round        int     `gorm:"not null;uniqueIndex:idx_team_score"`
	Innovation   float64 `gorm:"not null"`
	Technical    float64 `gorm:"not null"`
	Presentation float64 `gorm:"not null"`
	Feasibility  float64 `gorm:"not null"`
	Impact       float64 `gorm:"not null"`
	TotalScore   float64 `gorm:"not null"`
	Feedback     string  `gorm:"type:text"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type ProblemStatement struct {
	ID          uint   `gorm:"primaryKey"`
	Title       string `gorm:"size:200;not null"`
	Description string `gorm:"type:text"`
	MaxTeams    int    `gorm:"not null"`
}

type SystemSetting struct {
	Key       string `gorm:"primaryKey;size:64"`
	Value     string `gorm:"size:255;not null"`
	UpdatedAt time.Time
}

// ActivityEntry lives in DynamoDB, not in the relational store.
type ActivityEntry struct {
	PK        string    `dynamodbav:"PK" json:"-"`
	SortKey   string    `dynamodbav:"SK" json:"id"`
	ActorID   uint      `dynamodbav:"ActorID" json:"actorId"`
	Action    string    `dynamodbav:"Action" json:"action"`
	Details   string    `dynamodbav:"Details" json:"details"`
	Timestamp time.Time `dynamodbav:"Timestamp" json:"timestamp"`
}
