package realtime

import "github.com/alex-pricope/hackathon-coordinator/access"

// Message types exchanged over the websocket.
const (
	TypeAuthenticate         = "authenticate"
	TypeAuthenticated        = "authenticated"
	TypeSubscribeCheckpoints = "subscribe_checkpoints"
	TypeSubscribed           = "subscribed"
	TypeCheckpoint           = "checkpoint"
	TypeError                = "error"
	TypePing                 = "ping"
	TypePong                 = "pong"

	TypeQueueUpdated       = "queue_updated"
	TypeSessionUpdated     = "session_updated"
	TypeMentorUpdated      = "mentor_updated"
	TypeEvaluationAssigned = "evaluation_assigned"
	TypeScoreSubmitted     = "score_submitted"
	TypeSettingsUpdated    = "settings_updated"
)

const ChannelCheckpoints = "checkpoints"

// Message is the single JSON frame shape used in both directions. Fields that do
// not apply to a type are left empty.
type Message struct {
	Type       string      `json:"type"`
	Token      string      `json:"token,omitempty"`
	Channel    string      `json:"channel,omitempty"`
	TeamID     string      `json:"teamId,omitempty"`
	Checkpoint interface{} `json:"checkpoint,omitempty"`
	Data       interface{} `json:"data,omitempty"`
}

type ErrorData struct {
	Message string `json:"message"`
}

type AuthenticatedData struct {
	UserID uint        `json:"userId"`
	Role   access.Role `json:"role"`
}

func errorMessage(text string) Message {
	return Message{Type: TypeError, Data: ErrorData{Message: text}}
}
