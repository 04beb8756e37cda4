package storage

import (
	"encoding/json"
	"fmt"
	"gorm.io/datatypes"
	"time"
)

// CheckpointData is one of Checkpoint1Data, Checkpoint2Data or Checkpoint3Data.
type CheckpointData interface {
	CheckpointNumber() int
}

type AttendanceRecord struct {
	Name    string          `json:"name"`
	Email   string          `json:"email,omitempty"`
	Role    ParticipantRole `json:"role"`
	Present bool            `json:"present"`
}

type Checkpoint1Data struct {
	WifiOptIn    bool               `json:"wifiOptIn"`
	Attendance   []AttendanceRecord `json:"attendance"`
	PresentCount int                `json:"presentCount"`
	TotalCount   int                `json:"totalCount"`
	Note         string             `json:"note,omitempty"`
}

type Checkpoint2Data struct {
	Username string    `json:"username"`
	Password string    `json:"password"`
	RoomID   uint      `json:"roomId"`
	RoomName string    `json:"roomName"`
	IssuedAt time.Time `json:"issuedAt"`
}

type Checkpoint3Data struct {
	Notes       string    `json:"notes,omitempty"`
	CompletedAt time.Time `json:"completedAt"`
}

func (Checkpoint1Data) CheckpointNumber() int { return 1 }
func (Checkpoint2Data) CheckpointNumber() int { return 2 }
func (Checkpoint3Data) CheckpointNumber() int { return 3 }

func EncodeCheckpointData(d CheckpointData) (datatypes.JSON, error) {
	if d == nil {
		return nil, nil
	}
	b, err := json.Marshal(d)
	if err != nil {
		return nil, fmt.Errorf("encode checkpoint %d data: %w", d.CheckpointNumber(), err)
	}
	return datatypes.JSON(b), nil
}

// DecodeCheckpointData picks the variant by checkpoint number. Empty payloads decode to nil.
func DecodeCheckpointData(number int, raw datatypes.JSON) (CheckpointData, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}
	var (
		d   CheckpointData
		err error
	)
	switch number {
	case 1:
		var v Checkpoint1Data
		err = json.Unmarshal(raw, &v)
		d = v
	case 2:
		var v Checkpoint2Data
		err = json.Unmarshal(raw, &v)
		d = v
	case 3:
		var v Checkpoint3Data
		err = json.Unmarshal(raw, &v)
		d = v
	default:
		return nil, fmt.Errorf("unknown checkpoint number %d", number)
	}
	if err != nil {
		return nil, fmt.Errorf("decode checkpoint %d data: %w", number, err)
	}
	return d, nil
}

// Decoded returns the typed payload of the checkpoint.
func (c *TeamCheckpoint) Decoded() (CheckpointData, error) {
	return DecodeCheckpointData(c.CheckpointNumber, c.Data)
}
