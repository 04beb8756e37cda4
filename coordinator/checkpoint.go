package coordinator

import (
	"context"
	"errors"
	"fmt"
	"github.com/alex-pricope/hackathon-coordinator/access"
	"github.com/alex-pricope/hackathon-coordinator/logging"
	"github.com/alex-pricope/hackathon-coordinator/metrics"
	"github.com/alex-pricope/hackathon-coordinator/realtime"
	"github.com/alex-pricope/hackathon-coordinator/storage"
	"strings"
	"time"
)

const minimumAttendance = 2

type ParticipantInput struct {
	Name    string
	Email   string
	Phone   string
	Role    storage.ParticipantRole
	Present bool
}

type Checkpoint1Result struct {
	Status       storage.CheckpointStatus
	PresentCount int
	TotalCount   int
	Note         string
}

// Checkpoint2Result carries the plaintext password; it is only ever returned here.
type Checkpoint2Result struct {
	Username string
	Password string
	RoomID   uint
	RoomName string
	Reused   bool
}

// CheckpointEvent is what subscribed admins receive. It never carries credentials.
type CheckpointEvent struct {
	Number      int                      `json:"number"`
	Status      storage.CheckpointStatus `json:"status"`
	Note        string                   `json:"note,omitempty"`
	RoomName    string                   `json:"roomName,omitempty"`
	CompletedAt *time.Time               `json:"completedAt,omitempty"`
}

type CheckpointView struct {
	Number      int
	Status      storage.CheckpointStatus
	CompletedAt *time.Time
	Data        storage.CheckpointData
}

type TeamProgress struct {
	Team         *storage.Team
	Participants []*storage.TeamParticipant
	Checkpoints  []CheckpointView
}

type CheckpointCoordinator struct {
	store    storage.Store
	notifier Notifier
	activity *ActivityRecorder
	now      func() time.Time

	// PasswordCost is the bcrypt cost for team accounts; 0 means the bcrypt default.
	PasswordCost int
}

func NewCheckpointCoordinator(store storage.Store, notifier Notifier, activity *ActivityRecorder) *CheckpointCoordinator {
	return &CheckpointCoordinator{
		store:    store,
		notifier: notifierOrNop(notifier),
		activity: activity,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// CompleteCheckpoint1 records attendance. At least two participants must be present;
// anything short of full attendance yields PARTIALLY_COMPLETED. The roster is
// replaced wholesale, so callers send the full list every time.
func (c *CheckpointCoordinator) CompleteCheckpoint1(ctx context.Context, actor access.Actor, teamID string, wifiOptIn bool, participants []ParticipantInput) (*Checkpoint1Result, error) {
	rows, attendance, present, err := validateRoster(participants)
	if err != nil {
		logging.Log.Warnf("CHECKPOINT: rejected checkpoint 1 for team %s: %v", teamID, err)
		return nil, err
	}

	result := &Checkpoint1Result{Status: storage.CheckpointCompleted, PresentCount: present, TotalCount: len(participants)}
	if present < len(participants) {
		result.Status = storage.CheckpointPartiallyCompleted
		result.Note = fmt.Sprintf("%d out of %d participants were present", present, len(participants))
	}
	now := c.now()

	err = c.store.Transaction(ctx, func(tx storage.Store) error {
		if _, err := tx.Teams().Get(ctx, teamID); err != nil {
			return lookupError(err, "team", teamID)
		}
		if _, err := tx.Checkpoints().Get(ctx, teamID, 2); err == nil {
			return fmt.Errorf("%w: team %s already passed checkpoint 2, refresh it first", ErrPreconditionFailed, teamID)
		} else if !errors.Is(err, storage.ErrNotFound) {
			return err
		}
		if err := tx.Participants().ReplaceForTeam(ctx, teamID, rows); err != nil {
			return err
		}
		_, err := tx.Checkpoints().Upsert(ctx, teamID, result.Status, storage.Checkpoint1Data{
			WifiOptIn:    wifiOptIn,
			Attendance:   attendance,
			PresentCount: present,
			TotalCount:   len(participants),
			Note:         result.Note,
		}, &now)
		return err
	})
	if err != nil {
		return nil, err
	}

	logging.Log.Infof("CHECKPOINT: team %s checkpoint 1 %s (%d/%d present)", teamID, result.Status, present, len(participants))
	metrics.RecordCheckpointCompletion("1", string(result.Status))
	c.publish(teamID, CheckpointEvent{Number: 1, Status: result.Status, Note: result.Note, CompletedAt: &now})
	c.activity.Record(actor.UserID, "checkpoint1.completed", fmt.Sprintf("team %s: %s", teamID, result.Status))
	return result, nil
}

func validateRoster(participants []ParticipantInput) ([]storage.TeamParticipant, []storage.AttendanceRecord, int, error) {
	if len(participants) == 0 {
		return nil, nil, 0, validationError("participant list is empty")
	}
	rows := make([]storage.TeamParticipant, 0, len(participants))
	attendance := make([]storage.AttendanceRecord, 0, len(participants))
	present, leaders := 0, 0
	for i, p := range participants {
		name := strings.TrimSpace(p.Name)
		if name == "" {
			return nil, nil, 0, validationError("participant %d has no name", i+1)
		}
		role := p.Role
		switch role {
		case "":
			role = storage.ParticipantMember
		case storage.ParticipantLeader:
			leaders++
		case storage.ParticipantMember:
		default:
			return nil, nil, 0, validationError("participant %s has unknown role %q", name, role)
		}
		if p.Present {
			present++
		}
		rows = append(rows, storage.TeamParticipant{
			Name:     name,
			Email:    strings.TrimSpace(p.Email),
			Phone:    strings.TrimSpace(p.Phone),
			Role:     role,
			Verified: p.Present,
		})
		attendance = append(attendance, storage.AttendanceRecord{Name: name, Email: p.Email, Role: role, Present: p.Present})
	}
	if leaders > 1 {
		return nil, nil, 0, validationError("a team can have at most one leader")
	}
	if present < minimumAttendance {
		return nil, nil, 0, validationError("minimum attendance not met")
	}
	return rows, attendance, present, nil
}

// CompleteCheckpoint2 issues the team login and binds the team to a room.
// Checkpoint 1 must be completed, fully or partially. A second call before any
// refresh hands back the same password and the same room.
func (c *CheckpointCoordinator) CompleteCheckpoint2(ctx context.Context, actor access.Actor, teamID string) (*Checkpoint2Result, error) {
	result := &Checkpoint2Result{Username: teamID}
	now := c.now()

	err := c.store.Transaction(ctx, func(tx storage.Store) error {
		team, err := tx.Teams().Get(ctx, teamID)
		if err != nil {
			return lookupError(err, "team", teamID)
		}

		cp1, err := tx.Checkpoints().Get(ctx, teamID, 1)
		if errors.Is(err, storage.ErrNotFound) || (err == nil && cp1.Status == storage.CheckpointPending) {
			return fmt.Errorf("%w: checkpoint 1 of team %s is not completed", ErrPreconditionFailed, teamID)
		}
		if err != nil {
			return err
		}

		previous, err := storedCheckpoint2(ctx, tx, teamID)
		if err != nil {
			return err
		}

		if err := c.issueCredentials(ctx, tx, team, previous, result); err != nil {
			return err
		}

		room, err := bindRoom(ctx, tx, team)
		if err != nil {
			return err
		}
		result.RoomID, result.RoomName = room.ID, room.Name

		issuedAt := now
		if result.Reused && previous != nil {
			issuedAt = previous.IssuedAt
		}
		_, err = tx.Checkpoints().Upsert(ctx, teamID, storage.CheckpointCompleted, storage.Checkpoint2Data{
			Username: result.Username,
			Password: result.Password,
			RoomID:   room.ID,
			RoomName: room.Name,
			IssuedAt: issuedAt,
		}, &now)
		return err
	})
	if err != nil {
		if errors.Is(err, ErrResourceExhausted) {
			logging.Log.Warnf("CHECKPOINT: no room left for team %s", teamID)
		}
		return nil, err
	}

	logging.Log.Infof("CHECKPOINT: team %s checkpoint 2 completed, room %s", teamID, result.RoomName)
	metrics.RecordCheckpointCompletion("2", string(storage.CheckpointCompleted))
	c.publish(teamID, CheckpointEvent{Number: 2, Status: storage.CheckpointCompleted, RoomName: result.RoomName, CompletedAt: &now})
	c.activity.Record(actor.UserID, "checkpoint2.completed", fmt.Sprintf("team %s: room %s", teamID, result.RoomName))
	return result, nil
}

func storedCheckpoint2(ctx context.Context, tx storage.Store, teamID string) (*storage.Checkpoint2Data, error) {
	cp, err := tx.Checkpoints().Get(ctx, teamID, 2)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	decoded, err := cp.Decoded()
	if err != nil {
		return nil, err
	}
	data, ok := decoded.(storage.Checkpoint2Data)
	if !ok {
		return nil, nil
	}
	return &data, nil
}

// issueCredentials creates the team account, reuses the password already handed
// out at checkpoint 2, or rotates to a fresh one.
func (c *CheckpointCoordinator) issueCredentials(ctx context.Context, tx storage.Store, team *storage.Team, previous *storage.Checkpoint2Data, result *Checkpoint2Result) error {
	account, err := tx.Users().GetByTeam(ctx, team.ID)
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		return err
	}

	if account != nil && previous != nil && previous.Password != "" {
		result.Password = previous.Password
		result.Reused = true
		return nil
	}

	password, err := access.GeneratePassword()
	if err != nil {
		return fmt.Errorf("generate password: %w", err)
	}
	hash, err := access.HashPassword(password, c.PasswordCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	result.Password = password

	if account != nil {
		return tx.Users().UpdatePassword(ctx, account.ID, hash)
	}
	teamID := team.ID
	err = tx.Users().Create(ctx, &storage.User{
		Username:     team.ID,
		Name:         team.Name,
		PasswordHash: hash,
		Role:         access.RoleTeam,
		TeamID:       &teamID,
	})
	if errors.Is(err, storage.ErrAlreadyExists) {
		return fmt.Errorf("%w: username %s is taken by another account", ErrConflict, team.ID)
	}
	return err
}

// bindRoom keeps a room the team already holds; otherwise it takes the first room
// with free capacity.
func bindRoom(ctx context.Context, tx storage.Store, team *storage.Team) (*storage.Room, error) {
	if team.Round1RoomID != nil {
		room, err := tx.Rooms().Get(ctx, *team.Round1RoomID)
		if err == nil {
			return room, nil
		}
		if !errors.Is(err, storage.ErrNotFound) {
			return nil, err
		}
		logging.Log.Warnf("CHECKPOINT: team %s was bound to missing room %d, allocating again", team.ID, *team.Round1RoomID)
	}

	room, err := tx.Rooms().AllocateFirstFree(ctx)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, fmt.Errorf("%w: no room has free capacity", ErrResourceExhausted)
	}
	if err != nil {
		return nil, err
	}
	if err := tx.Teams().SetRound1Room(ctx, team.ID, &room.ID); err != nil {
		return nil, err
	}
	return room, nil
}

func (c *CheckpointCoordinator) CompleteCheckpoint3(ctx context.Context, actor access.Actor, teamID string, notes string) error {
	now := c.now()
	err := c.store.Transaction(ctx, func(tx storage.Store) error {
		if _, err := tx.Teams().Get(ctx, teamID); err != nil {
			return lookupError(err, "team", teamID)
		}
		_, err := tx.Checkpoints().Upsert(ctx, teamID, storage.CheckpointCompleted,
			storage.Checkpoint3Data{Notes: strings.TrimSpace(notes), CompletedAt: now}, &now)
		return err
	})
	if err != nil {
		return err
	}

	logging.Log.Infof("CHECKPOINT: team %s checkpoint 3 completed", teamID)
	metrics.RecordCheckpointCompletion("3", string(storage.CheckpointCompleted))
	c.publish(teamID, CheckpointEvent{Number: 3, Status: storage.CheckpointCompleted, CompletedAt: &now})
	c.activity.Record(actor.UserID, "checkpoint3.completed", "team "+teamID)
	return nil
}

// RefreshToCheckpoint1 rolls the team back to a partially completed checkpoint 1:
// the login account is deleted, the room seat released, checkpoints 2 and 3
// removed. Either every step applies or none does.
func (c *CheckpointCoordinator) RefreshToCheckpoint1(ctx context.Context, actor access.Actor, teamID string) error {
	err := c.store.Transaction(ctx, func(tx storage.Store) error {
		team, err := tx.Teams().Get(ctx, teamID)
		if err != nil {
			return lookupError(err, "team", teamID)
		}
		if err := tx.Users().DeleteByTeam(ctx, teamID); err != nil {
			return err
		}
		if team.Round1RoomID != nil {
			if err := tx.Rooms().Release(ctx, *team.Round1RoomID); err != nil {
				return err
			}
			if err := tx.Teams().SetRound1Room(ctx, teamID, nil); err != nil {
				return err
			}
		}
		if err := tx.Checkpoints().Delete(ctx, teamID, 2, 3); err != nil {
			return err
		}
		err = tx.Checkpoints().SetStatus(ctx, teamID, 1, storage.CheckpointPartiallyCompleted, nil)
		if errors.Is(err, storage.ErrNotFound) {
			return fmt.Errorf("%w: team %s never completed checkpoint 1", ErrPreconditionFailed, teamID)
		}
		return err
	})
	if err != nil {
		return err
	}

	logging.Log.Infof("CHECKPOINT: team %s refreshed to checkpoint 1", teamID)
	c.publish(teamID, CheckpointEvent{Number: 1, Status: storage.CheckpointPartiallyCompleted})
	c.activity.Record(actor.UserID, "checkpoint.refreshed", "team "+teamID)
	return nil
}

func (c *CheckpointCoordinator) TeamProgress(ctx context.Context, teamID string) (*TeamProgress, error) {
	team, err := c.store.Teams().Get(ctx, teamID)
	if err != nil {
		return nil, lookupError(err, "team", teamID)
	}
	participants, err := c.store.Participants().GetByTeam(ctx, teamID)
	if err != nil {
		return nil, err
	}
	checkpoints, err := c.store.Checkpoints().GetByTeam(ctx, teamID)
	if err != nil {
		return nil, err
	}

	progress := &TeamProgress{Team: team, Participants: participants}
	for _, cp := range checkpoints {
		data, err := cp.Decoded()
		if err != nil {
			logging.Log.Errorf("CHECKPOINT: unreadable checkpoint %d of team %s: %v", cp.CheckpointNumber, teamID, err)
			return nil, err
		}
		progress.Checkpoints = append(progress.Checkpoints, CheckpointView{
			Number:      cp.CheckpointNumber,
			Status:      cp.Status,
			CompletedAt: cp.CompletedAt,
			Data:        data,
		})
	}
	return progress, nil
}

func (c *CheckpointCoordinator) publish(teamID string, event CheckpointEvent) {
	c.notifier.BroadcastToOtherAdmins(realtime.Message{
		Type:       realtime.TypeCheckpoint,
		TeamID:     teamID,
		Checkpoint: event,
	}, "")
}
