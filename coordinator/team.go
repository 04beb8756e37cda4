package coordinator

import (
	"context"
	"fmt"
	"github.com/alex-pricope/hackathon-coordinator/access"
	"github.com/alex-pricope/hackathon-coordinator/logging"
	"github.com/alex-pricope/hackathon-coordinator/realtime"
	"github.com/alex-pricope/hackathon-coordinator/storage"
	"net/url"
	"slices"
	"strconv"
	"strings"
)

// TeamCoordinator owns the team-driven steps between registration and judging,
// and the global locks that gate them.
type TeamCoordinator struct {
	store    storage.Store
	settings storage.SettingStorage
	notifier Notifier
	activity *ActivityRecorder
}

func NewTeamCoordinator(store storage.Store, settings storage.SettingStorage, notifier Notifier, activity *ActivityRecorder) *TeamCoordinator {
	if settings == nil {
		settings = store.Settings()
	}
	return &TeamCoordinator{
		store:    store,
		settings: settings,
		notifier: notifierOrNop(notifier),
		activity: activity,
	}
}

// SelectProblemStatement binds the team to a statement while selection is open.
// A statement with MaxTeams > 0 accepts at most that many teams.
func (t *TeamCoordinator) SelectProblemStatement(ctx context.Context, teamID string, statementID uint) (*storage.Team, error) {
	if err := t.checkUnlocked(ctx, storage.SettingProblemStatementsLocked, "problem statement selection"); err != nil {
		return nil, err
	}

	var team *storage.Team
	err := t.store.Transaction(ctx, func(tx storage.Store) error {
		var err error
		team, err = tx.Teams().Get(ctx, teamID)
		if err != nil {
			return lookupError(err, "team", teamID)
		}
		if team.Status != storage.TeamStatusRegistered && team.Status != storage.TeamStatusProblemSelected {
			return fmt.Errorf("%w: team %s can no longer change its problem statement", ErrPreconditionFailed, teamID)
		}
		statement, err := tx.ProblemStatements().Lock(ctx, statementID)
		if err != nil {
			return lookupError(err, "problem statement", statementID)
		}
		if team.ProblemStatementID != nil && *team.ProblemStatementID == statementID {
			return nil
		}
		if statement.MaxTeams > 0 {
			taken, err := tx.Teams().CountByProblemStatement(ctx, statementID)
			if err != nil {
				return err
			}
			if taken >= int64(statement.MaxTeams) {
				return fmt.Errorf("%w: problem statement %q is full", ErrResourceExhausted, statement.Title)
			}
		}
		if err := tx.Teams().SetProblemStatement(ctx, teamID, statementID); err != nil {
			return err
		}
		team.ProblemStatementID = &statementID
		team.Status = storage.TeamStatusProblemSelected
		return nil
	})
	if err != nil {
		logging.Log.Warnf("TEAM: problem selection by team %s rejected: %v", teamID, err)
		return nil, err
	}

	logging.Log.Infof("TEAM: team %s selected problem statement %d", teamID, statementID)
	t.activity.Record(t.teamUserID(ctx, teamID), "team.problem_selected", fmt.Sprintf("team %s: statement %d", teamID, statementID))
	return team, nil
}

// SubmitRound1 records the team's round 1 link. Resubmission replaces the link
// until round 1 is locked.
func (t *TeamCoordinator) SubmitRound1(ctx context.Context, teamID string, link string) (*storage.Team, error) {
	link = strings.TrimSpace(link)
	u, err := url.ParseRequestURI(link)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, validationError("submission must be an http(s) URL")
	}
	if err := t.checkUnlocked(ctx, storage.SettingRound1Locked, "round 1 submission"); err != nil {
		return nil, err
	}

	team, err := t.store.Teams().Get(ctx, teamID)
	if err != nil {
		return nil, lookupError(err, "team", teamID)
	}
	if team.ProblemStatementID == nil {
		return nil, fmt.Errorf("%w: team %s has not selected a problem statement", ErrPreconditionFailed, teamID)
	}
	if team.Status != storage.TeamStatusProblemSelected && team.Status != storage.TeamStatusRound1Submitted {
		return nil, fmt.Errorf("%w: team %s is past round 1", ErrPreconditionFailed, teamID)
	}
	if err := t.store.Teams().SetSubmission(ctx, teamID, link); err != nil {
		return nil, lookupError(err, "team", teamID)
	}
	team.SubmissionURL = link
	team.SubmissionStatus = storage.SubmissionSubmitted
	team.Status = storage.TeamStatusRound1Submitted

	logging.Log.Infof("TEAM: team %s submitted round 1", teamID)
	t.activity.Record(t.teamUserID(ctx, teamID), "team.round1_submitted", "team "+teamID)
	return team, nil
}

// SetSetting flips one of the known global locks.
func (t *TeamCoordinator) SetSetting(ctx context.Context, actor access.Actor, key string, locked bool) (map[string]bool, error) {
	if !slices.Contains(storage.KnownSettings, key) {
		return nil, validationError("unknown setting %q", key)
	}
	if err := t.settings.Set(ctx, key, strconv.FormatBool(locked)); err != nil {
		return nil, err
	}
	settings, err := t.Settings(ctx)
	if err != nil {
		return nil, err
	}

	logging.Log.Infof("ADMIN: setting %s set to %t by user %d", key, locked, actor.UserID)
	t.notifier.BroadcastToAll(realtime.Message{Type: realtime.TypeSettingsUpdated, Data: settings})
	t.activity.Record(actor.UserID, "settings.updated", fmt.Sprintf("%s=%t", key, locked))
	return settings, nil
}

// Settings reports every known lock; a key never written is unlocked.
func (t *TeamCoordinator) Settings(ctx context.Context) (map[string]bool, error) {
	out := make(map[string]bool, len(storage.KnownSettings))
	for _, key := range storage.KnownSettings {
		locked, err := storage.IsLocked(ctx, t.settings, key)
		if err != nil {
			return nil, err
		}
		out[key] = locked
	}
	return out, nil
}

func (t *TeamCoordinator) checkUnlocked(ctx context.Context, key, feature string) error {
	locked, err := storage.IsLocked(ctx, t.settings, key)
	if err != nil {
		return err
	}
	if locked {
		return fmt.Errorf("%w: %s is locked", ErrPreconditionFailed, feature)
	}
	return nil
}

func (t *TeamCoordinator) teamUserID(ctx context.Context, teamID string) uint {
	account, err := t.store.Users().GetByTeam(ctx, teamID)
	if err != nil {
		return 0
	}
	return account.ID
}
