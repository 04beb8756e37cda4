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
	"net/url"
	"strings"
)

// MaxWaitingPerMentor bounds the WAITING entries a mentor can hold at once.
const MaxWaitingPerMentor = 5

// QueueEvent is pushed to the mentor and the team when an entry changes.
type QueueEvent struct {
	EntryID  uint                `json:"entryId"`
	TeamID   string              `json:"teamId"`
	MentorID uint                `json:"mentorId"`
	Status   storage.QueueStatus `json:"status"`
	Notes    string              `json:"notes,omitempty"`
	Reason   string              `json:"reason,omitempty"`
}

type QueueItem struct {
	Entry    *storage.MentorshipQueueEntry
	TeamName string
}

type MentorSummary struct {
	Mentor       *storage.Mentor
	WaitingTeams int
}

type MentorshipCoordinator struct {
	store    storage.Store
	settings storage.SettingStorage
	notifier Notifier
	activity *ActivityRecorder
}

// NewMentorshipCoordinator reads settings through the given storage so a cached
// implementation can sit in front of the database.
func NewMentorshipCoordinator(store storage.Store, settings storage.SettingStorage, notifier Notifier, activity *ActivityRecorder) *MentorshipCoordinator {
	if settings == nil {
		settings = store.Settings()
	}
	return &MentorshipCoordinator{
		store:    store,
		settings: settings,
		notifier: notifierOrNop(notifier),
		activity: activity,
	}
}

// BookSession puts the team in the mentor's queue. The mentor row stays locked
// from the duplicate check to the insert, so concurrent bookings for one mentor
// cannot push the queue past MaxWaitingPerMentor.
func (m *MentorshipCoordinator) BookSession(ctx context.Context, teamID string, mentorID uint, query string) (*storage.MentorshipQueueEntry, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, validationError("query is required")
	}

	// advisory gate, read outside the transaction
	locked, err := storage.IsLocked(ctx, m.settings, storage.SettingMentorshipLocked)
	if err != nil {
		return nil, err
	}

	var (
		entry  *storage.MentorshipQueueEntry
		mentor *storage.Mentor
	)
	err = m.store.Transaction(ctx, func(tx storage.Store) error {
		if _, err := tx.Teams().Get(ctx, teamID); err != nil {
			return lookupError(err, "team", teamID)
		}
		var err error
		mentor, err = tx.Mentors().Lock(ctx, mentorID)
		if err != nil {
			return lookupError(err, "mentor", mentorID)
		}
		if !mentor.IsAvailable {
			return fmt.Errorf("%w: mentor %s is not available", ErrPreconditionFailed, mentor.Name)
		}
		if locked {
			return fmt.Errorf("%w: mentorship booking is locked", ErrPreconditionFailed)
		}

		waiting, err := tx.Queue().HasWaiting(ctx, teamID, mentorID)
		if err != nil {
			return err
		}
		if waiting {
			return fmt.Errorf("%w: team %s is already waiting for mentor %s", ErrConflict, teamID, mentor.Name)
		}

		count, err := tx.Queue().CountWaiting(ctx, mentorID)
		if err != nil {
			return err
		}
		if count >= MaxWaitingPerMentor {
			return fmt.Errorf("%w: queue of mentor %s is full", ErrResourceExhausted, mentor.Name)
		}

		entry = &storage.MentorshipQueueEntry{TeamID: teamID, MentorID: mentorID, Query: query, Status: storage.QueueWaiting}
		return tx.Queue().Create(ctx, entry)
	})
	metrics.RecordBooking(bookingOutcome(err))
	if err != nil {
		logging.Log.Warnf("QUEUE: booking of mentor %d by team %s rejected: %v", mentorID, teamID, err)
		return nil, err
	}

	logging.Log.Infof("QUEUE: team %s booked mentor %d (entry %d)", teamID, mentorID, entry.ID)
	m.notifier.SendToUser(mentor.UserID, realtime.Message{Type: realtime.TypeQueueUpdated, Data: queueEvent(entry)})
	m.activity.Record(m.teamUserID(ctx, teamID), "mentorship.booked", fmt.Sprintf("team %s booked mentor %d", teamID, mentorID))
	return entry, nil
}

func bookingOutcome(err error) string {
	switch {
	case err == nil:
		return "booked"
	case errors.Is(err, ErrValidation):
		return "invalid"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrPreconditionFailed):
		return "unavailable"
	case errors.Is(err, ErrConflict):
		return "duplicate"
	case errors.Is(err, ErrResourceExhausted):
		return "queue_full"
	default:
		return "error"
	}
}

func (m *MentorshipCoordinator) ResolveSession(ctx context.Context, mentorID, entryID uint, notes string) (*storage.MentorshipQueueEntry, error) {
	return m.closeByMentor(ctx, mentorID, entryID, storage.QueueResolved, strings.TrimSpace(notes), "")
}

func (m *MentorshipCoordinator) CancelSession(ctx context.Context, mentorID, entryID uint, reason string) (*storage.MentorshipQueueEntry, error) {
	return m.closeByMentor(ctx, mentorID, entryID, storage.QueueCancelled, "", strings.TrimSpace(reason))
}

func (m *MentorshipCoordinator) closeByMentor(ctx context.Context, mentorID, entryID uint, to storage.QueueStatus, notes, reason string) (*storage.MentorshipQueueEntry, error) {
	mentor, err := m.store.Mentors().Get(ctx, mentorID)
	if err != nil {
		return nil, lookupError(err, "mentor", mentorID)
	}
	entry, err := m.store.Queue().Get(ctx, entryID)
	if err != nil {
		return nil, lookupError(err, "queue entry", entryID)
	}
	if entry.MentorID != mentorID {
		logging.Log.Warnf("QUEUE: mentor %d tried to close entry %d of mentor %d", mentorID, entryID, entry.MentorID)
		return nil, fmt.Errorf("%w: queue entry %d belongs to another mentor", ErrForbidden, entryID)
	}
	if err := m.transition(ctx, entry, to, notes, reason); err != nil {
		return nil, err
	}

	if userID := m.teamUserID(ctx, entry.TeamID); userID != 0 {
		m.notifier.SendToUser(userID, realtime.Message{Type: realtime.TypeSessionUpdated, Data: queueEvent(entry)})
	}
	m.activity.Record(mentor.UserID, "mentorship."+strings.ToLower(string(to)), fmt.Sprintf("entry %d of team %s", entryID, entry.TeamID))
	return entry, nil
}

// CancelByTeam withdraws a WAITING entry on behalf of the team that owns it.
func (m *MentorshipCoordinator) CancelByTeam(ctx context.Context, teamID string, entryID uint) (*storage.MentorshipQueueEntry, error) {
	entry, err := m.store.Queue().Get(ctx, entryID)
	if err != nil {
		return nil, lookupError(err, "queue entry", entryID)
	}
	if entry.TeamID != teamID {
		logging.Log.Warnf("QUEUE: team %s tried to cancel entry %d of team %s", teamID, entryID, entry.TeamID)
		return nil, fmt.Errorf("%w: queue entry %d belongs to another team", ErrForbidden, entryID)
	}
	if err := m.transition(ctx, entry, storage.QueueCancelled, "", "cancelled by team"); err != nil {
		return nil, err
	}

	if mentor, err := m.store.Mentors().Get(ctx, entry.MentorID); err == nil {
		m.notifier.SendToUser(mentor.UserID, realtime.Message{Type: realtime.TypeQueueUpdated, Data: queueEvent(entry)})
	}
	m.activity.Record(m.teamUserID(ctx, teamID), "mentorship.cancelled_by_team", fmt.Sprintf("entry %d of team %s", entryID, teamID))
	return entry, nil
}

// transition moves the entry out of WAITING and updates it in place. A concurrent
// close that got there first surfaces as ErrConflict.
func (m *MentorshipCoordinator) transition(ctx context.Context, entry *storage.MentorshipQueueEntry, to storage.QueueStatus, notes, reason string) error {
	if entry.Status != storage.QueueWaiting {
		return fmt.Errorf("%w: queue entry %d is already %s", ErrConflict, entry.ID, entry.Status)
	}
	err := m.store.Queue().Transition(ctx, entry.ID, to, notes, reason)
	if errors.Is(err, storage.ErrStaleState) {
		return fmt.Errorf("%w: queue entry %d is no longer waiting", ErrConflict, entry.ID)
	}
	if err != nil {
		return err
	}
	entry.Status, entry.Notes, entry.CancelReason = to, notes, reason
	logging.Log.Infof("QUEUE: entry %d of team %s is now %s", entry.ID, entry.TeamID, to)
	return nil
}

// WaitingQueue lists the mentor's WAITING entries oldest first.
func (m *MentorshipCoordinator) WaitingQueue(ctx context.Context, mentorID uint) ([]QueueItem, error) {
	if _, err := m.store.Mentors().Get(ctx, mentorID); err != nil {
		return nil, lookupError(err, "mentor", mentorID)
	}
	entries, err := m.store.Queue().ListWaiting(ctx, mentorID)
	if err != nil {
		return nil, err
	}
	names, err := m.teamNames(ctx)
	if err != nil {
		return nil, err
	}
	items := make([]QueueItem, 0, len(entries))
	for _, entry := range entries {
		items = append(items, QueueItem{Entry: entry, TeamName: names[entry.TeamID]})
	}
	return items, nil
}

// WaitingTeamsCount counts teams whose most recent entry with the mentor is
// WAITING; older entries of the same team are ignored.
func (m *MentorshipCoordinator) WaitingTeamsCount(ctx context.Context, mentorID uint) (int, error) {
	entries, err := m.store.Queue().ListByMentor(ctx, mentorID)
	if err != nil {
		return 0, err
	}
	return countLatestWaiting(entries), nil
}

// countLatestWaiting expects entries newest first.
func countLatestWaiting(entries []*storage.MentorshipQueueEntry) int {
	seen := make(map[string]bool)
	count := 0
	for _, entry := range entries {
		if seen[entry.TeamID] {
			continue
		}
		seen[entry.TeamID] = true
		if entry.Status == storage.QueueWaiting {
			count++
		}
	}
	return count
}

func (m *MentorshipCoordinator) SetAvailable(ctx context.Context, mentorID uint, available bool) (*storage.Mentor, error) {
	if err := m.store.Mentors().SetAvailable(ctx, mentorID, available); err != nil {
		return nil, lookupError(err, "mentor", mentorID)
	}
	return m.mentorChanged(ctx, mentorID)
}

// UpdateMeetLink sets the mentor's call link; an empty link clears it.
func (m *MentorshipCoordinator) UpdateMeetLink(ctx context.Context, mentorID uint, link string) (*storage.Mentor, error) {
	link = strings.TrimSpace(link)
	if link != "" {
		u, err := url.ParseRequestURI(link)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return nil, validationError("meet link must be an http(s) URL")
		}
	}
	if err := m.store.Mentors().SetMeetLink(ctx, mentorID, link); err != nil {
		return nil, lookupError(err, "mentor", mentorID)
	}
	return m.mentorChanged(ctx, mentorID)
}

func (m *MentorshipCoordinator) mentorChanged(ctx context.Context, mentorID uint) (*storage.Mentor, error) {
	mentor, err := m.store.Mentors().Get(ctx, mentorID)
	if err != nil {
		return nil, lookupError(err, "mentor", mentorID)
	}
	logging.Log.Infof("QUEUE: mentor %d updated, available=%t", mentorID, mentor.IsAvailable)
	m.notifier.SendToRole(access.RoleTeam, realtime.Message{Type: realtime.TypeMentorUpdated, Data: mentor})
	return mentor, nil
}

func (m *MentorshipCoordinator) ListMentors(ctx context.Context) ([]MentorSummary, error) {
	mentors, err := m.store.Mentors().GetAll(ctx)
	if err != nil {
		return nil, err
	}
	summaries := make([]MentorSummary, 0, len(mentors))
	for _, mentor := range mentors {
		count, err := m.WaitingTeamsCount(ctx, mentor.ID)
		if err != nil {
			return nil, err
		}
		summaries = append(summaries, MentorSummary{Mentor: mentor, WaitingTeams: count})
	}
	return summaries, nil
}

// TeamSessions lists the team's entries newest first.
func (m *MentorshipCoordinator) TeamSessions(ctx context.Context, teamID string) ([]*storage.MentorshipQueueEntry, error) {
	if _, err := m.store.Teams().Get(ctx, teamID); err != nil {
		return nil, lookupError(err, "team", teamID)
	}
	return m.store.Queue().ListByTeam(ctx, teamID)
}

// MentorForUser resolves the mentor profile of a MENTOR account.
func (m *MentorshipCoordinator) MentorForUser(ctx context.Context, userID uint) (*storage.Mentor, error) {
	mentor, err := m.store.Mentors().GetByUser(ctx, userID)
	if err != nil {
		return nil, lookupError(err, "mentor profile of user", userID)
	}
	return mentor, nil
}

// teamUserID is the id of the team login account, 0 before checkpoint 2.
func (m *MentorshipCoordinator) teamUserID(ctx context.Context, teamID string) uint {
	account, err := m.store.Users().GetByTeam(ctx, teamID)
	if err != nil {
		return 0
	}
	return account.ID
}

func (m *MentorshipCoordinator) teamNames(ctx context.Context) (map[string]string, error) {
	teams, err := m.store.Teams().GetAll(ctx)
	if err != nil {
		return nil, err
	}
	names := make(map[string]string, len(teams))
	for _, team := range teams {
		names[team.ID] = team.Name
	}
	return names, nil
}

func queueEvent(entry *storage.MentorshipQueueEntry) QueueEvent {
	return QueueEvent{
		EntryID:  entry.ID,
		TeamID:   entry.TeamID,
		MentorID: entry.MentorID,
		Status:   entry.Status,
		Notes:    entry.Notes,
		Reason:   entry.CancelReason,
	}
}
