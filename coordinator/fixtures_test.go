package coordinator

import (
	"context"
	"github.com/alex-pricope/hackathon-coordinator/access"
	"github.com/alex-pricope/hackathon-coordinator/realtime"
	"github.com/alex-pricope/hackathon-coordinator/storage"
	"github.com/stretchr/testify/require"
	"sync"
	"testing"
)

type sentMessage struct {
	UserID     uint
	Role       access.Role
	Broadcast  bool
	ExcludedID string
	Message    realtime.Message
}

type recordingNotifier struct {
	mu   sync.Mutex
	sent []sentMessage
}

func (n *recordingNotifier) SendToUser(userID uint, msg realtime.Message) {
	n.add(sentMessage{UserID: userID, Message: msg})
}

func (n *recordingNotifier) SendToRole(role access.Role, msg realtime.Message) {
	n.add(sentMessage{Role: role, Message: msg})
}

func (n *recordingNotifier) BroadcastToAll(msg realtime.Message) {
	n.add(sentMessage{Broadcast: true, Message: msg})
}

func (n *recordingNotifier) BroadcastToOtherAdmins(msg realtime.Message, originatorID string) {
	n.add(sentMessage{Role: access.RoleAdmin, ExcludedID: originatorID, Message: msg})
}

func (n *recordingNotifier) add(m sentMessage) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, m)
}

func (n *recordingNotifier) ofType(typ string) []sentMessage {
	n.mu.Lock()
	defer n.mu.Unlock()
	var out []sentMessage
	for _, m := range n.sent {
		if m.Message.Type == typ {
			out = append(out, m)
		}
	}
	return out
}

type memoryActivityLog struct {
	mu      sync.Mutex
	entries []*storage.ActivityEntry
}

func (l *memoryActivityLog) Record(_ context.Context, entry *storage.ActivityEntry) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, entry)
	return nil
}

func (l *memoryActivityLog) GetRecent(_ context.Context, limit int32) ([]*storage.ActivityEntry, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]*storage.ActivityEntry, 0, len(l.entries))
	for i := len(l.entries) - 1; i >= 0 && int32(len(out)) < limit; i-- {
		out = append(out, l.entries[i])
	}
	return out, nil
}

func (l *memoryActivityLog) DeleteAll(context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = nil
	return nil
}

func (l *memoryActivityLog) actions() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]string, 0, len(l.entries))
	for _, e := range l.entries {
		out = append(out, e.Action)
	}
	return out
}

var adminActor = access.Actor{UserID: 1, Role: access.RoleAdmin}

func seedTeam(t *testing.T, store storage.Store, id, name string) *storage.Team {
	t.Helper()
	team := &storage.Team{ID: id, Name: name}
	require.NoError(t, store.Teams().Create(context.Background(), team))
	return team
}

func seedRoom(t *testing.T, store storage.Store, name string, capacity int) *storage.Room {
	t.Helper()
	room := &storage.Room{Name: name, Capacity: capacity}
	require.NoError(t, store.Rooms().Create(context.Background(), room))
	return room
}

func seedMentor(t *testing.T, store storage.Store, userID uint, name string, available bool) *storage.Mentor {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, store.Users().Create(ctx, &storage.User{
		ID: userID, Username: name, Name: name, PasswordHash: "x", Role: access.RoleMentor,
	}))
	mentor := &storage.Mentor{UserID: userID, Name: name, IsAvailable: available}
	require.NoError(t, store.Mentors().Create(ctx, mentor))
	return mentor
}

func seedJudge(t *testing.T, store storage.Store, userID uint, name string) *storage.Judge {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, store.Users().Create(ctx, &storage.User{
		ID: userID, Username: name, Name: name, PasswordHash: "x", Role: access.RoleJudge,
	}))
	judge := &storage.Judge{UserID: userID, Name: name}
	require.NoError(t, store.Judges().Create(ctx, judge))
	return judge
}

func roster(present ...bool) []ParticipantInput {
	names := []string{"Ada", "Linus", "Grace", "Ken", "Barbara"}
	out := make([]ParticipantInput, 0, len(present))
	for i, p := range present {
		role := storage.ParticipantMember
		if i == 0 {
			role = storage.ParticipantLeader
		}
		out = append(out, ParticipantInput{Name: names[i], Email: names[i] + "@example.com", Role: role, Present: p})
	}
	return out
}
