package coordinator

import (
	"context"
	"github.com/alex-pricope/hackathon-coordinator/access"
	"github.com/alex-pricope/hackathon-coordinator/logging"
	"github.com/alex-pricope/hackathon-coordinator/realtime"
	"github.com/alex-pricope/hackathon-coordinator/storage"
	"sync"
	"time"
)

// Notifier pushes change events to live dashboards. *realtime.Hub implements it.
type Notifier interface {
	SendToUser(userID uint, msg realtime.Message)
	SendToRole(role access.Role, msg realtime.Message)
	BroadcastToAll(msg realtime.Message)
	BroadcastToOtherAdmins(msg realtime.Message, originatorID string)
}

type nopNotifier struct{}

func (nopNotifier) SendToUser(uint, realtime.Message)               {}
func (nopNotifier) SendToRole(access.Role, realtime.Message)        {}
func (nopNotifier) BroadcastToAll(realtime.Message)                 {}
func (nopNotifier) BroadcastToOtherAdmins(realtime.Message, string) {}

func notifierOrNop(n Notifier) Notifier {
	if n == nil {
		return nopNotifier{}
	}
	return n
}

func notifyAdmins(n Notifier, msg realtime.Message) {
	n.SendToRole(access.RoleAdmin, msg)
	n.SendToRole(access.RoleSuperAdmin, msg)
}

const defaultActivityTimeout = 3 * time.Second

// ActivityRecorder writes the audit trail in the background. Failures are logged
// and never reach the caller. A nil recorder or nil log drops entries.
type ActivityRecorder struct {
	log     storage.ActivityLogStorage
	timeout time.Duration
	wg      sync.WaitGroup
}

func NewActivityRecorder(log storage.ActivityLogStorage, timeout time.Duration) *ActivityRecorder {
	if timeout <= 0 {
		timeout = defaultActivityTimeout
	}
	return &ActivityRecorder{log: log, timeout: timeout}
}

func (r *ActivityRecorder) Record(actorID uint, action, details string) {
	if r == nil || r.log == nil {
		return
	}
	entry := &storage.ActivityEntry{
		ActorID:   actorID,
		Action:    action,
		Details:   details,
		Timestamp: time.Now().UTC(),
	}
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
		defer cancel()
		if err := r.log.Record(ctx, entry); err != nil {
			logging.Log.Warnf("ACTIVITY: dropped %s by user %d: %v", action, actorID, err)
		}
	}()
}

// Wait blocks until pending entries are written; used on shutdown.
func (r *ActivityRecorder) Wait() {
	if r == nil {
		return
	}
	r.wg.Wait()
}
