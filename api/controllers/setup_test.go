package controllers

import (
	"context"
	"github.com/alex-pricope/hackathon-coordinator/access"
	testutils "github.com/alex-pricope/hackathon-coordinator/api/controllers/testing"
	"github.com/alex-pricope/hackathon-coordinator/api/transport"
	"github.com/alex-pricope/hackathon-coordinator/coordinator"
	"github.com/alex-pricope/hackathon-coordinator/logging"
	"github.com/alex-pricope/hackathon-coordinator/storage"
	"github.com/alex-pricope/hackathon-coordinator/storage/storagetest"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"sync"
	"testing"
	"time"
)

const testPassword = "correct-horse"

type testEnv struct {
	router   *gin.Engine
	store    *storage.GormStore
	issuer   *transport.TokenIssuer
	activity *memoryActivityLog
	recorder *coordinator.ActivityRecorder
}

func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()
	logging.Log = logrus.New()
	gin.SetMode(gin.TestMode)

	store := storagetest.NewTestStore(t)
	issuer := transport.NewTokenIssuer("test-secret", time.Hour)
	// zero rate classes leave the limiter disabled
	guards := transport.Guards{Issuer: issuer, Limiter: transport.NewRateLimiter()}

	activity := &memoryActivityLog{}
	recorder := coordinator.NewActivityRecorder(activity, time.Second)
	checkpoints := coordinator.NewCheckpointCoordinator(store, nil, recorder)
	checkpoints.PasswordCost = bcrypt.MinCost
	mentorship := coordinator.NewMentorshipCoordinator(store, nil, nil, recorder)
	evaluations := coordinator.NewEvaluationCoordinator(store, nil, recorder)
	teams := coordinator.NewTeamCoordinator(store, nil, nil, recorder)

	r := gin.New()
	api := r.Group("/api")
	NewAuthController(store.Users(), issuer).RegisterRoutes(api, guards)
	NewSuperAdminController(store, teams, activity, bcrypt.MinCost).RegisterRoutes(api, guards)
	NewAdminController(store, checkpoints, evaluations).RegisterRoutes(api, guards)
	NewJudgeController(evaluations).RegisterRoutes(api, guards)
	NewMentorController(mentorship).RegisterRoutes(api, guards)
	NewTeamController(store, mentorship, teams).RegisterRoutes(api, guards)

	t.Cleanup(recorder.Wait)
	return &testEnv{router: r, store: store, issuer: issuer, activity: activity, recorder: recorder}
}

func (e *testEnv) headers(t *testing.T, user *storage.User) map[string]string {
	t.Helper()
	token, _, err := e.issuer.Issue(access.Actor{UserID: user.ID, Role: user.Role})
	require.NoError(t, err)
	return testutils.Bearer(token)
}

func (e *testEnv) createUser(t *testing.T, username string, role access.Role, teamID *string) *storage.User {
	t.Helper()
	hash, err := access.HashPassword(testPassword, bcrypt.MinCost)
	require.NoError(t, err)
	user := &storage.User{Username: username, Name: username, PasswordHash: hash, Role: role, TeamID: teamID}
	require.NoError(t, e.store.Users().Create(context.Background(), user))
	return user
}

func (e *testEnv) createTeamAccount(t *testing.T, teamID, name string) *storage.User {
	t.Helper()
	require.NoError(t, e.store.Teams().Create(context.Background(), &storage.Team{ID: teamID, Name: name}))
	return e.createUser(t, teamID, access.RoleTeam, &teamID)
}

func (e *testEnv) createMentor(t *testing.T, username string, available bool) (*storage.User, *storage.Mentor) {
	t.Helper()
	user := e.createUser(t, username, access.RoleMentor, nil)
	mentor := &storage.Mentor{UserID: user.ID, Name: username, IsAvailable: available}
	require.NoError(t, e.store.Mentors().Create(context.Background(), mentor))
	return user, mentor
}

func (e *testEnv) createJudge(t *testing.T, username string) (*storage.User, *storage.Judge) {
	t.Helper()
	user := e.createUser(t, username, access.RoleJudge, nil)
	judge := &storage.Judge{UserID: user.ID, Name: username}
	require.NoError(t, e.store.Judges().Create(context.Background(), judge))
	return user, judge
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
