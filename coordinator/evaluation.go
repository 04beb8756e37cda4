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
	"math"
	"sort"
	"strconv"
	"strings"
)

// scoredRound is the round score submission is bound to.
const scoredRound = 1

type Assignment struct {
	Evaluation *storage.Evaluation
	TeamName   string
}

type LeaderboardEntry struct {
	TeamID       string  `json:"teamId"`
	TeamName     string  `json:"teamName"`
	AverageScore float64 `json:"averageScore"`
	JudgeCount   int     `json:"judgeCount"`
}

type ScoreEvent struct {
	TeamID     string  `json:"teamId"`
	JudgeID    uint    `json:"judgeId"`
	Round      int     `json:"round"`
	TotalScore float64 `json:"totalScore"`
}

type EvaluationCoordinator struct {
	store    storage.Store
	notifier Notifier
	activity *ActivityRecorder
}

func NewEvaluationCoordinator(store storage.Store, notifier Notifier, activity *ActivityRecorder) *EvaluationCoordinator {
	return &EvaluationCoordinator{
		store:    store,
		notifier: notifierOrNop(notifier),
		activity: activity,
	}
}

// AssignJudge creates a PENDING evaluation; one per (team, judge, round).
func (e *EvaluationCoordinator) AssignJudge(ctx context.Context, actor access.Actor, teamID string, judgeID uint, round int) (*storage.Evaluation, error) {
	if round < 1 {
		return nil, validationError("round must be 1 or higher")
	}
	if _, err := e.store.Teams().Get(ctx, teamID); err != nil {
		return nil, lookupError(err, "team", teamID)
	}
	judge, err := e.store.Judges().Get(ctx, judgeID)
	if err != nil {
		return nil, lookupError(err, "judge", judgeID)
	}

	evaluation := &storage.Evaluation{TeamID: teamID, JudgeID: judgeID, Round: round, Status: storage.EvaluationPending}
	if err := e.store.Evaluations().Create(ctx, evaluation); err != nil {
		if errors.Is(err, storage.ErrAlreadyExists) {
			logging.Log.Warnf("EVAL: judge %d already assigned to team %s for round %d", judgeID, teamID, round)
			return nil, fmt.Errorf("%w: judge %d is already assigned to team %s for round %d", ErrConflict, judgeID, teamID, round)
		}
		return nil, err
	}

	logging.Log.Infof("EVAL: judge %d assigned to team %s for round %d", judgeID, teamID, round)
	e.notifier.SendToUser(judge.UserID, realtime.Message{Type: realtime.TypeEvaluationAssigned, TeamID: teamID, Data: evaluation})
	e.activity.Record(actor.UserID, "evaluation.assigned", fmt.Sprintf("judge %d to team %s, round %d", judgeID, teamID, round))
	return evaluation, nil
}

// SubmitScore stores the judge's round 1 score for the team and completes the
// evaluation. Resubmitting overwrites the previous score.
func (e *EvaluationCoordinator) SubmitScore(ctx context.Context, judgeID uint, teamID string, scores Scores, feedback string) (*storage.TeamScore, error) {
	if err := scores.validate(); err != nil {
		return nil, err
	}

	score := &storage.TeamScore{
		TeamID:       teamID,
		JudgeID:      judgeID,
		Round:        scoredRound,
		Innovation:   scores.Innovation,
		Technical:    scores.Technical,
		Presentation: scores.Presentation,
		Feasibility:  scores.Feasibility,
		Impact:       scores.Impact,
		TotalScore:   WeightedTotal(scores),
		Feedback:     strings.TrimSpace(feedback),
	}

	var judgeUserID uint
	err := e.store.Transaction(ctx, func(tx storage.Store) error {
		evaluation, err := tx.Evaluations().Get(ctx, teamID, judgeID, scoredRound)
		if errors.Is(err, storage.ErrNotFound) {
			return fmt.Errorf("%w: judge %d is not assigned to team %s", ErrForbidden, judgeID, teamID)
		}
		if err != nil {
			return err
		}
		if judge, err := tx.Judges().Get(ctx, judgeID); err == nil {
			judgeUserID = judge.UserID
		}
		if err := tx.Scores().Upsert(ctx, score); err != nil {
			return err
		}
		return tx.Evaluations().SetStatus(ctx, evaluation.ID, storage.EvaluationCompleted)
	})
	if err != nil {
		if errors.Is(err, ErrForbidden) {
			logging.Log.Warnf("EVAL: rejected score by judge %d for team %s: %v", judgeID, teamID, err)
		}
		return nil, err
	}

	logging.Log.Infof("EVAL: judge %d scored team %s: %.1f", judgeID, teamID, score.TotalScore)
	metrics.RecordScoreSubmission(strconv.Itoa(scoredRound))
	notifyAdmins(e.notifier, realtime.Message{
		Type:   realtime.TypeScoreSubmitted,
		TeamID: teamID,
		Data:   ScoreEvent{TeamID: teamID, JudgeID: judgeID, Round: scoredRound, TotalScore: score.TotalScore},
	})
	e.activity.Record(judgeUserID, "evaluation.scored", fmt.Sprintf("team %s: %.1f", teamID, score.TotalScore))
	return score, nil
}

func (e *EvaluationCoordinator) JudgeAssignments(ctx context.Context, judgeID uint) ([]Assignment, error) {
	if _, err := e.store.Judges().Get(ctx, judgeID); err != nil {
		return nil, lookupError(err, "judge", judgeID)
	}
	evaluations, err := e.store.Evaluations().ListByJudge(ctx, judgeID)
	if err != nil {
		return nil, err
	}
	teams, err := e.store.Teams().GetAll(ctx)
	if err != nil {
		return nil, err
	}
	names := make(map[string]string, len(teams))
	for _, team := range teams {
		names[team.ID] = team.Name
	}

	assignments := make([]Assignment, 0, len(evaluations))
	for _, evaluation := range evaluations {
		assignments = append(assignments, Assignment{Evaluation: evaluation, TeamName: names[evaluation.TeamID]})
	}
	return assignments, nil
}

// Leaderboard ranks teams by the average total of their judges' scores in the round.
func (e *EvaluationCoordinator) Leaderboard(ctx context.Context, round int) ([]LeaderboardEntry, error) {
	if round < 1 {
		return nil, validationError("round must be 1 or higher")
	}
	scores, err := e.store.Scores().ListByRound(ctx, round)
	if err != nil {
		return nil, err
	}
	teams, err := e.store.Teams().GetAll(ctx)
	if err != nil {
		return nil, err
	}
	names := make(map[string]string, len(teams))
	for _, team := range teams {
		names[team.ID] = team.Name
	}

	sums := make(map[string]float64)
	counts := make(map[string]int)
	for _, score := range scores {
		sums[score.TeamID] += score.TotalScore
		counts[score.TeamID]++
	}

	board := make([]LeaderboardEntry, 0, len(sums))
	for teamID, sum := range sums {
		board = append(board, LeaderboardEntry{
			TeamID:       teamID,
			TeamName:     names[teamID],
			AverageScore: math.Round(sum/float64(counts[teamID])*100) / 100,
			JudgeCount:   counts[teamID],
		})
	}
	sort.Slice(board, func(i, j int) bool {
		if board[i].AverageScore != board[j].AverageScore {
			return board[i].AverageScore > board[j].AverageScore
		}
		return board[i].TeamID < board[j].TeamID
	})
	return board, nil
}

// JudgeForUser resolves the judge profile of a JUDGE account.
func (e *EvaluationCoordinator) JudgeForUser(ctx context.Context, userID uint) (*storage.Judge, error) {
	judge, err := e.store.Judges().GetByUser(ctx, userID)
	if err != nil {
		return nil, lookupError(err, "judge profile of user", userID)
	}
	return judge, nil
}
