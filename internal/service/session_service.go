package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/prepdesk/prepdesk-backend/internal/model"
)

// defaultDurationMinutes applies to exam sessions when neither the request
// nor the question set carries a usable duration.
const defaultDurationMinutes = 60

// SessionStore is the persistence contract for test sessions.
type SessionStore interface {
	Create(ctx context.Context, s *model.TestSession) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.TestSession, error)
	ListByUser(ctx context.Context, userID int) ([]model.SessionSummary, error)
	UpdateResponse(ctx context.Context, sessionID, questionID uuid.UUID, patch model.ResponsePatch) (bool, error)
	FinalizeSubmission(ctx context.Context, sessionID uuid.UUID, res *model.TestResult) (bool, error)
	ListExpired(ctx context.Context, now time.Time, limit int) ([]uuid.UUID, error)
}

// ResultStore is the read contract for finalized results.
type ResultStore interface {
	GetBySessionID(ctx context.Context, sessionID uuid.UUID) (*model.TestResult, error)
	ListByUser(ctx context.Context, userID int) ([]model.TestResult, error)
}

// QuestionSource supplies question detail and answer keys for scoring.
type QuestionSource interface {
	Questions(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]model.Question, error)
	AnswerKey(ctx context.Context, questionSetID uuid.UUID, ids []uuid.UUID) (map[uuid.UUID]int, error)
}

// SetResolver resolves a question set with its ordered question ids.
type SetResolver interface {
	Resolve(ctx context.Context, id uuid.UUID) (*model.QuestionSet, error)
}

// EnrollmentAuthority answers whether a user may attempt a course's sets.
type EnrollmentAuthority interface {
	IsEnrolled(ctx context.Context, userID int, courseID uuid.UUID) (bool, error)
}

// DeadlineScheduler registers exam deadlines for the expiry worker. A
// scheduling failure is non-fatal since the worker's DB sweep catches
// anything the queue misses.
type DeadlineScheduler interface {
	Schedule(ctx context.Context, sessionID uuid.UUID, at time.Time) error
	Cancel(ctx context.Context, sessionID uuid.UUID) error
}

// SessionService drives the test session lifecycle: creation, response
// patching, submission with scoring, and review.
type SessionService struct {
	sessions    SessionStore
	results     ResultStore
	bank        QuestionSource
	sets        SetResolver
	enrollments EnrollmentAuthority
	deadlines   DeadlineScheduler

	now func() time.Time
}

// NewSessionService creates a new SessionService.
func NewSessionService(
	sessions SessionStore,
	results ResultStore,
	bank QuestionSource,
	sets SetResolver,
	enrollments EnrollmentAuthority,
	deadlines DeadlineScheduler,
) *SessionService {
	return &SessionService{
		sessions:    sessions,
		results:     results,
		bank:        bank,
		sets:        sets,
		enrollments: enrollments,
		deadlines:   deadlines,
		now:         time.Now,
	}
}

// Create starts a new attempt at a question set. The session snapshots the
// set's current question list, one response per question in set order, all
// unanswered. Exam sessions get a fixed [start, start+duration] window.
func (s *SessionService) Create(ctx context.Context, userID int, req model.CreateSessionRequest) (*model.SessionCreated, error) {
	setID, err := uuid.Parse(req.QuestionSetID)
	if err != nil {
		return nil, fmt.Errorf("parse question set id: %w", err)
	}

	set, err := s.sets.Resolve(ctx, setID)
	if err != nil {
		return nil, mapNoRows(err)
	}

	enrolled, err := s.enrollments.IsEnrolled(ctx, userID, set.CourseID)
	if err != nil {
		return nil, fmt.Errorf("check enrollment: %w", err)
	}
	if !enrolled {
		return nil, ErrNotEnrolled
	}

	if len(set.QuestionIDs) == 0 {
		return nil, ErrEmptyQuestionSet
	}

	duration, err := resolveDuration(*req.IsExam, req.DurationMinutes, set.DurationMinutes)
	if err != nil {
		return nil, err
	}

	session := &model.TestSession{
		UserID:          userID,
		QuestionSetID:   set.ID,
		IsExam:          *req.IsExam,
		DurationMinutes: duration,
		Responses:       make([]model.Response, 0, len(set.QuestionIDs)),
	}
	for _, qid := range set.QuestionIDs {
		session.Responses = append(session.Responses, model.Response{
			QuestionID:     qid,
			SelectedAnswer: model.NoAnswer,
		})
	}

	if session.IsExam {
		start := s.now()
		ends := start.Add(time.Duration(duration) * time.Minute)
		session.StartedAt = &start
		session.EndsAt = &ends
	}

	if err := s.sessions.Create(ctx, session); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}

	if session.IsExam {
		// Best effort. The worker's periodic sweep finds sessions the
		// queue never learned about.
		_ = s.deadlines.Schedule(ctx, session.ID, *session.EndsAt)
	}

	return &model.SessionCreated{
		ID:              session.ID,
		IsExam:          session.IsExam,
		DurationMinutes: session.DurationMinutes,
		StartedAt:       session.StartedAt,
		EndsAt:          session.EndsAt,
	}, nil
}

// ListMine returns the user's session history, newest first.
func (s *SessionService) ListMine(ctx context.Context, userID int) ([]model.SessionSummary, error) {
	return s.sessions.ListByUser(ctx, userID)
}

// PatchResponse applies a partial update to one response of an open session.
// Supplying a selection, or marking for later, permanently flags the
// response as attempted; clearing the mark alone does not.
func (s *SessionService) PatchResponse(ctx context.Context, userID int, sessionID uuid.UUID, req model.PatchResponseRequest) error {
	session, err := s.getOwned(ctx, sessionID, userID)
	if err != nil {
		return err
	}
	if session.IsSubmitted {
		return ErrSessionSubmitted
	}
	if session.Expired(s.now()) {
		return ErrSessionExpired
	}

	questionID, err := uuid.Parse(req.QuestionID)
	if err != nil {
		return fmt.Errorf("parse question id: %w", err)
	}

	patch := model.ResponsePatch{
		SelectedAnswer: req.SelectedAnswer,
		MarkedForLater: req.MarkedForLater,
	}
	found, err := s.sessions.UpdateResponse(ctx, sessionID, questionID, patch)
	if err != nil {
		return fmt.Errorf("update response: %w", err)
	}
	if !found {
		return ErrResponseNotFound
	}
	return nil
}

// Submit finalizes the session exactly once: scores the current response
// snapshot and persists the result atomically with the submitted flip. A
// second submit, user or worker, gets ErrSessionSubmitted.
func (s *SessionService) Submit(ctx context.Context, userID int, sessionID uuid.UUID) (*model.TestResult, error) {
	session, err := s.getOwned(ctx, sessionID, userID)
	if err != nil {
		return nil, err
	}
	return s.finalize(ctx, session)
}

// AutoSubmit is the worker-side finalization for exam sessions whose
// deadline passed. Returns false when the session was already submitted.
func (s *SessionService) AutoSubmit(ctx context.Context, sessionID uuid.UUID) (bool, error) {
	session, err := s.sessions.GetByID(ctx, sessionID)
	if err != nil {
		return false, mapNoRows(err)
	}
	if session.IsSubmitted {
		return false, nil
	}
	if _, err := s.finalize(ctx, session); err != nil {
		if errors.Is(err, ErrSessionSubmitted) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (s *SessionService) finalize(ctx context.Context, session *model.TestSession) (*model.TestResult, error) {
	if session.IsSubmitted {
		return nil, ErrSessionSubmitted
	}

	result, err := s.score(ctx, session)
	if err != nil {
		return nil, err
	}

	flipped, err := s.sessions.FinalizeSubmission(ctx, session.ID, result)
	if err != nil {
		return nil, fmt.Errorf("finalize submission: %w", err)
	}
	if !flipped {
		return nil, ErrSessionSubmitted
	}

	if session.IsExam {
		_ = s.deadlines.Cancel(ctx, session.ID)
	}
	return result, nil
}

// score computes the result counts over the session's response snapshot.
// Responses whose question no longer exists in the bank are skipped
// entirely; TotalQuestions still reflects the snapshot size.
func (s *SessionService) score(ctx context.Context, session *model.TestSession) (*model.TestResult, error) {
	ids := make([]uuid.UUID, 0, len(session.Responses))
	for _, resp := range session.Responses {
		ids = append(ids, resp.QuestionID)
	}

	key, err := s.bank.AnswerKey(ctx, session.QuestionSetID, ids)
	if err != nil {
		return nil, err
	}

	var attempted, correct int
	for _, resp := range session.Responses {
		correctAnswer, ok := key[resp.QuestionID]
		if !ok {
			continue
		}
		if !resp.IsAttempted {
			continue
		}
		attempted++
		if resp.SelectedAnswer == correctAnswer {
			correct++
		}
	}

	total := len(session.Responses)
	result := &model.TestResult{
		TestSessionID:  session.ID,
		UserID:         session.UserID,
		QuestionSetID:  session.QuestionSetID,
		TotalQuestions: total,
		Attempted:      attempted,
		Correct:        correct,
		Incorrect:      attempted - correct,
		SubmittedAt:    s.now(),
	}
	if total > 0 {
		result.Percentage = round2(float64(correct) / float64(total) * 100)
	}
	if attempted > 0 {
		result.Accuracy = round2(float64(correct) / float64(attempted) * 100)
	}
	return result, nil
}

// Result returns the finalized result of the user's submitted session.
func (s *SessionService) Result(ctx context.Context, userID int, sessionID uuid.UUID) (*model.TestResult, error) {
	session, err := s.getOwned(ctx, sessionID, userID)
	if err != nil {
		return nil, err
	}
	if !session.IsSubmitted {
		return nil, ErrResultNotReady
	}

	result, err := s.results.GetBySessionID(ctx, sessionID)
	if err != nil {
		return nil, mapNoRows(err)
	}
	return result, nil
}

// ListResults returns the user's finalized results, newest first.
func (s *SessionService) ListResults(ctx context.Context, userID int) ([]model.TestResult, error) {
	return s.results.ListByUser(ctx, userID)
}

// Review returns the session's responses joined with question detail, in
// snapshot order. With withSolutions the correct answers are included, which
// requires the session to be submitted.
func (s *SessionService) Review(ctx context.Context, userID int, sessionID uuid.UUID, withSolutions bool) (*model.SessionReview, error) {
	session, err := s.getOwned(ctx, sessionID, userID)
	if err != nil {
		return nil, err
	}
	if withSolutions && !session.IsSubmitted {
		return nil, ErrSolutionsLocked
	}

	ids := make([]uuid.UUID, 0, len(session.Responses))
	for _, resp := range session.Responses {
		ids = append(ids, resp.QuestionID)
	}
	questions, err := s.bank.Questions(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("load questions: %w", err)
	}

	review := &model.SessionReview{
		ID:              session.ID,
		QuestionSetID:   session.QuestionSetID,
		IsExam:          session.IsExam,
		IsSubmitted:     session.IsSubmitted,
		DurationMinutes: session.DurationMinutes,
		StartedAt:       session.StartedAt,
		EndsAt:          session.EndsAt,
		Responses:       make([]model.ReviewResponse, 0, len(session.Responses)),
	}
	for _, resp := range session.Responses {
		entry := model.ReviewResponse{
			QuestionID:     resp.QuestionID,
			SelectedAnswer: resp.SelectedAnswer,
			MarkedForLater: resp.MarkedForLater,
			IsAttempted:    resp.IsAttempted,
		}
		if q, ok := questions[resp.QuestionID]; ok {
			entry.Body = q.Body
			entry.Answers = q.Answers
			if withSolutions {
				correct := q.CorrectAnswer
				entry.CorrectAnswer = &correct
			}
		}
		review.Responses = append(review.Responses, entry)
	}
	return review, nil
}

// State returns the live view used by the clock stream.
func (s *SessionService) State(ctx context.Context, userID int, sessionID uuid.UUID) (*model.SessionState, error) {
	session, err := s.getOwned(ctx, sessionID, userID)
	if err != nil {
		return nil, err
	}

	state := &model.SessionState{
		IsExam:      session.IsExam,
		IsSubmitted: session.IsSubmitted,
	}
	if session.IsExam && session.EndsAt != nil && !session.IsSubmitted {
		if remaining := session.EndsAt.Sub(s.now()).Seconds(); remaining > 0 {
			state.RemainingSeconds = remaining
		}
	}
	return state, nil
}

// ExpiredSessions lists overdue exam sessions for the worker's DB sweep.
func (s *SessionService) ExpiredSessions(ctx context.Context, limit int) ([]uuid.UUID, error) {
	return s.sessions.ListExpired(ctx, s.now(), limit)
}

func (s *SessionService) getOwned(ctx context.Context, sessionID uuid.UUID, userID int) (*model.TestSession, error) {
	session, err := s.sessions.GetByID(ctx, sessionID)
	if err != nil {
		return nil, mapNoRows(err)
	}
	if session.UserID != userID {
		return nil, ErrForbidden
	}
	return session, nil
}

// resolveDuration picks the session duration in minutes. Exams take the
// requested value, then the set default, then 60. Practice carries the set's
// configured pacing as-is (possibly zero): nothing gates on it.
func resolveDuration(isExam bool, requested, setDefault int) (int, error) {
	if !isExam {
		return setDefault, nil
	}
	switch {
	case requested < 0:
		return 0, ErrInvalidDuration
	case requested > 0:
		return requested, nil
	case setDefault > 0:
		return setDefault, nil
	default:
		return defaultDurationMinutes, nil
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
