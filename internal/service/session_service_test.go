package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prepdesk/prepdesk-backend/internal/model"
)

const testUserID = 7

var testStart = time.Date(2026, 5, 12, 9, 0, 0, 0, time.UTC)

type engineFixture struct {
	svc       *SessionService
	store     *fakeStore
	bank      *fakeBank
	sets      *fakeSets
	enrolls   *fakeEnrollments
	deadlines *fakeDeadlines

	courseID uuid.UUID
	setID    uuid.UUID
	qids     []uuid.UUID

	now time.Time
}

// newEngineFixture wires a SessionService against in-memory fakes: one
// course, one 4-question set (every correct answer is index 1), and user 7
// enrolled. The clock starts at testStart and only moves via advance.
func newEngineFixture() *engineFixture {
	f := &engineFixture{
		store:     newFakeStore(),
		bank:      newFakeBank(),
		sets:      newFakeSets(),
		enrolls:   newFakeEnrollments(),
		deadlines: newFakeDeadlines(),
		courseID:  uuid.New(),
		setID:     uuid.New(),
		now:       testStart,
	}

	for i := 0; i < 4; i++ {
		q := model.Question{
			ID:            uuid.New(),
			Body:          "question body",
			Answers:       []string{"a", "b", "c"},
			CorrectAnswer: 1,
		}
		f.bank.questions[q.ID] = q
		f.qids = append(f.qids, q.ID)
	}
	f.sets.sets[f.setID] = &model.QuestionSet{
		ID:              f.setID,
		CourseID:        f.courseID,
		Name:            "mock test 1",
		DurationMinutes: 90,
		QuestionIDs:     append([]uuid.UUID(nil), f.qids...),
	}
	f.enrolls.approve(testUserID, f.courseID)

	f.svc = NewSessionService(f.store, fakeResults{store: f.store}, f.bank, f.sets, f.enrolls, f.deadlines)
	f.svc.now = func() time.Time { return f.now }
	return f
}

func (f *engineFixture) advance(d time.Duration) {
	f.now = f.now.Add(d)
}

func (f *engineFixture) create(t *testing.T, isExam bool, minutes int) *model.SessionCreated {
	t.Helper()
	created, err := f.svc.Create(context.Background(), testUserID, model.CreateSessionRequest{
		QuestionSetID:   f.setID.String(),
		IsExam:          &isExam,
		DurationMinutes: minutes,
	})
	if err != nil {
		t.Fatalf("create session: %v", err)
	}
	return created
}

func (f *engineFixture) patch(t *testing.T, sessionID uuid.UUID, questionID uuid.UUID, selected *int, marked *bool) error {
	t.Helper()
	return f.svc.PatchResponse(context.Background(), testUserID, sessionID, model.PatchResponseRequest{
		QuestionID:     questionID.String(),
		SelectedAnswer: selected,
		MarkedForLater: marked,
	})
}

func intPtr(v int) *int    { return &v }
func boolPtr(v bool) *bool { return &v }

func TestCreateSnapshotsResponses(t *testing.T) {
	f := newEngineFixture()
	created := f.create(t, false, 0)

	session, err := f.store.GetByID(context.Background(), created.ID)
	if err != nil {
		t.Fatalf("get session: %v", err)
	}
	if len(session.Responses) != len(f.qids) {
		t.Fatalf("expected %d responses, got %d", len(f.qids), len(session.Responses))
	}
	for i, resp := range session.Responses {
		if resp.QuestionID != f.qids[i] {
			t.Errorf("response %d: wrong question order", i)
		}
		if resp.SelectedAnswer != model.NoAnswer {
			t.Errorf("response %d: expected sentinel %d, got %d", i, model.NoAnswer, resp.SelectedAnswer)
		}
		if resp.IsAttempted || resp.MarkedForLater {
			t.Errorf("response %d: expected pristine flags", i)
		}
	}
	if created.StartedAt != nil || created.EndsAt != nil {
		t.Error("practice session should carry no exam window")
	}
	if session.IsSubmitted {
		t.Error("new session must not be submitted")
	}
}

func TestCreateExamWindow(t *testing.T) {
	f := newEngineFixture()
	created := f.create(t, true, 30)

	if created.StartedAt == nil || created.EndsAt == nil {
		t.Fatal("exam session must carry start and end timestamps")
	}
	if !created.StartedAt.Equal(testStart) {
		t.Errorf("started_at = %v, want %v", created.StartedAt, testStart)
	}
	if want := testStart.Add(30 * time.Minute); !created.EndsAt.Equal(want) {
		t.Errorf("ends_at = %v, want %v", created.EndsAt, want)
	}
	if at, ok := f.deadlines.scheduled[created.ID]; !ok || !at.Equal(*created.EndsAt) {
		t.Error("exam deadline was not scheduled")
	}
}

func TestCreateDurationFallbacks(t *testing.T) {
	f := newEngineFixture()

	if created := f.create(t, true, 45); created.DurationMinutes != 45 {
		t.Errorf("exam request duration: got %d, want 45", created.DurationMinutes)
	}
	if created := f.create(t, true, 0); created.DurationMinutes != 90 {
		t.Errorf("exam set default duration: got %d, want 90", created.DurationMinutes)
	}

	// Practice ignores the requested value and carries the set's configured
	// pacing, since nothing gates on it.
	if created := f.create(t, false, 45); created.DurationMinutes != 90 {
		t.Errorf("practice duration: got %d, want the set's 90", created.DurationMinutes)
	}

	f.sets.sets[f.setID].DurationMinutes = 0
	if created := f.create(t, true, 0); created.DurationMinutes != defaultDurationMinutes {
		t.Errorf("exam fallback duration: got %d, want %d", created.DurationMinutes, defaultDurationMinutes)
	}
	if created := f.create(t, false, 0); created.DurationMinutes != 0 {
		t.Errorf("practice duration with no set default: got %d, want 0", created.DurationMinutes)
	}

	isExam := true
	_, err := f.svc.Create(context.Background(), testUserID, model.CreateSessionRequest{
		QuestionSetID:   f.setID.String(),
		IsExam:          &isExam,
		DurationMinutes: -5,
	})
	if !errors.Is(err, ErrInvalidDuration) {
		t.Fatalf("expected ErrInvalidDuration, got %v", err)
	}
}

func TestCreateRejectsUnenrolled(t *testing.T) {
	f := newEngineFixture()
	isExam := false
	_, err := f.svc.Create(context.Background(), 99, model.CreateSessionRequest{
		QuestionSetID: f.setID.String(),
		IsExam:        &isExam,
	})
	if !errors.Is(err, ErrNotEnrolled) {
		t.Fatalf("expected ErrNotEnrolled, got %v", err)
	}
}

func TestCreateUnknownSet(t *testing.T) {
	f := newEngineFixture()
	isExam := false
	_, err := f.svc.Create(context.Background(), testUserID, model.CreateSessionRequest{
		QuestionSetID: uuid.New().String(),
		IsExam:        &isExam,
	})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestCreateEmptySet(t *testing.T) {
	f := newEngineFixture()
	f.sets.sets[f.setID].QuestionIDs = nil

	isExam := false
	_, err := f.svc.Create(context.Background(), testUserID, model.CreateSessionRequest{
		QuestionSetID: f.setID.String(),
		IsExam:        &isExam,
	})
	if !errors.Is(err, ErrEmptyQuestionSet) {
		t.Fatalf("expected ErrEmptyQuestionSet, got %v", err)
	}
}

func TestPatchResponseSemantics(t *testing.T) {
	f := newEngineFixture()
	created := f.create(t, false, 0)
	ctx := context.Background()

	// Selecting an answer marks the response attempted.
	if err := f.patch(t, created.ID, f.qids[0], intPtr(2), nil); err != nil {
		t.Fatalf("patch selection: %v", err)
	}
	// Marking for later alone also counts as attempted.
	if err := f.patch(t, created.ID, f.qids[1], nil, boolPtr(true)); err != nil {
		t.Fatalf("patch mark: %v", err)
	}
	// Un-marking alone does not.
	if err := f.patch(t, created.ID, f.qids[2], nil, boolPtr(false)); err != nil {
		t.Fatalf("patch unmark: %v", err)
	}

	session, _ := f.store.GetByID(ctx, created.ID)
	if !session.Responses[0].IsAttempted || session.Responses[0].SelectedAnswer != 2 {
		t.Error("selection did not stick or did not mark attempted")
	}
	if !session.Responses[1].IsAttempted || !session.Responses[1].MarkedForLater {
		t.Error("mark-for-later did not mark attempted")
	}
	if session.Responses[2].IsAttempted {
		t.Error("un-mark alone must not mark attempted")
	}
	if session.Responses[3].IsAttempted || session.Responses[3].SelectedAnswer != model.NoAnswer {
		t.Error("untouched response changed")
	}

	// Attempted latches: clearing the mark later keeps the flag.
	if err := f.patch(t, created.ID, f.qids[1], nil, boolPtr(false)); err != nil {
		t.Fatalf("patch unmark: %v", err)
	}
	session, _ = f.store.GetByID(ctx, created.ID)
	if !session.Responses[1].IsAttempted || session.Responses[1].MarkedForLater {
		t.Error("attempted flag must survive un-marking")
	}
}

func TestPatchUnknownQuestion(t *testing.T) {
	f := newEngineFixture()
	created := f.create(t, false, 0)

	err := f.patch(t, created.ID, uuid.New(), intPtr(0), nil)
	if !errors.Is(err, ErrResponseNotFound) {
		t.Fatalf("expected ErrResponseNotFound, got %v", err)
	}
}

func TestPatchAfterSubmit(t *testing.T) {
	f := newEngineFixture()
	created := f.create(t, false, 0)

	if _, err := f.svc.Submit(context.Background(), testUserID, created.ID); err != nil {
		t.Fatalf("submit: %v", err)
	}
	err := f.patch(t, created.ID, f.qids[0], intPtr(1), nil)
	if !errors.Is(err, ErrSessionSubmitted) {
		t.Fatalf("expected ErrSessionSubmitted, got %v", err)
	}
}

func TestStoreRefusesPatchAfterFinalize(t *testing.T) {
	f := newEngineFixture()
	created := f.create(t, true, 30)
	ctx := context.Background()

	// The expiry worker can flip the session between the engine's submitted
	// check and the row update; the store itself must refuse the write.
	if _, err := f.svc.Submit(ctx, testUserID, created.ID); err != nil {
		t.Fatalf("submit: %v", err)
	}
	found, err := f.store.UpdateResponse(ctx, created.ID, f.qids[0], model.ResponsePatch{SelectedAnswer: intPtr(2)})
	if err != nil {
		t.Fatalf("update response: %v", err)
	}
	if found {
		t.Fatal("store must not touch responses of a submitted session")
	}

	session, _ := f.store.GetByID(ctx, created.ID)
	if session.Responses[0].SelectedAnswer != model.NoAnswer {
		t.Error("submitted snapshot was mutated")
	}
}

func TestPatchAfterDeadline(t *testing.T) {
	f := newEngineFixture()
	exam := f.create(t, true, 30)
	practice := f.create(t, false, 30)

	f.advance(31 * time.Minute)

	if err := f.patch(t, exam.ID, f.qids[0], intPtr(1), nil); !errors.Is(err, ErrSessionExpired) {
		t.Fatalf("expected ErrSessionExpired, got %v", err)
	}
	// Practice sessions have no deadline.
	if err := f.patch(t, practice.ID, f.qids[0], intPtr(1), nil); err != nil {
		t.Fatalf("practice patch after 31m: %v", err)
	}
}

func TestPatchOtherUsersSession(t *testing.T) {
	f := newEngineFixture()
	created := f.create(t, false, 0)

	err := f.svc.PatchResponse(context.Background(), 99, created.ID, model.PatchResponseRequest{
		QuestionID:     f.qids[0].String(),
		SelectedAnswer: intPtr(0),
	})
	if !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}

func TestSubmitScoring(t *testing.T) {
	f := newEngineFixture()
	created := f.create(t, false, 0)
	ctx := context.Background()

	// q0 correct, q1 wrong, q2 marked-only (attempted, sentinel answer),
	// q3 untouched.
	f.patch(t, created.ID, f.qids[0], intPtr(1), nil)
	f.patch(t, created.ID, f.qids[1], intPtr(0), nil)
	f.patch(t, created.ID, f.qids[2], nil, boolPtr(true))

	result, err := f.svc.Submit(ctx, testUserID, created.ID)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}

	if result.TotalQuestions != 4 {
		t.Errorf("total = %d, want 4", result.TotalQuestions)
	}
	if result.Attempted != 3 {
		t.Errorf("attempted = %d, want 3", result.Attempted)
	}
	if result.Correct != 1 {
		t.Errorf("correct = %d, want 1", result.Correct)
	}
	if result.Incorrect != 2 {
		t.Errorf("incorrect = %d, want 2", result.Incorrect)
	}
	if result.Percentage != 25 {
		t.Errorf("percentage = %v, want 25", result.Percentage)
	}
	if result.Accuracy != 33.33 {
		t.Errorf("accuracy = %v, want 33.33", result.Accuracy)
	}
	if !result.SubmittedAt.Equal(testStart) {
		t.Errorf("submitted_at = %v, want %v", result.SubmittedAt, testStart)
	}

	stored, err := f.svc.Result(ctx, testUserID, created.ID)
	if err != nil {
		t.Fatalf("result: %v", err)
	}
	if stored.Correct != result.Correct || stored.TestSessionID != created.ID {
		t.Error("stored result does not match the returned one")
	}
}

func TestSubmitTwice(t *testing.T) {
	f := newEngineFixture()
	created := f.create(t, false, 0)
	ctx := context.Background()

	if _, err := f.svc.Submit(ctx, testUserID, created.ID); err != nil {
		t.Fatalf("first submit: %v", err)
	}
	if _, err := f.svc.Submit(ctx, testUserID, created.ID); !errors.Is(err, ErrSessionSubmitted) {
		t.Fatalf("expected ErrSessionSubmitted, got %v", err)
	}

	results, err := f.svc.ListResults(ctx, testUserID)
	if err != nil {
		t.Fatalf("list results: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("expected exactly one result, got %d", len(results))
	}
}

func TestSubmitSkipsDeletedQuestions(t *testing.T) {
	f := newEngineFixture()
	created := f.create(t, false, 0)

	f.patch(t, created.ID, f.qids[0], intPtr(1), nil)
	f.patch(t, created.ID, f.qids[1], intPtr(1), nil)
	delete(f.bank.questions, f.qids[1])

	result, err := f.svc.Submit(context.Background(), testUserID, created.ID)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if result.TotalQuestions != 4 {
		t.Errorf("total = %d, want 4 (snapshot size)", result.TotalQuestions)
	}
	if result.Attempted != 1 || result.Correct != 1 {
		t.Errorf("attempted/correct = %d/%d, want 1/1 (deleted question skipped)", result.Attempted, result.Correct)
	}
}

func TestSubmitAllowedAfterDeadline(t *testing.T) {
	f := newEngineFixture()
	created := f.create(t, true, 30)
	f.patch(t, created.ID, f.qids[0], intPtr(1), nil)

	f.advance(45 * time.Minute)

	result, err := f.svc.Submit(context.Background(), testUserID, created.ID)
	if err != nil {
		t.Fatalf("submit after deadline: %v", err)
	}
	if result.Correct != 1 {
		t.Errorf("correct = %d, want 1", result.Correct)
	}
	if !f.deadlines.canceled[created.ID] {
		t.Error("submission should cancel the scheduled deadline")
	}
}

func TestResultBeforeSubmit(t *testing.T) {
	f := newEngineFixture()
	created := f.create(t, false, 0)

	_, err := f.svc.Result(context.Background(), testUserID, created.ID)
	if !errors.Is(err, ErrResultNotReady) {
		t.Fatalf("expected ErrResultNotReady, got %v", err)
	}
}

func TestReviewSolutionsGate(t *testing.T) {
	f := newEngineFixture()
	created := f.create(t, false, 0)
	ctx := context.Background()

	f.patch(t, created.ID, f.qids[0], intPtr(2), nil)

	// Plain review works before submission but hides correct answers.
	review, err := f.svc.Review(ctx, testUserID, created.ID, false)
	if err != nil {
		t.Fatalf("review: %v", err)
	}
	if len(review.Responses) != 4 {
		t.Fatalf("expected 4 review entries, got %d", len(review.Responses))
	}
	if review.Responses[0].CorrectAnswer != nil {
		t.Error("correct answer leaked before submission")
	}
	if review.Responses[0].Body == "" || len(review.Responses[0].Answers) != 3 {
		t.Error("review entry missing question detail")
	}

	// Solutions are locked until submission.
	if _, err := f.svc.Review(ctx, testUserID, created.ID, true); !errors.Is(err, ErrSolutionsLocked) {
		t.Fatalf("expected ErrSolutionsLocked, got %v", err)
	}

	if _, err := f.svc.Submit(ctx, testUserID, created.ID); err != nil {
		t.Fatalf("submit: %v", err)
	}
	review, err = f.svc.Review(ctx, testUserID, created.ID, true)
	if err != nil {
		t.Fatalf("review with solutions: %v", err)
	}
	if review.Responses[0].CorrectAnswer == nil || *review.Responses[0].CorrectAnswer != 1 {
		t.Error("solutions view must include correct answers after submission")
	}
	if review.Responses[0].SelectedAnswer != 2 {
		t.Error("solutions view must keep the recorded selection")
	}
}

func TestAutoSubmit(t *testing.T) {
	f := newEngineFixture()
	created := f.create(t, true, 30)
	f.patch(t, created.ID, f.qids[0], intPtr(1), nil)

	f.advance(31 * time.Minute)
	ctx := context.Background()

	submitted, err := f.svc.AutoSubmit(ctx, created.ID)
	if err != nil {
		t.Fatalf("auto submit: %v", err)
	}
	if !submitted {
		t.Fatal("expected auto submit to finalize the session")
	}

	// Idempotent on repeat delivery.
	submitted, err = f.svc.AutoSubmit(ctx, created.ID)
	if err != nil {
		t.Fatalf("second auto submit: %v", err)
	}
	if submitted {
		t.Fatal("second auto submit must be a no-op")
	}

	result, err := f.svc.Result(ctx, testUserID, created.ID)
	if err != nil {
		t.Fatalf("result after auto submit: %v", err)
	}
	if result.Correct != 1 {
		t.Errorf("correct = %d, want 1", result.Correct)
	}
}

func TestExpiredSessionsSweep(t *testing.T) {
	f := newEngineFixture()
	exam := f.create(t, true, 30)
	f.create(t, false, 30)

	ids, err := f.svc.ExpiredSessions(context.Background(), 10)
	if err != nil {
		t.Fatalf("expired sessions: %v", err)
	}
	if len(ids) != 0 {
		t.Fatalf("nothing should be expired yet, got %d", len(ids))
	}

	f.advance(31 * time.Minute)
	ids, err = f.svc.ExpiredSessions(context.Background(), 10)
	if err != nil {
		t.Fatalf("expired sessions: %v", err)
	}
	if len(ids) != 1 || ids[0] != exam.ID {
		t.Fatalf("expected only the exam session to expire, got %v", ids)
	}
}

func TestStateRemainingSeconds(t *testing.T) {
	f := newEngineFixture()
	created := f.create(t, true, 30)
	ctx := context.Background()

	f.advance(10 * time.Minute)
	state, err := f.svc.State(ctx, testUserID, created.ID)
	if err != nil {
		t.Fatalf("state: %v", err)
	}
	if state.RemainingSeconds != (20 * time.Minute).Seconds() {
		t.Errorf("remaining = %v, want %v", state.RemainingSeconds, (20 * time.Minute).Seconds())
	}

	f.advance(25 * time.Minute)
	state, _ = f.svc.State(ctx, testUserID, created.ID)
	if state.RemainingSeconds != 0 {
		t.Errorf("remaining after deadline = %v, want 0", state.RemainingSeconds)
	}
}
