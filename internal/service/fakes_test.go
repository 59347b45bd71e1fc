package service

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/prepdesk/prepdesk-backend/internal/model"
	"github.com/prepdesk/prepdesk-backend/internal/repository"
)

// fakeStore is an in-memory SessionStore + ResultStore with the same
// semantics as the PostgreSQL implementation, including the exactly-once
// FinalizeSubmission flip.
type fakeStore struct {
	mu       sync.Mutex
	sessions map[uuid.UUID]*model.TestSession
	results  map[uuid.UUID]*model.TestResult
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		sessions: make(map[uuid.UUID]*model.TestSession),
		results:  make(map[uuid.UUID]*model.TestResult),
	}
}

func (f *fakeStore) Create(_ context.Context, s *model.TestSession) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	s.ID = uuid.New()
	s.CreatedAt = time.Now()
	stored := *s
	stored.Responses = append([]model.Response(nil), s.Responses...)
	f.sessions[s.ID] = &stored
	return nil
}

func (f *fakeStore) GetByID(_ context.Context, id uuid.UUID) (*model.TestSession, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	stored, ok := f.sessions[id]
	if !ok {
		return nil, repository.ErrNoRows
	}
	out := *stored
	out.Responses = append([]model.Response(nil), stored.Responses...)
	return &out, nil
}

func (f *fakeStore) ListByUser(_ context.Context, userID int) ([]model.SessionSummary, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.SessionSummary
	for _, s := range f.sessions {
		if s.UserID != userID {
			continue
		}
		out = append(out, model.SessionSummary{
			ID:              s.ID,
			QuestionSetID:   s.QuestionSetID,
			IsExam:          s.IsExam,
			IsSubmitted:     s.IsSubmitted,
			DurationMinutes: s.DurationMinutes,
			CreatedAt:       s.CreatedAt,
		})
	}
	return out, nil
}

func (f *fakeStore) UpdateResponse(_ context.Context, sessionID, questionID uuid.UUID, patch model.ResponsePatch) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.sessions[sessionID]
	if !ok || s.IsSubmitted {
		return false, nil
	}
	for i := range s.Responses {
		r := &s.Responses[i]
		if r.QuestionID != questionID {
			continue
		}
		if patch.SelectedAnswer != nil {
			r.SelectedAnswer = *patch.SelectedAnswer
		}
		if patch.MarkedForLater != nil {
			r.MarkedForLater = *patch.MarkedForLater
		}
		if patch.AttemptSignal() {
			r.IsAttempted = true
		}
		return true, nil
	}
	return false, nil
}

func (f *fakeStore) FinalizeSubmission(_ context.Context, sessionID uuid.UUID, res *model.TestResult) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.sessions[sessionID]
	if !ok || s.IsSubmitted {
		return false, nil
	}
	if _, exists := f.results[sessionID]; exists {
		return false, nil
	}
	s.IsSubmitted = true
	res.ID = uuid.New()
	stored := *res
	f.results[sessionID] = &stored
	return true, nil
}

func (f *fakeStore) ListExpired(_ context.Context, now time.Time, limit int) ([]uuid.UUID, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var ids []uuid.UUID
	for _, s := range f.sessions {
		if len(ids) >= limit {
			break
		}
		if s.IsExam && !s.IsSubmitted && s.EndsAt != nil && s.EndsAt.Before(now) {
			ids = append(ids, s.ID)
		}
	}
	return ids, nil
}

// fakeResults exposes the result side of fakeStore as a ResultStore.
type fakeResults struct {
	store *fakeStore
}

func (f fakeResults) GetBySessionID(_ context.Context, sessionID uuid.UUID) (*model.TestResult, error) {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	res, ok := f.store.results[sessionID]
	if !ok {
		return nil, repository.ErrNoRows
	}
	out := *res
	return &out, nil
}

func (f fakeResults) ListByUser(_ context.Context, userID int) ([]model.TestResult, error) {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	var out []model.TestResult
	for _, res := range f.store.results {
		if res.UserID == userID {
			out = append(out, *res)
		}
	}
	return out, nil
}

// fakeBank serves questions straight from a map; the answer key is derived
// from the same map, so deleting a question drops it from both views.
type fakeBank struct {
	questions map[uuid.UUID]model.Question
}

func newFakeBank() *fakeBank {
	return &fakeBank{questions: make(map[uuid.UUID]model.Question)}
}

func (b *fakeBank) Questions(_ context.Context, ids []uuid.UUID) (map[uuid.UUID]model.Question, error) {
	out := make(map[uuid.UUID]model.Question, len(ids))
	for _, id := range ids {
		if q, ok := b.questions[id]; ok {
			out[id] = q
		}
	}
	return out, nil
}

func (b *fakeBank) AnswerKey(_ context.Context, _ uuid.UUID, ids []uuid.UUID) (map[uuid.UUID]int, error) {
	out := make(map[uuid.UUID]int, len(ids))
	for _, id := range ids {
		if q, ok := b.questions[id]; ok {
			out[id] = q.CorrectAnswer
		}
	}
	return out, nil
}

type fakeSets struct {
	sets map[uuid.UUID]*model.QuestionSet
}

func newFakeSets() *fakeSets {
	return &fakeSets{sets: make(map[uuid.UUID]*model.QuestionSet)}
}

func (f *fakeSets) Resolve(_ context.Context, id uuid.UUID) (*model.QuestionSet, error) {
	set, ok := f.sets[id]
	if !ok {
		return nil, repository.ErrNoRows
	}
	out := *set
	return &out, nil
}

type fakeEnrollments struct {
	approved map[int]map[uuid.UUID]bool
}

func newFakeEnrollments() *fakeEnrollments {
	return &fakeEnrollments{approved: make(map[int]map[uuid.UUID]bool)}
}

func (f *fakeEnrollments) approve(userID int, courseID uuid.UUID) {
	if f.approved[userID] == nil {
		f.approved[userID] = make(map[uuid.UUID]bool)
	}
	f.approved[userID][courseID] = true
}

func (f *fakeEnrollments) IsEnrolled(_ context.Context, userID int, courseID uuid.UUID) (bool, error) {
	return f.approved[userID][courseID], nil
}

type fakeDeadlines struct {
	mu        sync.Mutex
	scheduled map[uuid.UUID]time.Time
	canceled  map[uuid.UUID]bool
}

func newFakeDeadlines() *fakeDeadlines {
	return &fakeDeadlines{
		scheduled: make(map[uuid.UUID]time.Time),
		canceled:  make(map[uuid.UUID]bool),
	}
}

func (f *fakeDeadlines) Schedule(_ context.Context, sessionID uuid.UUID, at time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.scheduled[sessionID] = at
	return nil
}

func (f *fakeDeadlines) Cancel(_ context.Context, sessionID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.canceled[sessionID] = true
	return nil
}
