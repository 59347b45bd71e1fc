package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/prepdesk/prepdesk-backend/internal/model"
)

type fakeCourseStore struct{}

func (fakeCourseStore) List(context.Context) ([]model.Course, error)              { return nil, nil }
func (fakeCourseStore) GetByID(context.Context, uuid.UUID) (*model.Course, error) { return nil, nil }
func (fakeCourseStore) Create(context.Context, *model.Course) error               { return nil }
func (fakeCourseStore) Update(context.Context, *model.Course) error               { return nil }
func (fakeCourseStore) Delete(context.Context, uuid.UUID) error                   { return nil }

type fakeCategoryStore struct{}

func (fakeCategoryStore) ListByCourse(context.Context, uuid.UUID) ([]model.Category, error) {
	return nil, nil
}
func (fakeCategoryStore) Create(context.Context, *model.Category) error { return nil }
func (fakeCategoryStore) Delete(context.Context, uuid.UUID) error       { return nil }

// fakeSetStore only tracks which sets contain which questions; the catalog
// writes themselves are no-ops.
type fakeSetStore struct {
	membership map[uuid.UUID][]uuid.UUID
}

func (f *fakeSetStore) ListByCategory(context.Context, uuid.UUID) ([]model.QuestionSet, error) {
	return nil, nil
}
func (f *fakeSetStore) Resolve(context.Context, uuid.UUID) (*model.QuestionSet, error) {
	return nil, nil
}
func (f *fakeSetStore) Create(context.Context, *model.QuestionSet) error { return nil }
func (f *fakeSetStore) Update(context.Context, *model.QuestionSet) error { return nil }
func (f *fakeSetStore) Delete(context.Context, uuid.UUID) error          { return nil }
func (f *fakeSetStore) ListIDsByQuestion(_ context.Context, questionID uuid.UUID) ([]uuid.UUID, error) {
	return f.membership[questionID], nil
}

type fakeQuestionStore struct{}

func (fakeQuestionStore) Create(context.Context, *model.Question) error      { return nil }
func (fakeQuestionStore) BulkCreate(context.Context, []model.Question) error { return nil }
func (fakeQuestionStore) Update(context.Context, *model.Question) error      { return nil }
func (fakeQuestionStore) Delete(context.Context, uuid.UUID) error            { return nil }

type fakeKeyCache struct {
	invalidated map[uuid.UUID]int
}

func (f *fakeKeyCache) Invalidate(_ context.Context, questionSetID uuid.UUID) error {
	f.invalidated[questionSetID]++
	return nil
}

func newCatalogFixture() (*CatalogService, *fakeSetStore, *fakeKeyCache) {
	sets := &fakeSetStore{membership: make(map[uuid.UUID][]uuid.UUID)}
	keys := &fakeKeyCache{invalidated: make(map[uuid.UUID]int)}
	svc := NewCatalogService(fakeCourseStore{}, fakeCategoryStore{}, sets, fakeQuestionStore{}, keys)
	return svc, sets, keys
}

// Editing or deleting a question must drop the cached answer key of every
// set containing it, or submissions in the TTL window score against the
// old key.
func TestQuestionEditDropsContainingSetKeys(t *testing.T) {
	svc, sets, keys := newCatalogFixture()
	ctx := context.Background()

	qid := uuid.New()
	setA, setB := uuid.New(), uuid.New()
	sets.membership[qid] = []uuid.UUID{setA, setB}

	_, err := svc.UpdateQuestion(ctx, qid, model.AddQuestionRequest{
		Body:          "updated body",
		Answers:       []string{"a", "b", "c"},
		CorrectAnswer: 2,
	})
	if err != nil {
		t.Fatalf("update question: %v", err)
	}
	if keys.invalidated[setA] != 1 || keys.invalidated[setB] != 1 {
		t.Errorf("update: invalidations = %d/%d, want 1/1", keys.invalidated[setA], keys.invalidated[setB])
	}

	if err := svc.DeleteQuestion(ctx, qid); err != nil {
		t.Fatalf("delete question: %v", err)
	}
	if keys.invalidated[setA] != 2 || keys.invalidated[setB] != 2 {
		t.Errorf("delete: invalidations = %d/%d, want 2/2", keys.invalidated[setA], keys.invalidated[setB])
	}
}

func TestQuestionSetEditDropsKey(t *testing.T) {
	svc, _, keys := newCatalogFixture()
	ctx := context.Background()
	setID := uuid.New()

	_, err := svc.UpdateQuestionSet(ctx, setID, model.UpsertQuestionSetRequest{
		CategoryID:      uuid.New().String(),
		Name:            "mock test 1",
		DurationMinutes: 30,
	})
	if err != nil {
		t.Fatalf("update question set: %v", err)
	}
	if keys.invalidated[setID] != 1 {
		t.Errorf("update: invalidations = %d, want 1", keys.invalidated[setID])
	}

	if err := svc.DeleteQuestionSet(ctx, setID); err != nil {
		t.Fatalf("delete question set: %v", err)
	}
	if keys.invalidated[setID] != 2 {
		t.Errorf("delete: invalidations = %d, want 2", keys.invalidated[setID])
	}
}
