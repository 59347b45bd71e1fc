package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/prepdesk/prepdesk-backend/internal/model"
	"github.com/prepdesk/prepdesk-backend/internal/repository"
)

// CourseStore is the persistence contract for courses.
type CourseStore interface {
	List(ctx context.Context) ([]model.Course, error)
	GetByID(ctx context.Context, id uuid.UUID) (*model.Course, error)
	Create(ctx context.Context, c *model.Course) error
	Update(ctx context.Context, c *model.Course) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// CategoryStore is the persistence contract for categories.
type CategoryStore interface {
	ListByCourse(ctx context.Context, courseID uuid.UUID) ([]model.Category, error)
	Create(ctx context.Context, c *model.Category) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// QuestionSetStore is the persistence contract for question sets and their
// ordered membership.
type QuestionSetStore interface {
	ListByCategory(ctx context.Context, categoryID uuid.UUID) ([]model.QuestionSet, error)
	Resolve(ctx context.Context, id uuid.UUID) (*model.QuestionSet, error)
	Create(ctx context.Context, qs *model.QuestionSet) error
	Update(ctx context.Context, qs *model.QuestionSet) error
	Delete(ctx context.Context, id uuid.UUID) error
	ListIDsByQuestion(ctx context.Context, questionID uuid.UUID) ([]uuid.UUID, error)
}

// QuestionStore is the persistence contract for the question bank.
type QuestionStore interface {
	Create(ctx context.Context, q *model.Question) error
	BulkCreate(ctx context.Context, questions []model.Question) error
	Update(ctx context.Context, q *model.Question) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// AnswerKeyCache drops cached answer keys when the underlying questions
// change. QuestionBank implements it.
type AnswerKeyCache interface {
	Invalidate(ctx context.Context, questionSetID uuid.UUID) error
}

// CatalogService handles the course / category / question set / question
// catalog. Reads are open to enrolled users; writes are admin-only and the
// router enforces that.
type CatalogService struct {
	courseRepo   CourseStore
	categoryRepo CategoryStore
	setRepo      QuestionSetStore
	questionRepo QuestionStore
	keys         AnswerKeyCache
}

// NewCatalogService creates a new CatalogService.
func NewCatalogService(
	courseRepo CourseStore,
	categoryRepo CategoryStore,
	setRepo QuestionSetStore,
	questionRepo QuestionStore,
	keys AnswerKeyCache,
) *CatalogService {
	return &CatalogService{
		courseRepo:   courseRepo,
		categoryRepo: categoryRepo,
		setRepo:      setRepo,
		questionRepo: questionRepo,
		keys:         keys,
	}
}

// ListCourses returns all courses.
func (s *CatalogService) ListCourses(ctx context.Context) ([]model.Course, error) {
	return s.courseRepo.List(ctx)
}

// GetCourse returns one course.
func (s *CatalogService) GetCourse(ctx context.Context, id uuid.UUID) (*model.Course, error) {
	course, err := s.courseRepo.GetByID(ctx, id)
	if err != nil {
		return nil, mapNoRows(err)
	}
	return course, nil
}

// CreateCourse creates a course.
func (s *CatalogService) CreateCourse(ctx context.Context, req model.UpsertCourseRequest) (*model.Course, error) {
	course := &model.Course{Name: req.Name, Description: req.Description}
	if err := s.courseRepo.Create(ctx, course); err != nil {
		return nil, fmt.Errorf("create course: %w", err)
	}
	return course, nil
}

// UpdateCourse updates a course's name and description.
func (s *CatalogService) UpdateCourse(ctx context.Context, id uuid.UUID, req model.UpsertCourseRequest) (*model.Course, error) {
	course := &model.Course{ID: id, Name: req.Name, Description: req.Description}
	if err := s.courseRepo.Update(ctx, course); err != nil {
		return nil, mapNoRows(err)
	}
	return course, nil
}

// DeleteCourse removes a course and, via cascade, its categories and sets.
func (s *CatalogService) DeleteCourse(ctx context.Context, id uuid.UUID) error {
	if err := s.courseRepo.Delete(ctx, id); err != nil {
		return mapNoRows(err)
	}
	return nil
}

// ListCategories returns the categories of a course.
func (s *CatalogService) ListCategories(ctx context.Context, courseID uuid.UUID) ([]model.Category, error) {
	return s.categoryRepo.ListByCourse(ctx, courseID)
}

// CreateCategory creates a category under a course.
func (s *CatalogService) CreateCategory(ctx context.Context, req model.UpsertCategoryRequest) (*model.Category, error) {
	courseID, err := uuid.Parse(req.CourseID)
	if err != nil {
		return nil, fmt.Errorf("parse course id: %w", err)
	}
	category := &model.Category{CourseID: courseID, Name: req.Name}
	if err := s.categoryRepo.Create(ctx, category); err != nil {
		return nil, fmt.Errorf("create category: %w", err)
	}
	return category, nil
}

// DeleteCategory removes a category.
func (s *CatalogService) DeleteCategory(ctx context.Context, id uuid.UUID) error {
	if err := s.categoryRepo.Delete(ctx, id); err != nil {
		return mapNoRows(err)
	}
	return nil
}

// ListQuestionSets returns the question sets of a category.
func (s *CatalogService) ListQuestionSets(ctx context.Context, categoryID uuid.UUID) ([]model.QuestionSet, error) {
	return s.setRepo.ListByCategory(ctx, categoryID)
}

// GetQuestionSet returns a question set with its ordered question ids.
func (s *CatalogService) GetQuestionSet(ctx context.Context, id uuid.UUID) (*model.QuestionSet, error) {
	set, err := s.setRepo.Resolve(ctx, id)
	if err != nil {
		return nil, mapNoRows(err)
	}
	return set, nil
}

// CreateQuestionSet creates a question set with its ordered membership.
func (s *CatalogService) CreateQuestionSet(ctx context.Context, req model.UpsertQuestionSetRequest) (*model.QuestionSet, error) {
	set, err := questionSetFromRequest(req)
	if err != nil {
		return nil, err
	}
	if err := s.setRepo.Create(ctx, set); err != nil {
		return nil, fmt.Errorf("create question set: %w", err)
	}
	return set, nil
}

// UpdateQuestionSet updates a question set; a non-nil QuestionIDs list
// replaces the membership wholesale. The set's cached answer key is dropped.
func (s *CatalogService) UpdateQuestionSet(ctx context.Context, id uuid.UUID, req model.UpsertQuestionSetRequest) (*model.QuestionSet, error) {
	set, err := questionSetFromRequest(req)
	if err != nil {
		return nil, err
	}
	set.ID = id
	if err := s.setRepo.Update(ctx, set); err != nil {
		return nil, mapNoRows(err)
	}
	_ = s.keys.Invalidate(ctx, id)
	return set, nil
}

// DeleteQuestionSet removes a question set and drops its cached answer key.
func (s *CatalogService) DeleteQuestionSet(ctx context.Context, id uuid.UUID) error {
	if err := s.setRepo.Delete(ctx, id); err != nil {
		return mapNoRows(err)
	}
	_ = s.keys.Invalidate(ctx, id)
	return nil
}

// CreateQuestion adds a single question to the bank.
func (s *CatalogService) CreateQuestion(ctx context.Context, req model.AddQuestionRequest) (*model.Question, error) {
	q, err := questionFromRequest(req)
	if err != nil {
		return nil, err
	}
	if err := s.questionRepo.Create(ctx, q); err != nil {
		return nil, fmt.Errorf("create question: %w", err)
	}
	return q, nil
}

// BulkCreateQuestions adds several questions at once.
func (s *CatalogService) BulkCreateQuestions(ctx context.Context, req model.BulkAddQuestionsRequest) ([]model.Question, error) {
	questions := make([]model.Question, 0, len(req.Questions))
	for _, qr := range req.Questions {
		q, err := questionFromRequest(qr)
		if err != nil {
			return nil, err
		}
		questions = append(questions, *q)
	}
	if err := s.questionRepo.BulkCreate(ctx, questions); err != nil {
		return nil, fmt.Errorf("bulk create questions: %w", err)
	}
	return questions, nil
}

// UpdateQuestion updates a question's body, answers, and correct answer, and
// drops the cached answer key of every set containing it.
func (s *CatalogService) UpdateQuestion(ctx context.Context, id uuid.UUID, req model.AddQuestionRequest) (*model.Question, error) {
	q, err := questionFromRequest(req)
	if err != nil {
		return nil, err
	}
	q.ID = id
	if err := s.questionRepo.Update(ctx, q); err != nil {
		return nil, mapNoRows(err)
	}
	s.invalidateContainingSets(ctx, id)
	return q, nil
}

// DeleteQuestion removes a question from the bank and drops the cached
// answer key of every set that contained it.
func (s *CatalogService) DeleteQuestion(ctx context.Context, id uuid.UUID) error {
	// Membership rows cascade away on delete, so look them up first.
	setIDs, _ := s.setRepo.ListIDsByQuestion(ctx, id)
	if err := s.questionRepo.Delete(ctx, id); err != nil {
		return mapNoRows(err)
	}
	for _, setID := range setIDs {
		_ = s.keys.Invalidate(ctx, setID)
	}
	return nil
}

// invalidateContainingSets is best effort; the cache TTL catches anything
// it misses.
func (s *CatalogService) invalidateContainingSets(ctx context.Context, questionID uuid.UUID) {
	setIDs, err := s.setRepo.ListIDsByQuestion(ctx, questionID)
	if err != nil {
		return
	}
	for _, setID := range setIDs {
		_ = s.keys.Invalidate(ctx, setID)
	}
}

func questionSetFromRequest(req model.UpsertQuestionSetRequest) (*model.QuestionSet, error) {
	categoryID, err := uuid.Parse(req.CategoryID)
	if err != nil {
		return nil, fmt.Errorf("parse category id: %w", err)
	}

	set := &model.QuestionSet{
		CategoryID:      categoryID,
		Name:            req.Name,
		DurationMinutes: req.DurationMinutes,
	}
	if req.QuestionIDs != nil {
		set.QuestionIDs = make([]uuid.UUID, 0, len(req.QuestionIDs))
		for _, raw := range req.QuestionIDs {
			qid, err := uuid.Parse(raw)
			if err != nil {
				return nil, fmt.Errorf("parse question id: %w", err)
			}
			set.QuestionIDs = append(set.QuestionIDs, qid)
		}
	}
	return set, nil
}

func questionFromRequest(req model.AddQuestionRequest) (*model.Question, error) {
	if req.CorrectAnswer < 0 || req.CorrectAnswer >= len(req.Answers) {
		return nil, errors.New("correct_answer is out of range for the answer list")
	}
	return &model.Question{
		Body:          req.Body,
		Answers:       req.Answers,
		CorrectAnswer: req.CorrectAnswer,
	}, nil
}

// mapNoRows converts the repository's not-found signal to the service-level
// sentinel and leaves everything else untouched.
func mapNoRows(err error) error {
	if errors.Is(err, repository.ErrNoRows) {
		return ErrNotFound
	}
	return err
}
