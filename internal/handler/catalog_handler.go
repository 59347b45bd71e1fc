package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prepdesk/prepdesk-backend/internal/model"
	"github.com/prepdesk/prepdesk-backend/internal/response"
	"github.com/prepdesk/prepdesk-backend/internal/service"
	"github.com/prepdesk/prepdesk-backend/internal/validator"
)

// CatalogHandler exposes the course / category / question set / question
// catalog. Read endpoints serve users; write endpoints are mounted behind
// the admin guard.
type CatalogHandler struct {
	catalogService *service.CatalogService
}

// NewCatalogHandler creates a new CatalogHandler.
func NewCatalogHandler(catalogService *service.CatalogService) *CatalogHandler {
	return &CatalogHandler{catalogService: catalogService}
}

// ListCourses godoc
// GET /api/v1/courses
func (h *CatalogHandler) ListCourses(c *gin.Context) {
	courses, err := h.catalogService.ListCourses(c.Request.Context())
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	if courses == nil {
		courses = []model.Course{}
	}
	response.Success(c, http.StatusOK, gin.H{"courses": courses})
}

// GetCourse godoc
// GET /api/v1/courses/:course_id
func (h *CatalogHandler) GetCourse(c *gin.Context) {
	id, ok := pathUUID(c, "course_id")
	if !ok {
		return
	}
	course, err := h.catalogService.GetCourse(c.Request.Context(), id)
	if err != nil {
		failSession(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"course": course})
}

// CreateCourse godoc
// POST /api/v1/admin/courses
func (h *CatalogHandler) CreateCourse(c *gin.Context) {
	var req model.UpsertCourseRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}
	course, err := h.catalogService.CreateCourse(c.Request.Context(), req)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"course": course})
}

// UpdateCourse godoc
// PUT /api/v1/admin/courses/:course_id
func (h *CatalogHandler) UpdateCourse(c *gin.Context) {
	id, ok := pathUUID(c, "course_id")
	if !ok {
		return
	}
	var req model.UpsertCourseRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}
	course, err := h.catalogService.UpdateCourse(c.Request.Context(), id, req)
	if err != nil {
		failSession(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"course": course})
}

// DeleteCourse godoc
// DELETE /api/v1/admin/courses/:course_id
func (h *CatalogHandler) DeleteCourse(c *gin.Context) {
	id, ok := pathUUID(c, "course_id")
	if !ok {
		return
	}
	if err := h.catalogService.DeleteCourse(c.Request.Context(), id); err != nil {
		failSession(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"deleted": true})
}

// ListCategories godoc
// GET /api/v1/courses/:course_id/categories
func (h *CatalogHandler) ListCategories(c *gin.Context) {
	id, ok := pathUUID(c, "course_id")
	if !ok {
		return
	}
	categories, err := h.catalogService.ListCategories(c.Request.Context(), id)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	if categories == nil {
		categories = []model.Category{}
	}
	response.Success(c, http.StatusOK, gin.H{"categories": categories})
}

// CreateCategory godoc
// POST /api/v1/admin/categories
func (h *CatalogHandler) CreateCategory(c *gin.Context) {
	var req model.UpsertCategoryRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}
	category, err := h.catalogService.CreateCategory(c.Request.Context(), req)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"category": category})
}

// DeleteCategory godoc
// DELETE /api/v1/admin/categories/:category_id
func (h *CatalogHandler) DeleteCategory(c *gin.Context) {
	id, ok := pathUUID(c, "category_id")
	if !ok {
		return
	}
	if err := h.catalogService.DeleteCategory(c.Request.Context(), id); err != nil {
		failSession(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"deleted": true})
}

// ListQuestionSets godoc
// GET /api/v1/categories/:category_id/question-sets
func (h *CatalogHandler) ListQuestionSets(c *gin.Context) {
	id, ok := pathUUID(c, "category_id")
	if !ok {
		return
	}
	sets, err := h.catalogService.ListQuestionSets(c.Request.Context(), id)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	if sets == nil {
		sets = []model.QuestionSet{}
	}
	response.Success(c, http.StatusOK, gin.H{"question_sets": sets})
}

// GetQuestionSet godoc
// GET /api/v1/question-sets/:set_id
func (h *CatalogHandler) GetQuestionSet(c *gin.Context) {
	id, ok := pathUUID(c, "set_id")
	if !ok {
		return
	}
	set, err := h.catalogService.GetQuestionSet(c.Request.Context(), id)
	if err != nil {
		failSession(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"question_set": set})
}

// CreateQuestionSet godoc
// POST /api/v1/admin/question-sets
func (h *CatalogHandler) CreateQuestionSet(c *gin.Context) {
	var req model.UpsertQuestionSetRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}
	set, err := h.catalogService.CreateQuestionSet(c.Request.Context(), req)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"question_set": set})
}

// UpdateQuestionSet godoc
// PUT /api/v1/admin/question-sets/:set_id
func (h *CatalogHandler) UpdateQuestionSet(c *gin.Context) {
	id, ok := pathUUID(c, "set_id")
	if !ok {
		return
	}
	var req model.UpsertQuestionSetRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}
	set, err := h.catalogService.UpdateQuestionSet(c.Request.Context(), id, req)
	if err != nil {
		failSession(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"question_set": set})
}

// DeleteQuestionSet godoc
// DELETE /api/v1/admin/question-sets/:set_id
func (h *CatalogHandler) DeleteQuestionSet(c *gin.Context) {
	id, ok := pathUUID(c, "set_id")
	if !ok {
		return
	}
	if err := h.catalogService.DeleteQuestionSet(c.Request.Context(), id); err != nil {
		failSession(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"deleted": true})
}

// CreateQuestion godoc
// POST /api/v1/admin/questions
func (h *CatalogHandler) CreateQuestion(c *gin.Context) {
	var req model.AddQuestionRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}
	q, err := h.catalogService.CreateQuestion(c.Request.Context(), req)
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidPayload)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"question": q})
}

// BulkCreateQuestions godoc
// POST /api/v1/admin/questions/bulk
func (h *CatalogHandler) BulkCreateQuestions(c *gin.Context) {
	var req model.BulkAddQuestionsRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}
	questions, err := h.catalogService.BulkCreateQuestions(c.Request.Context(), req)
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidPayload)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"questions": questions})
}

// UpdateQuestion godoc
// PUT /api/v1/admin/questions/:question_id
func (h *CatalogHandler) UpdateQuestion(c *gin.Context) {
	id, ok := pathUUID(c, "question_id")
	if !ok {
		return
	}
	var req model.AddQuestionRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}
	q, err := h.catalogService.UpdateQuestion(c.Request.Context(), id, req)
	if err != nil {
		failSession(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"question": q})
}

// DeleteQuestion godoc
// DELETE /api/v1/admin/questions/:question_id
func (h *CatalogHandler) DeleteQuestion(c *gin.Context) {
	id, ok := pathUUID(c, "question_id")
	if !ok {
		return
	}
	if err := h.catalogService.DeleteQuestion(c.Request.Context(), id); err != nil {
		failSession(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"deleted": true})
}

// pathUUID parses a UUID path param, failing the request on bad input.
func pathUUID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return uuid.Nil, false
	}
	return id, true
}
