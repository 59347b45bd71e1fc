package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prepdesk/prepdesk-backend/internal/middleware"
	"github.com/prepdesk/prepdesk-backend/internal/model"
	"github.com/prepdesk/prepdesk-backend/internal/response"
	"github.com/prepdesk/prepdesk-backend/internal/service"
	"github.com/prepdesk/prepdesk-backend/internal/validator"
)

// EnrollmentHandler exposes the enrollment request workflow.
type EnrollmentHandler struct {
	enrollmentService *service.EnrollmentService
}

// NewEnrollmentHandler creates a new EnrollmentHandler.
func NewEnrollmentHandler(enrollmentService *service.EnrollmentService) *EnrollmentHandler {
	return &EnrollmentHandler{enrollmentService: enrollmentService}
}

// Request godoc
// POST /api/v1/enrollments
func (h *EnrollmentHandler) Request(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	var req model.RequestEnrollmentRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	courseID, err := uuid.Parse(req.CourseID)
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	enrollment, err := h.enrollmentService.Request(c.Request.Context(), claims.UserID, courseID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNotFound):
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
		case errors.Is(err, service.ErrEnrollmentExists):
			response.Fail(c, http.StatusConflict, response.ErrEnrollmentExists)
		default:
			response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		}
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"enrollment": enrollment})
}

// ListMine godoc
// GET /api/v1/enrollments
func (h *EnrollmentHandler) ListMine(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	enrollments, err := h.enrollmentService.ListMine(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	if enrollments == nil {
		enrollments = []model.EnrollmentRequest{}
	}

	response.Success(c, http.StatusOK, gin.H{"enrollments": enrollments})
}

// ListPending godoc
// GET /api/v1/admin/enrollments/pending
func (h *EnrollmentHandler) ListPending(c *gin.Context) {
	enrollments, err := h.enrollmentService.ListPending(c.Request.Context())
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	if enrollments == nil {
		enrollments = []model.EnrollmentRequest{}
	}

	response.Success(c, http.StatusOK, gin.H{"enrollments": enrollments})
}

// Approve godoc
// POST /api/v1/admin/enrollments/:enrollment_id/approve
func (h *EnrollmentHandler) Approve(c *gin.Context) {
	h.decide(c, true)
}

// Reject godoc
// POST /api/v1/admin/enrollments/:enrollment_id/reject
func (h *EnrollmentHandler) Reject(c *gin.Context) {
	h.decide(c, false)
}

func (h *EnrollmentHandler) decide(c *gin.Context, approve bool) {
	id, ok := pathUUID(c, "enrollment_id")
	if !ok {
		return
	}

	if err := h.enrollmentService.Decide(c.Request.Context(), id, approve); err != nil {
		if errors.Is(err, service.ErrEnrollmentDecided) {
			response.Fail(c, http.StatusConflict, response.ErrEnrollmentDecided)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"decided": true})
}
