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

// SessionHandler exposes the test session lifecycle over HTTP.
type SessionHandler struct {
	sessionService *service.SessionService
}

// NewSessionHandler creates a new SessionHandler.
func NewSessionHandler(sessionService *service.SessionService) *SessionHandler {
	return &SessionHandler{sessionService: sessionService}
}

// Create godoc
// POST /api/v1/sessions
func (h *SessionHandler) Create(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	var req model.CreateSessionRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	created, err := h.sessionService.Create(c.Request.Context(), claims.UserID, req)
	if err != nil {
		failSession(c, err)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"session": created})
}

// List godoc
// GET /api/v1/sessions
func (h *SessionHandler) List(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	sessions, err := h.sessionService.ListMine(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	if sessions == nil {
		sessions = []model.SessionSummary{}
	}

	response.Success(c, http.StatusOK, gin.H{"sessions": sessions})
}

// Get godoc
// GET /api/v1/sessions/:session_id
// Returns the session with question detail for the taking/review screen.
// Correct answers stay hidden until the session is submitted.
func (h *SessionHandler) Get(c *gin.Context) {
	claims, sessionID, ok := sessionScope(c)
	if !ok {
		return
	}

	review, err := h.sessionService.Review(c.Request.Context(), claims.UserID, sessionID, false)
	if err != nil {
		failSession(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"session": review})
}

// PatchResponse godoc
// PATCH /api/v1/sessions/:session_id/response
func (h *SessionHandler) PatchResponse(c *gin.Context) {
	claims, sessionID, ok := sessionScope(c)
	if !ok {
		return
	}

	var req model.PatchResponseRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	if err := h.sessionService.PatchResponse(c.Request.Context(), claims.UserID, sessionID, req); err != nil {
		failSession(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"updated": true})
}

// Submit godoc
// POST /api/v1/sessions/:session_id/submit
func (h *SessionHandler) Submit(c *gin.Context) {
	claims, sessionID, ok := sessionScope(c)
	if !ok {
		return
	}

	result, err := h.sessionService.Submit(c.Request.Context(), claims.UserID, sessionID)
	if err != nil {
		failSession(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"result": result})
}

// Result godoc
// GET /api/v1/sessions/:session_id/result
func (h *SessionHandler) Result(c *gin.Context) {
	claims, sessionID, ok := sessionScope(c)
	if !ok {
		return
	}

	result, err := h.sessionService.Result(c.Request.Context(), claims.UserID, sessionID)
	if err != nil {
		failSession(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"result": result})
}

// Solutions godoc
// GET /api/v1/sessions/:session_id/solutions
// Full review including correct answers; submitted sessions only.
func (h *SessionHandler) Solutions(c *gin.Context) {
	claims, sessionID, ok := sessionScope(c)
	if !ok {
		return
	}

	review, err := h.sessionService.Review(c.Request.Context(), claims.UserID, sessionID, true)
	if err != nil {
		failSession(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"session": review})
}

// Results godoc
// GET /api/v1/results
func (h *SessionHandler) Results(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	results, err := h.sessionService.ListResults(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	if results == nil {
		results = []model.TestResult{}
	}

	response.Success(c, http.StatusOK, gin.H{"results": results})
}

// sessionScope pulls the authenticated claims and the :session_id param,
// failing the request itself when either is missing.
func sessionScope(c *gin.Context) (*service.Claims, uuid.UUID, bool) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return nil, uuid.Nil, false
	}

	sessionID, err := uuid.Parse(c.Param("session_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return nil, uuid.Nil, false
	}
	return claims, sessionID, true
}

// failSession maps session engine errors onto HTTP statuses and codes.
func failSession(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrNotFound):
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
	case errors.Is(err, service.ErrForbidden):
		response.Fail(c, http.StatusForbidden, response.ErrForbidden)
	case errors.Is(err, service.ErrNotEnrolled):
		response.Fail(c, http.StatusForbidden, response.ErrNotEnrolled)
	case errors.Is(err, service.ErrInvalidDuration):
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidDuration)
	case errors.Is(err, service.ErrEmptyQuestionSet):
		response.Fail(c, http.StatusConflict, response.ErrConflict)
	case errors.Is(err, service.ErrSessionSubmitted):
		response.Fail(c, http.StatusConflict, response.ErrSessionSubmitted)
	case errors.Is(err, service.ErrSessionExpired):
		response.Fail(c, http.StatusConflict, response.ErrSessionExpired)
	case errors.Is(err, service.ErrResponseNotFound):
		response.Fail(c, http.StatusNotFound, response.ErrResponseNotInSession)
	case errors.Is(err, service.ErrResultNotReady):
		response.Fail(c, http.StatusConflict, response.ErrResultNotReady)
	case errors.Is(err, service.ErrSolutionsLocked):
		response.Fail(c, http.StatusConflict, response.ErrSolutionsLocked)
	default:
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
	}
}
