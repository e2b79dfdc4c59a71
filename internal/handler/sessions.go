package handler

import (
	"net/http"

	"github.com/La-Clique-qui-Recycle/Recyclic-sub002/internal/apierror"
	"github.com/La-Clique-qui-Recycle/Recyclic-sub002/internal/dto"
	"github.com/La-Clique-qui-Recycle/Recyclic-sub002/internal/middleware"
	"github.com/La-Clique-qui-Recycle/Recyclic-sub002/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type SessionsHandler struct{ svc service.SessionService }

func NewSessionsHandler(svc service.SessionService) *SessionsHandler {
	return &SessionsHandler{svc: svc}
}

// Open godoc
// @Summary Opens a new cash session for the authenticated operator
// @Tags sessions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body dto.OpenSessionRequest true "Opening cash count"
// @Success 201 {object} dto.SessionResponse
// @Failure 422 {object} apierror.ValidationError
// @Router /v1/sessions/open [post]
func (h *SessionsHandler) Open(c *gin.Context) {
	var req dto.OpenSessionRequest
	if !bindAndValidate(c, &req) {
		return
	}
	claims := middleware.GetClaims(c)
	operatorID, err := uuid.Parse(claims.UserID)
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("Invalid user id"))
		return
	}
	siteID, err := uuid.Parse(claims.SiteID)
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("Invalid site scope"))
		return
	}

	resp, err := h.svc.Open(c.Request.Context(), operatorID, siteID, req)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// Close godoc
// @Summary Closes a session: reconciliation, close-out artifact, download token
// @Tags sessions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Session id"
// @Param body body dto.CloseSessionRequest true "Counted cash"
// @Success 200 {object} dto.CloseSessionResponse
// @Failure 404 {object} apierror.APIError
// @Failure 409 {object} apierror.APIError
// @Router /v1/sessions/{id}/close [post]
func (h *SessionsHandler) Close(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("Invalid id"))
		return
	}
	var req dto.CloseSessionRequest
	if !bindAndValidate(c, &req) {
		return
	}

	resp, err := h.svc.Close(c.Request.Context(), id, req)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Get returns one session with its reconciliation fields once closed.
func (h *SessionsHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("Invalid id"))
		return
	}
	resp, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		c.Error(err)
		return
	}
	if !siteScopeOK(c, resp.SiteID) {
		return
	}
	c.JSON(http.StatusOK, resp)
}

// siteScopeOK enforces the caller's site scope on session resources: a
// cashier sees their own site's sessions, cross-site accounts see all.
func siteScopeOK(c *gin.Context, siteID string) bool {
	if !middleware.SiteAllowed(middleware.GetClaims(c), siteID) {
		c.AbortWithStatusJSON(http.StatusForbidden, apierror.New("Insufficient permissions"))
		return false
	}
	return true
}

// Activity refreshes last_activity and optionally transitions the sub-step.
func (h *SessionsHandler) Activity(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("Invalid id"))
		return
	}
	var req dto.SessionActivityRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.RecordActivity(c.Request.Context(), id, req)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ReportAccess godoc
// @Summary Mints a fresh download token for a closed session's report
// @Tags sessions
// @Produce json
// @Security BearerAuth
// @Param id path string true "Session id"
// @Success 200 {object} dto.ReportAccessResponse
// @Failure 404 {object} apierror.APIError
// @Router /v1/sessions/{id}/report [get]
func (h *SessionsHandler) ReportAccess(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("Invalid id"))
		return
	}
	sess, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		c.Error(err)
		return
	}
	if !siteScopeOK(c, sess.SiteID) {
		return
	}
	resp, err := h.svc.ReportAccess(c.Request.Context(), id)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
