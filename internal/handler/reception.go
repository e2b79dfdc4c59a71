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

type ReceptionHandler struct{ svc service.ReceptionService }

func NewReceptionHandler(svc service.ReceptionService) *ReceptionHandler {
	return &ReceptionHandler{svc: svc}
}

func actorID(c *gin.Context) (uuid.UUID, bool) {
	claims := middleware.GetClaims(c)
	id, err := uuid.Parse(claims.UserID)
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("Invalid user id"))
		return uuid.Nil, false
	}
	return id, true
}

// OpenStation godoc
// @Summary Opens a reception station for the authenticated operator
// @Tags reception
// @Produce json
// @Security BearerAuth
// @Success 201 {object} dto.StationResponse
// @Router /v1/stations/open [post]
func (h *ReceptionHandler) OpenStation(c *gin.Context) {
	actor, ok := actorID(c)
	if !ok {
		return
	}
	resp, err := h.svc.OpenStation(c.Request.Context(), actor)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// CloseStation godoc
// @Summary Closes a station; fails while tickets remain open
// @Tags reception
// @Produce json
// @Security BearerAuth
// @Param id path string true "Station id"
// @Success 200 {object} dto.StationResponse
// @Failure 409 {object} apierror.APIError
// @Router /v1/stations/{id}/close [post]
func (h *ReceptionHandler) CloseStation(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("Invalid id"))
		return
	}
	resp, err := h.svc.CloseStation(c.Request.Context(), id)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *ReceptionHandler) GetStation(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("Invalid id"))
		return
	}
	resp, err := h.svc.GetStation(c.Request.Context(), id)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// OpenTicket creates a depositor ticket under an open station.
func (h *ReceptionHandler) OpenTicket(c *gin.Context) {
	stationID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("Invalid id"))
		return
	}
	actor, ok := actorID(c)
	if !ok {
		return
	}
	resp, err := h.svc.OpenTicket(c.Request.Context(), stationID, actor)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *ReceptionHandler) CloseTicket(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("Invalid id"))
		return
	}
	resp, err := h.svc.CloseTicket(c.Request.Context(), id)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *ReceptionHandler) GetTicket(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("Invalid id"))
		return
	}
	resp, err := h.svc.GetTicket(c.Request.Context(), id)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// AddLine godoc
// @Summary Adds a weighed line to an open ticket
// @Tags reception
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Ticket id"
// @Param body body dto.CreateLineRequest true "Line data"
// @Success 201 {object} dto.LineResponse
// @Failure 409 {object} apierror.APIError
// @Failure 422 {object} apierror.APIError
// @Router /v1/tickets/{id}/lines [post]
func (h *ReceptionHandler) AddLine(c *gin.Context) {
	ticketID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("Invalid id"))
		return
	}
	var req dto.CreateLineRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.AddLine(c.Request.Context(), ticketID, req)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *ReceptionHandler) UpdateLine(c *gin.Context) {
	lineID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("Invalid id"))
		return
	}
	var req dto.UpdateLineRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.UpdateLine(c.Request.Context(), lineID, req)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *ReceptionHandler) DeleteLine(c *gin.Context) {
	lineID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("Invalid id"))
		return
	}
	if err := h.svc.DeleteLine(c.Request.Context(), lineID); err != nil {
		c.Error(err)
		return
	}
	c.Status(http.StatusNoContent)
}
