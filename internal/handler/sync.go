package handler

import (
	"net/http"

	"github.com/La-Clique-qui-Recycle/Recyclic-sub002/internal/syncer"

	"github.com/gin-gonic/gin"
)

type SyncHandler struct {
	svc          *syncer.Service
	reportsDir   string
	remotePrefix string
}

func NewSyncHandler(svc *syncer.Service, reportsDir, remotePrefix string) *SyncHandler {
	return &SyncHandler{svc: svc, reportsDir: reportsDir, remotePrefix: remotePrefix}
}

// Run godoc
// @Summary Triggers an on-demand mirror of the reports directory
// @Tags sync
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]interface{}
// @Router /v1/sync/run [post]
func (h *SyncHandler) Run(c *gin.Context) {
	uploaded, err := h.svc.SyncDirectory(c.Request.Context(), h.reportsDir, h.remotePrefix)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"uploaded": len(uploaded), "files": uploaded})
}
