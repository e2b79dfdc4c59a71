package handler

import (
	"net/http"
	"os"
	"path/filepath"

	"github.com/La-Clique-qui-Recycle/Recyclic-sub002/internal/apierror"
	"github.com/La-Clique-qui-Recycle/Recyclic-sub002/internal/token"

	"github.com/gin-gonic/gin"
)

type ReportsHandler struct {
	reportsDir string
	tokens     *token.Issuer
}

func NewReportsHandler(reportsDir string, tokens *token.Issuer) *ReportsHandler {
	return &ReportsHandler{reportsDir: reportsDir, tokens: tokens}
}

// Download godoc
// @Summary Serves a report artifact to holders of a valid download token
// @Tags reports
// @Produce octet-stream
// @Security BearerAuth
// @Param filename path string true "Artifact filename"
// @Param token query string true "Signed download token"
// @Success 200 {file} file
// @Failure 401 {object} apierror.APIError
// @Router /v1/reports/{filename} [get]
func (h *ReportsHandler) Download(c *gin.Context) {
	// Strip any path components: artifacts live flat in the reports dir.
	filename := filepath.Base(c.Param("filename"))

	tok := c.Query("token")
	if tok == "" || !h.tokens.Verify(tok, filename) {
		// Deliberately generic: a rejected token must not reveal whether
		// the underlying file exists.
		c.JSON(http.StatusUnauthorized, apierror.New("Invalid or expired download token"))
		return
	}

	path := filepath.Join(h.reportsDir, filename)
	if _, err := os.Stat(path); err != nil {
		// Token was valid, so disclosing absence is safe here: the artifact
		// was swept by retention after issuance.
		c.JSON(http.StatusNotFound, apierror.New("Report no longer available"))
		return
	}
	c.FileAttachment(path, filename)
}
