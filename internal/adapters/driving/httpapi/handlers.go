package httpapi

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/DIVT313/forensic-agent/internal/core/domain"
)

func (s *Server) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// handleList returns the listing artifact.
func (s *Server) handleList(c *gin.Context) {
	s.serveArtifact(c, domain.ListingName)
}

// handleArtifact streams one staged artifact.
func (s *Server) handleArtifact(c *gin.Context) {
	s.serveArtifact(c, c.Param("name"))
}

func (s *Server) serveArtifact(c *gin.Context, name string) {
	rc, err := s.retrieval.Open(c.Request.Context(), name)
	if err != nil {
		handleError(c, err)
		return
	}
	defer rc.Close()

	c.DataFromReader(http.StatusOK, -1, s.retrieval.Describe(name), rc, nil)
}

// handleLive reads a source directly without staging.
func (s *Server) handleLive(c *gin.Context) {
	kind, err := domain.ParseSourceKind(c.Param("kind"))
	if err != nil {
		handleError(c, err)
		return
	}

	rows, err := s.retrieval.Live(c.Request.Context(), kind)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, rows)
}

func (s *Server) handleInsert(c *gin.Context) {
	body, _ := c.GetRawData()
	handleError(c, s.retrieval.Insert(c.Request.Context(), wildcardName(c), body))
}

func (s *Server) handleUpdate(c *gin.Context) {
	body, _ := c.GetRawData()
	handleError(c, s.retrieval.Update(c.Request.Context(), wildcardName(c), body))
}

func (s *Server) handleDelete(c *gin.Context) {
	handleError(c, s.retrieval.Delete(c.Request.Context(), wildcardName(c)))
}

func wildcardName(c *gin.Context) string {
	return strings.TrimPrefix(c.Param("name"), "/")
}

func handleError(c *gin.Context, err error) {
	appErr := MapError(err)
	if appErr == nil {
		c.Status(http.StatusNoContent)
		return
	}
	if appErr.Code == http.StatusMethodNotAllowed {
		c.Header("Allow", "GET, HEAD")
	}
	c.JSON(appErr.Code, gin.H{"error": appErr.Message})
}
