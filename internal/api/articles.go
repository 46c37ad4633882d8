package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"juriscope/internal/lifecycle"
	"juriscope/internal/models"
)

type placeRequest struct {
	Actor string `json:"actor"`
}

func (s *Server) handleGetArticle(c *gin.Context) {
	a, err := s.store.GetArticle(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, a)
}

// handlePublish answers 207 when the article was published but general
// placement failed; the client retries with /place.
func (s *Server) handlePublish(c *gin.Context) {
	var opts lifecycle.PublishOptions
	if err := bindJSON(c, &opts); err != nil {
		s.fail(c, err)
		return
	}
	res, err := s.lifecycle.PublishArticle(c.Request.Context(), c.Param("id"), opts)
	if err != nil && res.Article.ID != "" {
		status := statusFor(err)
		c.JSON(http.StatusMultiStatus, gin.H{"article": res.Article, "error": toAPIError(status, err)})
		return
	}
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (s *Server) handlePlace(c *gin.Context) {
	var req placeRequest
	if err := bindJSON(c, &req); err != nil {
		s.fail(c, err)
		return
	}
	res, err := s.lifecycle.PlaceInGeneral(c.Request.Context(), c.Param("id"), req.Actor)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

type generalEntry struct {
	Position int            `json:"position"`
	Article  models.Article `json:"article"`
}

func (s *Server) handleGeneral(c *gin.Context) {
	arts, err := s.store.ListGeneralArticles(c.Request.Context(), "")
	if err != nil {
		s.fail(c, err)
		return
	}
	items := make([]generalEntry, 0, len(arts))
	for _, a := range arts {
		pos := 0
		if a.GeneralPosition != nil {
			pos = *a.GeneralPosition
		}
		items = append(items, generalEntry{Position: pos, Article: a})
	}
	c.JSON(http.StatusOK, gin.H{"items": items, "slots": models.GeneralSlots})
}
