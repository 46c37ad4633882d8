package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"juriscope/internal/ingest"
	"juriscope/internal/integrity"
	"juriscope/internal/lifecycle"
	"juriscope/internal/reconcile"
	"juriscope/internal/util"
)

type curateRequest struct {
	Action         string `json:"action" binding:"required"`
	Actor          string `json:"actor"`
	Reason         string `json:"reason"`
	CaseNumber     string `json:"case_number"`
	ReportingJudge string `json:"reporting_judge"`
	Chamber        string `json:"chamber"`
	DocketNumber   string `json:"docket_number"`
	Draft          *struct {
		Title   string `json:"title"`
		Content string `json:"content"`
		Summary string `json:"summary"`
	} `json:"draft"`
}

type archiveRequest struct {
	Actor  string `json:"actor"`
	Reason string `json:"reason"`
}

type analyzeRequest struct {
	Model string `json:"model"`
}

func bindJSON(c *gin.Context, v any) error {
	if c.Request.ContentLength == 0 {
		return nil
	}
	if err := c.ShouldBindJSON(v); err != nil {
		return fmt.Errorf("%w: %v", errBadRequest, err)
	}
	return nil
}

func (s *Server) handleIntake(c *gin.Context) {
	var in ingest.ScrapedDocument
	if err := c.ShouldBindJSON(&in); err != nil {
		s.fail(c, fmt.Errorf("%w: %v", errBadRequest, err))
		return
	}
	doc, err := s.processor.Intake(c.Request.Context(), in)
	if errors.Is(err, util.ErrDuplicateDocument) {
		c.JSON(http.StatusOK, gin.H{"document": doc, "duplicate": true})
		return
	}
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"document": doc, "duplicate": false})
}

func (s *Server) handleGetDocument(c *gin.Context) {
	doc, err := s.store.GetDocument(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, doc)
}

func (s *Server) handleDocumentAudit(c *gin.Context) {
	id := c.Param("id")
	if _, err := s.store.GetDocument(c.Request.Context(), id); err != nil {
		s.fail(c, err)
		return
	}
	entries, err := s.store.ListAudit(c.Request.Context(), "document", id)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": entries})
}

func (s *Server) handleCurate(c *gin.Context) {
	var req curateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.fail(c, fmt.Errorf("%w: %v", errBadRequest, err))
		return
	}
	action := lifecycle.Action(req.Action)
	if action != lifecycle.ActionApprove && action != lifecycle.ActionReject {
		s.fail(c, fmt.Errorf("%w: unknown action %q", errBadRequest, req.Action))
		return
	}
	in := lifecycle.CurateInput{
		Action: action,
		Actor:  req.Actor,
		Reason: req.Reason,
		Fields: reconcile.Fields{
			CaseNumber:     req.CaseNumber,
			ReportingJudge: req.ReportingJudge,
			Chamber:        req.Chamber,
			DocketNumber:   req.DocketNumber,
		},
	}
	if req.Draft != nil {
		in.Draft = &lifecycle.Draft{Title: req.Draft.Title, Content: req.Draft.Content, Summary: req.Draft.Summary}
	}
	res, err := s.lifecycle.Curate(c.Request.Context(), c.Param("id"), in)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (s *Server) handleArchive(c *gin.Context) {
	var req archiveRequest
	if err := bindJSON(c, &req); err != nil {
		s.fail(c, err)
		return
	}
	doc, err := s.lifecycle.Archive(c.Request.Context(), c.Param("id"), req.Actor, req.Reason)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, doc)
}

// handleAnalyze runs the analysis pipeline for one document in the request.
// Terminal pipeline failures come back as a failed outcome with 200.
func (s *Server) handleAnalyze(c *gin.Context) {
	var req analyzeRequest
	if err := bindJSON(c, &req); err != nil {
		s.fail(c, err)
		return
	}
	id := c.Param("id")
	if _, err := s.store.GetDocument(c.Request.Context(), id); err != nil {
		s.fail(c, err)
		return
	}
	out, err := s.processor.ProcessDocument(c.Request.Context(), id, req.Model)
	if err != nil && ingest.Retryable(err) {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (s *Server) handleVerify(c *gin.Context) {
	if s.verifier == nil {
		s.failWith(c, http.StatusServiceUnavailable, errors.New("integrity verifier not configured"))
		return
	}
	rep, err := s.verifier.Verify(c.Request.Context(), c.Param("id"))
	if integrity.IsMismatch(err) {
		c.JSON(http.StatusConflict, gin.H{"report": rep, "error": toAPIError(http.StatusConflict, err)})
		return
	}
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"report": rep})
}
