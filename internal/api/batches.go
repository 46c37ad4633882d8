package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.temporal.io/api/serviceerror"
	"go.temporal.io/sdk/client"

	"juriscope/internal/util"
	"juriscope/internal/workflows"
)

var errNoWorkflows = errors.New("workflow client not configured")

const batchIDPrefix = "ingest-batch-"

func (s *Server) handleStartBatch(c *gin.Context) {
	if s.temporal == nil {
		s.failWith(c, http.StatusServiceUnavailable, errNoWorkflows)
		return
	}
	var in workflows.IngestBatchInput
	if err := bindJSON(c, &in); err != nil {
		s.fail(c, err)
		return
	}
	if in.Limit < 0 {
		s.fail(c, fmt.Errorf("%w: limit must not be negative", errBadRequest))
		return
	}
	in = s.withBatchDefaults(in)
	id := batchIDPrefix + uuid.NewString()
	run, err := s.temporal.ExecuteWorkflow(c.Request.Context(), client.StartWorkflowOptions{
		ID:        id,
		TaskQueue: s.taskQueue,
	}, workflows.IngestBatchWorkflow, in)
	if err != nil {
		s.fail(c, fmt.Errorf("start batch workflow: %w", err))
		return
	}
	s.logger.Info("batch started", "workflow_id", run.GetID(), "run_id", run.GetRunID())
	c.JSON(http.StatusAccepted, gin.H{"workflow_id": run.GetID(), "run_id": run.GetRunID()})
}

func (s *Server) handleBatchProgress(c *gin.Context) {
	if s.temporal == nil {
		s.failWith(c, http.StatusServiceUnavailable, errNoWorkflows)
		return
	}
	id := c.Param("id")
	val, err := s.temporal.QueryWorkflow(c.Request.Context(), id, "", workflows.QueryGetBatchProgress)
	if err != nil {
		var nf *serviceerror.NotFound
		if errors.As(err, &nf) {
			err = fmt.Errorf("batch %s: %w", id, util.ErrNotFound)
		}
		s.fail(c, err)
		return
	}
	var progress workflows.BatchProgress
	if err := val.Get(&progress); err != nil {
		s.fail(c, fmt.Errorf("decode batch progress: %w", err))
		return
	}
	c.JSON(http.StatusOK, progress)
}

func (s *Server) withBatchDefaults(in workflows.IngestBatchInput) workflows.IngestBatchInput {
	if in.Limit == 0 && len(in.DocumentIDs) == 0 {
		in.Limit = s.batchDefaults.Limit
	}
	if in.DelaySeconds == 0 {
		in.DelaySeconds = s.batchDefaults.DelaySeconds
	}
	return in
}
