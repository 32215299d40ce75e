package rest

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/sheetfill/engine/internal/application/queue"
	"github.com/sheetfill/engine/internal/domain/repository"
	"github.com/sheetfill/engine/internal/infrastructure/logger"
	"github.com/sheetfill/engine/pkg/models"
)

// SheetHandlers serves the fill engine's REST ingress: enqueueing a cell
// edit, a manual operator trigger, or a bulk row import, and polling the
// per-cell processing status the dispatcher publishes as it works.
type SheetHandlers struct {
	queue  *queue.Queue
	status repository.StatusRepository
	log    *logger.Logger
}

// NewSheetHandlers constructs a SheetHandlers.
func NewSheetHandlers(q *queue.Queue, status repository.StatusRepository, log *logger.Logger) *SheetHandlers {
	return &SheetHandlers{queue: q, status: status, log: log}
}

type cellEditRequest struct {
	RowIndex int    `json:"rowIndex" binding:"min=0"`
	ColIndex int    `json:"colIndex" binding:"min=0"`
	Content  string `json:"content" binding:"required"`
}

// HandleEnqueueCellEdit implements enqueueCellEdit:
// POST /api/v1/sheets/:id/cells.
func (h *SheetHandlers) HandleEnqueueCellEdit(c *gin.Context) {
	sheetID, ok := getParam(c, "id")
	if !ok {
		return
	}

	var req cellEditRequest
	if err := bindJSON(c, &req); err != nil {
		return
	}

	eventID, err := h.queue.EnqueueCellEdit(c.Request.Context(), sheetID, req.RowIndex, req.ColIndex, req.Content)
	if err != nil {
		respondAPIErrorWithRequestID(c, err)
		return
	}

	respondJSON(c, http.StatusAccepted, gin.H{"eventId": eventID})
}

type manualTriggerRequest struct {
	RowIndex    int                    `json:"rowIndex" binding:"min=0"`
	ColIndex    int                    `json:"colIndex" binding:"min=0"`
	TriggerType string                 `json:"triggerType" binding:"required"`
	Parameters  map[string]interface{} `json:"parameters"`
}

// HandleEnqueueManualTrigger implements enqueueManualTrigger:
// POST /api/v1/sheets/:id/triggers.
func (h *SheetHandlers) HandleEnqueueManualTrigger(c *gin.Context) {
	sheetID, ok := getParam(c, "id")
	if !ok {
		return
	}

	var req manualTriggerRequest
	if err := bindJSON(c, &req); err != nil {
		return
	}

	eventID, err := h.queue.EnqueueManualTrigger(c.Request.Context(), sheetID, req.RowIndex, req.ColIndex, req.TriggerType, req.Parameters)
	if err != nil {
		respondAPIErrorWithRequestID(c, err)
		return
	}

	respondJSON(c, http.StatusAccepted, gin.H{"eventId": eventID})
}

type bulkRowsRequest struct {
	Rows [][]string `json:"rows" binding:"required,min=1"`
}

// HandleBulkCreateRows implements bulkCreateRows:
// POST /api/v1/sheets/:id/rows:bulk.
func (h *SheetHandlers) HandleBulkCreateRows(c *gin.Context) {
	sheetID, ok := getParam(c, "id")
	if !ok {
		return
	}

	var req bulkRowsRequest
	if err := bindJSON(c, &req); err != nil {
		return
	}

	if err := h.queue.BulkCreateRows(c.Request.Context(), sheetID, req.Rows); err != nil {
		respondAPIErrorWithRequestID(c, err)
		return
	}

	respondJSON(c, http.StatusAccepted, gin.H{"rowsCreated": len(req.Rows)})
}

// HandleGetCellStatus polls a single cell's processing status:
// GET /api/v1/sheets/:id/cells/:row/:col/status.
func (h *SheetHandlers) HandleGetCellStatus(c *gin.Context) {
	sheetID, ok := getParam(c, "id")
	if !ok {
		return
	}
	rowIndex := parseIntQuery(c.Param("row"), -1)
	colIndex := parseIntQuery(c.Param("col"), -1)
	if rowIndex < 0 || colIndex < 0 {
		respondError(c, http.StatusBadRequest, "row and col must be non-negative integers")
		return
	}

	key := models.CellKey{SheetID: sheetID, RowIndex: rowIndex, ColIndex: colIndex}
	status, err := h.status.GetStatus(c.Request.Context(), key)
	if err != nil {
		respondAPIErrorWithRequestID(c, err)
		return
	}

	respondJSON(c, http.StatusOK, status)
}

// HandleListRowStatus polls every column's processing status for one row:
// GET /api/v1/sheets/:id/rows/:row/status.
func (h *SheetHandlers) HandleListRowStatus(c *gin.Context) {
	sheetID, ok := getParam(c, "id")
	if !ok {
		return
	}
	rowIndex := parseIntQuery(c.Param("row"), -1)
	if rowIndex < 0 {
		respondError(c, http.StatusBadRequest, "row must be a non-negative integer")
		return
	}

	statuses, err := h.status.ListRowStatus(c.Request.Context(), sheetID, rowIndex)
	if err != nil {
		respondAPIErrorWithRequestID(c, err)
		return
	}

	respondJSON(c, http.StatusOK, statuses)
}
