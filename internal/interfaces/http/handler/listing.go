package handler

import (
	"context"
	"net/http"

	appintegration "github.com/erp/marketsync/internal/application/integration"
	"github.com/erp/marketsync/internal/domain/integration"
	ginlogger "github.com/erp/marketsync/internal/infrastructure/logger"
	"github.com/erp/marketsync/internal/interfaces/http/dto"
	"github.com/erp/marketsync/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ListingPreviewer answers read-only listing questions
type ListingPreviewer interface {
	Classify(ctx context.Context, head integration.SyncHead) (*appintegration.ProductClassification, error)
	PreviewCreate(ctx context.Context, head integration.SyncHead) (*appintegration.CreatePreview, error)
}

// ListingQueue queues sync operations and reports on the queue
type ListingQueue interface {
	EnqueueCreate(ctx context.Context, head integration.SyncHead) (integration.SyncOperation, error)
	Stats(ctx context.Context) (*appintegration.SyncStats, error)
}

// SyncRunner runs one sync batch on demand
type SyncRunner interface {
	RunOnce(ctx context.Context) (*appintegration.SyncReport, error)
}

// ListingHandler handles listing sync HTTP requests
type ListingHandler struct {
	BaseHandler
	previewer ListingPreviewer
	queue     ListingQueue
	runner    SyncRunner
}

// NewListingHandler creates a new listing handler. runner may be nil when
// the scheduler is disabled; the run endpoint then answers 409.
func NewListingHandler(previewer ListingPreviewer, queue ListingQueue, runner SyncRunner, logger *zap.Logger) *ListingHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ListingHandler{
		BaseHandler: BaseHandler{logger: logger},
		previewer:   previewer,
		queue:       queue,
		runner:      runner,
	}
}

// EnqueueResponse is returned when a create operation is queued
type EnqueueResponse struct {
	OperationID string               `json:"operation_id"`
	Head        integration.SyncHead `json:"head"`
	Type        string               `json:"type"`
}

// listingURI binds the :model and :id path parameters
type listingURI struct {
	Model string `uri:"model" binding:"required,oneof=product.product product.template"`
	ID    int64  `uri:"id" binding:"required,gt=0"`
}

// parseHead reads the sync head from the :model and :id path parameters
func (h *ListingHandler) parseHead(c *gin.Context) (integration.SyncHead, bool) {
	var uri listingURI
	if err := c.ShouldBindUri(&uri); err != nil {
		if details, ok := middleware.ValidationDetails(err); ok {
			c.JSON(http.StatusBadRequest, dto.NewValidationErrorResponse("Invalid listing path", getRequestID(c), details))
			return integration.SyncHead{}, false
		}
		h.BadRequest(c, "Invalid record ID")
		return integration.SyncHead{}, false
	}
	head := integration.SyncHead{ModelName: integration.ModelName(uri.Model), RecordID: uri.ID}
	if err := head.Validate(); err != nil {
		h.HandleError(c, err)
		return integration.SyncHead{}, false
	}
	return head, true
}

// GetClassification returns the classifier's view of a record
// GET /api/v1/listings/:model/:id/classification
func (h *ListingHandler) GetClassification(c *gin.Context) {
	head, ok := h.parseHead(c)
	if !ok {
		return
	}

	result, err := h.previewer.Classify(c.Request.Context(), head)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// GetCreatePayload builds the create payload without queuing it.
// A policy rejection is a successful answer with rejected=true.
// GET /api/v1/listings/:model/:id/create-payload
func (h *ListingHandler) GetCreatePayload(c *gin.Context) {
	head, ok := h.parseHead(c)
	if !ok {
		return
	}

	preview, err := h.previewer.PreviewCreate(c.Request.Context(), head)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, preview)
}

// EnqueueSync queues a create operation for a record
// POST /api/v1/listings/:model/:id/sync
func (h *ListingHandler) EnqueueSync(c *gin.Context) {
	head, ok := h.parseHead(c)
	if !ok {
		return
	}

	op, err := h.queue.EnqueueCreate(c.Request.Context(), head)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Accepted(c, EnqueueResponse{
		OperationID: op.ID.String(),
		Head:        op.Head,
		Type:        op.Type.String(),
	})
}

// GetStats returns the sync queue size per status
// GET /api/v1/sync/stats
func (h *ListingHandler) GetStats(c *gin.Context) {
	stats, err := h.queue.Stats(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, stats)
}

// RunSync processes one batch of pending operations now
// POST /api/v1/sync/run
func (h *ListingHandler) RunSync(c *gin.Context) {
	if h.runner == nil {
		h.HandleError(c, errSchedulerDisabled)
		return
	}

	report, err := h.runner.RunOnce(c.Request.Context())
	if report == nil && err != nil {
		h.HandleError(c, err)
		return
	}
	if err != nil {
		ginlogger.GetGinLogger(c, h.logger).Warn("Sync run finished with bookkeeping errors", zap.Error(err))
	}
	h.Success(c, report)
}
