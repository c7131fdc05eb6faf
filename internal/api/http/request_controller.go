package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/immxrtalbeast/roomrent/internal/api/http/converter"
	"github.com/immxrtalbeast/roomrent/internal/domain"
	"github.com/immxrtalbeast/roomrent/internal/service"
)

type RequestController struct {
	requests service.RequestInteractor
}

func NewRequestController(requests service.RequestInteractor) *RequestController {
	return &RequestController{requests: requests}
}

type decisionRequest struct {
	Reason string `json:"reason"`
}

func (c *RequestController) Create(ctx *gin.Context) {
	type CreateRequestRequest struct {
		PostID              string    `json:"post_id" binding:"required"`
		CoTenantIDs         []string  `json:"co_tenant_ids"`
		RequestedMoveInDate time.Time `json:"requested_move_in_date" binding:"required"`
		RequestedDuration   int       `json:"requested_duration"`
		Message             string    `json:"message"`
	}
	var req CreateRequestRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		badRequest(ctx, "invalid request body", err)
		return
	}
	postID, err := uuid.Parse(req.PostID)
	if err != nil {
		badRequest(ctx, "invalid post uuid", err)
		return
	}
	coTenants := make([]uuid.UUID, 0, len(req.CoTenantIDs))
	for _, raw := range req.CoTenantIDs {
		id, err := uuid.Parse(raw)
		if err != nil {
			badRequest(ctx, "invalid co-tenant uuid", err)
			return
		}
		coTenants = append(coTenants, id)
	}

	created, err := c.requests.Create(ctx.Request.Context(), actorFrom(ctx), postID, domain.RequestDraft{
		CoTenantIDs:         coTenants,
		RequestedMoveInDate: req.RequestedMoveInDate,
		RequestedDuration:   req.RequestedDuration,
		Message:             req.Message,
	})
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, gin.H{"request": converter.RequestToApi(created)})
}

func (c *RequestController) Get(ctx *gin.Context) {
	id, ok := parseID(ctx, "requestID")
	if !ok {
		return
	}
	req, err := c.requests.Get(ctx.Request.Context(), actorFrom(ctx), id)
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"request": converter.RequestToApi(req)})
}

func (c *RequestController) ListMine(ctx *gin.Context) {
	reqs, err := c.requests.ListMine(ctx.Request.Context(), actorFrom(ctx))
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"requests": converter.RequestsToApi(reqs)})
}

func (c *RequestController) OccupantApprove(ctx *gin.Context) {
	id, ok := parseID(ctx, "requestID")
	if !ok {
		return
	}
	req, err := c.requests.OccupantApprove(ctx.Request.Context(), actorFrom(ctx), id)
	c.respond(ctx, req, err)
}

func (c *RequestController) OccupantReject(ctx *gin.Context) {
	id, ok := parseID(ctx, "requestID")
	if !ok {
		return
	}
	reason, ok := bindReason(ctx)
	if !ok {
		return
	}
	req, err := c.requests.OccupantReject(ctx.Request.Context(), actorFrom(ctx), id, reason)
	c.respond(ctx, req, err)
}

func (c *RequestController) Approve(ctx *gin.Context) {
	id, ok := parseID(ctx, "requestID")
	if !ok {
		return
	}
	req, contract, err := c.requests.Approve(ctx.Request.Context(), actorFrom(ctx), id)
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{
		"request":  converter.RequestToApi(req),
		"contract": converter.ContractToApi(contract),
	})
}

func (c *RequestController) Reject(ctx *gin.Context) {
	id, ok := parseID(ctx, "requestID")
	if !ok {
		return
	}
	reason, ok := bindReason(ctx)
	if !ok {
		return
	}
	req, err := c.requests.Reject(ctx.Request.Context(), actorFrom(ctx), id, reason)
	c.respond(ctx, req, err)
}

func (c *RequestController) Cancel(ctx *gin.Context) {
	id, ok := parseID(ctx, "requestID")
	if !ok {
		return
	}
	reason, ok := bindReason(ctx)
	if !ok {
		return
	}
	req, err := c.requests.Cancel(ctx.Request.Context(), actorFrom(ctx), id, reason)
	c.respond(ctx, req, err)
}

func (c *RequestController) respond(ctx *gin.Context, req *domain.Request, err error) {
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"request": converter.RequestToApi(req)})
}

// bindReason reads an optional {"reason": "..."} body.
func bindReason(ctx *gin.Context) (string, bool) {
	var body decisionRequest
	if ctx.Request.ContentLength == 0 {
		return "", true
	}
	if err := ctx.ShouldBindJSON(&body); err != nil {
		badRequest(ctx, "invalid request body", err)
		return "", false
	}
	return body.Reason, true
}
