package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/immxrtalbeast/roomrent/internal/api/http/converter"
	"github.com/immxrtalbeast/roomrent/internal/domain"
	"github.com/immxrtalbeast/roomrent/internal/service"
)

type ContractController struct {
	contracts service.ContractInteractor
	invoices  service.InvoiceInteractor
}

func NewContractController(contracts service.ContractInteractor, invoices service.InvoiceInteractor) *ContractController {
	return &ContractController{
		contracts: contracts,
		invoices:  invoices,
	}
}

func (c *ContractController) ListMine(ctx *gin.Context) {
	contracts, err := c.contracts.ListMine(ctx.Request.Context(), actorFrom(ctx))
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"contracts": converter.ContractsToApi(contracts)})
}

func (c *ContractController) Get(ctx *gin.Context) {
	id, ok := parseID(ctx, "contractID")
	if !ok {
		return
	}
	contract, err := c.contracts.Get(ctx.Request.Context(), actorFrom(ctx), id)
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"contract": converter.ContractToApi(contract)})
}

func (c *ContractController) Terminate(ctx *gin.Context) {
	id, ok := parseID(ctx, "contractID")
	if !ok {
		return
	}
	reason, ok := bindReason(ctx)
	if !ok {
		return
	}
	contract, err := c.contracts.Terminate(ctx.Request.Context(), actorFrom(ctx), id, reason)
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"contract": converter.ContractToApi(contract)})
}

func (c *ContractController) ListInvoices(ctx *gin.Context) {
	id, ok := parseID(ctx, "contractID")
	if !ok {
		return
	}
	invoices, err := c.invoices.ListByContract(ctx.Request.Context(), actorFrom(ctx), id)
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"invoices": converter.InvoicesToApi(invoices, c.invoices.Now())})
}

func (c *ContractController) PaymentSummary(ctx *gin.Context) {
	id, ok := parseID(ctx, "contractID")
	if !ok {
		return
	}
	summary, err := c.invoices.Summary(ctx.Request.Context(), actorFrom(ctx), id)
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"summary": summary})
}

func (c *ContractController) CreateInvoice(ctx *gin.Context) {
	id, ok := parseID(ctx, "contractID")
	if !ok {
		return
	}
	type CreateInvoiceRequest struct {
		InvoiceType domain.InvoiceType   `json:"invoice_type" binding:"required"`
		DueDate     time.Time            `json:"due_date" binding:"required"`
		Items       []domain.InvoiceItem `json:"items"`
	}
	var req CreateInvoiceRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		badRequest(ctx, "invalid request body", err)
		return
	}

	invoice, err := c.invoices.Create(ctx.Request.Context(), actorFrom(ctx), id, req.InvoiceType, req.DueDate, req.Items)
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, gin.H{"invoice": converter.InvoiceToApi(invoice, c.invoices.Now())})
}
