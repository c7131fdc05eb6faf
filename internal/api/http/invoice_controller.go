package http

import (
	"io"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/immxrtalbeast/roomrent/internal/api/http/converter"
	"github.com/immxrtalbeast/roomrent/internal/service"
	"github.com/immxrtalbeast/roomrent/lib/logger/sl"
)

const (
	signatureHeader     = "X-Payment-Signature"
	maxCallbackBodySize = 64 << 10
)

type InvoiceController struct {
	invoices service.InvoiceInteractor
	log      *slog.Logger
}

func NewInvoiceController(invoices service.InvoiceInteractor, log *slog.Logger) *InvoiceController {
	if log == nil {
		log = slog.Default()
	}
	return &InvoiceController{
		invoices: invoices,
		log:      log,
	}
}

func (c *InvoiceController) Get(ctx *gin.Context) {
	id, ok := parseID(ctx, "invoiceID")
	if !ok {
		return
	}
	invoice, err := c.invoices.Get(ctx.Request.Context(), actorFrom(ctx), id)
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"invoice": converter.InvoiceToApi(invoice, c.invoices.Now())})
}

// PaymentCallback is called by the payment gateway, not by users. The body is
// authenticated by its HMAC signature instead of a bearer token.
func (c *InvoiceController) PaymentCallback(ctx *gin.Context) {
	body, err := io.ReadAll(io.LimitReader(ctx.Request.Body, maxCallbackBodySize))
	if err != nil {
		c.log.Warn("failed to read payment callback", sl.Err(err))
		badRequest(ctx, "unreadable body", err)
		return
	}

	invoice, err := c.invoices.HandlePaymentCallback(ctx.Request.Context(), body, ctx.GetHeader(signatureHeader))
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"invoice": converter.InvoiceToApi(invoice, c.invoices.Now())})
}
