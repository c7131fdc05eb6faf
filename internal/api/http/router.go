package http

import (
	"log/slog"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/immxrtalbeast/roomrent/internal/domain"
)

type RouterConfig struct {
	AllowedOrigins []string
	JWTSecret      string
	Log            *slog.Logger
}

type Controllers struct {
	Listings  *ListingController
	Requests  *RequestController
	Contracts *ContractController
	Invoices  *InvoiceController
	Events    *EventsController
}

func SetupRouter(cfg RouterConfig, c Controllers) *gin.Engine {
	if cfg.Log == nil {
		cfg.Log = slog.Default()
	}

	router := gin.Default()
	config := cors.DefaultConfig()
	config.AllowOrigins = cfg.AllowedOrigins
	config.AllowCredentials = true
	config.AllowHeaders = []string{
		"Authorization",
		"Content-Type",
		"Origin",
		"Accept",
	}
	config.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"}
	router.Use(cors.New(config))
	router.GET("/healthz", func(ctx *gin.Context) {
		ctx.JSON(200, gin.H{"status": "ok"})
	})

	api := router.Group("/api")

	if c.Listings != nil {
		api.GET("/posts", c.Listings.ListPosts)
		api.GET("/posts/:postID/visibility", c.Listings.PostVisibility)
	}
	if c.Invoices != nil {
		api.POST("/payments/callback", c.Invoices.PaymentCallback)
	}

	authed := api.Group("", RequireActor(cfg.JWTSecret, cfg.Log))
	landlords := RequireRole(domain.RoleLandlord)

	if c.Listings != nil {
		rooms := authed.Group("/rooms")
		rooms.POST("", landlords, c.Listings.CreateRoom)
		rooms.GET("/:roomID", c.Listings.GetRoom)
		rooms.POST("/:roomID/posts", landlords, c.Listings.CreatePost)
		rooms.GET("/:roomID/requests", landlords, c.Listings.ListRoomRequests)
		rooms.POST("/:roomID/reconcile", landlords, c.Listings.ReconcileRoom)
		authed.PATCH("/posts/:postID/status", c.Listings.SetPostStatus)
	}

	if c.Requests != nil {
		requests := authed.Group("/requests")
		requests.POST("", c.Requests.Create)
		requests.GET("/mine", c.Requests.ListMine)
		requests.GET("/:requestID", c.Requests.Get)
		requests.POST("/:requestID/occupant-approve", c.Requests.OccupantApprove)
		requests.POST("/:requestID/occupant-reject", c.Requests.OccupantReject)
		requests.POST("/:requestID/approve", landlords, c.Requests.Approve)
		requests.POST("/:requestID/reject", landlords, c.Requests.Reject)
		requests.POST("/:requestID/cancel", c.Requests.Cancel)
	}

	if c.Contracts != nil {
		contracts := authed.Group("/contracts")
		contracts.GET("/mine", c.Contracts.ListMine)
		contracts.GET("/:contractID", c.Contracts.Get)
		contracts.POST("/:contractID/terminate", c.Contracts.Terminate)
		contracts.GET("/:contractID/invoices", c.Contracts.ListInvoices)
		contracts.POST("/:contractID/invoices", landlords, c.Contracts.CreateInvoice)
		contracts.GET("/:contractID/payment-summary", c.Contracts.PaymentSummary)
	}

	if c.Invoices != nil {
		authed.GET("/invoices/:invoiceID", c.Invoices.Get)
	}

	if c.Events != nil {
		authed.GET("/events/ws", c.Events.Stream)
	}

	return router
}
