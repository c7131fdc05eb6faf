package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/immxrtalbeast/roomrent/internal/api/http/converter"
	"github.com/immxrtalbeast/roomrent/internal/domain"
	"github.com/immxrtalbeast/roomrent/internal/repository"
	"github.com/immxrtalbeast/roomrent/internal/service"
)

type ListingController struct {
	listing    service.ListingInteractor
	visibility service.VisibilityInteractor
	requests   service.RequestInteractor
}

func NewListingController(listing service.ListingInteractor, visibility service.VisibilityInteractor, requests service.RequestInteractor) *ListingController {
	return &ListingController{
		listing:    listing,
		visibility: visibility,
		requests:   requests,
	}
}

func (c *ListingController) CreateRoom(ctx *gin.Context) {
	type CreateRoomRequest struct {
		Title        string `json:"title" binding:"required"`
		MaxOccupancy int    `json:"max_occupancy" binding:"required"`
		MonthlyRent  int64  `json:"monthly_rent"`
		Deposit      int64  `json:"deposit"`
	}
	var req CreateRoomRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		badRequest(ctx, "invalid request body", err)
		return
	}

	room, err := c.listing.CreateRoom(ctx.Request.Context(), actorFrom(ctx), req.Title, req.MaxOccupancy, req.MonthlyRent, req.Deposit)
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, gin.H{"room": converter.RoomToApi(room)})
}

func (c *ListingController) GetRoom(ctx *gin.Context) {
	roomID, ok := parseID(ctx, "roomID")
	if !ok {
		return
	}

	room, err := c.listing.GetRoom(ctx.Request.Context(), roomID)
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"room": converter.RoomToApi(room)})
}

func (c *ListingController) CreatePost(ctx *gin.Context) {
	roomID, ok := parseID(ctx, "roomID")
	if !ok {
		return
	}
	type CreatePostRequest struct {
		PostType domain.PostType `json:"post_type" binding:"required"`
		Title    string          `json:"title"`
	}
	var req CreatePostRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		badRequest(ctx, "invalid request body", err)
		return
	}

	post, err := c.listing.CreatePost(ctx.Request.Context(), actorFrom(ctx), roomID, req.PostType, req.Title)
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, gin.H{"post": converter.PostToApi(post)})
}

func (c *ListingController) SetPostStatus(ctx *gin.Context) {
	postID, ok := parseID(ctx, "postID")
	if !ok {
		return
	}
	type SetPostStatusRequest struct {
		Status domain.PostStatus `json:"status" binding:"required"`
	}
	var req SetPostStatusRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		badRequest(ctx, "invalid request body", err)
		return
	}

	post, err := c.listing.SetPostStatus(ctx.Request.Context(), actorFrom(ctx), postID, req.Status)
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"post": converter.PostToApi(post)})
}

// ListPosts is the public listing. Only posts the resolver lets through are
// returned.
func (c *ListingController) ListPosts(ctx *gin.Context) {
	var filter repository.PostFilter
	if raw := ctx.Query("room_id"); raw != "" {
		roomID, err := uuid.Parse(raw)
		if err != nil {
			badRequest(ctx, "invalid room_id", nil)
			return
		}
		filter.RoomID = roomID
	}

	posts, err := c.visibility.ListVisible(ctx.Request.Context(), filter)
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"posts": converter.PostsToApi(posts)})
}

func (c *ListingController) PostVisibility(ctx *gin.Context) {
	postID, ok := parseID(ctx, "postID")
	if !ok {
		return
	}

	post, verdict, err := c.visibility.ResolvePost(ctx.Request.Context(), postID)
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"post": converter.PostWithVisibility(post, verdict)})
}

func (c *ListingController) ReconcileRoom(ctx *gin.Context) {
	roomID, ok := parseID(ctx, "roomID")
	if !ok {
		return
	}

	actor := actorFrom(ctx)
	if !actor.IsAdmin() {
		room, err := c.listing.GetRoom(ctx.Request.Context(), roomID)
		if err != nil {
			writeError(ctx, err)
			return
		}
		if room.LandlordID != actor.ID {
			writeError(ctx, domain.ErrNotRoomLandlord)
			return
		}
	}

	verdicts, err := c.visibility.ReconcileRoom(ctx.Request.Context(), roomID)
	if err != nil {
		writeError(ctx, err)
		return
	}
	posts := make([]*converter.PostResponse, 0, len(verdicts))
	for _, v := range verdicts {
		posts = append(posts, converter.PostWithVisibility(v.Post, v.Visibility))
	}
	ctx.JSON(http.StatusOK, gin.H{"posts": posts})
}

func (c *ListingController) ListRoomRequests(ctx *gin.Context) {
	roomID, ok := parseID(ctx, "roomID")
	if !ok {
		return
	}

	reqs, err := c.requests.ListForRoom(ctx.Request.Context(), actorFrom(ctx), roomID)
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"requests": converter.RequestsToApi(reqs)})
}
