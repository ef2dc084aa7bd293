package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"aulachat/internal/store"
)

// RatingHandlers provides HTTP handlers for room rating endpoints.
type RatingHandlers struct {
	store store.Store
	log   *zerolog.Logger
}

// NewRatingHandlers creates a new rating handlers instance.
func NewRatingHandlers(st store.Store, logger *zerolog.Logger) *RatingHandlers {
	return &RatingHandlers{
		store: st,
		log:   logger,
	}
}

// CreateRatingRequest represents the create rating request body.
type CreateRatingRequest struct {
	Rating  int    `json:"rating" binding:"required,min=1,max=5"`
	Comment string `json:"comment" binding:"required"`
}

// RatingResponse represents a rating in API responses.
type RatingResponse struct {
	ID        int64  `json:"id"`
	RoomID    int64  `json:"room_id"`
	UserID    int64  `json:"user_id"`
	Username  string `json:"username"`
	Rating    int    `json:"rating"`
	Comment   string `json:"comment"`
	CreatedAt string `json:"created_at"`
}

func ratingResponse(r *store.Rating) RatingResponse {
	return RatingResponse{
		ID:        r.ID,
		RoomID:    r.RoomID,
		UserID:    r.UserID,
		Username:  r.Username,
		Rating:    r.Rating,
		Comment:   r.Comment,
		CreatedAt: r.CreatedAt.Format(time.RFC3339),
	}
}

// CreateRating handles submitting a room rating. Each user may rate a room
// once.
// POST /api/rooms/:id/ratings
func (h *RatingHandlers) CreateRating(c *gin.Context) {
	ident, ok := currentIdentity(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
		return
	}

	roomID, ok := roomIDParam(c)
	if !ok {
		return
	}

	var req CreateRatingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Debug().Err(err).Msg("invalid rating request")
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "rating must be 1-5 and comment is required"})
		return
	}

	if _, err := h.store.GetRoomByID(c.Request.Context(), roomID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "room not found"})
			return
		}
		h.log.Error().Err(err).Int64("room_id", roomID).Msg("failed to get room")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}

	rating, err := h.store.CreateRating(c.Request.Context(), &store.Rating{
		RoomID:   roomID,
		UserID:   ident.UserID,
		Username: ident.Username,
		Rating:   req.Rating,
		Comment:  req.Comment,
	})
	if err != nil {
		if errors.Is(err, store.ErrConflict) {
			c.JSON(http.StatusConflict, ErrorResponse{Error: "you already rated this room"})
			return
		}
		h.log.Error().Err(err).Int64("room_id", roomID).Int64("user_id", ident.UserID).Msg("failed to create rating")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}

	h.log.Info().Int64("room_id", roomID).Int64("user_id", ident.UserID).Int("rating", req.Rating).Msg("rating created")
	c.JSON(http.StatusCreated, ratingResponse(rating))
}

// ListRatings handles listing a room's ratings, newest first.
// GET /api/rooms/:id/ratings
func (h *RatingHandlers) ListRatings(c *gin.Context) {
	roomID, ok := roomIDParam(c)
	if !ok {
		return
	}

	ratings, err := h.store.ListRatings(c.Request.Context(), roomID)
	if err != nil {
		h.log.Error().Err(err).Int64("room_id", roomID).Msg("failed to list ratings")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}

	resp := make([]RatingResponse, 0, len(ratings))
	for _, r := range ratings {
		resp = append(resp, ratingResponse(r))
	}
	c.JSON(http.StatusOK, resp)
}
