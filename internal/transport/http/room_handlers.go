package http

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"aulachat/internal/auth"
	"aulachat/internal/core"
	"aulachat/internal/store"
)

// RoomHandlers provides HTTP handlers for room management and history.
type RoomHandlers struct {
	store  store.Store
	engine *core.Engine
	log    *zerolog.Logger
}

// NewRoomHandlers creates a new room handlers instance.
func NewRoomHandlers(st store.Store, engine *core.Engine, logger *zerolog.Logger) *RoomHandlers {
	return &RoomHandlers{
		store:  st,
		engine: engine,
		log:    logger,
	}
}

// CreateRoomRequest represents the create room request body.
type CreateRoomRequest struct {
	Name        string `json:"name" binding:"required,min=1,max=64"`
	Description string `json:"description"`
	IsPrivate   bool   `json:"is_private"`
	Password    string `json:"password"`
}

// JoinRoomRequest represents the join room request body.
type JoinRoomRequest struct {
	Password string `json:"password"`
}

// RoomResponse represents a room in API responses.
type RoomResponse struct {
	ID            int64   `json:"id"`
	Name          string  `json:"name"`
	Description   string  `json:"description"`
	IsPrivate     bool    `json:"is_private"`
	OwnerID       int64   `json:"owner_id"`
	AverageRating float64 `json:"average_rating"`
	CreatedAt     string  `json:"created_at"`
}

// MessageResponse represents a persisted message in API responses.
type MessageResponse struct {
	ID         int64  `json:"id"`
	RoomID     int64  `json:"room_id"`
	SenderID   int64  `json:"sender_id"`
	SenderName string `json:"sender_name"`
	SenderRole string `json:"sender_role"`
	Body       string `json:"body"`
	CreatedAt  string `json:"created_at"`
}

func roomResponse(room *store.Room) RoomResponse {
	return RoomResponse{
		ID:            room.ID,
		Name:          room.Name,
		Description:   room.Description,
		IsPrivate:     room.IsPrivate,
		OwnerID:       room.OwnerID,
		AverageRating: room.AverageRating,
		CreatedAt:     room.CreatedAt.Format(time.RFC3339),
	}
}

func roomIDParam(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid room id"})
		return 0, false
	}
	return id, true
}

// CreateRoom handles room creation. The creator becomes the owner and a
// persisted member.
// POST /api/rooms
func (h *RoomHandlers) CreateRoom(c *gin.Context) {
	ident, ok := currentIdentity(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
		return
	}

	var req CreateRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Debug().Err(err).Msg("invalid create room request")
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	if req.IsPrivate && req.Password == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "private rooms require a password"})
		return
	}

	var passwordHash string
	if req.IsPrivate {
		hash, err := auth.HashPassword(req.Password)
		if err != nil {
			h.log.Error().Err(err).Msg("failed to hash room password")
			c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
			return
		}
		passwordHash = hash
	}

	room, err := h.store.CreateRoom(c.Request.Context(), &store.Room{
		Name:         req.Name,
		Description:  req.Description,
		IsPrivate:    req.IsPrivate,
		PasswordHash: passwordHash,
		OwnerID:      ident.UserID,
	})
	if err != nil {
		if errors.Is(err, store.ErrConflict) {
			c.JSON(http.StatusConflict, ErrorResponse{Error: "room with this name already exists"})
			return
		}
		h.log.Error().Err(err).Str("room_name", req.Name).Msg("failed to create room")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}

	h.log.Info().Str("room_name", room.Name).Int64("room_id", room.ID).Int64("owner_id", ident.UserID).Msg("room created")
	c.JSON(http.StatusCreated, roomResponse(room))
}

// ListRooms handles listing all rooms.
// GET /api/rooms
func (h *RoomHandlers) ListRooms(c *gin.Context) {
	rooms, err := h.store.ListRooms(c.Request.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("failed to list rooms")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}

	resp := make([]RoomResponse, 0, len(rooms))
	for _, room := range rooms {
		resp = append(resp, roomResponse(room))
	}
	c.JSON(http.StatusOK, resp)
}

// ListMyRooms handles listing rooms the caller is a member of.
// GET /api/me/rooms
func (h *RoomHandlers) ListMyRooms(c *gin.Context) {
	ident, ok := currentIdentity(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
		return
	}

	rooms, err := h.store.ListUserRooms(c.Request.Context(), ident.UserID)
	if err != nil {
		h.log.Error().Err(err).Int64("user_id", ident.UserID).Msg("failed to list user rooms")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}

	resp := make([]RoomResponse, 0, len(rooms))
	for _, room := range rooms {
		resp = append(resp, roomResponse(room))
	}
	c.JSON(http.StatusOK, resp)
}

// GetRoom handles fetching a single room.
// GET /api/rooms/:id
func (h *RoomHandlers) GetRoom(c *gin.Context) {
	roomID, ok := roomIDParam(c)
	if !ok {
		return
	}

	room, err := h.store.GetRoomByID(c.Request.Context(), roomID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "room not found"})
			return
		}
		h.log.Error().Err(err).Int64("room_id", roomID).Msg("failed to get room")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}

	c.JSON(http.StatusOK, roomResponse(room))
}

// JoinRoom handles persisted room membership, checking the password for
// private rooms. Joining a room twice is a no-op.
// POST /api/rooms/:id/join
func (h *RoomHandlers) JoinRoom(c *gin.Context) {
	ident, ok := currentIdentity(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
		return
	}

	roomID, ok := roomIDParam(c)
	if !ok {
		return
	}

	var req JoinRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil && c.Request.ContentLength > 0 {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	room, err := h.store.GetRoomByID(c.Request.Context(), roomID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "room not found"})
			return
		}
		h.log.Error().Err(err).Int64("room_id", roomID).Msg("failed to get room")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}

	if room.IsPrivate {
		if err := auth.ComparePassword(room.PasswordHash, req.Password); err != nil {
			c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "incorrect room password"})
			return
		}
	}

	if err := h.store.AddMember(c.Request.Context(), ident.UserID, roomID); err != nil {
		h.log.Error().Err(err).Int64("room_id", roomID).Int64("user_id", ident.UserID).Msg("failed to add member")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}

	h.log.Info().Int64("room_id", roomID).Int64("user_id", ident.UserID).Msg("user joined room")
	c.JSON(http.StatusOK, roomResponse(room))
}

// History handles loading a room's full message backlog in ascending order.
// GET /api/rooms/:id/messages
func (h *RoomHandlers) History(c *gin.Context) {
	roomID, ok := roomIDParam(c)
	if !ok {
		return
	}

	messages, err := h.engine.History(c.Request.Context(), roomID)
	if err != nil {
		var coreErr *core.Error
		if errors.As(err, &coreErr) && coreErr.Code == core.ErrCodeRoomNotFound {
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "room not found"})
			return
		}
		h.log.Error().Err(err).Int64("room_id", roomID).Msg("failed to load history")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}

	resp := make([]MessageResponse, 0, len(messages))
	for _, msg := range messages {
		resp = append(resp, MessageResponse{
			ID:         msg.ID,
			RoomID:     msg.RoomID,
			SenderID:   msg.SenderID,
			SenderName: msg.SenderName,
			SenderRole: string(msg.SenderRole),
			Body:       msg.Body,
			CreatedAt:  msg.CreatedAt.Format(time.RFC3339),
		})
	}
	c.JSON(http.StatusOK, resp)
}
