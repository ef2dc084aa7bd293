package http

import (
	stdhttp "net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"aulachat/internal/auth"
	"aulachat/internal/config"
	"aulachat/internal/core"
	"aulachat/internal/store"
)

// NewServer builds the HTTP server: REST API plus the WebSocket bridge.
func NewServer(engine *core.Engine, authService *auth.Service, st store.Store, cfg *config.Config, logger *zerolog.Logger) *stdhttp.Server {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.Use(gin.Recovery(), LoggerMiddleware(logger))

	router.GET("/health", healthHandler)

	apiHandlers := NewAPIHandlers(authService, logger)
	roomHandlers := NewRoomHandlers(st, engine, logger)
	ratingHandlers := NewRatingHandlers(st, logger)

	router.POST("/api/register", apiHandlers.Register)
	router.POST("/api/login", apiHandlers.Login)

	authorized := router.Group("/api", AuthMiddleware(authService, logger))
	authorized.GET("/rooms", roomHandlers.ListRooms)
	authorized.POST("/rooms", roomHandlers.CreateRoom)
	authorized.GET("/rooms/:id", roomHandlers.GetRoom)
	authorized.POST("/rooms/:id/join", roomHandlers.JoinRoom)
	authorized.GET("/rooms/:id/messages", roomHandlers.History)
	authorized.GET("/rooms/:id/ratings", ratingHandlers.ListRatings)
	authorized.POST("/rooms/:id/ratings", ratingHandlers.CreateRating)
	authorized.GET("/me/rooms", roomHandlers.ListMyRooms)

	router.GET("/ws", gin.WrapH(NewWSHandler(engine, authService, logger)))

	return &stdhttp.Server{
		Addr:              cfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
	}
}

func healthHandler(c *gin.Context) {
	c.String(stdhttp.StatusOK, "ok")
}
