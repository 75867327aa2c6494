package server

import (
	"chat-direct/auth"

	"github.com/gin-gonic/gin"
)

// NewRouter wires the exposed HTTP surface:
//
//	POST /auth/register, POST /auth/login        public
//	GET  /messages/users                         sidebar
//	GET  /messages/:peerId                       conversation transcript
//	GET  /messages/:peerId/search                full-text search
//	POST /messages/send/:peerId                  send (persists + pushes)
//	GET  /ws                                     real-time channel
//	GET  /uploads/*                              stored images
func NewRouter(authServer *AuthServer, messageServer *MessageServer,
	wsServer *WSServer, uploadDir string) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	r.POST("/auth/register", authServer.Register)
	r.POST("/auth/login", authServer.Login)
	r.Static("/uploads", uploadDir)

	protected := r.Group("/", auth.Middleware())
	protected.GET("/messages/users", messageServer.Sidebar)
	protected.GET("/messages/:peerId", messageServer.GetConversation)
	protected.GET("/messages/:peerId/search", messageServer.Search)
	protected.POST("/messages/send/:peerId", messageServer.Send)
	protected.GET("/ws", wsServer.Handle)

	return r
}
