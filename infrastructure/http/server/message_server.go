package server

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"chat-direct/auth"
	"chat-direct/domain"
	"chat-direct/errors"
	"chat-direct/services"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/samber/lo"
)

// peerID extracts and validates the :peerId path parameter. User ids are
// UUIDs; anything else can never name an account and must not reach the
// storage key layer, where a raw id would take part in key construction.
func peerID(c *gin.Context) (string, bool) {
	id := c.Param("peerId")
	if uuid.Validate(id) != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid peer id"})
		return "", false
	}
	return id, true
}

type MessageServer struct {
	chatService services.IChatService
	log         *slog.Logger
}

func NewMessageServer(log *slog.Logger, chatService services.IChatService) *MessageServer {
	return &MessageServer{chatService: chatService, log: log}
}

// sidebarResponse flattens the user fields together with the derived
// last-activity timestamp, matching the listing contract.
type sidebarResponse struct {
	ID            string    `json:"id"`
	Email         string    `json:"email"`
	Name          string    `json:"name"`
	CreatedAt     time.Time `json:"createdAt"`
	LastMessageAt time.Time `json:"lastMessageAt"`
}

// Sidebar handles GET /messages/users: every other user, ordered by most
// recent shared activity, most recent first.
func (s *MessageServer) Sidebar(c *gin.Context) {
	viewerID := c.GetString(auth.UserIDKey)

	entries, err := s.chatService.Sidebar(viewerID)
	if err != nil {
		s.fail(c, "Error fetching users", err)
		return
	}

	c.JSON(http.StatusOK, lo.Map(entries, func(item domain.SidebarEntry, _ int) sidebarResponse {
		return sidebarResponse{
			ID:            item.User.ID,
			Email:         item.User.Email,
			Name:          item.User.Name,
			CreatedAt:     item.User.CreatedAt,
			LastMessageAt: item.LastMessageAt,
		}
	}))
}

// GetConversation handles GET /messages/:peerId: the full transcript with
// the peer, in chat order. An unknown peer yields an empty array, not an
// error.
func (s *MessageServer) GetConversation(c *gin.Context) {
	viewerID := c.GetString(auth.UserIDKey)
	peer, ok := peerID(c)
	if !ok {
		return
	}

	messages, err := s.chatService.GetConversation(viewerID, peer)
	if err != nil {
		s.fail(c, "Error fetching messages", err)
		return
	}
	if messages == nil {
		messages = []domain.Message{}
	}
	c.JSON(http.StatusOK, messages)
}

type sendRequest struct {
	Text  string `json:"text"`
	Image string `json:"image"`
}

// Send handles POST /messages/send/:peerId. The response carries the
// persisted record; push delivery toward the recipient is fire-and-forget
// and never delays or fails this request.
func (s *MessageServer) Send(c *gin.Context) {
	senderID := c.GetString(auth.UserIDKey)
	receiverID, ok := peerID(c)
	if !ok {
		return
	}

	var req sendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid body"})
		return
	}

	message, err := s.chatService.SendMessage(c.Request.Context(), senderID, receiverID, req.Text, req.Image)
	if err != nil {
		s.fail(c, "Error sending message", err)
		return
	}
	c.JSON(http.StatusOK, message)
}

// Search handles GET /messages/:peerId/search?q=terms&limit=n.
func (s *MessageServer) Search(c *gin.Context) {
	viewerID := c.GetString(auth.UserIDKey)
	peer, ok := peerID(c)
	if !ok {
		return
	}

	terms := c.Query("q")
	if terms == "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": "missing query"})
		return
	}

	limit := 20
	if v := c.Query("limit"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 && parsed <= 200 {
			limit = parsed
		}
	}

	hits, err := s.chatService.Search(c.Request.Context(), viewerID, peer, terms, limit)
	if err != nil {
		s.fail(c, "Error searching messages", err)
		return
	}
	c.JSON(http.StatusOK, hits)
}

// fail logs the detailed cause server-side and answers with a generic
// message; the specific failure is never exposed to the caller.
func (s *MessageServer) fail(c *gin.Context, message string, err error) {
	s.log.Error(message, "path", c.FullPath(), "error", err)
	c.JSON(errors.MapToHTTPStatus(err), gin.H{"message": message})
}
