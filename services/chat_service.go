package services

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"chat-direct/domain"
	"chat-direct/domain/event"
	"chat-direct/moderation"
	"chat-direct/repositories"
	"chat-direct/uploads"

	"github.com/abadojack/whatlanggo"
)

// Dispatcher hands persisted-message events to the delivery router without
// blocking the caller.
type Dispatcher interface {
	Dispatch(e event.DomainEvent)
}

type IChatService interface {
	SendMessage(ctx context.Context, senderID, receiverID, text, inlineImage string) (domain.Message, error)
	GetConversation(userA, userB string) ([]domain.Message, error)
	Sidebar(viewerID string) ([]domain.SidebarEntry, error)
	Search(ctx context.Context, userA, userB, terms string, limit int) ([]repositories.SearchHit, error)
}

type ChatService struct {
	log        *slog.Logger
	messages   repositories.IMessageRepository
	users      repositories.IUserRepository
	index      repositories.IMessageIndex
	uploader   uploads.Uploader
	moderator  *moderation.Moderator
	dispatcher Dispatcher
}

func NewChatService(log *slog.Logger,
	messages repositories.IMessageRepository,
	users repositories.IUserRepository,
	index repositories.IMessageIndex,
	uploader uploads.Uploader,
	moderator *moderation.Moderator,
	dispatcher Dispatcher) *ChatService {
	return &ChatService{
		log:        log,
		messages:   messages,
		users:      users,
		index:      index,
		uploader:   uploader,
		moderator:  moderator,
		dispatcher: dispatcher,
	}
}

// SendMessage runs the whole send pipeline: upload, moderation, durable
// append, then a single fire-and-forget push toward the recipient.
// The returned message is the persisted record; push delivery outcome never
// influences it. A persistence failure aborts everything: a message is never
// pushed without having been durably appended first.
func (s *ChatService) SendMessage(ctx context.Context, senderID, receiverID, text, inlineImage string) (domain.Message, error) {
	// The receiver id comes from the request path. Only ids the directory
	// knows may reach the storage key layer: a crafted id embedding the key
	// delimiter could otherwise forge entries into another pair's
	// conversation.
	if _, err := s.users.GetUserByID(receiverID); err != nil {
		return domain.Message{}, err
	}

	var imageURL string
	if inlineImage != "" {
		url, err := s.uploader.Upload(inlineImage)
		if err != nil {
			return domain.Message{}, err
		}
		imageURL = url
	}

	if s.moderator != nil && text != "" {
		censored, masked := s.moderator.Censor(text)
		if masked {
			info := whatlanggo.Detect(text)
			s.log.Warn("Censored message content",
				"sender_id", senderID,
				"lang", info.Lang.Iso6391())
			text = censored
		}
	}

	message, err := domain.NewMessage(senderID, receiverID, text, imageURL)
	if err != nil {
		return domain.Message{}, err
	}

	if err := s.messages.StoreMessage(message); err != nil {
		return domain.Message{}, fmt.Errorf("append failed: %w", err)
	}

	// The index is a projection of the store; losing one entry is not worth
	// failing a send that is already durable.
	if err := s.index.Index(message); err != nil {
		s.log.Warn("Failed to index message", "message_id", message.ID, "error", err)
	}

	s.dispatcher.Dispatch(event.NewMessage{Message: message})
	return message, nil
}

// GetConversation returns the full transcript in chat order. An unknown peer
// simply yields an empty conversation.
func (s *ChatService) GetConversation(userA, userB string) ([]domain.Message, error) {
	return s.messages.GetConversation(userA, userB)
}

// Sidebar lists every other user ordered by most recent shared activity.
// One LastActivity lookup per candidate, sequentially; contacts with no
// shared history default to the epoch and sink to the bottom. The sort is
// stable so equal timestamps keep the directory's deterministic order.
func (s *ChatService) Sidebar(viewerID string) ([]domain.SidebarEntry, error) {
	candidates, err := s.users.ListOthers(viewerID)
	if err != nil {
		return nil, err
	}

	entries := make([]domain.SidebarEntry, 0, len(candidates))
	for _, candidate := range candidates {
		at, ok, err := s.messages.LastActivity(viewerID, candidate.ID)
		if err != nil {
			return nil, err
		}
		if !ok {
			at = time.Unix(0, 0).UTC()
		}
		entries = append(entries, domain.SidebarEntry{User: candidate, LastMessageAt: at})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].LastMessageAt.After(entries[j].LastMessageAt)
	})
	return entries, nil
}

// Search finds messages of one conversation matching the given terms.
func (s *ChatService) Search(ctx context.Context, userA, userB, terms string, limit int) ([]repositories.SearchHit, error) {
	return s.index.Search(ctx, terms, userA, userB, limit)
}
