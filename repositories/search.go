package repositories

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"chat-direct/domain"

	"github.com/blugelabs/bluge"
)

type IMessageIndex interface {
	Index(message domain.Message) error
	Search(ctx context.Context, terms, userA, userB string, limit int) ([]SearchHit, error)
}

// MessageIndex mirrors stored messages into a Bluge full-text index.
// The index is a projection: Badger stays the source of truth and the index
// can be rebuilt from it.
type MessageIndex struct {
	writer *bluge.Writer
	log    *slog.Logger
}

func NewMessageIndex(writer *bluge.Writer, log *slog.Logger) MessageIndex {
	return MessageIndex{writer: writer, log: log}
}

// SearchHit is one matching message, reconstructed from stored fields.
type SearchHit struct {
	MessageID string    `json:"messageId"`
	SenderID  string    `json:"senderId"`
	Text      string    `json:"text"`
	At        time.Time `json:"at"`
}

// Index adds a message to the search index. Image-only messages carry no
// searchable text and are skipped.
func (m MessageIndex) Index(message domain.Message) error {
	if message.Text == "" {
		return nil
	}
	key := message.Key()
	doc := bluge.NewDocument(message.ID.String()).
		AddField(bluge.NewKeywordField("conversation", key.Lo+":"+key.Hi)).
		AddField(bluge.NewKeywordField("sender", message.SenderID).StoreValue()).
		AddField(bluge.NewTextField("text", message.Text).StoreValue()).
		AddField(bluge.NewDateTimeField("at", message.CreatedAt)).
		AddField(bluge.NewStoredOnlyField("at_nanos", []byte(strconv.FormatInt(message.CreatedAt.UnixNano(), 10)))).
		AddField(bluge.NewStoredOnlyField("message_id", []byte(message.ID.String())))
	return m.writer.Update(doc.ID(), doc)
}

// Search runs a match query over the text of one conversation.
// Results come back ordered by relevance, not by time.
func (m MessageIndex) Search(ctx context.Context, terms, userA, userB string, limit int) ([]SearchHit, error) {
	reader, err := m.writer.Reader()
	if err != nil {
		return nil, fmt.Errorf("index reader: %w", err)
	}
	defer func() {
		if err := reader.Close(); err != nil {
			m.log.Warn("Failed to close index reader", "error", err)
		}
	}()

	key := domain.NewConversationKey(userA, userB)
	query := bluge.NewBooleanQuery().
		AddMust(bluge.NewMatchQuery(terms).SetField("text")).
		AddMust(bluge.NewTermQuery(key.Lo + ":" + key.Hi).SetField("conversation"))

	iterator, err := reader.Search(ctx, bluge.NewTopNSearch(limit, query))
	if err != nil {
		return nil, err
	}

	var hits []SearchHit
	for {
		match, err := iterator.Next()
		if err != nil {
			return nil, err
		}
		if match == nil {
			break
		}
		var hit SearchHit
		err = match.VisitStoredFields(func(field string, value []byte) bool {
			switch field {
			case "message_id":
				hit.MessageID = string(value)
			case "sender":
				hit.SenderID = string(value)
			case "text":
				hit.Text = string(value)
			case "at_nanos":
				if nanos, err := strconv.ParseInt(string(value), 10, 64); err == nil {
					hit.At = time.Unix(0, nanos).UTC()
				}
			}
			return true
		})
		if err != nil {
			return nil, err
		}
		hits = append(hits, hit)
	}
	return hits, nil
}
