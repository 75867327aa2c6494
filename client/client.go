// Package client is the Go client for the direct-messaging server: REST
// calls for history and sending, a websocket for real-time pushes, and a
// single-conversation subscription filter on top of it.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"chat-direct/domain"
	"chat-direct/domain/event"

	"github.com/gorilla/websocket"
)

type Client struct {
	baseURL string
	token   string
	http    *http.Client
	log     *slog.Logger

	subs subscriptions
	conn *websocket.Conn
}

func New(baseURL string, log *slog.Logger) *Client {
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		http:    &http.Client{Timeout: 10 * time.Second},
		log:     log,
	}
}

type credentials struct {
	Email    string `json:"email"`
	Name     string `json:"name,omitempty"`
	Password string `json:"password"`
}

type session struct {
	Token  string `json:"token"`
	UserID string `json:"userId"`
}

// Login authenticates and keeps the session token for every later call.
func (c *Client) Login(ctx context.Context, email, password string) (string, error) {
	var s session
	err := c.post(ctx, "/auth/login", credentials{Email: email, Password: password}, &s)
	if err != nil {
		return "", err
	}
	c.token = s.Token
	return s.UserID, nil
}

func (c *Client) Register(ctx context.Context, email, name, password string) (string, error) {
	var s session
	err := c.post(ctx, "/auth/register", credentials{Email: email, Name: name, Password: password}, &s)
	if err != nil {
		return "", err
	}
	c.token = s.Token
	return s.UserID, nil
}

// Sidebar fetches the contact list, most recently active first.
func (c *Client) Sidebar(ctx context.Context) ([]domain.SidebarEntry, error) {
	var raw []struct {
		ID            string    `json:"id"`
		Email         string    `json:"email"`
		Name          string    `json:"name"`
		CreatedAt     time.Time `json:"createdAt"`
		LastMessageAt time.Time `json:"lastMessageAt"`
	}
	if err := c.get(ctx, "/messages/users", &raw); err != nil {
		return nil, err
	}
	entries := make([]domain.SidebarEntry, 0, len(raw))
	for _, r := range raw {
		entries = append(entries, domain.SidebarEntry{
			User: domain.User{
				ID:        r.ID,
				Email:     r.Email,
				Name:      r.Name,
				CreatedAt: r.CreatedAt,
			},
			LastMessageAt: r.LastMessageAt,
		})
	}
	return entries, nil
}

// Messages fetches the full transcript with a peer, in chat order.
func (c *Client) Messages(ctx context.Context, peerID string) ([]domain.Message, error) {
	var messages []domain.Message
	err := c.get(ctx, "/messages/"+peerID, &messages)
	return messages, err
}

// Send posts a message; the returned record is the persisted one.
func (c *Client) Send(ctx context.Context, peerID, text, inlineImage string) (domain.Message, error) {
	var message domain.Message
	body := map[string]string{}
	if text != "" {
		body["text"] = text
	}
	if inlineImage != "" {
		body["image"] = inlineImage
	}
	err := c.post(ctx, "/messages/send/"+peerID, body, &message)
	return message, err
}

// Connect opens the real-time channel and starts the receive loop. It must
// be called after Login. The loop stops when ctx is canceled or the server
// closes the socket.
func (c *Client) Connect(ctx context.Context) error {
	wsURL := strings.Replace(c.baseURL, "http", "ws", 1) + "/ws?token=" + c.token
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, wsURL, nil)
	if err != nil {
		return fmt.Errorf("websocket dial: %w", err)
	}
	c.conn = conn

	go func() {
		<-ctx.Done()
		_ = conn.Close()
	}()

	go c.receiveLoop(conn)
	return nil
}

func (c *Client) receiveLoop(conn *websocket.Conn) {
	for {
		var env event.Envelope
		if err := conn.ReadJSON(&env); err != nil {
			c.log.Debug("Real-time channel closed", "error", err)
			return
		}
		c.subs.dispatch(env)
	}
}

// Subscribe selects the open conversation; pushes from any other sender are
// discarded. The previous subscription, if any, is torn down first.
func (c *Client) Subscribe(peerID string, onMessage func(domain.Message)) *Subscription {
	return c.subs.Subscribe(peerID, onMessage)
}

// Unsubscribe tears the subscription down; call it on every exit path of
// the conversation view.
func (c *Client) Unsubscribe(sub *Subscription) {
	c.subs.Unsubscribe(sub)
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}
	return c.do(req, out)
}

func (c *Client) post(ctx context.Context, path string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out any) error {
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("%s %s: status %d: %s", req.Method, req.URL.Path, resp.StatusCode, strings.TrimSpace(string(data)))
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
