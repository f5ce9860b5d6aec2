package gmailclient

import (
	"context"
	"encoding/base64"
	"fmt"
	"mime"
	"net/http"
	"strings"
	"sync"
	"time"

	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"
)

// EmailInterval is the minimum gap between two sends
const EmailInterval = 3 * time.Second

// Client wraps the Gmail API client
type Client struct {
	service *gmail.Service
	userID  string

	sendMutex    sync.Mutex
	lastSendTime time.Time
	interval     time.Duration
}

// NewClient creates a Gmail client sending as userID ("me" for the token owner)
func NewClient(ctx context.Context, httpClient *http.Client, userID string, opts ...option.ClientOption) (*Client, error) {
	opts = append([]option.ClientOption{option.WithHTTPClient(httpClient)}, opts...)
	service, err := gmail.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create gmail service: %w", err)
	}
	if userID == "" {
		userID = "me"
	}
	return &Client{service: service, userID: userID, interval: EmailInterval}, nil
}

// Message is a plain text email
type Message struct {
	From    string
	To      []string
	Subject string
	Body    string
}

// Raw renders the message as RFC 2822 text
func (m Message) Raw() string {
	var b strings.Builder
	if m.From != "" {
		fmt.Fprintf(&b, "From: %s\r\n", m.From)
	}
	fmt.Fprintf(&b, "To: %s\r\n", strings.Join(m.To, ", "))
	fmt.Fprintf(&b, "Subject: %s\r\n", mime.QEncoding.Encode("utf-8", m.Subject))
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=\"utf-8\"\r\n\r\n")
	b.WriteString(m.Body)
	return b.String()
}

// Send sends msg, waiting so consecutive sends respect the Gmail API rate limit
func (c *Client) Send(ctx context.Context, msg Message) error {
	if len(msg.To) == 0 {
		return fmt.Errorf("email has no recipients")
	}

	c.sendMutex.Lock()
	defer c.sendMutex.Unlock()

	if !c.lastSendTime.IsZero() {
		if wait := c.interval - time.Since(c.lastSendTime); wait > 0 {
			select {
			case <-time.After(wait):
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}

	encoded := base64.URLEncoding.EncodeToString([]byte(msg.Raw()))
	if _, err := c.service.Users.Messages.Send(c.userID, &gmail.Message{Raw: encoded}).Context(ctx).Do(); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}

	c.lastSendTime = time.Now()
	return nil
}
