package mailer

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/resend/resend-go/v2"
)

const DefaultBaseURL = "https://api.resend.com"

type Message struct {
	From    string
	To      string
	Subject string
	HTML    string
}

// ResendClient sends email through the Resend API.
type ResendClient struct {
	client *resend.Client
}

func NewResendClient(httpClient *http.Client, baseURL, apiKey string) (*ResendClient, error) {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	// Request paths are resolved relative to the base, so it must end in a slash
	base, err := url.Parse(strings.TrimRight(baseURL, "/") + "/")
	if err != nil {
		return nil, fmt.Errorf("invalid resend base URL: %w", err)
	}

	client := resend.NewCustomClient(httpClient, apiKey)
	client.BaseURL = base

	return &ResendClient{client: client}, nil
}

func (c *ResendClient) Send(ctx context.Context, msg Message) error {
	sent, err := c.client.Emails.SendWithContext(ctx, &resend.SendEmailRequest{
		From:    msg.From,
		To:      []string{msg.To},
		Subject: msg.Subject,
		Html:    msg.HTML,
	})
	if err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	if sent == nil || sent.Id == "" {
		return fmt.Errorf("resend returned no email id")
	}

	return nil
}
