package mail

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

const mailersendEndpoint = "https://api.mailersend.com/v1/email"

// Sender delivers a verification email carrying the given token.
type Sender interface {
	SendVerification(ctx context.Context, toEmail, token string) error
}

// MailerSendSender sends verification emails through the MailerSend API.
type MailerSendSender struct {
	apiKey        string
	fromEmail     string
	verifyBaseURL string
	httpClient    *http.Client
}

// NewMailerSendSender creates a sender. verifyBaseURL is the frontend
// verification URL prefix; the token is appended as a path segment.
func NewMailerSendSender(apiKey, fromEmail, verifyBaseURL string) *MailerSendSender {
	return &MailerSendSender{
		apiKey:        apiKey,
		fromEmail:     fromEmail,
		verifyBaseURL: verifyBaseURL,
		httpClient:    http.DefaultClient,
	}
}

// SendVerification posts a templated verification email to MailerSend.
func (s *MailerSendSender) SendVerification(ctx context.Context, toEmail, token string) error {
	verificationURL := fmt.Sprintf("%s/%s", s.verifyBaseURL, token)

	payload := msEmailPayload{
		From:    msAddress{Email: s.fromEmail},
		To:      []msAddress{{Email: toEmail}},
		Subject: "Tourgether | Verify your E-Mail",
		HTML: fmt.Sprintf(
			`<p>Welcome to Tourgether!</p><p>Please confirm your email address by clicking <a href="%s">here</a>.</p>`,
			verificationURL,
		),
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal mailersend payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, mailersendEndpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create mailersend request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+s.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("mailersend request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("mailersend returned status %d: %s", resp.StatusCode, string(respBody))
	}

	return nil
}

// MailerSend v1 Email API payload types.
type msEmailPayload struct {
	From    msAddress   `json:"from"`
	To      []msAddress `json:"to"`
	Subject string      `json:"subject"`
	HTML    string      `json:"html"`
}

type msAddress struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

// NopSender discards mail. Used when no API key is configured.
type NopSender struct{}

// SendVerification does nothing.
func (NopSender) SendVerification(ctx context.Context, toEmail, token string) error {
	return nil
}
