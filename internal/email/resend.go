// Package email sends transactional mail through the Resend API.
package email

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
)

type Client struct {
	apiKey     string
	fromEmail  string
	baseURL    string
	httpClient *http.Client
}

type Option func(*Client)

func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) {
		cl.httpClient = c
	}
}

func NewClient(apiKey, fromEmail, baseURL string, opts ...Option) *Client {
	c := &Client{
		apiKey:     apiKey,
		fromEmail:  fromEmail,
		baseURL:    baseURL,
		httpClient: http.DefaultClient,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Configured returns true if the API key is set.
func (c *Client) Configured() bool {
	return c.apiKey != ""
}

type resendEmail struct {
	From    string `json:"from"`
	To      string `json:"to"`
	Subject string `json:"subject"`
	HTML    string `json:"html"`
	Text    string `json:"text"`
}

// SendPasswordReset emails a reset link carrying the given token.
func (c *Client) SendPasswordReset(toEmail, name, token string) error {
	if !c.Configured() {
		return fmt.Errorf("email client not configured: missing API key")
	}

	link := fmt.Sprintf("%s/reset-password?token=%s", c.baseURL, token)
	textBody := fmt.Sprintf(
		"Hi %s,\n\nSomeone requested a password reset for your YouthUnite account. Click the link below to choose a new password:\n\n%s\n\nThis link expires in 1 hour. If you didn't ask for this, you can ignore this email.",
		name, link,
	)
	htmlBody := fmt.Sprintf(
		`<p>Hi %s,</p><p>Someone requested a password reset for your YouthUnite account. Click the link below to choose a new password:</p><p><a href="%s">Reset your password</a></p><p>This link expires in 1 hour. If you didn't ask for this, you can ignore this email.</p>`,
		name, link,
	)

	payload := resendEmail{
		From:    c.fromEmail,
		To:      toEmail,
		Subject: "Reset your YouthUnite password",
		HTML:    htmlBody,
		Text:    textBody,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal email: %w", err)
	}

	req, err := http.NewRequest("POST", "https://api.resend.com/emails", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("send email: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("resend API error: status %d", resp.StatusCode)
	}

	return nil
}
