// Package mailer sends notification emails through the SMTP2GO HTTP API.
// The directory uses it to alert maintainers when a new public submission
// arrives. A no-op implementation is used when no API key is configured.
package mailer

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"
)

const apiURL = "https://api.smtp2go.com/v3/email/send"

// Notifier delivers submission notifications. Implementations must be safe
// for concurrent use.
type Notifier interface {
	NotifySubmission(recipient, title, submitter string) error
}

// Mailer sends mail via the SMTP2GO HTTP API.
type Mailer struct {
	apiKey string
	sender string
	client *http.Client
}

type apiRequest struct {
	APIKey   string   `json:"api_key"`
	To       []string `json:"to"`
	Sender   string   `json:"sender"`
	Subject  string   `json:"subject"`
	TextBody string   `json:"text_body"`
}

type apiResponse struct {
	RequestID string `json:"request_id"`
	Data      struct {
		EmailID string `json:"email_id"`
	} `json:"data"`
}

// New returns a Mailer using the given SMTP2GO API key and sender address.
func New(apiKey, sender string) *Mailer {
	return &Mailer{
		apiKey: apiKey,
		sender: sender,
		client: &http.Client{Timeout: 10 * time.Second},
	}
}

// NotifySubmission emails the recipient about a new pending submission.
// Delivery is retried twice before giving up.
func (m *Mailer) NotifySubmission(recipient, title, submitter string) error {
	request := apiRequest{
		APIKey:  m.apiKey,
		To:      []string{recipient},
		Sender:  m.sender,
		Subject: fmt.Sprintf("New directory submission: %s", title),
		TextBody: fmt.Sprintf(
			"%s suggested a new resource for the campus directory:\n\n%s\n\nReview it in the admin panel.",
			submitter, title,
		),
	}

	jsonData, err := json.Marshal(request)
	if err != nil {
		return fmt.Errorf("marshal mail request: %w", err)
	}

	for i := 1; i <= 3; i++ {
		err = m.sendViaAPI(jsonData)
		if err == nil {
			return nil
		}
		slog.Warn("mail delivery attempt failed", "attempt", i, "error", err)
		time.Sleep(500 * time.Millisecond)
	}

	return fmt.Errorf("send mail after 3 attempts: %w", err)
}

func (m *Mailer) sendViaAPI(jsonData []byte) error {
	req, err := http.NewRequest(http.MethodPost, apiURL, bytes.NewBuffer(jsonData))
	if err != nil {
		return fmt.Errorf("create mail request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := m.client.Do(req)
	if err != nil {
		return fmt.Errorf("send mail request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("mail API status %d", resp.StatusCode)
	}

	var response apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return fmt.Errorf("decode mail response: %w", err)
	}

	return nil
}

// Noop discards all notifications. Used when mail is not configured.
type Noop struct{}

// NotifySubmission logs and drops the notification.
func (Noop) NotifySubmission(recipient, title, submitter string) error {
	slog.Debug("mail not configured, dropping notification", "title", title)
	return nil
}
