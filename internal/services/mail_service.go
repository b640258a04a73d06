package services

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"
)

// MailService delivers transactional email through an HTTP mail API.
// Codes are generated and kept server-side only; this service is the
// single path by which one ever leaves the process.
type MailService struct {
	apiURL string
	apiKey string
	from   string
}

// NewMailService creates a MailService.
func NewMailService(apiURL, apiKey, from string) *MailService {
	return &MailService{apiURL: apiURL, apiKey: apiKey, from: from}
}

type mailMessage struct {
	From    string `json:"from"`
	To      string `json:"to"`
	Subject string `json:"subject"`
	Text    string `json:"text"`
}

// Send posts one message to the mail API.
func (s *MailService) Send(to, subject, text string) error {
	if s.apiURL == "" || s.apiKey == "" {
		log.Println("[Mail] Mail API not configured, skipping send")
		return nil
	}

	msg := mailMessage{
		From:    s.from,
		To:      to,
		Subject: subject,
		Text:    text,
	}

	body, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	req, err := http.NewRequest(http.MethodPost, s.apiURL, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.apiKey)

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		log.Printf("[Mail] Failed to send message: %v", err)
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		log.Printf("[Mail] Unexpected status: %d", resp.StatusCode)
		return fmt.Errorf("mail API returned status %d", resp.StatusCode)
	}

	return nil
}

// SendOrderConfirmation emails a customer that their order was placed.
func (s *MailService) SendOrderConfirmation(to, orderNumber string, total float64) error {
	subject := fmt.Sprintf("Order %s confirmed", orderNumber)
	text := fmt.Sprintf(
		"Thank you for shopping with Nushka!\n\nYour order %s for ₹%.2f has been received. We will email you again once it ships.",
		orderNumber, total,
	)
	return s.Send(to, subject, text)
}

// SendOTPCode emails a sign-in code with its validity window.
func (s *MailService) SendOTPCode(to, code string, ttl time.Duration) error {
	subject := "Your Nushka sign-in code"
	text := fmt.Sprintf(
		"Your one-time sign-in code is %s. It expires in %d minutes.\n\nIf you did not request this, you can ignore this email.",
		code, int(ttl.Minutes()),
	)
	return s.Send(to, subject, text)
}
