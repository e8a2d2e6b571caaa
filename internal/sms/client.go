// Package sms sends login codes to phone numbers through the SMS gateway.
package sms

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const defaultTimeout = 15 * time.Second

// Sender dispatches a login code to a phone number. Implemented by Client;
// the auth service takes the interface so tests can substitute a fake.
type Sender interface {
	SendCode(phoneNumber, code string) error
}

// Client sends OTP SMS via the gateway's verify-send API (sms.ir style).
type Client struct {
	APIKey     string
	BaseURL    string
	LineNumber string
	HTTPClient *http.Client
}

// NewClient returns a client that uses the given API key and optional base URL/line number.
func NewClient(apiKey, baseURL, lineNumber string) *Client {
	if baseURL == "" {
		baseURL = "https://api.sms.ir/v1/send/verify"
	}
	return &Client{
		APIKey:     apiKey,
		BaseURL:    baseURL,
		LineNumber: lineNumber,
		HTTPClient: &http.Client{Timeout: defaultTimeout},
	}
}

// SendCode sends the login code to the given phone number.
// phoneNumber should be digits only (e.g. "09123456789"). Does not log the code.
func (c *Client) SendCode(phoneNumber, code string) error {
	if c.APIKey == "" {
		return fmt.Errorf("sms: API key not configured")
	}
	body := map[string]interface{}{
		"mobile":     phoneNumber,
		"templateId": "login",
		"parameters": []map[string]string{
			{"name": "CODE", "value": code},
		},
	}
	if c.LineNumber != "" {
		body["lineNumber"] = c.LineNumber
	}
	raw, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequest(http.MethodPost, c.BaseURL, bytes.NewReader(raw))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-API-KEY", c.APIKey)
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("sms: request failed status=%d body=%s", resp.StatusCode, string(b))
	}
	return nil
}
