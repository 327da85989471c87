package testcalls

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"
)

// client posts signed webhook deliveries and reads assessments back.
type client struct {
	http    *http.Client
	baseURL string
	secret  string
}

func newClient(cfg *Config) *client {
	return &client{
		http:    &http.Client{Timeout: cfg.RequestTimeout},
		baseURL: cfg.BaseURL,
		secret:  cfg.WebhookSecret,
	}
}

// postCall delivers one synthetic call to the webhook endpoint and returns
// the HTTP status code.
func (c *client) postCall(payload callPayload) (int, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal call payload: %w", err)
	}

	req, err := http.NewRequest(http.MethodPost, c.baseURL+"/webhook/elevenlabs", bytes.NewReader(body))
	if err != nil {
		return 0, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.secret != "" {
		req.Header.Set("ElevenLabs-Signature", signBody(c.secret, body, time.Now()))
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, fmt.Errorf("webhook post failed: %w", err)
	}
	defer resp.Body.Close()
	return resp.StatusCode, nil
}

// fetchAssessment retrieves the stored summary for one conversation.
func (c *client) fetchAssessment(conversationID string) (int, error) {
	resp, err := c.http.Get(c.baseURL + "/assessments/" + conversationID)
	if err != nil {
		return 0, fmt.Errorf("assessment fetch failed: %w", err)
	}
	defer resp.Body.Close()
	return resp.StatusCode, nil
}

// signBody produces the "t=...,v0=..." signature header value.
func signBody(secret string, body []byte, now time.Time) string {
	ts := strconv.FormatInt(now.Unix(), 10)
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(ts))
	mac.Write([]byte("."))
	mac.Write(body)
	return "t=" + ts + ",v0=" + hex.EncodeToString(mac.Sum(nil))
}
