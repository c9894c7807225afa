// Package messaging sends estimates and notes to customers through the
// Fast2SMS gateway.
package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"pos-backend/internal/metrics"
)

const (
	DefaultBaseURL    = "https://www.fast2sms.com/dev"
	DefaultTemplateID = "2576"

	msgKeyMissing   = "Fast2SMS API key not configured in backend"
	msgInvalidPhone = "Invalid phone number. Please enter a 10-digit number."
)

// Message is an outbound request. With PDFURL set it is delivered as a
// WhatsApp template message, otherwise as a plain SMS.
type Message struct {
	PhoneNumber string `json:"phone_number" binding:"required"`
	Message     string `json:"message" binding:"required"`
	PDFURL      string `json:"pdf_url"`
	Caption     string `json:"caption"`
}

// Result is the envelope returned to the caller for every attempt.
type Result struct {
	Success   bool           `json:"success"`
	Message   string         `json:"message"`
	Data      map[string]any `json:"data,omitempty"`
	RequestID string         `json:"request_id,omitempty"`
	Error     any            `json:"error,omitempty"`
}

type Messenger interface {
	Send(ctx context.Context, msg Message) Result
}

type Fast2SMSConfig struct {
	APIKey     string
	SenderID   string
	TemplateID string
	BaseURL    string
	Timeout    time.Duration
}

// Fast2SMS implements Messenger against the Fast2SMS HTTP API.
type Fast2SMS struct {
	cfg    Fast2SMSConfig
	client *http.Client
	log    zerolog.Logger
}

func NewFast2SMS(cfg Fast2SMSConfig) *Fast2SMS {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.TemplateID == "" {
		cfg.TemplateID = DefaultTemplateID
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	return &Fast2SMS{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
		log:    log.With().Str("component", "messaging").Logger(),
	}
}

func (f *Fast2SMS) Send(ctx context.Context, msg Message) Result {
	channel := "sms"
	if msg.PDFURL != "" {
		channel = "whatsapp"
	}

	result := f.send(ctx, channel, msg)
	outcome := "success"
	if !result.Success {
		outcome = "failure"
	}
	metrics.MessagesSent.WithLabelValues(channel, outcome).Inc()
	return result
}

func (f *Fast2SMS) send(ctx context.Context, channel string, msg Message) Result {
	if f.cfg.APIKey == "" {
		return Result{Success: false, Message: msgKeyMissing, Error: "API key missing"}
	}

	phone, ok := NormalizePhone(msg.PhoneNumber)
	if !ok {
		return Result{Success: false, Message: msgInvalidPhone, Error: "Phone number must be 10 digits"}
	}

	params := url.Values{}
	params.Set("authorization", f.cfg.APIKey)
	params.Set("numbers", phone)

	var endpoint, sentMessage string
	if channel == "whatsapp" {
		endpoint = f.cfg.BaseURL + "/whatsapp"
		params.Set("message_id", f.cfg.TemplateID)
		params.Set("variables_values", TemplateVariables(msg.Message, msg.PDFURL))
		sentMessage = "WhatsApp message sent successfully!"
	} else {
		endpoint = f.cfg.BaseURL + "/bulkV2"
		params.Set("route", "q")
		params.Set("message", msg.Message)
		params.Set("language", "english")
		params.Set("flash", "0")
		sentMessage = "SMS sent successfully!"
	}

	f.log.Info().Str("channel", channel).Str("to", phone).Msg("sending message")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return Result{Success: false, Message: "Failed to build gateway request", Error: err.Error()}
	}

	resp, err := f.client.Do(req)
	if err != nil {
		f.log.Warn().Err(err).Str("channel", channel).Msg("gateway call failed")
		return Result{Success: false, Message: "Exception occurred while sending message", Error: err.Error()}
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if resp.StatusCode != http.StatusOK {
		return Result{
			Success: false,
			Message: fmt.Sprintf("HTTP %d: %s", resp.StatusCode, http.StatusText(resp.StatusCode)),
			Error:   string(body),
		}
	}

	var data map[string]any
	if err := json.Unmarshal(body, &data); err != nil {
		return Result{Success: false, Message: "Invalid gateway response", Error: string(body)}
	}
	if accepted, _ := data["return"].(bool); !accepted {
		return Result{Success: false, Message: gatewayMessage(data), Error: data}
	}

	requestID, _ := data["request_id"].(string)
	return Result{Success: true, Message: sentMessage, Data: data, RequestID: requestID}
}

// NormalizePhone keeps digits only and prefixes 91 to a 10-digit number.
// Anything that does not end up as 12 digits is rejected.
func NormalizePhone(raw string) (string, bool) {
	var b strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	digits := b.String()
	switch len(digits) {
	case 10:
		return "91" + digits, true
	case 12:
		return digits, true
	}
	return "", false
}

// TemplateVariables builds "name|estimate number|url" for the estimate
// template. The name is taken from a line starting with "Hello", the number
// from a line mentioning an estimate and a '#', after its last colon.
func TemplateVariables(message, pdfURL string) string {
	name, number := "Customer", "Estimate"
	for _, line := range strings.Split(message, "\n") {
		lower := strings.ToLower(strings.TrimSpace(line))
		if strings.HasPrefix(lower, "hello") {
			if _, rest, ok := strings.Cut(strings.TrimSpace(line), " "); ok && strings.TrimSpace(rest) != "" {
				name = strings.TrimRight(strings.TrimSpace(rest), ",")
			}
		}
		if strings.Contains(lower, "estimate") && strings.Contains(line, "#") {
			parts := strings.Split(line, ":")
			number = strings.TrimSpace(parts[len(parts)-1])
		}
	}
	return name + "|" + number + "|" + pdfURL
}

func gatewayMessage(data map[string]any) string {
	switch m := data["message"].(type) {
	case string:
		if m != "" {
			return m
		}
	case []any:
		if len(m) > 0 {
			return fmt.Sprint(m[0])
		}
	}
	return "Failed to send message"
}
