package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"go-sahay/pkg/config"
)

// Delivery channels
const (
	ChannelSMS      = "sms"
	ChannelWhatsApp = "whatsapp"
)

// ValidChannel reports whether channel is a supported delivery channel
func ValidChannel(channel string) bool {
	return channel == ChannelSMS || channel == ChannelWhatsApp
}

// Sender delivers one-time codes to a phone number
type Sender interface {
	Send(ctx context.Context, phone, channel, code string) error
}

// GatewayClient sends codes through the external messaging gateway
type GatewayClient struct {
	baseURL string
	token   string
	client  *http.Client
}

// NewGatewayClient creates a gateway client from the environment.
// Requests carry OTel spans through the instrumented transport.
func NewGatewayClient() *GatewayClient {
	return &GatewayClient{
		baseURL: config.GetEnv("OTP_GATEWAY_URL", "http://localhost:9090"),
		token:   config.GetEnv("OTP_GATEWAY_TOKEN", ""),
		client: &http.Client{
			Timeout:   10 * time.Second,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	}
}

type gatewayRequest struct {
	Phone   string `json:"phone"`
	Channel string `json:"channel"`
	Message string `json:"message"`
}

// Send posts the code to the gateway's message endpoint
func (c *GatewayClient) Send(ctx context.Context, phone, channel, code string) error {
	payload, err := json.Marshal(gatewayRequest{
		Phone:   phone,
		Channel: channel,
		Message: fmt.Sprintf("Your Sahay verification code is %s", code),
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/messages", bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("gateway request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("gateway returned status %d", resp.StatusCode)
	}

	slog.Debug("[OTP] Code dispatched", "channel", channel)
	return nil
}

// LogSender writes codes to the log instead of a gateway. Development
// only, enabled with OTP_DEV_MODE.
type LogSender struct{}

func (LogSender) Send(_ context.Context, phone, channel, code string) error {
	slog.Info("[OTP] Dev mode code", "phone", phone, "channel", channel, "code", code)
	return nil
}
