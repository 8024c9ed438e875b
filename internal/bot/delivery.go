package bot

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/disgoorg/snowflake/v2"
	"go.uber.org/zap"
)

const (
	// Linear backoff unit for 5xx and transport failures.
	backoffUnit = 300 * time.Millisecond

	responseBodyLimit = 4 << 10
)

// ErrAttemptsExhausted is wrapped by delivery errors once every attempt
// has failed.
var ErrAttemptsExhausted = errors.New("delivery attempts exhausted")

// DeliveryError is a non-2xx answer from the Discord webhook API.
type DeliveryError struct {
	Method string
	Status int
	Body   string
}

func (e *DeliveryError) Error() string {
	return fmt.Sprintf("discord %s %d: %s", e.Method, e.Status, e.Body)
}

// Webhook identifies the interaction webhook a handler replies through.
type Webhook struct {
	ApplicationID snowflake.ID
	Token         string
}

// InteractionResponse is the synchronous answer to an interaction request.
type InteractionResponse struct {
	Type discordgo.InteractionResponseType `json:"type"`
	Data *messageBody                      `json:"data,omitempty"`
}

type messageBody struct {
	Content         string                            `json:"content,omitempty"`
	Embeds          []json.RawMessage                 `json:"embeds"`
	AllowedMentions *discordgo.MessageAllowedMentions `json:"allowed_mentions"`
}

func newMessageBody(msg *Message) *messageBody {
	body := &messageBody{
		Embeds: []json.RawMessage{},
		AllowedMentions: &discordgo.MessageAllowedMentions{
			Parse: []discordgo.AllowedMentionType{},
		},
	}
	if msg != nil {
		body.Content = msg.Content
		body.Embeds = append(body.Embeds, msg.Embeds...)
	}
	return body
}

// Delivery sends messages through the interaction webhook.
type Delivery struct {
	baseURL string
	http    *http.Client
	cfg     DeliveryConfig
	logger  *zap.Logger

	sleep func(ctx context.Context, d time.Duration) error
}

// NewDelivery creates a new Delivery. Zero config fields take their
// defaults.
func NewDelivery(baseURL string, httpClient *http.Client, cfg DeliveryConfig, logger *zap.Logger) *Delivery {
	def := DefaultDeliveryConfig()
	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = def.MaxAttempts
	}
	if cfg.DefaultRetry <= 0 {
		cfg.DefaultRetry = def.DefaultRetry
	}
	if cfg.RetryStep < 0 {
		cfg.RetryStep = def.RetryStep
	}
	if cfg.MaxRetry <= 0 {
		cfg.MaxRetry = def.MaxRetry
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Delivery{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    httpClient,
		cfg:     cfg,
		logger:  logger.Named("delivery"),
		sleep:   sleepContext,
	}
}

// FirstResponse builds the synchronous "message with source" response.
func (d *Delivery) FirstResponse(msg *Message) *InteractionResponse {
	return &InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: newMessageBody(msg),
	}
}

// EditOriginal replaces the message created by the synchronous response.
func (d *Delivery) EditOriginal(ctx context.Context, wh Webhook, msg *Message) error {
	err := d.send(ctx, http.MethodPatch, d.webhookURL(wh)+"/messages/@original", newMessageBody(msg))
	observeDelivery("edit", err)
	if err != nil {
		d.logger.Error("failed to edit original response", zap.Error(err))
	}
	return err
}

// DeliverFollowups posts msgs in order, one request at a time. After each
// successful POST the configured pause is observed before the next one. A
// batch that cannot be delivered is logged and skipped; the returned error
// joins every such failure. Cancelling ctx abandons the remaining batches.
func (d *Delivery) DeliverFollowups(ctx context.Context, wh Webhook, msgs []*Message) error {
	url := d.webhookURL(wh)

	var errs []error
	pause := false
	for i, msg := range msgs {
		if msg.empty() {
			continue
		}
		if pause && d.cfg.Pause > 0 {
			if err := d.sleep(ctx, d.cfg.Pause); err != nil {
				return errors.Join(append(errs, err)...)
			}
		}

		err := d.send(ctx, http.MethodPost, url, newMessageBody(msg))
		observeDelivery("followup", err)
		pause = err == nil
		if err == nil {
			continue
		}
		if ctx.Err() != nil {
			return errors.Join(append(errs, ctx.Err())...)
		}

		d.logger.Warn("failed to deliver follow-up",
			zap.Int("batch", i),
			zap.Int("embeds", len(msg.Embeds)),
			zap.Error(err),
		)
		errs = append(errs, fmt.Errorf("follow-up %d: %w", i, err))
	}

	return errors.Join(errs...)
}

func (d *Delivery) webhookURL(wh Webhook) string {
	return fmt.Sprintf("%s/webhooks/%s/%s", d.baseURL, wh.ApplicationID, wh.Token)
}

func (d *Delivery) send(ctx context.Context, method, url string, body *messageBody) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to encode message: %w", err)
	}

	var lastErr error
	for attempt := 0; attempt < d.cfg.MaxAttempts; attempt++ {
		var wait time.Duration

		status, header, resBody, err := d.do(ctx, method, url, payload)
		switch {
		case err != nil:
			if ctx.Err() != nil {
				return ctx.Err()
			}
			lastErr = err
			wait = backoffUnit * time.Duration(attempt+1)

		case status >= 200 && status < 300:
			return nil

		case status == http.StatusTooManyRequests:
			rateLimitedTotal.Inc()
			lastErr = &DeliveryError{Method: method, Status: status, Body: string(resBody)}
			base := ParseRetryDelay(header, resBody, d.cfg.DefaultRetry)
			wait = RetryDelay(base, attempt, d.cfg.RetryStep, d.cfg.MaxRetry)

		case status >= 500:
			lastErr = &DeliveryError{Method: method, Status: status, Body: string(resBody)}
			wait = backoffUnit * time.Duration(attempt+1)

		default:
			return &DeliveryError{Method: method, Status: status, Body: string(resBody)}
		}

		if attempt == d.cfg.MaxAttempts-1 {
			break
		}

		d.logger.Debug("retrying webhook request",
			zap.String("method", method),
			zap.Int("attempt", attempt+1),
			zap.Duration("wait", wait),
			zap.Error(lastErr),
		)
		if err := d.sleep(ctx, wait); err != nil {
			return err
		}
	}

	return fmt.Errorf("%w: %w", ErrAttemptsExhausted, lastErr)
}

func (d *Delivery) do(ctx context.Context, method, url string, payload []byte) (int, http.Header, []byte, error) {
	req, err := http.NewRequestWithContext(ctx, method, url, bytes.NewReader(payload))
	if err != nil {
		return 0, nil, nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := d.http.Do(req)
	if err != nil {
		return 0, nil, nil, err
	}
	defer res.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(res.Body, responseBodyLimit))
	return res.StatusCode, res.Header, bytes.TrimSpace(body), nil
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
