package bot

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/bwmarrin/discordgo"
)

// ErrAlreadyResponded is returned by Respond when the interaction already
// has its primary message.
var ErrAlreadyResponded = errors.New("interaction already responded")

// ErrEmptyMessage is returned when a message has neither content nor embeds.
var ErrEmptyMessage = errors.New("empty message")

// Message is one Discord message: optional text plus at most ten embeds.
// Embeds are kept raw so fields unknown to discordgo survive.
type Message struct {
	Content string
	Embeds  []json.RawMessage
}

// TextMessage builds a content-only message.
func TextMessage(content string) *Message {
	return &Message{Content: content}
}

// EmbedMessage builds a message from typed embeds.
func EmbedMessage(embeds ...*discordgo.MessageEmbed) *Message {
	msg := &Message{Embeds: make([]json.RawMessage, 0, len(embeds))}
	for _, e := range embeds {
		if e == nil {
			continue
		}
		raw, err := json.Marshal(e)
		if err != nil {
			continue
		}
		msg.Embeds = append(msg.Embeds, raw)
	}
	return msg
}

func (m *Message) empty() bool {
	return m == nil || (m.Content == "" && len(m.Embeds) == 0)
}

// Responder provides an abstraction for responding to Discord interactions.
// This interface enables testing handlers without a live Discord connection.
type Responder interface {
	// Respond sets the primary message of the interaction. It may only be
	// called once.
	Respond(ctx context.Context, msg *Message) error

	// Followup posts additional messages after the primary one, in order.
	Followup(ctx context.Context, msgs ...*Message) error
}

// handoff passes the primary message from a handler to the HTTP request
// that is still waiting to answer Discord.
type handoff struct {
	mu       sync.Mutex
	msg      *Message
	deferred bool // the request answered with a loading message
	edited   bool

	ready chan struct{} // closed when msg is set
	sent  chan struct{} // closed once the HTTP response is written
	once  sync.Once
}

func newHandoff() *handoff {
	return &handoff{
		ready: make(chan struct{}),
		sent:  make(chan struct{}),
	}
}

// await waits up to budget for the primary message. A nil result means the
// budget expired; later messages must be delivered by editing the original.
func (h *handoff) await(ctx context.Context, budget time.Duration) *Message {
	t := time.NewTimer(budget)
	defer t.Stop()

	select {
	case <-h.ready:
	case <-t.C:
	case <-ctx.Done():
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.msg == nil {
		h.deferred = true
	}
	return h.msg
}

func (h *handoff) markSent() {
	h.once.Do(func() { close(h.sent) })
}

func (h *handoff) waitSent(ctx context.Context) error {
	select {
	case <-h.sent:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// interactionResponder answers one interaction received over HTTP.
type interactionResponder struct {
	handoff  *handoff
	delivery *Delivery
	webhook  Webhook
}

func newInteractionResponder(h *handoff, d *Delivery, wh Webhook) *interactionResponder {
	return &interactionResponder{
		handoff:  h,
		delivery: d,
		webhook:  wh,
	}
}

func (r *interactionResponder) Respond(ctx context.Context, msg *Message) error {
	if msg.empty() {
		return ErrEmptyMessage
	}
	h := r.handoff

	h.mu.Lock()
	if h.msg != nil || h.edited {
		h.mu.Unlock()
		return ErrAlreadyResponded
	}
	if !h.deferred {
		h.msg = msg
		close(h.ready)
		h.mu.Unlock()
		return nil
	}
	h.edited = true
	h.mu.Unlock()

	// Too late for the synchronous answer: replace the loading message.
	if err := h.waitSent(ctx); err != nil {
		return err
	}
	return r.delivery.EditOriginal(ctx, r.webhook, msg)
}

func (r *interactionResponder) Followup(ctx context.Context, msgs ...*Message) error {
	if err := r.handoff.waitSent(ctx); err != nil {
		return err
	}
	return r.delivery.DeliverFollowups(ctx, r.webhook, msgs)
}

// responded reports whether a primary message was produced.
func (r *interactionResponder) responded() bool {
	r.handoff.mu.Lock()
	defer r.handoff.mu.Unlock()
	return r.handoff.msg != nil || r.handoff.edited
}

// MockResponder is a test double for Responder.
type MockResponder struct {
	mu sync.Mutex

	LastResponse *Message
	Followups    []*Message
	Err          error
	FollowupErr  error
}

// Respond records the response for testing.
func (m *MockResponder) Respond(_ context.Context, msg *Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.LastResponse = msg
	return m.Err
}

// Followup records the follow-up messages for testing.
func (m *MockResponder) Followup(_ context.Context, msgs ...*Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Followups = append(m.Followups, msgs...)
	return m.FollowupErr
}
