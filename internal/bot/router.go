package bot

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"
	"unicode/utf8"

	"github.com/bwmarrin/discordgo"
	"github.com/disgoorg/snowflake/v2"
	"github.com/sourcegraph/conc/panics"
	"go.uber.org/zap"
)

const (
	maxRequestBody = 1 << 20

	// Error embeds show at most this many runes of the error text.
	errorTextLimit = 300

	// DefaultAckBudget leaves Discord's three second window some slack.
	DefaultAckBudget = 2 * time.Second
)

// Embed colors for responses.
const (
	colorNotice = 0xF2C94C
	colorError  = 0xE74C3C
)

var errNoResponse = errors.New("command handler returned without a response")

// RouterOptions configures a Router.
type RouterOptions struct {
	// Path is the only path interactions are accepted on.
	Path string

	// ApplicationID addresses the webhook used for edits and follow-ups.
	ApplicationID snowflake.ID

	// AckBudget bounds how long a request waits for the handler's first
	// message.
	AckBudget time.Duration
}

// Router is the HTTP entry point for Discord interactions.
type Router struct {
	verifier *Verifier
	handlers map[string]InteractionHandler
	delivery *Delivery
	tasks    *TaskGroup
	logger   *zap.Logger
	opts     RouterOptions
}

// NewRouter creates a new Router.
func NewRouter(
	verifier *Verifier,
	handlers map[string]InteractionHandler,
	delivery *Delivery,
	tasks *TaskGroup,
	logger *zap.Logger,
	opts RouterOptions,
) *Router {
	if opts.Path == "" {
		opts.Path = "/interactions"
	}
	if opts.AckBudget <= 0 {
		opts.AckBudget = DefaultAckBudget
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Router{
		verifier: verifier,
		handlers: handlers,
		delivery: delivery,
		tasks:    tasks,
		logger:   logger.Named("router"),
		opts:     opts,
	}
}

// ServeHTTP authenticates the request, then answers pings, dispatches
// application commands and rejects everything else.
func (rt *Router) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost || r.URL.Path != rt.opts.Path {
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxRequestBody))
	if err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	if !rt.verifier.Verify(body, r.Header.Get(HeaderTimestamp), r.Header.Get(HeaderSignature)) {
		signatureFailures.Inc()
		http.Error(w, "invalid request signature", http.StatusUnauthorized)
		return
	}

	var in discordgo.Interaction
	if err := json.Unmarshal(body, &in); err != nil {
		rt.logger.Warn("failed to decode interaction", zap.Error(err))
		interactionsTotal.WithLabelValues("invalid", "").Inc()
		rt.write(w, rt.delivery.FirstResponse(TextMessage("Invalid interaction.")))
		return
	}

	switch in.Type {
	case discordgo.InteractionPing:
		interactionsTotal.WithLabelValues("ping", "").Inc()
		rt.write(w, &InteractionResponse{Type: discordgo.InteractionResponsePong})

	case discordgo.InteractionApplicationCommand:
		rt.dispatch(r.Context(), w, &in)

	default:
		interactionsTotal.WithLabelValues(strconv.Itoa(int(in.Type)), "").Inc()
		rt.write(w, rt.delivery.FirstResponse(TextMessage("Unsupported interaction.")))
	}
}

func (rt *Router) dispatch(ctx context.Context, w http.ResponseWriter, in *discordgo.Interaction) {
	data := in.ApplicationCommandData()

	handler, ok := rt.handlers[data.Name]
	if !ok {
		interactionsTotal.WithLabelValues("command", "unknown").Inc()
		rt.logger.Warn("found no handler for command", zap.String("command", data.Name))
		rt.write(w, rt.delivery.FirstResponse(unknownCommandMessage(data.Name)))
		return
	}
	interactionsTotal.WithLabelValues("command", data.Name).Inc()

	h := newHandoff()
	defer h.markSent()

	responder := newInteractionResponder(h, rt.delivery, Webhook{
		ApplicationID: rt.opts.ApplicationID,
		Token:         in.Token,
	})
	opts := FlattenOptions(data.Options)

	rt.tasks.Go(func(taskCtx context.Context) {
		rt.runHandler(taskCtx, in, data.Name, handler, opts, responder)
	})

	msg := h.await(ctx, rt.opts.AckBudget)
	if msg == nil {
		loadingAcksTotal.Inc()
		rt.logger.Debug("answering with loading message", zap.String("command", data.Name))
		msg = loadingMessage()
	}

	rt.write(w, rt.delivery.FirstResponse(msg))
}

func (rt *Router) runHandler(
	ctx context.Context,
	in *discordgo.Interaction,
	name string,
	handler InteractionHandler,
	opts Options,
	responder *interactionResponder,
) {
	var err error
	var catcher panics.Catcher
	catcher.Try(func() {
		err = handler(ctx, in, opts, responder)
	})
	if r := catcher.Recovered(); r != nil {
		panicsRecovered.Inc()
		rt.logger.Error("recovered panic in command handler",
			zap.String("command", name),
			zap.Any("panic", r.Value),
			zap.String("stack", string(r.Stack)),
		)
		err = r.AsError()
	}

	if err == nil && responder.responded() {
		return
	}
	if err == nil {
		err = errNoResponse
	}

	rt.logger.Error("failed to handle command", zap.String("command", name), zap.Error(err))
	if responder.responded() {
		return
	}
	if rerr := responder.Respond(ctx, errorMessage(err)); rerr != nil {
		rt.logger.Error("failed to send error response", zap.String("command", name), zap.Error(rerr))
	}
}

func (rt *Router) write(w http.ResponseWriter, res *InteractionResponse) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(res); err != nil {
		rt.logger.Error("failed to write interaction response", zap.Error(err))
	}
}

func loadingMessage() *Message {
	return EmbedMessage(&discordgo.MessageEmbed{
		Title:       "Chargement…",
		Description: "Je récupère les infos.",
		Color:       colorNotice,
	})
}

func unknownCommandMessage(name string) *Message {
	return EmbedMessage(&discordgo.MessageEmbed{
		Title:       "Commande inconnue",
		Description: "/" + name,
		Color:       colorNotice,
	})
}

func errorMessage(err error) *Message {
	return EmbedMessage(&discordgo.MessageEmbed{
		Title:       "Erreur",
		Description: truncate(err.Error(), errorTextLimit),
		Color:       colorError,
	})
}

func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	return string(r[:n-1]) + "…"
}
