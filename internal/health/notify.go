package health

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"github.com/Dallionking/casper-risk-oracle/internal/config"
)

// ErrRateLimited is returned when an alert is dropped by the limiter.
var ErrRateLimited = errors.New("alert rate limited")

// Notifier delivers alerts to a Telegram chat. Without a bot token it runs
// dry and only prints what it would have sent.
type Notifier struct {
	token   string
	chatID  string
	apiBase string

	client  *http.Client
	limiter *rate.Limiter
	out     io.Writer
	logger  logrus.FieldLogger
}

// NewNotifier creates a Notifier from the health config. Dry-run lines are
// written to out.
func NewNotifier(cfg config.HealthConfig, out io.Writer, logger logrus.FieldLogger) *Notifier {
	perHour := cfg.AlertsPerHour
	if perHour <= 0 {
		perHour = 6
	}
	if logger == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		logger = l
	}
	if out == nil {
		out = io.Discard
	}
	apiBase := strings.TrimRight(cfg.Telegram.APIBase, "/")
	if apiBase == "" {
		apiBase = "https://api.telegram.org"
	}

	return &Notifier{
		token:   cfg.Telegram.Token,
		chatID:  cfg.Telegram.ChatID,
		apiBase: apiBase,
		client:  &http.Client{Timeout: 10 * time.Second},
		limiter: rate.NewLimiter(rate.Every(time.Hour/time.Duration(perHour)), 1),
		out:     out,
		logger:  logger.WithField("module", "notify"),
	}
}

// DryRun reports whether alerts are printed instead of sent.
func (n *Notifier) DryRun() bool {
	return n.token == ""
}

type sendMessageRequest struct {
	ChatID string `json:"chat_id"`
	Text   string `json:"text"`
}

// Send delivers one message, subject to the rate limit.
func (n *Notifier) Send(ctx context.Context, message string) error {
	if !n.limiter.Allow() {
		n.logger.WithField("message", message).Debug("alert suppressed by rate limit")
		return ErrRateLimited
	}

	if n.DryRun() {
		fmt.Fprintf(n.out, "I would alert: %s\n", message)
		return nil
	}

	body, err := json.Marshal(sendMessageRequest{ChatID: n.chatID, Text: message})
	if err != nil {
		return fmt.Errorf("encoding alert: %w", err)
	}

	endpoint := fmt.Sprintf("%s/bot%s/sendMessage", n.apiBase, n.token)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("building alert request: %w", n.redact(err))
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("sending alert: %w", n.redact(err))
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body) //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("sending alert: telegram returned %s", resp.Status)
	}

	n.logger.Info("alert sent")
	return nil
}

// redact strips the request URL, which embeds the bot token, from err.
func (n *Notifier) redact(err error) error {
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return fmt.Errorf("%s %s/bot<token>/sendMessage: %w", urlErr.Op, n.apiBase, urlErr.Err)
	}
	if n.token != "" && strings.Contains(err.Error(), n.token) {
		return errors.New(strings.ReplaceAll(err.Error(), n.token, "<token>"))
	}
	return err
}

// Alert sends one message covering every failed check in the report. A
// healthy report sends nothing.
func (n *Notifier) Alert(ctx context.Context, r *Report) error {
	msg := AlertMessage(r)
	if msg == "" {
		return nil
	}
	return n.Send(ctx, msg)
}

// AlertMessage renders the report's alerts, one per line.
func AlertMessage(r *Report) string {
	lines := make([]string, len(r.Alerts))
	for i, a := range r.Alerts {
		lines[i] = a.String()
	}
	return strings.Join(lines, "\n")
}
