package notification

import (
	"context"
	"log/slog"
	"sync"

	"github.com/unihub/walletsession/internal/logging"
)

const (
	// KindSessionStored is emitted when a token pair is persisted.
	KindSessionStored = "session_stored"
	// KindSessionRefreshed is emitted when an access token is replaced.
	KindSessionRefreshed = "session_refreshed"
	// KindSessionLoggedOut is emitted when a session is deactivated.
	KindSessionLoggedOut = "session_logged_out"
)

// Message describes a session lifecycle event.
type Message struct {
	Kind        string
	PhoneNumber string
	UserID      int64
}

// Notifier delivers lifecycle events to downstream systems.
type Notifier interface {
	Send(ctx context.Context, message Message) error
}

// LoggerNotifier writes events to the structured logger.
type LoggerNotifier struct {
	logger *slog.Logger
}

// NewLoggerNotifier constructs a logging notifier.
func NewLoggerNotifier(logger *slog.Logger) *LoggerNotifier {
	return &LoggerNotifier{logger: logging.Component(logger, "notification")}
}

// Send writes the message to the structured logger. The phone number is
// omitted from the log line.
func (n *LoggerNotifier) Send(_ context.Context, message Message) error {
	if n == nil || n.logger == nil {
		return nil
	}
	n.logger.Info("session event", "kind", message.Kind, "user_id", message.UserID)
	return nil
}

// Recorder keeps every message in memory. Used by tests.
type Recorder struct {
	mu       sync.Mutex
	messages []Message
}

// Send records the message.
func (r *Recorder) Send(_ context.Context, message Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.messages = append(r.messages, message)
	return nil
}

// Kinds returns the kinds of the recorded messages in order.
func (r *Recorder) Kinds() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	kinds := make([]string, len(r.messages))
	for i, m := range r.messages {
		kinds[i] = m.Kind
	}
	return kinds
}
