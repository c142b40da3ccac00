package realtime

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/sethvargo/go-retry"
)

// Channel is the Postgres notification channel the schema triggers publish
// to; see the notify_change migration.
const Channel = "tirestock_changes"

// Listener owns a dedicated Postgres connection, LISTENs on Channel and
// dispatches decoded notifications to the hub. It reconnects with capped
// exponential backoff; notifications raised while disconnected are lost,
// which the post-reconnect RefreshAll compensates for.
type Listener struct {
	databaseURL string
	hub         *Hub
	logger      *slog.Logger
}

func NewListener(databaseURL string, hub *Hub, logger *slog.Logger) *Listener {
	return &Listener{databaseURL: databaseURL, hub: hub, logger: logger}
}

// Run blocks until ctx is cancelled.
func (l *Listener) Run(ctx context.Context) error {
	for {
		if err := l.listenOnce(ctx); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			l.logger.Warn("change_listener_disconnected", "error", err)
		}
	}
}

func (l *Listener) listenOnce(ctx context.Context) error {
	var conn *pgx.Conn
	backoff := retry.WithCappedDuration(30*time.Second, retry.NewExponential(time.Second))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		c, err := pgx.Connect(ctx, l.databaseURL)
		if err != nil {
			return retry.RetryableError(err)
		}
		if _, err := c.Exec(ctx, "LISTEN "+Channel); err != nil {
			_ = c.Close(ctx)
			return retry.RetryableError(err)
		}
		conn = c
		return nil
	})
	if err != nil {
		return err
	}
	defer conn.Close(context.Background())

	l.logger.Info("change_listener_connected", "channel", Channel)
	l.hub.RefreshAll(ctx)

	for {
		notification, err := conn.WaitForNotification(ctx)
		if err != nil {
			return err
		}

		var payload struct {
			Table  string `json:"table"`
			Action string `json:"action"`
		}
		if err := json.Unmarshal([]byte(notification.Payload), &payload); err != nil {
			l.logger.Warn("malformed_change_payload", "payload", notification.Payload)
			continue
		}
		l.hub.Dispatch(ctx, Notification{
			Collection: Collection(payload.Table),
			Kind:       ChangeKind(payload.Action),
		})
	}
}
