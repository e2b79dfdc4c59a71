package worker

// notifier.go — sync failure escalation channel.
// Exhausted upload budgets land in a Redis alert list for the back-office
// dashboard, and optionally in the administrator's mailbox. The list works
// like a dead letter queue: entries stay until an operator inspects them.

import (
	"context"
	"encoding/json"
	"time"

	"github.com/La-Clique-qui-Recycle/Recyclic-sub002/internal/infra"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const AlertPrefix = "alerts:"

// AlertEntry wraps a failed upload with metadata for inspection.
type AlertEntry struct {
	LocalPath  string `json:"local_path"`
	RemotePath string `json:"remote_path"`
	Error      string `json:"error"`
	FailedAt   string `json:"failed_at"` // ISO 8601
}

// AlertNotifier implements the sync escalation channel.
type AlertNotifier struct {
	rdb        *redis.Client
	channel    string
	mailer     *infra.Mailer
	adminEmail string
}

// NewAlertNotifier builds a notifier pushing to alerts:{channel}. mailer and
// adminEmail are optional; when both are set an email alert is sent too.
func NewAlertNotifier(rdb *redis.Client, channel string, mailer *infra.Mailer, adminEmail string) *AlertNotifier {
	return &AlertNotifier{rdb: rdb, channel: channel, mailer: mailer, adminEmail: adminEmail}
}

// NotifyFailure records one exhausted retry budget. Returns true when the
// alert reached at least one channel.
func (n *AlertNotifier) NotifyFailure(ctx context.Context, localPath, remotePath, errMsg string) bool {
	entry := AlertEntry{
		LocalPath:  localPath,
		RemotePath: remotePath,
		Error:      errMsg,
		FailedAt:   time.Now().UTC().Format(time.RFC3339),
	}

	delivered := false

	data, err := json.Marshal(entry)
	if err != nil {
		log.Error().Err(err).Msg("notifier: failed to marshal alert")
	} else if err := n.rdb.LPush(ctx, AlertPrefix+n.channel, data).Err(); err != nil {
		log.Error().Err(err).Str("channel", n.channel).Msg("notifier: failed to push alert")
	} else {
		delivered = true
	}

	if n.mailer != nil && n.adminEmail != "" {
		body := "Report sync failed after all retries.\n\n" +
			"Local file: " + localPath + "\n" +
			"Remote path: " + remotePath + "\n" +
			"Last error: " + errMsg + "\n"
		if err := n.mailer.SendAlert(n.adminEmail, "[recyclic] report sync failure", body); err != nil {
			log.Error().Err(err).Str("to", n.adminEmail).Msg("notifier: failed to send alert email")
		} else {
			delivered = true
		}
	}

	if delivered {
		log.Warn().
			Str("local", localPath).
			Str("remote", remotePath).
			Str("error", errMsg).
			Msg("notifier: sync failure escalated")
	}
	return delivered
}

// AlertCount returns the number of pending alerts for monitoring.
func AlertCount(ctx context.Context, rdb *redis.Client, channel string) (int64, error) {
	return rdb.LLen(ctx, AlertPrefix+channel).Result()
}
