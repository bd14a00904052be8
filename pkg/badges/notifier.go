package badges

import (
	"context"
	"fmt"
	"log/slog"
)

// LogNotifier writes badge announcements to the application log. It stands in
// for a push channel in local development and keeps the sequencer exercised
// even when no realtime transport is configured.
type LogNotifier struct {
	log *slog.Logger
}

func NewLogNotifier(log *slog.Logger) *LogNotifier {
	if log == nil {
		log = slog.Default()
	}
	return &LogNotifier{log: log}
}

func (n *LogNotifier) Deliver(ctx context.Context, badge Badge) error {
	n.log.InfoContext(ctx, "badge unlocked",
		slog.String("badge_key", badge.Key),
		slog.String("badge", fmt.Sprintf("%s %s", badge.Emoji, badge.Name)),
	)
	return nil
}
