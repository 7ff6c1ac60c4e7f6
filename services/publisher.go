package services

import (
	"context"

	"github.com/rs/zerolog"

	"vibin_match/models"
)

// ChangePublisher announces committed writes to live queries.
// realtime.LocalFeed and realtime.RedisFeed implement it.
type ChangePublisher interface {
	Publish(ctx context.Context, change models.Change) error
}

// publishAll is fire-and-forget: a lost change only delays a snapshot until
// the next one, so failures are logged and never returned.
func publishAll(ctx context.Context, p ChangePublisher, log zerolog.Logger, changes ...models.Change) {
	if p == nil {
		return
	}
	for _, c := range changes {
		if err := p.Publish(ctx, c); err != nil {
			log.Warn().Err(err).Str("kind", string(c.Kind)).Str("threadKey", c.ThreadKey).Msg("⚠️ change not published")
		}
	}
}
