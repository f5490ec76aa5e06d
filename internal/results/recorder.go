package results

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/verte-zerg/typeduel/internal/session"
)

// Recorder watches session notifications and persists the final record.
type Recorder struct {
	log   zerolog.Logger
	store *Store
}

func NewRecorder(log zerolog.Logger, store *Store) *Recorder {
	return &Recorder{log: log, store: store}
}

// Run consumes notifications until the channel closes and stores the record
// carried by the final snapshot. Sessions abandoned before completion publish
// no record and store nothing. The context only bounds the insert; channel
// shutdown is driven by the session loop.
func (r *Recorder) Run(ctx context.Context, notes <-chan session.Notification) error {
	for note := range notes {
		if note.Record == nil {
			continue
		}
		if err := r.store.InsertRecord(ctx, *note.Record); err != nil {
			return fmt.Errorf("failed to store session %s: %w", note.Record.ID, err)
		}
		r.log.Info().Str("session", note.Record.ID).Msg("session recorded")
	}
	return nil
}
