package journal

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/cloudx-io/openlot/core"
)

// Sink adapts a Journal to core.EventSink. Append failures are logged rather
// than surfaced: the journal observes settlement, it is not part of it.
type Sink struct {
	journal *Journal
	logger  zerolog.Logger
}

func NewSink(j *Journal, logger zerolog.Logger) *Sink {
	return &Sink{journal: j, logger: logger}
}

func (s *Sink) Emit(e core.Event) {
	if err := s.journal.Append(context.Background(), e); err != nil {
		s.logger.Error().
			Err(err).
			Str("kind", string(e.Kind)).
			Str("bidder", string(e.Bidder)).
			Msg("journal append failed")
	}
}

var _ core.EventSink = (*Sink)(nil)
