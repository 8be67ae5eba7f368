package publishers

import "context"

// logPublisher writes a summary of each event to the logger. Useful locally
// when no broker is available.
type logPublisher struct {
	id  string
	log Logger
}

func newLogPublisher(_ context.Context, cfg PublisherConfig, log Logger) (Publisher, error) {
	return &logPublisher{id: cfg.ID, log: ensureLogger(log)}, nil
}

func (l *logPublisher) ID() string   { return l.id }
func (l *logPublisher) Type() string { return TypeLog }
func (l *logPublisher) Close() error { return nil }

func (l *logPublisher) Publish(_ context.Context, evt Event) error {
	l.log.InfoObj("batch event", "event", map[string]any{
		"publisher_id": l.id,
		"target_id":    evt.TargetID,
		"target_name":  evt.TargetName,
		"urls":         len(evt.URLs),
		"digest":       evt.Digest,
		"collected_at": evt.CollectedAt,
	})
	return nil
}
