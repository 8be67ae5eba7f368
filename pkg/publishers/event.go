package publishers

import (
	"time"

	"github.com/samvad-hq/samvad-json-relay/internal/domain"
)

// Event represents the payload published downstream: one successful batch
// fetch of a target.
type Event struct {
	TargetID    string          `json:"target_id"`
	TargetName  string          `json:"target_name"`
	URLs        []string        `json:"urls"`
	Results     []domain.Result `json:"results"`
	Digest      string          `json:"digest"`
	CollectedAt time.Time       `json:"collected_at"`
}

// NewEvent constructs an Event for the given target and its batch results.
func NewEvent(targetID, targetName string, urls []string, results []domain.Result, digest string) Event {
	return Event{
		TargetID:    targetID,
		TargetName:  targetName,
		URLs:        urls,
		Results:     results,
		Digest:      digest,
		CollectedAt: time.Now().UTC(),
	}
}
