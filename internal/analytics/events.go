package analytics

import "time"

type EventType string

const (
	EventSearch           EventType = "search"
	EventZeroResult       EventType = "zero_result"
	EventDuplicateRemoved EventType = "duplicate_removed"
)

// SearchEvent is published once per request recorded by the request queue.
// Tick is the queue's logical clock at the time of the request.
type SearchEvent struct {
	Type      EventType `json:"type"`
	Query     string    `json:"query"`
	Returned  int       `json:"returned"`
	Tick      uint64    `json:"tick"`
	Timestamp time.Time `json:"timestamp"`
}

type DuplicateEvent struct {
	Type        EventType `json:"type"`
	DocumentID  int       `json:"document_id"`
	DuplicateOf int       `json:"duplicate_of"`
	Timestamp   time.Time `json:"timestamp"`
}
