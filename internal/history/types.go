package history

import "time"

// EventType identifies the kind of history entry.
type EventType string

const (
	EventFilmPublished EventType = "film_published"
	EventPublishFailed EventType = "publish_failed"
	EventRunCompleted  EventType = "run_completed"
	EventRunFailed     EventType = "run_failed"
)

// Entry is a single history record.
type Entry struct {
	ID        int64          `json:"id"`
	EventType EventType      `json:"eventType"`
	TopicID   string         `json:"topicId,omitempty"`
	Title     string         `json:"title,omitempty"`
	Data      map[string]any `json:"data,omitempty"`
	CreatedAt time.Time      `json:"createdAt"`
}

// CreateInput contains the fields for a new history entry.
type CreateInput struct {
	EventType EventType
	TopicID   string
	Title     string
	Data      map[string]any
}

// ListOptions controls history listing.
type ListOptions struct {
	Page      int
	PageSize  int
	EventType string
}

// ListResponse is a paginated history listing.
type ListResponse struct {
	Entries    []*Entry `json:"entries"`
	TotalCount int64    `json:"totalCount"`
	Page       int      `json:"page"`
	PageSize   int      `json:"pageSize"`
}
