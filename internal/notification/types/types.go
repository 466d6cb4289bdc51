// Package types defines the notifier contract shared by publishing backends.
package types

import (
	"context"

	"github.com/filmrelay/filmrelay/internal/scrape"
)

// NotifierType identifies a notification backend
type NotifierType string

const (
	NotifierTelegram NotifierType = "telegram"
)

// Notifier publishes film records to an external channel
type Notifier interface {
	Type() NotifierType
	Name() string

	// Test sends a test notification to verify the configuration
	Test(ctx context.Context) error

	// PublishFilm announces a newly extracted film with its download variants
	PublishFilm(ctx context.Context, record *scrape.FilmRecord) error
}
