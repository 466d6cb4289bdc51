package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"html"
	"net/http"
	"strings"

	"github.com/rs/zerolog"

	"github.com/filmrelay/filmrelay/internal/notification/types"
	"github.com/filmrelay/filmrelay/internal/scrape"
)

const telegramAPIBase = "https://api.telegram.org/bot"

// Telegram rejects photo captions over this length; longer announcements
// go out as a plain message with the poster linked instead of attached.
const maxCaptionLength = 1024

// Settings contains Telegram-specific configuration
type Settings struct {
	BotToken string `json:"botToken"`
	ChatID   string `json:"chatId"`
	TopicID  int64  `json:"topicId,omitempty"`
	Silent   bool   `json:"silent,omitempty"`
}

// Notifier sends film announcements via Telegram bot
type Notifier struct {
	name       string
	settings   Settings
	apiBase    string
	httpClient *http.Client
	logger     zerolog.Logger
}

// New creates a new Telegram notifier
func New(name string, settings Settings, httpClient *http.Client, logger zerolog.Logger) *Notifier {
	return &Notifier{
		name:       name,
		settings:   settings,
		apiBase:    telegramAPIBase,
		httpClient: httpClient,
		logger:     logger.With().Str("notifier", "telegram").Str("name", name).Logger(),
	}
}

func (n *Notifier) Type() types.NotifierType {
	return types.NotifierTelegram
}

func (n *Notifier) Name() string {
	return n.name
}

func (n *Notifier) Test(ctx context.Context) error {
	message := "<b>FilmRelay Test Notification</b>\n\nThis is a test notification from FilmRelay."
	return n.callMethod(ctx, "sendMessage", map[string]any{"text": message})
}

// PublishFilm announces a film with its download variants. Records with a
// poster go out as a photo with caption when the caption fits.
func (n *Notifier) PublishFilm(ctx context.Context, record *scrape.FilmRecord) error {
	text := formatFilm(record)

	if record.PosterURL != "" && len(text) <= maxCaptionLength {
		err := n.callMethod(ctx, "sendPhoto", map[string]any{
			"photo":   record.PosterURL,
			"caption": text,
		})
		if err == nil {
			return nil
		}
		// Posters hosted on flaky image CDNs fail sendPhoto regularly;
		// the announcement still matters more than the artwork.
		n.logger.Warn().Err(err).Str("topicId", record.TopicID).Msg("sendPhoto failed, falling back to message")
	}

	return n.callMethod(ctx, "sendMessage", map[string]any{
		"text":                     text,
		"disable_web_page_preview": false,
	})
}

func formatFilm(record *scrape.FilmRecord) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("<b>🎬 %s", html.EscapeString(record.Title)))
	if record.Year > 0 {
		sb.WriteString(fmt.Sprintf(" (%d)", record.Year))
	}
	sb.WriteString("</b>\n")

	if record.Language != "" {
		sb.WriteString(fmt.Sprintf("\n🗣 Language: %s", html.EscapeString(record.Language)))
	}
	if record.Subtitles != "" {
		sb.WriteString(fmt.Sprintf("\n💬 Subtitles: %s", html.EscapeString(record.Subtitles)))
	}

	for _, v := range record.Downloads {
		sb.WriteString("\n\n")
		sb.WriteString(fmt.Sprintf("📊 <b>%s</b>", html.EscapeString(string(v.Resolution))))
		var details []string
		if v.FileSize != "" {
			details = append(details, v.FileSize)
		}
		if v.Codec != "" {
			details = append(details, v.Codec)
		}
		if v.Audio != "" {
			details = append(details, v.Audio)
		}
		if len(details) > 0 {
			sb.WriteString(" · " + html.EscapeString(strings.Join(details, " · ")))
		}
		if v.MagnetLink != "" {
			sb.WriteString(fmt.Sprintf("\n🧲 <a href=\"%s\">Magnet</a>", html.EscapeString(v.MagnetLink)))
		}
		if v.DirectLink != "" {
			sb.WriteString(fmt.Sprintf("\n🔗 <a href=\"%s\">Direct Download</a>", html.EscapeString(v.DirectLink)))
		}
	}

	if record.SourceURL != "" {
		sb.WriteString(fmt.Sprintf("\n\n<a href=\"%s\">Source</a>", html.EscapeString(record.SourceURL)))
	}

	return sb.String()
}

func (n *Notifier) callMethod(ctx context.Context, method string, payload map[string]any) error {
	url := fmt.Sprintf("%s%s/%s", n.apiBase, n.settings.BotToken, method)

	payload["chat_id"] = n.settings.ChatID
	payload["parse_mode"] = "HTML"

	if n.settings.Silent {
		payload["disable_notification"] = true
	}

	if n.settings.TopicID > 0 {
		payload["message_thread_id"] = n.settings.TopicID
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")

	resp, err := n.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var result struct {
			OK          bool   `json:"ok"`
			Description string `json:"description"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&result); err == nil && result.Description != "" {
			return fmt.Errorf("telegram error: %s", result.Description)
		}
		return fmt.Errorf("telegram returned status %d", resp.StatusCode)
	}

	return nil
}
