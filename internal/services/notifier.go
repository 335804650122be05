package services

import (
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/soaringjerry/EcoImpact/internal/utils"
)

// Variant is the severity of a notification.
type Variant string

const (
	VariantDefault     Variant = "default"
	VariantDestructive Variant = "destructive"
)

// Notification is a transient message for the user. Key identifies the
// message in the i18n catalog; Title and Description hold the English text.
type Notification struct {
	Key         string    `json:"key"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Variant     Variant   `json:"variant"`
	Args        []string  `json:"args,omitempty"`
	Time        time.Time `json:"time"`
}

// NewNotification builds a notification from the message catalog.
func NewNotification(key string, variant Variant, args ...string) Notification {
	return Notification{
		Key:         key,
		Title:       utils.T(utils.DefaultLocale, key+".title"),
		Description: utils.Tf(utils.DefaultLocale, key+".description", args...),
		Variant:     variant,
		Args:        args,
		Time:        time.Now().UTC(),
	}
}

// Localized returns n with Title and Description in locale.
func (n Notification) Localized(locale string) Notification {
	n.Title = utils.T(locale, n.Key+".title")
	n.Description = utils.Tf(locale, n.Key+".description", n.Args...)
	return n
}

// Notifier displays transient messages. Notify must not block.
type Notifier interface {
	Notify(n Notification)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(n Notification)

func (f NotifierFunc) Notify(n Notification) { f(n) }

// MultiNotifier fans a notification out to every notifier.
type MultiNotifier []Notifier

func (m MultiNotifier) Notify(n Notification) {
	for _, x := range m {
		if x != nil {
			x.Notify(n)
		}
	}
}

// LogNotifier writes notifications to a zerolog logger.
type LogNotifier struct {
	logger zerolog.Logger
}

func NewLogNotifier(logger zerolog.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

func (l *LogNotifier) Notify(n Notification) {
	ev := l.logger.Info()
	if n.Variant == VariantDestructive {
		ev = l.logger.Warn()
	}
	ev.Str("key", n.Key).Str("title", n.Title).Msg(n.Description)
}

// Inbox buffers the most recent notifications until drained.
type Inbox struct {
	mu    sync.Mutex
	items []Notification
	limit int
}

// NewInbox keeps at most limit notifications, dropping the oldest.
func NewInbox(limit int) *Inbox {
	if limit <= 0 {
		limit = 20
	}
	return &Inbox{limit: limit}
}

func (b *Inbox) Notify(n Notification) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.items = append(b.items, n)
	if over := len(b.items) - b.limit; over > 0 {
		b.items = append([]Notification(nil), b.items[over:]...)
	}
}

// Drain returns pending notifications oldest first and empties the inbox.
func (b *Inbox) Drain() []Notification {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := b.items
	b.items = nil
	if out == nil {
		out = []Notification{}
	}
	return out
}

// Len reports the number of pending notifications.
func (b *Inbox) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.items)
}

// Reasons a protected page or command asked the user to sign in.
const (
	LoginForDashboard  = "dashboard"
	LoginForProfile    = "profile"
	LoginForChallenges = "challenges"
	LoginForActions    = "actions"
	LoginForPlan       = "plan"
)

// LoginRequired is the destructive notice shown when an anonymous user
// reaches a protected page or command.
func LoginRequired(reason string) Notification {
	return NewNotification(NotifyLoginRequired+"."+reason, VariantDestructive)
}
