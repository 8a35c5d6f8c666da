// Пакет notify — приёмники уведомлений об успехе и ошибках операций.
// Отправка fire-and-forget: приёмник не возвращает ошибок.
package notify

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Variant — вариант отображения уведомления.
type Variant string

const (
	// VariantDefault — обычное уведомление об успехе
	VariantDefault Variant = "default"
	// VariantDestructive — уведомление об ошибке
	VariantDestructive Variant = "destructive"
)

// Notification — уведомление для пользователя.
type Notification struct {
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Variant     Variant   `json:"variant"`
	Time        time.Time `json:"time"`
}

// Notifier — приёмник уведомлений.
type Notifier interface {
	Notify(n Notification)
}

// Success создаёт уведомление об успехе.
func Success(title, description string) Notification {
	return Notification{Title: title, Description: description, Variant: VariantDefault, Time: time.Now().UTC()}
}

// Failure создаёт уведомление об ошибке.
func Failure(title, description string) Notification {
	return Notification{Title: title, Description: description, Variant: VariantDestructive, Time: time.Now().UTC()}
}

// --- LogNotifier ---

// LogNotifier пишет уведомления в slog.
type LogNotifier struct {
	logger *slog.Logger
}

// NewLogNotifier создаёт приёмник, пишущий в лог.
func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	return &LogNotifier{logger: logger.With(slog.String("component", "notify"))}
}

// Notify логирует уведомление: ошибки — на уровне WARN.
func (l *LogNotifier) Notify(n Notification) {
	level := slog.LevelInfo
	if n.Variant == VariantDestructive {
		level = slog.LevelWarn
	}
	l.logger.Log(context.Background(), level, n.Title,
		slog.String("description", n.Description),
		slog.String("variant", string(n.Variant)),
	)
}

// --- Recorder ---

// Recorder хранит последние уведомления в кольцевом буфере.
type Recorder struct {
	mu    sync.Mutex
	items []Notification
	limit int
}

// NewRecorder создаёт буфер на limit уведомлений (минимум 1).
func NewRecorder(limit int) *Recorder {
	if limit < 1 {
		limit = 1
	}
	return &Recorder{limit: limit}
}

// Notify добавляет уведомление, вытесняя самое старое при переполнении.
func (r *Recorder) Notify(n Notification) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.items) == r.limit {
		copy(r.items, r.items[1:])
		r.items = r.items[:len(r.items)-1]
	}
	r.items = append(r.items, n)
}

// Recent возвращает копию уведомлений, от новых к старым.
func (r *Recorder) Recent() []Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Notification, len(r.items))
	for i, n := range r.items {
		out[len(r.items)-1-i] = n
	}
	return out
}

// --- Multi ---

// Multi рассылает уведомление всем приёмникам.
type Multi []Notifier

// Notify передаёт уведомление каждому приёмнику по порядку.
func (m Multi) Notify(n Notification) {
	for _, s := range m {
		s.Notify(n)
	}
}

// Discard — приёмник, игнорирующий уведомления.
var Discard Notifier = discard{}

type discard struct{}

func (discard) Notify(Notification) {}
