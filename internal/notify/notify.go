package notify

import (
	"fmt"
	"io"
	"sync"

	"github.com/nikolayk812/storefront/internal/port"
	"github.com/rs/zerolog"
)

// Writer prints notices as one-line toasts.
type Writer struct {
	mu     sync.Mutex
	out    io.Writer
	logger zerolog.Logger
}

func NewWriter(out io.Writer, logger zerolog.Logger) *Writer {
	return &Writer{out: out, logger: logger}
}

func (w *Writer) Notify(n port.Notice) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if _, err := fmt.Fprintf(w.out, "%s %s\n", marker(n.Level), n.Message); err != nil {
		w.logger.Warn().Err(err).Msg("notice_write_failed")
	}
	w.logger.Debug().Str("level", string(n.Level)).Str("message", n.Message).Msg("notice")
}

func marker(level port.NoticeLevel) string {
	switch level {
	case port.NoticeSuccess:
		return "[ok]"
	case port.NoticeError:
		return "[error]"
	default:
		return "[info]"
	}
}

// Recorder keeps every notice in memory.
type Recorder struct {
	mu      sync.Mutex
	notices []port.Notice
}

func (r *Recorder) Notify(n port.Notice) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notices = append(r.notices, n)
}

func (r *Recorder) Notices() []port.Notice {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]port.Notice(nil), r.notices...)
}

func (r *Recorder) Messages() []string {
	notices := r.Notices()
	messages := make([]string, 0, len(notices))
	for _, n := range notices {
		messages = append(messages, n.Message)
	}
	return messages
}

func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notices = nil
}

type Nop struct{}

func (Nop) Notify(port.Notice) {}

func Success(n port.Notifier, format string, args ...any) {
	n.Notify(port.Notice{Level: port.NoticeSuccess, Message: fmt.Sprintf(format, args...)})
}

func Error(n port.Notifier, format string, args ...any) {
	n.Notify(port.Notice{Level: port.NoticeError, Message: fmt.Sprintf(format, args...)})
}

func Info(n port.Notifier, format string, args ...any) {
	n.Notify(port.Notice{Level: port.NoticeInfo, Message: fmt.Sprintf(format, args...)})
}
