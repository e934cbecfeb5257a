package notify_test

import (
	"bytes"
	"testing"

	"github.com/nikolayk812/storefront/internal/notify"
	"github.com/nikolayk812/storefront/internal/port"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestWriter(t *testing.T) {
	var buf bytes.Buffer
	w := notify.NewWriter(&buf, zerolog.Nop())

	notify.Success(w, "%d item added", 1)
	notify.Error(w, "payment failed")
	notify.Info(w, "hello")

	assert.Equal(t, "[ok] 1 item added\n[error] payment failed\n[info] hello\n", buf.String())
}

func TestRecorder(t *testing.T) {
	var r notify.Recorder

	notify.Success(&r, "a")
	r.Notify(port.Notice{Level: port.NoticeError, Message: "b"})

	assert.Equal(t, []string{"a", "b"}, r.Messages())
	assert.Equal(t, port.NoticeError, r.Notices()[1].Level)

	r.Reset()
	assert.Empty(t, r.Notices())
}
