package api

import (
	"bufio"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"github.com/sentientiq/collective/internal/engine"
)

// eventWriter serializes events onto one client connection. Every frame is
// flushed as it is produced; nothing is batched. The first failed write
// marks the connection broken and all later frames are dropped.
type eventWriter struct {
	w      *bufio.Writer
	log    *zap.SugaredLogger
	broken bool
}

func (ew *eventWriter) send(ev engine.Event) {
	if ew.broken {
		return
	}
	if _, err := ew.w.WriteString(encodeFrame(ev)); err != nil {
		ew.fail(err)
		return
	}
	if err := ew.w.Flush(); err != nil {
		ew.fail(err)
	}
}

// comment writes an SSE no-op frame, used as the keepalive heartbeat.
func (ew *eventWriter) comment(msg string) {
	if ew.broken {
		return
	}
	if _, err := fmt.Fprintf(ew.w, ": %s\n\n", msg); err != nil {
		ew.fail(err)
		return
	}
	if err := ew.w.Flush(); err != nil {
		ew.fail(err)
	}
}

func (ew *eventWriter) fail(err error) {
	ew.broken = true
	ew.log.Debugw("client connection lost, discarding further events", "err", err)
}

func encodeFrame(ev engine.Event) string {
	data, err := json.Marshal(ev)
	if err != nil {
		data = []byte("{}")
	}
	return fmt.Sprintf("event: %s\ndata: %s\n\n", ev.Kind, data)
}
