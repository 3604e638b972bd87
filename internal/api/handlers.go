package api

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/sentientiq/collective/internal/config"
	"github.com/sentientiq/collective/internal/engine"
	"github.com/sentientiq/collective/internal/model"
	"github.com/sentientiq/collective/internal/pdf"
	"github.com/sentientiq/collective/internal/persona"
	"github.com/sentientiq/collective/internal/retrieval"
)

// SnippetStore is the ingest write path. Satisfied by store.PgStore.
type SnippetStore interface {
	Add(ctx context.Context, doc string, sn model.Snippet, vec []float32) error
}

// Handler owns the client-facing lifecycle of every connection.
type Handler struct {
	engine    *engine.Engine
	embed     retrieval.Embedder
	snippets  SnippetStore
	keepalive time.Duration
	pulse     time.Duration
	version   string
	models    map[string]string
	log       *zap.SugaredLogger
}

func NewHandler(eng *engine.Engine, embed retrieval.Embedder, snippets SnippetStore, cfg *config.Config, log *zap.SugaredLogger) *Handler {
	// A malformed env duration comes through as zero, which would panic
	// the keepalive ticker.
	keepalive := cfg.KeepaliveInterval
	if keepalive <= 0 {
		keepalive = 15 * time.Second
	}
	pulse := cfg.PulseInterval
	if pulse <= 0 {
		pulse = time.Second
	}
	return &Handler{
		engine:    eng,
		embed:     embed,
		snippets:  snippets,
		keepalive: keepalive,
		pulse:     pulse,
		version:   cfg.Version,
		models: map[string]string{
			"fast":      cfg.Fast.Model,
			"primary":   cfg.Primary.Model,
			"precision": cfg.Precision.Model,
		},
		log: log,
	}
}

func (h *Handler) Health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"ok": true})
}

func (h *Handler) Version(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"version": h.version, "models": h.models})
}

// Debate streams the sequential pipeline.
func (h *Handler) Debate(c *fiber.Ctx) error {
	var req model.DebateRequest
	if err := c.BodyParser(&req); err != nil {
		return h.rejectStream(c, "invalid request body")
	}
	if err := req.Validate(); err != nil {
		return h.rejectStream(c, err.Error())
	}

	return h.streamEvents(c, engine.StartDebate(req.Strategy), func(out chan<- engine.Event) {
		// Deliberately not the request context: a client disconnect must
		// not cancel in-flight provider calls.
		h.engine.Debate(context.Background(), &req, out)
	})
}

// Boardroom streams the parallel persona fan-out.
func (h *Handler) Boardroom(c *fiber.Ctx) error {
	var req model.BoardroomRequest
	if err := c.BodyParser(&req); err != nil {
		return h.rejectStream(c, "invalid request body")
	}
	if err := req.Validate(); err != nil {
		return h.rejectStream(c, err.Error())
	}

	defs := persona.Resolve(req.Personas, model.MaxPersonas)
	return h.streamEvents(c, engine.StartBoardroom(len(defs)), func(out chan<- engine.Event) {
		h.engine.Boardroom(context.Background(), &req, defs, out)
	})
}

// rejectStream reports a validation failure as the stream's only event. No
// orchestration is started.
func (h *Handler) rejectStream(c *fiber.Ctx, msg string) error {
	setSSEHeaders(c)
	return c.SendString(encodeFrame(engine.Error(msg)))
}

// streamEvents opens the SSE response, emits accepted and start, then
// relays orchestrator events until the channel closes, at which point the
// single terminal done is written. A failed client write stops all further
// writes and the keepalive; the orchestrator's remaining output is drained
// and discarded so its goroutines never block.
func (h *Handler) streamEvents(c *fiber.Ctx, start engine.Event, run func(out chan<- engine.Event)) error {
	requestID := uuid.NewString()
	events := make(chan engine.Event, 64)
	go func() {
		defer close(events)
		run(events)
	}()

	setSSEHeaders(c)
	keepalive := h.keepalive
	log := h.log.With("request_id", requestID)

	c.Context().SetBodyStreamWriter(fasthttp.StreamWriter(func(w *bufio.Writer) {
		ew := &eventWriter{w: w, log: log}
		ew.send(engine.Accepted(requestID))
		ew.send(start)

		ticker := time.NewTicker(keepalive)
		defer ticker.Stop()

		for {
			select {
			case ev, ok := <-events:
				if !ok {
					ew.send(engine.Done())
					return
				}
				ew.send(ev)
			case <-ticker.C:
				ew.comment("keep-alive")
			}
			if ew.broken {
				ticker.Stop()
				for range events {
					// in-flight provider work runs to completion; its
					// output has nowhere to go
				}
				return
			}
		}
	}))
	return nil
}

// Pulse streams periodic per-role pool statistics.
func (h *Handler) Pulse(c *fiber.Ctx) error {
	setSSEHeaders(c)
	interval := h.pulse

	c.Context().SetBodyStreamWriter(fasthttp.StreamWriter(func(w *bufio.Writer) {
		for {
			stats := make(map[string]any, 4)
			stats["ts"] = time.Now().UTC().Format(time.RFC3339)
			for _, p := range h.engine.Pools().All() {
				active, waiting := p.Stats()
				stats[string(p.Role())] = fiber.Map{
					"active":  active,
					"waiting": waiting,
					"limit":   p.Limit(),
				}
			}
			payload, _ := json.Marshal(stats)
			if _, err := fmt.Fprintf(w, "data: %s\n\n", payload); err != nil {
				return
			}
			if err := w.Flush(); err != nil {
				return
			}
			time.Sleep(interval)
		}
	}))
	return nil
}

// Ingest uploads a PDF, chunks it and writes embedded snippets into the
// vector store that retrieval reads.
func (h *Handler) Ingest(c *fiber.Ctx) error {
	file, err := c.FormFile("file")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "file is required (form field: file)"})
	}

	saveDir := filepath.Join("data", "pdfs")
	if err := os.MkdirAll(saveDir, 0o755); err != nil {
		h.log.Errorw("mkdir failed", "err", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to prepare storage"})
	}
	saveName := fmt.Sprintf("%s__%s", time.Now().Format("20060102_150405"), file.Filename)
	savePath := filepath.Join(saveDir, saveName)
	if err := c.SaveFile(file, savePath); err != nil {
		h.log.Errorw("save file failed", "err", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to save file"})
	}

	txt, err := pdf.ExtractText(savePath)
	if err != nil {
		h.log.Errorw("pdf extract failed", "err", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to extract text from pdf"})
	}
	txt = pdf.Sanitize(txt)
	if len(txt) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "no text extracted from PDF"})
	}

	const chunkSize = 220
	const chunkOverlap = 40
	parts := pdf.ChunkByWords(txt, chunkSize, chunkOverlap)
	if len(parts) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "no chunks created"})
	}

	ctx := c.UserContext()
	docName := filepath.Base(savePath)
	saved := 0
	for i, p := range parts {
		sn := model.Snippet{
			ID:     fmt.Sprintf("%s_chunk_%d", docName, i),
			Text:   p,
			Source: docName,
		}
		vec, err := h.embed.Embed(ctx, p)
		if err != nil {
			h.log.Warnw("embedding failed, skipping chunk", "id", sn.ID, "err", err)
			continue
		}
		if err := h.snippets.Add(ctx, docName, sn, vec); err != nil {
			h.log.Warnw("insert failed, skipping chunk", "id", sn.ID, "err", err)
			continue
		}
		saved++
	}

	return c.JSON(fiber.Map{
		"status":       "ok",
		"doc":          docName,
		"chunks_total": len(parts),
		"chunks_saved": saved,
	})
}

func setSSEHeaders(c *fiber.Ctx) {
	c.Set(fiber.HeaderContentType, "text/event-stream")
	c.Set(fiber.HeaderCacheControl, "no-cache")
	c.Set(fiber.HeaderConnection, "keep-alive")
	c.Set("X-Accel-Buffering", "no")
}
