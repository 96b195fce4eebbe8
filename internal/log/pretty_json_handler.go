package log

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"sync"
)

type PrettyJSONHandlerOptions struct {
	slog.HandlerOptions
	PrettyPrint bool
}

// NewPrettyJSONHandler returns a JSON handler which indents every record if PrettyPrint is set.
// Loggers derived using With or WithGroup keep indenting records.
func NewPrettyJSONHandler(w io.Writer, opts *PrettyJSONHandlerOptions) slog.Handler {
	if opts == nil {
		opts = &PrettyJSONHandlerOptions{}
	}

	if !opts.PrettyPrint {
		return slog.NewJSONHandler(w, &opts.HandlerOptions)
	}

	out := &prettyOutput{writer: w}
	return &prettyHandler{
		handler: slog.NewJSONHandler(&out.buf, &opts.HandlerOptions),
		out:     out,
	}
}

// prettyOutput is shared by a handler and all handlers derived from it.
type prettyOutput struct {
	mu     sync.Mutex
	buf    bytes.Buffer
	writer io.Writer
}

type prettyHandler struct {
	handler slog.Handler
	out     *prettyOutput
}

func (h *prettyHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.handler.Enabled(ctx, level)
}

func (h *prettyHandler) Handle(ctx context.Context, r slog.Record) error {
	h.out.mu.Lock()
	defer h.out.mu.Unlock()

	h.out.buf.Reset()
	if err := h.handler.Handle(ctx, r); err != nil {
		return err
	}

	var prettyJSON bytes.Buffer
	if err := json.Indent(&prettyJSON, h.out.buf.Bytes(), "", "  "); err != nil {
		// write the record as is rather than losing it
		_, werr := h.out.writer.Write(h.out.buf.Bytes())
		if werr != nil {
			return werr
		}
		return err
	}

	_, err := h.out.writer.Write(prettyJSON.Bytes())
	return err
}

func (h *prettyHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &prettyHandler{handler: h.handler.WithAttrs(attrs), out: h.out}
}

func (h *prettyHandler) WithGroup(name string) slog.Handler {
	return &prettyHandler{handler: h.handler.WithGroup(name), out: h.out}
}
