package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"sync"
)

// New returns a slog.Logger with a friendly, single-line format.
// Debug enables debug-level lines; otherwise only info and above emit.
func New(w io.Writer, debug bool) *slog.Logger {
	if w == nil {
		w = os.Stderr
	}
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	return slog.New(&lineHandler{minLevel: level, w: w})
}

// lineHandler emits concise lines like:
// [INFO] Synthesizing stack stack="QuickLinkStack"
type lineHandler struct {
	mu       sync.Mutex
	minLevel slog.Level
	w        io.Writer
	static   []slog.Attr
}

func (h *lineHandler) Enabled(_ context.Context, lvl slog.Level) bool {
	return lvl >= h.minLevel
}

func (h *lineHandler) Handle(_ context.Context, r slog.Record) error {
	var b strings.Builder
	fmt.Fprintf(&b, "[%s] %s", strings.ToUpper(r.Level.String()), r.Message)
	for _, a := range h.static {
		writeAttr(&b, a)
	}
	r.Attrs(func(a slog.Attr) bool {
		writeAttr(&b, a)
		return true
	})
	b.WriteString("\n")

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := io.WriteString(h.w, b.String())
	return err
}

func writeAttr(b *strings.Builder, a slog.Attr) {
	fmt.Fprintf(b, " %s=%s", a.Key, formatValue(a.Value))
}

func formatValue(v slog.Value) string {
	v = v.Resolve()
	switch v.Kind() {
	case slog.KindString:
		return strconv.Quote(v.String())
	case slog.KindAny:
		if err, ok := v.Any().(error); ok {
			return strconv.Quote(err.Error())
		}
		return fmt.Sprint(v.Any())
	default:
		return v.String()
	}
}

func (h *lineHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	static := make([]slog.Attr, 0, len(h.static)+len(attrs))
	static = append(static, h.static...)
	static = append(static, attrs...)
	return &lineHandler{minLevel: h.minLevel, w: h.w, static: static}
}

func (h *lineHandler) WithGroup(string) slog.Handler {
	return h
}
