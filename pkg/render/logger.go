package render

import (
	"context"
	"log/slog"
	"sync/atomic"

	"github.com/taigrr/softrast/pkg/models"
)

// nopHandler discards every record and reports itself disabled so callers
// skip formatting.
type nopHandler struct{}

func (nopHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (nopHandler) Handle(context.Context, slog.Record) error { return nil }
func (nopHandler) WithAttrs([]slog.Attr) slog.Handler        { return nopHandler{} }
func (nopHandler) WithGroup(string) slog.Handler             { return nopHandler{} }

var loggerPtr atomic.Pointer[slog.Logger]

func init() {
	loggerPtr.Store(slog.New(nopHandler{}))
}

// SetLogger configures the logger used by the render package and the
// model loaders. By default nothing is logged. Pass nil to restore the
// silent default.
//
// Levels used:
//   - [slog.LevelDebug]: per-frame statistics, buffer reallocation
//   - [slog.LevelWarn]: non-fatal issues such as undecodable textures
func SetLogger(l *slog.Logger) {
	models.SetLogger(l)
	if l == nil {
		l = slog.New(nopHandler{})
	}
	loggerPtr.Store(l)
}

// Logger returns the current logger. Safe for concurrent use.
func Logger() *slog.Logger {
	return loggerPtr.Load()
}
