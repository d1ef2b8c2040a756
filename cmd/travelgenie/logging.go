package main

import (
	"io"
	"log/slog"
	"strings"

	"github.com/Avaneesh16/Travel-Genie/internal/profile"
)

func newLogger(w io.Writer, p *profile.Profile) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level:     p.SlogLevel(),
		AddSource: p.IsDev() && p.SlogLevel() == slog.LevelDebug,
	}
	var handler slog.Handler
	if strings.EqualFold(p.LogFormat, "json") {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}
	return slog.New(handler).With("service", "travelgenie", "mode", p.Mode)
}
