package main

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/term"

	"github.com/wippyai/ucode-layout/command"
	"github.com/wippyai/ucode-layout/engine"
	"github.com/wippyai/ucode-layout/host/memhost"
)

// newLogger builds a console logger on f. Levels are coloured only when f
// is a terminal.
func newLogger(f *os.File, level zapcore.Level) *zap.Logger {
	enc := zap.NewDevelopmentEncoderConfig()
	enc.TimeKey = ""
	enc.CallerKey = ""
	enc.EncodeLevel = zapcore.CapitalLevelEncoder
	if term.IsTerminal(int(f.Fd())) {
		enc.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}
	core := zapcore.NewCore(zapcore.NewConsoleEncoder(enc), zapcore.Lock(f), level)
	return zap.New(core)
}

func setLoggers(l *zap.Logger) {
	engine.SetLogger(l)
	memhost.SetLogger(l)
	command.SetLogger(l)
}
