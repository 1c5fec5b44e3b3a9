package app

import (
	"strings"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const logCaptureLimit = 300

// logCapture keeps the last lines written by the logger and pushes them to the
// log pane. Lines written before a sink is attached are replayed on attach.
type logCapture struct {
	mu    sync.Mutex
	lines []string
	limit int
	sink  func(string)
}

func newLogCapture(limit int) *logCapture {
	return &logCapture{limit: limit}
}

func (l *logCapture) Write(p []byte) (int, error) {
	l.mu.Lock()
	text := strings.ReplaceAll(string(p), "\r\n", "\n")
	for _, part := range strings.Split(text, "\n") {
		if part == "" {
			continue
		}
		l.lines = append(l.lines, part)
	}
	if len(l.lines) > l.limit {
		l.lines = l.lines[len(l.lines)-l.limit:]
	}
	joined := strings.Join(l.lines, "\n")
	sink := l.sink
	l.mu.Unlock()
	if sink != nil {
		sink(joined)
	}
	return len(p), nil
}

func (l *logCapture) Sync() error { return nil }

func (l *logCapture) attach(sink func(string)) {
	l.mu.Lock()
	l.sink = sink
	joined := strings.Join(l.lines, "\n")
	l.mu.Unlock()
	if sink != nil && joined != "" {
		sink(joined)
	}
}

func (l *logCapture) text() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return strings.Join(l.lines, "\n")
}

// teeToCapture duplicates every entry of base into capture using a short
// console layout suited to the log pane.
func teeToCapture(base *zap.SugaredLogger, capture *logCapture, level zapcore.LevelEnabler) *zap.SugaredLogger {
	encoderConfig := zap.NewDevelopmentEncoderConfig()
	encoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")
	encoderConfig.EncodeCaller = nil
	encoderConfig.CallerKey = ""
	paneCore := zapcore.NewCore(zapcore.NewConsoleEncoder(encoderConfig), zapcore.AddSync(capture), level)
	return zap.New(zapcore.NewTee(base.Desugar().Core(), paneCore)).Sugar()
}
