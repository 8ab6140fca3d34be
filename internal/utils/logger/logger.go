package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/fatih/color"
)

type Logger struct {
	serviceName string
	out         io.Writer
}

var (
	// INFO_EMOJI Emoji constants
	INFO_EMOJI    = "ℹ️ "
	SUCCESS_EMOJI = "✅ "
	WARN_EMOJI    = "⚠️ "
	ERROR_EMOJI   = "❌ "
	DEBUG_EMOJI   = "🔍 "
)

var (
	outputMu sync.RWMutex
	output   io.Writer = color.Output
	debugOn            = strings.EqualFold(os.Getenv("LOG_LEVEL"), "debug")
)

// SetOutput redirects every logger created afterwards. Tests use it to keep output quiet.
func SetOutput(w io.Writer) {
	outputMu.Lock()
	defer outputMu.Unlock()
	output = w
}

func New(serviceName string) *Logger {
	outputMu.RLock()
	defer outputMu.RUnlock()
	return &Logger{
		serviceName: serviceName,
		out:         output,
	}
}

func (l *Logger) formatMessage(level, emoji, msg string) string {
	_, file, line, _ := runtime.Caller(2)
	timestamp := time.Now().Format("2006-01-02 15:04:05")
	fileName := filepath.Base(file)

	return fmt.Sprintf("%s | %s | %s | %s:%d | %s | %s",
		emoji,
		timestamp,
		level,
		fileName,
		line,
		l.serviceName,
		msg,
	)
}

func (l *Logger) print(attr color.Attribute, formatted string) {
	_, _ = color.New(attr).Fprintln(l.out, formatted)
}

func (l *Logger) Info(msg string, args ...interface{}) {
	l.print(color.FgCyan, l.formatMessage("INFO", INFO_EMOJI, fmt.Sprintf(msg, args...)))
}

func (l *Logger) Success(msg string, args ...interface{}) {
	l.print(color.FgGreen, l.formatMessage("SUCCESS", SUCCESS_EMOJI, fmt.Sprintf(msg, args...)))
}

func (l *Logger) Warn(msg string, args ...interface{}) {
	l.print(color.FgYellow, l.formatMessage("WARN", WARN_EMOJI, fmt.Sprintf(msg, args...)))
}

// Error logs msg with err appended and returns err wrapped with msg.
func (l *Logger) Error(msg string, err error, args ...interface{}) error {
	text := msg
	if len(args) > 0 {
		text = fmt.Sprintf(msg, args...)
	}
	l.print(color.FgRed, l.formatMessage("ERROR", ERROR_EMOJI, fmt.Sprintf("%s: %v", text, err)))
	return fmt.Errorf("%s: %w", text, err)
}

func (l *Logger) Debug(msg string, args ...interface{}) {
	if !debugOn {
		return
	}
	l.print(color.FgMagenta, l.formatMessage("DEBUG", DEBUG_EMOJI, fmt.Sprintf(msg, args...)))
}
