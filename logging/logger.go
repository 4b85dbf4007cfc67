package logging

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/alexander-edwards/asana-clone-app-fullstack/config"
)

const SystemName = "asana-api"

var (
	Logger = logrus.New()
	once   sync.Once
)

type CustomFormatter struct {
	SystemName string
}

func (f *CustomFormatter) Format(entry *logrus.Entry) ([]byte, error) {
	var b *bytes.Buffer
	if entry.Buffer != nil {
		b = entry.Buffer
	} else {
		b = &bytes.Buffer{}
	}

	b.WriteString(fmt.Sprintf("Date: %s, Time: %s, ", entry.Time.Format("2006-01-02"), entry.Time.Format("15:04:05")))
	b.WriteString(fmt.Sprintf("Event Source: %s, ", f.SystemName))
	b.WriteString(fmt.Sprintf("Event Type: %s, ", strings.ToUpper(entry.Level.String())))

	eventID := uuid.New().String()
	if id, ok := entry.Data["request_id"].(string); ok && id != "" {
		eventID = id
	}
	b.WriteString(fmt.Sprintf("Event ID: %s, ", eventID))
	b.WriteString(fmt.Sprintf("Message: %s", entry.Message))

	for k, v := range entry.Data {
		if k == "request_id" {
			continue
		}
		b.WriteString(fmt.Sprintf(", %s: %v", k, v))
	}

	if entry.HasCaller() {
		b.WriteString(fmt.Sprintf(", Location: %s:%d in %s", entry.Caller.File, entry.Caller.Line, entry.Caller.Function))
	}

	b.WriteByte('\n')
	return b.Bytes(), nil
}

// InitLogger points Logger at a rotating file (and stderr when enabled).
// Only the first call has an effect.
func InitLogger(cfg config.LogConfig) error {
	var initErr error
	once.Do(func() {
		initErr = configure(Logger, cfg)
	})
	return initErr
}

func configure(l *logrus.Logger, cfg config.LogConfig) error {
	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		return fmt.Errorf("parse log level %q: %w", cfg.Level, err)
	}

	var writers []io.Writer
	if cfg.File != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.File), 0o700); err != nil {
			return fmt.Errorf("create log directory: %w", err)
		}
		writers = append(writers, &lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    cfg.MaxSize,
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAge,
			Compress:   cfg.Compress,
		})
	}
	if cfg.Stdout || len(writers) == 0 {
		writers = append(writers, os.Stderr)
	}

	l.SetOutput(io.MultiWriter(writers...))
	l.SetFormatter(&CustomFormatter{SystemName: SystemName})
	l.SetLevel(level)
	l.SetReportCaller(true)
	return nil
}
