// Package logger provides colour-prefixed component loggers on top of logrus.
package logger

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/beka-birhanu/vinom-drift/config"
	"github.com/beka-birhanu/vinom-drift/service/i"
	"github.com/sirupsen/logrus"
)

var ErrEmptyPrefix = errors.New("logger prefix must not be empty")

var _ i.Logger = &Logger{}

// Logger writes "[PREFIX] time [LEVEL] message key=value" lines.
type Logger struct {
	entry *logrus.Entry
}

// New creates a logger whose lines start with prefix painted in color.
func New(prefix, color string, out io.Writer) (*Logger, error) {
	if prefix == "" {
		return nil, ErrEmptyPrefix
	}

	base := logrus.New()
	base.SetOutput(out)
	base.SetLevel(logrus.InfoLevel)
	base.SetFormatter(&prefixFormatter{prefix: prefix, color: color})

	return &Logger{entry: logrus.NewEntry(base)}, nil
}

// SetLevel changes the minimum level written, e.g. "debug" or "warning".
func (l *Logger) SetLevel(level string) error {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return err
	}
	l.entry.Logger.SetLevel(lvl)
	return nil
}

// Debug implements i.Logger.
func (l *Logger) Debug(msg string) { l.entry.Debug(msg) }

// Info implements i.Logger.
func (l *Logger) Info(msg string) { l.entry.Info(msg) }

// Warning implements i.Logger.
func (l *Logger) Warning(msg string) { l.entry.Warning(msg) }

// Error implements i.Logger.
func (l *Logger) Error(msg string) { l.entry.Error(msg) }

// WithFields implements i.Logger.
func (l *Logger) WithFields(fields map[string]any) i.Logger {
	return &Logger{entry: l.entry.WithFields(logrus.Fields(fields))}
}

type prefixFormatter struct {
	prefix string
	color  string
}

// Format implements logrus.Formatter.
func (f *prefixFormatter) Format(e *logrus.Entry) ([]byte, error) {
	var b bytes.Buffer

	levelColor := config.LogInfoColor
	if e.Level <= logrus.ErrorLevel {
		levelColor = config.LogErrorColor
	} else if e.Level == logrus.WarnLevel {
		levelColor = config.LogWarnColor
	}

	fmt.Fprintf(&b, "%s[%s]%s %s %s[%s]%s %s",
		f.color, f.prefix, config.ColorReset,
		e.Time.Format("2006/01/02 15:04:05"),
		levelColor, strings.ToUpper(e.Level.String()), config.LogColorReset,
		e.Message,
	)

	keys := make([]string, 0, len(e.Data))
	for k := range e.Data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(&b, " %s=%v", k, e.Data[k])
	}

	b.WriteByte('\n')
	return b.Bytes(), nil
}
