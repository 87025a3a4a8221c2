package util

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/bytedance/sonic"
)

// renderEntry formats an entry as one line without the trailing newline.
func renderEntry(entry LogEntry, format LogFormat) ([]byte, error) {
	if format == FormatJSON {
		return sonic.Marshal(entry)
	}

	var b strings.Builder
	b.WriteString(entry.Timestamp.Format("2006/01/02 15:04:05.000"))
	b.WriteString(" [")
	b.WriteString(entry.Level)
	b.WriteString("] ")
	b.WriteString(entry.Message)

	keys := make([]string, 0, len(entry.Fields))
	for k := range entry.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(&b, " %s=%v", k, entry.Fields[k])
	}
	return []byte(b.String()), nil
}

// WriterOutput writes entries line by line to an io.Writer.
type WriterOutput struct {
	mu     sync.Mutex
	w      io.Writer
	closer io.Closer
	format LogFormat
}

// NewConsoleOutput writes to w, which is never closed.
func NewConsoleOutput(w io.Writer, format LogFormat) *WriterOutput {
	return &WriterOutput{w: w, format: format}
}

// NewFileOutput appends to path, creating parent directories.
func NewFileOutput(path string, format LogFormat) (*WriterOutput, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, err
	}
	return &WriterOutput{w: f, closer: f, format: format}, nil
}

func (o *WriterOutput) Write(entry LogEntry) error {
	line, err := renderEntry(entry, o.format)
	if err != nil {
		return err
	}

	o.mu.Lock()
	defer o.mu.Unlock()
	if o.w == nil {
		return nil
	}
	_, err = o.w.Write(append(line, '\n'))
	return err
}

func (o *WriterOutput) Close() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.w = nil
	if o.closer == nil {
		return nil
	}
	return o.closer.Close()
}
