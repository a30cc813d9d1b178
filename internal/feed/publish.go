package feed

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// Publisher writes the status and log resources to local files for the
// dashboard (or the HTTP server) to pick up.
type Publisher struct {
	statusPath string
	logPath    string
	maxLines   int
	now        func() time.Time

	mu sync.Mutex
}

// NewPublisher creates a Publisher. maxLines bounds the log file; zero or
// less disables trimming.
func NewPublisher(statusPath, logPath string, maxLines int) *Publisher {
	return &Publisher{
		statusPath: statusPath,
		logPath:    logPath,
		maxLines:   maxLines,
		now:        time.Now,
	}
}

// StatusPath returns the status file path.
func (p *Publisher) StatusPath() string { return p.statusPath }

// LogPath returns the log file path.
func (p *Publisher) LogPath() string { return p.logPath }

// WriteStatus replaces the status file atomically by writing to a temp file
// in the same directory and renaming it over the old one.
func (p *Publisher) WriteStatus(st RiskStatus) error {
	if st.UpdatedAt == nil {
		ts := p.now().UTC()
		st.UpdatedAt = &ts
	}

	data, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal status: %w", err)
	}

	dir := filepath.Dir(p.statusPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create status dir: %w", err)
	}

	tmpFile, err := os.CreateTemp(dir, ".tmp-*.json")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	if _, err := tmpFile.Write(append(data, '\n')); err != nil {
		tmpFile.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("close temp file: %w", err)
	}

	if err := os.Rename(tmpPath, p.statusPath); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("rename to final path: %w", err)
	}
	return nil
}

// AppendLog appends lines to the log file, each prefixed with a timestamp,
// and trims the file to the newest maxLines lines.
func (p *Publisher) AppendLog(lines ...string) error {
	if len(lines) == 0 {
		return nil
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(p.logPath), 0755); err != nil {
		return fmt.Errorf("create log dir: %w", err)
	}

	f, err := os.OpenFile(p.logPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}

	ts := p.now().Format("15:04:05")
	var b strings.Builder
	for _, line := range lines {
		b.WriteString("[" + ts + "] " + line + "\n")
	}
	if _, err := f.WriteString(b.String()); err != nil {
		f.Close()
		return fmt.Errorf("append log: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close log file: %w", err)
	}

	return p.trim()
}

// trim keeps only the newest maxLines lines. Caller holds p.mu.
func (p *Publisher) trim() error {
	if p.maxLines <= 0 {
		return nil
	}

	data, err := os.ReadFile(p.logPath)
	if err != nil {
		return fmt.Errorf("read log file: %w", err)
	}

	lines := strings.SplitAfter(string(data), "\n")
	if n := len(lines); n > 0 && lines[n-1] == "" {
		lines = lines[:n-1]
	}
	if len(lines) <= p.maxLines {
		return nil
	}

	kept := strings.Join(lines[len(lines)-p.maxLines:], "")
	if err := os.WriteFile(p.logPath, []byte(kept), 0644); err != nil {
		return fmt.Errorf("trim log file: %w", err)
	}
	return nil
}
