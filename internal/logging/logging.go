package logging

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sync"
)

type Loggers struct {
	Server *log.Logger
	Events *log.Logger
	API    *log.Logger
	Bus    *log.Logger
	Cron   *log.Logger

	files []*os.File
}

var (
	once    sync.Once
	loggers *Loggers
	initErr error

	discard = log.New(io.Discard, "", 0)
)

// Init sets up <baseDir>/logs files. Safe to call multiple times.
func Init(baseDir string) (*Loggers, error) {
	once.Do(func() {
		if baseDir == "" {
			initErr = fmt.Errorf("log base dir is empty")
			return
		}
		logDir := filepath.Join(baseDir, "logs")
		if err := os.MkdirAll(logDir, 0755); err != nil {
			initErr = fmt.Errorf("failed to create log dir: %w", err)
			return
		}

		open := func(name string) (*log.Logger, *os.File, error) {
			path := filepath.Join(logDir, name)
			f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
			if err != nil {
				return nil, nil, err
			}
			l := log.New(f, "", log.LstdFlags|log.Lmicroseconds)
			return l, f, nil
		}

		l := &Loggers{}
		var files []*os.File

		var err error
		for _, target := range []struct {
			dst  **log.Logger
			name string
		}{
			{&l.Server, "server.log"},
			{&l.Events, "events.log"},
			{&l.API, "api.log"},
			{&l.Bus, "bus.log"},
			{&l.Cron, "cron.log"},
		} {
			*target.dst, files, err = attach(open, files, target.name)
			if err != nil {
				closeAll(files)
				initErr = err
				return
			}
		}

		l.files = files
		loggers = l

		l.Server.Printf("logging initialized at %s", logDir)
	})

	return loggers, initErr
}

func attach(open func(string) (*log.Logger, *os.File, error), files []*os.File, name string) (*log.Logger, []*os.File, error) {
	l, f, err := open(name)
	if err != nil {
		return nil, files, fmt.Errorf("open %s: %w", name, err)
	}
	return l, append(files, f), nil
}

func closeAll(files []*os.File) {
	for _, f := range files {
		_ = f.Close()
	}
}

// Get returns initialized loggers (may be nil if Init failed or not called).
func Get() *Loggers {
	return loggers
}

// Close flushes and closes the log files.
func (l *Loggers) Close() {
	if l == nil {
		return
	}
	closeAll(l.files)
	l.files = nil
}

// Bus returns the bus logger, or a discarding one before Init.
func Bus() *log.Logger {
	if l := Get(); l != nil && l.Bus != nil {
		return l.Bus
	}
	return discard
}

// Events returns the events logger, or a discarding one before Init.
func Events() *log.Logger {
	if l := Get(); l != nil && l.Events != nil {
		return l.Events
	}
	return discard
}

// Truncate keeps logs readable by capping long strings.
func Truncate(s string, max int) string {
	if max <= 0 || len(s) <= max {
		return s
	}
	return s[:max] + "…"
}
