// Copyright (C) 2025 Josh Simonot
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

package logger

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"runtime"
	"sync"
)

// Logger is a prefixed logger writing through the shared base writer.
type Logger struct {
	prefix string
}

var (
	mu           sync.RWMutex
	base         *log.Logger
	logFile      *os.File
	debugEnabled bool
)

func init() {
	// until Init is called, log to stdout only
	base = log.New(os.Stdout, "", log.LstdFlags)
}

// Init routes all loggers to stdout plus the given log file.
// Debug output starts enabled if the DEBUG env var is set.
func Init(logPath string) error {
	if err := os.MkdirAll(filepath.Dir(logPath), 0755); err != nil {
		return err
	}
	f, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return err
	}

	mu.Lock()
	defer mu.Unlock()
	if logFile != nil {
		logFile.Close()
	}
	logFile = f
	base = log.New(io.MultiWriter(os.Stdout, logFile), "", log.LstdFlags)
	if os.Getenv("DEBUG") != "" {
		debugEnabled = true
	}
	return nil
}

// Close releases the log file (call on shutdown).
func Close() {
	mu.Lock()
	defer mu.Unlock()
	if logFile != nil {
		logFile.Close()
		logFile = nil
	}
}

// EnableDebug turns debug logging on/off at runtime.
func EnableDebug(on bool) {
	mu.Lock()
	debugEnabled = on
	mu.Unlock()
}

// IsDebug reports the current debug state.
func IsDebug() bool {
	mu.RLock()
	defer mu.RUnlock()
	return debugEnabled
}

func New(prefix string) *Logger {
	return &Logger{prefix: prefix}
}

func (l *Logger) printf(level, msg string) {
	mu.RLock()
	out := base
	mu.RUnlock()
	out.Printf("[%s] %s: %s", l.prefix, level, msg)
}

func (l *Logger) Info(fmtstr string, v ...any) {
	l.printf("INFO", fmt.Sprintf(fmtstr, v...))
}

func (l *Logger) Warn(fmtstr string, v ...any) {
	l.printf("WARN", fmt.Sprintf(fmtstr, v...))
}

func (l *Logger) Error(fmtstr string, v ...any) {
	msg := fmt.Sprintf(fmtstr, v...)
	if _, file, line, ok := runtime.Caller(1); ok {
		msg = fmt.Sprintf("(%s:%d) %s", filepath.Base(file), line, msg)
	}
	l.printf("ERROR", msg)
}

// Fatal logs and panics. Reserved for unrecoverable startup errors
// such as a misconfigured deployment.
func (l *Logger) Fatal(fmtstr string, v ...any) {
	msg := fmt.Sprintf(fmtstr, v...)
	if _, file, line, ok := runtime.Caller(1); ok {
		msg = fmt.Sprintf("(%s:%d) %s", filepath.Base(file), line, msg)
	}
	l.printf("FATAL", msg)
	panic(msg)
}

func (l *Logger) Debug(fmtstr string, v ...any) {
	if !IsDebug() {
		return
	}
	l.printf("DEBUG", fmt.Sprintf(fmtstr, v...))
}
