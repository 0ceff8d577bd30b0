// Package logging configures the shared logrus instance and the rotating
// debug-log sink driven by the proxy debug_logging settings.
package logging

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	log "github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/zhoudashuaibi/Antigravity-Manager/internal/config/schema"
)

// DebugLogDirName is the directory under the application data directory
// used when debug_logging.output_dir is not set.
const DebugLogDirName = "debug_logs"

// DebugLogFileName is the active debug log file inside the output
// directory; rotated copies carry timestamp suffixes.
const DebugLogFileName = "proxy-debug.log"

var (
	setupOnce   sync.Once
	writerMu    sync.Mutex
	debugWriter *lumberjack.Logger
)

// Formatter renders entries as
// [2026-08-29 20:14:04] [info ] [main.go:42] message key=value
type Formatter struct{}

// fieldOrder fixes the display order for common fields.
var fieldOrder = []string{"field", "fields", "path", "op", "from", "to", "version", "size", "error"}

// Format renders a single log entry.
func (f *Formatter) Format(entry *log.Entry) ([]byte, error) {
	buffer := entry.Buffer
	if buffer == nil {
		buffer = &bytes.Buffer{}
	}

	timestamp := entry.Time.Format("2006-01-02 15:04:05")
	message := strings.TrimRight(entry.Message, "\r\n")

	level := entry.Level.String()
	if level == "warning" {
		level = "warn"
	}

	var fieldsStr string
	if len(entry.Data) > 0 {
		var fields []string
		for _, k := range fieldOrder {
			if v, ok := entry.Data[k]; ok {
				fields = append(fields, fmt.Sprintf("%s=%v", k, v))
			}
		}
		if len(fields) > 0 {
			fieldsStr = " " + strings.Join(fields, " ")
		}
	}

	if entry.Caller != nil {
		fmt.Fprintf(buffer, "[%s] [%-5s] [%s:%d] %s%s\n",
			timestamp, level, filepath.Base(entry.Caller.File), entry.Caller.Line, message, fieldsStr)
	} else {
		fmt.Fprintf(buffer, "[%s] [%-5s] %s%s\n", timestamp, level, message, fieldsStr)
	}
	return buffer.Bytes(), nil
}

// Setup configures the shared logrus instance. Safe to call more than
// once; initialization happens only once.
func Setup() {
	setupOnce.Do(func() {
		log.SetOutput(os.Stdout)
		log.SetReportCaller(true)
		log.SetFormatter(&Formatter{})
		log.RegisterExitHandler(closeDebugOutput)
	})
}

// ResolveOutputDir returns the directory proxy debug logs go to. An
// explicit debug_logging.output_dir wins; otherwise the debug_logs
// directory under dataDir is used. The fallback is computed here on
// demand and never written back into the configuration.
func ResolveOutputDir(cfg schema.Config, dataDir string) string {
	if dir := cfg.Proxy.DebugLogging.OutputDir; dir != nil && strings.TrimSpace(*dir) != "" {
		return *dir
	}
	return filepath.Join(dataDir, DebugLogDirName)
}

// ConfigureDebugOutput points the debug sink at the resolved output
// directory when debug logging is enabled, and tears it down when it is
// not. Called at startup and again whenever debug_logging changes.
func ConfigureDebugOutput(cfg schema.Config, dataDir string) error {
	Setup()

	writerMu.Lock()
	defer writerMu.Unlock()

	if !cfg.Proxy.DebugLogging.Enabled {
		if debugWriter != nil {
			_ = debugWriter.Close()
			debugWriter = nil
		}
		log.SetOutput(os.Stdout)
		log.SetLevel(log.InfoLevel)
		return nil
	}

	dir := ResolveOutputDir(cfg, dataDir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating debug log directory %s: %w", dir, err)
	}
	if debugWriter != nil {
		_ = debugWriter.Close()
	}
	debugWriter = &lumberjack.Logger{
		Filename:   filepath.Join(dir, DebugLogFileName),
		MaxSize:    10,
		MaxBackups: 5,
		Compress:   false,
	}
	log.SetOutput(debugWriter)
	log.SetLevel(log.DebugLevel)
	return nil
}

func closeDebugOutput() {
	writerMu.Lock()
	defer writerMu.Unlock()
	if debugWriter != nil {
		_ = debugWriter.Close()
		debugWriter = nil
	}
}
