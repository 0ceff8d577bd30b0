// Package main is the headless CLI for the Antigravity Manager
// configuration core: inspect, validate and edit the settings file and
// run the backend collaborator commands.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/zhoudashuaibi/Antigravity-Manager/internal/backend"
	"github.com/zhoudashuaibi/Antigravity-Manager/internal/config"
	"github.com/zhoudashuaibi/Antigravity-Manager/internal/config/schema"
	"github.com/zhoudashuaibi/Antigravity-Manager/internal/logging"
)

// Version information (set via ldflags during build).
var (
	version = "dev"
	commit  = "unknown"
)

func main() {
	os.Exit(run())
}

type options struct {
	configPath  string
	dataDir     string
	show        bool
	validate    bool
	sets        setFlags
	checkUpdate bool
	clearCache  bool
	clearLogs   bool
}

// setFlags accumulates repeated -set key=value flags.
type setFlags []string

func (s *setFlags) String() string { return strings.Join(*s, ",") }

func (s *setFlags) Set(v string) error {
	*s = append(*s, v)
	return nil
}

func run() int {
	opts := parseFlags()

	logging.Setup()
	log := logrus.StandardLogger()

	mgrOpts := []config.Option{config.WithWatcher(false), config.WithLogger(log)}
	if opts.dataDir != "" {
		mgrOpts = append(mgrOpts, config.WithDataDir(opts.dataDir))
	}
	if opts.configPath != "" {
		mgrOpts = append(mgrOpts, config.WithConfigPath(opts.configPath))
	}

	m := config.New(mgrOpts...)
	if err := m.Load(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: loading settings: %v\n", err)
		return 1
	}
	defer m.Close()

	switch {
	case opts.show:
		return showConfig(m)
	case opts.validate:
		return validateConfig(m)
	case len(opts.sets) > 0:
		return setFields(m, opts.sets)
	case opts.checkUpdate:
		return checkUpdate(m)
	case opts.clearCache:
		return clearCache(m, log)
	case opts.clearLogs:
		return clearLogs(m, log)
	default:
		flag.Usage()
		return 2
	}
}

func showConfig(m *config.Manager) int {
	cfg := m.Current()
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	fmt.Println(string(data))
	return 0
}

func validateConfig(m *config.Manager) int {
	cfg := m.Current()
	violations := schema.Check(&cfg)
	if len(violations) == 0 {
		fmt.Println("settings valid")
		return 0
	}
	for _, v := range violations {
		fmt.Fprintf(os.Stderr, "invalid: %v\n", v)
	}
	return 1
}

// setFields applies -set key=value edits as one merge-patch and commits.
func setFields(m *config.Manager, sets setFlags) int {
	doc := []byte(`{}`)
	for _, kv := range sets {
		key, value, ok := strings.Cut(kv, "=")
		if !ok {
			fmt.Fprintf(os.Stderr, "Error: -set wants key=value, got %q\n", kv)
			return 2
		}
		var err error
		doc, err = setPatchField(doc, key, value)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return 2
		}
	}

	var patch schema.Patch
	if err := json.Unmarshal(doc, &patch); err != nil {
		fmt.Fprintf(os.Stderr, "Error: building patch: %v\n", err)
		return 2
	}

	if err := m.Commit(m.Stage(&patch)); err != nil {
		if v := config.AsViolation(err); v != nil {
			fmt.Fprintf(os.Stderr, "rejected: %v\n", v)
			return 1
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	fmt.Println("settings saved")
	return 0
}

func checkUpdate(m *config.Manager) int {
	settings, err := backend.LoadUpdateSettings(m.DataDir())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	checker := &backend.UpdateChecker{CurrentVersion: version, Log: logrus.StandardLogger()}
	info, err := checker.CheckForUpdates(context.Background())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	settings.LastCheckTime = timeNow()
	if err := backend.SaveUpdateSettings(m.DataDir(), settings); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	if info.HasUpdate {
		fmt.Printf("update available: %s (running %s)\n%s\n",
			info.LatestVersion, info.CurrentVersion, info.DownloadURL)
	} else {
		fmt.Printf("up to date (%s)\n", info.CurrentVersion)
	}
	return 0
}

func clearCache(m *config.Manager, log logrus.FieldLogger) int {
	c := &backend.Cache{DataDir: m.DataDir(), Log: log}
	result := c.ClearCache()
	for _, e := range result.Errors {
		fmt.Fprintf(os.Stderr, "warning: %s\n", e)
	}
	fmt.Printf("cleared %d cache directories\n", len(result.ClearedPaths))
	return 0
}

func clearLogs(m *config.Manager, log logrus.FieldLogger) int {
	c := &backend.Cache{DataDir: m.DataDir(), Log: log}
	if err := c.ClearLogCache(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	fmt.Println("rotated logs cleared")
	return 0
}

func parseFlags() options {
	var opts options
	var showVersion bool

	flag.StringVar(&opts.configPath, "config", "", "Path to settings file")
	flag.StringVar(&opts.dataDir, "data-dir", "", "Application data directory")
	flag.BoolVar(&opts.show, "show", false, "Print the effective settings")
	flag.BoolVar(&opts.validate, "validate", false, "Validate the stored settings")
	flag.Var(&opts.sets, "set", "Set a field (key=value, repeatable)")
	flag.BoolVar(&opts.checkUpdate, "check-update", false, "Check for a newer release")
	flag.BoolVar(&opts.clearCache, "clear-cache", false, "Remove cache directories")
	flag.BoolVar(&opts.clearLogs, "clear-logs", false, "Remove rotated debug logs")
	flag.BoolVar(&showVersion, "version", false, "Show version information")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Antigravity Manager - configuration tool\n\n")
		fmt.Fprintf(os.Stderr, "Usage: antigravity-manager [options]\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  antigravity-manager -show\n")
		fmt.Fprintf(os.Stderr, "  antigravity-manager -set proxy.port=9090\n")
		fmt.Fprintf(os.Stderr, "  antigravity-manager -set theme=dark -set language=ja\n")
	}

	flag.Parse()

	if showVersion {
		fmt.Printf("antigravity-manager %s\n", version)
		fmt.Printf("Commit: %s\n", commit)
		os.Exit(0)
	}

	return opts
}
