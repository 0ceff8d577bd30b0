package backend

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/mod/semver"

	"github.com/zhoudashuaibi/Antigravity-Manager/internal/config/persist"
)

// UpdateSettingsFileName holds the update-check settings, separate from
// the main settings file so automation can rewrite it without touching
// user configuration.
const UpdateSettingsFileName = "update_settings.json"

// DefaultReleasesURL is the release feed queried by CheckForUpdates.
const DefaultReleasesURL = "https://api.github.com/repos/zhoudashuaibi/Antigravity-Manager/releases/latest"

// UpdateSettings controls the periodic update check.
type UpdateSettings struct {
	AutoCheck          bool      `json:"auto_check"`
	LastCheckTime      time.Time `json:"last_check_time"`
	CheckIntervalHours int       `json:"check_interval_hours"`
}

// DefaultUpdateSettings checks once a day.
func DefaultUpdateSettings() UpdateSettings {
	return UpdateSettings{
		AutoCheck:          true,
		CheckIntervalHours: 24,
	}
}

// Due reports whether an automatic check should run now.
func (s UpdateSettings) Due(now time.Time) bool {
	if !s.AutoCheck {
		return false
	}
	interval := time.Duration(s.CheckIntervalHours) * time.Hour
	if interval <= 0 {
		interval = 24 * time.Hour
	}
	return now.Sub(s.LastCheckTime) >= interval
}

// LoadUpdateSettings reads the update-check settings from dataDir,
// returning defaults when the file is absent.
func LoadUpdateSettings(dataDir string) (UpdateSettings, error) {
	data, err := os.ReadFile(filepath.Join(dataDir, UpdateSettingsFileName))
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultUpdateSettings(), nil
		}
		return UpdateSettings{}, fmt.Errorf("reading update settings: %w", err)
	}

	s := DefaultUpdateSettings()
	if err := json.Unmarshal(data, &s); err != nil {
		return UpdateSettings{}, fmt.Errorf("parsing update settings: %w", err)
	}
	return s, nil
}

// SaveUpdateSettings writes the update-check settings atomically.
func SaveUpdateSettings(dataDir string, s UpdateSettings) error {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding update settings: %w", err)
	}
	return persist.WriteFileAtomic(filepath.Join(dataDir, UpdateSettingsFileName), data)
}

// UpdateInfo is the outcome of an update check.
type UpdateInfo struct {
	HasUpdate      bool   `json:"has_update"`
	LatestVersion  string `json:"latest_version"`
	CurrentVersion string `json:"current_version"`
	DownloadURL    string `json:"download_url"`
}

// UpdateChecker queries the release feed and compares versions.
type UpdateChecker struct {
	// CurrentVersion is the running version, with or without a leading v.
	CurrentVersion string

	// ReleasesURL overrides DefaultReleasesURL, mainly for tests.
	ReleasesURL string

	// Client overrides the HTTP client.
	Client *http.Client

	Log logrus.FieldLogger
}

type releaseResponse struct {
	TagName string `json:"tag_name"`
	HTMLURL string `json:"html_url"`
	Assets  []struct {
		BrowserDownloadURL string `json:"browser_download_url"`
	} `json:"assets"`
}

// CheckForUpdates queries the release feed and compares the latest
// version against the running one. Network failures surface as errors.
func (c *UpdateChecker) CheckForUpdates(ctx context.Context) (*UpdateInfo, error) {
	url := c.ReleasesURL
	if url == "" {
		url = DefaultReleasesURL
	}
	client := c.Client
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("building update request: %w", err)
	}
	req.Header.Set("Accept", "application/vnd.github+json")

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("checking for updates: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("checking for updates: unexpected status %s", resp.Status)
	}

	var release releaseResponse
	if err := json.NewDecoder(resp.Body).Decode(&release); err != nil {
		return nil, fmt.Errorf("decoding release feed: %w", err)
	}

	latest := canonicalVersion(release.TagName)
	current := canonicalVersion(c.CurrentVersion)
	if !semver.IsValid(latest) {
		return nil, fmt.Errorf("release feed returned invalid version %q", release.TagName)
	}

	info := &UpdateInfo{
		HasUpdate:      semver.IsValid(current) && semver.Compare(latest, current) > 0,
		LatestVersion:  strings.TrimPrefix(latest, "v"),
		CurrentVersion: strings.TrimPrefix(current, "v"),
		DownloadURL:    release.HTMLURL,
	}
	if len(release.Assets) > 0 {
		info.DownloadURL = release.Assets[0].BrowserDownloadURL
	}

	if c.Log != nil && info.HasUpdate {
		c.Log.WithField("version", info.LatestVersion).Info("update available")
	}
	return info, nil
}

// canonicalVersion normalizes a tag to the v-prefixed form semver wants.
func canonicalVersion(tag string) string {
	tag = strings.TrimSpace(tag)
	if tag == "" {
		return ""
	}
	if !strings.HasPrefix(tag, "v") {
		tag = "v" + tag
	}
	return tag
}
