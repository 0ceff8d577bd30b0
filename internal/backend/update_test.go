package backend

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestUpdateSettingsRoundTrip(t *testing.T) {
	dir := t.TempDir()

	s := UpdateSettings{
		AutoCheck:          false,
		LastCheckTime:      time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC),
		CheckIntervalHours: 6,
	}
	if err := SaveUpdateSettings(dir, s); err != nil {
		t.Fatalf("SaveUpdateSettings() error = %v", err)
	}

	got, err := LoadUpdateSettings(dir)
	if err != nil {
		t.Fatalf("LoadUpdateSettings() error = %v", err)
	}
	if got.AutoCheck != s.AutoCheck || got.CheckIntervalHours != s.CheckIntervalHours {
		t.Errorf("got %+v, want %+v", got, s)
	}
	if !got.LastCheckTime.Equal(s.LastCheckTime) {
		t.Errorf("last_check_time = %v, want %v", got.LastCheckTime, s.LastCheckTime)
	}
}

func TestLoadUpdateSettingsMissingFile(t *testing.T) {
	got, err := LoadUpdateSettings(t.TempDir())
	if err != nil {
		t.Fatalf("LoadUpdateSettings() error = %v", err)
	}
	want := DefaultUpdateSettings()
	if got != want {
		t.Errorf("got %+v, want defaults %+v", got, want)
	}
}

func TestUpdateSettingsDue(t *testing.T) {
	now := time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		s    UpdateSettings
		want bool
	}{
		{"auto check off", UpdateSettings{AutoCheck: false}, false},
		{"never checked", UpdateSettings{AutoCheck: true, CheckIntervalHours: 24}, true},
		{
			"recent check",
			UpdateSettings{AutoCheck: true, CheckIntervalHours: 24, LastCheckTime: now.Add(-1 * time.Hour)},
			false,
		},
		{
			"stale check",
			UpdateSettings{AutoCheck: true, CheckIntervalHours: 24, LastCheckTime: now.Add(-25 * time.Hour)},
			true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.s.Due(now); got != tt.want {
				t.Errorf("Due() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCheckForUpdates(t *testing.T) {
	tests := []struct {
		name       string
		current    string
		tag        string
		wantUpdate bool
	}{
		{"newer available", "1.2.0", "v1.3.0", true},
		{"same version", "1.3.0", "v1.3.0", false},
		{"running ahead of release", "1.4.0", "v1.3.0", false},
		{"tag without v prefix", "1.2.0", "1.3.0", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				_, _ = w.Write([]byte(`{
					"tag_name": "` + tt.tag + `",
					"html_url": "https://example.com/releases/latest",
					"assets": [{"browser_download_url": "https://example.com/download"}]
				}`))
			}))
			defer srv.Close()

			c := &UpdateChecker{CurrentVersion: tt.current, ReleasesURL: srv.URL}
			info, err := c.CheckForUpdates(context.Background())
			if err != nil {
				t.Fatalf("CheckForUpdates() error = %v", err)
			}
			if info.HasUpdate != tt.wantUpdate {
				t.Errorf("HasUpdate = %v, want %v", info.HasUpdate, tt.wantUpdate)
			}
			if info.CurrentVersion != tt.current {
				t.Errorf("CurrentVersion = %q, want %q", info.CurrentVersion, tt.current)
			}
			if info.DownloadURL != "https://example.com/download" {
				t.Errorf("DownloadURL = %q", info.DownloadURL)
			}
		})
	}
}

func TestCheckForUpdatesNetworkFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := &UpdateChecker{CurrentVersion: "1.0.0", ReleasesURL: srv.URL}
	if _, err := c.CheckForUpdates(context.Background()); err == nil {
		t.Fatal("CheckForUpdates() = nil error on server failure")
	}
}
