package version

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// Repo is the GitHub repository releases are published under.
const Repo = "litescript/nyaa-tui"

// UpdateInfo describes the newest published release
type UpdateInfo struct {
	CurrentVersion  string `json:"current_version" yaml:"current_version"`
	LatestVersion   string `json:"latest_version" yaml:"latest_version"`
	UpdateAvailable bool   `json:"update_available" yaml:"update_available"`
	Install         string `json:"install,omitempty" yaml:"install,omitempty"`
}

// Checker asks the GitHub API for the latest release, falling back to the
// newest tag when the repository has no releases.
type Checker struct {
	BaseURL string
	Repo    string
	HTTP    *http.Client
}

// NewChecker creates a checker for the public GitHub API
func NewChecker() *Checker {
	return &Checker{
		BaseURL: "https://api.github.com",
		Repo:    Repo,
		HTTP:    &http.Client{Timeout: 5 * time.Second},
	}
}

type githubTag struct {
	TagName string `json:"tag_name"`
	Name    string `json:"name"`
}

// Check compares Version against the newest release or tag
func (c *Checker) Check(ctx context.Context) (UpdateInfo, error) {
	info := UpdateInfo{CurrentVersion: Version, LatestVersion: Version}

	var release githubTag
	found, err := c.get(ctx, "/releases/latest", &release)
	if err != nil {
		return info, err
	}
	latest := release.TagName
	if !found {
		var tags []githubTag
		if _, err := c.get(ctx, "/tags", &tags); err != nil {
			return info, err
		}
		if len(tags) == 0 {
			return info, nil
		}
		// newest first
		latest = tags[0].Name
	}

	info.LatestVersion = normalizeVersion(latest)
	info.UpdateAvailable = isNewerVersion(info.LatestVersion, info.CurrentVersion)
	if info.UpdateAvailable {
		info.Install = InstallCommand()
	}
	return info, nil
}

// get decodes a repository endpoint into v. A 404 reports found=false.
func (c *Checker) get(ctx context.Context, path string, v any) (bool, error) {
	url := strings.TrimRight(c.BaseURL, "/") + "/repos/" + c.Repo + path
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return false, err
	}
	req.Header.Set("Accept", "application/vnd.github+json")

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return false, fmt.Errorf("check for updates: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return false, nil
	case resp.StatusCode != http.StatusOK:
		return false, fmt.Errorf("check for updates: %s answered %d", path, resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return false, fmt.Errorf("parse update response: %w", err)
	}
	return true, nil
}

// normalizeVersion strips the "v" prefix if present.
func normalizeVersion(v string) string {
	return strings.TrimPrefix(strings.TrimSpace(v), "v")
}

// isNewerVersion compares dotted numeric versions part by part. A
// pre-release suffix ("1.2.0-rc1") is ignored.
func isNewerVersion(latest, current string) bool {
	l := versionParts(latest)
	c := versionParts(current)
	for i := 0; i < len(l) || i < len(c); i++ {
		var a, b int
		if i < len(l) {
			a = l[i]
		}
		if i < len(c) {
			b = c[i]
		}
		if a != b {
			return a > b
		}
	}
	return false
}

func versionParts(v string) []int {
	v, _, _ = strings.Cut(v, "-")
	var parts []int
	for _, p := range strings.Split(v, ".") {
		n, _ := strconv.Atoi(p)
		parts = append(parts, n)
	}
	return parts
}

// InstallCommand returns the command to update the application.
func InstallCommand() string {
	return "go install github.com/" + Repo + "/cmd/nyaa-tui@latest"
}
