// Package version provides build and version information.
package version

// Version is the current application version.
// Update this at logical milestones.
const Version = "0.3.0"

// Milestones:
// 0.1.0 - Listing and detail page extraction
// 0.2.0 - RSS feeds, site switching, CLI
// 0.3.0 - JSON API, qBittorrent hand-off
// 1.0.0 - (planned) Feature-complete public release
