package tui

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/apex/log"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/litescript/nyaa-tui/internal/nyaa"
	"github.com/litescript/nyaa-tui/internal/qbit"
	"github.com/litescript/nyaa-tui/internal/scraper"
)

// requestTimeout bounds one fetch started from the UI
const requestTimeout = 45 * time.Second

func (m Model) startSearch(q nyaa.SearchQuery) (tea.Model, tea.Cmd) {
	m.seq++
	m.loading = true
	m.err = nil
	m.statusMsg = "Searching..."
	return m, tea.Batch(m.spinner.Tick, m.doSearch(m.seq, q))
}

func (m Model) startDetail(viewID int) (tea.Model, tea.Cmd) {
	m.seq++
	m.loading = true
	m.err = nil
	m.statusMsg = fmt.Sprintf("Loading #%d...", viewID)
	return m, tea.Batch(m.spinner.Tick, m.loadDetail(m.seq, viewID))
}

func (m Model) startFeed() (tea.Model, tea.Cmd) {
	m.seq++
	m.loading = true
	m.err = nil
	m.statusMsg = "Loading feed..."
	q := nyaa.FeedQuery{
		Term:     m.query.Term,
		Username: m.query.Username,
		Filter:   m.query.Filter,
		Category: m.query.Category,
	}
	return m, tea.Batch(m.spinner.Tick, m.loadFeed(m.seq, q))
}

func (m Model) doSearch(seq int, q nyaa.SearchQuery) tea.Cmd {
	src := m.src

	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		res, err := src.Search(ctx, q)
		if err != nil {
			log.WithError(err).WithFields(log.Fields{"term": q.Term, "page": q.Page}).Warn("search failed")
		}
		return searchResultMsg{seq: seq, query: q, result: res, err: err}
	}
}

func (m Model) loadDetail(seq int, viewID int) tea.Cmd {
	src := m.src

	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		info, err := src.TorrentInfo(ctx, viewID)
		if err != nil {
			log.WithError(err).WithField("view_id", viewID).Warn("detail failed")
		}
		return detailMsg{seq: seq, info: info, err: err}
	}
}

func (m Model) loadFeed(seq int, q nyaa.FeedQuery) tea.Cmd {
	src := m.src

	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		feed, err := src.Feed(ctx, q)
		if err != nil {
			log.WithError(err).WithField("term", q.Term).Warn("feed failed")
		}
		return feedMsg{seq: seq, feed: feed, err: err}
	}
}

func (m Model) checkQbitStatus() tea.Cmd {
	dl := m.dl
	if dl == nil {
		return nil
	}
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return qbitStatusMsg{online: dl.IsConnected(ctx)}
	}
}

// sendTorrent hands a torrent to the downloader, preferring the magnet link
func (m Model) sendTorrent(viewID int, name, magnet, torrentURL string) tea.Cmd {
	dl := m.dl
	savePath := m.cfg.Downloads.Path
	if dl == nil {
		return func() tea.Msg {
			return torrentAddedMsg{viewID: viewID, name: name, err: errors.New("qBittorrent is not configured")}
		}
	}

	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		err := dl.Add(ctx, qbit.AddRequest{
			Magnet:     magnet,
			TorrentURL: torrentURL,
			SavePath:   savePath,
		})
		return torrentAddedMsg{viewID: viewID, name: name, err: err}
	}
}

// describeError turns engine and transport errors into a short status line
func describeError(err error) string {
	var status *scraper.HTTPStatusError
	var unknown *nyaa.UnknownValueError
	switch {
	case errors.Is(err, nyaa.ErrTorrentNotFound):
		return "torrent not found"
	case errors.As(err, &status):
		return fmt.Sprintf("site answered HTTP %d", status.StatusCode)
	case errors.As(err, &unknown):
		return unknown.Error()
	case errors.Is(err, nyaa.ErrResourceLimit):
		return "page too large to display"
	case errors.Is(err, nyaa.ErrStructure):
		return "unexpected page layout (" + err.Error() + ")"
	case errors.Is(err, context.DeadlineExceeded):
		return "timed out"
	}
	return err.Error()
}
