// Package qbit provides a client for the qBittorrent Web API.
// It logs in, hands magnet links and .torrent URLs picked from a Nyaa
// listing to the client, and checks whether a torrent is already known.
package qbit

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/apex/log"
)

// Client interfaces with qBittorrent Web API
type Client struct {
	baseURL    string
	username   string
	password   string
	httpClient *http.Client

	mu       sync.Mutex
	loggedIn bool
}

// Torrent is the subset of a qBittorrent torrent record the UI shows
type Torrent struct {
	Hash     string  `json:"hash"`
	Name     string  `json:"name"`
	Progress float64 `json:"progress"`
	State    string  `json:"state"`
	SavePath string  `json:"save_path"`
}

// AddRequest describes a torrent to hand over. At least one of Magnet or
// TorrentURL must be set; the magnet link wins when both are.
type AddRequest struct {
	Magnet     string
	TorrentURL string
	SavePath   string
	Category   string
	Paused     bool
}

// NewClient creates a new qBittorrent API client
func NewClient(host string, port int, username, password string) *Client {
	return NewClientURL(fmt.Sprintf("http://%s:%d", host, port), username, password)
}

// NewClientURL creates a client for a Web UI served at baseURL
func NewClientURL(baseURL, username, password string) *Client {
	jar, _ := cookiejar.New(nil)

	return &Client{
		baseURL:  strings.TrimRight(baseURL, "/"),
		username: username,
		password: password,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
			Jar:     jar,
		},
	}
}

// Login authenticates with the qBittorrent API
func (c *Client) Login(ctx context.Context) error {
	data := url.Values{}
	data.Set("username", c.username)
	data.Set("password", c.password)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/v2/auth/login", strings.NewReader(data.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Referer", c.baseURL)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to connect to qBittorrent: %w", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if strings.TrimSpace(string(body)) != "Ok." {
		return fmt.Errorf("login failed: %s", strings.TrimSpace(string(body)))
	}

	c.mu.Lock()
	c.loggedIn = true
	c.mu.Unlock()
	return nil
}

// IsConnected checks if we can reach qBittorrent
func (c *Client) IsConnected(ctx context.Context) bool {
	_, err := c.Version(ctx)
	return err == nil
}

// Version returns the qBittorrent version
func (c *Client) Version(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/v2/app/version", nil)
	if err != nil {
		return "", err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("qBittorrent returned HTTP %d", resp.StatusCode)
	}
	body, _ := io.ReadAll(resp.Body)
	return strings.TrimSpace(string(body)), nil
}

// AddMagnet adds a torrent via magnet link
func (c *Client) AddMagnet(ctx context.Context, magnet string, savePath string) error {
	return c.Add(ctx, AddRequest{Magnet: magnet, SavePath: savePath})
}

// Add hands a torrent to qBittorrent
func (c *Client) Add(ctx context.Context, add AddRequest) error {
	link := add.Magnet
	if link == "" {
		link = add.TorrentURL
	}
	if link == "" {
		return fmt.Errorf("add torrent: no magnet link or torrent URL")
	}
	if err := c.ensureLogin(ctx); err != nil {
		return err
	}

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	_ = writer.WriteField("urls", link)
	if add.SavePath != "" {
		_ = writer.WriteField("savepath", add.SavePath)
	}
	if add.Category != "" {
		_ = writer.WriteField("category", add.Category)
	}
	if add.Paused {
		_ = writer.WriteField("paused", "true")
	}
	writer.Close()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/v2/torrents/add", &body)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK || strings.TrimSpace(string(respBody)) == "Fails." {
		return fmt.Errorf("failed to add torrent: %s", strings.TrimSpace(string(respBody)))
	}
	log.WithFields(log.Fields{
		"link":     link,
		"savepath": add.SavePath,
	}).Debug("torrent added to qBittorrent")
	return nil
}

// Lookup returns the torrent with the given info hash, or nil when the
// client does not know it.
func (c *Client) Lookup(ctx context.Context, infoHash string) (*Torrent, error) {
	if err := c.ensureLogin(ctx); err != nil {
		return nil, err
	}

	target := c.baseURL + "/api/v2/torrents/info?" + url.Values{"hashes": {strings.ToLower(infoHash)}}.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("torrent lookup: HTTP %d", resp.StatusCode)
	}
	var torrents []Torrent
	if err := json.NewDecoder(resp.Body).Decode(&torrents); err != nil {
		return nil, err
	}
	if len(torrents) == 0 {
		return nil, nil
	}
	return &torrents[0], nil
}

func (c *Client) ensureLogin(ctx context.Context) error {
	c.mu.Lock()
	ok := c.loggedIn
	c.mu.Unlock()
	if ok {
		return nil
	}
	return c.Login(ctx)
}
