package qbit

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeQBit mimics the Web API endpoints the client uses.
type fakeQBit struct {
	logins int
	added  []map[string]string
}

func (f *fakeQBit) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v2/auth/login", func(w http.ResponseWriter, r *http.Request) {
		_ = r.ParseForm()
		if r.Form.Get("username") != "admin" || r.Form.Get("password") != "secret" {
			_, _ = w.Write([]byte("Fails."))
			return
		}
		f.logins++
		http.SetCookie(w, &http.Cookie{Name: "SID", Value: "sid", Path: "/"})
		_, _ = w.Write([]byte("Ok."))
	})
	mux.HandleFunc("/api/v2/app/version", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("v4.6.2"))
	})
	mux.HandleFunc("/api/v2/torrents/add", func(w http.ResponseWriter, r *http.Request) {
		if _, err := r.Cookie("SID"); err != nil {
			w.WriteHeader(http.StatusForbidden)
			return
		}
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		fields := map[string]string{}
		for k, v := range r.MultipartForm.Value {
			fields[k] = v[0]
		}
		f.added = append(f.added, fields)
		_, _ = w.Write([]byte("Ok."))
	})
	mux.HandleFunc("/api/v2/torrents/info", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if r.URL.Query().Get("hashes") == "0123456789abcdef0123456789abcdef01234567" {
			_, _ = w.Write([]byte(`[{"hash":"0123456789abcdef0123456789abcdef01234567","name":"Show - 01","progress":0.5,"state":"downloading","save_path":"/dl"}]`))
			return
		}
		_, _ = w.Write([]byte(`[]`))
	})
	return mux
}

func newTestClient(t *testing.T, password string) (*Client, *fakeQBit) {
	t.Helper()
	fake := &fakeQBit{}
	srv := httptest.NewServer(fake.handler())
	t.Cleanup(srv.Close)
	return NewClientURL(srv.URL, "admin", password), fake
}

func TestLogin(t *testing.T) {
	c, _ := newTestClient(t, "secret")
	require.NoError(t, c.Login(context.Background()))

	bad, _ := newTestClient(t, "wrong")
	err := bad.Login(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Fails.")
}

func TestVersionAndConnected(t *testing.T) {
	c, _ := newTestClient(t, "secret")
	v, err := c.Version(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "v4.6.2", v)
	assert.True(t, c.IsConnected(context.Background()))

	down := NewClientURL("http://127.0.0.1:1", "admin", "secret")
	assert.False(t, down.IsConnected(context.Background()))
}

func TestAddLogsInOnce(t *testing.T) {
	c, fake := newTestClient(t, "secret")
	ctx := context.Background()

	require.NoError(t, c.AddMagnet(ctx, "magnet:?xt=urn:btih:abc", "/dl/anime"))
	require.NoError(t, c.Add(ctx, AddRequest{
		TorrentURL: "https://nyaa.si/download/1.torrent",
		Category:   "anime",
		Paused:     true,
	}))

	assert.Equal(t, 1, fake.logins)
	require.Len(t, fake.added, 2)
	assert.Equal(t, "magnet:?xt=urn:btih:abc", fake.added[0]["urls"])
	assert.Equal(t, "/dl/anime", fake.added[0]["savepath"])
	assert.Equal(t, "https://nyaa.si/download/1.torrent", fake.added[1]["urls"])
	assert.Equal(t, "anime", fake.added[1]["category"])
	assert.Equal(t, "true", fake.added[1]["paused"])
}

func TestAddWithoutLink(t *testing.T) {
	c, fake := newTestClient(t, "secret")
	err := c.Add(context.Background(), AddRequest{SavePath: "/dl"})
	require.Error(t, err)
	assert.Zero(t, fake.logins)
}

func TestLookup(t *testing.T) {
	c, _ := newTestClient(t, "secret")
	ctx := context.Background()

	got, err := c.Lookup(ctx, "0123456789ABCDEF0123456789ABCDEF01234567")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "downloading", got.State)
	assert.InDelta(t, 0.5, got.Progress, 0.001)

	missing, err := c.Lookup(ctx, "ffffffffffffffffffffffffffffffffffffffff")
	require.NoError(t, err)
	assert.Nil(t, missing)
}
