package nyaa

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func openFixture(t *testing.T, name string) *os.File {
	t.Helper()
	f, err := os.Open(filepath.Join("testdata", name))
	require.NoError(t, err)
	t.Cleanup(func() { f.Close() })
	return f
}

func parseHTML(t *testing.T, html string) Element {
	t.Helper()
	doc, err := NewDocument(strings.NewReader(html))
	require.NoError(t, err)
	return doc
}

func epoch(secs int64) time.Time {
	return time.Unix(secs, 0).UTC()
}

func readFixture(name string) ([]byte, error) {
	return os.ReadFile(filepath.Join("testdata", name))
}
