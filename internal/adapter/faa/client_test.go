package faa

import (
	"archive/zip"
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/approach-chart-etl/internal/config"
	"github.com/couchcryptid/approach-chart-etl/internal/observability"
)

func testClient(t *testing.T, cfg *config.Config) *Client {
	t.Helper()
	if cfg.FetchTimeout == 0 {
		cfg.FetchTimeout = 5 * time.Second
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewClient(cfg, observability.NewMetricsForTesting(), logger)
}

// buildCIFPArchive zips content under the given member name and returns the
// archive bytes.
func buildCIFPArchive(t *testing.T, member, content string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create(member)
	require.NoError(t, err)
	_, err = w.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func TestCurrentEditionURL(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "application/json", r.Header.Get("Accept"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"edition": [
				{"editionName": "NEXT", "product": {"url": "https://example.com/next.zip"}},
				{"editionName": "CURRENT", "product": {"url": "https://example.com/cifp.zip"}}
			]
		}`))
	}))
	defer srv.Close()

	c := testClient(t, &config.Config{APRAURL: srv.URL})

	url, err := c.CurrentEditionURL(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/cifp.zip", url)
}

func TestCurrentEditionURL_Errors(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
		want    string
	}{
		{
			name: "server error",
			handler: func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, "internal error", http.StatusInternalServerError)
			},
			want: "status 500",
		},
		{
			name: "unparsable body",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte("not json"))
			},
			want: "decode edition response",
		},
		{
			name: "no current edition",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`{"edition": [{"editionName": "NEXT", "product": {"url": "u"}}]}`))
			},
			want: "no CURRENT edition",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(tt.handler)
			defer srv.Close()

			c := testClient(t, &config.Config{APRAURL: srv.URL})
			_, err := c.CurrentEditionURL(context.Background())
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestFetchProcedures_Download(t *testing.T) {
	const content = "SUSAP KDENK2A" // placeholder payload, parsing happens elsewhere
	archive := buildCIFPArchive(t, "FAACIFP18", content)

	mux := http.NewServeMux()
	var srv *httptest.Server
	mux.HandleFunc("/apra", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"edition": [{"editionName": "CURRENT", "product": {"url": "` + srv.URL + `/cifp.zip"}}]}`))
	})
	mux.HandleFunc("/cifp.zip", func(w http.ResponseWriter, r *http.Request) {
		w.Write(archive)
	})
	srv = httptest.NewServer(mux)
	defer srv.Close()

	c := testClient(t, &config.Config{APRAURL: srv.URL + "/apra"})

	rc, err := c.FetchProcedures(context.Background())
	require.NoError(t, err)

	got, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, content, string(got))

	name := rc.(*tempFile).Name()
	require.NoError(t, rc.Close())
	_, err = os.Stat(name)
	assert.True(t, os.IsNotExist(err), "temp file should be removed on close")
}

func TestFetchProcedures_MemberInSubdirectory(t *testing.T) {
	archive := buildCIFPArchive(t, "CIFP/FAACIFP18", "payload")

	mux := http.NewServeMux()
	var srv *httptest.Server
	mux.HandleFunc("/apra", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"edition": [{"editionName": "CURRENT", "product": {"url": "` + srv.URL + `/cifp.zip"}}]}`))
	})
	mux.HandleFunc("/cifp.zip", func(w http.ResponseWriter, r *http.Request) {
		w.Write(archive)
	})
	srv = httptest.NewServer(mux)
	defer srv.Close()

	c := testClient(t, &config.Config{APRAURL: srv.URL + "/apra"})

	rc, err := c.FetchProcedures(context.Background())
	require.NoError(t, err)
	defer rc.Close()

	got, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, "payload", string(got))
}

func TestFetchProcedures_MissingMember(t *testing.T) {
	archive := buildCIFPArchive(t, "README.txt", "not the database")

	mux := http.NewServeMux()
	var srv *httptest.Server
	mux.HandleFunc("/apra", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"edition": [{"editionName": "CURRENT", "product": {"url": "` + srv.URL + `/cifp.zip"}}]}`))
	})
	mux.HandleFunc("/cifp.zip", func(w http.ResponseWriter, r *http.Request) {
		w.Write(archive)
	})
	srv = httptest.NewServer(mux)
	defer srv.Close()

	c := testClient(t, &config.Config{APRAURL: srv.URL + "/apra"})

	_, err := c.FetchProcedures(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no FAACIFP18 member")
}

func TestFetchProcedures_LocalPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "FAACIFP18")
	require.NoError(t, os.WriteFile(path, []byte("local payload"), 0o644))

	c := testClient(t, &config.Config{CIFPPath: path})

	rc, err := c.FetchProcedures(context.Background())
	require.NoError(t, err)
	defer rc.Close()

	got, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, "local payload", string(got))
}

func TestFetchChartMetafile(t *testing.T) {
	const metafile = `<?xml version="1.0"?><digital_tpp cycle="2301"></digital_tpp>`

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/2301/xml_data/d-tpp_Metafile.xml", r.URL.Path)
		w.Write([]byte(metafile))
	}))
	defer srv.Close()

	c := testClient(t, &config.Config{DTPPBaseURL: srv.URL, DTPPCycle: "2301"})

	rc, err := c.FetchChartMetafile(context.Background())
	require.NoError(t, err)
	defer rc.Close()

	got, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, metafile, string(got))
}

func TestFetchChartMetafile_NotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	c := testClient(t, &config.Config{DTPPBaseURL: srv.URL, DTPPCycle: "9999"})

	_, err := c.FetchChartMetafile(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 404")
}
