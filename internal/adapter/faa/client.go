// Package faa retrieves the two FAA source documents the pipeline consumes:
// the CIFP procedure database (located through the APRA product API and
// shipped as a zip) and the d-TPP chart metafile.
package faa

import (
	"archive/zip"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/couchcryptid/approach-chart-etl/internal/config"
	"github.com/couchcryptid/approach-chart-etl/internal/observability"
)

// cifpMember is the procedure database member inside the CIFP zip.
const cifpMember = "FAACIFP18"

// Client fetches FAA published data products over HTTP.
// It implements pipeline.ProcedureSource and pipeline.CatalogSource.
type Client struct {
	httpClient  *http.Client
	apraURL     string
	dtppBaseURL string
	cycle       string
	cifpPath    string
	logger      *slog.Logger
	metrics     *observability.Metrics
}

// NewClient creates an FAA source client from the service configuration.
func NewClient(cfg *config.Config, metrics *observability.Metrics, logger *slog.Logger) *Client {
	return &Client{
		httpClient:  &http.Client{Timeout: cfg.FetchTimeout},
		apraURL:     cfg.APRAURL,
		dtppBaseURL: cfg.DTPPBaseURL,
		cycle:       cfg.DTPPCycle,
		cifpPath:    cfg.CIFPPath,
		logger:      logger,
		metrics:     metrics,
	}
}

// CurrentEditionURL asks the APRA product API for the download URL of the
// CURRENT CIFP edition.
func (c *Client) CurrentEditionURL(ctx context.Context) (string, error) {
	start := time.Now()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.apraURL, nil)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.metrics.FetchRequests.WithLabelValues("edition", "error").Inc()
		return "", fmt.Errorf("edition request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.metrics.FetchRequests.WithLabelValues("edition", "error").Inc()
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("APRA API error: status %d: %s", resp.StatusCode, body)
	}

	var apra apraResponse
	if err := json.NewDecoder(resp.Body).Decode(&apra); err != nil {
		c.metrics.FetchRequests.WithLabelValues("edition", "error").Inc()
		return "", fmt.Errorf("decode edition response: %w", err)
	}

	c.metrics.FetchRequests.WithLabelValues("edition", "success").Inc()
	c.metrics.FetchDuration.WithLabelValues("edition").Observe(time.Since(start).Seconds())

	for _, e := range apra.Edition {
		if e.EditionName == "CURRENT" {
			return e.Product.URL, nil
		}
	}
	return "", fmt.Errorf("APRA response has no CURRENT edition")
}

// FetchProcedures returns a reader over the CIFP procedure database. A
// configured local path short-circuits the download; otherwise the current
// edition zip is downloaded and the FAACIFP18 member extracted.
func (c *Client) FetchProcedures(ctx context.Context) (io.ReadCloser, error) {
	if c.cifpPath != "" {
		c.logger.Info("reading CIFP from local file", "path", c.cifpPath)
		f, err := os.Open(c.cifpPath)
		if err != nil {
			return nil, fmt.Errorf("open CIFP file: %w", err)
		}
		return f, nil
	}

	url, err := c.CurrentEditionURL(ctx)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	archivePath, err := c.downloadToTemp(ctx, url, "cifp-*.zip")
	if err != nil {
		c.metrics.FetchRequests.WithLabelValues("cifp", "error").Inc()
		return nil, fmt.Errorf("download CIFP: %w", err)
	}
	defer os.Remove(archivePath)

	member, err := extractZipMember(archivePath, cifpMember)
	if err != nil {
		c.metrics.FetchRequests.WithLabelValues("cifp", "error").Inc()
		return nil, err
	}

	c.metrics.FetchRequests.WithLabelValues("cifp", "success").Inc()
	c.metrics.FetchDuration.WithLabelValues("cifp").Observe(time.Since(start).Seconds())
	c.logger.Info("CIFP downloaded", "url", url, "duration", time.Since(start))

	return member, nil
}

// FetchChartMetafile returns a reader over the d-TPP metafile XML for the
// configured cycle.
func (c *Client) FetchChartMetafile(ctx context.Context) (io.ReadCloser, error) {
	url := fmt.Sprintf("%s/%s/xml_data/d-tpp_Metafile.xml", c.dtppBaseURL, c.cycle)
	start := time.Now()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.metrics.FetchRequests.WithLabelValues("metafile", "error").Inc()
		return nil, fmt.Errorf("metafile request: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		c.metrics.FetchRequests.WithLabelValues("metafile", "error").Inc()
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("metafile fetch error: status %d: %s", resp.StatusCode, body)
	}

	c.metrics.FetchRequests.WithLabelValues("metafile", "success").Inc()
	c.metrics.FetchDuration.WithLabelValues("metafile").Observe(time.Since(start).Seconds())

	return resp.Body, nil
}

// Cycle returns the configured d-TPP publication cycle.
func (c *Client) Cycle() string { return c.cycle }

// downloadToTemp streams a URL into a temp file and returns its path.
func (c *Client) downloadToTemp(ctx context.Context, url, pattern string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("status %d", resp.StatusCode)
	}

	tmp, err := os.CreateTemp("", pattern)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(tmp, resp.Body); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return "", err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return "", err
	}
	return tmp.Name(), nil
}

// extractZipMember copies one member of a zip archive into a temp file and
// returns it as a reader that cleans the temp file up on Close. Member names
// are matched on the base name so a leading directory in the archive does
// not break extraction.
func extractZipMember(archivePath, member string) (io.ReadCloser, error) {
	zr, err := zip.OpenReader(archivePath)
	if err != nil {
		return nil, fmt.Errorf("open CIFP archive: %w", err)
	}
	defer zr.Close()

	for _, f := range zr.File {
		name := f.Name
		if i := strings.LastIndexByte(name, '/'); i != -1 {
			name = name[i+1:]
		}
		if name != member {
			continue
		}

		src, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("open archive member %s: %w", member, err)
		}
		defer src.Close()

		tmp, err := os.CreateTemp("", member+"-*")
		if err != nil {
			return nil, err
		}
		if _, err := io.Copy(tmp, src); err != nil {
			tmp.Close()
			os.Remove(tmp.Name())
			return nil, fmt.Errorf("extract %s: %w", member, err)
		}
		if _, err := tmp.Seek(0, io.SeekStart); err != nil {
			tmp.Close()
			os.Remove(tmp.Name())
			return nil, err
		}
		return &tempFile{File: tmp}, nil
	}

	return nil, fmt.Errorf("archive has no %s member", member)
}

// tempFile removes itself on Close.
type tempFile struct {
	*os.File
}

func (t *tempFile) Close() error {
	err := t.File.Close()
	os.Remove(t.Name())
	return err
}

// APRA product API response types.

type apraResponse struct {
	Edition []apraEdition `json:"edition"`
}

type apraEdition struct {
	EditionName string      `json:"editionName"`
	Product     apraProduct `json:"product"`
}

type apraProduct struct {
	URL string `json:"url"`
}
