package wals

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/yungbote/walsgraph/internal/platform/logger"
)

// DefaultCLDFBaseURL is the raw-file base of the cldf-datasets WALS repo.
const DefaultCLDFBaseURL = "https://raw.githubusercontent.com/cldf-datasets/wals/master/cldf"

// Download fetches the WALS CSV files into dataDir, skipping files already
// present. The five files are independent, so they download concurrently.
// The CLDF distribution keeps country codes inside codes.csv; the
// countries.csv written here is the ID,Name projection of that file.
func Download(ctx context.Context, baseURL, dataDir string, log *logger.Logger) error {
	if baseURL == "" {
		baseURL = DefaultCLDFBaseURL
	}
	baseURL = strings.TrimRight(baseURL, "/")
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return fmt.Errorf("wals: create data dir: %w", err)
	}

	files := map[string]string{
		"languages.csv":  baseURL + "/languages.csv",
		"countries.csv":  baseURL + "/codes.csv",
		"parameters.csv": baseURL + "/parameters.csv",
		"values.csv":     baseURL + "/values.csv",
		"codes.csv":      baseURL + "/codes.csv",
	}

	httpClient := &http.Client{Timeout: 2 * time.Minute}

	g, gctx := errgroup.WithContext(ctx)
	for name, url := range files {
		name, url := name, url
		target := filepath.Join(dataDir, name)
		if _, err := os.Stat(target); err == nil {
			if log != nil {
				log.Debug("file already present", "file", name)
			}
			continue
		}
		g.Go(func() error {
			if err := fetchFile(gctx, httpClient, url, target); err != nil {
				return fmt.Errorf("wals: download %s: %w", name, err)
			}
			if log != nil {
				log.Info("downloaded", "file", name)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	return rewriteCountries(filepath.Join(dataDir, "countries.csv"))
}

func fetchFile(ctx context.Context, httpClient *http.Client, url, target string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	resp, err := httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %s", resp.Status)
	}

	tmp := target + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return err
	}
	if _, err := io.Copy(f, resp.Body); err != nil {
		_ = f.Close()
		_ = os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, target)
}

// rewriteCountries reduces the downloaded codes-format file to deduplicated
// ID,Name rows. Already-projected files pass through unchanged.
func rewriteCountries(path string) error {
	rows, cols, err := readCSV(path)
	if err != nil {
		return fmt.Errorf("wals: process countries: %w", err)
	}
	id, okID := cols["ID"]
	name, okName := cols["Name"]
	if !okID || !okName {
		return fmt.Errorf("wals: countries source missing ID/Name columns")
	}
	if len(cols) == 2 {
		return nil
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("wals: rewrite countries: %w", err)
	}
	w := csv.NewWriter(f)
	_ = w.Write([]string{"ID", "Name"})
	seen := map[string]struct{}{}
	for _, row := range rows {
		if id >= len(row) || name >= len(row) {
			continue
		}
		cid := strings.TrimSpace(row[id])
		if cid == "" {
			continue
		}
		if _, dup := seen[cid]; dup {
			continue
		}
		seen[cid] = struct{}{}
		_ = w.Write([]string{cid, strings.TrimSpace(row[name])})
	}
	w.Flush()
	if err := w.Error(); err != nil {
		_ = f.Close()
		return fmt.Errorf("wals: rewrite countries: %w", err)
	}
	return f.Close()
}
