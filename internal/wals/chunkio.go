package wals

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/yungbote/walsgraph/internal/platform/logger"
)

const (
	chunksSubdir = "chunks"
	logsSubdir   = "logs"
	manifestName = "enhanced_chunk_list.txt"
)

// SetupOutput creates the output directory layout and removes stale chunk
// and manifest files from earlier runs.
func SetupOutput(outputDir string, log *logger.Logger) error {
	chunksDir := filepath.Join(outputDir, chunksSubdir)
	logsDir := filepath.Join(outputDir, logsSubdir)
	for _, dir := range []string{outputDir, chunksDir, logsDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("wals: create %s: %w", dir, err)
		}
	}

	removed := 0
	if entries, err := os.ReadDir(chunksDir); err == nil {
		for _, e := range entries {
			if e.IsDir() || !strings.HasSuffix(e.Name(), ".txt") {
				continue
			}
			if err := os.Remove(filepath.Join(chunksDir, e.Name())); err == nil {
				removed++
			}
		}
	}
	for _, name := range []string{manifestName, "chunk_list.txt"} {
		if err := os.Remove(filepath.Join(logsDir, name)); err == nil {
			removed++
		}
	}
	if removed > 0 && log != nil {
		log.Info("cleared stale chunk files", "removed", removed)
	}
	return nil
}

// GenerateChunks batches the dataset by family, renders each batch, writes
// one file per chunk plus a manifest listing the files in generation order,
// and returns the chunk file paths.
func GenerateChunks(ds *Dataset, batchSize int, outputDir string, params []FeatureParam, log *logger.Logger) ([]string, error) {
	if ds == nil {
		return nil, fmt.Errorf("wals: no dataset loaded")
	}
	if err := SetupOutput(outputDir, log); err != nil {
		return nil, err
	}

	var features FeatureLookup
	if ds.HasFeatures() {
		features = ds
	}

	batches := BatchByFamily(ds.Languages, batchSize)
	chunkFiles := make([]string, 0, len(batches))

	for i, batch := range batches {
		chunkNum := i + 1
		text := RenderChunk(batch, chunkNum, features, params)
		path := filepath.Join(outputDir, chunksSubdir, fmt.Sprintf("enhanced_chunk_%03d.txt", chunkNum))
		if err := os.WriteFile(path, []byte(text), 0o644); err != nil {
			return nil, fmt.Errorf("wals: write chunk %d: %w", chunkNum, err)
		}
		chunkFiles = append(chunkFiles, path)
	}

	manifest := filepath.Join(outputDir, logsSubdir, manifestName)
	var b strings.Builder
	for _, f := range chunkFiles {
		b.WriteString(f)
		b.WriteByte('\n')
	}
	if err := os.WriteFile(manifest, []byte(b.String()), 0o644); err != nil {
		return nil, fmt.Errorf("wals: write chunk manifest: %w", err)
	}

	if log != nil {
		log.Info("generated chunks", "count", len(chunkFiles), "batch_size", batchSize)
	}
	return chunkFiles, nil
}

// ReadManifest returns the chunk file paths recorded by the last
// GenerateChunks run, skipping blank lines and files that no longer exist.
// When no manifest is found it falls back to globbing the chunks directory.
func ReadManifest(outputDir string) ([]string, error) {
	for _, name := range []string{manifestName, "chunk_list.txt"} {
		path := filepath.Join(outputDir, logsSubdir, name)
		f, err := os.Open(path)
		if err != nil {
			continue
		}

		var files []string
		scanner := bufio.NewScanner(f)
		for scanner.Scan() {
			line := strings.TrimSpace(scanner.Text())
			if line == "" {
				continue
			}
			if _, err := os.Stat(line); err == nil {
				files = append(files, line)
			}
		}
		scanErr := scanner.Err()
		_ = f.Close()
		if scanErr != nil {
			return nil, fmt.Errorf("wals: read manifest %s: %w", path, scanErr)
		}
		if len(files) > 0 {
			return files, nil
		}
	}

	matches, err := filepath.Glob(filepath.Join(outputDir, chunksSubdir, "*.txt"))
	if err != nil {
		return nil, fmt.Errorf("wals: glob chunks: %w", err)
	}
	sort.Strings(matches)
	if len(matches) == 0 {
		return nil, fmt.Errorf("wals: no chunk files found under %s", outputDir)
	}
	return matches, nil
}
