package corpus

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"
)

// ErrNotDirectory is returned when a sources path exists but is a file.
var ErrNotDirectory = errors.New("sources path is not a directory")

// DefaultExtensions lists the plain-text extensions loaded by default.
var DefaultExtensions = []string{".txt"}

// File is a source file read from disk.
type File struct {
	Name    string
	Path    string
	Content string
}

// LoaderOptions controls directory reads.
type LoaderOptions struct {
	// Extensions recognized as plain text, compared case-insensitively.
	// Default: DefaultExtensions
	Extensions []string

	// Workers bounds concurrent file reads. Default: 4
	Workers int
}

func (o LoaderOptions) withDefaults() LoaderOptions {
	if len(o.Extensions) == 0 {
		o.Extensions = DefaultExtensions
	}
	if o.Workers < 1 {
		o.Workers = 4
	}
	return o
}

// Recognized reports whether path has one of the extensions.
func Recognized(path string, extensions []string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	if ext == "" {
		return false
	}
	for _, e := range extensions {
		if strings.ToLower(e) == ext {
			return true
		}
	}
	return false
}

// ReadDirectory reads every recognized regular file directly inside dir,
// following symlinks. Files that cannot be read are logged and counted in
// skipped. A missing directory yields no files and no error. Files are
// returned sorted by name.
func ReadDirectory(ctx context.Context, dir string, opts LoaderOptions) (files []File, skipped int, err error) {
	opts = opts.withDefaults()

	info, err := os.Stat(dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			log.Warnf("Sources directory %s does not exist", dir)
			return []File{}, 0, nil
		}
		return nil, 0, fmt.Errorf("failed to stat sources dir %s: %w", dir, err)
	}
	if !info.IsDir() {
		return nil, 0, fmt.Errorf("%s: %w", dir, ErrNotDirectory)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list sources dir %s: %w", dir, err)
	}

	var paths []string
	for _, entry := range entries {
		if entry.IsDir() || !Recognized(entry.Name(), opts.Extensions) {
			continue
		}
		paths = append(paths, filepath.Join(dir, entry.Name()))
	}

	return ReadFiles(ctx, paths, opts.Workers)
}

// ReadFiles reads paths concurrently. Paths that resolve to anything but a
// regular file are left out, since a FIFO or device would block the read.
// Unreadable files are logged and counted in skipped. The result is sorted
// by file name.
func ReadFiles(ctx context.Context, paths []string, workers int) (files []File, skipped int, err error) {
	if workers < 1 {
		workers = 1
	}

	results := make([]*File, len(paths))
	failed := make([]bool, len(paths))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, path := range paths {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			info, err := os.Stat(path)
			if err != nil {
				log.Errorf("Error loading source %s: %v", filepath.Base(path), err)
				failed[i] = true
				return nil
			}
			if !info.Mode().IsRegular() {
				log.Debugf("Skipping %s: not a regular file", filepath.Base(path))
				return nil
			}
			data, err := os.ReadFile(path)
			if err != nil {
				log.Errorf("Error loading source %s: %v", filepath.Base(path), err)
				failed[i] = true
				return nil
			}
			results[i] = &File{
				Name:    filepath.Base(path),
				Path:    path,
				Content: string(data),
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, 0, fmt.Errorf("reading sources: %w", err)
	}

	files = make([]File, 0, len(results))
	for i, f := range results {
		if f != nil {
			files = append(files, *f)
		}
		if failed[i] {
			skipped++
		}
	}
	sort.Slice(files, func(i, j int) bool {
		return files[i].Name < files[j].Name
	})
	return files, skipped, nil
}
