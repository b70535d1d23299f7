// Package fs provides the file-based local mirror of indexed chunks.
package fs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/fwojciec/docsift"
)

// Ensure Mirror implements docsift.MirrorStore at compile time.
var _ docsift.MirrorStore = (*Mirror)(nil)

// Mirror stores each page's chunks as one JSON file under
// <root>/<siteKey>/<pageSlug>.json. Writes go to every root; reads use the
// first root holding the site.
type Mirror struct {
	roots []string
}

// NewMirror creates a Mirror writing to the given root directories.
func NewMirror(roots ...string) *Mirror {
	return &Mirror{roots: roots}
}

// Roots returns the mirror root directories in lookup order.
func (m *Mirror) Roots() []string {
	return m.roots
}

// PagePath returns the path of a page's file under root.
func PagePath(root, siteKey, pageURL string) string {
	return filepath.Join(root, siteKey, docsift.PageSlug(pageURL)+".json")
}

// SavePage writes the page's entries to every root. Each file is written to
// a temporary name and renamed into place so readers never see partial JSON.
func (m *Mirror) SavePage(ctx context.Context, siteKey, pageURL string, entries []docsift.MirrorEntry) error {
	if err := validateKey(siteKey); err != nil {
		return err
	}
	if entries == nil {
		entries = []docsift.MirrorEntry{}
	}
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("encode page %s: %w", pageURL, err)
	}

	var errs []error
	for _, root := range m.roots {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := writeAtomic(PagePath(root, siteKey, pageURL), data); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// LoadEntries reads every page file of the site from the first root that
// has it. Files are read in name order. Unreadable files are skipped.
func (m *Mirror) LoadEntries(ctx context.Context, siteKey string) ([]docsift.MirrorEntry, error) {
	if err := validateKey(siteKey); err != nil {
		return nil, err
	}

	for _, root := range m.roots {
		dir := filepath.Join(root, siteKey)
		files, err := filepath.Glob(filepath.Join(dir, "*.json"))
		if err != nil {
			return nil, err
		}
		if len(files) == 0 {
			continue
		}
		sort.Strings(files)

		var entries []docsift.MirrorEntry
		for _, file := range files {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			page, err := readPage(file)
			if err != nil {
				continue
			}
			entries = append(entries, page...)
		}
		return entries, nil
	}

	return nil, docsift.Errorf(docsift.ENOTFOUND, "no mirrored pages for site %q", siteKey)
}

// DeleteSite removes the site's directory from every root.
func (m *Mirror) DeleteSite(ctx context.Context, siteKey string) error {
	if err := validateKey(siteKey); err != nil {
		return err
	}
	var errs []error
	for _, root := range m.roots {
		if err := os.RemoveAll(filepath.Join(root, siteKey)); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func readPage(path string) ([]docsift.MirrorEntry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var entries []docsift.MirrorEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return entries, nil
}

func writeAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

// validateKey rejects keys that would escape the mirror root.
func validateKey(siteKey string) error {
	if siteKey == "" || siteKey != docsift.ToSlug(siteKey) {
		return docsift.Errorf(docsift.EINVALID, "invalid site key %q", siteKey)
	}
	return nil
}
