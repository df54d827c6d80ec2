// Package records loads scraped product records from disk.
package records

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"fundqa/internal/domain"
)

const consolidatedPrefix = "all_funds_"

// Dir reads records from a directory holding an optional consolidated
// all_funds_*.json file ({"funds": [...]}) and per-product JSON files.
// The newest consolidated file is read first; per-product files add any
// product it does not already contain, newest file first.
type Dir struct {
	path   string
	logger *slog.Logger
}

func NewDir(path string, logger *slog.Logger) *Dir {
	if logger == nil {
		logger = slog.Default()
	}
	return &Dir{path: path, logger: logger}
}

type consolidated struct {
	Funds []domain.ProductRecord `json:"funds"`
}

type fileInfo struct {
	path string
	info fs.FileInfo
}

// Records implements domain.RecordSource. A missing directory is an error;
// individual unreadable files are logged and skipped.
func (d *Dir) Records() ([]domain.ProductRecord, error) {
	entries, err := os.ReadDir(d.path)
	if err != nil {
		return nil, fmt.Errorf("records: read dir %s: %w", d.path, err)
	}
	var bundles, singles []fileInfo
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), ".json") {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		fi := fileInfo{path: filepath.Join(d.path, e.Name()), info: info}
		if strings.HasPrefix(e.Name(), consolidatedPrefix) {
			bundles = append(bundles, fi)
		} else {
			singles = append(singles, fi)
		}
	}
	newestFirst(bundles)
	newestFirst(singles)

	var out []domain.ProductRecord
	seen := make(map[string]struct{})
	add := func(r domain.ProductRecord, from string) {
		name := strings.TrimSpace(r.Name)
		if name == "" {
			d.logger.Warn("record without fund_name skipped", "file", from)
			return
		}
		if _, dup := seen[name]; dup {
			return
		}
		seen[name] = struct{}{}
		r.Name = name
		out = append(out, r)
	}

	if len(bundles) > 0 {
		var c consolidated
		if err := decodeFile(bundles[0].path, &c); err != nil {
			d.logger.Warn("consolidated records unreadable", "file", bundles[0].path, "error", err)
		} else {
			for _, r := range c.Funds {
				add(r, bundles[0].path)
			}
		}
	}
	for _, f := range singles {
		var r domain.ProductRecord
		if err := decodeFile(f.path, &r); err != nil {
			d.logger.Warn("record unreadable", "file", f.path, "error", err)
			continue
		}
		add(r, f.path)
	}
	d.logger.Info("records loaded", "dir", d.path, "records", len(out))
	return out, nil
}

// Static serves a fixed record list.
type Static []domain.ProductRecord

func (s Static) Records() ([]domain.ProductRecord, error) { return s, nil }

func decodeFile(path string, v any) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	dec := json.NewDecoder(f)
	dec.UseNumber()
	return dec.Decode(v)
}

func newestFirst(files []fileInfo) {
	sort.SliceStable(files, func(i, j int) bool {
		return files[i].info.ModTime().After(files[j].info.ModTime())
	})
}
