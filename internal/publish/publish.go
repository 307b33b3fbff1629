// Package publish writes day sheets as markdown files, one per day plus an
// index, for printing or sharing outside the app.
package publish

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	"roster-cli/internal/schedule"
	"roster-cli/internal/store"
)

type WriteOptions struct {
	Overwrite bool
}

type WriteResult struct {
	Written []string `json:"written"`
}

// WriteDays writes <toDir>/index.md and <toDir>/days/<date>.md for count days
// from startDay. It stops at the first error.
func WriteDays(db *store.DB, cfg store.Config, startDay string, count int, toDir string, opt WriteOptions) (WriteResult, error) {
	if db == nil {
		return WriteResult{}, errors.New("missing db")
	}
	toDir = strings.TrimSpace(toDir)
	if toDir == "" {
		return WriteResult{}, errors.New("missing --to")
	}
	toDir = filepath.Clean(toDir)

	days, err := schedule.Days(startDay, count)
	if err != nil {
		return WriteResult{}, err
	}
	daysDir := filepath.Join(toDir, "days")
	if err := os.MkdirAll(daysDir, 0o755); err != nil {
		return WriteResult{}, err
	}

	indexMD, err := RenderIndexMarkdown(db, cfg, days)
	if err != nil {
		return WriteResult{}, err
	}
	indexPath := filepath.Join(toDir, "index.md")
	if err := writeFile(indexPath, []byte(indexMD), opt.Overwrite); err != nil {
		return WriteResult{}, err
	}

	written := []string{indexPath}
	for _, day := range days {
		md, err := RenderDayMarkdown(db, cfg, day)
		if err != nil {
			return WriteResult{}, err
		}
		p := filepath.Join(daysDir, day+".md")
		if err := writeFile(p, []byte(md), opt.Overwrite); err != nil {
			return WriteResult{}, err
		}
		written = append(written, p)
	}
	return WriteResult{Written: written}, nil
}

func writeFile(path string, b []byte, overwrite bool) error {
	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return errors.New("file exists (use --overwrite): " + path)
		}
	}
	return os.WriteFile(path, b, 0o644)
}
