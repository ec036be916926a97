package scraper

import (
	"context"
	"fmt"
	"path/filepath"
	"strconv"
)

// MirrorPath is the location of a subject inside a mirror directory, matching
// the layout SecondaryURL expects.
func MirrorPath(dir string, subjectID int64) string {
	return filepath.Join(dir, strconv.FormatInt(subjectID/100, 10), strconv.FormatInt(subjectID, 10)+".json")
}

// ExportMirror writes every catalog subject to dir as a bucketed mirror and
// returns the number of files written. limit <= 0 exports everything.
func ExportMirror(ctx context.Context, c *Catalog, dir string, limit int) (int, error) {
	records, err := c.ListSubjects(ctx, limit)
	if err != nil {
		return 0, err
	}

	for i, r := range records {
		if err := ctx.Err(); err != nil {
			return i, err
		}
		path := MirrorPath(dir, r.Subject.ID)
		w := DirWriter{Dir: filepath.Dir(path)}
		if _, err := w.write(filepath.Base(path), r.Subject); err != nil {
			return i, fmt.Errorf("export subject %d: %w", r.Subject.ID, err)
		}
	}
	return len(records), nil
}
