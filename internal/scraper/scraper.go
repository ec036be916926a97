package scraper

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"bangumi/internal/logger"
	"bangumi/pkg/models"
)

// progressEvery controls how often per-entry progress is logged.
const progressEvery = 10

// RunReport summarizes one pipeline run.
type RunReport struct {
	RunID      string
	Username   string
	Counts     map[string]int // reconciled entries written per category
	Skipped    int            // entries that failed reconciliation
	Dropped    int            // entries with an unknown status
	Artifacts  []string
	StartedAt  time.Time
	FinishedAt time.Time
}

// Pipeline fetches a user's collection, reconciles every entry and writes
// one artifact per category.
type Pipeline struct {
	Username   string
	Paginator  *Paginator
	Reconciler *Reconciler
	Writer     ArtifactWriter
	Catalog    *Catalog // optional
	Ledger     *Ledger  // optional
	Log        logger.Logger
}

// Run executes the pipeline once.
//
// Failing to obtain the collection is fatal and nothing is written. An entry
// that fails reconciliation is left out of its artifact and the run goes on.
// Artifacts are written category by category, so a later failure leaves the
// earlier artifacts of this run in place.
func (p *Pipeline) Run(ctx context.Context) (report *RunReport, err error) {
	log := p.Log
	if log == nil {
		log = logger.NewNop()
	}

	report = &RunReport{
		RunID:     uuid.NewString(),
		Username:  p.Username,
		Counts:    make(map[string]int, len(models.Categories)),
		StartedAt: time.Now(),
	}
	log = log.With(logger.String("run_id", report.RunID))

	if p.Ledger != nil {
		if lerr := p.Ledger.Start(ctx, report.RunID, p.Username, report.StartedAt); lerr != nil {
			log.Warn("Failed to record run start", logger.Error(lerr))
		}
		defer func() {
			report.FinishedAt = time.Now()
			if lerr := p.Ledger.Finish(context.WithoutCancel(ctx), report, err); lerr != nil {
				log.Warn("Failed to record run result", logger.Error(lerr))
			}
		}()
	}

	entries, err := p.Paginator.FetchAll(ctx, p.Username)
	if err != nil {
		return report, err
	}

	parts, dropped := Partition(entries)
	report.Dropped = len(dropped)
	if len(dropped) > 0 {
		log.Warn("Ignoring entries with unknown status", logger.Int("count", len(dropped)))
	}

	for _, key := range models.Categories {
		items := parts[key]
		log.Info("Processing list", logger.String("category", key), logger.Int("items", len(items)))

		reconciled, records, skipped, err := p.reconcileAll(ctx, log, items)
		if err != nil {
			return report, err
		}
		report.Skipped += skipped

		path, err := p.Writer.WriteCollection(key, models.NewCollectionArtifact(reconciled))
		if err != nil {
			return report, fmt.Errorf("write %s artifact: %w", key, err)
		}
		report.Counts[key] = len(reconciled)
		report.Artifacts = append(report.Artifacts, path)
		log.Info("Wrote artifact", logger.String("category", key), logger.String("path", path), logger.Int("total", len(reconciled)))

		if p.Catalog != nil && len(records) > 0 {
			if cerr := p.Catalog.SaveSubjects(ctx, records); cerr != nil {
				log.Warn("Failed to update subject catalog", logger.String("category", key), logger.Error(cerr))
			}
		}
	}

	report.FinishedAt = time.Now()
	return report, nil
}

// reconcileAll reconciles items one at a time, in order. Only cancellation of
// ctx is returned as an error; per-entry failures are counted as skipped.
func (p *Pipeline) reconcileAll(ctx context.Context, log logger.Logger, items []models.RawCollectionEntry) ([]models.CollectionEntry, []CatalogRecord, int, error) {
	out := make([]models.CollectionEntry, 0, len(items))
	records := make([]CatalogRecord, 0, len(items))
	skipped := 0

	for i, item := range items {
		if err := ctx.Err(); err != nil {
			return nil, nil, skipped, err
		}

		entry, src, err := p.Reconciler.Reconcile(ctx, item)
		switch {
		case err != nil && ctx.Err() != nil:
			return nil, nil, skipped, ctx.Err()
		case err != nil:
			skipped++
			log.Warn("Failed to process subject", logger.Int64("subject_id", item.SubjectID), logger.Error(err))
		default:
			out = append(out, entry)
			if hasSubjectData(item, entry, src) {
				records = append(records, CatalogRecord{Subject: subjectOf(entry), Source: src})
			}
		}

		if i%progressEvery == 0 {
			log.Info("Progress", logger.Int("done", i), logger.Int("items", len(items)))
		}
	}
	return out, records, skipped, nil
}

// hasSubjectData reports whether entry carries metadata worth cataloguing.
// Entries that fell back to a missing embedded subject only hold zero values.
func hasSubjectData(raw models.RawCollectionEntry, entry models.CollectionEntry, src Source) bool {
	if src == SourceEmbedded && raw.Subject == nil {
		return false
	}
	return entry.Name != "" || entry.NameCN != ""
}
