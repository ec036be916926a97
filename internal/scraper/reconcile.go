package scraper

import (
	"context"
	"fmt"

	"bangumi/internal/fetcher"
	"bangumi/internal/logger"
	"bangumi/pkg/models"
)

// Source names where an entry's subject metadata came from.
type Source string

const (
	SourceMirror   Source = "mirror"
	SourceEmbedded Source = "embedded"
)

// SecondaryURL is the mirror address of a subject: bucketed by id/100.
func SecondaryURL(base string, subjectID int64) string {
	return fmt.Sprintf("%s/%d/%d.json", base, subjectID/100, subjectID)
}

// Reconciler resolves the subject metadata of collection entries, preferring
// the mirror over the copy embedded in the collection page.
type Reconciler struct {
	Getter    fetcher.Getter
	MirrorURL string
	Log       logger.Logger
}

// NewReconciler creates a Reconciler reading from mirrorURL.
func NewReconciler(g fetcher.Getter, mirrorURL string, log logger.Logger) *Reconciler {
	if log == nil {
		log = logger.NewNop()
	}
	return &Reconciler{Getter: g, MirrorURL: mirrorURL, Log: log}
}

// Reconcile flattens raw into a CollectionEntry.
//
// Collection fields are copied as-is. Subject fields come from the mirror when
// it answers with an object, otherwise from the embedded subject, otherwise
// they stay zero. An error means the entry must be skipped.
func (r *Reconciler) Reconcile(ctx context.Context, raw models.RawCollectionEntry) (entry models.CollectionEntry, src Source, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			entry, src = models.CollectionEntry{}, ""
			err = fmt.Errorf("reconcile subject %d: panic: %v", raw.SubjectID, rec)
		}
	}()

	entry = models.CollectionEntry{
		SubjectID:   raw.SubjectID,
		SubjectType: raw.SubjectType,
		Status:      raw.Status,
		EpStatus:    raw.EpStatus,
		Rate:        raw.Rate,
		Comment:     raw.Comment,
		UpdatedAt:   raw.UpdatedAt,
	}

	var subject *models.Subject
	fetchErr := r.Getter.Fetch(ctx, SecondaryURL(r.MirrorURL, raw.SubjectID), nil, &subject)
	if fetchErr == nil && subject != nil {
		applySubject(&entry, *subject)
		return entry, SourceMirror, nil
	}
	if err := ctx.Err(); err != nil {
		return models.CollectionEntry{}, "", err
	}

	embedded, ok := raw.Embedded()
	if !ok {
		r.Log.Debug("No subject data available", logger.Int64("subject_id", raw.SubjectID))
	}
	applySubject(&entry, embedded)
	return entry, SourceEmbedded, nil
}

func applySubject(entry *models.CollectionEntry, s models.Subject) {
	entry.Date = s.Date
	entry.Images = s.Images
	entry.Name = s.Name
	entry.NameCN = s.NameCN
	entry.Summary = s.Synopsis()
	entry.TotalEpisodes = s.TotalEpisodes
	entry.Eps = s.Eps
}

// subjectOf rebuilds the subject view of a reconciled entry.
func subjectOf(entry models.CollectionEntry) models.Subject {
	return models.Subject{
		ID:            entry.SubjectID,
		Type:          entry.SubjectType,
		Name:          entry.Name,
		NameCN:        entry.NameCN,
		Summary:       entry.Summary,
		TotalEpisodes: entry.TotalEpisodes,
		Eps:           entry.Eps,
		Images:        entry.Images,
		Date:          entry.Date,
	}
}
