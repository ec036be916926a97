package models

// Status is the collection state a user assigned to a subject.
type Status int

const (
	StatusWant     Status = 1
	StatusWatched  Status = 2
	StatusWatching Status = 3
)

// Category keys, in the order artifacts are built and reported.
const (
	CategoryWant     = "want"
	CategoryWatched  = "watched"
	CategoryWatching = "watching"
)

// Categories lists every partition key in build order.
var Categories = []string{CategoryWant, CategoryWatched, CategoryWatching}

// Category maps a status to its partition key. Unknown statuses report false.
func (s Status) Category() (string, bool) {
	switch s {
	case StatusWant:
		return CategoryWant, true
	case StatusWatched:
		return CategoryWatched, true
	case StatusWatching:
		return CategoryWatching, true
	default:
		return "", false
	}
}

// RawCollectionEntry is one record as the collection API returns it.
//
// It only exists at the ingestion boundary: the record either embeds a copy of
// its subject or it does not, and the reconciler turns both variants into a
// flat CollectionEntry before anything else sees it.
type RawCollectionEntry struct {
	SubjectID   int64    `json:"subject_id"`
	SubjectType int      `json:"subject_type"`
	Status      Status   `json:"type"`
	EpStatus    int      `json:"ep_status"`
	Rate        int      `json:"rate"`
	Comment     string   `json:"comment,omitempty"`
	UpdatedAt   string   `json:"updated_at,omitempty"`
	Subject     *Subject `json:"subject,omitempty"`
}

// Embedded returns the subject copy carried by the record, if any.
func (r RawCollectionEntry) Embedded() (Subject, bool) {
	if r.Subject == nil {
		return Subject{}, false
	}
	return *r.Subject, true
}

// CollectionPage is one page of the collection endpoint.
type CollectionPage struct {
	Total  int                  `json:"total"`
	Limit  int                  `json:"limit"`
	Offset int                  `json:"offset"`
	Data   []RawCollectionEntry `json:"data"`
}

// CollectionEntry is a reconciled record: collection state plus the subject
// metadata flattened into the same object.
type CollectionEntry struct {
	SubjectID   int64  `json:"subject_id"`
	SubjectType int    `json:"subject_type"`
	Status      Status `json:"type"`
	EpStatus    int    `json:"ep_status"`
	Rate        int    `json:"rate"`
	Comment     string `json:"comment,omitempty"`
	UpdatedAt   string `json:"updated_at,omitempty"`

	Name          string  `json:"name"`
	NameCN        string  `json:"name_cn"`
	Summary       string  `json:"summary"`
	TotalEpisodes int     `json:"total_episodes"`
	Eps           int     `json:"eps"`
	Images        *Images `json:"images,omitempty"`
	Date          string  `json:"date,omitempty"`
}

// CollectionArtifact is the persisted form of one partition.
type CollectionArtifact struct {
	Data  []CollectionEntry `json:"data"`
	Total int               `json:"total"`
}

// NewCollectionArtifact wraps entries, keeping Data non-nil so it encodes as [].
func NewCollectionArtifact(entries []CollectionEntry) CollectionArtifact {
	if entries == nil {
		entries = []CollectionEntry{}
	}
	return CollectionArtifact{Data: entries, Total: len(entries)}
}
