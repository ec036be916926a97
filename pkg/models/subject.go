package models

// Images holds the cover URLs a subject exposes at each size tier.
type Images struct {
	Large  string `json:"large"`
	Common string `json:"common"`
	Medium string `json:"medium"`
	Small  string `json:"small"`
}

// Subject is the canonical metadata of one title.
//
// Both metadata sources decode into this structure. The mirror returns the
// full form (summary, total_episodes); subjects embedded in collection pages
// only carry short_summary and no total episode count.
type Subject struct {
	ID            int64   `json:"id"`
	Type          int     `json:"type"`                    // subject kind (2 = anime)
	Name          string  `json:"name"`                    // original title
	NameCN        string  `json:"name_cn"`                 // localized title, may be empty
	Summary       string  `json:"summary"`                 // full synopsis
	ShortSummary  string  `json:"short_summary,omitempty"` // embedded subjects only
	TotalEpisodes int     `json:"total_episodes"`          // episodes in the database
	Eps           int     `json:"eps"`                     // episodes currently known
	Images        *Images `json:"images,omitempty"`        // nil when the source had none
	Date          string  `json:"date,omitempty"`          // premiere date, YYYY-MM-DD
}

// Synopsis returns the longest summary text the source provided.
func (s Subject) Synopsis() string {
	if s.Summary != "" {
		return s.Summary
	}
	return s.ShortSummary
}
