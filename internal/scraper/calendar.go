package scraper

import (
	"context"
	"errors"
	"fmt"

	"bangumi/internal/fetcher"
	"bangumi/internal/logger"
	"bangumi/pkg/models"
)

// ErrNoCalendar means the broadcast schedule could not be fetched.
var ErrNoCalendar = errors.New("failed to fetch calendar")

type rawCalendarDay struct {
	Weekday models.Weekday    `json:"weekday"`
	Items   []rawCalendarItem `json:"items"`
}

type rawCalendarItem struct {
	ID         int64          `json:"id"`
	URL        string         `json:"url"`
	Type       int            `json:"type"`
	Name       string         `json:"name"`
	NameCN     string         `json:"name_cn"`
	Summary    string         `json:"summary"`
	AirDate    string         `json:"air_date"`
	AirWeekday int            `json:"air_weekday"`
	Rating     *models.Rating `json:"rating"`
	Rank       int            `json:"rank"`
	Images     *models.Images `json:"images"`
}

// CalendarBuilder fetches the weekly broadcast schedule and persists the
// reduced calendar artifact.
type CalendarBuilder struct {
	Getter  fetcher.Getter
	BaseURL string
	Writer  ArtifactWriter
	Log     logger.Logger
}

// NewCalendarBuilder creates a CalendarBuilder.
func NewCalendarBuilder(g fetcher.Getter, baseURL string, w ArtifactWriter, log logger.Logger) *CalendarBuilder {
	if log == nil {
		log = logger.NewNop()
	}
	return &CalendarBuilder{Getter: g, BaseURL: baseURL, Writer: w, Log: log}
}

// Build fetches, filters and writes the calendar. Nothing is written when the
// fetch fails.
func (b *CalendarBuilder) Build(ctx context.Context) ([]models.CalendarDay, error) {
	b.Log.Info("Fetching calendar")

	var raw []rawCalendarDay
	if err := b.Getter.Fetch(ctx, b.BaseURL+"/calendar", nil, &raw); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNoCalendar, err)
	}
	if raw == nil {
		return nil, ErrNoCalendar
	}

	days := FilterCalendar(projectCalendar(raw))
	path, err := b.Writer.WriteCalendar(days)
	if err != nil {
		return nil, err
	}
	b.Log.Info("Wrote calendar", logger.String("path", path), logger.Int("days", len(days)))
	return days, nil
}

func projectCalendar(raw []rawCalendarDay) []models.CalendarDay {
	days := make([]models.CalendarDay, 0, len(raw))
	for _, d := range raw {
		items := make([]models.CalendarItem, 0, len(d.Items))
		for _, it := range d.Items {
			items = append(items, models.CalendarItem{
				ID:      it.ID,
				Name:    it.Name,
				NameCN:  it.NameCN,
				Images:  it.Images,
				AirDate: it.AirDate,
				Rank:    it.Rank,
				Rating:  it.Rating,
			})
		}
		days = append(days, models.CalendarDay{Weekday: d.Weekday, Items: items})
	}
	return days
}

// FilterCalendar drops every item without a localized name. Applying it to
// its own output changes nothing.
func FilterCalendar(days []models.CalendarDay) []models.CalendarDay {
	out := make([]models.CalendarDay, 0, len(days))
	for _, d := range days {
		kept := make([]models.CalendarItem, 0, len(d.Items))
		for _, it := range d.Items {
			if it.NameCN == "" {
				continue
			}
			kept = append(kept, it)
		}
		out = append(out, models.CalendarDay{Weekday: d.Weekday, Items: kept})
	}
	return out
}
