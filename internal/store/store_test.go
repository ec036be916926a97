package store

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bangumi/pkg/models"
)

func writeArtifact(t *testing.T, dir, name string, v any) {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), b, 0o644))
}

func entries(n int) []models.CollectionEntry {
	out := make([]models.CollectionEntry, n)
	for i := range out {
		out[i] = models.CollectionEntry{SubjectID: int64(i + 1), Status: models.StatusWatched}
	}
	return out
}

func fixtureDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	writeArtifact(t, dir, "watched.json", models.NewCollectionArtifact(entries(5)))
	writeArtifact(t, dir, "want.json", models.NewCollectionArtifact(entries(2)))
	writeArtifact(t, dir, "calendar.json", []models.CalendarDay{
		{Weekday: models.Weekday{En: "Mon", ID: 1}, Items: []models.CalendarItem{{ID: 9, NameCN: "九"}}},
	})
	return dir
}

func TestPageWindow(t *testing.T) {
	s, err := Load(fixtureDir(t))
	require.NoError(t, err)

	res, err := s.Page(models.CategoryWatched, 0, 2)
	require.NoError(t, err)
	assert.Equal(t, 5, res.Total)
	require.Len(t, res.Data, 2)
	assert.EqualValues(t, 1, res.Data[0].SubjectID)
	assert.EqualValues(t, 2, res.Data[1].SubjectID)

	res, err = s.Page(models.CategoryWatched, 4, 12)
	require.NoError(t, err)
	require.Len(t, res.Data, 1)
	assert.EqualValues(t, 5, res.Data[0].SubjectID)
}

func TestPageClampsBounds(t *testing.T) {
	s, err := Load(fixtureDir(t))
	require.NoError(t, err)

	cases := []struct {
		name          string
		offset, limit int
		want          int
	}{
		{"offset past end", 10, 5, 0},
		{"negative offset", -3, 2, 2},
		{"zero limit", 0, 0, 0},
		{"negative limit", 1, -1, 0},
		{"huge limit", 1, int(^uint(0) >> 1), 4},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			res, err := s.Page(models.CategoryWatched, tc.offset, tc.limit)
			require.NoError(t, err)
			assert.Len(t, res.Data, tc.want)
			assert.NotNil(t, res.Data)
			assert.Equal(t, 5, res.Total)
		})
	}
}

func TestPageUnknownCategory(t *testing.T) {
	s, err := Load(fixtureDir(t))
	require.NoError(t, err)

	_, err = s.Page("dropped", 0, 12)
	assert.ErrorIs(t, err, ErrUnknownCategory)
}

func TestMissingArtifactsLoadEmpty(t *testing.T) {
	s, err := Load(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, map[string]int{"want": 0, "watched": 0, "watching": 0}, s.Totals())
	assert.NotNil(t, s.Calendar())
	assert.Empty(t, s.Calendar())

	res, err := s.Page(models.CategoryWatching, 0, 12)
	require.NoError(t, err)
	assert.NotNil(t, res.Data)
	assert.Empty(t, res.Data)
}

func TestMalformedArtifactFails(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "want.json"), []byte("{not json"), 0o644))

	_, err := Load(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "want.json")
}

func TestTotalsAndCalendar(t *testing.T) {
	s, err := Load(fixtureDir(t))
	require.NoError(t, err)

	assert.Equal(t, map[string]int{"want": 2, "watched": 5, "watching": 0}, s.Totals())
	require.Len(t, s.Calendar(), 1)
	assert.Equal(t, "Mon", s.Calendar()[0].Weekday.En)
	assert.Equal(t, models.Categories, s.Categories())
}

func TestOpenLoadsOnce(t *testing.T) {
	dir := fixtureDir(t)

	first, err := Open(dir)
	require.NoError(t, err)
	second, err := Open(t.TempDir())
	require.NoError(t, err)

	assert.Same(t, first, second)
	assert.Equal(t, 5, second.Totals()[models.CategoryWatched])
}
