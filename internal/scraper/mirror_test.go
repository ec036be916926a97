package scraper

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bangumi/pkg/database"
	"bangumi/pkg/models"
)

func TestMirrorPathMatchesSecondaryURL(t *testing.T) {
	assert.Equal(t, filepath.Join("m", "123", "12345.json"), MirrorPath("m", 12345))
	assert.Equal(t, filepath.Join("m", "0", "7.json"), MirrorPath("m", 7))
}

func TestExportMirrorWritesBucketedFiles(t *testing.T) {
	db, err := database.OpenAndMigrate(database.Config{Path: filepath.Join(t.TempDir(), "data.db")})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	catalog := NewCatalog(db)
	require.NoError(t, catalog.SaveSubjects(context.Background(), []CatalogRecord{
		{Subject: models.Subject{ID: 7, Type: 2, Name: "seven", NameCN: "七"}, Source: SourceEmbedded},
		{Subject: models.Subject{ID: 12345, Type: 2, Name: "big", Summary: "s", TotalEpisodes: 13, Images: &models.Images{Common: "c"}}, Source: SourceMirror},
	}))

	// upsert replaces the earlier row
	require.NoError(t, catalog.SaveSubjects(context.Background(), []CatalogRecord{
		{Subject: models.Subject{ID: 7, Type: 2, Name: "seven v2", NameCN: "七"}, Source: SourceMirror},
	}))

	dir := t.TempDir()
	n, err := ExportMirror(context.Background(), catalog, dir, 0)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	b, err := os.ReadFile(MirrorPath(dir, 12345))
	require.NoError(t, err)
	var got models.Subject
	require.NoError(t, json.Unmarshal(b, &got))
	assert.Equal(t, "big", got.Name)
	assert.Equal(t, 13, got.TotalEpisodes)
	require.NotNil(t, got.Images)
	assert.Equal(t, "c", got.Images.Common)

	b, err = os.ReadFile(MirrorPath(dir, 7))
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(b, &got))
	assert.Equal(t, "seven v2", got.Name)
	assert.Equal(t, "七", got.NameCN)
}
