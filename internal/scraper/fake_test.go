package scraper

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"

	"bangumi/pkg/models"
)

// fakeBangumi serves the collection, mirror and calendar endpoints from memory.
type fakeBangumi struct {
	mu sync.Mutex

	entries   []models.RawCollectionEntry
	total     int // reported total; defaults to len(entries)
	failPages map[int]bool
	mirror    map[int64]string // raw JSON per subject id
	calendar  string

	collectionOffsets []int
	mirrorHits        []int64
}

func newFakeBangumi(t *testing.T, f *fakeBangumi) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()

	mux.HandleFunc("/v0/users/", func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		limit, _ := strconv.Atoi(q.Get("limit"))
		offset, _ := strconv.Atoi(q.Get("offset"))

		f.mu.Lock()
		f.collectionOffsets = append(f.collectionOffsets, offset)
		f.mu.Unlock()

		if f.failPages[offset] {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}

		end := offset + limit
		if end > len(f.entries) {
			end = len(f.entries)
		}
		data := []models.RawCollectionEntry{}
		if offset < end {
			data = f.entries[offset:end]
		}
		total := f.total
		if total == 0 {
			total = len(f.entries)
		}
		_ = json.NewEncoder(w).Encode(models.CollectionPage{Total: total, Limit: limit, Offset: offset, Data: data})
	})

	mux.HandleFunc("/mirror/", func(w http.ResponseWriter, r *http.Request) {
		name := r.URL.Path[strings.LastIndex(r.URL.Path, "/")+1:]
		id, _ := strconv.ParseInt(strings.TrimSuffix(name, ".json"), 10, 64)

		f.mu.Lock()
		f.mirrorHits = append(f.mirrorHits, id)
		body, ok := f.mirror[id]
		f.mu.Unlock()
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		_, _ = w.Write([]byte(body))
	})

	mux.HandleFunc("/calendar", func(w http.ResponseWriter, r *http.Request) {
		if f.calendar == "" {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(f.calendar))
	})

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func rawEntries(n int, status func(i int) models.Status) []models.RawCollectionEntry {
	out := make([]models.RawCollectionEntry, n)
	for i := range out {
		out[i] = models.RawCollectionEntry{
			SubjectID:   int64(i + 1),
			SubjectType: 2,
			Status:      status(i),
			EpStatus:    i,
		}
	}
	return out
}
