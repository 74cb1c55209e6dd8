package core

import (
	"context"
	"sync"
	"time"

	"github.com/JonMunkholm/tabcheck/internal/catalog"
	"github.com/JonMunkholm/tabcheck/internal/report"
	"github.com/google/uuid"
)

// memStore is an in-memory Store. Like pgx, its writes fail on a done
// context.
type memStore struct {
	mu      sync.Mutex
	records map[string]Record
	starts  int
	failGet error
}

func newMemStore() *memStore {
	return &memStore{records: make(map[string]Record)}
}

func (m *memStore) StartRun(ctx context.Context, resourceID string) (*Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	m.starts++
	rec, ok := m.records[resourceID]
	if !ok {
		rec = Record{ID: uuid.NewString(), ResourceID: resourceID, Created: time.Now()}
	}
	rec.Status = report.StatusRunning
	rec.Finished = nil
	m.records[resourceID] = rec

	out := rec
	return &out, nil
}

func (m *memStore) FinishRun(ctx context.Context, rec *Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.records[rec.ResourceID]; !ok {
		return ErrRecordNotFound
	}
	m.records[rec.ResourceID] = *rec
	return nil
}

func (m *memStore) Get(_ context.Context, resourceID string) (*Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.failGet != nil {
		return nil, m.failGet
	}
	rec, ok := m.records[resourceID]
	if !ok {
		return nil, ErrRecordNotFound
	}
	return &rec, nil
}

func (m *memStore) Delete(_ context.Context, resourceID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.records[resourceID]; !ok {
		return ErrRecordNotFound
	}
	delete(m.records, resourceID)
	return nil
}

func (m *memStore) CountByStatus(context.Context) (map[string]int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	counts := make(map[string]int64)
	for _, rec := range m.records {
		counts[rec.Status]++
	}
	return counts, nil
}

// fakeCatalog records patches.
type fakeCatalog struct {
	mu          sync.Mutex
	dataset     catalog.Dataset
	showErr     error
	siteUserErr error
	patchErr    error
	patches     []catalog.Patch
	contexts    []catalog.PatchContext
}

func (f *fakeCatalog) PackageShow(_ context.Context, id string) (catalog.Dataset, error) {
	if f.showErr != nil {
		return catalog.Dataset{}, f.showErr
	}
	ds := f.dataset
	ds.ID = id
	return ds, nil
}

func (f *fakeCatalog) ResourcePatch(ctx context.Context, pc catalog.PatchContext, p catalog.Patch) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	f.patches = append(f.patches, p)
	f.contexts = append(f.contexts, pc)
	return f.patchErr
}

func (f *fakeCatalog) SiteUser(context.Context) (catalog.SiteUser, error) {
	if f.siteUserErr != nil {
		return catalog.SiteUser{}, f.siteUserErr
	}
	return catalog.SiteUser{Name: "site_user", APIKey: "secret"}, nil
}

// fakeScanner returns a fixed result or runs fn.
type fakeScanner struct {
	raw report.Raw
	err error
	fn  func(ctx context.Context, res catalog.Resource, ds catalog.Dataset) (report.Raw, error)

	mu    sync.Mutex
	seen  []catalog.Dataset
	calls int
}

func (f *fakeScanner) Run(ctx context.Context, res catalog.Resource, ds catalog.Dataset) (report.Raw, error) {
	f.mu.Lock()
	f.calls++
	f.seen = append(f.seen, ds)
	f.mu.Unlock()

	if f.fn != nil {
		return f.fn(ctx, res, ds)
	}
	return f.raw, f.err
}

func validRaw(place string) report.Raw {
	return report.Structured(&report.Report{
		Valid: true,
		Tasks: []report.Task{{Valid: true, Name: "data", Place: place}},
	})
}
