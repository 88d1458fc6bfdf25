package core

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JonMunkholm/catalogo/internal/observability"
)

const testURL = "https://example.test/catalogo.zip"

// stubFetcher serves a fixed archive and counts calls.
type stubFetcher struct {
	mu      sync.Mutex
	archive []byte
	err     error
	calls   atomic.Int32
	delay   time.Duration
}

func (f *stubFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	f.calls.Add(1)
	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	return f.archive, nil
}

func (f *stubFetcher) set(archive []byte, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.archive, f.err = archive, err
}

func newTestService(t *testing.T) (*Service, *stubFetcher, *MemoryAuditLog) {
	t.Helper()

	fetcher := &stubFetcher{archive: sampleArchive(t, entryName)}
	audit := NewMemoryAuditLog(10)
	svc, err := NewService(ServiceOptions{
		ArchiveURL: testURL,
		EntryName:  entryName,
		Fetcher:    fetcher,
		Exporter:   &Exporter{OrgName: "Taller de Servicio", Subtitle: "Silva Internacional S.A"},
		Audit:      audit,
		Metrics:    observability.New(),
	})
	require.NoError(t, err)
	return svc, fetcher, audit
}

func TestNewService_Validation(t *testing.T) {
	_, err := NewService(ServiceOptions{Fetcher: &stubFetcher{}})
	assert.Error(t, err)
	_, err = NewService(ServiceOptions{ArchiveURL: testURL})
	assert.Error(t, err)
}

func TestService_DatasetIsCached(t *testing.T) {
	svc, fetcher, _ := newTestService(t)
	ctx := context.Background()

	_, ok := svc.Current()
	assert.False(t, ok)

	a, err := svc.Dataset(ctx)
	require.NoError(t, err)
	b, err := svc.Dataset(ctx)
	require.NoError(t, err)

	assert.Same(t, a, b)
	assert.Equal(t, int32(1), fetcher.calls.Load())
	assert.Equal(t, testURL, a.Source.URL)

	cur, ok := svc.Current()
	assert.True(t, ok)
	assert.Same(t, a, cur)
}

func TestService_RefreshForcesRefetch(t *testing.T) {
	svc, fetcher, audit := newTestService(t)
	ctx := context.Background()

	a, err := svc.Dataset(ctx)
	require.NoError(t, err)
	b, err := svc.Refresh(ctx)
	require.NoError(t, err)

	assert.NotEqual(t, a.SnapshotID, b.SnapshotID)
	assert.Equal(t, int32(2), fetcher.calls.Load())

	entries, err := audit.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, ActionRefresh, entries[0].Action)
	assert.Equal(t, b.SnapshotID, entries[0].SnapshotID)
}

func TestService_FailedLoadIsNotCached(t *testing.T) {
	svc, fetcher, _ := newTestService(t)
	ctx := context.Background()

	fetcher.set(nil, &FetchError{URL: testURL, StatusCode: 503})
	_, err := svc.Dataset(ctx)
	var fe *FetchError
	require.True(t, errors.As(err, &fe))

	fetcher.set(sampleArchive(t, entryName), nil)
	ds, err := svc.Dataset(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, ds.Products.Len())
	assert.Equal(t, int32(2), fetcher.calls.Load())
}

func TestService_FailedRefreshKeepsNothing(t *testing.T) {
	svc, fetcher, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Dataset(ctx)
	require.NoError(t, err)

	fetcher.set([]byte("broken"), nil)
	_, err = svc.Refresh(ctx)
	require.Error(t, err)

	_, ok := svc.Current()
	assert.False(t, ok, "a failed refresh leaves the cache empty")
}

func TestService_ConcurrentMissesShareOneLoad(t *testing.T) {
	svc, fetcher, _ := newTestService(t)
	fetcher.delay = 50 * time.Millisecond

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Dataset(context.Background())
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), fetcher.calls.Load())
}

func TestService_SearchProducts(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	all, err := svc.SearchProducts(ctx, ProductQuery{})
	require.NoError(t, err)
	assert.Equal(t, []string{"A1", "B2", "C3"}, codes(all, ColCode))

	acme, err := svc.SearchProducts(ctx, ProductQuery{Provider: "ACME"})
	require.NoError(t, err)
	assert.Equal(t, []string{"A1", "C3"}, codes(acme, ColCode))

	got, err := svc.SearchProducts(ctx, ProductQuery{Provider: "ACME", Column: ColDescription, Text: "BANCO"})
	require.NoError(t, err)
	assert.Equal(t, []string{"C3"}, codes(got, ColCode))
}

func TestService_Providers(t *testing.T) {
	svc, _, _ := newTestService(t)
	providers, err := svc.Providers(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"ACME", "Bosch"}, providers)
}

func TestService_ProductLookup(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	p, err := svc.Product(ctx, "A1")
	require.NoError(t, err)
	assert.Equal(t, "Taladro percutor", p.Description())
	link, ok := p.TechSheetLink()
	assert.True(t, ok)
	assert.Equal(t, "https://example.test/ficha.pdf", link)
	_, ok = p.DiagramLink()
	assert.False(t, ok)

	_, err = svc.Product(ctx, "ZZ")
	assert.ErrorIs(t, err, ErrProductNotFound)
}

func TestService_SearchParts(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	all, err := svc.SearchParts(ctx, PartQuery{})
	require.NoError(t, err)
	assert.Len(t, all.Rows, 3)

	forA1, err := svc.SearchParts(ctx, PartQuery{ProductCode: "A1"})
	require.NoError(t, err)
	assert.Equal(t, []string{"P1", "P2"}, codes(forA1, ColPartCode))

	got, err := svc.SearchParts(ctx, PartQuery{ProductCode: "A1", Column: ColPartDescription, Text: "arandela"})
	require.NoError(t, err)
	assert.Equal(t, []string{"P2"}, codes(got, ColPartCode))

	// The parts sheet has no "Proveedor" column: searching by it is a no-op.
	got, err = svc.SearchParts(ctx, PartQuery{Column: ColProvider, Text: "zzz"})
	require.NoError(t, err)
	assert.Len(t, got.Rows, 3)
}

func TestService_ExportParts(t *testing.T) {
	svc, _, audit := newTestService(t)
	ctx := ContextWithClient(context.Background(), ClientInfo{IPAddress: "10.0.0.1", UserAgent: "test"})

	dl, err := svc.ExportParts(ctx, "A1")
	require.NoError(t, err)
	assert.Equal(t, "repuestos_A1.xlsx", dl.FileName)

	entries, err := audit.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, ActionExportParts, entries[0].Action)
	assert.Equal(t, "A1", entries[0].ProductCode)
	assert.Equal(t, "10.0.0.1", entries[0].IPAddress)
	assert.Equal(t, len(dl.Data), entries[0].Bytes)

	_, err = svc.ExportParts(ctx, "ZZ")
	assert.ErrorIs(t, err, ErrProductNotFound)
}

func TestService_ExportPartDetail(t *testing.T) {
	svc, _, audit := newTestService(t)
	ctx := context.Background()

	dl, err := svc.ExportPartDetail(ctx, "", "P3")
	require.NoError(t, err)
	assert.Equal(t, "detalle_repuesto_P3.pdf", dl.FileName)

	entries, err := audit.Recent(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, ActionExportPartDetail, entries[0].Action)
	assert.Equal(t, "B2", entries[0].ProductCode)

	_, err = svc.ExportPartDetail(ctx, "A1", "P3")
	assert.ErrorIs(t, err, ErrPartNotFound, "P3 belongs to B2")
}

func TestMemoryAuditLog_Capacity(t *testing.T) {
	log := NewMemoryAuditLog(2)
	ctx := context.Background()
	for _, code := range []string{"A", "B", "C"} {
		_, err := log.Record(ctx, AuditLogParams{Action: ActionExportParts, ProductCode: code})
		require.NoError(t, err)
	}

	entries, err := log.Recent(ctx, 0)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "C", entries[0].ProductCode)
	assert.Equal(t, "B", entries[1].ProductCode)
}

func TestService_ExportsWaitForSlot(t *testing.T) {
	limiter := NewExportLimiter(1, 20*time.Millisecond)
	svc, err := NewService(ServiceOptions{
		ArchiveURL: testURL,
		EntryName:  entryName,
		Fetcher:    &stubFetcher{archive: sampleArchive(t, entryName)},
		Limiter:    limiter,
	})
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, limiter.Acquire(ctx))
	_, err = svc.ExportParts(ctx, "A1")
	assert.ErrorIs(t, err, ErrTooManyExports)
	_, err = svc.ExportPartDetail(ctx, "A1", "P1")
	assert.ErrorIs(t, err, ErrTooManyExports)

	limiter.Release()
	dl, err := svc.ExportParts(ctx, "A1")
	require.NoError(t, err)
	assert.Equal(t, "repuestos_A1.xlsx", dl.FileName)
	assert.Equal(t, 0, svc.ExportStatus().Active)
}
