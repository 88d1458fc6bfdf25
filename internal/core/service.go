package core

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/JonMunkholm/catalogo/internal/logging"
	"github.com/JonMunkholm/catalogo/internal/observability"
)

// ProductSearchColumns are the columns offered for product search.
var ProductSearchColumns = []string{
	ColProvider,
	ColDescription,
	ColCode,
	ColPartNumber,
	ColProductType,
}

// PartSearchColumns are the columns offered for part search.
var PartSearchColumns = []string{
	ColProvider,
	ColPartDescription,
}

// ServiceOptions configures a Service.
type ServiceOptions struct {
	ArchiveURL string
	EntryName  string
	Fetcher    ArchiveFetcher
	Exporter   *Exporter
	Audit      AuditLog
	Limiter    *ExportLimiter
	Metrics    *observability.Metrics
}

// Service is the entry point for all catalog operations.
type Service struct {
	key      CacheKey
	fetcher  ArchiveFetcher
	cache    *DatasetCache
	exporter *Exporter
	audit    AuditLog
	limiter  *ExportLimiter
	metrics  *observability.Metrics
}

// NewService wires the catalog components together.
func NewService(opts ServiceOptions) (*Service, error) {
	if opts.ArchiveURL == "" {
		return nil, errors.New("archive URL is required")
	}
	if opts.Fetcher == nil {
		return nil, errors.New("fetcher is required")
	}

	exporter := opts.Exporter
	if exporter == nil {
		exporter = &Exporter{}
	}
	audit := opts.Audit
	if audit == nil {
		audit = NewMemoryAuditLog(100)
	}

	limiter := opts.Limiter
	if limiter == nil {
		limiter = NewExportLimiter(DefaultMaxConcurrentExports, DefaultExportWait)
	}

	cache := NewDatasetCache()
	cache.OnHit = opts.Metrics.CacheHit
	cache.OnMiss = opts.Metrics.CacheMiss

	return &Service{
		key:      CacheKey{URL: opts.ArchiveURL, Entry: opts.EntryName},
		fetcher:  opts.Fetcher,
		cache:    cache,
		exporter: exporter,
		audit:    audit,
		limiter:  limiter,
		metrics:  opts.Metrics,
	}, nil
}

// Dataset returns the cached snapshot, fetching it on first use.
func (s *Service) Dataset(ctx context.Context) (*Dataset, error) {
	return s.cache.Get(ctx, s.key, s.load)
}

// Current returns the cached snapshot without triggering a fetch.
func (s *Service) Current() (*Dataset, bool) {
	return s.cache.Peek(s.key)
}

// Refresh drops the cached snapshot and loads a new one.
func (s *Service) Refresh(ctx context.Context) (*Dataset, error) {
	s.cache.Invalidate()
	ds, err := s.Dataset(ctx)
	if err != nil {
		return nil, err
	}
	s.record(ctx, AuditLogParams{Action: ActionRefresh, SnapshotID: ds.SnapshotID})
	return ds, nil
}

// load fetches and parses the archive.
func (s *Service) load(ctx context.Context) (*Dataset, error) {
	logger := logging.FromContext(ctx)
	start := time.Now()

	ds, err := s.fetchAndParse(ctx)
	s.metrics.ObserveLoad(err, time.Since(start))
	if err != nil {
		logger.Error("catalog load failed", "url", s.key.URL, "error", err)
		return nil, err
	}

	s.metrics.SetDatasetRows(ds.Products.Len(), ds.Parts.Len())
	logger.Info("catalog loaded",
		"snapshot_id", ds.SnapshotID,
		"entry", ds.Source.Entry,
		"products", ds.Products.Len(),
		"parts", ds.Parts.Len(),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return ds, nil
}

func (s *Service) fetchAndParse(ctx context.Context) (*Dataset, error) {
	archive, err := s.fetcher.Fetch(ctx, s.key.URL)
	if err != nil {
		return nil, err
	}
	ds, err := Load(archive, s.key.Entry)
	if err != nil {
		return nil, err
	}
	ds.Source.URL = s.key.URL
	return ds, nil
}

// Providers returns the distinct provider names of the products sheet.
func (s *Service) Providers(ctx context.Context) ([]string, error) {
	ds, err := s.Dataset(ctx)
	if err != nil {
		return nil, err
	}
	return Distinct(ds.Products, ColProvider), nil
}

// ProductQuery narrows the product table.
type ProductQuery struct {
	Provider string // exact provider; empty means all
	Column   string
	Text     string
}

// SearchProducts applies the provider bar and the text search.
func (s *Service) SearchProducts(ctx context.Context, q ProductQuery) (Table, error) {
	ds, err := s.Dataset(ctx)
	if err != nil {
		return Table{}, err
	}
	base := FilterEquals(ds.Products, ColProvider, q.Provider)
	return Filter(base, q.Column, q.Text), nil
}

// Product looks up a product by code.
func (s *Service) Product(ctx context.Context, code string) (Product, error) {
	ds, err := s.Dataset(ctx)
	if err != nil {
		return Product{}, err
	}
	for _, r := range ds.Products.Rows {
		if v, ok := r.Get(ColCode); ok && v == code {
			return Product{r}, nil
		}
	}
	return Product{}, fmt.Errorf("%w: %s", ErrProductNotFound, code)
}

// PartQuery narrows the parts table.
type PartQuery struct {
	ProductCode string // restricts to one product; empty means all parts
	Column      string
	Text        string
}

// SearchParts returns the parts of a product, or all parts, filtered by text.
func (s *Service) SearchParts(ctx context.Context, q PartQuery) (Table, error) {
	ds, err := s.Dataset(ctx)
	if err != nil {
		return Table{}, err
	}
	base := ds.Parts
	if q.ProductCode != "" {
		base = PartsForProduct(ds.Parts, q.ProductCode)
	}
	return Filter(base, q.Column, q.Text), nil
}

// Part looks up a part by code, optionally within one product.
func (s *Service) Part(ctx context.Context, productCode, partCode string) (Part, error) {
	ds, err := s.Dataset(ctx)
	if err != nil {
		return Part{}, err
	}
	return findPart(ds.Parts, productCode, partCode)
}

func findPart(parts Table, productCode, partCode string) (Part, error) {
	if productCode != "" {
		parts = PartsForProduct(parts, productCode)
	}
	for _, r := range parts.Rows {
		if v, ok := r.Get(ColPartCode); ok && v == partCode {
			return Part{r}, nil
		}
	}
	return Part{}, fmt.Errorf("%w: %s", ErrPartNotFound, partCode)
}

// ExportParts generates the parts workbook of a product.
func (s *Service) ExportParts(ctx context.Context, productCode string) (*Download, error) {
	ds, err := s.Dataset(ctx)
	if err != nil {
		return nil, err
	}
	if _, err := s.Product(ctx, productCode); err != nil {
		return nil, err
	}

	if err := s.limiter.Acquire(ctx); err != nil {
		return nil, err
	}
	dl, err := s.exporter.ExportParts(ds.Parts, productCode)
	s.limiter.Release()
	if err != nil {
		return nil, err
	}

	s.metrics.ObserveExport("xlsx", len(dl.Data))
	s.record(ctx, AuditLogParams{
		Action:      ActionExportParts,
		SnapshotID:  ds.SnapshotID,
		ProductCode: productCode,
		FileName:    dl.FileName,
		Bytes:       len(dl.Data),
	})
	return dl, nil
}

// ExportPartDetail generates the PDF sheet of one part.
func (s *Service) ExportPartDetail(ctx context.Context, productCode, partCode string) (*Download, error) {
	ds, err := s.Dataset(ctx)
	if err != nil {
		return nil, err
	}
	part, err := findPart(ds.Parts, productCode, partCode)
	if err != nil {
		return nil, err
	}

	if err := s.limiter.Acquire(ctx); err != nil {
		return nil, err
	}
	dl, err := s.exporter.ExportPartDetail(part)
	s.limiter.Release()
	if err != nil {
		return nil, err
	}

	s.metrics.ObserveExport("pdf", len(dl.Data))
	s.record(ctx, AuditLogParams{
		Action:      ActionExportPartDetail,
		SnapshotID:  ds.SnapshotID,
		ProductCode: part.ProductCode(),
		PartCode:    partCode,
		FileName:    dl.FileName,
		Bytes:       len(dl.Data),
	})
	return dl, nil
}

// ExportStatus reports export slot usage.
func (s *Service) ExportStatus() ExportLimiterStatus {
	return s.limiter.Status()
}

// DrainExports waits for in-flight exports to finish.
func (s *Service) DrainExports(ctx context.Context) error {
	return s.limiter.WaitForDrain(ctx)
}

// RecentAudit returns the newest audit entries.
func (s *Service) RecentAudit(ctx context.Context, limit int) ([]AuditEntry, error) {
	return s.audit.Recent(ctx, limit)
}

// record writes an audit entry. Failures are logged and never surface
// to the caller.
func (s *Service) record(ctx context.Context, params AuditLogParams) {
	client := ClientFromContext(ctx)
	params.IPAddress = client.IPAddress
	params.UserAgent = client.UserAgent

	if _, err := s.audit.Record(ctx, params); err != nil {
		slog.Warn("audit record failed", "action", params.Action, "error", err)
	}
}
