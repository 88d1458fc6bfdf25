// Package core provides the business logic for the workshop catalog.
//
// The package is independent of any UI or transport layer: it can be driven
// by the web handlers, a CLI or tests.
//
// # Pipeline
//
// A catalog snapshot flows through four steps:
//
//  1. [HTTPFetcher] downloads the ZIP archive published by the workshop.
//  2. [Load] extracts the workbook and parses its two sheets into a
//     [Dataset]: sheet 0 holds spare parts, sheet 1 holds products.
//  3. [Filter], [FilterEquals] and [PartsForProduct] derive views for display.
//  4. [ExportParts] and [Exporter.ExportPartDetail] turn a selection into an
//     xlsx workbook or a PDF sheet.
//
// [Service] ties the steps together and keeps the last snapshot in a
// [DatasetCache] until [Service.Refresh] is called:
//
//	svc, _ := core.NewService(core.ServiceOptions{
//	    ArchiveURL: url,
//	    EntryName:  "Registro de productos y repuestos.xlsx",
//	    Fetcher:    core.NewHTTPFetcher(time.Minute, core.DefaultMaxArchiveSize),
//	})
//	products, err := svc.SearchProducts(ctx, core.ProductQuery{
//	    Column: core.ColDescription,
//	    Text:   "tornillo",
//	})
//
// # Error Handling
//
// Loads fail with [*FetchError], [*NotFoundError] or [*ParseError]; a load
// never yields a partial dataset. Filters and exports do not fail on odd
// input: unknown columns are ignored and blank cells are treated as absent.
// Technical errors are mapped to user-facing messages with [MapError].
//
// # Audit Logging
//
// Every export and refresh is recorded through an [AuditLog], in PostgreSQL
// when a database is configured and in memory otherwise.
package core
