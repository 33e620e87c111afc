// Command catalog-ingest loads gzipped NDJSON product feeds into the
// database. Supplier exports arrive as several overlapping shard files;
// records are deduplicated by product ID across all shards, first
// occurrence wins.
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/bits-and-blooms/bloom/v3"
	"github.com/go-faster/errors"
	"github.com/google/uuid"
	pgzip "github.com/klauspost/pgzip"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/modesta/storefront-api/internal/domain/product"
	"github.com/modesta/storefront-api/internal/postgres"
)

const (
	bloomCapacity = 10_000_000
	bloomFPR      = 0.000001
	progressEvery = 100_000
)

// record is one NDJSON line of a supplier feed.
type record struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Category    string          `json:"category"`
	Price       decimal.Decimal `json:"price"`
	Features    []string        `json:"features"`
	Media       []string        `json:"media"`
	HasSizes    bool            `json:"hasSizes"`
	Stock       int             `json:"stock"`
	Sizes       []product.Size  `json:"sizes"`
}

func main() {
	var (
		dataDir     string
		pattern     string
		databaseURL string
	)

	flag.StringVar(&dataDir, "data-dir", "data", "directory containing feed shards")
	flag.StringVar(&pattern, "pattern", "catalog-*.ndjson.gz", "shard filename glob")
	flag.StringVar(&databaseURL, "database-url", "", "PostgreSQL connection URL (or DATABASE_URL env)")
	flag.Parse()

	if databaseURL == "" {
		databaseURL = os.Getenv("DATABASE_URL")
	}
	if databaseURL == "" {
		slog.Error("database URL is required: set --database-url or DATABASE_URL")
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx, dataDir, pattern, databaseURL); err != nil {
		slog.Error("catalog ingest failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("catalog ingest completed successfully")
}

func run(ctx context.Context, dataDir, pattern, databaseURL string) error {
	shards, err := filepath.Glob(filepath.Join(dataDir, pattern))
	if err != nil {
		return errors.Wrap(err, "glob shards")
	}
	if len(shards) == 0 {
		return errors.Errorf("no shards matching %s in %s", pattern, dataDir)
	}

	slog.Info("connecting to database")

	pool, err := postgres.NewPool(ctx, databaseURL)
	if err != nil {
		return errors.Wrap(err, "connect to database")
	}
	defer pool.Close()

	if err := postgres.RunMigrations(ctx, pool); err != nil {
		return errors.Wrap(err, "run migrations")
	}

	slog.Info("ingesting shards", slog.Int("count", len(shards)))

	return ingest(ctx, shards, postgres.NewProductRepository(pool))
}

// ingest streams all shards concurrently into a single writer that
// deduplicates by ID and upserts. The bloom filter makes the seen-check
// memory-bounded; at the configured false positive rate roughly one
// record in a million is wrongly skipped as a duplicate, which a
// follow-up feed corrects.
func ingest(ctx context.Context, shards []string, repo *postgres.ProductRepository) error {
	records := make(chan record, 1024)

	g, ctx := errgroup.WithContext(ctx)

	readers, ctx := errgroup.WithContext(ctx)
	for _, shard := range shards {
		readers.Go(readShard(ctx, shard, records))
	}
	g.Go(func() error {
		defer close(records)
		return readers.Wait()
	})

	g.Go(func() error {
		seen := bloom.NewWithEstimates(bloomCapacity, bloomFPR)
		var written, skipped, invalid uint64

		for rec := range records {
			p, err := toProduct(rec)
			if err != nil {
				invalid++
				slog.Warn("skipping invalid record",
					slog.String("name", rec.Name),
					slog.String("error", err.Error()),
				)
				continue
			}

			if seen.TestAndAddString(p.ID) {
				skipped++
				continue
			}

			if err := repo.Upsert(ctx, p); err != nil {
				return errors.Wrapf(err, "upsert product %s", p.ID)
			}
			written++
			if written%progressEvery == 0 {
				slog.Info("ingest progress",
					slog.Uint64("written", written),
					slog.Uint64("skipped", skipped),
				)
			}
		}

		slog.Info("ingest complete",
			slog.Uint64("written", written),
			slog.Uint64("skipped", skipped),
			slog.Uint64("invalid", invalid),
		)
		return nil
	})

	return g.Wait()
}

func readShard(ctx context.Context, path string, out chan<- record) func() error {
	return func() error {
		f, err := os.Open(path)
		if err != nil {
			return errors.Wrapf(err, "open %s", path)
		}
		defer func() { _ = f.Close() }()

		gz, err := pgzip.NewReader(f)
		if err != nil {
			return errors.Wrapf(err, "create gzip reader for %s", path)
		}
		defer func() { _ = gz.Close() }()

		var count uint64
		scanner := bufio.NewScanner(gz)
		scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
		for scanner.Scan() {
			line := scanner.Bytes()
			if len(line) == 0 {
				continue
			}

			var rec record
			if err := json.Unmarshal(line, &rec); err != nil {
				slog.Warn("skipping malformed line",
					slog.String("shard", path),
					slog.String("error", err.Error()),
				)
				continue
			}

			select {
			case out <- rec:
			case <-ctx.Done():
				return ctx.Err()
			}
			count++
		}
		if err := scanner.Err(); err != nil {
			return errors.Wrapf(err, "scan %s", path)
		}

		slog.Info("shard complete", slog.String("shard", path), slog.Uint64("records", count))
		return nil
	}
}

func toProduct(rec record) (*product.Product, error) {
	p := &product.Product{
		ID:          rec.ID,
		Name:        rec.Name,
		Description: rec.Description,
		Category:    product.Category(rec.Category),
		Price:       rec.Price,
		Features:    rec.Features,
		Media:       rec.Media,
		HasSizes:    rec.HasSizes,
		Stock:       rec.Stock,
		Sizes:       rec.Sizes,
	}
	if p.ID == "" {
		p.ID = uuid.New().String()
	} else if _, err := uuid.Parse(p.ID); err != nil {
		return nil, errors.Errorf("invalid product ID %q", p.ID)
	}
	if p.Name == "" {
		return nil, errors.New("missing name")
	}
	if !p.Category.Valid() {
		return nil, errors.Errorf("unknown category %q", rec.Category)
	}
	if p.Price.IsNegative() {
		return nil, errors.New("negative price")
	}
	if p.HasSizes {
		if err := product.ValidateSizes(p.Sizes); err != nil {
			return nil, err
		}
		p.Stock = p.TotalSizeStock()
	} else {
		if p.Stock < 0 {
			return nil, errors.New("negative stock")
		}
		// Exactly one inventory representation may be populated.
		p.Sizes = nil
	}
	return p, nil
}
