// Command catalog-ingest bulk-loads catalog items into a running API
// instance from gzip-compressed supplier feeds.
//
// Each feed is a text file of "name;price" lines. An entry is only trusted
// when its name appears in at least two feeds. With feeds holding tens of
// millions of rows, exact cross-referencing is too memory-hungry, so the tool
// makes two passes: pass 1 builds one bloom filter per feed, pass 2
// re-streams each feed and keeps names that hit another feed's filter.
// Surviving entries are created through POST /item.
package main

import (
	"bufio"
	"bytes"
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"math/bits"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"github.com/bits-and-blooms/bloom/v3"
	"github.com/go-faster/errors"
	pgzip "github.com/klauspost/pgzip"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

const (
	bloomCapacity = 10_000_000
	bloomFPR      = 0.001
	progressEvery = 1_000_000
)

// fileResult holds the candidates found in one feed during pass 2: a bitmask
// of feeds the name was seen in, and the price quoted by this feed.
type fileResult struct {
	masks  map[string]uint
	prices map[string]string
}

func main() {
	var (
		dataDir string
		apiURL  string
	)

	flag.StringVar(&dataDir, "data-dir", "data", "directory containing supplier feed *.gz files")
	flag.StringVar(&apiURL, "api-url", "http://localhost:8080", "base URL of the shop API")
	flag.Parse()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx, dataDir, apiURL); err != nil {
		slog.Error("catalog ingest failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("catalog ingest completed successfully")
}

func run(ctx context.Context, dataDir, apiURL string) error {
	files, err := filepath.Glob(filepath.Join(dataDir, "*.gz"))
	if err != nil {
		return errors.Wrap(err, "glob feeds")
	}
	if len(files) < 2 {
		return errors.Errorf("need at least 2 feed files in %s, found %d", dataDir, len(files))
	}

	slog.Info("pass 1: building bloom filters", slog.Int("files", len(files)))

	filters, err := buildBloomFilters(ctx, files)
	if err != nil {
		return errors.Wrap(err, "build bloom filters")
	}

	slog.Info("pass 2: cross-referencing feeds")

	entries, err := findTrustedEntries(ctx, files, filters)
	if err != nil {
		return errors.Wrap(err, "find trusted entries")
	}

	slog.Info("trusted entries found", slog.Int("count", len(entries)))

	if len(entries) == 0 {
		slog.Info("nothing to ingest")
		return nil
	}

	return createItems(ctx, apiURL, entries)
}

// buildBloomFilters creates one bloom filter of item names per feed,
// concurrently.
func buildBloomFilters(ctx context.Context, files []string) ([]*bloom.BloomFilter, error) {
	filters := make([]*bloom.BloomFilter, len(files))

	g, ctx := errgroup.WithContext(ctx)
	for i, f := range files {
		g.Go(buildFilterForFile(ctx, i, f, filters))
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return filters, nil
}

func buildFilterForFile(ctx context.Context, idx int, path string, filters []*bloom.BloomFilter) func() error {
	return func() error {
		filter := bloom.NewWithEstimates(bloomCapacity, bloomFPR)
		var count uint64

		if err := streamGzFile(ctx, path, func(name, _ string) {
			filter.AddString(name)
			count++
			if count%progressEvery == 0 {
				slog.Info("pass 1 progress",
					slog.Int("file", idx+1),
					slog.Uint64("rows", count),
				)
			}
		}); err != nil {
			return errors.Wrapf(err, "build filter for file %d", idx+1)
		}

		slog.Info("pass 1 complete",
			slog.Int("file", idx+1),
			slog.Uint64("total_rows", count),
		)

		filters[idx] = filter
		return nil
	}
}

// findTrustedEntries re-streams each feed and checks names against the OTHER
// feeds' bloom filters. A name is trusted when it appears in 2 or more feeds;
// the price comes from the lowest-numbered feed quoting it.
func findTrustedEntries(ctx context.Context, files []string, filters []*bloom.BloomFilter) (map[string]string, error) {
	results := make([]fileResult, len(files))

	g, ctx := errgroup.WithContext(ctx)
	for i, f := range files {
		g.Go(findCandidatesInFile(ctx, i, f, filters, results))
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	// Merge bitmasks; earlier feeds win price conflicts.
	masks := make(map[string]uint)
	prices := make(map[string]string)
	for _, r := range results {
		for name, mask := range r.masks {
			masks[name] |= mask
			if _, ok := prices[name]; !ok {
				prices[name] = r.prices[name]
			}
		}
	}

	entries := make(map[string]string)
	for name, mask := range masks {
		if bits.OnesCount(mask) >= 2 {
			entries[name] = prices[name]
		}
	}

	return entries, nil
}

func findCandidatesInFile(
	ctx context.Context,
	idx int,
	path string,
	filters []*bloom.BloomFilter,
	results []fileResult,
) func() error {
	return func() error {
		res := fileResult{
			masks:  make(map[string]uint),
			prices: make(map[string]string),
		}
		fileBit := uint(1) << uint(idx)
		var count uint64

		if err := streamGzFile(ctx, path, func(name, price string) {
			count++
			if count%progressEvery == 0 {
				slog.Info("pass 2 progress",
					slog.Int("file", idx+1),
					slog.Uint64("rows", count),
				)
			}

			for j, f := range filters {
				if j == idx {
					continue
				}
				if f.TestString(name) {
					res.masks[name] |= fileBit
					res.prices[name] = price
					break
				}
			}
		}); err != nil {
			return errors.Wrapf(err, "scan file %d for candidates", idx+1)
		}

		slog.Info("pass 2 complete",
			slog.Int("file", idx+1),
			slog.Uint64("total_rows", count),
			slog.Int("candidates", len(res.masks)),
		)

		results[idx] = res
		return nil
	}
}

// streamGzFile opens a gzip-compressed feed and calls fn for each well-formed
// "name;price" line. Malformed lines are skipped.
func streamGzFile(ctx context.Context, path string, fn func(name, price string)) error {
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

	scanner := bufio.NewScanner(gz)
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}
		name, price, ok := strings.Cut(scanner.Text(), ";")
		if !ok || name == "" {
			continue
		}
		fn(name, price)
	}

	if err := scanner.Err(); err != nil {
		return errors.Wrapf(err, "scan %s", path)
	}

	return nil
}

// createItems posts every trusted entry to the API.
func createItems(ctx context.Context, apiURL string, entries map[string]string) error {
	slog.Info("creating items", slog.Int("count", len(entries)))

	client := &http.Client{Timeout: 10 * time.Second}
	var written int

	for name, price := range entries {
		value, err := decimal.NewFromString(price)
		if err != nil {
			slog.Warn("skipping entry with bad price",
				slog.String("name", name),
				slog.String("price", price),
			)
			continue
		}

		if err := postItem(ctx, client, apiURL, name, value); err != nil {
			return errors.Wrapf(err, "create item %q", name)
		}

		written++
		if written%100 == 0 || written == len(entries) {
			slog.Info("create progress", slog.Int("written", written), slog.Int("total", len(entries)))
		}
	}

	return nil
}

func postItem(ctx context.Context, client *http.Client, apiURL, name string, price decimal.Decimal) error {
	body := fmt.Sprintf(`{"name":%q,"price":%s}`, name, price.String())

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, apiURL+"/item", strings.NewReader(body))
	if err != nil {
		return errors.Wrap(err, "create request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return errors.Wrap(err, "post item")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusCreated {
		out, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return errors.Errorf("unexpected status %d: %s", resp.StatusCode, bytes.TrimSpace(out))
	}

	return nil
}
