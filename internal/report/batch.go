package report

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"

	"github.com/edihlab/maturity/internal/cohort"
)

// BatchResult holds the output of one batch run. Reports keep the merged
// cohort's Company_ID order regardless of worker completion order.
type BatchResult struct {
	RunID   uuid.UUID `json:"run_id"`
	Reports []Data    `json:"reports"`
}

// Batch builds per-company reports across a worker pool. Report assembly is
// independent per entity, so workers need no coordination beyond the final
// join.
type Batch struct {
	workers int
	logger  *slog.Logger
}

// NewBatch creates a batch runner with the given parallelism. Workers below 1
// are raised to 1.
func NewBatch(workers int, logger *slog.Logger) *Batch {
	if workers < 1 {
		workers = 1
	}
	return &Batch{workers: workers, logger: logger}
}

// Run assembles one report per merged entity. The context interrupts the run
// between per-entity units; already-built reports for a cancelled run are
// discarded with the error.
func (b *Batch) Run(ctx context.Context, merged []cohort.MergedEntity) (*BatchResult, error) {
	runID := uuid.New()
	ranks := Rankings(merged)
	out := make([]Data, len(merged))

	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < b.workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				e := merged[i]
				out[i] = Build(e, ranks[e.CompanyID], len(merged))
			}
		}()
	}

	var err error
feed:
	for i := range merged {
		if ctx.Err() != nil {
			err = ctx.Err()
			break
		}
		select {
		case <-ctx.Done():
			err = ctx.Err()
			break feed
		case jobs <- i:
		}
	}
	close(jobs)
	wg.Wait()

	if err != nil {
		return nil, err
	}
	b.logger.Info("report batch complete", "run_id", runID, "reports", len(out), "workers", b.workers)
	return &BatchResult{RunID: runID, Reports: out}, nil
}

// WriteArtifacts serializes each report to <dir>/Report_<Company_ID>.json.
// File naming is keyed by Company_ID, never by build order.
func WriteArtifacts(dir string, reports []Data) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create reports dir: %w", err)
	}
	for _, r := range reports {
		data, err := json.MarshalIndent(r, "", "  ")
		if err != nil {
			return fmt.Errorf("encode report %s: %w", r.CompanyID, err)
		}
		path := filepath.Join(dir, fmt.Sprintf("Report_%s.json", r.CompanyID))
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return fmt.Errorf("write report %s: %w", r.CompanyID, err)
		}
	}
	return nil
}
