package pipeline

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/techlogistics/backend/internal/domain/analytics"
	"github.com/techlogistics/backend/internal/domain/cleaning"
	"github.com/techlogistics/backend/internal/domain/dataset"
	"github.com/techlogistics/backend/internal/domain/quality"
	"github.com/techlogistics/backend/internal/domain/shared"
	"github.com/techlogistics/backend/internal/infrastructure/ingest"
	"github.com/techlogistics/backend/internal/infrastructure/logger"
)

// RawInput carries the three raw dataset files of one run.
type RawInput struct {
	Inventory    []byte
	Transactions []byte
	Feedback     []byte
}

// Fingerprint identifies the raw input by content. Runs over identical
// bytes reuse the cached cleaning result.
func (in RawInput) Fingerprint() string {
	h := sha256.New()
	h.Write(in.Inventory)
	h.Write(in.Transactions)
	h.Write(in.Feedback)
	return hex.EncodeToString(h.Sum(nil))
}

// RunResult is the immutable bundle one pipeline run produces: cleaned
// snapshots, the cleaning report, reconciliation stats, and the enriched
// rows analytics queries run over.
type RunResult struct {
	RunID       uuid.UUID
	Fingerprint string
	StartedAt   time.Time
	Duration    time.Duration

	Report    *quality.Report
	Reconcile cleaning.ReconcileStats

	Inventory    *dataset.Inventory
	Transactions *dataset.Transactions
	Feedback     *dataset.Feedback
	Rows         []analytics.Row
}

// Service orchestrates ingest, audit, cleaning, reconciliation, and
// analytical queries. Runs are synchronous; the last completed run is the
// one queries read.
type Service struct {
	contracts ingest.ContractSet
	auditor   *quality.Auditor
	cleaner   *cleaning.Cleaner
	engine    *analytics.Engine
	logger    *zap.Logger

	mu      sync.Mutex
	current *RunResult
	cache   map[string]*RunResult
}

// NewService creates a pipeline service.
func NewService(contracts ingest.ContractSet, auditor *quality.Auditor, cleaner *cleaning.Cleaner, engine *analytics.Engine, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		contracts: contracts,
		auditor:   auditor,
		cleaner:   cleaner,
		engine:    engine,
		logger:    logger,
		cache:     make(map[string]*RunResult),
	}
}

// Run executes the full pipeline over the raw input. A schema failure on
// one dataset fails that dataset only; the others are still cleaned and
// reported. Run fails as a whole only when every dataset is unusable.
func (s *Service) Run(ctx context.Context, in RawInput) (*RunResult, error) {
	fp := in.Fingerprint()

	s.mu.Lock()
	if cached, ok := s.cache[fp]; ok {
		s.current = cached
		s.mu.Unlock()
		s.logger.Info("pipeline run served from cache", zap.String("fingerprint", fp[:12]))
		return cached, nil
	}
	s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	started := time.Now()
	runID := uuid.New()
	report := quality.NewReport(runID)
	ctx, log := logger.WithRunID(ctx, s.logger, runID.String())

	res := &RunResult{
		RunID:       runID,
		Fingerprint: fp,
		StartedAt:   started.UTC(),
		Report:      report,
	}

	invRep := quality.NewDatasetReport("inventory")
	txRep := quality.NewDatasetReport("transactions")
	fbRep := quality.NewDatasetReport("feedback")
	report.Datasets = []*quality.DatasetReport{invRep, txRep, fbRep}

	rawInv := decodeDataset(in.Inventory, s.contracts.Inventory, invRep, log, ingest.DecodeInventory)
	rawTx := decodeDataset(in.Transactions, s.contracts.Transactions, txRep, log, ingest.DecodeTransactions)
	rawFb := decodeDataset(in.Feedback, s.contracts.Feedback, fbRep, log, ingest.DecodeFeedback)
	if rawInv == nil && rawTx == nil && rawFb == nil {
		return nil, shared.ErrAllDatasetsFailed
	}

	if rawInv != nil {
		invRep.Before = s.auditor.Audit(rawInv)
		recordMissing(invRep, rawInv, rawInv.CoercionFailures)
		res.Inventory = s.cleaner.CleanInventory(rawInv, invRep)
		invRep.After = s.auditor.Audit(res.Inventory)
	}
	if rawTx != nil {
		txRep.Before = s.auditor.Audit(rawTx)
		recordMissing(txRep, rawTx, rawTx.CoercionFailures)
		res.Transactions = s.cleaner.CleanTransactions(rawTx, txRep)
		txRep.After = s.auditor.Audit(res.Transactions)
	}
	if rawFb != nil {
		fbRep.Before = s.auditor.Audit(rawFb)
		recordMissing(fbRep, rawFb, rawFb.CoercionFailures)
		res.Feedback = s.cleaner.CleanFeedback(rawFb, fbRep)
		fbRep.After = s.auditor.Audit(res.Feedback)
	}

	if res.Transactions != nil && res.Inventory != nil {
		res.Reconcile = s.cleaner.Reconcile(res.Transactions, res.Inventory, txRep)
	}
	if res.Transactions != nil {
		inv := res.Inventory
		if inv == nil {
			inv = &dataset.Inventory{}
		}
		fb := res.Feedback
		if fb == nil {
			fb = &dataset.Feedback{}
		}
		res.Rows = analytics.Enrich(res.Transactions, inv, fb)
	}

	res.Duration = time.Since(started)
	logger.L(ctx).Info("pipeline run completed",
		zap.Duration("duration", res.Duration),
		zap.Float64("health_before", report.AggregateBefore()),
		zap.Float64("health_after", report.AggregateAfter()),
		zap.Int("phantom_transactions", res.Reconcile.Phantom))

	s.mu.Lock()
	s.cache[fp] = res
	s.current = res
	s.mu.Unlock()
	return res, nil
}

// Current returns the last completed run.
func (s *Service) Current() (*RunResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return nil, shared.ErrNoPipelineRun
	}
	return s.current, nil
}

// Query runs the analytical engine over the last completed run with the
// given filter. Cleaning is not recomputed; only the selection and the
// analyses run.
func (s *Service) Query(ctx context.Context, spec analytics.FilterSpec) (*analytics.Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	run, err := s.Current()
	if err != nil {
		return nil, err
	}
	inv := run.Inventory
	if inv == nil {
		inv = &dataset.Inventory{}
	}
	result := s.engine.Run(run.Rows, inv, spec)
	return &result, nil
}

// Report returns the cleaning report of the last completed run.
func (s *Service) Report() (*quality.Report, error) {
	run, err := s.Current()
	if err != nil {
		return nil, err
	}
	return run.Report, nil
}

// decodeDataset parses and decodes one raw file, converting structural
// failures into a failed dataset report instead of an error.
func decodeDataset[T quality.Table](raw []byte, contract ingest.Contract, rep *quality.DatasetReport, log *zap.Logger, decode func([]*ingest.Row, ingest.Contract) T) T {
	var zero T
	fail := func(err error) T {
		rep.Failed = true
		rep.FailureReason = err.Error()
		var schemaErr *shared.SchemaError
		if errors.As(err, &schemaErr) {
			log.Warn("dataset failed schema validation",
				zap.String("dataset", rep.Dataset),
				zap.Strings("missing_columns", schemaErr.MissingColumns))
		} else {
			log.Warn("dataset rejected", zap.String("dataset", rep.Dataset), zap.Error(err))
		}
		return zero
	}

	if len(raw) == 0 {
		rep.Failed = true
		rep.FailureReason = "no input file provided"
		return zero
	}
	parser, err := ingest.ParseBytes(raw)
	if err != nil {
		return fail(err)
	}
	if err := parser.ParseHeader(); err != nil {
		return fail(err)
	}
	if err := contract.Validate(parser); err != nil {
		return fail(err)
	}
	rows, err := parser.ReadAllRows()
	if err != nil {
		return fail(err)
	}
	if len(rows) == 0 {
		return fail(ingest.ErrNoDataRows)
	}
	return decode(rows, contract)
}

// recordMissing copies the raw missing-cell counts into the report so the
// before/after comparison can attribute repairs per field.
func recordMissing(rep *quality.DatasetReport, t quality.Table, coercions map[string]int) {
	for field, n := range t.MissingByColumn() {
		if n > 0 {
			rep.Field(field).Missing = n
		}
	}
	for field, n := range coercions {
		if n > 0 {
			rep.Action("recovered %d unparseable %s cells as missing", n, field)
		}
	}
}
