package alerting

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/abelzeko/water-alert/internal/entities"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Notifier fans a danger event out to subscribers
type Notifier interface {
	Dispatch(ctx context.Context, location string, level float64, at time.Time) (DispatchReport, error)
}

// Pipeline turns a batch of manual readings into alert records and
// notifications. Batches are processed one at a time.
type Pipeline struct {
	evaluator *Evaluator
	log       AlertLog
	notifier  Notifier
	logger    *zap.Logger
	mu        sync.Mutex
}

// NewPipeline wires the evaluator, alert log and notifier together
func NewPipeline(evaluator *Evaluator, log AlertLog, notifier Notifier, logger *zap.Logger) *Pipeline {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Pipeline{
		evaluator: evaluator,
		log:       log,
		notifier:  notifier,
		logger:    logger,
	}
}

// SubmitBatch evaluates every location present in readings at time at.
//
// Locations are handled in name order. Each one gets an alert record
// appended to the log and, when in danger, exactly one dispatch. A failure
// for one location (unknown name, failed append) is reported as a
// *LocationError in the joined error and does not stop the others. The
// returned records are those appended successfully.
func (p *Pipeline) SubmitBatch(ctx context.Context, readings map[string]float64, at time.Time) ([]entities.AlertRecord, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	names := make([]string, 0, len(readings))
	for name := range readings {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		ni, nj := entities.NormalizeLocation(names[i]), entities.NormalizeLocation(names[j])
		if ni != nj {
			return ni < nj
		}
		return names[i] < names[j]
	})

	records := make([]entities.AlertRecord, 0, len(names))
	var errs []error

	for _, name := range names {
		level := readings[name]
		record, err := p.submitOne(ctx, name, level, at)
		if err != nil {
			errs = append(errs, &LocationError{Location: name, Err: err})
			continue
		}
		records = append(records, record)
	}

	p.logger.Info("Processed manual reading batch",
		zap.Int("submitted", len(names)),
		zap.Int("recorded", len(records)),
		zap.Int("failed", len(errs)),
	)
	return records, errors.Join(errs...)
}

func (p *Pipeline) submitOne(ctx context.Context, name string, level float64, at time.Time) (entities.AlertRecord, error) {
	loc, err := p.evaluator.Thresholds().Lookup(name)
	if err != nil {
		p.logger.Warn("Reading for unconfigured location", zap.String("location", name))
		return entities.AlertRecord{}, err
	}

	if err := entities.CheckLevel(level); err != nil {
		p.logger.Warn("Rejected manual reading", zap.String("location", loc.Name), zap.Error(err))
		return entities.AlertRecord{}, err
	}

	status, err := p.evaluator.Evaluate(loc.Name, level)
	if err != nil {
		return entities.AlertRecord{}, err
	}

	record := entities.AlertRecord{
		ID:            uuid.NewString(),
		Location:      loc.Name,
		Timestamp:     at,
		ObservedLevel: level,
		Status:        status,
	}

	appendErr := p.log.AppendAlert(ctx, record)
	if appendErr != nil {
		p.logger.Error("Failed to append alert record",
			zap.String("location", loc.Name),
			zap.Error(appendErr),
		)
	}

	if status == entities.StatusDanger {
		report, err := p.notifier.Dispatch(ctx, loc.Name, level, at)
		if err != nil {
			p.logger.Error("Failed to dispatch danger notifications",
				zap.String("location", loc.Name),
				zap.Error(err),
			)
		} else {
			p.logger.Info("Dispatched danger notifications",
				zap.String("location", loc.Name),
				zap.Float64("level", level),
				zap.Int("matched", report.Matched),
				zap.Int("sent", report.Sent),
				zap.Int("failed", report.Failed),
			)
		}
	}

	if appendErr != nil {
		if errors.Is(appendErr, entities.ErrPersistenceFailure) {
			return entities.AlertRecord{}, appendErr
		}
		return entities.AlertRecord{}, fmt.Errorf("%w: %v", entities.ErrPersistenceFailure, appendErr)
	}
	return record, nil
}
