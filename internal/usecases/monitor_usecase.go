// Package usecases contains the application's business logic
package usecases

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/abelzeko/water-alert/internal/alerting"
	"github.com/abelzeko/water-alert/internal/config"
	"github.com/abelzeko/water-alert/internal/entities"
	"github.com/abelzeko/water-alert/internal/integration"
	"github.com/abelzeko/water-alert/internal/prediction"
	"github.com/abelzeko/water-alert/internal/repository"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// maxConcurrentFetches bounds parallel gauge page downloads
const maxConcurrentFetches = 4

// Deps are the collaborators of MonitorUseCase
type Deps struct {
	Readings    repository.ReadingRepository
	Alerts      repository.AlertRepository
	Subscribers repository.SubscriberRepository
	Thresholds  *entities.Thresholds
	Predictor   prediction.Predictor
	Sender      alerting.Sender

	// Ingestion sources; all optional
	Scraper     *integration.GaugeScraper
	Sources     []config.Source
	CSVPath     string
	CSVLocation string
	Simulator   *integration.SimulatedSource

	Window          time.Duration // prediction window, defaults to 7 days
	DeliveryTimeout time.Duration
	Logger          *zap.Logger
}

// LocationStatus is the current picture of one monitored location
type LocationStatus struct {
	Location   entities.Location
	Latest     entities.Reading
	HasReading bool
	Status     entities.Status
	Prediction entities.PredictionResult
	Series     entities.Series
}

// MonitorUseCase handles business logic related to water level monitoring
type MonitorUseCase struct {
	deps      Deps
	evaluator *alerting.Evaluator
	pipeline  *alerting.Pipeline
	logger    *zap.Logger
	now       func() time.Time
	refreshMu sync.Mutex
}

// NewMonitorUseCase creates a new monitor use case
func NewMonitorUseCase(deps Deps) *MonitorUseCase {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if deps.Window <= 0 {
		deps.Window = 7 * 24 * time.Hour
	}
	if deps.Predictor == nil {
		deps.Predictor = prediction.Exponential{}
	}

	evaluator := alerting.NewEvaluator(deps.Thresholds)
	dispatcher := alerting.NewDispatcher(deps.Subscribers, deps.Thresholds, deps.Sender, deps.DeliveryTimeout, deps.Logger.Named("dispatcher"))
	pipeline := alerting.NewPipeline(evaluator, deps.Alerts, dispatcher, deps.Logger.Named("pipeline"))

	return &MonitorUseCase{
		deps:      deps,
		evaluator: evaluator,
		pipeline:  pipeline,
		logger:    deps.Logger,
		now:       time.Now,
	}
}

// ModelName is the name of the configured trend model
func (uc *MonitorUseCase) ModelName() string {
	return uc.deps.Predictor.Name()
}

// DangerLevels returns the configured thresholds for display
func (uc *MonitorUseCase) DangerLevels() []entities.Location {
	return uc.deps.Thresholds.Locations()
}

// RefreshReadings pulls readings from every configured source and stores
// those newer than what is already stored. A failing source is logged and
// skipped; an error is returned only when every source failed.
func (uc *MonitorUseCase) RefreshReadings(ctx context.Context) error {
	uc.refreshMu.Lock()
	defer uc.refreshMu.Unlock()

	uc.logger.Info("Starting reading refresh")

	fetched, fetchErrs, attempted := uc.fetchAll(ctx)
	if attempted > 0 && len(fetchErrs) == attempted {
		return fmt.Errorf("all reading sources failed: %w", errors.Join(fetchErrs...))
	}

	stored := 0
	for _, batch := range groupByLocation(fetched) {
		n, err := uc.storeNewer(ctx, batch)
		if err != nil {
			uc.logger.Error("Failed to store readings",
				zap.String("location", batch[0].Location),
				zap.Error(err),
			)
			continue
		}
		stored += n
	}

	uc.logger.Info("Reading refresh finished",
		zap.Int("fetched", len(fetched)),
		zap.Int("stored", stored),
		zap.Int("failed_sources", len(fetchErrs)),
	)
	return nil
}

func (uc *MonitorUseCase) fetchAll(ctx context.Context) ([]entities.Reading, []error, int) {
	var (
		mu      sync.Mutex
		all     []entities.Reading
		errs    []error
		tried   int
		collect = func(readings []entities.Reading, err error, what string) {
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				uc.logger.Warn("Reading source failed", zap.String("source", what), zap.Error(err))
				errs = append(errs, fmt.Errorf("%s: %w", what, err))
				return
			}
			all = append(all, readings...)
		}
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentFetches)

	if uc.deps.Scraper != nil {
		for _, src := range uc.deps.Sources {
			tried++
			g.Go(func() error {
				readings, err := uc.deps.Scraper.FetchReadings(gctx, src.Location, src.URL)
				collect(readings, err, src.Location+" gauge")
				return nil
			})
		}
	}

	if uc.deps.CSVPath != "" {
		tried++
		g.Go(func() error {
			readings, err := integration.LoadReadingsCSV(uc.deps.CSVPath, uc.deps.CSVLocation)
			collect(readings, err, "csv "+uc.deps.CSVPath)
			return nil
		})
	}

	_ = g.Wait()

	if uc.deps.Simulator != nil {
		tried++
		var names []string
		for _, loc := range uc.deps.Thresholds.Locations() {
			names = append(names, loc.Name)
		}
		collect(uc.deps.Simulator.Next(names), nil, "simulator")
	}

	return all, errs, tried
}

// storeNewer appends the readings of one location that are newer than the
// stored latest reading
func (uc *MonitorUseCase) storeNewer(ctx context.Context, readings []entities.Reading) (int, error) {
	loc, err := uc.deps.Thresholds.Lookup(readings[0].Location)
	if err != nil {
		return 0, err
	}

	latest, ok, err := uc.deps.Readings.GetLatestReading(ctx, loc.Name)
	if err != nil {
		return 0, err
	}

	fresh := make([]entities.Reading, 0, len(readings))
	for _, r := range readings {
		if ok && !r.Timestamp.After(latest.Timestamp) {
			continue
		}
		r.Location = loc.Name
		fresh = append(fresh, r)
	}
	if len(fresh) == 0 {
		return 0, nil
	}
	if err := uc.deps.Readings.AppendReadings(ctx, fresh); err != nil {
		return 0, err
	}
	return len(fresh), nil
}

// ImportReadings stores readings for location, skipping those not newer
// than the stored series. It returns how many were stored. The caller's
// slice is left untouched.
func (uc *MonitorUseCase) ImportReadings(ctx context.Context, location string, readings []entities.Reading) (int, error) {
	if len(readings) == 0 {
		return 0, nil
	}
	owned := make([]entities.Reading, len(readings))
	for i, r := range readings {
		r.Location = location
		owned[i] = r
	}
	return uc.storeNewer(ctx, sortedByTime(owned))
}

// Predict fits the configured model to the readings of location inside the
// prediction window
func (uc *MonitorUseCase) Predict(ctx context.Context, location string) (entities.PredictionResult, entities.Series, error) {
	loc, err := uc.deps.Thresholds.Lookup(location)
	if err != nil {
		return entities.PredictionResult{}, nil, err
	}

	series, err := uc.deps.Readings.GetSeries(ctx, loc.Name, uc.now().Add(-uc.deps.Window))
	if err != nil {
		return entities.PredictionResult{}, nil, fmt.Errorf("failed to load series for %s: %w", loc.Name, err)
	}

	result := uc.deps.Predictor.Predict(series, loc.DangerLevel)
	uc.logger.Debug("Prediction computed",
		zap.String("location", loc.Name),
		zap.String("model", uc.deps.Predictor.Name()),
		zap.String("kind", result.Kind.String()),
		zap.Int("points", len(series)),
		zap.Error(result.Err()),
	)
	return result, series, nil
}

// LocationStatus reports the latest reading, its status and the prediction
// for location
func (uc *MonitorUseCase) LocationStatus(ctx context.Context, location string) (LocationStatus, error) {
	loc, err := uc.deps.Thresholds.Lookup(location)
	if err != nil {
		return LocationStatus{}, err
	}

	result, series, err := uc.Predict(ctx, loc.Name)
	if err != nil {
		return LocationStatus{}, err
	}

	st := LocationStatus{Location: loc, Prediction: result, Series: series}
	latest, ok, err := uc.deps.Readings.GetLatestReading(ctx, loc.Name)
	if err != nil {
		return LocationStatus{}, fmt.Errorf("failed to load latest reading for %s: %w", loc.Name, err)
	}
	if ok {
		st.Latest, st.HasReading = latest, true
		if st.Status, err = uc.evaluator.Evaluate(loc.Name, latest.Level); err != nil {
			return LocationStatus{}, err
		}
	}
	return st, nil
}

// Overview returns the status of every configured location
func (uc *MonitorUseCase) Overview(ctx context.Context) ([]LocationStatus, error) {
	var out []LocationStatus
	for _, loc := range uc.deps.Thresholds.Locations() {
		st, err := uc.LocationStatus(ctx, loc.Name)
		if err != nil {
			return nil, err
		}
		out = append(out, st)
	}
	return out, nil
}

// LastUpdateTime returns when the newest reading was observed
func (uc *MonitorUseCase) LastUpdateTime(ctx context.Context) (time.Time, error) {
	return uc.deps.Readings.GetLastUpdateTime(ctx)
}

// SubmitManualReadings runs a batch of manual readings through the alert
// pipeline, stamped with the current time
func (uc *MonitorUseCase) SubmitManualReadings(ctx context.Context, readings map[string]float64) ([]entities.AlertRecord, error) {
	uc.logger.Info("Submitting manual readings", zap.Int("locations", len(readings)))
	return uc.pipeline.SubmitBatch(ctx, readings, uc.now().UTC())
}

// Signup registers a subscriber for locations. Every location must be
// configured; names are stored as given.
func (uc *MonitorUseCase) Signup(ctx context.Context, name, contactAddress string, locations []string) (entities.Subscriber, error) {
	var locs []string
	for _, l := range locations {
		if strings.TrimSpace(l) == "" {
			continue
		}
		if _, err := uc.deps.Thresholds.Lookup(l); err != nil {
			return entities.Subscriber{}, err
		}
		locs = append(locs, l)
	}
	if strings.TrimSpace(name) == "" || strings.TrimSpace(contactAddress) == "" || len(locs) == 0 {
		return entities.Subscriber{}, ErrIncompleteSignup
	}
	return uc.deps.Subscribers.Add(ctx, name, contactAddress, locs)
}

// RecentAlerts returns the newest alert records, optionally for one location
func (uc *MonitorUseCase) RecentAlerts(ctx context.Context, location string, limit int) ([]entities.AlertRecord, error) {
	if location != "" {
		loc, err := uc.deps.Thresholds.Lookup(location)
		if err != nil {
			return nil, err
		}
		location = loc.Name
	}
	return uc.deps.Alerts.GetAlerts(ctx, location, limit)
}

// ErrIncompleteSignup is returned when a signup misses a field
var ErrIncompleteSignup = errors.New("please fill all fields")

func groupByLocation(readings []entities.Reading) [][]entities.Reading {
	index := make(map[string]int)
	var groups [][]entities.Reading
	for _, r := range readings {
		key := entities.NormalizeLocation(r.Location)
		i, ok := index[key]
		if !ok {
			i = len(groups)
			index[key] = i
			groups = append(groups, nil)
		}
		groups[i] = append(groups[i], r)
	}
	for i := range groups {
		groups[i] = sortedByTime(groups[i])
	}
	return groups
}

func sortedByTime(readings []entities.Reading) []entities.Reading {
	if entities.Series(readings).Ordered() {
		return readings
	}
	sort.SliceStable(readings, func(i, j int) bool {
		return readings[i].Timestamp.Before(readings[j].Timestamp)
	})
	return readings
}
