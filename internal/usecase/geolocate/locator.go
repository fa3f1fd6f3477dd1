// Package geolocate acquires the user's position for "near me" searches.
// Failure is reported as a status; it never fails the search that asked.
package geolocate

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/jobscout/internal/domain"
	"github.com/kailas-cloud/jobscout/internal/domain/geo"
	"github.com/kailas-cloud/jobscout/internal/metrics"
)

// DefaultTimeout bounds one acquisition.
const DefaultTimeout = 5 * time.Second

// Status is the outcome of an acquisition.
type Status string

// Acquisition statuses.
const (
	StatusAvailable   Status = "available"
	StatusDenied      Status = "denied"
	StatusTimeout     Status = "timeout"
	StatusUnsupported Status = "unsupported"
	// StatusFailed covers provider errors that are none of the above.
	StatusFailed Status = "failed"
)

// Result is a position and the status it was acquired with. Point is only
// meaningful when Status is StatusAvailable.
type Result struct {
	Status Status
	Point  geo.Point
}

// Available reports whether a position was acquired.
func (r Result) Available() bool { return r.Status == StatusAvailable }

// Locator runs a provider under a timeout.
type Locator struct {
	timeout time.Duration
	logger  *zap.Logger
}

// New creates a locator. A non-positive timeout uses DefaultTimeout.
func New(timeout time.Duration, logger *zap.Logger) *Locator {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Locator{timeout: timeout, logger: logger}
}

// Acquire asks p for a position. A nil provider is reported as unsupported.
// The call returns at the timeout even if the provider ignores its context.
func (l *Locator) Acquire(ctx context.Context, p Provider) Result {
	if p == nil {
		return Result{Status: StatusUnsupported}
	}

	ctx, cancel := context.WithTimeout(ctx, l.timeout)
	defer cancel()

	type outcome struct {
		point geo.Point
		err   error
	}
	done := make(chan outcome, 1)
	start := time.Now()
	go func() {
		pt, err := p.CurrentPosition(ctx)
		done <- outcome{point: pt, err: err}
	}()

	var res Result
	select {
	case o := <-done:
		res = l.classify(p, o.point, o.err)
	case <-ctx.Done():
		res = Result{Status: StatusTimeout}
	}

	metrics.GeolocationRequestDuration.WithLabelValues(p.Name()).Observe(time.Since(start).Seconds())
	metrics.GeolocationRequestsTotal.WithLabelValues(p.Name(), string(res.Status)).Inc()
	return res
}

func (l *Locator) classify(p Provider, pt geo.Point, err error) Result {
	switch {
	case err == nil:
		if !geo.ValidateCoordinates(pt.Latitude, pt.Longitude) {
			l.logger.Warn("Geolocation provider returned invalid coordinates",
				zap.String("provider", p.Name()),
				zap.Float64("lat", pt.Latitude), zap.Float64("lon", pt.Longitude))
			return Result{Status: StatusFailed}
		}
		return Result{Status: StatusAvailable, Point: pt}
	case errors.Is(err, domain.ErrGeolocationDenied):
		return Result{Status: StatusDenied}
	case errors.Is(err, domain.ErrGeolocationUnsupported):
		return Result{Status: StatusUnsupported}
	case errors.Is(err, context.DeadlineExceeded):
		return Result{Status: StatusTimeout}
	default:
		l.logger.Warn("Geolocation failed", zap.String("provider", p.Name()), zap.Error(err))
		return Result{Status: StatusFailed}
	}
}

// Fixed is a provider for coordinates the caller already supplied.
type Fixed struct {
	Point geo.Point
}

// Name implements Provider.
func (f Fixed) Name() string { return "fixed" }

// CurrentPosition implements Provider.
func (f Fixed) CurrentPosition(_ context.Context) (geo.Point, error) {
	if !geo.ValidateCoordinates(f.Point.Latitude, f.Point.Longitude) {
		return geo.Point{}, fmt.Errorf("invalid coordinates (%v, %v): %w",
			f.Point.Latitude, f.Point.Longitude, domain.ErrInvalidRequest)
	}
	return f.Point, nil
}
