// Package worker holds the background jobs run by cmd/worker.
package worker

import (
	"context"
	"time"

	"transdoc/internal/domain/carrier"
	"transdoc/pkg/logger"
)

// ValidityObserver receives every completed validity report.
type ValidityObserver interface {
	ObserveValidity(report *carrier.ValidityReport, at time.Time)
}

// ExpiryWatcher periodically classifies all destination licenses and reports
// the expired and expiring ones.
type ExpiryWatcher struct {
	carriers carrier.Repository
	licenses carrier.LicenseRepository
	interval time.Duration
	observer ValidityObserver
	now      func() time.Time
}

// NewExpiryWatcher creates a watcher that checks every interval.
func NewExpiryWatcher(carriers carrier.Repository, licenses carrier.LicenseRepository, interval time.Duration) *ExpiryWatcher {
	return &ExpiryWatcher{
		carriers: carriers,
		licenses: licenses,
		interval: interval,
		now:      time.Now,
	}
}

// WithObserver sets the report observer.
func (w *ExpiryWatcher) WithObserver(o ValidityObserver) *ExpiryWatcher {
	w.observer = o
	return w
}

// WithClock overrides the time source.
func (w *ExpiryWatcher) WithClock(now func() time.Time) *ExpiryWatcher {
	w.now = now
	return w
}

// Check runs a single pass.
func (w *ExpiryWatcher) Check(ctx context.Context) (*carrier.ValidityReport, error) {
	at := w.now().UTC()
	report, err := carrier.BuildValidityReport(ctx, w.carriers, w.licenses, at)
	if err != nil {
		return nil, err
	}

	for _, s := range report.Expired {
		logger.Warn(ctx, "license expired", licenseFields(s)...)
	}
	for _, s := range report.ExpiringSoon {
		logger.Info(ctx, "license expiring soon", licenseFields(s)...)
	}
	logger.Info(ctx, "license validity check completed",
		"total", len(report.All),
		"expired", len(report.Expired),
		"expiring_soon", len(report.ExpiringSoon),
	)

	if w.observer != nil {
		w.observer.ObserveValidity(report, at)
	}
	return report, nil
}

// Run checks immediately and then on every tick until ctx is cancelled.
func (w *ExpiryWatcher) Run(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.runOnce(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.runOnce(ctx)
		}
	}
}

func (w *ExpiryWatcher) runOnce(ctx context.Context) {
	if _, err := w.Check(ctx); err != nil && ctx.Err() == nil {
		logger.Error(ctx, "license validity check failed", "error", err)
	}
}

func licenseFields(s carrier.LicenseStatus) []any {
	fields := []any{
		"carrier_id", s.CarrierID,
		"carrier", s.Carrier.Name,
		"destination", s.DestinationCountry,
		"license", s.Code,
	}
	if s.ExpiresAt != nil {
		fields = append(fields, "expires_at", s.ExpiresAt.Format("2006-01-02"))
	}
	if s.DaysRemaining != nil {
		fields = append(fields, "days_remaining", *s.DaysRemaining)
	}
	return fields
}
