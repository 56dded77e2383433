package app

import (
	"context"

	"github.com/bft-labs/pwmguard/internal/domain"
	"github.com/bft-labs/pwmguard/internal/ports"
)

// StatusReport is a snapshot of the panel and the stored settings.
type StatusReport struct {
	Reading domain.Reading
	// DriverErr is set when the driver could not be read; Reading is zero.
	DriverErr error
	Stored    domain.Frequency
	Autostart bool
	Rating    domain.Rating
	Suggested domain.Frequency
}

// Status collects a StatusReport. It never fails: driver errors are carried
// in the report.
func Status(ctx context.Context, openDriver ports.DriverFactory, store ports.ConfigStore, registrar ports.AutostartRegistrar) StatusReport {
	report := StatusReport{
		Stored:    store.Load(ctx).LastFrequency,
		Autostart: registrar.IsEnabled(ctx),
	}
	reading, err := readDriver(ctx, openDriver)
	if err != nil {
		report.DriverErr = err
		report.Suggested = domain.SmartFrequency(0)
		return report
	}
	report.Reading = reading
	report.Rating = domain.Rate(reading.Current)
	report.Suggested = domain.SmartFrequency(reading.BaseClock)
	return report
}

// Suggest reads the base clock and returns the recommended frequency.
func Suggest(ctx context.Context, openDriver ports.DriverFactory) (domain.Reading, domain.Frequency, error) {
	reading, err := readDriver(ctx, openDriver)
	if err != nil {
		return domain.Reading{}, 0, err
	}
	return reading, domain.SmartFrequency(reading.BaseClock), nil
}

func readDriver(ctx context.Context, openDriver ports.DriverFactory) (reading domain.Reading, err error) {
	err = guarded(func() error {
		drv, err := openDriver(ctx)
		if err != nil {
			return err
		}
		reading, err = drv.Read(ctx)
		return err
	})
	return reading, err
}
