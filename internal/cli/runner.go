package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	service "github.com/okian/agegrader/internal/app"
	"github.com/okian/agegrader/internal/domain/model"
	"github.com/okian/agegrader/internal/domain/units"
	"github.com/okian/agegrader/pkg/logger"
)

const percent = 100

// Run grades the result described by cfg and writes it to out. An age with no
// reference data prints a notice and returns ErrUnavailable.
func Run(ctx context.Context, cfg *Config, out io.Writer) error {
	distance, err := units.ParseDistance(cfg.Distance)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrUsage, err)
	}
	seconds, err := units.ParseDuration(cfg.Time)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrUsage, err)
	}

	log := logger.Get().Named("cli")
	svc := service.New(service.WithLogger(log), service.WithTablePath(cfg.TablePath))
	if err := svc.Start(ctx); err != nil {
		return err
	}
	defer svc.Stop()

	g, err := svc.Grade(ctx, service.Query{
		Age:        cfg.Age,
		Gender:     cfg.Gender,
		DistanceKM: distance,
		Seconds:    seconds,
	})
	if errors.Is(err, service.ErrInvalidQuery) {
		return fmt.Errorf("%w: %w", ErrUsage, err)
	}
	if err != nil {
		return err
	}

	if cfg.JSON {
		if err := writeJSON(out, g); err != nil {
			return err
		}
	} else {
		writeText(out, g)
	}
	if !g.Available {
		return ErrUnavailable
	}
	return nil
}

func writeText(out io.Writer, g model.Grade) {
	if !g.Available {
		_, _ = fmt.Fprintln(out, ErrUnavailable.Error())
		return
	}
	_, _ = fmt.Fprintf(out, "Age-graded performance: %.1f%%\n", *g.PerformanceFactor*percent)
	_, _ = fmt.Fprintf(out, "Age-graded finish time: %s\n", units.FormatDuration(*g.FinishTime))
	_, _ = fmt.Fprintf(out, "Age-graded pace:        %s per mile\n", units.FormatDuration(*g.SecondsPerMile))
}

func writeJSON(out io.Writer, g model.Grade) error {
	res := Result{
		Age:        g.Age,
		Gender:     g.Gender,
		DistanceKM: g.DistanceKM,
		Seconds:    g.Seconds,
		Available:  g.Available,
	}
	if g.Available {
		finish := units.FormatDuration(*g.FinishTime)
		pace := units.FormatDuration(*g.SecondsPerMile)
		res.PerformanceFactor = g.PerformanceFactor
		res.FinishTime = &finish
		res.PacePerMile = &pace
	}
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(res); err != nil {
		return fmt.Errorf("encode result: %w", err)
	}
	return nil
}
