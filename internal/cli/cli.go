// Package cli implements the agegrader command: grade one race result from
// flags and print the result.
package cli

import (
	"flag"
	"fmt"
	"io"
)

// ParseFlags reads a Config from args (without the program name). It returns
// flag.ErrHelp when -help is given.
func ParseFlags(args []string, stderr io.Writer) (*Config, error) {
	fs := flag.NewFlagSet("agegrader", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() { ShowHelp(stderr) }

	cfg := &Config{}
	fs.IntVar(&cfg.Age, "age", 0, "Runner age in years")
	fs.StringVar(&cfg.Gender, "gender", "", "Runner gender (M or F)")
	fs.StringVar(&cfg.Distance, "distance", "", "Race distance (5, 5k, 10mi, half, marathon)")
	fs.StringVar(&cfg.Time, "time", "", "Finish time (H:MM:SS, MM:SS or seconds)")
	fs.StringVar(&cfg.TablePath, "table", "", "Reference table file (JSON or YAML)")
	fs.BoolVar(&cfg.JSON, "json", false, "Print the result as JSON")
	fs.BoolVar(&cfg.Verbose, "verbose", false, "Enable verbose logging")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() > 0 {
		return nil, fmt.Errorf("%w: unexpected arguments %v", ErrUsage, fs.Args())
	}

	switch {
	case cfg.Age <= 0:
		return nil, fmt.Errorf("%w: -age is required", ErrUsage)
	case cfg.Gender == "":
		return nil, fmt.Errorf("%w: -gender is required", ErrUsage)
	case cfg.Distance == "":
		return nil, fmt.Errorf("%w: -distance is required", ErrUsage)
	case cfg.Time == "":
		return nil, fmt.Errorf("%w: -time is required", ErrUsage)
	}
	return cfg, nil
}

// ShowHelp prints usage information for the agegrader command.
func ShowHelp(w io.Writer) {
	_, _ = io.WriteString(w, `Age Grader
==========

Calculates age-graded performance for a running race result.

Usage:
  agegrader -age N -gender M|F -distance D -time T [options]

Options:
  -age int
        Runner age in years
  -gender string
        Runner gender: m, male, men, f, female, w, women
  -distance string
        Race distance: km number, 5k, 10km, 10mi, 1500m, half, marathon
  -time string
        Finish time: H:MM:SS, MM:SS or seconds
  -table string
        Reference table file, JSON or YAML (default: bundled table)
  -json
        Print the result as JSON
  -verbose
        Enable verbose logging
  -help
        Show this help message

Examples:
  agegrader -age 15 -gender M -distance 5k -time 20:34
  agegrader -age 52 -gender F -distance half -time 1:41:07 -json
`)
}
