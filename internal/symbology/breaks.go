// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Sergei Gurin

// Package symbology recomputes the class break values that drive the map
// renderer's color ramp from the post-sync attribute distribution.
package symbology

import (
	"errors"
	"fmt"
	"sort"

	"github.com/montanaflynn/stats"

	"github.com/sgurin/geosync/models"
)

// ErrInsufficientData means the attribute holds fewer distinct values than
// the configured class count, so a strictly increasing break sequence cannot
// exist. Callers skip the renderer update and record a warning instead of
// writing degenerate breaks.
var ErrInsufficientData = errors.New("not enough distinct values for classification")

// ComputeBreaks derives classes break values from the attribute values using
// the given method. The result is strictly increasing with exactly classes
// entries and ends at the attribute maximum.
func ComputeBreaks(values []float64, method models.ClassMethod, classes int) (models.ClassBreaks, error) {
	if !method.Valid() {
		return models.ClassBreaks{}, fmt.Errorf("unknown classification method %q", method)
	}
	if classes < 2 {
		return models.ClassBreaks{}, fmt.Errorf("class count must be at least 2, got %d", classes)
	}

	distinct := distinctSorted(values)
	if len(distinct) < classes {
		return models.ClassBreaks{}, fmt.Errorf("%w: %d distinct values for %d classes", ErrInsufficientData, len(distinct), classes)
	}

	var (
		breaks []float64
		err    error
	)
	switch method {
	case models.ClassMethodEqualInterval:
		breaks, err = equalIntervalBreaks(distinct, classes)
	case models.ClassMethodQuantile:
		breaks, err = quantileBreaks(distinct, classes)
	}
	if err != nil {
		return models.ClassBreaks{}, err
	}

	for i := 1; i < len(breaks); i++ {
		if breaks[i] <= breaks[i-1] {
			return models.ClassBreaks{}, fmt.Errorf("%w: %s breaks collapse at class %d", ErrInsufficientData, method, i+1)
		}
	}

	return models.ClassBreaks{Method: method, Values: breaks}, nil
}

func equalIntervalBreaks(distinct []float64, classes int) ([]float64, error) {
	min, err := stats.Min(distinct)
	if err != nil {
		return nil, fmt.Errorf("compute minimum: %w", err)
	}
	max, err := stats.Max(distinct)
	if err != nil {
		return nil, fmt.Errorf("compute maximum: %w", err)
	}

	width := (max - min) / float64(classes)
	breaks := make([]float64, classes)
	for i := 1; i < classes; i++ {
		breaks[i-1] = min + width*float64(i)
	}
	breaks[classes-1] = max // exact, never min+width*classes with float drift

	return breaks, nil
}

// quantileBreaks computes percentile breaks over the distinct values so that
// heavy value repetition cannot collapse adjacent classes.
func quantileBreaks(distinct []float64, classes int) ([]float64, error) {
	breaks := make([]float64, classes)
	for i := 1; i < classes; i++ {
		p, err := stats.Percentile(distinct, 100*float64(i)/float64(classes))
		if err != nil {
			return nil, fmt.Errorf("compute percentile %d/%d: %w", i, classes, err)
		}
		breaks[i-1] = p
	}

	max, err := stats.Max(distinct)
	if err != nil {
		return nil, fmt.Errorf("compute maximum: %w", err)
	}
	breaks[classes-1] = max

	return breaks, nil
}

func distinctSorted(values []float64) []float64 {
	seen := make(map[float64]struct{}, len(values))
	distinct := make([]float64, 0, len(values))
	for _, v := range values {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		distinct = append(distinct, v)
	}
	sort.Float64s(distinct)
	return distinct
}
