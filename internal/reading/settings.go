package reading

import (
	"context"
	"fmt"
)

// Typed settings mutation. Each setter changes exactly one field and
// persists, mirroring the one-field-per-form-change flow of the UI.
// There is deliberately no cross-field validation: an inverted range
// inverts the scale, as documented for Scale100.

type Metric string

const (
	MetricWPM    Metric = "wpm"
	MetricComp   Metric = "comp"
	MetricLexile Metric = "lexile"
	MetricLix    Metric = "lix"
)

type Bound int

const (
	BoundMin Bound = 0
	BoundMax Bound = 1
)

type Component string

const (
	ComponentWPM   Component = "wpm"
	ComponentComp  Component = "comp"
	ComponentLevel Component = "level"
)

type TargetField string

const (
	TargetWPM  TargetField = "wpm"
	TargetComp TargetField = "comp"
)

// SetRangeBound sets one bound of one metric's rescale range.
func (s *Store) SetRangeBound(ctx context.Context, metric Metric, bound Bound, v float64) error {
	if bound != BoundMin && bound != BoundMax {
		return fmt.Errorf("unknown bound: %d", bound)
	}
	var r *Range
	switch metric {
	case MetricWPM:
		r = &s.snap.Settings.Ranges.WPM
	case MetricComp:
		r = &s.snap.Settings.Ranges.Comp
	case MetricLexile:
		r = &s.snap.Settings.Ranges.Lexile
	case MetricLix:
		r = &s.snap.Settings.Ranges.Lix
	default:
		return fmt.Errorf("unknown metric: %s", metric)
	}
	r[bound] = v
	s.persist(ctx)
	return nil
}

// SetWeight sets one composite component's weight.
func (s *Store) SetWeight(ctx context.Context, c Component, v float64) error {
	switch c {
	case ComponentWPM:
		s.snap.Settings.Weights.WPM = v
	case ComponentComp:
		s.snap.Settings.Weights.Comp = v
	case ComponentLevel:
		s.snap.Settings.Weights.Level = v
	default:
		return fmt.Errorf("unknown component: %s", c)
	}
	s.persist(ctx)
	return nil
}

// SetTarget sets one field of one grade's target, creating the grade
// entry when it does not exist yet.
func (s *Store) SetTarget(ctx context.Context, grade int, field TargetField, v float64) error {
	if s.snap.Settings.Targets == nil {
		s.snap.Settings.Targets = Targets{}
	}
	t := s.snap.Settings.Targets[grade]
	switch field {
	case TargetWPM:
		t.WPM = v
	case TargetComp:
		t.Comp = v
	default:
		return fmt.Errorf("unknown target field: %s", field)
	}
	s.snap.Settings.Targets[grade] = t
	s.persist(ctx)
	return nil
}
