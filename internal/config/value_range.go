// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"fmt"
	"math"
	"strconv"
)

// Number is the set of types a ValueRange can hold.
type Number interface {
	~int | ~float64
}

// ValueRange is a generation parameter with inclusive bounds and a step used
// by Increment and Decrement. In TOML it is written as
//
//	temperature = { value = 1.0, min = 0.0, max = 2.0, increment_step = 0.1 }
//
// with step accepted for increment_step. A bare number sets only the value
// and keeps the default bounds.
type ValueRange[T Number] struct {
	Value T
	Min   T
	Max   T
	Step  T
}

// Range builds a ValueRange.
func Range[T Number](value, min, max, step T) ValueRange[T] {
	return ValueRange[T]{Value: value, Min: min, Max: max, Step: step}
}

// Increment raises the value by one step, clamped to Max.
func (r *ValueRange[T]) Increment() {
	r.Value = r.clamp(round(r.Value + r.Step))
}

// Decrement lowers the value by one step, clamped to Min.
func (r *ValueRange[T]) Decrement() {
	r.Value = r.clamp(round(r.Value - r.Step))
}

func (r *ValueRange[T]) clamp(v T) T {
	if v > r.Max {
		return r.Max
	}
	if v < r.Min {
		return r.Min
	}
	return v
}

// round trims float noise from repeated stepping. Integers pass through.
func round[T Number](v T) T {
	return T(math.Round(float64(v)*1e6) / 1e6)
}

// String formats the value for display.
func (r ValueRange[T]) String() string {
	switch v := any(r.Value).(type) {
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return fmt.Sprint(r.Value)
	}
}

// validate reports the first inconsistency in the range.
func (r ValueRange[T]) validate() string {
	switch {
	case r.Min > r.Max:
		return fmt.Sprintf("min %v is greater than max %v", r.Min, r.Max)
	case r.Step <= 0:
		return fmt.Sprintf("increment_step must be positive, got %v", r.Step)
	case r.Value < r.Min || r.Value > r.Max:
		return fmt.Sprintf("value %v is outside [%v, %v]", r.Value, r.Min, r.Max)
	}
	return ""
}

// UnmarshalTOML implements toml.Unmarshaler.
func (r *ValueRange[T]) UnmarshalTOML(data any) error {
	if n, ok := data.(map[string]any); ok {
		for key, raw := range n {
			v, err := toNumber[T](raw)
			if err != nil {
				return fmt.Errorf("%s: %w", key, err)
			}
			switch key {
			case "value":
				r.Value = v
			case "min":
				r.Min = v
			case "max":
				r.Max = v
			case "increment_step", "step":
				r.Step = v
			default:
				return fmt.Errorf("unknown range field %q", key)
			}
		}
		return nil
	}

	v, err := toNumber[T](data)
	if err != nil {
		return err
	}
	r.Value = v
	return nil
}

func toNumber[T Number](raw any) (T, error) {
	var zero T
	switch n := raw.(type) {
	case int64:
		return T(n), nil
	case float64:
		if _, isInt := any(zero).(int); isInt && n != math.Trunc(n) {
			return zero, fmt.Errorf("expected an integer, got %v", n)
		}
		return T(n), nil
	default:
		return zero, fmt.Errorf("expected a number, got %T", raw)
	}
}
