package analysis

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Metric is a float measurement that may be not-applicable. Degenerate
// segments (zero duration, zero spoken time) report not-applicable rather
// than zero, so downstream consumers cannot fold them into averages by
// accident. A not-applicable Metric serializes to JSON null.
type Metric struct {
	Value float64
	Valid bool
}

// Applicable wraps a computed value.
func Applicable(v float64) Metric {
	return Metric{Value: v, Valid: true}
}

// NotApplicable returns the tagged not-applicable state.
func NotApplicable() Metric {
	return Metric{}
}

// Below reports whether the metric is applicable and strictly below limit.
// This is the shared threshold primitive for segment and session rules.
func (m Metric) Below(limit float64) bool {
	return m.Valid && m.Value < limit
}

// Above reports whether the metric is applicable and strictly above limit.
func (m Metric) Above(limit float64) bool {
	return m.Valid && m.Value > limit
}

// MarshalJSON encodes a not-applicable metric as null.
func (m Metric) MarshalJSON() ([]byte, error) {
	if !m.Valid {
		return []byte("null"), nil
	}
	b, err := json.Marshal(m.Value)
	if err != nil {
		return nil, fmt.Errorf("marshal metric: %w", err)
	}
	return b, nil
}

// UnmarshalJSON decodes null back to the not-applicable state.
func (m *Metric) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*m = Metric{}
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("unmarshal metric: %w", err)
	}
	*m = Metric{Value: v, Valid: true}
	return nil
}
