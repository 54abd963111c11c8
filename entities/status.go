package entities

import (
	"encoding/json"
	"fmt"
)

// ZoneStatus is the agronomic condition of a management zone.
type ZoneStatus string

const (
	StatusOptimal  ZoneStatus = "optimal"
	StatusWarning  ZoneStatus = "warning"
	StatusCritical ZoneStatus = "critical"
)

func (s ZoneStatus) Valid() bool {
	switch s {
	case StatusOptimal, StatusWarning, StatusCritical:
		return true
	}
	return false
}

func (s ZoneStatus) String() string { return string(s) }

func (s *ZoneStatus) UnmarshalJSON(b []byte) error {
	var raw string
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	v := ZoneStatus(raw)
	if !v.Valid() {
		return fmt.Errorf("invalid zone status %q", raw)
	}
	*s = v
	return nil
}

// Priority labels both zone recommendations and the field-wide level.
type Priority string

const (
	PriorityLow      Priority = "low"
	PriorityMedium   Priority = "medium"
	PriorityHigh     Priority = "high"
	PriorityCritical Priority = "critical"
)

func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityCritical:
		return true
	}
	return false
}

func (p Priority) String() string { return string(p) }

// Urgent reports whether the label counts as a high-priority action.
func (p Priority) Urgent() bool { return p == PriorityHigh || p == PriorityCritical }

func (p *Priority) UnmarshalJSON(b []byte) error {
	var raw string
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	v := Priority(raw)
	if !v.Valid() {
		return fmt.Errorf("invalid priority %q", raw)
	}
	*p = v
	return nil
}
