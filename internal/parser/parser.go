package parser

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Dataset holds one session's worth of parsed export data. It is replaced
// wholesale when the operator loads a new export bundle.
type Dataset struct {
	Appointments   []Appointment
	Memberships    []Membership
	Cancellations  []Cancellation
	Leads          []Lead
	ConvertedLeads []Lead
	TimeTracking   []TimeEntry
	Commissions    []CommissionEntry
}

// SourceKind identifies which export a CSV file belongs to.
type SourceKind string

const (
	SourceAppointments   SourceKind = "appointments"
	SourceMemberships    SourceKind = "memberships"
	SourceCancellations  SourceKind = "cancellations"
	SourceLeads          SourceKind = "leads"
	SourceConvertedLeads SourceKind = "converted_leads"
	SourceTimeTracking   SourceKind = "time_tracking"
	SourceCommissions    SourceKind = "commissions"
)

// DetectSource maps an export filename to its source kind. Matching is by
// substring so "Memberships (Jan 2026).csv" still routes correctly. The more
// specific names are checked first: a cancellations export usually contains
// "membership" in its name too.
func DetectSource(filename string) (SourceKind, bool) {
	name := strings.ToLower(filepath.Base(filename))
	switch {
	case strings.Contains(name, "cancel"):
		return SourceCancellations, true
	case strings.Contains(name, "converted"):
		return SourceConvertedLeads, true
	case strings.Contains(name, "appointment"):
		return SourceAppointments, true
	case strings.Contains(name, "membership"):
		return SourceMemberships, true
	case strings.Contains(name, "lead") || strings.Contains(name, "contact"):
		return SourceLeads, true
	case strings.Contains(name, "time") || strings.Contains(name, "attendance"):
		return SourceTimeTracking, true
	case strings.Contains(name, "commission") || strings.Contains(name, "payroll"):
		return SourceCommissions, true
	}
	return "", false
}

// ValidationError represents a structural parsing problem with row context:
// an empty file, a blank header, a row the CSV reader cannot decode.
// Value-level problems (bad currency, bad date) never raise one: those
// degrade to zero/nil per the leniency policy.
type ValidationError struct {
	Row    int
	Column string
	Value  string
	Err    error
}

func (e *ValidationError) Error() string {
	if e.Column == "" {
		return fmt.Sprintf("row %d: %v", e.Row, e.Err)
	}
	return fmt.Sprintf("row %d, column %s: failed to parse '%s': %v",
		e.Row, e.Column, e.Value, e.Err)
}

func (e *ValidationError) Unwrap() error { return e.Err }
