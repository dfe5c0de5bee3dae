// Package filter implements the query layer between raw export data and the
// metrics functions. Apply produces a filtered view of a dataset; every report
// recomputes from a fresh Apply, nothing is cached across invocations.
package filter

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/jinzhu/now"

	"github.com/franops/studiodash/internal/parser"
)

// MonthAll disables month filtering.
const MonthAll = "all"

// Spec is a transient query object read from the CLI flags.
type Spec struct {
	Month        string // "all" or "YYYY-MM"
	StartDate    *time.Time
	EndDate      *time.Time
	Location     string
	Practitioner string
	Service      string
}

// Records is the filtered view every metrics function consumes.
type Records struct {
	Appointments   []parser.Appointment
	Memberships    []parser.Membership
	Cancellations  []parser.Cancellation
	Leads          []parser.Lead
	ConvertedLeads []parser.Lead
	TimeTracking   []parser.TimeEntry
	Commissions    []parser.CommissionEntry

	// Utilization is rebuilt on every Apply: appointment hours over clocked
	// hours per employee, for employees active in the filtered slice.
	Utilization []EmployeeUtilization
}

// EmployeeUtilization is the derived per-employee utilization index.
type EmployeeUtilization struct {
	Employee        string
	AppointmentHrs  float64
	ClockedHrs      float64
	UtilizationRate float64 // percent; 0 when no clocked hours
}

// ParseMonth validates a "YYYY-MM" month value and returns its calendar
// bounds.
func ParseMonth(month string) (start, end time.Time, err error) {
	t, err := time.Parse("2006-01", month)
	if err != nil {
		return start, end, fmt.Errorf("invalid month %q (want YYYY-MM): %w", month, err)
	}
	n := now.New(t)
	return n.BeginningOfMonth(), n.EndOfMonth(), nil
}

// window returns the effective [start, end] date bounds of the spec: the
// explicit range intersected with the month, when either is set.
func (s Spec) window() (*time.Time, *time.Time) {
	start, end := s.StartDate, s.EndDate

	if s.Month != "" && s.Month != MonthAll {
		if ms, me, err := ParseMonth(s.Month); err == nil {
			if start == nil || ms.After(*start) {
				start = &ms
			}
			if end == nil || me.Before(*end) {
				end = &me
			}
		}
	}

	return start, end
}

func inWindow(t *time.Time, start, end *time.Time) bool {
	if t == nil {
		return false
	}
	if start != nil && t.Before(*start) {
		return false
	}
	if end != nil && t.After(*end) {
		return false
	}
	return true
}

// matches reports whether a record value passes a filter value. Empty and
// "all" filters match everything.
func matches(filterVal, recordVal string) bool {
	if filterVal == "" || strings.EqualFold(filterVal, MonthAll) {
		return true
	}
	return strings.EqualFold(strings.TrimSpace(filterVal), strings.TrimSpace(recordVal))
}

// Apply filters every source of the dataset per its own rules and rebuilds
// the utilization index.
//
// Per-source date policy: appointments must match the month and date range;
// memberships filter by bought date, cancellations by cancellation date, and
// converted leads by conversion date; rows missing those dates are dropped.
// Basic leads filter by join date with first-purchase fallback, but undated
// leads are kept: they are legacy contacts, not bad rows.
func Apply(ds *parser.Dataset, spec Spec) *Records {
	start, end := spec.window()
	dateBounded := start != nil || end != nil

	out := &Records{}

	for _, a := range ds.Appointments {
		if spec.Month != "" && spec.Month != MonthAll {
			if a.Date == nil || a.Date.Format("2006-01") != spec.Month {
				continue
			}
		}
		if !matches(spec.Location, a.Location) ||
			!matches(spec.Practitioner, a.Practitioner) ||
			!matches(spec.Service, a.Service) {
			continue
		}
		if dateBounded && !inWindow(a.Date, start, end) {
			continue
		}
		out.Appointments = append(out.Appointments, a)
	}

	// Memberships have no appointment-level granularity, so location and
	// practitioner filters do not apply.
	for _, m := range ds.Memberships {
		if m.BoughtDate == nil {
			continue
		}
		if dateBounded && !inWindow(m.BoughtDate, start, end) {
			continue
		}
		out.Memberships = append(out.Memberships, m)
	}

	for _, c := range ds.Cancellations {
		if c.CancelledAt == nil {
			continue
		}
		if dateBounded && !inWindow(c.CancelledAt, start, end) {
			continue
		}
		out.Cancellations = append(out.Cancellations, c)
	}

	for _, l := range ds.Leads {
		d := l.JoinDate
		if d == nil {
			d = l.FirstPurchaseDate
		}
		if d != nil && dateBounded && !inWindow(d, start, end) {
			continue
		}
		out.Leads = append(out.Leads, l)
	}

	for _, l := range ds.ConvertedLeads {
		if l.ConvertedDate == nil {
			continue
		}
		if dateBounded && !inWindow(l.ConvertedDate, start, end) {
			continue
		}
		out.ConvertedLeads = append(out.ConvertedLeads, l)
	}

	// Time tracking only counts employees with at least one appointment in
	// the filtered slice, so idle-time cost never lands on staff who were
	// not working the selected period.
	activeStaff := make(map[string]bool)
	for _, a := range out.Appointments {
		activeStaff[strings.ToLower(strings.TrimSpace(a.Practitioner))] = true
	}

	for _, t := range ds.TimeTracking {
		if !activeStaff[strings.ToLower(strings.TrimSpace(t.Employee))] {
			continue
		}
		if !matches(spec.Practitioner, t.Employee) {
			continue
		}
		if dateBounded && !inWindow(t.ClockedInAt, start, end) {
			continue
		}
		out.TimeTracking = append(out.TimeTracking, t)
	}

	for _, c := range ds.Commissions {
		if !matches(spec.Practitioner, c.Employee) {
			continue
		}
		if dateBounded && !inWindow(c.Date, start, end) {
			continue
		}
		out.Commissions = append(out.Commissions, c)
	}

	out.Utilization = buildUtilization(out.Appointments, out.TimeTracking)

	return out
}

// buildUtilization computes appointment hours / clocked hours per employee.
func buildUtilization(appts []parser.Appointment, entries []parser.TimeEntry) []EmployeeUtilization {
	apptHours := make(map[string]float64)
	for _, a := range appts {
		apptHours[strings.ToLower(strings.TrimSpace(a.Practitioner))] += a.DurationHours
	}

	clockedHours := make(map[string]float64)
	names := make(map[string]string)
	for _, t := range entries {
		key := strings.ToLower(strings.TrimSpace(t.Employee))
		clockedHours[key] += t.DurationHours
		names[key] = strings.TrimSpace(t.Employee)
	}

	var result []EmployeeUtilization
	for key, clocked := range clockedHours {
		u := EmployeeUtilization{
			Employee:       names[key],
			AppointmentHrs: apptHours[key],
			ClockedHrs:     clocked,
		}
		if clocked > 0 {
			u.UtilizationRate = u.AppointmentHrs / clocked * 100
		}
		result = append(result, u)
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].UtilizationRate != result[j].UtilizationRate {
			return result[i].UtilizationRate > result[j].UtilizationRate
		}
		return result[i].Employee < result[j].Employee
	})

	return result
}
