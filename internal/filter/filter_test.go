package filter

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/franops/studiodash/internal/parser"
)

func date(s string) *time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return &t
}

func TestParseMonth(t *testing.T) {
	start, end, err := ParseMonth("2026-02")
	require.NoError(t, err)
	assert.Equal(t, "2026-02-01", start.Format("2006-01-02"))
	assert.Equal(t, "2026-02-28", end.Format("2006-01-02"))

	_, _, err = ParseMonth("Feb 2026")
	assert.Error(t, err)
}

func TestApplyMonthFilter(t *testing.T) {
	ds := &parser.Dataset{
		Appointments: []parser.Appointment{
			{Date: date("2026-07-10"), Practitioner: "Amy Jones"},
			{Date: date("2026-08-01"), Practitioner: "Amy Jones"},
			{Date: nil, Practitioner: "Amy Jones"},
		},
	}

	rec := Apply(ds, Spec{Month: "2026-07"})
	require.Len(t, rec.Appointments, 1)
	assert.Equal(t, "2026-07-10", rec.Appointments[0].Date.Format("2006-01-02"))

	// "all" and empty month keep everything with the undated row included.
	rec = Apply(ds, Spec{Month: MonthAll})
	assert.Len(t, rec.Appointments, 3)
	rec = Apply(ds, Spec{})
	assert.Len(t, rec.Appointments, 3)
}

func TestApplyDimensionFilters(t *testing.T) {
	ds := &parser.Dataset{
		Appointments: []parser.Appointment{
			{Date: date("2026-07-10"), Location: "Downtown", Practitioner: "Amy Jones", Service: "Deep Tissue 60"},
			{Date: date("2026-07-11"), Location: "Uptown", Practitioner: "Ben Smith", Service: "Intro Offer"},
		},
	}

	rec := Apply(ds, Spec{Location: "downtown"})
	require.Len(t, rec.Appointments, 1)
	assert.Equal(t, "Amy Jones", rec.Appointments[0].Practitioner)

	rec = Apply(ds, Spec{Practitioner: "  ben smith "})
	require.Len(t, rec.Appointments, 1)
	assert.Equal(t, "Uptown", rec.Appointments[0].Location)

	rec = Apply(ds, Spec{Service: "Intro Offer", Location: "Downtown"})
	assert.Empty(t, rec.Appointments)
}

func TestApplyDateRangeIntersectsMonth(t *testing.T) {
	ds := &parser.Dataset{
		Appointments: []parser.Appointment{
			{Date: date("2026-07-05")},
			{Date: date("2026-07-20")},
			{Date: date("2026-08-02")},
		},
	}

	rec := Apply(ds, Spec{Month: "2026-07", StartDate: date("2026-07-10")})
	require.Len(t, rec.Appointments, 1)
	assert.Equal(t, "2026-07-20", rec.Appointments[0].Date.Format("2006-01-02"))
}

func TestApplyUndatedPolicy(t *testing.T) {
	ds := &parser.Dataset{
		Memberships: []parser.Membership{
			{PurchaseID: "P-1", BoughtDate: date("2026-07-01")},
			{PurchaseID: "P-2", BoughtDate: nil},
		},
		Cancellations: []parser.Cancellation{
			{CustomerEmail: "a@x.com", CancelledAt: nil},
		},
		Leads: []parser.Lead{
			{Email: "dated@x.com", JoinDate: date("2026-07-03")},
			{Email: "legacy@x.com"},
		},
		ConvertedLeads: []parser.Lead{
			{Email: "conv@x.com", ConvertedDate: nil},
		},
	}

	rec := Apply(ds, Spec{Month: "2026-07"})

	// Undated memberships, cancellations, and converted leads drop; undated
	// basic leads are kept as legacy contacts.
	require.Len(t, rec.Memberships, 1)
	assert.Equal(t, "P-1", rec.Memberships[0].PurchaseID)
	assert.Empty(t, rec.Cancellations)
	assert.Empty(t, rec.ConvertedLeads)
	require.Len(t, rec.Leads, 2)
}

func TestApplyTimeTrackingRestrictedToActiveStaff(t *testing.T) {
	ds := &parser.Dataset{
		Appointments: []parser.Appointment{
			{Date: date("2026-07-10"), Practitioner: "Amy Jones", DurationHours: 2},
		},
		TimeTracking: []parser.TimeEntry{
			{Employee: "amy jones", ClockedInAt: date("2026-07-10"), DurationHours: 4},
			{Employee: "Ben Smith", ClockedInAt: date("2026-07-10"), DurationHours: 8},
		},
	}

	rec := Apply(ds, Spec{Month: "2026-07"})

	// Ben has no appointments in the slice, so his clocked hours are out.
	require.Len(t, rec.TimeTracking, 1)
	assert.Equal(t, "amy jones", rec.TimeTracking[0].Employee)

	require.Len(t, rec.Utilization, 1)
	u := rec.Utilization[0]
	assert.Equal(t, 2.0, u.AppointmentHrs)
	assert.Equal(t, 4.0, u.ClockedHrs)
	assert.InDelta(t, 50.0, u.UtilizationRate, 0.001)
}

func TestApplyUtilizationZeroClockedHours(t *testing.T) {
	ds := &parser.Dataset{
		Appointments: []parser.Appointment{
			{Date: date("2026-07-10"), Practitioner: "Amy Jones", DurationHours: 2},
		},
		TimeTracking: []parser.TimeEntry{
			{Employee: "Amy Jones", ClockedInAt: date("2026-07-10"), DurationHours: 0},
		},
	}

	rec := Apply(ds, Spec{})
	require.Len(t, rec.Utilization, 1)
	assert.Equal(t, 0.0, rec.Utilization[0].UtilizationRate)
}
