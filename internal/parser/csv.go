package parser

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
)

// CSVParser reads the studio's CSV exports into typed records. Value parsing
// is deliberately lenient: missing columns read as empty, bad numbers as zero,
// bad dates as nil. Only structural problems (unreadable file, no header row)
// return an error.
type CSVParser struct {
	TrimWhitespace bool
	SkipEmptyRows  bool
}

func NewCSVParser() *CSVParser {
	return &CSVParser{
		TrimWhitespace: true,
		SkipEmptyRows:  true,
	}
}

func (p *CSVParser) readAll(r io.Reader) ([][]string, map[string]int, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		var pe *csv.ParseError
		if errors.As(err, &pe) {
			return nil, nil, &ValidationError{Row: pe.Line, Err: pe.Err}
		}
		return nil, nil, &ValidationError{Err: err}
	}
	if len(records) == 0 {
		return nil, nil, &ValidationError{Err: errors.New("CSV file is empty")}
	}
	if isBlankRow(records[0]) {
		return nil, nil, &ValidationError{Row: 1, Err: errors.New("CSV header row is blank")}
	}

	return records[1:], buildColumnMap(records[0]), nil
}

// ParseAppointments reads an appointments export.
func (p *CSVParser) ParseAppointments(r io.Reader) ([]Appointment, error) {
	rows, colMap, err := p.readAll(r)
	if err != nil {
		return nil, err
	}

	appts := make([]Appointment, 0, len(rows))
	for _, record := range rows {
		if p.isEmptyRow(record) {
			continue
		}
		appts = append(appts, Appointment{
			Date:             ParseFlexibleDate(getField(record, colMap, "Date")),
			Location:         getField(record, colMap, "Location"),
			Practitioner:     getField(record, colMap, "Practitioner"),
			CustomerEmail:    NormalizeEmail(getField(record, colMap, "Customer Email")),
			CustomerName:     getField(record, colMap, "Customer Name"),
			Service:          getField(record, colMap, "Service"),
			Revenue:          ParseCurrency(getField(record, colMap, "Revenue")),
			TotalPayout:      ParseCurrency(getField(record, colMap, "Total Payout")),
			DurationHours:    ParseHours(getField(record, colMap, "Time (h)")),
			LateCancellation: ParseYesNo(getField(record, colMap, "Late Cancellation")),
		})
	}

	return appts, nil
}

// ParseMemberships reads a memberships export. Rows without a purchase ID get
// a synthetic one so the lifecycle pre-pass can still key on it.
func (p *CSVParser) ParseMemberships(r io.Reader) ([]Membership, error) {
	rows, colMap, err := p.readAll(r)
	if err != nil {
		return nil, err
	}

	memberships := make([]Membership, 0, len(rows))
	for _, record := range rows {
		if p.isEmptyRow(record) {
			continue
		}
		purchaseID := getField(record, colMap, "Purchase ID")
		if purchaseID == "" {
			purchaseID = uuid.NewString()
		}
		memberships = append(memberships, Membership{
			PurchaseID:     purchaseID,
			CustomerEmail:  NormalizeEmail(getField(record, colMap, "Customer Email")),
			Name:           getField(record, colMap, "Membership Name"),
			Type:           classifyMembershipType(getField(record, colMap, "Membership Type")),
			PaidAmount:     ParseCurrency(getField(record, colMap, "Paid Amount")),
			RefundedAmount: ParseCurrency(getField(record, colMap, "Refunded Amount")),
			BoughtDate:     ParseFlexibleDate(getField(record, colMap, "Bought Date/Time (GMT)")),
			ExpiryDate:     ParseFlexibleDate(getField(record, colMap, "Expiry Date")),
			Expired:        ParseYesNo(getField(record, colMap, "Expired")),
			Frozen:         ParseYesNo(getField(record, colMap, "Frozen")),
			SoldBy:         getField(record, colMap, "Sold By"),
		})
	}

	return memberships, nil
}

// ParseCancellations reads a membership cancellations export.
func (p *CSVParser) ParseCancellations(r io.Reader) ([]Cancellation, error) {
	rows, colMap, err := p.readAll(r)
	if err != nil {
		return nil, err
	}

	cancellations := make([]Cancellation, 0, len(rows))
	for _, record := range rows {
		if p.isEmptyRow(record) {
			continue
		}
		cancellations = append(cancellations, Cancellation{
			CustomerEmail: NormalizeEmail(getField(record, colMap, "Customer Email")),
			CancelledAt:   ParseFlexibleDate(getField(record, colMap, "Cancelled At")),
			Reason:        getField(record, colMap, "Reason"),
			HomeLocation:  getField(record, colMap, "Home Location"),
		})
	}

	return cancellations, nil
}

// ParseLeads reads either the basic leads export or the converted-leads
// export; both carry the same columns, the basic one just leaves the
// conversion fields blank.
func (p *CSVParser) ParseLeads(r io.Reader) ([]Lead, error) {
	rows, colMap, err := p.readAll(r)
	if err != nil {
		return nil, err
	}

	leads := make([]Lead, 0, len(rows))
	for _, record := range rows {
		if p.isEmptyRow(record) {
			continue
		}
		leads = append(leads, Lead{
			Email:             NormalizeEmail(getField(record, colMap, "Email")),
			FirstName:         getField(record, colMap, "First Name"),
			LastName:          getField(record, colMap, "Last Name"),
			Type:              strings.ToLower(getField(record, colMap, "Type")),
			LTV:               ParseCurrency(getField(record, colMap, "LTV")),
			JoinDate:          ParseFlexibleDate(getField(record, colMap, "Join Date")),
			FirstPurchaseDate: ParseFlexibleDate(getField(record, colMap, "First Purchase Date")),
			HomeLocation:      getField(record, colMap, "Home Location"),
			LeadSource:        getField(record, colMap, "Lead Source"),
			ConvertedTo:       getField(record, colMap, "Converted To"),
			ConvertedDate:     ParseFlexibleDate(getField(record, colMap, "Converted Date")),
		})
	}

	return leads, nil
}

// ParseTimeTracking reads a time tracking (attendance) export.
func (p *CSVParser) ParseTimeTracking(r io.Reader) ([]TimeEntry, error) {
	rows, colMap, err := p.readAll(r)
	if err != nil {
		return nil, err
	}

	entries := make([]TimeEntry, 0, len(rows))
	for _, record := range rows {
		if p.isEmptyRow(record) {
			continue
		}
		entries = append(entries, TimeEntry{
			Employee:      getField(record, colMap, "Employee"),
			ClockedInAt:   ParseFlexibleDate(getField(record, colMap, "Clocked In At")),
			DurationHours: ParseHours(getField(record, colMap, "Time (h)")),
		})
	}

	return entries, nil
}

// ParseCommissions reads a commissions export.
func (p *CSVParser) ParseCommissions(r io.Reader) ([]CommissionEntry, error) {
	rows, colMap, err := p.readAll(r)
	if err != nil {
		return nil, err
	}

	entries := make([]CommissionEntry, 0, len(rows))
	for _, record := range rows {
		if p.isEmptyRow(record) {
			continue
		}
		entries = append(entries, CommissionEntry{
			Employee:         getField(record, colMap, "Employee"),
			ItemType:         classifyCommissionItem(getField(record, colMap, "Item Type")),
			CommissionEarned: ParseCurrency(getField(record, colMap, "Commission Earned")),
			Date:             ParseFlexibleDate(getField(record, colMap, "Date")),
		})
	}

	return entries, nil
}

// ParseInto parses a single CSV stream into the right slice of the dataset.
func (p *CSVParser) ParseInto(ds *Dataset, kind SourceKind, r io.Reader) (int, error) {
	switch kind {
	case SourceAppointments:
		rows, err := p.ParseAppointments(r)
		ds.Appointments = append(ds.Appointments, rows...)
		return len(rows), err
	case SourceMemberships:
		rows, err := p.ParseMemberships(r)
		ds.Memberships = append(ds.Memberships, rows...)
		return len(rows), err
	case SourceCancellations:
		rows, err := p.ParseCancellations(r)
		ds.Cancellations = append(ds.Cancellations, rows...)
		return len(rows), err
	case SourceLeads:
		rows, err := p.ParseLeads(r)
		ds.Leads = append(ds.Leads, rows...)
		return len(rows), err
	case SourceConvertedLeads:
		rows, err := p.ParseLeads(r)
		ds.ConvertedLeads = append(ds.ConvertedLeads, rows...)
		return len(rows), err
	case SourceTimeTracking:
		rows, err := p.ParseTimeTracking(r)
		ds.TimeTracking = append(ds.TimeTracking, rows...)
		return len(rows), err
	case SourceCommissions:
		rows, err := p.ParseCommissions(r)
		ds.Commissions = append(ds.Commissions, rows...)
		return len(rows), err
	}
	return 0, fmt.Errorf("unknown source kind: %s", kind)
}

func classifyMembershipType(s string) MembershipType {
	s = strings.ToLower(s)
	switch {
	case strings.Contains(s, "subscription") || strings.Contains(s, "recurring"):
		return MembershipSubscription
	case strings.Contains(s, "package") || strings.Contains(s, "event"):
		return MembershipPackage
	}
	return MembershipOther
}

func classifyCommissionItem(s string) CommissionItemType {
	s = strings.ToLower(s)
	switch {
	case strings.Contains(s, "membership"):
		return CommissionMembership
	case strings.Contains(s, "product") || strings.Contains(s, "retail"):
		return CommissionProduct
	}
	return CommissionOther
}

// buildColumnMap creates a case-insensitive map of column name → index.
func buildColumnMap(headers []string) map[string]int {
	m := make(map[string]int)
	for i, header := range headers {
		normalized := strings.ToLower(strings.TrimSpace(header))
		m[normalized] = i
	}
	return m
}

// getField safely retrieves a field from a CSV row by column name. Missing
// columns read as empty strings.
func getField(record []string, colMap map[string]int, columnName string) string {
	idx, ok := colMap[strings.ToLower(columnName)]
	if !ok || idx >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[idx])
}

func (p *CSVParser) isEmptyRow(record []string) bool {
	if !p.SkipEmptyRows {
		return false
	}
	return isBlankRow(record)
}

func isBlankRow(record []string) bool {
	for _, field := range record {
		if strings.TrimSpace(field) != "" {
			return false
		}
	}
	return true
}
