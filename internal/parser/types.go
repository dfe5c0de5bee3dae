package parser

import (
	"time"

	"github.com/shopspring/decimal"
)

// MembershipType classifies how a membership bills.
type MembershipType string

const (
	MembershipSubscription MembershipType = "subscription"
	MembershipPackage      MembershipType = "package-events"
	MembershipOther        MembershipType = "other"
)

// CommissionItemType classifies what a commission was earned on.
type CommissionItemType string

const (
	CommissionMembership CommissionItemType = "membership"
	CommissionProduct    CommissionItemType = "product"
	CommissionOther      CommissionItemType = "other"
)

// Appointment represents a parsed row from the appointments export.
// Date carries the clock time of the appointment start; it is nil when the
// export row had no parseable date.
type Appointment struct {
	Date          *time.Time
	Location      string
	Practitioner  string
	CustomerEmail string // lowercased and trimmed
	CustomerName  string
	Service       string

	Revenue       decimal.Decimal
	TotalPayout   decimal.Decimal
	DurationHours float64

	LateCancellation bool
}

// Membership represents a parsed row from the memberships export.
type Membership struct {
	PurchaseID    string // synthetic UUID when the export left it blank
	CustomerEmail string
	Name          string
	Type          MembershipType

	PaidAmount     decimal.Decimal
	RefundedAmount decimal.Decimal

	BoughtDate *time.Time
	ExpiryDate *time.Time

	Expired bool
	Frozen  bool

	SoldBy string

	// Assigned by the lifecycle pre-pass (metrics.MarkLifecycle). Exactly one
	// membership per customer email is a new sale; the rest are renewals.
	IsNewSale bool
	IsRenewal bool
}

// Cancellation represents a parsed row from the membership cancellations export.
type Cancellation struct {
	CustomerEmail string
	CancelledAt   *time.Time
	Reason        string
	HomeLocation  string
}

// Lead represents a parsed row from either the basic leads export or the
// richer converted-leads export. Fields absent from the basic export stay
// zero-valued.
type Lead struct {
	Email     string
	FirstName string
	LastName  string
	Type      string // "lead" or "customer", lowercased

	LTV decimal.Decimal

	JoinDate          *time.Time
	FirstPurchaseDate *time.Time

	HomeLocation string
	LeadSource   string

	ConvertedTo   string
	ConvertedDate *time.Time
}

// TimeEntry represents a parsed row from the time tracking export.
type TimeEntry struct {
	Employee      string
	ClockedInAt   *time.Time
	DurationHours float64
}

// CommissionEntry represents a parsed row from the commissions export.
type CommissionEntry struct {
	Employee         string
	ItemType         CommissionItemType
	CommissionEarned decimal.Decimal
	Date             *time.Time
}
