package parser

import (
	"strconv"
	"strings"
	"time"

	lru "github.com/hashicorp/golang-lru"
	"github.com/shopspring/decimal"
)

// dateCache memoizes date-string parses. The same timestamp string recurs
// across thousands of export rows, so hits dominate once a file is underway.
// Failed parses are cached too, as zero times.
var dateCache *lru.Cache

func init() {
	dateCache, _ = lru.New(8192)
}

// dateFormats covers every timestamp shape the studio exports have been seen
// to use. Order matters: the most common shapes come first.
var dateFormats = []string{
	"2006-01-02, 3:04 PM",
	"2006-01-02 3:04 PM",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05Z07:00",
	"2006-01-02T15:04:05",
	"2006-01-02",
	"1/2/2006 3:04 PM",
	"1/2/2006",
	"01/02/2006",
}

// ParseCurrency converts a currency-like export value ("$1,234.50", "€12",
// "(45.00)") to a decimal. Unparseable or empty input yields zero, never an
// error; the dashboards prefer a number over a complaint.
func ParseCurrency(s string) decimal.Decimal {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero
	}

	// Accounting notation: (45.00) means -45.00
	negative := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		negative = true
		s = strings.TrimSpace(s[1 : len(s)-1])
	}

	var b strings.Builder
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9', r == '.', r == '-':
			b.WriteRune(r)
		}
	}
	cleaned := b.String()
	if cleaned == "" {
		return decimal.Zero
	}

	val, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Zero
	}
	if negative {
		val = val.Neg()
	}
	return val
}

// ParseFlexibleDate parses the mixed date formats found in the exports.
// It returns nil for unparseable input; callers decide their own fallback
// (the filter layer drops undated memberships but keeps undated leads).
func ParseFlexibleDate(s string) *time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}

	if cached, ok := dateCache.Get(s); ok {
		t := cached.(time.Time)
		if t.IsZero() {
			return nil
		}
		return &t
	}

	for _, format := range dateFormats {
		if t, err := time.Parse(format, s); err == nil {
			dateCache.Add(s, t)
			return &t
		}
	}

	dateCache.Add(s, time.Time{})
	return nil
}

// ParseHours parses a fractional hours field like "1.5". Unparseable input
// yields zero.
func ParseHours(s string) float64 {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	if s == "" {
		return 0
	}
	val, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return val
}

// ParseYesNo handles the boolean-like export fields ("Yes", "TRUE", "1").
func ParseYesNo(s string) bool {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "YES", "TRUE", "Y", "1":
		return true
	}
	return false
}

// NormalizeEmail lowercases and trims an email. Every join in the metrics
// layer keys on the normalized form; skipping this silently breaks joins.
func NormalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// IsIntroductoryService reports whether a service name is an intro offer.
func IsIntroductoryService(name string) bool {
	return strings.Contains(strings.ToLower(name), "intro")
}

// FormatStaffName maps an email or raw name to "First L." form. The optional
// directory maps lowercased emails to full names; without a match the name is
// derived from the email local-part.
func FormatStaffName(raw string, directory map[string]string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}

	name := raw
	if strings.Contains(raw, "@") {
		if full, ok := directory[NormalizeEmail(raw)]; ok {
			name = full
		} else {
			name = nameFromLocalPart(strings.SplitN(raw, "@", 2)[0])
		}
	}

	parts := strings.Fields(name)
	if len(parts) == 0 {
		return ""
	}
	first := titleWord(parts[0])
	if len(parts) == 1 {
		return first
	}
	last := parts[len(parts)-1]
	return first + " " + strings.ToUpper(last[:1]) + "."
}

// nameFromLocalPart turns "amy.jones" or "amy_jones" into "amy jones".
func nameFromLocalPart(local string) string {
	for _, sep := range []string{".", "_", "-"} {
		local = strings.ReplaceAll(local, sep, " ")
	}
	return local
}

func titleWord(w string) string {
	if w == "" {
		return w
	}
	return strings.ToUpper(w[:1]) + strings.ToLower(w[1:])
}
