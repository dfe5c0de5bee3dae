package config

// LTVTier is a preset of lifetime-value bands used by the segmentation
// report. Ranges holds the five band upper bounds for the LTV histogram and
// VIPMin is the threshold above which a customer counts as VIP.
type LTVTier struct {
	Name   string
	Ranges [5]float64
	VIPMin float64
}

var tiers = map[string]LTVTier{
	"standard": {
		Name:   "standard",
		Ranges: [5]float64{100, 250, 500, 1000, 2500},
		VIPMin: 1000,
	},
	"boutique": {
		Name:   "boutique",
		Ranges: [5]float64{200, 500, 1000, 2000, 5000},
		VIPMin: 2000,
	},
	"high-volume": {
		Name:   "high-volume",
		Ranges: [5]float64{50, 100, 250, 500, 1000},
		VIPMin: 500,
	},
}

// TierByName returns the named preset, falling back to standard for unknown
// names so a typo in the config never breaks segmentation.
func TierByName(name string) LTVTier {
	if tier, ok := tiers[name]; ok {
		return tier
	}
	return tiers["standard"]
}

// TierNames lists the available presets for the usage text.
func TierNames() []string {
	return []string{"standard", "boutique", "high-volume"}
}
