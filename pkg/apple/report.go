package apple

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"pickupwatch/pkg/config"
)

// Report is the rendered result of one availability check
type Report struct {
	Country   string              `json:"country"`
	Results   []ModelAvailability `json:"results"`
	All       string              `json:"all"`       // Available and unavailable blocks
	Available string              `json:"available"` // Available blocks only, empty when nothing is in stock
}

// HasAvailable reports whether any model can be picked up
func (r *Report) HasAvailable() bool {
	return r.Available != ""
}

// BuildReport renders availability blocks for every model
func BuildReport(countryName string, country *config.CountryConfig, results []ModelAvailability) *Report {
	var all, available strings.Builder
	upper := strings.ToUpper(countryName)

	for _, res := range results {
		if res.Present {
			block := fmt.Sprintf("[AVAILABLE IN %s STORES]\n%s\nSTORES:\n%s.\n\n",
				upper, res.Model.Name, storeLines(country, res))
			available.WriteString(block)
			all.WriteString(block)
			continue
		}
		fmt.Fprintf(&all, "[UNAVAILABLE IN %s STORES]\n%s\n\n", upper, res.Model.Name)
	}

	return &Report{
		Country:   countryName,
		Results:   results,
		All:       strings.TrimRight(all.String(), "\n"),
		Available: strings.TrimRight(available.String(), "\n"),
	}
}

func storeLines(country *config.CountryConfig, res ModelAvailability) string {
	lines := make([]string, 0, len(res.Stores))
	for _, store := range res.Stores {
		location := store.City
		if store.State != "" {
			location += ", " + store.State
		}
		lines = append(lines, fmt.Sprintf("%s (%s): %s", location, store.Name, Price(country, res.Model.Price, store.State)))
	}
	return strings.Join(lines, "\n")
}

// Price adds the sales tax of state, when known, and rounds to cents
func Price(country *config.CountryConfig, base float64, state string) string {
	tax, ok := taxPercent(country, state)
	if !ok {
		return formatAmount(base)
	}
	return formatAmount(math.Round((base+base*tax/100)*100) / 100)
}

// taxPercent finds the tax of the first configured postal code in state
func taxPercent(country *config.CountryConfig, state string) (float64, bool) {
	if state == "" || country == nil {
		return 0, false
	}
	for _, key := range config.SortedKeys(country.ZipCodes) {
		zip := country.ZipCodes[key]
		if zip.State == state && zip.Tax != nil {
			return *zip.Tax, true
		}
	}
	return 0, false
}

func formatAmount(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
