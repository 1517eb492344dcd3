package config

import (
	"fmt"
	"sort"
)

// CountryConfig describes one storefront and the models and postal codes offered for it
type CountryConfig struct {
	Index          string                 `json:"index" yaml:"index"`                       // Short selector, e.g. "1"
	FulfillmentURL string                 `json:"fulfillment_url" yaml:"fulfillment_url"`   // fulfillment-messages endpoint
	Currency       string                 `json:"currency" yaml:"currency"`                 // ISO currency code
	PartPrefix     string                 `json:"cppart,omitempty" yaml:"cppart,omitempty"` // Carrier part, e.g. "UNLOCKED/US"
	Models         map[string]ModelConfig `json:"models" yaml:"models"`                     // Selector -> model
	ZipCodes       map[string]ZipConfig   `json:"zip_codes" yaml:"zip_codes"`               // Selector -> postal code
}

// ModelConfig is a purchasable part
type ModelConfig struct {
	Code  string  `json:"code" yaml:"code"`   // Part number, e.g. "MFXG4LL/A"
	Price float64 `json:"price" yaml:"price"` // Base price without tax
	Name  string  `json:"name" yaml:"name"`
}

// ZipConfig is a postal code to search around
type ZipConfig struct {
	Code  string   `json:"code" yaml:"code"`
	City  string   `json:"city" yaml:"city"`
	State string   `json:"state,omitempty" yaml:"state,omitempty"`
	Tax   *float64 `json:"tax,omitempty" yaml:"tax,omitempty"` // Sales tax percent
}

// Label renders "City, ST (12345)"
func (z ZipConfig) Label() string {
	if z.State != "" {
		return fmt.Sprintf("%s, %s (%s)", z.City, z.State, z.Code)
	}
	return fmt.Sprintf("%s (%s)", z.City, z.Code)
}

// SortedKeys returns map keys in ascending order
func SortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func taxPercent(v float64) *float64 {
	return &v
}

// DefaultCountries returns the built-in storefronts
func DefaultCountries() map[string]*CountryConfig {
	return map[string]*CountryConfig{
		"usa": {
			Index:          "1",
			FulfillmentURL: "https://www.apple.com/shop/fulfillment-messages",
			Currency:       "USD",
			PartPrefix:     "UNLOCKED/US",
			Models: map[string]ModelConfig{
				"1": {Code: "MFXG4LL/A", Price: 1199, Name: "iPhone 17 Pro Max 256 Gb (Silver)"},
				"2": {Code: "MFXH4LL/A", Price: 1199, Name: "iPhone 17 Pro Max 256 Gb (Cosmic Orange)"},
				"3": {Code: "MFXJ4LL/A", Price: 1199, Name: "iPhone 17 Pro Max 256 Gb (Deep Blue)"},
			},
			ZipCodes: map[string]ZipConfig{
				"1": {Code: "10010", City: "New York", State: "NY", Tax: taxPercent(8.88)},
				"2": {Code: "19720", City: "New Castle", State: "DE", Tax: taxPercent(0)},
			},
		},
		"germany": {
			Index:          "2",
			FulfillmentURL: "https://www.apple.com/de/shop/fulfillment-messages",
			Currency:       "EUR",
			Models: map[string]ModelConfig{
				"1": {Code: "MFYM4ZD/A", Price: 1449, Name: "iPhone 17 Pro Max 256 Gb (Silver)"},
				"2": {Code: "MFYN4ZD/A", Price: 1449, Name: "iPhone 17 Pro Max 256 Gb (Cosmic Orange)"},
				"3": {Code: "MFYP4ZD/A", Price: 1449, Name: "iPhone 17 Pro Max 256 Gb (Deep Blue)"},
			},
			ZipCodes: map[string]ZipConfig{
				"1": {Code: "10210", City: "Berlin"},
				"2": {Code: "20110", City: "Hamburg"},
				"3": {Code: "19367", City: "Between Berlin and Hamburg"},
			},
		},
	}
}
