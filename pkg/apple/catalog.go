package apple

import (
	"fmt"
	"strings"

	"pickupwatch/pkg/config"
)

// Model is a requested part together with its catalog entry
type Model struct {
	Key   string  `json:"key"`
	Code  string  `json:"code"`
	Name  string  `json:"name"`
	Price float64 `json:"price"`
}

// Selection is a fully resolved check request
type Selection struct {
	CountryName string
	Country     *config.CountryConfig
	Models      []Model
	Zip         string
}

// Catalog resolves user selectors against configured storefronts
type Catalog struct {
	countries map[string]*config.CountryConfig
}

// NewCatalog creates a catalog over the configured countries
func NewCatalog(countries map[string]*config.CountryConfig) *Catalog {
	return &Catalog{countries: countries}
}

// ResolveCountry accepts a country name (3+ characters) or its index
func (c *Catalog) ResolveCountry(input string) (string, *config.CountryConfig, error) {
	input = strings.TrimSpace(input)

	if len(input) >= 3 {
		if country, ok := c.countries[input]; ok {
			return input, country, nil
		}
	} else if input != "" {
		for _, name := range config.SortedKeys(c.countries) {
			if c.countries[name].Index == input {
				return name, c.countries[name], nil
			}
		}
	}

	return "", nil, fmt.Errorf("%w: %q. Use only country names (%s) or numbers (%s)",
		ErrInvalidCountry, input, strings.Join(config.SortedKeys(c.countries), ", "), strings.Join(c.indexes(), ", "))
}

// ResolveModels accepts whitespace separated model keys, e.g. "1 2"
func (c *Catalog) ResolveModels(country *config.CountryConfig, input string) ([]Model, error) {
	keys := strings.Fields(input)
	if len(keys) == 0 {
		return nil, fmt.Errorf("%w: no model selected", ErrInvalidModel)
	}

	models := make([]Model, 0, len(keys))
	for _, key := range keys {
		entry, ok := country.Models[key]
		if !ok {
			return nil, fmt.Errorf("%w: %q. Use only numbers (%s)",
				ErrInvalidModel, key, strings.Join(config.SortedKeys(country.Models), ", "))
		}
		models = append(models, Model{Key: key, Code: entry.Code, Name: entry.Name, Price: entry.Price})
	}
	return models, nil
}

// ResolveZip accepts a literal 5 character postal code or a zip key
func (c *Catalog) ResolveZip(country *config.CountryConfig, input string) (string, error) {
	input = strings.TrimSpace(input)
	if len(input) == 5 {
		return input, nil
	}
	if entry, ok := country.ZipCodes[input]; ok && entry.Code != "" {
		return entry.Code, nil
	}
	choices := make([]string, 0, len(country.ZipCodes))
	for _, key := range config.SortedKeys(country.ZipCodes) {
		choices = append(choices, key+": "+country.ZipCodes[key].Label())
	}
	return "", fmt.Errorf("%w: %q. Use only zip code with 5 digits or numbers (%s)",
		ErrInvalidZip, input, strings.Join(choices, ", "))
}

// Resolve turns the three selectors into a Selection
func (c *Catalog) Resolve(countryInput, modelsInput, zipInput string) (*Selection, error) {
	name, country, err := c.ResolveCountry(countryInput)
	if err != nil {
		return nil, err
	}
	models, err := c.ResolveModels(country, modelsInput)
	if err != nil {
		return nil, err
	}
	zip, err := c.ResolveZip(country, zipInput)
	if err != nil {
		return nil, err
	}
	return &Selection{CountryName: name, Country: country, Models: models, Zip: zip}, nil
}

func (c *Catalog) indexes() []string {
	var out []string
	for _, name := range config.SortedKeys(c.countries) {
		if idx := c.countries[name].Index; idx != "" {
			out = append(out, idx)
		}
	}
	return out
}
