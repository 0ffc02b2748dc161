package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// TaxTable maps a jurisdiction code to its applicable rates, e.g.
// "ON" -> {"HST": 0.13}. It is loaded once at startup and injected into
// the billing calculator so jurisdictions can be extended or mocked
// without code changes.
type TaxTable map[string]map[string]float64

// RatesFor returns the rate set for a region, or false when the region
// is not configured.
func (t TaxTable) RatesFor(region string) (map[string]float64, bool) {
	rates, ok := t[region]
	return rates, ok
}

type taxRatesFile struct {
	Regions map[string]map[string]float64 `toml:"regions"`
}

// LoadTaxTable reads the tax-rate table from a TOML file. Pass an empty
// path to use TAX_RATES_FILE or the bundled default file.
func LoadTaxTable(path string) (TaxTable, error) {
	if path == "" {
		path = os.Getenv("TAX_RATES_FILE")
	}
	if path == "" {
		path = "config/taxrates.toml"
	}

	var parsed taxRatesFile
	if _, err := toml.DecodeFile(path, &parsed); err != nil {
		return nil, fmt.Errorf("failed to load tax rates from %s: %w", path, err)
	}
	if len(parsed.Regions) == 0 {
		return nil, fmt.Errorf("tax rate file %s defines no regions", path)
	}
	return TaxTable(parsed.Regions), nil
}
