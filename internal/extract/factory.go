package extract

import (
	"fmt"

	"invoiceai/internal/config"
)

// DriverFactory creates an Extractor from the extractor config.
type DriverFactory func(cfg *config.ExtractorConfig) (Extractor, error)

// registry of extractor drivers, populated by init() in each driver package.
var drivers = map[string]DriverFactory{}

// RegisterDriver registers an extractor driver factory by name.
func RegisterDriver(name string, factory DriverFactory) {
	drivers[name] = factory
}

// NewExtractor creates an Extractor using the configured driver.
func NewExtractor(cfg *config.ExtractorConfig) (Extractor, error) {
	factory, ok := drivers[cfg.Driver]
	if !ok {
		return nil, fmt.Errorf("unknown extractor driver: %s", cfg.Driver)
	}
	return factory(cfg)
}
