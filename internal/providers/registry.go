package providers

import (
	"fmt"

	portssvc "github.com/longbinlai/maybe/internal/core/ports/services"
)

// Provider names accepted in configuration.
const (
	ProviderECB  = "ecb"
	ProviderNone = "none"
)

// ForName returns the rate provider selected by configuration, or nil when
// rates come from storage only. Selection is explicit configuration at
// startup, not runtime type inspection.
func ForName(name string) (portssvc.RateProvider, error) {
	switch name {
	case ProviderECB:
		return NewECBProvider(), nil
	case ProviderNone, "":
		return nil, nil
	}
	return nil, fmt.Errorf("unknown rate provider %q", name)
}
