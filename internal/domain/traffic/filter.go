package traffic

import (
	"fmt"
	"strings"
	"unicode"
)

// AllSentinel disables a filter dimension.
const AllSentinel = "all"

const maxFilterValueLen = 128

// Filter selects which center aggregates take part in the totals.
type Filter struct {
	Zone     string `json:"zone"`
	CenterID string `json:"centerId"`
}

// NewFilter trims both values and maps empty ones to AllSentinel.
func NewFilter(zone, centerID string) (Filter, error) {
	f := Filter{Zone: normalizeFilterValue(zone), CenterID: normalizeFilterValue(centerID)}
	if err := validateFilterValue("zone", f.Zone); err != nil {
		return Filter{}, err
	}
	if err := validateFilterValue("centerId", f.CenterID); err != nil {
		return Filter{}, err
	}
	return f, nil
}

func AllFilter() Filter {
	return Filter{Zone: AllSentinel, CenterID: AllSentinel}
}

func (f Filter) MatchesZone(zone string) bool {
	return f.Zone == AllSentinel || f.Zone == "" || f.Zone == zone
}

func (f Filter) MatchesCenter(centerID string) bool {
	return f.CenterID == AllSentinel || f.CenterID == "" || f.CenterID == centerID
}

func normalizeFilterValue(v string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return AllSentinel
	}
	return v
}

func validateFilterValue(name, v string) error {
	if len(v) > maxFilterValueLen {
		return fmt.Errorf("%w: %s exceeds %d characters", ErrInvalidInput, name, maxFilterValueLen)
	}
	for _, r := range v {
		if unicode.IsControl(r) {
			return fmt.Errorf("%w: %s contains control characters", ErrInvalidInput, name)
		}
	}
	return nil
}
