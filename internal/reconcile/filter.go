package reconcile

import (
	"github.com/vero-group/fleet-cli/internal/model"
)

// Filter keeps records whose requiredField is present and non-empty,
// preserving input order. An empty result is valid and means "nothing to
// report"; the caller decides whether that is a failure.
func Filter(records []model.Vehicle, requiredField string) []model.Vehicle {
	survivors := make([]model.Vehicle, 0, len(records))
	for _, rec := range records {
		if rec.Has(requiredField) {
			survivors = append(survivors, rec)
		}
	}
	return survivors
}
