// Package reconcile merges user-supplied vehicle records with the
// authoritative active-vehicle set and enriches them with label metadata.
package reconcile

import (
	"go.uber.org/zap"

	"github.com/vero-group/fleet-cli/internal/model"
)

// BuildIndex maps idField values to their records for constant-time lookup.
// A later duplicate identifier silently replaces an earlier one
// (last write wins); the upstream contract treats the identifier as unique.
func BuildIndex(records []model.Vehicle, idField string) map[string]model.Vehicle {
	index := make(map[string]model.Vehicle, len(records))
	for _, rec := range records {
		index[rec.Get(idField)] = rec
	}
	return index
}

// Reconcile merges each raw record with its authoritative counterpart looked
// up by idField. Records without a match pass through untouched; downstream
// filtering drops them when the required field never arrives. The identifier
// field value itself is never changed. Input records are mutated in place.
func Reconcile(raw []model.Vehicle, index map[string]model.Vehicle, idField string, policy model.MergePolicy) []model.Vehicle {
	for _, rec := range raw {
		id := rec.Get(idField)
		auth, ok := index[id]
		if !ok {
			zap.L().Warn("reconcile: no authoritative match", zap.String(idField, id))
			continue
		}
		mergeFields(rec, auth, idField, policy)
	}
	return raw
}

// mergeFields applies authoritative fields onto rec according to policy.
func mergeFields(rec, auth model.Vehicle, idField string, policy model.MergePolicy) {
	for key, val := range auth {
		if key == idField {
			continue
		}
		switch policy {
		case model.OverwriteAll:
			rec[key] = val
		default: // FillMissing
			if !rec.Has(key) {
				rec[key] = val
			}
		}
	}
}
