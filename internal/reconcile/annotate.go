package reconcile

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/vero-group/fleet-cli/internal/model"
)

// ColorResolver maps one label identifier to a display color code. An
// unknown label yields an empty color, not an error.
type ColorResolver interface {
	LabelColor(ctx context.Context, labelID string) (string, error)
}

// colorCache memoizes resolver lookups for the lifetime of one run. Misses
// and failures are cached as empty so a flaky label is asked about once.
type colorCache struct {
	resolver ColorResolver
	colors   map[string]string
}

func newColorCache(resolver ColorResolver) *colorCache {
	return &colorCache{
		resolver: resolver,
		colors:   make(map[string]string),
	}
}

// resolve returns the color for labelID, consulting the upstream resolver at
// most once per distinct identifier. A resolver failure is logged and cached
// as empty; a missing color must never block report generation.
func (c *colorCache) resolve(ctx context.Context, labelID string) string {
	if color, ok := c.colors[labelID]; ok {
		return color
	}

	color, err := c.resolver.LabelColor(ctx, labelID)
	if err != nil {
		zap.L().Warn("reconcile: label color lookup failed",
			zap.String("label", labelID),
			zap.Error(err),
		)
		color = ""
	}
	c.colors[labelID] = color
	return color
}

// Annotate attaches the resolved color of each record's first label id as the
// derived _labelColor field. Only the first comma-separated token counts;
// multi-label blending is deliberately out of scope. Records without labels
// are left untouched.
func Annotate(ctx context.Context, records []model.Vehicle, resolver ColorResolver) {
	cache := newColorCache(resolver)

	for _, rec := range records {
		if !rec.Has(model.KeyLabelIDs) {
			continue
		}
		first := strings.SplitN(rec.Get(model.KeyLabelIDs), ",", 2)[0]
		first = strings.TrimSpace(first)
		if first == "" {
			continue
		}
		rec[model.KeyLabelColor] = cache.resolve(ctx, first)
	}
}
