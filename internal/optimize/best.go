package optimize

import (
	"errors"

	"github.com/felixbrock/promptforge/internal/domain"
)

// ErrAllVariantsFailed indicates an empty candidate list. The per-strategy
// fallbacks make this unreachable in normal operation, so hitting it means a
// programming defect and it is surfaced instead of defaulted away.
var ErrAllVariantsFailed = errors.New("all variants failed")

// Best returns the variant with the strictly greatest score; the first seen
// wins ties.
func Best(variants []domain.Variant) (domain.Variant, error) {
	if len(variants) == 0 {
		return domain.Variant{}, ErrAllVariantsFailed
	}

	best := variants[0]
	for _, v := range variants[1:] {
		if v.Score > best.Score {
			best = v
		}
	}
	return best, nil
}
