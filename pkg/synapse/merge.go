package synapse

import "fmt"

// Merge returns a copy of stored with partial overlaid according to kind.
// Under KindAnnotations every value of partial must be a mapping, null
// included.
// Neither argument is modified and no value of partial is aliased into the
// result.
func Merge(stored, partial Entity, kind ResourceKind) (Entity, error) {
	merged := stored.Clone()
	if merged == nil {
		merged = Entity{}
	}

	for key, value := range partial {
		switch kind {
		case KindEntity:
			merged[key] = deepCopy(value)
		case KindAnnotations:
			bag := asMap(value)
			if bag == nil {
				return nil, fmt.Errorf("%w: annotation %q is not a mapping", ErrInvalidArgument, key)
			}
			target := asMap(merged[key])
			if target == nil {
				target = make(map[string]any, len(bag))
			}
			for k, v := range bag {
				target[k] = deepCopy(v)
			}
			merged[key] = target
		default:
			return nil, fmt.Errorf("%w: unknown %s", ErrInvalidArgument, kind)
		}
	}
	return merged, nil
}
