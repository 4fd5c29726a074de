package enums

import (
	"fmt"
	"slices"
)

func oneOf[T ~string](v T, set []T) bool {
	return slices.Contains(set, v)
}

// lookup returns the member of set spelled exactly like raw.
func lookup[T ~string](kind, raw string, set []T) (T, error) {
	if i := slices.Index(set, T(raw)); i >= 0 {
		return set[i], nil
	}
	var zero T
	return zero, lookupErr(kind, raw)
}

func lookupErr(kind, raw string) error {
	return fmt.Errorf("invalid %s %q", kind, raw)
}
