package types

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestQuantityMapPositiveDropsEmptyLines(t *testing.T) {
	q := QuantityMap{"a": 2, "b": 0, "c": -1}
	require.Equal(t, QuantityMap{"a": 2}, q.Positive())
	require.Len(t, q, 3, "Positive must not mutate the receiver")
}

func TestQuantityMapProductIDsSkipsMalformedKeys(t *testing.T) {
	first := uuid.MustParse("00000000-0000-0000-0000-000000000001")
	second := uuid.MustParse("00000000-0000-0000-0000-000000000002")
	q := QuantityMap{
		second.String():  1,
		first.String():   3,
		"not-a-uuid":                 1,
		uuid.NewString(): 0,
	}
	require.Equal(t, []uuid.UUID{first, second}, q.ProductIDs())
}

func TestQuantityMapValidate(t *testing.T) {
	require.NoError(t, QuantityMap{"a": 0, "b": 4}.Validate())
	require.Error(t, QuantityMap{"a": -2}.Validate())
}

func TestQuantityMapByProductMergesSpellings(t *testing.T) {
	id := uuid.MustParse("e06a6f23-5b1c-4d2e-9f3a-7c8b9d0e1f2a")
	q := QuantityMap{
		id.String():                  1,
		strings.ToUpper(id.String()): 2,
		"{" + id.String() + "}":      3,
		"urn:uuid:" + id.String():    0,
		"not-a-uuid":                 5,
	}

	require.Equal(t, map[uuid.UUID]int{id: 6}, q.ByProduct())
	require.Equal(t, []uuid.UUID{id}, q.ProductIDs())
	require.Equal(t, QuantityMap{id.String(): 6, "not-a-uuid": 5}, q.Canonical())
}
