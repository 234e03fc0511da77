package domain

import (
	"fmt"
	"sort"
	"unicode/utf8"
)

// SortKey is one of the fixed orderings a node listing may request.
type SortKey string

const (
	SortBySortOrder  SortKey = "sort_order"
	SortByID         SortKey = "id"
	SortByName       SortKey = "name"
	SortByCodeLength SortKey = "code_length"
)

// ParseSortKey validates a sort key. The empty string selects SortBySortOrder.
func ParseSortKey(s string) (SortKey, error) {
	switch k := SortKey(s); k {
	case "":
		return SortBySortOrder, nil
	case SortBySortOrder, SortByID, SortByName, SortByCodeLength:
		return k, nil
	}
	return "", fmt.Errorf("%w: unknown sort key %q", ErrInvalidInput, s)
}

// SortNodes orders nodes in place. Every key falls back to id so the
// result is total.
func SortNodes(nodes []Node, key SortKey) {
	sort.SliceStable(nodes, func(i, j int) bool {
		a, b := nodes[i], nodes[j]
		switch key {
		case SortByID:
		case SortByName:
			if a.Name != b.Name {
				return a.Name < b.Name
			}
		case SortByCodeLength:
			la, lb := utf8.RuneCountInString(a.Code), utf8.RuneCountInString(b.Code)
			if la != lb {
				return la > lb
			}
		default:
			if a.SortOrder != b.SortOrder {
				return a.SortOrder < b.SortOrder
			}
		}
		return a.ID < b.ID
	})
}
