// Package board orders and labels job board listings.
package board

import (
	"fmt"
	"slices"
	"strings"

	"github.com/jonathan/careermatch/internal/types"
)

// SortOrder selects how the job board is ordered.
type SortOrder string

// Supported orders.
const (
	Latest  SortOrder = "latest"
	Popular SortOrder = "popular"
)

// ParseSortOrder parses a sort order. An empty string means Latest.
func ParseSortOrder(s string) (SortOrder, error) {
	switch SortOrder(strings.ToLower(strings.TrimSpace(s))) {
	case "", Latest:
		return Latest, nil
	case Popular:
		return Popular, nil
	default:
		return "", fmt.Errorf("unknown sort order %q (want latest or popular)", s)
	}
}

// Toggle returns the other order.
func (o SortOrder) Toggle() SortOrder {
	if o == Popular {
		return Latest
	}
	return Popular
}

// String implements fmt.Stringer.
func (o SortOrder) String() string {
	return string(o)
}

// Sort orders items in place. Latest keeps the backend's order; Popular
// ranks by likes, then views. The sort is stable.
func Sort(items []types.JobBoardItem, order SortOrder) {
	if order != Popular {
		return
	}
	slices.SortStableFunc(items, func(a, b types.JobBoardItem) int {
		if a.LikeCount != b.LikeCount {
			return b.LikeCount - a.LikeCount
		}
		return b.ViewCount - a.ViewCount
	})
}

// WorkTypeLabel returns the display label for a backend work type.
func WorkTypeLabel(workType string) string {
	switch strings.ToUpper(workType) {
	case types.WorkTypeRemote:
		return "재택 근무"
	case types.WorkTypeHybrid:
		return "하이브리드"
	default:
		return "출근 근무"
	}
}
