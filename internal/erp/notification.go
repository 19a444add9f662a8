package erp

import (
	"sort"

	"github.com/DusanPaal/claim-management/internal/pkgerrors"
)

// DuplicatesPolicy names how PickNotification resolves more than one
// candidate notification (spec.md §9 Open Question, SPEC_FULL.md §9
// decision: policy is resolved by ascending numeric notification ID,
// which spec.md §5 "Ordering Guarantees" treats as a per-connection
// chronological sequence).
type DuplicatesPolicy string

const (
	DuplicatesFirst DuplicatesPolicy = "first"
	DuplicatesLast  DuplicatesPolicy = "last"
	DuplicatesError DuplicatesPolicy = "error"
)

// PickNotification selects one notification from candidates found by the
// Add-case protocol's "existing notification" search (spec.md §4.6),
// excluding any marked for deletion. Candidates are sorted ascending by
// notification ID before the policy is applied.
func PickNotification(candidates []NotificationHeader, policy DuplicatesPolicy) (NotificationHeader, error) {
	var live []NotificationHeader
	for _, c := range candidates {
		if !c.MarkedDeleted {
			live = append(live, c)
		}
	}
	if len(live) == 0 {
		return NotificationHeader{}, pkgerrors.New(pkgerrors.KindBusinessWarning, "erp.PickNotification",
			"no non-deleted notification candidates remain")
	}

	sort.Slice(live, func(i, j int) bool { return live[i].NotificationID < live[j].NotificationID })

	switch policy {
	case DuplicatesFirst:
		return live[0], nil
	case DuplicatesLast:
		return live[len(live)-1], nil
	case DuplicatesError:
		if len(live) > 1 {
			return NotificationHeader{}, pkgerrors.New(pkgerrors.KindDataShape, "erp.PickNotification",
				"multiple candidate notifications found and the duplicates policy is 'error'")
		}
		return live[0], nil
	default:
		return NotificationHeader{}, pkgerrors.New(pkgerrors.KindFatal, "erp.PickNotification", "unrecognized duplicates policy: "+string(policy))
	}
}
