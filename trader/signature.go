package trader

import (
	"strconv"
	"strings"

	mapset "github.com/deckarep/golang-set/v2"

	"arbo/types"
)

// RouteSignature derives the negative-cache key for a plan executed over a
// specific venue pair. The field order and "|" delimiter are a wire contract
// with entries persisted by earlier runs; never reorder.
func RouteSignature(plan *types.ExecutionPlan, venues types.ResolvedVenues, legs [2]*types.SwapInstructions) string {
	cycle := strings.Join(plan.CycleMints[:], "->")

	parts := []string{
		cycle,
		strconv.Itoa(len(plan.Legs)),
		strconv.FormatBool(plan.UseSharedAccounts),
		venues.Dex1,
		venues.Dex2,
		venues.Dex1 + "->" + venues.Dex2,
		programFingerprint(legs),
	}
	return strings.Join(parts, "|")
}

// programFingerprint lists every program ID touched across both legs, unique,
// in first-seen order, comma-joined. Direction matters: swapping the legs
// produces a different fingerprint whenever the venues' programs differ.
func programFingerprint(legs [2]*types.SwapInstructions) string {
	seen := mapset.NewThreadUnsafeSet[string]()
	ordered := make([]string, 0, 8)

	for _, leg := range legs {
		if leg == nil {
			continue
		}
		for _, id := range leg.ProgramIDs() {
			if seen.Add(id) {
				ordered = append(ordered, id)
			}
		}
	}
	return strings.Join(ordered, ",")
}
