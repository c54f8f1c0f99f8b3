package progress

import "time"

// ComputeUnlockedSessions evaluates the catalog's unlock rules against the
// student's history and returns the set of accessible session numbers in
// ascending order.
//
// Session 1 is always unlocked. Sessions are strictly sequentially gated:
// session n is never unlocked before session n-1, regardless of its explicit
// rules, so evaluation stops at the first session whose rules are not
// satisfied. The function is pure - the caller supplies the wall-clock time.
func ComputeUnlockedSessions(catalog Catalog, rec *Record, now time.Time) []int {
	if len(catalog) == 0 {
		return nil
	}

	unlocked := make([]int, 0, len(catalog))
	unlocked = append(unlocked, catalog[0].SessionNumber)

	for _, def := range catalog[1:] {
		if !sessionEligible(def, rec, now) {
			break
		}
		unlocked = append(unlocked, def.SessionNumber)
	}
	return unlocked
}

func sessionEligible(def SessionDefinition, rec *Record, now time.Time) bool {
	rules := def.Rules
	prev := rec.Session(def.SessionNumber - 1)

	if rules.RequiresPreviousCompletion {
		if prev == nil || !prev.IsCompleted {
			return false
		}
	}

	if rules.TimeGapAfterPreviousHours > 0 {
		// The gap is anchored on the previous session's completion; without
		// one the session is simply not yet eligible. A completion date in
		// the future (negative elapsed gap) is treated the same way, never
		// as an error.
		if prev == nil || prev.CompletedDate == nil {
			return false
		}
		gap := time.Duration(rules.TimeGapAfterPreviousHours * float64(time.Hour))
		if now.Sub(*prev.CompletedDate) < gap {
			return false
		}
	}

	if rules.RequiresAssignment && !rec.hasApprovedSubmission(rules.UnlockAssignmentID) {
		return false
	}

	if rules.RequiresRating && !rec.RatingSubmitted {
		return false
	}

	if rules.RequiresTestimony && !rec.TestimonySubmitted {
		return false
	}

	return true
}
