package domain

import "math"

// PXL factor weights. The four reach factors are worth 15 points each; ease
// of implementation and evidence backing are worth 20.
const (
	pxlReachWeight  = 15
	pxlStrongWeight = 20
)

// PxlScore computes the PXL priority score of a test from its six boolean
// factors. Maximum 100.
func PxlScore(f PxlFactors) int {
	score := 0
	if f.AboveFold {
		score += pxlReachWeight
	}
	if f.NoticeableIn5Sec {
		score += pxlReachWeight
	}
	if f.RunOnHighTraffic {
		score += pxlReachWeight
	}
	if f.AffectsAllUsers {
		score += pxlReachWeight
	}
	if f.EasyToImplement {
		score += pxlStrongWeight
	}
	if f.EvidenceBacked {
		score += pxlStrongWeight
	}
	return score
}

// CategoryScore computes a category's score from its assertions:
// round(100 * passed / total), or 0 for an empty category. Structural
// pass/fail counting is authoritative over any generator-supplied number.
func CategoryScore(cat Category) int {
	total := len(cat.Assertions)
	if total == 0 {
		return 0
	}
	passed := 0
	for _, a := range cat.Assertions {
		if a.Status == StatusPass {
			passed++
		}
	}
	return int(math.Round(float64(passed) / float64(total) * 100))
}

// Recompute derives every computed field of the document from its assertions:
// the six category scores, the overall score (unweighted mean of the six, the
// generation-time category weights are deliberately not re-applied here), and
// the critical-issue list. The test list keeps its current order; only a
// fresh repair re-sorts it, so an interactive edit never reshuffles the list
// under the user. Both the post-generation path and the post-edit path call
// this same function.
//
// Recompute is idempotent and returns a new value; doc is not mutated.
func Recompute(doc Document) Document {
	out := doc.Clone()

	total := 0
	for _, key := range CategoryKeys {
		cat := out.LiftCategories[key]
		cat.Score = CategoryScore(cat)
		out.LiftCategories[key] = cat
		total += cat.Score
	}
	out.OverallScore = int(math.Round(float64(total) / float64(len(CategoryKeys))))

	out.CriticalIssues = DeriveCriticalIssues(out.LiftCategories)

	return out
}
