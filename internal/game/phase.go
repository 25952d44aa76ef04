package game

// Phase represents a stage in the tournament round lifecycle.
type Phase string

const (
	PhaseSetup         Phase = "setup"          // Game created, no round started.
	PhaseHunt          Phase = "hunt"           // Agents submit findings against the deadline.
	PhaseHuntScoring   Phase = "hunt_scoring"   // Referee adjudicates pending findings.
	PhaseReview        Phase = "review"         // Agents dispute validated findings.
	PhaseReviewScoring Phase = "review_scoring" // Referee resolves pending disputes.
	PhaseComplete      Phase = "complete"       // Terminal; winner decided.
)

// Timed reports whether the phase carries a wall-clock deadline.
func (p Phase) Timed() bool {
	return p == PhaseHunt || p == PhaseReview
}

// Category classifies what the hunt agents are asked to look for.
type Category string

const (
	CategoryBugs         Category = "bugs"
	CategoryDocDrift     Category = "doc_drift"
	CategorySecurity     Category = "security"
	CategoryTestCoverage Category = "test_coverage"
	CategoryTechDebt     Category = "tech_debt"
	CategoryCustom       Category = "custom"
)

// Categories lists every valid hunt category.
func Categories() []Category {
	return []Category{
		CategoryBugs,
		CategoryDocDrift,
		CategorySecurity,
		CategoryTestCoverage,
		CategoryTechDebt,
		CategoryCustom,
	}
}

// ValidCategory reports whether s names a known hunt category.
func ValidCategory(s string) bool {
	for _, c := range Categories() {
		if Category(s) == c {
			return true
		}
	}
	return false
}
