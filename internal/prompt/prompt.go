// Package prompt renders the markdown prompts handed to agents. Rendering is
// pure: state in, string out.
package prompt

import (
	"fmt"
	"strings"

	"github.com/boneshq/bones/internal/game"
)

// categoryBriefs describe what each hunt category asks agents to look for.
var categoryBriefs = map[game.Category]string{
	game.CategoryBugs:         "Find real bugs: logic errors, race conditions, off-by-one errors, nil dereferences, resource leaks.",
	game.CategoryDocDrift:     "Find documentation drift: places where comments or docs contradict what the code actually does. Every finding must include a code snippet in DOC/CODE/CONTRADICTION format.",
	game.CategorySecurity:     "Find security issues: injection, path traversal, unsafe deserialization, missing auth checks, secrets in code.",
	game.CategoryTestCoverage: "Find untested behavior: branches, error paths and edge cases no test exercises.",
	game.CategoryTechDebt:     "Find technical debt: dead code, copy-paste duplication, leaky abstractions, fragile coupling.",
	game.CategoryCustom:       "Find the issues described in the focus prompt below.",
}

// Hunt renders the prompt for one hunt agent at the start of a round.
func Hunt(g *game.Game, a *game.Agent) string {
	var b strings.Builder
	fmt.Fprintf(&b, "You are agent **%s** in round %d of a competitive code-review tournament.\n\n", a.Name, g.Round)
	fmt.Fprintf(&b, "Target: %s\n\n", g.Config.ProjectURL)
	b.WriteString(categoryBriefs[g.Config.Category])
	b.WriteString("\n")
	if g.Config.Focus != "" {
		fmt.Fprintf(&b, "\nFocus: %s\n", g.Config.Focus)
	}
	b.WriteString("\nScoring: valid finding +1, false flag -2, duplicate -3. ")
	b.WriteString("Other agents are hunting the same tree; duplicates are penalized, so prefer depth over breadth.\n\n")
	fmt.Fprintf(&b, "Submit each finding with the submit_finding tool as agent %q, then call mark_done when you are finished. ", a.ID)
	fmt.Fprintf(&b, "You have %s.\n", g.Config.HuntDuration)
	return b.String()
}

// Review renders the prompt for one review agent: dispute weak validations.
func Review(g *game.Game, a *game.Agent, reviewable []*game.Finding) string {
	var b strings.Builder
	fmt.Fprintf(&b, "You are agent **%s** in round %d, review phase.\n\n", a.Name, g.Round)
	b.WriteString("Below are findings by other agents that the referee marked valid. ")
	b.WriteString("Re-examine each against the actual code and dispute any you believe is wrong. ")
	b.WriteString("Scoring: dispute won +2, dispute lost -1.\n\n")
	if len(reviewable) == 0 {
		b.WriteString("No findings are open for dispute this round. Call mark_done.\n")
		return b.String()
	}
	for _, f := range reviewable {
		fmt.Fprintf(&b, "### Finding %d (%s:%d-%d)\n%s\n\n", f.ID, f.FilePath, f.LineStart, f.LineEnd, f.Description)
	}
	fmt.Fprintf(&b, "File disputes with the submit_dispute tool as agent %q, then call mark_done. You have %s.\n",
		a.ID, g.Config.ReviewDuration)
	return b.String()
}

// RefereeFinding renders the adjudication prompt for a single pending finding.
func RefereeFinding(g *game.Game, f *game.Finding) string {
	var b strings.Builder
	b.WriteString("You are the referee of a code-review tournament. Adjudicate this finding against the actual code.\n\n")
	fmt.Fprintf(&b, "Finding %d by %s:\n", f.ID, f.AgentID)
	fmt.Fprintf(&b, "- File: %s, lines %d-%d\n", f.FilePath, f.LineStart, f.LineEnd)
	fmt.Fprintf(&b, "- Description: %s\n", f.Description)
	if f.CodeSnippet != "" {
		fmt.Fprintf(&b, "- Evidence:\n```\n%s\n```\n", f.CodeSnippet)
	}
	b.WriteString("\nVerdicts: VALID (real issue), FALSE (not a real issue), DUPLICATE (same issue as an earlier valid finding).\n")
	b.WriteString("Record your decision by running the validate CLI command:\n\n")
	fmt.Fprintf(&b, "    bones validate %s %d <VALID|FALSE|DUPLICATE> \"<one-paragraph explanation>\" --confidence <high|medium|low>\n\n", g.ID, f.ID)
	b.WriteString("Pass --duplicate-of <finding-id> with a DUPLICATE verdict. ")
	b.WriteString("Mark VALID findings you are unsure about with --needs-verification.\n")
	return b.String()
}

// Verifier renders the second-pass prompt for a finding the referee marked
// valid but uncertain.
func Verifier(g *game.Game, f *game.Finding) string {
	var b strings.Builder
	b.WriteString("You are a verifier. The referee validated this finding with low confidence; second-check it.\n\n")
	fmt.Fprintf(&b, "Finding %d (%s:%d-%d): %s\n", f.ID, f.FilePath, f.LineStart, f.LineEnd, f.Description)
	fmt.Fprintf(&b, "Referee verdict: %s\n\n", f.Verdict)
	b.WriteString("Read the code yourself. Confirm the finding if it is real; override it if the referee was wrong. ")
	b.WriteString("Record the outcome by running the verify CLI command:\n\n")
	fmt.Fprintf(&b, "    bones verify %s %d <CONFIRMED|OVERRIDDEN> \"<your reasoning>\"\n", g.ID, f.ID)
	return b.String()
}

// RefereeDispute renders the adjudication prompt for a single pending dispute.
func RefereeDispute(g *game.Game, d *game.Dispute, f *game.Finding) string {
	var b strings.Builder
	b.WriteString("You are the referee. An agent disputes a previously validated finding.\n\n")
	fmt.Fprintf(&b, "Finding %d by %s (%s:%d-%d): %s\n", f.ID, f.AgentID, f.FilePath, f.LineStart, f.LineEnd, f.Description)
	fmt.Fprintf(&b, "Original verdict: %s\n\n", f.Verdict)
	fmt.Fprintf(&b, "Dispute %d by %s: %s\n\n", d.ID, d.DisputerID, d.Reason)
	b.WriteString("Decide SUCCESSFUL (the finding was wrong and its validation is revoked) or FAILED (the finding stands). ")
	b.WriteString("Record your decision by running the resolve CLI command:\n\n")
	fmt.Fprintf(&b, "    bones resolve %s %d <SUCCESSFUL|FAILED> \"<your explanation>\"\n", g.ID, d.ID)
	return b.String()
}
