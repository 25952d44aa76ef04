package prompt

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/boneshq/bones/internal/game"
)

func testGame() *game.Game {
	g := game.New("g1", game.Config{
		ProjectURL:     "https://github.com/acme/widgets",
		Category:       game.CategoryBugs,
		TargetScore:    5,
		HuntDuration:   10 * time.Minute,
		ReviewDuration: 5 * time.Minute,
		NumAgents:      2,
		MaxRounds:      3,
	}, time.Now())
	g.Round = 1
	return g
}

func TestHunt(t *testing.T) {
	t.Parallel()
	g := testGame()
	a := game.NewAgent(g.ID, "ash", time.Now())

	p := Hunt(g, a)
	for _, want := range []string{"ash", "round 1", g.Config.ProjectURL, "submit_finding", "mark_done", a.ID} {
		if !strings.Contains(p, want) {
			t.Errorf("hunt prompt missing %q", want)
		}
	}
}

func TestHunt_IncludesFocus(t *testing.T) {
	t.Parallel()
	g := testGame()
	a := game.NewAgent(g.ID, "ash", time.Now())

	if strings.Contains(Hunt(g, a), "Focus:") {
		t.Error("expected no focus section without a focus prompt")
	}
	g.Config.Focus = "concentrate on the parser"
	if !strings.Contains(Hunt(g, a), "concentrate on the parser") {
		t.Error("expected the focus prompt included")
	}
}

func TestReview_NoFindings(t *testing.T) {
	t.Parallel()
	g := testGame()
	a := game.NewAgent(g.ID, "ash", time.Now())

	p := Review(g, a, nil)
	if !strings.Contains(p, "mark_done") {
		t.Error("expected mark_done instruction even with nothing to dispute")
	}
}

func TestReview_ListsFindings(t *testing.T) {
	t.Parallel()
	g := testGame()
	a := game.NewAgent(g.ID, "ash", time.Now())
	f, err := game.NewFinding(g.ID, g.ID+"-bay", 1, "a.go", 10, 20, "nil map write in cache refresh", "", time.Now())
	if err != nil {
		t.Fatalf("NewFinding: %v", err)
	}
	f.ID = 7

	p := Review(g, a, []*game.Finding{f})
	for _, want := range []string{"Finding 7", "a.go:10-20", "nil map write", "submit_dispute"} {
		if !strings.Contains(p, want) {
			t.Errorf("review prompt missing %q", want)
		}
	}
}

func TestRefereeFinding(t *testing.T) {
	t.Parallel()
	g := testGame()
	f, err := game.NewFinding(g.ID, g.ID+"-ash", 1, "a.go", 10, 20, "nil map write", "m[k] = v", time.Now())
	if err != nil {
		t.Fatalf("NewFinding: %v", err)
	}

	p := RefereeFinding(g, f)
	for _, want := range []string{"VALID", "FALSE", "DUPLICATE", fmt.Sprintf("bones validate %s %d", g.ID, f.ID), "m[k] = v"} {
		if !strings.Contains(p, want) {
			t.Errorf("referee prompt missing %q", want)
		}
	}
}

func TestVerifier(t *testing.T) {
	t.Parallel()
	g := testGame()
	f, err := game.NewFinding(g.ID, g.ID+"-ash", 1, "a.go", 10, 20, "plausible race", "", time.Now())
	if err != nil {
		t.Fatalf("NewFinding: %v", err)
	}

	p := Verifier(g, f)
	for _, want := range []string{"second-check", fmt.Sprintf("bones verify %s %d", g.ID, f.ID), "plausible race"} {
		if !strings.Contains(p, want) {
			t.Errorf("verifier prompt missing %q", want)
		}
	}
}

func TestRefereeDispute(t *testing.T) {
	t.Parallel()
	g := testGame()
	f, err := game.NewFinding(g.ID, g.ID+"-ash", 1, "a.go", 10, 20, "nil map write", "", time.Now())
	if err != nil {
		t.Fatalf("NewFinding: %v", err)
	}
	f.ID = 7
	d := game.NewDispute(g.ID, f.ID, g.ID+"-bay", 1, "the map is guarded", time.Now())
	d.ID = 3

	p := RefereeDispute(g, d, f)
	for _, want := range []string{"Finding 7", "Dispute 3", "SUCCESSFUL", "FAILED", fmt.Sprintf("bones resolve %s %d", g.ID, d.ID), "the map is guarded"} {
		if !strings.Contains(p, want) {
			t.Errorf("dispute prompt missing %q", want)
		}
	}
}
