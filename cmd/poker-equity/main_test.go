package main

import (
	"testing"

	"github.com/lox/pokerequity/internal/deck"
)

func TestBuildRequestParsesRangeAndBoard(t *testing.T) {
	cli := CLI{
		Range:       []string{"AA=AsAh", "72o=7h2c"},
		Board:       "Td7s8h",
		Opponents:   2,
		Simulations: 1000,
		Algorithm:   "cactus-kev",
		Seed:        42,
	}

	req, err := buildRequest(cli)
	if err != nil {
		t.Fatalf("buildRequest: %v", err)
	}

	if len(req.Range) != 2 {
		t.Fatalf("Range has %d entries, want 2", len(req.Range))
	}
	if len(req.Board) != 3 {
		t.Fatalf("Board has %d cards, want 3", len(req.Board))
	}
	if req.Opponents != 2 {
		t.Errorf("Opponents = %d, want 2", req.Opponents)
	}
	if req.Seed != 42 {
		t.Errorf("Seed = %d, want 42", req.Seed)
	}

	aa := req.Range["AA"]
	if aa[0] == aa[1] {
		t.Errorf("AA hand has duplicate card %v", aa[0])
	}
}

func TestBuildRequestRejectsMalformedRangeEntry(t *testing.T) {
	cli := CLI{Range: []string{"AA"}}
	if _, err := buildRequest(cli); err == nil {
		t.Fatal("expected error for range entry without '='")
	}
}

func TestBuildRequestRejectsWrongCardCount(t *testing.T) {
	cli := CLI{Range: []string{"AA=AsAhKs"}}
	if _, err := buildRequest(cli); err == nil {
		t.Fatal("expected error for a 3-card hero hand")
	}
}

func TestBuildRequestRejectsUnknownOptimization(t *testing.T) {
	cli := CLI{
		Range:         []string{"AA=AsAh"},
		Optimizations: []string{"quantum-annealing"},
	}
	if _, err := buildRequest(cli); err == nil {
		t.Fatal("expected error for unknown optimization")
	}
}

func TestBuildRequestDefaultsSeedFromTime(t *testing.T) {
	cli := CLI{Range: []string{"AA=AsAh"}}
	req, err := buildRequest(cli)
	if err != nil {
		t.Fatalf("buildRequest: %v", err)
	}
	if req.Seed == 0 {
		t.Error("expected a nonzero time-derived seed when Seed is unset")
	}
}

func TestPct(t *testing.T) {
	if got := pct(0, 0); got != 0 {
		t.Errorf("pct(0,0) = %v, want 0", got)
	}
	if got := pct(25, 100); got != 25 {
		t.Errorf("pct(25,100) = %v, want 25", got)
	}
}

func TestFormatCards(t *testing.T) {
	cards := deck.MustParseCards("AsKd")
	got := formatCards(cards)
	want := cards[0].String() + " " + cards[1].String()
	if got != want {
		t.Errorf("formatCards = %q, want %q", got, want)
	}
}
