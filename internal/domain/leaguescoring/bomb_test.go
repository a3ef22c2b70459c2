package leaguescoring

import "testing"

func TestBombThreshold(t *testing.T) {
	t.Parallel()

	if got := BombThreshold([]float64{20, 5, 15, 10}); got != 10 {
		t.Fatalf("unexpected threshold: got=%v want=10", got)
	}
	if got := BombThreshold([]float64{5, 10, 15, 0, -3}); got != 0 {
		t.Fatalf("fewer than four positive values must give 0, got %v", got)
	}
	if got := BombThreshold([]float64{1, 2, 3, 4, 5, 6, 7, 8}); got != 3 {
		t.Fatalf("unexpected threshold for eight values: %v", got)
	}
}

func TestAllocateBombDamage(t *testing.T) {
	t.Parallel()

	teams := []BombPick{
		{UserID: "a", GameID: "bomb-a"},
		{UserID: "b"},
		{UserID: "c"},
	}
	got := AllocateBombDamage(teams, map[string]float64{"bomb-a": 4}, 10)

	if _, ok := got["a"]; ok {
		t.Fatalf("bomb owner must be unaffected: %v", got)
	}
	if got["b"] != -3 || got["c"] != -3 {
		t.Fatalf("unexpected split: %v", got)
	}
	if TotalDamage(got) != 6 {
		t.Fatalf("unexpected total damage: %v", TotalDamage(got))
	}
}

func TestAllocateBombDamage_MissingBombScoresZero(t *testing.T) {
	t.Parallel()

	teams := []BombPick{{UserID: "a", GameID: "gone"}, {UserID: "b", GameID: "bomb-b"}}
	got := AllocateBombDamage(teams, map[string]float64{"bomb-b": 12}, 10)

	if got["b"] != -10 {
		t.Fatalf("missing bomb should deal full threshold to b, got %v", got)
	}
	if _, ok := got["a"]; ok {
		t.Fatalf("bomb above threshold must not damage a: %v", got)
	}
}

func TestAllocateBombDamage_NoThreshold(t *testing.T) {
	t.Parallel()

	got := AllocateBombDamage([]BombPick{{UserID: "a", GameID: "x"}, {UserID: "b"}}, nil, 0)
	if len(got) != 0 {
		t.Fatalf("zero threshold must not damage anyone: %v", got)
	}
}
