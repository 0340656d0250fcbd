package game

import "testing"

func TestBuildPotLayersEqualContrib(t *testing.T) {
	layers := BuildPotLayers(map[string]int64{"a": 100, "b": 100}, nil)
	if len(layers) != 1 {
		t.Fatalf("expected single layer, got %d", len(layers))
	}
	if layers[0].Amount != 200 {
		t.Fatalf("expected 200, got %d", layers[0].Amount)
	}
	if len(layers[0].Eligible) != 2 {
		t.Fatalf("expected both eligible, got %v", layers[0].Eligible)
	}
}

func TestBuildPotLayersShortAllIn(t *testing.T) {
	contrib := map[string]int64{"a": 100, "b": 50, "c": 100}
	layers := BuildPotLayers(contrib, map[string]bool{})
	if len(layers) != 2 {
		t.Fatalf("expected main and one side pot, got %d", len(layers))
	}
	if layers[0].Amount != 150 || len(layers[0].Eligible) != 3 {
		t.Fatalf("main pot wrong: %+v", layers[0])
	}
	if layers[1].Amount != 100 || len(layers[1].Eligible) != 2 {
		t.Fatalf("side pot wrong: %+v", layers[1])
	}
}

func TestBuildPotLayersFoldedChipsStayIn(t *testing.T) {
	contrib := map[string]int64{"a": 100, "b": 50, "c": 100}
	layers := BuildPotLayers(contrib, map[string]bool{"c": true})
	if layers[0].Amount != 150 {
		t.Fatalf("folded chips must stay in the pot, got %d", layers[0].Amount)
	}
	for _, u := range layers[0].Eligible {
		if u == "c" {
			t.Fatalf("folded player must not be eligible: %v", layers[0].Eligible)
		}
	}
	if len(layers[1].Eligible) != 1 || layers[1].Eligible[0] != "a" {
		t.Fatalf("side pot eligibility wrong: %v", layers[1].Eligible)
	}
}

func TestBuildPotLayersThreeLevels(t *testing.T) {
	contrib := map[string]int64{"a": 20, "b": 60, "c": 100}
	layers := BuildPotLayers(contrib, nil)
	if len(layers) != 3 {
		t.Fatalf("expected three layers, got %d", len(layers))
	}
	want := []int64{60, 80, 40}
	var total int64
	for i, l := range layers {
		if l.Amount != want[i] {
			t.Fatalf("layer %d: expected %d, got %d", i, want[i], l.Amount)
		}
		total += l.Amount
	}
	if total != 180 {
		t.Fatalf("layers must sum to contributions, got %d", total)
	}
}
