package model

import "testing"

func TestSymbolIdentity(t *testing.T) {
	s := Symbol{Path: "a/b.go", StartLine: 10, EndLine: 20}
	want := Identity{Path: "a/b.go", Start: 10, End: 20}
	if got := s.Identity(); got != want {
		t.Fatalf("Symbol.Identity() = %+v, want %+v", got, want)
	}
}

func TestPresetsAreValid(t *testing.T) {
	presets := []HybridConfig{
		PresetBalanced(),
		PresetExactMatch(),
		PresetSemanticFocused(),
		PresetContentFocused(),
	}
	for _, p := range presets {
		if !p.Valid() {
			t.Errorf("preset %+v failed Valid()", p)
		}
	}
}

func TestPresetsWeightsSumToOne(t *testing.T) {
	presets := []HybridConfig{
		PresetBalanced(),
		PresetExactMatch(),
		PresetSemanticFocused(),
		PresetContentFocused(),
	}
	for _, p := range presets {
		sum := p.TraditionalWeight + p.FullTextWeight + p.SemanticWeight
		if sum < 0.999 || sum > 1.001 {
			t.Errorf("preset %+v weights sum to %f, want ~1.0", p, sum)
		}
	}
}

func TestHybridConfigValidRejectsZeroWeightsOrK(t *testing.T) {
	zeroWeights := HybridConfig{RRFConstant: 60}
	if zeroWeights.Valid() {
		t.Fatal("expected Valid() = false when all weights are zero")
	}
	zeroK := HybridConfig{TraditionalWeight: 1, RRFConstant: 0}
	if zeroK.Valid() {
		t.Fatal("expected Valid() = false when RRFConstant is zero")
	}
	ok := HybridConfig{TraditionalWeight: 1, RRFConstant: 60}
	if !ok.Valid() {
		t.Fatal("expected Valid() = true for positive weight and k")
	}
}
