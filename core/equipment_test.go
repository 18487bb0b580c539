package core

import (
	"sort"
	"testing"
)

func TestEquipmentLookups(t *testing.T) {
	eq := NewEquipment(
		map[string]float64{"X": 750, "S": 1115},
		map[string]float64{"X": 20},
	)

	if v, ok := eq.SEFD("X"); !ok || v != 750 {
		t.Fatalf("SEFD(X) = %g, %v", v, ok)
	}
	if _, ok := eq.SEFD("K"); ok {
		t.Fatalf("unconfigured band must report ok=false")
	}
	if got := eq.MaxSEFD(); got != 1115 {
		t.Fatalf("MaxSEFD = %g, want 1115", got)
	}

	if v, ok := eq.MinSNR("X"); !ok || v != 20 {
		t.Fatalf("MinSNR(X) = %g, %v", v, ok)
	}
	// S has an SEFD but no SNR threshold: absence is explicit, not defaulted.
	if _, ok := eq.MinSNR("S"); ok {
		t.Fatalf("band without a threshold must report ok=false")
	}

	bands := eq.Bands()
	sort.Strings(bands)
	if len(bands) != 2 || bands[0] != "S" || bands[1] != "X" {
		t.Fatalf("Bands = %v", bands)
	}
}

func TestEquipmentEmpty(t *testing.T) {
	eq := NewEquipment(nil, nil)
	if got := eq.MaxSEFD(); got != 0 {
		t.Fatalf("MaxSEFD on empty tables = %g, want 0", got)
	}
	if _, ok := eq.SEFD("X"); ok {
		t.Fatalf("empty table must report ok=false")
	}
	if len(eq.Bands()) != 0 {
		t.Fatalf("empty table must list no bands")
	}
}
