package taxonomy

import (
	"testing"

	"github.com/ppiankov/wastewise/internal/model"
)

func TestMapRawLabel(t *testing.T) {
	tests := []struct {
		label string
		want  model.WasteCategory
	}{
		{"bottle", model.CategoryPlastic},
		{"water bottle", model.CategoryPlastic},
		{"wine bottle", model.CategoryGlass},
		{"Beer Bottle", model.CategoryGlass},
		{"banana", model.CategoryOrganic},
		{"cell phone", model.CategoryEWaste},
		{"laptop", model.CategoryEWaste},
		{"AA battery", model.CategoryHazardous},
		{"tin can", model.CategoryMetal},
		{"cardboard box", model.CategoryPaper},
		{"candle", model.CategoryOther},
		{"keyboard", model.CategoryEWaste},
		{"", model.CategoryOther},
		{"   ", model.CategoryOther},
		{"zebra", model.CategoryOther},
	}

	for _, tt := range tests {
		t.Run(tt.label, func(t *testing.T) {
			if got := MapRawLabel(tt.label); got != tt.want {
				t.Errorf("MapRawLabel(%q) = %s, want %s", tt.label, got, tt.want)
			}
		})
	}
}

func TestMapRawLabel_Deterministic(t *testing.T) {
	for i := 0; i < 50; i++ {
		if MapRawLabel("plastic bag") != model.CategoryPlastic {
			t.Fatal("mapping is not stable")
		}
	}
}

func TestCoarsen(t *testing.T) {
	tests := map[model.WasteCategory]model.OutwardCategory{
		model.CategoryPlastic:   model.OutwardRecyclable,
		model.CategoryPaper:     model.OutwardRecyclable,
		model.CategoryGlass:     model.OutwardRecyclable,
		model.CategoryMetal:     model.OutwardRecyclable,
		model.CategoryOrganic:   model.OutwardOrganic,
		model.CategoryEWaste:    model.OutwardHazardous,
		model.CategoryHazardous: model.OutwardHazardous,
		model.CategoryOther:     model.OutwardGeneralWaste,
		"bogus":                 model.OutwardGeneralWaste,
	}
	for in, want := range tests {
		if got := Coarsen(in); got != want {
			t.Errorf("Coarsen(%s) = %s, want %s", in, got, want)
		}
	}
}

func TestTokenize(t *testing.T) {
	got := Tokenize("Plastic-Bottle_01.JPG")
	want := []string{"plastic", "bottle", "01", "jpg"}
	if len(got) != len(want) {
		t.Fatalf("Tokenize = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("token %d = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestGuidanceFor_CopiesTips(t *testing.T) {
	g := GuidanceFor(model.CategoryPlastic)
	g.Tips[0] = "mutated"
	if GuidanceFor(model.CategoryPlastic).Tips[0] == "mutated" {
		t.Error("GuidanceFor must return a copy of the tips slice")
	}
	if GuidanceFor("unknown").DisposalMethod == "" {
		t.Error("expected Other guidance for unknown category")
	}
}
