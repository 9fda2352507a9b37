package statline

import "testing"

func TestLine_WithReturnsCopy(t *testing.T) {
	t.Parallel()

	base := Line{}.With(Points, 20)
	next := base.With(Points, 25).With(Rebounds, 5)

	if v, _ := base.Get(Points); v != 20 {
		t.Fatalf("base line mutated: got=%v want=20", v)
	}
	if base.Has(Rebounds) {
		t.Fatalf("base line should not have rebounds")
	}
	if v, _ := next.Get(Points); v != 25 {
		t.Fatalf("unexpected points: got=%v want=25", v)
	}
}

func TestLine_CategoriesFollowCanonicalOrder(t *testing.T) {
	t.Parallel()

	line := Line{}.With(PersonalFouls, 2).With(Assists, 6).With(Points, 20)
	got := line.Categories()
	want := []Category{Points, Assists, PersonalFouls}
	if len(got) != len(want) {
		t.Fatalf("unexpected category count: got=%d want=%d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("unexpected category at %d: got=%s want=%s", i, got[i], want[i])
		}
	}
}

func TestZero_SetsEveryCategory(t *testing.T) {
	t.Parallel()

	line := Zero()
	for _, c := range AllCategories() {
		v, ok := line.Get(c)
		if !ok {
			t.Fatalf("expected %s to be set", c)
		}
		if v != 0 {
			t.Fatalf("expected %s=0, got %v", c, v)
		}
	}
}

func TestFromMap_IgnoresUnknownKeys(t *testing.T) {
	t.Parallel()

	line := FromMap(map[string]float64{"points": 24.5, "pra": 40.5, "assists": 6.5})
	if !line.Has(Points) || !line.Has(Assists) {
		t.Fatalf("expected points and assists to be set: %+v", line.ToMap())
	}
	if len(line.Categories()) != 2 {
		t.Fatalf("unexpected categories: %v", line.Categories())
	}
}

func TestLine_Only(t *testing.T) {
	t.Parallel()

	line := Zero().With(Points, 30).Only(SportsbookCategories()...)
	if line.Has(Steals) {
		t.Fatalf("steals should be dropped")
	}
	if v, _ := line.Get(Points); v != 30 {
		t.Fatalf("unexpected points: got=%v want=30", v)
	}
	if !line.HasAny(Rebounds) {
		t.Fatalf("expected rebounds to be kept")
	}
}
