package catalog

import "testing"

func TestTotalPages(t *testing.T) {
	cases := []struct {
		total int64
		limit int
		want  int64
	}{
		{0, 20, 0},
		{1, 20, 1},
		{20, 20, 1},
		{21, 20, 2},
		{345, 20, 18},
		{345, 1, 345},
		{5, 0, 0},
	}
	for _, c := range cases {
		if got := totalPages(c.total, c.limit); got != c.want {
			t.Errorf("totalPages(%d, %d) = %d, want %d", c.total, c.limit, got, c.want)
		}
	}
}

func TestParsePositiveInt(t *testing.T) {
	if got := parsePositiveInt("", 20); got != 20 {
		t.Errorf("empty: expected default 20, got %d", got)
	}
	if got := parsePositiveInt("0", 20); got != 20 {
		t.Errorf("zero is invalid: expected default 20, got %d", got)
	}
	if got := parsePositiveInt("-3", 20); got != 20 {
		t.Errorf("negative is invalid: expected default 20, got %d", got)
	}
	if got := parsePositiveInt("abc", 20); got != 20 {
		t.Errorf("garbage: expected default 20, got %d", got)
	}
	if got := parsePositiveInt("50", 20); got != 50 {
		t.Errorf("expected 50, got %d", got)
	}
}

func TestSplitCSV(t *testing.T) {
	got := splitCSV(" Biology, Chemistry ,,Physics ")
	want := []string{"Biology", "Chemistry", "Physics"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("index %d: got %q, want %q", i, got[i], want[i])
		}
	}

	if splitCSV("") != nil {
		t.Error("empty input should yield nil")
	}
}

func TestRecommendInputExplicit(t *testing.T) {
	if (recommendInput{}).explicit() {
		t.Error("empty input should not be explicit")
	}
	if !(recommendInput{Level: "SECONDARY"}).explicit() {
		t.Error("level alone should be explicit")
	}
	km := 5.0
	if !(recommendInput{TravelKm: &km}).explicit() {
		t.Error("travel_km alone should be explicit")
	}
	if !(recommendInput{HomePostal: "238801"}).explicit() {
		t.Error("home_postal alone should be explicit")
	}
}
