package pagination

import "testing"

func TestNormalizeClampsInputs(t *testing.T) {
	p := Normalize(Params{Page: 0, Limit: 0})
	if p.Page != 1 || p.Limit != DefaultLimit {
		t.Fatalf("expected defaults, got %+v", p)
	}

	p = Normalize(Params{Page: 3, Limit: 500})
	if p.Limit != MaxLimit {
		t.Fatalf("expected limit capped at %d, got %d", MaxLimit, p.Limit)
	}
	if p.Page != 3 {
		t.Fatalf("expected page preserved, got %d", p.Page)
	}
}

func TestOffset(t *testing.T) {
	p := Params{Page: 3, Limit: 2}
	if p.Offset() != 4 {
		t.Fatalf("expected offset 4, got %d", p.Offset())
	}
}

func TestTotalPagesCeilingDivision(t *testing.T) {
	cases := []struct {
		total int64
		limit int
		want  int
	}{
		{0, 2, 0},
		{1, 2, 1},
		{4, 2, 2},
		{5, 2, 3},
		{100, 100, 1},
	}
	for _, tc := range cases {
		if got := TotalPages(tc.total, tc.limit); got != tc.want {
			t.Fatalf("TotalPages(%d, %d) = %d, want %d", tc.total, tc.limit, got, tc.want)
		}
	}
}

func TestNewPage(t *testing.T) {
	page := NewPage(Params{Page: 1, Limit: 2}, 5)
	if page.TotalPages != 3 || page.Total != 5 {
		t.Fatalf("unexpected page block %+v", page)
	}
}
