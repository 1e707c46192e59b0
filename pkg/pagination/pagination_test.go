package pagination

import "testing"

func TestNormalize(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in   Params
		want Params
	}{
		{in: Params{}, want: Params{Page: 1, Limit: DefaultLimit}},
		{in: Params{Page: -3, Limit: 5}, want: Params{Page: 1, Limit: 5}},
		{in: Params{Page: 4, Limit: 1000}, want: Params{Page: 4, Limit: MaxLimit}},
	}
	for _, tc := range cases {
		if got := tc.in.Normalize(DefaultLimit); got != tc.want {
			t.Fatalf("Normalize(%+v) = %+v, want %+v", tc.in, got, tc.want)
		}
	}

	if got := (Params{}).Normalize(DefaultOrdersLimit); got.Limit != DefaultOrdersLimit {
		t.Fatalf("expected orders default limit, got %d", got.Limit)
	}
}

func TestOffset(t *testing.T) {
	t.Parallel()

	if got := (Params{Page: 3, Limit: 12}).Offset(); got != 24 {
		t.Fatalf("expected offset 24, got %d", got)
	}
	if got := (Params{Page: 0, Limit: 12}).Offset(); got != 0 {
		t.Fatalf("expected offset 0, got %d", got)
	}
}

func TestNewPage(t *testing.T) {
	t.Parallel()

	page := NewPage(Params{Page: 2, Limit: 10}, 25)
	if page.TotalPages != 3 || !page.HasNext || !page.HasPrev || page.PerPage != 10 || page.Total != 25 {
		t.Fatalf("unexpected page %+v", page)
	}

	last := NewPage(Params{Page: 3, Limit: 10}, 25)
	if last.HasNext {
		t.Fatalf("last page should not have next: %+v", last)
	}

	empty := NewPage(Params{Page: 1, Limit: 10}, 0)
	if empty.TotalPages != 0 || empty.HasNext || empty.HasPrev {
		t.Fatalf("unexpected empty page %+v", empty)
	}
}
