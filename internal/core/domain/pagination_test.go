package domain

import (
	"math"
	"testing"
)

func TestPaginate_FiveItemsPageSizeThree(t *testing.T) {
	cases := []struct {
		page    int
		skip    int
		hasNext bool
		hasPrev bool
	}{
		{page: 1, skip: 0, hasNext: true, hasPrev: false},
		{page: 2, skip: 3, hasNext: false, hasPrev: true},
		{page: 3, skip: 0, hasNext: false, hasPrev: true},
	}

	for _, tc := range cases {
		p, skip := Paginate(5, tc.page, 3)
		if p.TotalItems != 5 || p.TotalPages != 2 {
			t.Fatalf("page %d: unexpected totals %+v", tc.page, p)
		}
		if skip != tc.skip {
			t.Fatalf("page %d: expected skip %d, got %d", tc.page, tc.skip, skip)
		}
		if p.HasNext != tc.hasNext || p.HasPrevious != tc.hasPrev {
			t.Fatalf("page %d: unexpected flags %+v", tc.page, p)
		}
		if p.CurrentPage != tc.page || p.Offset != 3 {
			t.Fatalf("page %d: unexpected echo of inputs %+v", tc.page, p)
		}
	}
}

func TestPaginate_Empty(t *testing.T) {
	p, skip := Paginate(0, 1, 10)
	if p.TotalPages != 0 || p.HasNext || p.HasPrevious || skip != 0 {
		t.Fatalf("unexpected pagination for empty set: %+v skip=%d", p, skip)
	}
}

func TestPaginate_ExactMultiple(t *testing.T) {
	p, _ := Paginate(6, 2, 3)
	if p.TotalPages != 2 || p.HasNext {
		t.Fatalf("unexpected pagination: %+v", p)
	}
}

func TestPaginate_PastLastPage(t *testing.T) {
	p, skip := Paginate(5, 3, 3)
	if p.InRange() || skip != 0 {
		t.Fatalf("page past the end should be out of range with no skip: %+v skip=%d", p, skip)
	}
	if p, _ := Paginate(5, 2, 3); !p.InRange() {
		t.Fatalf("last page should be in range: %+v", p)
	}
}

func TestPaginate_HugeOffset(t *testing.T) {
	p, skip := Paginate(5, 1, math.MaxInt)
	if p.TotalPages != 1 || !p.InRange() || p.HasNext || skip != 0 {
		t.Fatalf("unexpected pagination for huge offset: %+v skip=%d", p, skip)
	}
}

func TestPaginate_HugePage(t *testing.T) {
	p, skip := Paginate(5, math.MaxInt, 2)
	if p.TotalPages != 3 || p.InRange() || skip != 0 {
		t.Fatalf("unexpected pagination for huge page: %+v skip=%d", p, skip)
	}
	if p.HasNext || !p.HasPrevious {
		t.Fatalf("unexpected flags: %+v", p)
	}
}

func TestPaginate_HugePageAndOffset(t *testing.T) {
	p, skip := Paginate(5, math.MaxInt, math.MaxInt)
	if p.TotalPages != 1 || p.InRange() || skip != 0 {
		t.Fatalf("unexpected pagination: %+v skip=%d", p, skip)
	}
}
