package pagination

import "testing"

func TestNormalizeLimit(t *testing.T) {
	t.Parallel()
	if got := NormalizeLimit(0); got != DefaultLimit {
		t.Fatalf("expected default limit, got %d", got)
	}
	if got := NormalizeLimit(-3); got != DefaultLimit {
		t.Fatalf("expected default limit for negative input, got %d", got)
	}
	if got := NormalizeLimit(1000); got != MaxLimit {
		t.Fatalf("expected max limit cap, got %d", got)
	}
	if got := NormalizeLimit(40); got != 40 {
		t.Fatalf("expected pass-through, got %d", got)
	}
}

func TestNormalizePage(t *testing.T) {
	t.Parallel()
	if got := NormalizePage(0); got != 1 {
		t.Fatalf("expected page 1, got %d", got)
	}
	if got := NormalizePage(7); got != 7 {
		t.Fatalf("expected page 7, got %d", got)
	}
}

func TestPagingHasMore(t *testing.T) {
	t.Parallel()
	if !(Paging{Page: 1, TotalPage: 3}).HasMore() {
		t.Fatal("expected more pages when page < total_page")
	}
	if (Paging{Page: 3, TotalPage: 3}).HasMore() {
		t.Fatal("expected no more pages on the last page")
	}
	withLinks := Paging{Links: Links{Next: "/cart?page=2", Last: "/cart?page=5"}}
	if !withLinks.HasMore() {
		t.Fatal("expected more pages when next differs from last")
	}
	lastPage := Paging{Links: Links{Next: "/cart?page=5", Last: "/cart?page=5"}}
	if lastPage.HasMore() {
		t.Fatal("expected no more pages when next equals last")
	}
}
