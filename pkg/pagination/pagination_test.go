package pagination

import "testing"

func TestNormalize(t *testing.T) {
	tests := []struct {
		name        string
		page, limit int
		want        Params
	}{
		{name: "defaults", want: Params{Page: 1, Limit: 10}},
		{name: "negative page", page: -4, limit: 5, want: Params{Page: 1, Limit: 5}},
		{name: "limit capped", page: 3, limit: 500, want: Params{Page: 3, Limit: 100}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Normalize(tt.page, tt.limit); got != tt.want {
				t.Fatalf("Normalize(%d, %d) = %+v, want %+v", tt.page, tt.limit, got, tt.want)
			}
		})
	}
}

func TestOffset(t *testing.T) {
	if got := (Params{Page: 3, Limit: 20}).Offset(); got != 40 {
		t.Fatalf("expected offset 40, got %d", got)
	}
	if got := (Params{}).Offset(); got != 0 {
		t.Fatalf("expected offset 0, got %d", got)
	}
}

func TestNewMeta(t *testing.T) {
	meta := NewMeta(Params{Page: 2, Limit: 10}, 25)
	if meta.TotalPages != 3 || !meta.HasMore {
		t.Fatalf("unexpected meta %+v", meta)
	}

	last := NewMeta(Params{Page: 3, Limit: 10}, 25)
	if last.HasMore {
		t.Fatalf("last page should not report more: %+v", last)
	}

	empty := NewMeta(Params{}, 0)
	if empty.TotalPages != 0 || empty.HasMore {
		t.Fatalf("unexpected empty meta %+v", empty)
	}
}

func TestParseSort(t *testing.T) {
	allowed := map[string]string{"createdAt": "created_at", "total": "total"}

	if got := ParseSort("total", "ASC", allowed, "createdAt"); got.Clause() != "total asc" {
		t.Fatalf("unexpected clause %q", got.Clause())
	}
	if got := ParseSort("password_hash", "sideways", allowed, "createdAt"); got.Clause() != "created_at desc" {
		t.Fatalf("expected fallback clause, got %q", got.Clause())
	}
}
