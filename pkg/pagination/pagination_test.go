package pagination

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
)

func paramsFor(t *testing.T, target string) Params {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	return FromContext(e.NewContext(req, rec))
}

func TestFromContext_Defaults(t *testing.T) {
	p := paramsFor(t, "/")
	if p.Limit != 0 || p.Offset != 0 {
		t.Errorf("expected unbounded first page, got %+v", p)
	}
	if p.Bounded() {
		t.Error("expected default params to be unbounded")
	}
}

func TestFromContext_CustomValues(t *testing.T) {
	p := paramsFor(t, "/?limit=50&offset=10")
	if p.Limit != 50 {
		t.Errorf("expected limit 50, got %d", p.Limit)
	}
	if p.Offset != 10 {
		t.Errorf("expected offset 10, got %d", p.Offset)
	}
}

func TestFromContext_MaxLimit(t *testing.T) {
	p := paramsFor(t, "/?limit=5000")
	if p.Limit != MaxLimit {
		t.Errorf("expected limit capped at %d, got %d", MaxLimit, p.Limit)
	}
}

func TestFromContext_InvalidValues(t *testing.T) {
	tests := []string{"/?offset=-5&limit=-1", "/?offset=abc&limit=xyz"}
	for _, target := range tests {
		p := paramsFor(t, target)
		if p.Offset != 0 || p.Limit != 0 {
			t.Errorf("%s: expected zero params, got %+v", target, p)
		}
	}
}

func TestPage(t *testing.T) {
	items := []int{1, 2, 3, 4, 5}

	tests := []struct {
		name string
		p    Params
		want []int
	}{
		{"unbounded", Params{}, []int{1, 2, 3, 4, 5}},
		{"first page", Params{Limit: 2}, []int{1, 2}},
		{"middle page", Params{Limit: 2, Offset: 2}, []int{3, 4}},
		{"short last page", Params{Limit: 2, Offset: 4}, []int{5}},
		{"offset only", Params{Offset: 3}, []int{4, 5}},
		{"past end", Params{Limit: 2, Offset: 9}, []int{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Page(items, tt.p)
			if len(got) != len(tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, got)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Fatalf("expected %v, got %v", tt.want, got)
				}
			}
		})
	}
}

func TestNewResponse_HasMore(t *testing.T) {
	r := NewResponse([]int{1, 2}, 5, Params{Limit: 2})
	if !r.HasMore {
		t.Error("expected has_more with 3 remaining")
	}
	r = NewResponse([]int{5}, 5, Params{Limit: 2, Offset: 4})
	if r.HasMore {
		t.Error("expected no more results on last page")
	}
	r = NewResponse([]int{1, 2, 3}, 3, Params{})
	if r.HasMore {
		t.Error("unbounded response never has more")
	}
}
