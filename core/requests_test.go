package core

import (
	"strings"
	"testing"
)

func TestBrowseRequest_DefaultQuery(t *testing.T) {
	req, err := NewBrowseRequest("", DefaultPageOptions())
	if err != nil {
		t.Fatalf("new browse request: %v", err)
	}
	if req.Path() != "/leak" {
		t.Fatalf("expected /leak, got %q", req.Path())
	}
	if got := req.QueryParams().Encode(); got != "page=0&size=10&sortDirection=DESC&sortField=createdAt" {
		t.Fatalf("unexpected query %q", got)
	}
}

func TestBrowseRequest_NameFilter(t *testing.T) {
	req, err := NewBrowseRequest("acme corp", DefaultPageOptions())
	if err != nil {
		t.Fatalf("new browse request: %v", err)
	}
	if got := req.QueryParams().Get("name"); got != "acme corp" {
		t.Fatalf("expected name filter, got %q", got)
	}
}

func TestPageOptions_Validate(t *testing.T) {
	tests := []struct {
		name  string
		opts  PageOptions
		field string
	}{
		{name: "negative page", opts: PageOptions{Page: -1, Size: 10, SortDirection: SortDescending, SortField: SortByName}, field: "page"},
		{name: "size zero", opts: PageOptions{Size: 0, SortDirection: SortDescending, SortField: SortByName}, field: "size"},
		{name: "size too large", opts: PageOptions{Size: 101, SortDirection: SortDescending, SortField: SortByName}, field: "size"},
		{name: "bad direction", opts: PageOptions{Size: 10, SortDirection: "UP", SortField: SortByName}, field: "sortDirection"},
		{name: "bad field", opts: PageOptions{Size: 10, SortDirection: SortAscending, SortField: "title"}, field: "sortField"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.opts.Validate()
			if !IsValidationError(err) {
				t.Fatalf("expected validation error, got %v", err)
			}
			if desc := ErrorDescription(err); !strings.HasPrefix(desc, tc.field+":") {
				t.Fatalf("expected description for field %s, got %q", tc.field, desc)
			}
		})
	}

	bounds := []PageOptions{
		{Page: 0, Size: 1, SortDirection: SortAscending, SortField: SortBySize},
		{Page: 7, Size: 100, SortDirection: SortDescending, SortField: SortByCreatedAt},
	}
	for _, opts := range bounds {
		if err := opts.Validate(); err != nil {
			t.Fatalf("expected %+v to be valid, got %v", opts, err)
		}
	}
}

func TestSearchRequest_QueryLength(t *testing.T) {
	if _, err := NewSearchRequest("ab", DefaultPageOptions(), false, DefaultFragmentLength); !IsValidationError(err) {
		t.Fatalf("expected short query to fail validation, got %v", err)
	}
	if _, err := NewSearchRequest(strings.Repeat("a", MaxQueryLength+1), DefaultPageOptions(), false, DefaultFragmentLength); !IsValidationError(err) {
		t.Fatalf("expected long query to fail validation, got %v", err)
	}
	if _, err := NewSearchRequest("abc", DefaultPageOptions(), false, DefaultFragmentLength); err != nil {
		t.Fatalf("expected 3 character query to pass, got %v", err)
	}
	if _, err := NewSearchRequest(strings.Repeat("a", MaxQueryLength), DefaultPageOptions(), false, DefaultFragmentLength); err != nil {
		t.Fatalf("expected %d character query to pass, got %v", MaxQueryLength, err)
	}
	if _, err := NewSearchRequest("äöü", DefaultPageOptions(), false, DefaultFragmentLength); err != nil {
		t.Fatalf("expected multibyte query counted in characters, got %v", err)
	}

	_, err := NewSearchRequest("ab", DefaultPageOptions(), false, DefaultFragmentLength)
	if got := ErrorMessage(err); got != "Search query must be between 3 and 10000 characters long" {
		t.Fatalf("unexpected message %q", got)
	}
}

func TestSearchRequest_FragmentLength(t *testing.T) {
	for _, length := range []int{-1, 1001} {
		if _, err := NewSearchRequest("password", DefaultPageOptions(), true, length); !IsValidationError(err) {
			t.Fatalf("expected length %d to fail validation, got %v", length, err)
		}
	}
	for _, length := range []int{0, 1000} {
		if _, err := NewSearchRequest("password", DefaultPageOptions(), true, length); err != nil {
			t.Fatalf("expected length %d to pass, got %v", length, err)
		}
	}
}

func TestSearchRequest_QueryParams(t *testing.T) {
	req, err := NewSearchRequest("example.com", DefaultPageOptions(), true, 250)
	if err != nil {
		t.Fatalf("new search request: %v", err)
	}
	if req.Path() != "/leak/search" {
		t.Fatalf("expected /leak/search, got %q", req.Path())
	}
	want := "highlight=true&length=250&page=0&query=example.com&size=10&sortDirection=DESC&sortField=createdAt"
	if got := req.QueryParams().Encode(); got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}

func TestGetRequest(t *testing.T) {
	if _, err := NewGetRequest(""); !IsValidationError(err) {
		t.Fatalf("expected empty leak id to fail validation, got %v", err)
	}
	if _, err := NewGetRequest("   "); !IsValidationError(err) {
		t.Fatalf("expected blank leak id to fail validation, got %v", err)
	}
	req, err := NewGetRequest("abc-123")
	if err != nil {
		t.Fatalf("new get request: %v", err)
	}
	if req.Path() != "/leak/abc-123" {
		t.Fatalf("expected raw id in path, got %q", req.Path())
	}
	if len(req.QueryParams()) != 0 {
		t.Fatalf("expected no query params, got %v", req.QueryParams())
	}
}
