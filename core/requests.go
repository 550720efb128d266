package core

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"unicode/utf8"
)

const (
	DefaultPage          = 0
	DefaultPageSize      = 10
	MinPageSize          = 1
	MaxPageSize          = 100
	DefaultSortDirection = SortDescending
	DefaultSortField     = SortByCreatedAt

	DefaultFragmentLength = 1000
	MinFragmentLength     = 0
	MaxFragmentLength     = 1000

	MinQueryLength = 3
	MaxQueryLength = 10000
)

const (
	PathBrowse = "/leak"
	PathSearch = "/leak/search"
	PathStats  = "/stats"
)

// OperationRequest is one validated call against the leak API.
type OperationRequest interface {
	Operation() Operation
	Path() string
	QueryParams() url.Values
	Validate() error
}

type PageOptions struct {
	Page          int
	Size          int
	SortDirection SortDirection
	SortField     SortField
}

func DefaultPageOptions() PageOptions {
	return PageOptions{
		Page:          DefaultPage,
		Size:          DefaultPageSize,
		SortDirection: DefaultSortDirection,
		SortField:     DefaultSortField,
	}
}

func (p PageOptions) Validate() error {
	if p.Page < 0 {
		return NewValidationError("page", "Page must be greater than or equal to 0")
	}
	if p.Size < MinPageSize || p.Size > MaxPageSize {
		return NewValidationError("size", fmt.Sprintf("Size must be between %d and %d", MinPageSize, MaxPageSize))
	}
	if !p.SortDirection.Valid() {
		return NewValidationError("sortDirection", fmt.Sprintf("Sort direction %q is not one of ASC, DESC", p.SortDirection))
	}
	if !p.SortField.Valid() {
		return NewValidationError("sortField", fmt.Sprintf("Sort field %q is not one of createdAt, size, name", p.SortField))
	}
	return nil
}

func (p PageOptions) apply(values url.Values) {
	values.Set("page", strconv.Itoa(p.Page))
	values.Set("size", strconv.Itoa(p.Size))
	values.Set("sortDirection", string(p.SortDirection))
	values.Set("sortField", string(p.SortField))
}

type BrowseRequest struct {
	Name   string
	Paging PageOptions
}

func NewBrowseRequest(name string, paging PageOptions) (BrowseRequest, error) {
	req := BrowseRequest{Name: name, Paging: paging}
	if err := req.Validate(); err != nil {
		return BrowseRequest{}, err
	}
	return req, nil
}

func (BrowseRequest) Operation() Operation { return OperationBrowse }

func (BrowseRequest) Path() string { return PathBrowse }

func (r BrowseRequest) Validate() error {
	return r.Paging.Validate()
}

func (r BrowseRequest) QueryParams() url.Values {
	values := url.Values{}
	if r.Name != "" {
		values.Set("name", r.Name)
	}
	r.Paging.apply(values)
	return values
}

type SearchRequest struct {
	Query     string
	Paging    PageOptions
	Highlight bool
	Length    int
}

func NewSearchRequest(query string, paging PageOptions, highlight bool, length int) (SearchRequest, error) {
	req := SearchRequest{
		Query:     query,
		Paging:    paging,
		Highlight: highlight,
		Length:    length,
	}
	if err := req.Validate(); err != nil {
		return SearchRequest{}, err
	}
	return req, nil
}

func (SearchRequest) Operation() Operation { return OperationSearch }

func (SearchRequest) Path() string { return PathSearch }

func (r SearchRequest) Validate() error {
	length := utf8.RuneCountInString(r.Query)
	if length < MinQueryLength || length > MaxQueryLength {
		return NewValidationError("query", fmt.Sprintf(
			"Search query must be between %d and %d characters long",
			MinQueryLength,
			MaxQueryLength,
		))
	}
	if err := r.Paging.Validate(); err != nil {
		return err
	}
	if r.Length < MinFragmentLength || r.Length > MaxFragmentLength {
		return NewValidationError("length", fmt.Sprintf(
			"Fragment length must be between %d and %d",
			MinFragmentLength,
			MaxFragmentLength,
		))
	}
	return nil
}

func (r SearchRequest) QueryParams() url.Values {
	values := url.Values{}
	values.Set("query", r.Query)
	r.Paging.apply(values)
	values.Set("highlight", strconv.FormatBool(r.Highlight))
	values.Set("length", strconv.Itoa(r.Length))
	return values
}

type GetRequest struct {
	LeakID string
}

func NewGetRequest(leakID string) (GetRequest, error) {
	req := GetRequest{LeakID: leakID}
	if err := req.Validate(); err != nil {
		return GetRequest{}, err
	}
	return req, nil
}

func (GetRequest) Operation() Operation { return OperationGet }

// Path substitutes the id as is; escaping is left to the HTTP layer.
func (r GetRequest) Path() string { return PathBrowse + "/" + r.LeakID }

func (r GetRequest) Validate() error {
	if strings.TrimSpace(r.LeakID) == "" {
		return NewValidationError("leakId", "Leak ID is required")
	}
	return nil
}

func (GetRequest) QueryParams() url.Values {
	return url.Values{}
}

var (
	_ OperationRequest = BrowseRequest{}
	_ OperationRequest = SearchRequest{}
	_ OperationRequest = GetRequest{}
)
