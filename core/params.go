package core

import (
	"fmt"
	"strings"
)

// AdditionalFields are the paging and sorting options shared by browse and
// search.
type AdditionalFields struct {
	Page          *int          `json:"page,omitempty"`
	Size          *int          `json:"size,omitempty"`
	SortDirection SortDirection `json:"sortDirection,omitempty"`
	SortField     SortField     `json:"sortField,omitempty"`
}

func (f AdditionalFields) PageOptions() PageOptions {
	opts := DefaultPageOptions()
	if f.Page != nil {
		opts.Page = *f.Page
	}
	if f.Size != nil {
		opts.Size = *f.Size
	}
	if f.SortDirection != "" {
		opts.SortDirection = f.SortDirection
	}
	if f.SortField != "" {
		opts.SortField = f.SortField
	}
	return opts
}

type SearchOptions struct {
	Highlight *bool `json:"highlight,omitempty"`
	Length    *int  `json:"length,omitempty"`
}

// ItemParameters are the per-item node parameters, shaped the way a
// workflow host hands them over.
type ItemParameters struct {
	Resource         string           `json:"resource,omitempty"`
	Operation        Operation        `json:"operation"`
	Name             string           `json:"name,omitempty"`
	Query            string           `json:"query,omitempty"`
	LeakID           string           `json:"leakId,omitempty"`
	AdditionalFields AdditionalFields `json:"additionalFields,omitempty"`
	SearchOptions    SearchOptions    `json:"searchOptions,omitempty"`
}

// BuildRequest validates the parameters and returns the single request they
// describe.
func (p ItemParameters) BuildRequest() (OperationRequest, error) {
	resource := strings.TrimSpace(p.Resource)
	if resource != "" && resource != ResourceLeak {
		return nil, NewValidationError("resource", fmt.Sprintf("The resource %q is not known", resource))
	}

	switch p.Operation {
	case OperationBrowse:
		return NewBrowseRequest(p.Name, p.AdditionalFields.PageOptions())
	case OperationSearch:
		highlight := false
		if p.SearchOptions.Highlight != nil {
			highlight = *p.SearchOptions.Highlight
		}
		length := DefaultFragmentLength
		if p.SearchOptions.Length != nil {
			length = *p.SearchOptions.Length
		}
		return NewSearchRequest(p.Query, p.AdditionalFields.PageOptions(), highlight, length)
	case OperationGet:
		return NewGetRequest(p.LeakID)
	default:
		return nil, NewValidationError("operation", fmt.Sprintf("The operation %q is not known", p.Operation))
	}
}

// DecodeItemParameters reads parameters from a loosely typed map such as a
// decoded JSON item. Unknown keys are ignored.
func DecodeItemParameters(raw map[string]any) (ItemParameters, error) {
	params := ItemParameters{
		Resource:  readString(raw, "resource"),
		Operation: Operation(strings.ToLower(readString(raw, "operation"))),
		Name:      readRawString(raw, "name"),
		Query:     readRawString(raw, "query"),
		LeakID:    readString(raw, "leakId", "leak_id"),
	}

	if fields := readMap(raw, "additionalFields", "additional_fields"); len(fields) > 0 {
		page, err := readOptionalInt(fields, "page")
		if err != nil {
			return ItemParameters{}, err
		}
		size, err := readOptionalInt(fields, "size")
		if err != nil {
			return ItemParameters{}, err
		}
		params.AdditionalFields = AdditionalFields{
			Page:          page,
			Size:          size,
			SortDirection: SortDirection(strings.ToUpper(readString(fields, "sortDirection", "sort_direction"))),
			SortField:     SortField(readString(fields, "sortField", "sort_field")),
		}
	}

	if options := readMap(raw, "searchOptions", "search_options"); len(options) > 0 {
		length, err := readOptionalInt(options, "length")
		if err != nil {
			return ItemParameters{}, err
		}
		highlight, err := readOptionalBool(options, "highlight")
		if err != nil {
			return ItemParameters{}, err
		}
		params.SearchOptions = SearchOptions{Highlight: highlight, Length: length}
	}

	return params, nil
}

func (p ItemParameters) Map() map[string]any {
	out := map[string]any{
		"operation": string(p.Operation),
	}
	if p.Resource != "" {
		out["resource"] = p.Resource
	}
	if p.Name != "" {
		out["name"] = p.Name
	}
	if p.Query != "" {
		out["query"] = p.Query
	}
	if p.LeakID != "" {
		out["leakId"] = p.LeakID
	}
	fields := map[string]any{}
	if p.AdditionalFields.Page != nil {
		fields["page"] = *p.AdditionalFields.Page
	}
	if p.AdditionalFields.Size != nil {
		fields["size"] = *p.AdditionalFields.Size
	}
	if p.AdditionalFields.SortDirection != "" {
		fields["sortDirection"] = string(p.AdditionalFields.SortDirection)
	}
	if p.AdditionalFields.SortField != "" {
		fields["sortField"] = string(p.AdditionalFields.SortField)
	}
	if len(fields) > 0 {
		out["additionalFields"] = fields
	}
	options := map[string]any{}
	if p.SearchOptions.Highlight != nil {
		options["highlight"] = *p.SearchOptions.Highlight
	}
	if p.SearchOptions.Length != nil {
		options["length"] = *p.SearchOptions.Length
	}
	if len(options) > 0 {
		out["searchOptions"] = options
	}
	return out
}
