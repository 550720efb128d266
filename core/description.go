package core

import "math"

// PropertyType names the kind of input a host renders for a property.
type PropertyType string

const (
	PropertyString     PropertyType = "string"
	PropertyNumber     PropertyType = "number"
	PropertyBoolean    PropertyType = "boolean"
	PropertyOptions    PropertyType = "options"
	PropertyCollection PropertyType = "collection"
)

type PropertyOption struct {
	Name        string `json:"name"`
	Value       string `json:"value"`
	Description string `json:"description,omitempty"`
}

type NumberRange struct {
	Min int `json:"minValue"`
	Max int `json:"maxValue"`
}

// Property is one declared node or credential input.
type Property struct {
	Name        string           `json:"name"`
	DisplayName string           `json:"displayName"`
	Type        PropertyType     `json:"type"`
	Default     any              `json:"default,omitempty"`
	Required    bool             `json:"required,omitempty"`
	Password    bool             `json:"password,omitempty"`
	Options     []PropertyOption `json:"options,omitempty"`
	Range       *NumberRange     `json:"range,omitempty"`
	Properties  []Property       `json:"properties,omitempty"`
	// Operations limits the property to the listed operations; empty means all.
	Operations []Operation `json:"operations,omitempty"`
}

type CredentialDescription struct {
	Name       string     `json:"name"`
	TokenURL   string     `json:"tokenUrl"`
	APIURL     string     `json:"apiUrl"`
	ClientID   string     `json:"clientId"`
	TestPath   string     `json:"testPath"`
	Properties []Property `json:"properties"`
}

type NodeDescription struct {
	Name        string                `json:"name"`
	DisplayName string                `json:"displayName"`
	Resource    string                `json:"resource"`
	Credential  CredentialDescription `json:"credential"`
	Properties  []Property            `json:"properties"`
}

const CredentialName = "kaduuApi"

// Describe returns the declared parameters of the node for cfg.
func Describe(cfg Config) NodeDescription {
	paging := []Property{
		{Name: "page", DisplayName: "Page", Type: PropertyNumber, Default: DefaultPage, Range: &NumberRange{Min: DefaultPage, Max: math.MaxInt32}},
		{Name: "size", DisplayName: "Page Size", Type: PropertyNumber, Default: DefaultPageSize, Range: &NumberRange{Min: MinPageSize, Max: MaxPageSize}},
		{
			Name:        "sortDirection",
			DisplayName: "Sort Direction",
			Type:        PropertyOptions,
			Default:     string(DefaultSortDirection),
			Options: []PropertyOption{
				{Name: "Ascending", Value: string(SortAscending)},
				{Name: "Descending", Value: string(SortDescending)},
			},
		},
		{
			Name:        "sortField",
			DisplayName: "Sort Field",
			Type:        PropertyOptions,
			Default:     string(DefaultSortField),
			Options: []PropertyOption{
				{Name: "Created At", Value: string(SortByCreatedAt)},
				{Name: "Size", Value: string(SortBySize)},
				{Name: "Name", Value: string(SortByName)},
			},
		},
	}

	return NodeDescription{
		Name:        "kaduu",
		DisplayName: cfg.NodeName,
		Resource:    ResourceLeak,
		Credential: CredentialDescription{
			Name:     CredentialName,
			TokenURL: cfg.TokenURL,
			APIURL:   cfg.APIURL,
			ClientID: cfg.ClientID,
			TestPath: PathStats,
			Properties: []Property{
				{Name: "username", DisplayName: "Username", Type: PropertyString, Required: true},
				{Name: "password", DisplayName: "Password", Type: PropertyString, Required: true, Password: true},
			},
		},
		Properties: []Property{
			{
				Name:        "operation",
				DisplayName: "Operation",
				Type:        PropertyOptions,
				Default:     string(OperationBrowse),
				Required:    true,
				Options: []PropertyOption{
					{Name: "Browse", Value: string(OperationBrowse), Description: "List leaks, optionally filtered by name"},
					{Name: "Search", Value: string(OperationSearch), Description: "Full text search across leaks"},
					{Name: "Get", Value: string(OperationGet), Description: "Fetch a single leak by id"},
				},
			},
			{Name: "name", DisplayName: "Name", Type: PropertyString, Operations: []Operation{OperationBrowse}},
			{Name: "query", DisplayName: "Query", Type: PropertyString, Required: true, Operations: []Operation{OperationSearch}},
			{Name: "leakId", DisplayName: "Leak ID", Type: PropertyString, Required: true, Operations: []Operation{OperationGet}},
			{
				Name:        "additionalFields",
				DisplayName: "Additional Fields",
				Type:        PropertyCollection,
				Properties:  paging,
				Operations:  []Operation{OperationBrowse, OperationSearch},
			},
			{
				Name:        "searchOptions",
				DisplayName: "Search Options",
				Type:        PropertyCollection,
				Operations:  []Operation{OperationSearch},
				Properties: []Property{
					{Name: "highlight", DisplayName: "Highlight", Type: PropertyBoolean, Default: false},
					{Name: "length", DisplayName: "Fragment Length", Type: PropertyNumber, Default: DefaultFragmentLength, Range: &NumberRange{Min: MinFragmentLength, Max: MaxFragmentLength}},
				},
			},
		},
	}
}

// Property returns the top level property with name.
func (d NodeDescription) Property(name string) (Property, bool) {
	for _, property := range d.Properties {
		if property.Name == name {
			return property, true
		}
	}
	return Property{}, false
}
