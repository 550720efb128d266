package query

import (
	"github.com/goliatone/go-kaduu/core"
)

const (
	TypeBrowseLeaks = "kaduu.query.leaks.browse"
	TypeSearchLeaks = "kaduu.query.leaks.search"
	TypeGetLeak     = "kaduu.query.leaks.get"
)

type BrowseLeaksMessage struct {
	Name             string
	AdditionalFields core.AdditionalFields
}

func (BrowseLeaksMessage) Type() string { return TypeBrowseLeaks }

func (m BrowseLeaksMessage) Validate() error {
	_, err := m.Parameters().BuildRequest()
	return err
}

func (m BrowseLeaksMessage) Parameters() core.ItemParameters {
	return core.ItemParameters{
		Resource:         core.ResourceLeak,
		Operation:        core.OperationBrowse,
		Name:             m.Name,
		AdditionalFields: m.AdditionalFields,
	}
}

type SearchLeaksMessage struct {
	Query            string
	AdditionalFields core.AdditionalFields
	SearchOptions    core.SearchOptions
}

func (SearchLeaksMessage) Type() string { return TypeSearchLeaks }

func (m SearchLeaksMessage) Validate() error {
	_, err := m.Parameters().BuildRequest()
	return err
}

func (m SearchLeaksMessage) Parameters() core.ItemParameters {
	return core.ItemParameters{
		Resource:         core.ResourceLeak,
		Operation:        core.OperationSearch,
		Query:            m.Query,
		AdditionalFields: m.AdditionalFields,
		SearchOptions:    m.SearchOptions,
	}
}

type GetLeakMessage struct {
	LeakID string
}

func (GetLeakMessage) Type() string { return TypeGetLeak }

func (m GetLeakMessage) Validate() error {
	_, err := m.Parameters().BuildRequest()
	return err
}

func (m GetLeakMessage) Parameters() core.ItemParameters {
	return core.ItemParameters{
		Resource:  core.ResourceLeak,
		Operation: core.OperationGet,
		LeakID:    m.LeakID,
	}
}
