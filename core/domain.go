package core

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/oauth2"
)

const (
	ResourceLeak = "leak"

	MetadataKey = "_metadata"
)

type Operation string

const (
	OperationBrowse Operation = "browse"
	OperationSearch Operation = "search"
	OperationGet    Operation = "get"
)

func (o Operation) Valid() bool {
	switch o {
	case OperationBrowse, OperationSearch, OperationGet:
		return true
	default:
		return false
	}
}

type SortDirection string

const (
	SortAscending  SortDirection = "ASC"
	SortDescending SortDirection = "DESC"
)

func (d SortDirection) Valid() bool {
	return d == SortAscending || d == SortDescending
}

type SortField string

const (
	SortByCreatedAt SortField = "createdAt"
	SortBySize      SortField = "size"
	SortByName      SortField = "name"
)

func (f SortField) Valid() bool {
	switch f {
	case SortByCreatedAt, SortBySize, SortByName:
		return true
	default:
		return false
	}
}

// Credential is the operator supplied username/password pair.
type Credential struct {
	Username string
	Password string
}

func (c Credential) String() string {
	return fmt.Sprintf("Credential{Username:%q, Password:%s}", c.Username, RedactedValue)
}

func (c Credential) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("username", c.Username),
		slog.String("password", RedactedValue),
	)
}

func (c Credential) Complete() bool {
	return strings.TrimSpace(c.Username) != "" && c.Password != ""
}

// TokenData is the decoded password-grant response. Raw keeps every field
// returned by the token endpoint.
type TokenData struct {
	AccessToken  string
	TokenType    string
	RefreshToken string
	Scope        string
	ExpiresIn    int
	IssuedAt     time.Time
	Raw          map[string]any
}

func (t TokenData) String() string {
	return fmt.Sprintf("TokenData{TokenType:%q, ExpiresIn:%d, AccessToken:%s}", t.TokenType, t.ExpiresIn, RedactedValue)
}

// ExpiresAt returns the zero time when the grant response carried no
// expires_in.
func (t TokenData) ExpiresAt() time.Time {
	if t.ExpiresIn <= 0 || t.IssuedAt.IsZero() {
		return time.Time{}
	}
	return t.IssuedAt.Add(time.Duration(t.ExpiresIn) * time.Second)
}

// Expired reports whether the token is missing or expires within margin.
func (t TokenData) Expired(now time.Time, margin time.Duration) bool {
	if strings.TrimSpace(t.AccessToken) == "" {
		return true
	}
	expiresAt := t.ExpiresAt()
	if expiresAt.IsZero() {
		return false
	}
	return !expiresAt.After(now.Add(margin))
}

func (t TokenData) Clone() TokenData {
	cloned := t
	cloned.Raw = copyAnyMap(t.Raw)
	return cloned
}

func (t TokenData) OAuth2Token() *oauth2.Token {
	tokenType := t.TokenType
	if strings.TrimSpace(tokenType) == "" {
		tokenType = "Bearer"
	}
	token := &oauth2.Token{
		AccessToken:  t.AccessToken,
		TokenType:    tokenType,
		RefreshToken: t.RefreshToken,
		Expiry:       t.ExpiresAt(),
	}
	if len(t.Raw) > 0 {
		token = token.WithExtra(copyAnyMap(t.Raw))
	}
	return token
}

func TokenDataFromOAuth2(token *oauth2.Token, issuedAt time.Time) TokenData {
	if token == nil {
		return TokenData{}
	}
	out := TokenData{
		AccessToken:  token.AccessToken,
		TokenType:    token.TokenType,
		RefreshToken: token.RefreshToken,
		IssuedAt:     issuedAt.UTC(),
		Raw:          map[string]any{"access_token": token.AccessToken},
	}
	if !token.Expiry.IsZero() && token.Expiry.After(issuedAt) {
		out.ExpiresIn = int(token.Expiry.Sub(issuedAt).Seconds())
		out.Raw["expires_in"] = out.ExpiresIn
	}
	if scope, ok := token.Extra("scope").(string); ok {
		out.Scope = scope
		out.Raw["scope"] = scope
	}
	if out.TokenType != "" {
		out.Raw["token_type"] = out.TokenType
	}
	return out
}

// TokenDataFromResponse builds TokenData from a decoded grant response.
func TokenDataFromResponse(raw map[string]any, issuedAt time.Time) TokenData {
	return TokenData{
		AccessToken:  readString(raw, "access_token"),
		TokenType:    readString(raw, "token_type"),
		RefreshToken: readString(raw, "refresh_token"),
		Scope:        readString(raw, "scope"),
		ExpiresIn:    readInt(raw, "expires_in"),
		IssuedAt:     issuedAt.UTC(),
		Raw:          copyAnyMap(raw),
	}
}

type LeakRecord = map[string]any

type PageEnvelope struct {
	Content       []any
	TotalElements any
	TotalPages    any
	Number        any
	Size          any
}

// Metadata returns the pagination side channel attached to every record of
// the page. Values are passed through exactly as the API returned them.
func (p PageEnvelope) Metadata() PageMetadata {
	return PageMetadata{
		TotalElements: p.TotalElements,
		TotalPages:    p.TotalPages,
		CurrentPage:   p.Number,
		PageSize:      p.Size,
	}
}

type PageMetadata struct {
	TotalElements any `json:"totalElements"`
	TotalPages    any `json:"totalPages"`
	CurrentPage   any `json:"currentPage"`
	PageSize      any `json:"pageSize"`
}

func (m PageMetadata) Map() map[string]any {
	return map[string]any{
		"totalElements": m.TotalElements,
		"totalPages":    m.TotalPages,
		"currentPage":   m.CurrentPage,
		"pageSize":      m.PageSize,
	}
}

type OutputRecord struct {
	ItemIndex int
	JSON      map[string]any
}

// ErrorRecord replaces an item's output when continue-on-fail is enabled.
type ErrorRecord struct {
	Error       string
	Description string
	Node        string
	ItemIndex   int
}

func (r ErrorRecord) JSON() map[string]any {
	return map[string]any{
		"error":      r.Error,
		"_error":     r.Description,
		"_node":      r.Node,
		"_itemIndex": r.ItemIndex,
	}
}

func (r ErrorRecord) OutputRecord() OutputRecord {
	return OutputRecord{ItemIndex: r.ItemIndex, JSON: r.JSON()}
}

// ItemResult is the outcome of processing one input item: either the
// records it produced or the error that stopped it.
type ItemResult struct {
	Index   int
	Records []OutputRecord
	Err     error
}

func (r ItemResult) OK() bool {
	return r.Err == nil
}

func (r ItemResult) Unwrap() ([]OutputRecord, error) {
	if r.Err != nil {
		return nil, r.Err
	}
	return r.Records, nil
}

func (r ItemResult) ErrorRecord(node string) ErrorRecord {
	if r.Err == nil {
		return ErrorRecord{}
	}
	return ErrorRecord{
		Error:       ErrorMessage(r.Err),
		Description: ErrorDescription(r.Err),
		Node:        node,
		ItemIndex:   r.Index,
	}
}

type ExecuteOptions struct {
	ContinueOnFail *bool
}

func ContinueOnFail(enabled bool) ExecuteOptions {
	return ExecuteOptions{ContinueOnFail: &enabled}
}
