package sauce

import (
	"net/url"
	"strconv"
)

// Dedupe selects how the upstream API collapses duplicate results.
type Dedupe int

const (
	// DedupeDisabled performs no result deduping.
	DedupeDisabled Dedupe = 0
	// DedupeIdentifier consolidates booru results and dedupes by item identifier.
	DedupeIdentifier Dedupe = 1
	// DedupeAll applies every implemented dedupe method, such as by series name.
	DedupeAll Dedupe = 2
)

// DefaultNumResults is the result count limit used when the caller does not
// specify one.
const DefaultNumResults = 30

// Params are the caller-tunable search parameters. Optional fields are
// pointers and are omitted from the upstream call when nil.
type Params struct {
	NumResults   int
	Dedupe       Dedupe
	Database     *int
	EnabledMask  *uint64
	DisabledMask *uint64
}

// DefaultParams returns the upstream API defaults: 30 results, all dedupe
// methods enabled.
func DefaultParams() Params {
	return Params{NumResults: DefaultNumResults, Dedupe: DedupeAll}
}

// values encodes the parameters as upstream query parameters.
func (p Params) values() url.Values {
	q := url.Values{}
	q.Set("numres", strconv.Itoa(p.NumResults))
	q.Set("dedupe", strconv.Itoa(int(p.Dedupe)))
	if p.Database != nil {
		q.Set("db", strconv.Itoa(*p.Database))
	}
	if p.EnabledMask != nil {
		q.Set("dbmask", strconv.FormatUint(*p.EnabledMask, 10))
	}
	if p.DisabledMask != nil {
		q.Set("dbmaski", strconv.FormatUint(*p.DisabledMask, 10))
	}
	return q
}
