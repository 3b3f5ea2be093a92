package catalog

import (
	"context"
	"math"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/ashita-ai/compendium/internal/model"
	"github.com/ashita-ai/compendium/internal/storage"
)

// Field limits.
const (
	maxIndexLen = 50
	maxNameLen  = 100
	maxShortLen = 50
	maxLongLen  = 100
)

const (
	msgRequired = "This field is required."
	msgBlank    = "This field may not be blank."
	msgNull     = "This field may not be null."
)

// maxInteger is the largest value an integer column holds on every backend.
const maxInteger = math.MaxInt32

// checker merges an input payload onto an entity and collects every field
// error along the way. On create every non-nullable field is required; on
// update absent fields keep their stored value. Checks that need the store
// run against the transaction the write happens in.
//
// Store failures are remembered rather than returned so call sites stay
// linear; done reports them ahead of validation errors.
type checker struct {
	ctx    context.Context
	q      *storage.Queries
	create bool
	nulls  model.NullKeys
	v      *model.ValidationError
	err    error
}

func newChecker(ctx context.Context, q *storage.Queries, create bool, nulls model.NullKeys) *checker {
	return &checker{ctx: ctx, q: q, create: create, nulls: nulls, v: model.NewValidationError()}
}

// done returns the first store error, then the collected validation error.
func (c *checker) done() error {
	if c.err != nil {
		return c.err
	}
	return c.v.Err()
}

// missing reports whether field has no value to apply. An explicit null is
// an error on both create and update.
func (c *checker) missing(field string, present bool) bool {
	if present {
		return false
	}
	if c.nulls.IsNull(field) {
		c.v.Add(field, msgNull)
	} else if c.create {
		c.v.Add(field, msgRequired)
	}
	return true
}

// text applies a required, non-blank string. maxLen 0 means unbounded.
func (c *checker) text(field string, in *string, dst *string, maxLen int) bool {
	if c.missing(field, in != nil) {
		return false
	}
	if strings.TrimSpace(*in) == "" {
		c.v.Add(field, msgBlank)
		return false
	}
	if maxLen > 0 && utf8.RuneCountInString(*in) > maxLen {
		c.v.Addf(field, "Ensure this field has no more than %d characters.", maxLen)
		return false
	}
	*dst = *in
	return true
}

// nullableText applies a string that may be null but not blank. Absent
// leaves dst alone on update and null on create.
func (c *checker) nullableText(field string, in model.Nullable[string], dst **string, maxLen int) {
	if !in.Set {
		return
	}
	if !in.Valid {
		*dst = nil
		return
	}
	if strings.TrimSpace(in.Value) == "" {
		c.v.Add(field, msgBlank)
		return
	}
	if maxLen > 0 && utf8.RuneCountInString(in.Value) > maxLen {
		c.v.Addf(field, "Ensure this field has no more than %d characters.", maxLen)
		return
	}
	*dst = in.Ptr()
}

func (c *checker) integer(field string, in *int, dst *int, minValue int) {
	if c.missing(field, in != nil) {
		return
	}
	if *in < minValue {
		c.v.Addf(field, "Ensure this value is greater than or equal to %d.", minValue)
		return
	}
	if *in > maxInteger {
		c.v.Addf(field, "Ensure this value is less than or equal to %d.", maxInteger)
		return
	}
	*dst = *in
}

func (c *checker) boolean(field string, in *bool, dst *bool) {
	if c.missing(field, in != nil) {
		return
	}
	*dst = *in
}

// index applies the natural key and checks it is not used by another row of
// resource. self is the id of the row being updated, 0 on create.
func (c *checker) index(resource string, in *string, dst *string, self int64) {
	if !c.text("index", in, dst, maxIndexLen) || c.err != nil {
		return
	}
	taken, err := c.q.IndexTaken(c.ctx, resource, *in, self)
	if err != nil {
		c.err = err
		return
	}
	if taken {
		c.v.Add("index", duplicateIndexMessage(resource))
	}
}

// ref applies a required foreign key to a row of table.
func (c *checker) ref(field, table string, in *int64, dst *int64) {
	if c.missing(field, in != nil) || c.err != nil {
		return
	}
	missing, err := c.q.MissingIDs(c.ctx, table, []int64{*in})
	if err != nil {
		c.err = err
		return
	}
	if len(missing) > 0 {
		c.v.Add(field, invalidPK(*in))
		return
	}
	*dst = *in
}

// refs resolves a relational list. It returns nil when the field was absent
// and a non-nil (possibly empty) set otherwise, de-duplicated in submitted
// order. Every id that does not resolve is reported; the caller must not
// write anything when done reports an error.
func (c *checker) refs(field, table string, in *[]int64) []int64 {
	if in == nil {
		if c.nulls.IsNull(field) {
			c.v.Add(field, msgNull)
		}
		return nil
	}
	if c.err != nil {
		return nil
	}
	ids := dedupe(*in)
	missing, err := c.q.MissingIDs(c.ctx, table, ids)
	if err != nil {
		c.err = err
		return nil
	}
	for _, id := range missing {
		c.v.Add(field, invalidPK(id))
	}
	return ids
}

// texts applies an ordered list of non-blank strings; nil when absent.
func (c *checker) texts(field string, in *[]string) []string {
	if in == nil {
		if c.nulls.IsNull(field) {
			c.v.Add(field, msgNull)
		}
		return nil
	}
	out := make([]string, 0, len(*in))
	for _, s := range *in {
		if strings.TrimSpace(s) == "" {
			c.v.Add(field, msgBlank)
			return nil
		}
		out = append(out, s)
	}
	return out
}

func invalidPK(id int64) string {
	return `Invalid pk "` + strconv.FormatInt(id, 10) + `" - object does not exist.`
}

func dedupe(ids []int64) []int64 {
	seen := make(map[int64]bool, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}
