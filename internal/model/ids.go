package model

import (
	"database/sql/driver"
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"
)

// Ref is a reference to another row by its remote id.
//
// Unresolved (-1) means the reference could not be resolved and must never be
// used as a real id. NoParent (0) is an explicit "no parent". Negative values
// below -1 are provisional ids of rows created locally and not yet synced.
type Ref int64

const (
	Unresolved Ref = -1
	NoParent   Ref = 0
)

// IsSet reports whether the reference points at a row.
func (r Ref) IsSet() bool {
	return r != Unresolved && r != NoParent
}

// IsProvisional reports whether the reference is a local-only id.
func (r Ref) IsProvisional() bool {
	return r < Unresolved
}

// Int64 returns the raw value.
func (r Ref) Int64() int64 {
	return int64(r)
}

func (r Ref) String() string {
	return strconv.FormatInt(int64(r), 10)
}

// ProvisionalRemoteID returns the remote id given to a locally created row.
// It is always at most -2 so it can never collide with Unresolved.
func ProvisionalRemoteID(localID int64) Ref {
	return Ref(-(localID + 1))
}

// SanitizeRef normalises a loosely typed stored value into a Ref.
// nil and empty strings become Unresolved, false (an unset many2one) and the
// literal 0 become NoParent, numbers and numeric strings become themselves.
func SanitizeRef(v any) Ref {
	switch x := v.(type) {
	case nil:
		return Unresolved
	case Ref:
		return x
	case int64:
		return Ref(x)
	case int:
		return Ref(x)
	case int32:
		return Ref(x)
	case float64:
		if math.IsNaN(x) {
			return Unresolved
		}
		return Ref(int64(x))
	case bool:
		if !x {
			return NoParent
		}
		return Unresolved
	case []byte:
		return SanitizeRef(string(x))
	case string:
		s := strings.TrimSpace(x)
		if s == "" || strings.EqualFold(s, "null") || strings.EqualFold(s, "undefined") {
			return Unresolved
		}
		if strings.EqualFold(s, "false") {
			return NoParent
		}
		if n, err := strconv.ParseInt(s, 10, 64); err == nil {
			return Ref(n)
		}
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return Ref(int64(f))
		}
		return Unresolved
	default:
		return Unresolved
	}
}

// Scan implements sql.Scanner.
func (r *Ref) Scan(src any) error {
	*r = SanitizeRef(src)
	return nil
}

// Value implements driver.Valuer. Unresolved is stored as NULL.
func (r Ref) Value() (driver.Value, error) {
	if r == Unresolved {
		return nil, nil
	}
	return int64(r), nil
}

// IDSet is an ordered set of remote ids.
type IDSet []int64

// NewIDSet builds a set keeping the first occurrence of each id.
func NewIDSet(ids ...int64) IDSet {
	var s IDSet
	for _, id := range ids {
		s = s.Add(id)
	}
	return s
}

// ParseIDSet decodes the comma delimited storage form.
func ParseIDSet(raw string) (IDSet, error) {
	var s IDSet
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid id %q in id list", part)
		}
		s = s.Add(id)
	}
	return s, nil
}

// Add appends id unless already present.
func (s IDSet) Add(id int64) IDSet {
	if s.Contains(id) {
		return s
	}
	return append(s, id)
}

// Contains reports whether id is in the set.
func (s IDSet) Contains(id int64) bool {
	return slices.Contains(s, id)
}

// Intersects reports whether any id is shared with other.
func (s IDSet) Intersects(other IDSet) bool {
	for _, id := range s {
		if other.Contains(id) {
			return true
		}
	}
	return false
}

// String encodes the set in its storage form.
func (s IDSet) String() string {
	parts := make([]string, len(s))
	for i, id := range s {
		parts[i] = strconv.FormatInt(id, 10)
	}
	return strings.Join(parts, ",")
}

// Scan implements sql.Scanner.
func (s *IDSet) Scan(src any) error {
	switch x := src.(type) {
	case nil:
		*s = nil
		return nil
	case string:
		parsed, err := ParseIDSet(x)
		if err != nil {
			return err
		}
		*s = parsed
		return nil
	case []byte:
		return s.Scan(string(x))
	case int64:
		*s = IDSet{x}
		return nil
	default:
		return fmt.Errorf("cannot scan %T into IDSet", src)
	}
}

// Value implements driver.Valuer.
func (s IDSet) Value() (driver.Value, error) {
	return s.String(), nil
}
