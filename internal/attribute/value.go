package attribute

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// ValueType is the scalar type held by a value item
type ValueType int

const (
	DoubleType ValueType = iota
	IntType
	StringType
	BoolType
	DateTimeType
)

// String returns the string representation of the value type
func (t ValueType) String() string {
	switch t {
	case DoubleType:
		return "double"
	case IntType:
		return "int"
	case StringType:
		return "string"
	case BoolType:
		return "bool"
	case DateTimeType:
		return "datetime"
	default:
		return "unknown"
	}
}

// DateTime is a point in time with an optional named time zone
type DateTime struct {
	Time time.Time
	Zone string
}

// String serializes the value as RFC 3339 followed by ";zone" when set
func (d DateTime) String() string {
	s := d.Time.Format(time.RFC3339Nano)
	if d.Zone != "" {
		s += ";" + d.Zone
	}
	return s
}

// ParseDateTime parses the String form
func ParseDateTime(s string) (DateTime, error) {
	s = strings.TrimSpace(s)
	var zone string
	if i := strings.LastIndex(s, ";"); i >= 0 {
		zone = s[i+1:]
		s = s[:i]
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return DateTime{}, err
	}
	if zone != "" {
		if loc, lerr := time.LoadLocation(zone); lerr == nil {
			t = t.In(loc)
		}
	}
	return DateTime{Time: t, Zone: zone}, nil
}

// Equal compares instants and zone names
func (d DateTime) Equal(o DateTime) bool {
	return d.Time.Equal(o.Time) && d.Zone == o.Zone
}

// convertValue coerces v to the Go type used for t: float64, int64, string,
// bool or DateTime.
func convertValue(t ValueType, v interface{}) (interface{}, error) {
	switch t {
	case DoubleType:
		switch x := v.(type) {
		case float64:
			return x, nil
		case float32:
			return float64(x), nil
		case int:
			return float64(x), nil
		case int64:
			return float64(x), nil
		case int32:
			return float64(x), nil
		case uint:
			return float64(x), nil
		}
	case IntType:
		switch x := v.(type) {
		case int64:
			return x, nil
		case int:
			return int64(x), nil
		case int32:
			return int64(x), nil
		case uint:
			return int64(x), nil
		case uint32:
			return int64(x), nil
		case float64:
			// 1<<63 itself is out of range for int64
			if x == math.Trunc(x) && x >= -(1<<63) && x < 1<<63 {
				return int64(x), nil
			}
		}
	case StringType:
		if s, ok := v.(string); ok {
			return s, nil
		}
	case BoolType:
		if b, ok := v.(bool); ok {
			return b, nil
		}
	case DateTimeType:
		switch x := v.(type) {
		case DateTime:
			return x, nil
		case time.Time:
			return DateTime{Time: x}, nil
		}
	}
	return nil, fmt.Errorf("cannot use %T as %s", v, t)
}

// FormatValue renders a converted value in document form
func FormatValue(t ValueType, v interface{}) string {
	switch t {
	case DoubleType:
		return strconv.FormatFloat(v.(float64), 'g', -1, 64)
	case IntType:
		return strconv.FormatInt(v.(int64), 10)
	case StringType:
		return v.(string)
	case BoolType:
		return strconv.FormatBool(v.(bool))
	case DateTimeType:
		return v.(DateTime).String()
	default:
		return fmt.Sprint(v)
	}
}

// ParseValue parses document text into the Go type used for t
func ParseValue(t ValueType, s string) (interface{}, error) {
	switch t {
	case DoubleType:
		return strconv.ParseFloat(strings.TrimSpace(s), 64)
	case IntType:
		return strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	case StringType:
		return s, nil
	case BoolType:
		return strconv.ParseBool(strings.TrimSpace(s))
	case DateTimeType:
		return ParseDateTime(s)
	default:
		return nil, fmt.Errorf("unsupported value type %d", t)
	}
}

// compareValues orders two converted values of type t. Strings compare
// lexically, booleans false<true, date-times by instant.
func compareValues(t ValueType, a, b interface{}) int {
	switch t {
	case DoubleType:
		x, y := a.(float64), b.(float64)
		switch {
		case x < y:
			return -1
		case x > y:
			return 1
		}
		return 0
	case IntType:
		x, y := a.(int64), b.(int64)
		switch {
		case x < y:
			return -1
		case x > y:
			return 1
		}
		return 0
	case StringType:
		return strings.Compare(a.(string), b.(string))
	case BoolType:
		x, y := a.(bool), b.(bool)
		if x == y {
			return 0
		}
		if !x {
			return -1
		}
		return 1
	case DateTimeType:
		x, y := a.(DateTime).Time, b.(DateTime).Time
		switch {
		case x.Before(y):
			return -1
		case x.After(y):
			return 1
		}
		return 0
	}
	return 0
}

func equalValues(t ValueType, a, b interface{}) bool {
	if t == DateTimeType {
		return a.(DateTime).Equal(b.(DateTime))
	}
	return compareValues(t, a, b) == 0
}
