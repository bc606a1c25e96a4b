package engine

import "strconv"

// Matches reports whether every declared condition is satisfied by the event
// attributes. Empty conditions match unconditionally. Pure function, no side
// effects.
func Matches(conditions map[string]string, attributes map[string]any) bool {
	for key, expected := range conditions {
		actual, ok := attributes[key]
		if !ok {
			return false
		}
		if !coerceEqual(expected, actual) {
			return false
		}
	}
	return true
}

// coerceEqual casts the rule-authored string into the runtime type of the
// observed attribute and compares by equality. Rule conditions are authored
// as strings while event attributes may be typed (e.g. a spot id integer);
// casting toward the attribute's type avoids false negatives like "14" != 14
// without falling back to string-only comparison. A failed cast never
// matches, and neither does an attribute type we cannot cast into.
func coerceEqual(expected string, actual any) bool {
	switch a := actual.(type) {
	case string:
		return a == expected
	case bool:
		e, err := strconv.ParseBool(expected)
		return err == nil && e == a
	case int:
		e, err := strconv.ParseInt(expected, 10, 64)
		return err == nil && e == int64(a)
	case int8:
		e, err := strconv.ParseInt(expected, 10, 64)
		return err == nil && e == int64(a)
	case int16:
		e, err := strconv.ParseInt(expected, 10, 64)
		return err == nil && e == int64(a)
	case int32:
		e, err := strconv.ParseInt(expected, 10, 64)
		return err == nil && e == int64(a)
	case int64:
		e, err := strconv.ParseInt(expected, 10, 64)
		return err == nil && e == a
	case uint:
		e, err := strconv.ParseUint(expected, 10, 64)
		return err == nil && e == uint64(a)
	case uint8:
		e, err := strconv.ParseUint(expected, 10, 64)
		return err == nil && e == uint64(a)
	case uint16:
		e, err := strconv.ParseUint(expected, 10, 64)
		return err == nil && e == uint64(a)
	case uint32:
		e, err := strconv.ParseUint(expected, 10, 64)
		return err == nil && e == uint64(a)
	case uint64:
		e, err := strconv.ParseUint(expected, 10, 64)
		return err == nil && e == a
	case float32:
		e, err := strconv.ParseFloat(expected, 64)
		return err == nil && e == float64(a)
	case float64:
		e, err := strconv.ParseFloat(expected, 64)
		return err == nil && e == a
	}
	return false
}
