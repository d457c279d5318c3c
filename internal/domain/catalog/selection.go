package catalog

// Selection is a partial assignment of attribute keys to value ids made by
// the customer. A missing key, or an empty value, means "not chosen yet".
type Selection map[string]string

// Clone returns a copy of the selection with empty values dropped
func (s Selection) Clone() Selection {
	out := make(Selection, len(s))
	for k, v := range s {
		if v != "" {
			out[k] = v
		}
	}
	return out
}

// With returns a copy of the selection with key set to value
func (s Selection) With(key, value string) Selection {
	out := s.Clone()
	out[key] = value
	return out
}

// Without returns a copy of the selection without key
func (s Selection) Without(key string) Selection {
	out := s.Clone()
	delete(out, key)
	return out
}

// Equal reports whether both selections assign the same values
func (s Selection) Equal(other Selection) bool {
	a, b := s.Clone(), other.Clone()
	if len(a) != len(b) {
		return false
	}
	for k, v := range a {
		if b[k] != v {
			return false
		}
	}
	return true
}
