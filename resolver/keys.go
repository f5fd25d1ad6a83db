package resolver

import "strings"

// Keys access key argument of the autoconfiguration service,
// either a single key or an ordered list of keys
type Keys struct {
	keys []string
	list bool
}

// Key returns a single key argument
func Key(key string) Keys {
	return Keys{keys: []string{key}}
}

// KeyList returns an ordered key list argument
func KeyList(keys ...string) Keys {
	ks := make([]string, len(keys))
	copy(ks, keys)
	return Keys{keys: ks, list: true}
}

// IsList reports whether the argument is a key list
func (k Keys) IsList() bool {
	return k.list
}

// Len returns the number of keys
func (k Keys) Len() int {
	return len(k.keys)
}

// First returns the first key, or an empty string
func (k Keys) First() string {
	if len(k.keys) == 0 {
		return ""
	}
	return k.keys[0]
}

// Values returns a copy of the keys
func (k Keys) Values() []string {
	out := make([]string, len(k.keys))
	copy(out, k.keys)
	return out
}

// String returns the key as inserted verbatim in a path, a list renders comma joined
func (k Keys) String() string {
	return strings.Join(k.keys, ",")
}
