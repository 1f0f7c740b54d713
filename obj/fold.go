package obj

import "golang.org/x/text/cases"

// Fold returns the case folded form of s. Two strings with the same folded form
// are considered the same name.
func Fold(s string) string {
	// Casers are stateful, so one per call.
	return cases.Fold().String(s)
}

// EqualFold reports whether a and b are the same name, ignoring case.
func EqualFold(a, b string) bool {
	return Fold(a) == Fold(b)
}

// KeyFold returns the stored key of m that matches key ignoring case.
// The stored key keeps its original casing.
func KeyFold[V any](m map[string]V, key string) (string, bool) {
	if _, ok := m[key]; ok {
		return key, true
	}
	folded := Fold(key)
	for k := range m {
		if Fold(k) == folded {
			return k, true
		}
	}
	return "", false
}

// OmitFold returns a copy of m without any key that matches key ignoring case.
// The given map is not modified.
func OmitFold[V any](m map[string]V, key string) map[string]V {
	res := make(map[string]V, len(m))
	folded := Fold(key)
	for k, v := range m {
		if Fold(k) != folded {
			res[k] = v
		}
	}
	return res
}
