// Package objpath resolves dotted field paths ("address.city") against
// nested values trees.
//
// Trees are map[string]any with nested map[string]any objects. Writes never
// mutate their input: Set and Delete copy every map along the path and
// share all other branches with the original tree.
package objpath

import "strings"

// Separator splits path segments.
const Separator = "."

// Split returns the segments of path.
func Split(path string) []string {
	return strings.Split(path, Separator)
}

// Join builds a path from a prefix and a key. An empty prefix yields key.
func Join(prefix, key string) string {
	if prefix == "" {
		return key
	}
	return prefix + Separator + key
}

// Get walks path through tree. ok is false when any segment is missing or
// an intermediate value is not an object; a partial walk is never a match.
func Get(path string, tree map[string]any) (v any, ok bool) {
	if tree == nil {
		return nil, false
	}
	var cur any = tree
	for _, seg := range Split(path) {
		m, isMap := cur.(map[string]any)
		if !isMap {
			return nil, false
		}
		cur, ok = m[seg]
		if !ok {
			return nil, false
		}
	}
	return cur, true
}

// Set returns a copy of tree with v stored at path. Intermediate segments
// that are missing or not objects are replaced by new objects.
func Set(path string, tree map[string]any, v any) map[string]any {
	return write(Split(path), tree, func(m map[string]any, key string) {
		m[key] = v
	})
}

// Delete returns a copy of tree without the key at path. Parent objects
// are kept even when they become empty. Deleting a path that does not
// exist returns a shallow copy of tree.
func Delete(path string, tree map[string]any) map[string]any {
	if _, ok := Get(path, tree); !ok {
		return copyMap(tree)
	}
	return write(Split(path), tree, func(m map[string]any, key string) {
		delete(m, key)
	})
}

func write(segs []string, tree map[string]any, leaf func(map[string]any, string)) map[string]any {
	root := copyMap(tree)
	cur := root
	for i, seg := range segs {
		if i == len(segs)-1 {
			leaf(cur, seg)
			break
		}
		next, ok := cur[seg].(map[string]any)
		if ok {
			next = copyMap(next)
		} else {
			next = make(map[string]any)
		}
		cur[seg] = next
		cur = next
	}
	return root
}

func copyMap(m map[string]any) map[string]any {
	out := make(map[string]any, len(m)+1)
	for k, v := range m {
		out[k] = v
	}
	return out
}

// Flatten maps every leaf of tree to its full dotted path. Only nested
// objects are descended into; sequences and other values are leaves.
// Empty nested objects produce no entries.
func Flatten(tree map[string]any) map[string]any {
	out := make(map[string]any)
	FlattenInto(out, "", tree)
	return out
}

// FlattenInto writes the leaves of tree into dst under prefix.
func FlattenInto(dst map[string]any, prefix string, tree map[string]any) {
	for k, v := range tree {
		key := Join(prefix, k)
		if m, ok := v.(map[string]any); ok {
			FlattenInto(dst, key, m)
			continue
		}
		dst[key] = v
	}
}

// Ancestors returns the proper prefixes of path, shortest first:
// "a.b.c" -> ["a", "a.b"].
func Ancestors(path string) []string {
	segs := Split(path)
	out := make([]string, 0, len(segs)-1)
	for i := 1; i < len(segs); i++ {
		out = append(out, strings.Join(segs[:i], Separator))
	}
	return out
}

// HasPrefix reports whether path lies strictly below prefix.
func HasPrefix(path, prefix string) bool {
	return strings.HasPrefix(path, prefix+Separator)
}

// IsEmpty reports whether tree holds no keys.
func IsEmpty(tree map[string]any) bool {
	return len(tree) == 0
}
