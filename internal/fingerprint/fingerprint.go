// Package fingerprint implements the Fingerprinter described in spec.md
// §4.1: a total function mapping an in-memory Go value to a short, stable,
// URL-safe digest. It dispatches on value shape the way the original
// Hamilton implementation dispatches on Python runtime type via
// functools.singledispatch; Go has no such mechanism; reflection plays the
// role single-dispatch plays in the source, with an extension registry
// (Register) standing in for @hash_value.register.
package fingerprint

import (
	"crypto/md5"  //nolint:gosec // equivalence hash, not used for authentication
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"reflect"
	"sort"
)

// unhashableDigest is the constant fallback for rule 7 ("Fallback").
const unhashableDigest = "<unhashable>"

// maxDepth bounds the recursion into composite struct field maps (rule 6).
const maxDepth = 3

// predicateHasher is one entry in the process-wide extension registry.
type predicateHasher struct {
	match func(any) bool
	hash  func(any, *Hasher) string
}

var registry []predicateHasher

// Register adds a shape-hasher ahead of the built-in dispatch chain. Hashers
// are tried in registration order, most-recently-registered first, so a
// later Register call can refine an earlier one — this mirrors the
// open-world nature of @functools.singledispatch.register in the source,
// where registering a handler for a subtype takes precedence.
//
// Registration is process-wide, matching the source's module-level registry.
func Register(predicate func(any) bool, hash func(any, *Hasher) string) {
	registry = append([]predicateHasher{{match: predicate, hash: hash}}, registry...)
}

// Hasher is passed to registered extension hashers so they can recurse back
// into the core dispatch (e.g. a tabular hasher converting rows to a map and
// then calling h.Hash on that map to get rule-3 semantics).
type Hasher struct{}

// Hash fingerprints value through the full dispatch chain, registered
// extensions included.
func (*Hasher) Hash(value any) string { return Hash(value) }

// Hash is the Fingerprinter's entry point: fingerprint(value) -> string.
// It is total and never panics; unrecognised shapes fall back to rule 7.
func Hash(value any) string {
	return hashDepth(value, 0)
}

func hashDepth(value any, depth int) string {
	if value == nil {
		return compactHash(md5.Sum([]byte("<nil>")))
	}

	for _, entry := range registry {
		if entry.match(value) {
			return entry.hash(value, &Hasher{})
		}
	}

	switch v := value.(type) {
	case string:
		return hashPrimitive(v)
	case bool:
		return hashPrimitive(fmt.Sprintf("%v", v))
	case []byte:
		return hashPrimitive(string(v))
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return hashPrimitive(fmt.Sprintf("%v", v))
	case float32, float64:
		return hashPrimitive(fmt.Sprintf("%v", v))
	}

	if s, ok := value.(Set); ok {
		return hashSet(s)
	}

	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Ptr, reflect.Interface:
		if rv.IsNil() {
			return compactHash(md5.Sum([]byte("<nil>")))
		}
		return hashDepth(rv.Elem().Interface(), depth)
	case reflect.Slice, reflect.Array:
		return hashSequence(rv)
	case reflect.Map:
		return hashMapping(rv)
	case reflect.Struct:
		if depth >= maxDepth {
			return compactHash(md5.Sum([]byte(unhashableDigest)))
		}
		return hashStruct(rv, depth)
	}

	return compactHash(md5.Sum([]byte(unhashableDigest)))
}

// hashPrimitive implements dispatch rule 1: MD5 of the canonical textual form.
func hashPrimitive(s string) string {
	return compactHash(md5.Sum([]byte(s))) //nolint:gosec
}

// hashSequence implements dispatch rule 2: order matters.
func hashSequence(rv reflect.Value) string {
	h := sha256.New224()
	for i := 0; i < rv.Len(); i++ {
		h.Write([]byte(hashDepth(rv.Index(i).Interface(), 0))) //nolint:errcheck
	}
	return compactHashBytes(h.Sum(nil))
}

// hashMapping implements dispatch rule 3: order must not matter. Entries are
// sorted by the fingerprint of their key so the traversal order is canonical
// regardless of the underlying map's (randomised) iteration order and
// regardless of whether the key type is itself orderable.
func hashMapping(rv reflect.Value) string {
	type kv struct{ keyHash, valHash string }
	pairs := make([]kv, 0, rv.Len())
	iter := rv.MapRange()
	for iter.Next() {
		pairs = append(pairs, kv{
			keyHash: hashDepth(iter.Key().Interface(), 0),
			valHash: hashDepth(iter.Value().Interface(), 0),
		})
	}
	sort.Slice(pairs, func(i, j int) bool { return pairs[i].keyHash < pairs[j].keyHash })

	h := sha256.New224()
	for _, p := range pairs {
		h.Write([]byte(p.keyHash)) //nolint:errcheck
		h.Write([]byte(p.valHash)) //nolint:errcheck
	}
	return compactHashBytes(h.Sum(nil))
}

// Set is a dedicated marker for order-independent collections (dispatch
// rule 4). Go has no builtin set type, so callers that want set semantics
// (rather than ordered-sequence semantics) wrap their values: fingerprint.Set.
type Set []any

// hashSet implements dispatch rule 4: fingerprint each element, sort the
// digests, hash the concatenation.
func hashSet(s Set) string {
	hashes := make([]string, len(s))
	for i, elem := range s {
		hashes[i] = hashDepth(elem, 0)
	}
	sort.Strings(hashes)

	h := sha256.New224()
	for _, hh := range hashes {
		h.Write([]byte(hh)) //nolint:errcheck
	}
	return compactHashBytes(h.Sum(nil))
}

// hashStruct implements dispatch rule 6: recurse into the exported field map,
// capped at maxDepth, falling through to rule 7 past the cap (handled by the
// caller before invoking this function).
func hashStruct(rv reflect.Value, depth int) string {
	rt := rv.Type()
	fields := make(map[string]any, rv.NumField())
	for i := 0; i < rv.NumField(); i++ {
		f := rt.Field(i)
		if !f.IsExported() {
			continue
		}
		fields[f.Name] = rv.Field(i).Interface()
	}

	h := sha256.New224()
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		h.Write([]byte(hashDepth(k, depth+1)))            //nolint:errcheck
		h.Write([]byte(hashDepth(fields[k], depth+1))) //nolint:errcheck
	}
	return compactHashBytes(h.Sum(nil))
}

// compactHash/compactHashBytes compact a digest into a string safe to pass
// around (URL-safe base64), exactly as the source's _compact_hash does.
func compactHash(digest [16]byte) string {
	return base64.URLEncoding.EncodeToString(digest[:])
}

func compactHashBytes(digest []byte) string {
	return base64.URLEncoding.EncodeToString(digest)
}
