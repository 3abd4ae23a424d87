// Package cachekey implements the Context-Key Codec from spec.md §4.2: a
// fully reversible encoding of (code_version, {dep_node_name -> dep_data})
// used as the Metadata Store's lookup key. It is a direct port of the
// source's caching.py _encode_dict/_decode_dict pair (sort, interleave,
// deflate at level 3, URL-safe base64) to Go's compress/flate.
package cachekey

import (
	"bytes"
	"compress/flate"
	"encoding/base64"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/allaspectsdev/flowcache/internal/engine"
)

// noDependencySentinel is used as the dependency payload for nodes with no
// declared inputs (top-level nodes without inputs/overrides/upstream deps).
const noDependencySentinel = "<none>"

// NodeContext is the decoded form of a context key: which code version
// produced it, and the data fingerprint of every named dependency.
type NodeContext struct {
	CodeVersion  string
	Dependencies map[string]string
}

// Encode builds the context key for one node invocation from its code
// version and the fingerprints of its dependency inputs, per spec.md §4.2.
func Encode(codeVersion string, deps []engine.Fingerprint) string {
	var dependencyPayload string
	if len(deps) == 0 {
		dependencyPayload = noDependencySentinel
	} else {
		m := make(map[string]string, len(deps))
		for _, d := range deps {
			m[d.NodeName] = d.Data
		}
		dependencyPayload = encodeDict(m)
	}
	return encodeDict(map[string]string{codeVersion: dependencyPayload})
}

// Decode inverts Encode (invariant I2 / property P5): decode(encode(m)) == m.
func Decode(contextKey string) (NodeContext, error) {
	outer, err := decodeDict(contextKey)
	if err != nil {
		return NodeContext{}, fmt.Errorf("cachekey: decode context key: %w", err)
	}
	if len(outer) != 1 {
		return NodeContext{}, fmt.Errorf("cachekey: malformed context key: expected exactly one code version, got %d", len(outer))
	}

	var codeVersion, dependencyPayload string
	for k, v := range outer {
		codeVersion, dependencyPayload = k, v
	}

	if dependencyPayload == noDependencySentinel {
		return NodeContext{CodeVersion: codeVersion, Dependencies: map[string]string{}}, nil
	}

	deps, err := decodeDict(dependencyPayload)
	if err != nil {
		return NodeContext{}, fmt.Errorf("cachekey: decode dependency payload: %w", err)
	}
	return NodeContext{CodeVersion: codeVersion, Dependencies: deps}, nil
}

// encodeDict sorts a {str: str} mapping by key, interleaves keys and values
// separated by single spaces, then deflate-compresses and base64-encodes the
// result. Keys and values must be space-free (fingerprints are base64,
// node names are identifiers — both satisfy this per spec.md §4.2).
func encodeDict(m map[string]string) string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys)*2)
	for _, k := range keys {
		parts = append(parts, k, m[k])
	}
	interleaved := strings.Join(parts, " ")

	return compressString(interleaved)
}

// decodeDict inverts encodeDict.
func decodeDict(encoded string) (map[string]string, error) {
	interleaved, err := decompressString(encoded)
	if err != nil {
		return nil, err
	}

	if interleaved == "" {
		return map[string]string{}, nil
	}

	parts := strings.Split(interleaved, " ")
	if len(parts)%2 != 0 {
		return nil, fmt.Errorf("cachekey: odd number of interleaved tokens (%d)", len(parts))
	}

	m := make(map[string]string, len(parts)/2)
	for i := 0; i < len(parts); i += 2 {
		m[parts[i]] = parts[i+1]
	}
	return m, nil
}

// compressString deflates at level 3 then URL-safe-base64-encodes, mirroring
// the source's _compress_string (zlib.compress(..., level=3) + b64encode).
func compressString(s string) string {
	var buf bytes.Buffer
	w, err := flate.NewWriter(&buf, 3)
	if err != nil {
		// flate.NewWriter only errors on an out-of-range level; 3 is valid.
		panic(fmt.Sprintf("cachekey: flate.NewWriter: %v", err))
	}
	if _, err := w.Write([]byte(s)); err != nil {
		panic(fmt.Sprintf("cachekey: flate write: %v", err))
	}
	if err := w.Close(); err != nil {
		panic(fmt.Sprintf("cachekey: flate close: %v", err))
	}
	return base64.URLEncoding.EncodeToString(buf.Bytes())
}

// decompressString inverts compressString.
func decompressString(encoded string) (string, error) {
	raw, err := base64.URLEncoding.DecodeString(encoded)
	if err != nil {
		return "", fmt.Errorf("cachekey: base64 decode: %w", err)
	}

	r := flate.NewReader(bytes.NewReader(raw))
	defer r.Close()

	out, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("cachekey: flate decompress: %w", err)
	}
	return string(out), nil
}
