package coordinator

import "github.com/allaspectsdev/flowcache/internal/engine"

// parsedTags is the result of interpreting a node's recognized tags
// (spec.md §6): which side-channel format to persist results under, and
// whether the node opts out of the normal cache/fingerprint path.
type parsedTags struct {
	saver           *engine.SaverKwargs
	alwaysRecompute bool
	dontFingerprint bool
}

// parseTags reads the tags the host attaches to a node and extracts the
// three recognized ones. Unrecognized tags are ignored; a cache tag whose
// value is not a string is treated as absent rather than erroring, since
// tag values are host-supplied and validation of the host's own tag schema
// is out of scope for the cache.
func parseTags(tags map[string]any) parsedTags {
	var p parsedTags

	if v, ok := tags[engine.TagCache]; ok {
		if format, ok := v.(string); ok && format != "" {
			p.saver = &engine.SaverKwargs{Format: format}
		}
	}
	if v, ok := tags[engine.TagAlwaysRecompute]; ok {
		if b, ok := v.(bool); ok {
			p.alwaysRecompute = b
		}
	}
	if v, ok := tags[engine.TagDontFingerprint]; ok {
		if b, ok := v.(bool); ok {
			p.dontFingerprint = b
		}
	}
	return p
}
