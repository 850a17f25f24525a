package filesystem

import (
	"encoding/hex"
	"net/url"
	"path"
	"strings"

	"github.com/go-crypt/x/blake2b"
)

// DefaultSuffix is appended to every file name by the built-in layouts.
const DefaultSuffix = ".json"

// Layout maps keys to slash-separated paths relative to the backend root.
//
// Path must be pure: the same key always maps to the same path and two
// distinct keys never share a path. Key inverts Path for listing; it reports
// false for files that do not belong to the layout. A Layout with a nil Key
// cannot be listed.
type Layout struct {
	Path func(key string) string
	Key  func(rel string) (string, bool)
}

// NestedLayout mirrors the key namespace as directories:
// "Scheduling/Lessons" maps to "Scheduling/Lessons.json".
func NestedLayout(suffix string) Layout {
	return Layout{
		Path: func(key string) string {
			return key + suffix
		},
		Key: func(rel string) (string, bool) {
			return strings.CutSuffix(rel, suffix)
		},
	}
}

// FlatLayout stores every key as a single file in the root directory by
// escaping separators: "Scheduling/Lessons" maps to "Scheduling%2FLessons.json".
func FlatLayout(suffix string) Layout {
	return Layout{
		Path: func(key string) string {
			return url.PathEscape(key) + suffix
		},
		Key: func(rel string) (string, bool) {
			if strings.Contains(rel, "/") {
				return "", false
			}
			return unescapeName(rel, suffix)
		},
	}
}

// ShardedLayout spreads keys over depth levels of hash-named directories so
// no single directory grows too large. The file name keeps the escaped key,
// which keeps the layout listable:
// "Scheduling/Lessons" maps to "3f/a1/Scheduling%2FLessons.json" for depth 2.
func ShardedLayout(suffix string, depth int) Layout {
	depth = max(1, min(depth, maxShardDepth))
	pathOf := func(key string) string {
		sum := shardHash(key)
		parts := make([]string, 0, depth+1)
		for i := range depth {
			parts = append(parts, sum[i*2:i*2+2])
		}
		parts = append(parts, url.PathEscape(key)+suffix)
		return path.Join(parts...)
	}
	return Layout{
		Path: pathOf,
		Key: func(rel string) (string, bool) {
			key, ok := unescapeName(path.Base(rel), suffix)
			// A file in the wrong shard does not belong to the layout.
			if !ok || pathOf(key) != rel {
				return "", false
			}
			return key, true
		},
	}
}

const maxShardDepth = 8

// shardHash returns the hex BLAKE2b digest used to pick shard directories.
func shardHash(key string) string {
	h, _ := blake2b.New(maxShardDepth, nil) // one byte per shard level
	h.Write([]byte(key))
	return hex.EncodeToString(h.Sum(nil))
}

func unescapeName(name, suffix string) (string, bool) {
	escaped, ok := strings.CutSuffix(name, suffix)
	if !ok {
		return "", false
	}
	key, err := url.PathUnescape(escaped)
	if err != nil {
		return "", false
	}
	return key, true
}
