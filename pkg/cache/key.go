package cache

import (
	"fmt"
	"strings"

	"f1trackrenderer/pkg/model"
)

const keySuffix = ".pkl"

var raceKeyReplacer = strings.NewReplacer(" ", "_", "/", "_", `\`, "_")

// Key derives the cache entry name of a session. Race names differing only in
// case map to the same key. The key never contains a path separator.
func Key(year int, race string, st model.SessionType) string {
	raceKey := raceKeyReplacer.Replace(strings.ToLower(race))
	return fmt.Sprintf("%d_%s_%s%s", year, raceKey, strings.ToLower(string(st)), keySuffix)
}

func isKey(name string) bool {
	return strings.HasSuffix(name, keySuffix)
}

// validKey reports whether key names a plain file inside the cache dir.
func validKey(key string) bool {
	return key != "" && key != "." && key != ".." && !strings.ContainsAny(key, `/\`)
}
