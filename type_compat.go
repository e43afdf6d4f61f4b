package main

import (
	"errors"
	"sort"

	"github.com/Limetric/schemadump/mysqlschema"
)

// collectUnsupportedTypes returns the distinct column type keywords that
// caused skipped objects to fail, sorted.
func collectUnsupportedTypes(dump *Dump) []string {
	if dump == nil {
		return nil
	}

	seen := map[string]bool{}
	for _, s := range dump.Skipped {
		var typeErr *mysqlschema.UnsupportedTypeError
		if errors.As(s.Err, &typeErr) {
			seen[typeErr.Type] = true
		}
	}

	types := make([]string, 0, len(seen))
	for k := range seen {
		types = append(types, k)
	}
	sort.Strings(types)
	return types
}
