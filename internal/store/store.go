package store

import (
	"fmt"
	"sort"
	"strings"
)

// buildSetClause renders a SET clause from a field map with positional
// placeholders starting at firstArg. Keys are sorted for stable SQL.
func buildSetClause(fields map[string]any, firstArg int) (string, []any) {
	if len(fields) == 0 {
		return "", nil
	}
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	args := make([]any, 0, len(keys))
	for i, k := range keys {
		parts = append(parts, fmt.Sprintf("%s = $%d", k, firstArg+i))
		args = append(args, fields[k])
	}
	return strings.Join(parts, ", "), args
}
