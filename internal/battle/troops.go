package battle

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// ParseTroops parses a troop list of the form "warrior:4,archer:2" into
// a kind-to-count map. Whitespace around entries is ignored. Repeated
// kinds accumulate; kinds that end up at zero are dropped.
func ParseTroops(s string) (map[UnitKind]int, error) {
	troops := make(map[UnitKind]int)
	if strings.TrimSpace(s) == "" {
		return troops, nil
	}
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		name, count, found := strings.Cut(part, ":")
		if !found {
			return nil, fmt.Errorf("battle: malformed troop entry %q, want kind:count", part)
		}
		kind, err := ParseUnitKind(strings.TrimSpace(name))
		if err != nil {
			return nil, err
		}
		n, err := strconv.Atoi(strings.TrimSpace(count))
		if err != nil || n < 0 {
			return nil, fmt.Errorf("battle: bad troop count %q for %s", count, kind)
		}
		troops[kind] += n
	}
	for kind, n := range troops {
		if n == 0 {
			delete(troops, kind)
		}
	}
	return troops, nil
}

// FormatTroops renders a troop map back into the "kind:count" list form,
// sorted by kind name for stable output.
func FormatTroops(troops map[UnitKind]int) string {
	parts := make([]string, 0, len(troops))
	for kind, n := range troops {
		parts = append(parts, fmt.Sprintf("%s:%d", kind, n))
	}
	sort.Strings(parts)
	return strings.Join(parts, ",")
}

// TroopCount sums a troop map.
func TroopCount(troops map[UnitKind]int) int {
	total := 0
	for _, n := range troops {
		total += n
	}
	return total
}
