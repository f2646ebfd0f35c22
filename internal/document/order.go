package document

// orderAllocator assigns sibling order numbers, unique within each
// (base_dir, level) group. An explicit positive order from frontmatter is
// honored when not already taken; otherwise the smallest unused positive
// integer in the group is assigned.
type orderAllocator struct {
	used map[groupKey]map[int]bool
	next map[groupKey]int
}

type groupKey struct {
	baseDir string
	level   int
}

func newOrderAllocator() *orderAllocator {
	return &orderAllocator{
		used: make(map[groupKey]map[int]bool),
		next: make(map[groupKey]int),
	}
}

// Assign returns the order for a document. explicit is the frontmatter
// order value, or 0 when absent.
func (a *orderAllocator) Assign(baseDir string, level, explicit int) int {
	key := groupKey{baseDir: baseDir, level: level}
	taken := a.used[key]
	if taken == nil {
		taken = make(map[int]bool)
		a.used[key] = taken
	}

	if explicit > 0 && !taken[explicit] {
		taken[explicit] = true
		return explicit
	}

	candidate := a.next[key]
	if candidate < 1 {
		candidate = 1
	}
	for taken[candidate] {
		candidate++
	}
	taken[candidate] = true
	a.next[key] = candidate + 1
	return candidate
}
