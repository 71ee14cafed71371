// Package kinds classifies the elements a machine executes. A kind packs its
// own id in the low byte and the ids of its bases in the higher bytes, so
// IsKind answers "is a" questions with shifts and masks.
package kinds

const (
	length   = 64
	idLength = 8
	depthMax = length / idLength
	idMask   = (1 << idLength) - 1
)

// Kind builds a kind from an id and the kinds it derives from.
func Kind(id uint64, bases ...uint64) uint64 {
	kind := id & idMask
	seen := map[uint64]struct{}{}
	for _, base := range bases {
		for j := 0; j < depthMax; j++ {
			baseID := (base >> (idLength * j)) & idMask
			if baseID == 0 {
				break
			}
			if _, ok := seen[baseID]; ok {
				continue
			}
			seen[baseID] = struct{}{}
			kind |= baseID << (idLength * len(seen))
		}
	}
	return kind
}

// IsKind reports whether kind is, or derives from, any of bases.
func IsKind(kind uint64, bases ...uint64) bool {
	for _, base := range bases {
		baseID := base & idMask
		for i := 0; i < depthMax; i++ {
			if (kind>>(idLength*i))&idMask == baseID {
				return true
			}
		}
	}
	return false
}

var (
	Behavior   = Kind(1)
	Entry      = Kind(2, Behavior)
	Exit       = Kind(3, Behavior)
	Effect     = Kind(4, Behavior)
	Guard      = Kind(5)
	Transition = Kind(6)
	Internal   = Kind(7, Transition)
	External   = Kind(8, Transition)
	Lifecycle  = Kind(9, Behavior)
	Suspend    = Kind(10, Lifecycle)
	Resume     = Kind(11, Lifecycle)
)

var names = map[uint64]string{
	Behavior:   "behavior",
	Entry:      "entry",
	Exit:       "exit",
	Effect:     "transition",
	Guard:      "guard",
	Transition: "transition",
	Internal:   "internal",
	External:   "external",
	Lifecycle:  "lifecycle",
	Suspend:    "suspend",
	Resume:     "resume",
}

// Name returns a short label for a kind, used in logs and span attributes.
func Name(kind uint64) string {
	if name, ok := names[kind]; ok {
		return name
	}
	return "unknown"
}
