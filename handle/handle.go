// Package handle provides the pinned identity type cells and tasks compare
// to decide ownership. A Handle's identity is its address: two Handles are
// never equal even if constructed with the same label, and a Handle must
// never be copied once in use.
package handle

import "github.com/AngleSideAngle/swiper/internal/idgen"

// Handle is an opaque, address-stable identity. Tasks embed one; cells
// store a pointer to whichever Handle most recently claimed them. The
// label is for diagnostics only and plays no part in equality.
type Handle struct {
	label string
}

// New returns a fresh Handle. An empty label is replaced with a generated
// diagnostic id so every handle prints as something distinguishable.
func New(label string) *Handle {
	if label == "" {
		label = idgen.New()
	}
	return &Handle{label: label}
}

// String returns the handle's diagnostic label.
func (h *Handle) String() string {
	if h == nil {
		return "<nil>"
	}
	return h.label
}
