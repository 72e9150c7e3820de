package oak

import (
	"sync/atomic"

	"github.com/rs/xid"
)

// OpaqueID is a stable, unique identifier used for proxy identity. It is opaque by design — callers compare it for equality and
// print it for diagnostics, nothing more — so it is backed by rs/xid the
// same way the reference asynctask manager keys its task table: cheap to
// mint, globally unique, and naturally sortable by creation time without
// needing a database.
type OpaqueID struct {
	raw xid.ID
}

// newOpaqueID mints a fresh OpaqueID.
func newOpaqueID() OpaqueID {
	return OpaqueID{raw: xid.New()}
}

// String renders the id in its canonical base32 form.
func (o OpaqueID) String() string {
	return o.raw.String()
}

// IsZero reports whether o is the zero value (never minted).
func (o OpaqueID) IsZero() bool {
	return o.raw.IsZero()
}

// TaskID identifies a managed task within a Context. It is an opaque,
// client-supplied hashable tag per the effect algebra's Operation/Cancel
// constructors — in Go terms, any comparable value. When an effect omits
// one, the Context mints a synthetic TaskID by boxing a fresh monotonic
// uint64 counter value (see idCounters.freshID), never an OpaqueID: the
// spec is explicit that these counters are 64-bit monotonic integers, not
// randomly-seeded unique tokens.
type TaskID = any

// idCounters holds the two monotonic, 64-bit counters a Context exposes:
// one for minting synthetic TaskIDs when an effect omits one, one for
// disambiguating successive tasks that reuse the same external TaskID
// (the "uid gate" that Context.removeCompleted enforces).
type idCounters struct {
	nextID  atomic.Uint64
	nextUID atomic.Uint64
}

// freshID mints the next synthetic TaskID.
func (c *idCounters) freshID() TaskID {
	return c.nextID.Add(1)
}

// freshUID mints the next task uid.
func (c *idCounters) freshUID() uint64 {
	return c.nextUID.Add(1)
}
