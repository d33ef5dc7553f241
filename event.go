package termfx

// Event is a decoded input event. The set of implementations is closed: Key,
// AliasedKey and Mouse
type Event interface {
	// Printable reports if the event represents text which could be
	// echoed to the screen
	Printable() bool
	// Equal reports whether the event matches other. Aliased keys match if
	// any of their members match
	Equal(other Event) bool
	String() string

	event()
}

func (Key) event()        {}
func (AliasedKey) event() {}
func (Mouse) event()      {}
