package timeline

// Navigator owns the displayed month and moves between populated buckets.
// The displayed month is always one of the available buckets, or the
// fallback month while no buckets exist.
type Navigator struct {
	available []Month
	current   Month
	notify    func()
}

// NewNavigator starts on initial. notify runs on every Previous/Next call,
// including calls that do not move.
func NewNavigator(initial Month, notify func()) *Navigator {
	return &Navigator{current: initial, notify: notify}
}

// Current returns the displayed month.
func (n *Navigator) Current() Month {
	return n.current
}

// Available returns a copy of the available buckets.
func (n *Navigator) Available() []Month {
	out := make([]Month, len(n.available))
	copy(out, n.available)
	return out
}

// SetAvailable replaces the buckets. If the displayed month is no longer
// populated it moves to the closest bucket, or to fallback when no bucket
// is left. Returns true if the displayed month changed.
func (n *Navigator) SetAvailable(months []Month, fallback Month) bool {
	n.available = make([]Month, len(months))
	copy(n.available, months)

	if len(n.available) == 0 {
		return n.set(fallback)
	}
	if Contains(n.available, n.current) {
		return false
	}
	resolved, _ := ResolveClosestMonth(n.current, n.available)
	return n.set(resolved)
}

// PrevDisabled is true when no bucket lies before the displayed month.
func (n *Navigator) PrevDisabled() bool {
	if len(n.available) == 0 {
		return true
	}
	return n.current.Compare(n.available[0]) <= 0
}

// NextDisabled is true when no bucket lies after the displayed month.
func (n *Navigator) NextDisabled() bool {
	if len(n.available) == 0 {
		return true
	}
	return n.current.Compare(n.available[len(n.available)-1]) >= 0
}

// Previous jumps to the nearest bucket strictly before the displayed month.
func (n *Navigator) Previous() bool {
	n.touch()
	if n.PrevDisabled() {
		return false
	}
	for i := len(n.available) - 1; i >= 0; i-- {
		if n.available[i].Before(n.current) {
			return n.set(n.available[i])
		}
	}
	return false
}

// Next jumps to the nearest bucket strictly after the displayed month.
func (n *Navigator) Next() bool {
	n.touch()
	if n.NextDisabled() {
		return false
	}
	for _, m := range n.available {
		if m.After(n.current) {
			return n.set(m)
		}
	}
	return false
}

// JumpTo moves to the bucket closest to target. It does not notify; callers
// decide whether the jump is a user interaction.
func (n *Navigator) JumpTo(target Month) bool {
	resolved, ok := ResolveClosestMonth(target, n.available)
	if !ok {
		return false
	}
	return n.set(resolved)
}

func (n *Navigator) set(m Month) bool {
	if m == n.current {
		return false
	}
	n.current = m
	return true
}

func (n *Navigator) touch() {
	if n.notify != nil {
		n.notify()
	}
}
