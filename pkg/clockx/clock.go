// Package clockx implements the CLOCK (second-chance) hand-sweep used to
// pick a victim among a caller-supplied set of candidate slot IDs.
//
// Unlike a cache eviction tracker, this Clock never removes or "forgets"
// a slot: picking a victim only reports which slot to replace and leaves
// ownership of that slot's lifecycle (freeing, reallocating) entirely to
// the caller. This matches the simulator's frame pool, where a frame
// stays allocated after being chosen as a victim until the fault handler
// evicts and frees it.
package clockx

// Clock tracks reference bits for slot IDs in [0, capacity) and sweeps a
// hand across them to pick a second-chance victim.
type Clock struct {
	ref  []bool
	hand int
}

func New(capacity int) *Clock {
	if capacity <= 0 {
		capacity = 1
	}
	return &Clock{ref: make([]bool, capacity)}
}

func (c *Clock) Capacity() int { return len(c.ref) }

// Touch sets the reference bit for id, giving it a second chance.
func (c *Clock) Touch(id int) {
	if id < 0 || id >= len(c.ref) {
		return
	}
	c.ref[id] = true
}

// ClearRef clears the reference bit for id without moving the hand.
func (c *Clock) ClearRef(id int) {
	if id < 0 || id >= len(c.ref) {
		return
	}
	c.ref[id] = false
}

// SelectVictim sweeps the hand across candidates (slot IDs, any order),
// clearing reference bits as it passes over them, and returns the first
// candidate whose reference bit was already clear. If every candidate has
// its reference bit set, the sweep gives each one exactly one second
// chance and returns the one the hand lands back on first.
//
// The hand itself always advances through the full [0, capacity) range
// regardless of which candidates were supplied, so repeated calls with
// shifting candidate sets still make forward progress.
func (c *Clock) SelectVictim(candidates []int) (int, bool) {
	if len(candidates) == 0 {
		return -1, false
	}
	inSet := make(map[int]bool, len(candidates))
	for _, id := range candidates {
		inSet[id] = true
	}

	n := len(c.ref)
	for range 2 * n {
		idx := c.hand
		c.hand = (c.hand + 1) % n
		if !inSet[idx] {
			continue
		}
		if !c.ref[idx] {
			return idx, true
		}
		c.ref[idx] = false
	}

	// Every candidate had its bit set and got one second chance; fall
	// back to the first candidate in iteration order.
	return candidates[0], true
}

// Position reports the hand's current slot index, for diagnostics.
func (c *Clock) Position() int { return c.hand }

// SetPosition forces the hand to a specific slot, e.g. when restoring
// CLOCK state for a frame pool whose capacity just changed.
func (c *Clock) SetPosition(id int) {
	if id < 0 || id >= len(c.ref) {
		id = 0
	}
	c.hand = id
}
