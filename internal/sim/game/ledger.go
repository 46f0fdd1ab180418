package game

import (
	"sync"

	"stellarforge.ai/internal/sim/catalogs"
)

// DefaultCapacity is used for kinds the catalog does not bound explicitly.
const DefaultCapacity = 1_000_000

// Ledger is a bounded per-faction stockpile. Amounts always satisfy
// 0 <= amount <= capacity; every mutation clamps before committing.
//
// The mutex exists for observer reads (UI polling), not for the turn
// loop: all turn-driven mutation happens on the engine goroutine.
type Ledger struct {
	mu      sync.Mutex
	owner   string
	amounts map[string]float64
	caps    map[string]float64
}

func NewLedger(owner string, cats *catalogs.Catalogs) *Ledger {
	l := &Ledger{
		owner:   owner,
		amounts: map[string]float64{},
		caps:    map[string]float64{},
	}
	if cats != nil {
		for id, def := range cats.Resources.Defs {
			l.caps[id] = def.Capacity
		}
	}
	return l
}

func (l *Ledger) Owner() string { return l.owner }

// Add credits or debits kind by amount (any sign) with a soft clamp to
// [0, capacity]. Excess is discarded, never refunded: callers must not
// assume conservation across a clamp boundary.
func (l *Ledger) Add(kind string, amount float64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.addLocked(kind, amount)
}

func (l *Ledger) addLocked(kind string, amount float64) {
	next := l.amounts[kind] + amount
	if next < 0 {
		next = 0
	}
	if limit := l.capLocked(kind); next > limit {
		next = limit
	}
	l.amounts[kind] = next
}

// Consume debits kind only if the full amount is available. On
// insufficient stock nothing changes and ErrInsufficient is returned.
func (l *Ledger) Consume(kind string, amount float64) error {
	if amount < 0 {
		return ErrInvalidQuantity
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.consumeLocked(kind, amount)
}

func (l *Ledger) consumeLocked(kind string, amount float64) error {
	if l.amounts[kind] < amount {
		return ErrInsufficient
	}
	l.amounts[kind] -= amount
	return nil
}

// TransferTo moves amount of kind into dst, all-or-nothing. A failed
// consume leaves both ledgers untouched. Locks are taken sequentially
// (consume here, add there), never nested, so no lock order applies.
func (l *Ledger) TransferTo(dst *Ledger, kind string, amount float64) error {
	if err := l.Consume(kind, amount); err != nil {
		return err
	}
	dst.Add(kind, amount)
	return nil
}

// ConsumeAll debits several kinds atomically: either every amount is
// available and all are debited, or nothing changes.
func (l *Ledger) ConsumeAll(items map[string]float64) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	for k, amt := range items {
		if amt < 0 {
			return ErrInvalidQuantity
		}
		if l.amounts[k] < amt {
			return ErrInsufficient
		}
	}
	for k, amt := range items {
		l.amounts[k] -= amt
	}
	return nil
}

// SetCapacity rebounds kind. Stock above the new capacity is destroyed,
// not refunded.
func (l *Ledger) SetCapacity(kind string, newCap float64) {
	if newCap < 0 {
		newCap = 0
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.caps[kind] = newCap
	if l.amounts[kind] > newCap {
		l.amounts[kind] = newCap
	}
}

func (l *Ledger) Amount(kind string) float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.amounts[kind]
}

func (l *Ledger) Capacity(kind string) float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.capLocked(kind)
}

func (l *Ledger) capLocked(kind string) float64 {
	if limit, ok := l.caps[kind]; ok {
		return limit
	}
	return DefaultCapacity
}

// Snapshot returns a consistent copy of all stocks. A concurrent
// transfer is either fully visible or not visible at all.
func (l *Ledger) Snapshot() map[string]float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make(map[string]float64, len(l.amounts))
	for k, v := range l.amounts {
		if v != 0 {
			out[k] = v
		}
	}
	return out
}

// CapacitiesSnapshot returns a copy of all explicit capacities.
func (l *Ledger) CapacitiesSnapshot() map[string]float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make(map[string]float64, len(l.caps))
	for k, v := range l.caps {
		out[k] = v
	}
	return out
}

// restore overwrites stock and capacities wholesale (snapshot resume).
func (l *Ledger) restore(amounts, caps map[string]float64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.amounts = map[string]float64{}
	for k, v := range amounts {
		l.amounts[k] = v
	}
	if caps != nil {
		l.caps = map[string]float64{}
		for k, v := range caps {
			l.caps[k] = v
		}
	}
}

// Clear wipes all stock. Used when the owning faction is eliminated.
func (l *Ledger) Clear() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.amounts = map[string]float64{}
}

// ScaleCapacities multiplies every known capacity by factor, clamping
// stock down where needed. Used by technology effects.
func (l *Ledger) ScaleCapacities(factor float64) {
	if factor <= 0 {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	for k, limit := range l.caps {
		next := limit * factor
		l.caps[k] = next
		if l.amounts[k] > next {
			l.amounts[k] = next
		}
	}
}
