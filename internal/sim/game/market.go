package game

import (
	"fmt"
	"sync"
	"sync/atomic"

	"stellarforge.ai/internal/sim/catalogs"
	"stellarforge.ai/internal/sim/tuning"
)

// Market is the global dynamic-pricing exchange between faction ledgers
// and the currency kind. Pricing is path-dependent: buys recompute the
// multiplier from absolute net volume, sells decay it multiplicatively,
// so a buy followed by an equal sell does not restore the old price.
type Market struct {
	mu sync.Mutex

	currency string
	base     map[string]float64
	mult     map[string]float64
	volume   map[string]int64

	// frozen is set at game over; trades fail, quotes stay readable.
	frozen atomic.Bool

	cfg tuning.Market
}

func NewMarket(cats *catalogs.Catalogs, cfg tuning.Market) *Market {
	m := &Market{
		currency: cats.Resources.Currency,
		base:     map[string]float64{},
		mult:     map[string]float64{},
		volume:   map[string]int64{},
		cfg:      cfg,
	}
	for id, def := range cats.Resources.Defs {
		if def.Currency {
			continue
		}
		m.base[id] = def.BasePrice
		m.mult[id] = 1.0
	}
	return m
}

func (m *Market) Currency() string { return m.currency }

// QuotePurchase prices a buy of qty units. The currency kind always
// quotes 0.
func (m *Market) QuotePurchase(kind string, qty int) float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.quotePurchaseLocked(kind, qty)
}

func (m *Market) quotePurchaseLocked(kind string, qty int) float64 {
	if kind == m.currency {
		return 0
	}
	return m.base[kind] * m.mult[kind] * float64(qty)
}

// QuoteSale prices a sale of qty units: always the configured fraction
// (0.7 by default) of the live purchase quote, never tracked separately.
func (m *Market) QuoteSale(kind string, qty int) float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.quotePurchaseLocked(kind, qty) * m.cfg.SaleRatio
}

// CurrentPrice is the live unit purchase price.
func (m *Market) CurrentPrice(kind string) float64 {
	return m.QuotePurchase(kind, 1)
}

func (m *Market) Multiplier(kind string) float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	if kind == m.currency {
		return 0
	}
	return m.mult[kind]
}

func (m *Market) Volume(kind string) int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.volume[kind]
}

func (m *Market) freeze() { m.frozen.Store(true) }

func (m *Market) checkTradable(kind string, qty int) error {
	if m.frozen.Load() {
		return ErrGameOver
	}
	if kind == m.currency {
		return fmt.Errorf("%w: %s is the currency kind", ErrInvalidKind, kind)
	}
	if _, ok := m.base[kind]; !ok {
		return fmt.Errorf("%w: %s", ErrInvalidKind, kind)
	}
	if qty <= 0 {
		return ErrInvalidQuantity
	}
	return nil
}

// Buy debits currency from l at the purchase quote, credits kind, then
// raises the multiplier from the new cumulative volume:
// mult = min(max, 1 + volume*step). Non-decreasing under repeated buys.
func (m *Market) Buy(l *Ledger, kind string, qty int) error {
	if err := m.checkTradable(kind, qty); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	cost := m.quotePurchaseLocked(kind, qty)
	if err := l.Consume(m.currency, cost); err != nil {
		return err
	}
	l.Add(kind, float64(qty))

	m.volume[kind] += int64(qty)
	next := 1.0 + float64(m.volume[kind])*m.cfg.BuyVolumeStep
	if next > m.cfg.MultiplierMax {
		next = m.cfg.MultiplierMax
	}
	m.mult[kind] = next
	return nil
}

// Sell debits qty of kind from l, credits currency at the sale quote,
// floors the cumulative volume at 0, then decays the multiplier:
// mult = max(min, mult * max(min, 1 - qty*step)). Non-increasing under
// repeated sells. Deliberately asymmetric with Buy.
func (m *Market) Sell(l *Ledger, kind string, qty int) error {
	if err := m.checkTradable(kind, qty); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := l.Consume(kind, float64(qty)); err != nil {
		return err
	}
	revenue := m.quotePurchaseLocked(kind, qty) * m.cfg.SaleRatio
	l.Add(m.currency, revenue)

	m.volume[kind] -= int64(qty)
	if m.volume[kind] < 0 {
		m.volume[kind] = 0
	}
	decay := 1.0 - float64(qty)*m.cfg.SellDecayStep
	if decay < m.cfg.MultiplierMin {
		decay = m.cfg.MultiplierMin
	}
	next := m.mult[kind] * decay
	if next < m.cfg.MultiplierMin {
		next = m.cfg.MultiplierMin
	}
	m.mult[kind] = next
	return nil
}

// PriceBoard returns a sorted snapshot of live unit prices for
// observers. The currency kind is excluded.
func (m *Market) PriceBoard() map[string]float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[string]float64, len(m.base))
	for kind := range m.base {
		out[kind] = m.base[kind] * m.mult[kind]
	}
	return out
}

// Multipliers returns a copy of the live multiplier table.
func (m *Market) Multipliers() map[string]float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[string]float64, len(m.mult))
	for k, v := range m.mult {
		out[k] = v
	}
	return out
}

// Volumes returns a copy of the net traded volume table.
func (m *Market) Volumes() map[string]int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[string]int64, len(m.volume))
	for k, v := range m.volume {
		out[k] = v
	}
	return out
}

// restore overwrites multipliers and volumes for known kinds only
// (snapshot resume). Unknown kinds in the input are ignored.
func (m *Market) restore(mult map[string]float64, volume map[string]int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for k, v := range mult {
		if _, ok := m.base[k]; ok {
			m.mult[k] = v
		}
	}
	for k, v := range volume {
		if _, ok := m.base[k]; ok {
			m.volume[k] = v
		}
	}
}
