package game

import (
	"errors"
	"math"
	"testing"

	"stellarforge.ai/internal/sim/tuning"
)

func newTestMarket() (*Market, *Ledger) {
	cats := testCatalogs()
	m := NewMarket(cats, tuning.Defaults().Market)
	l := NewLedger("F_A", cats)
	l.Add("CREDITS", 1000)
	return m, l
}

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestMarketBuyWorkedExample(t *testing.T) {
	m, l := newTestMarket()

	// 100 METAL at base 1.5, multiplier 1.0: cost 150.
	if err := m.Buy(l, "METAL", 100); err != nil {
		t.Fatalf("Buy: %v", err)
	}
	if got := l.Amount("CREDITS"); !almostEqual(got, 850) {
		t.Fatalf("credits = %v, want 850", got)
	}
	if got := l.Amount("METAL"); !almostEqual(got, 100) {
		t.Fatalf("metal = %v, want 100", got)
	}
	// Volume 100 at step 0.02 lifts the multiplier to 3.0.
	if got := m.Multiplier("METAL"); !almostEqual(got, 3.0) {
		t.Fatalf("multiplier = %v, want 3.0", got)
	}
	if got := m.Volume("METAL"); got != 100 {
		t.Fatalf("volume = %v, want 100", got)
	}
}

func TestMarketBuyMultiplierCapped(t *testing.T) {
	m, l := newTestMarket()
	l.Add("CREDITS", 999_000)

	for i := 0; i < 10; i++ {
		if err := m.Buy(l, "METAL", 50); err != nil {
			t.Fatalf("buy %d: %v", i, err)
		}
	}
	if got := m.Multiplier("METAL"); !almostEqual(got, 5.0) {
		t.Fatalf("multiplier should cap at 5.0, got %v", got)
	}
}

func TestMarketSellDecayAndFloor(t *testing.T) {
	m, l := newTestMarket()
	l.Add("METAL", 1000)

	// Each 10-unit sale multiplies by 0.9; the multiplier bottoms out
	// at 0.5 regardless of further sales.
	for i := 0; i < 20; i++ {
		if err := m.Sell(l, "METAL", 10); err != nil {
			t.Fatalf("sell %d: %v", i, err)
		}
	}
	if got := m.Multiplier("METAL"); !almostEqual(got, 0.5) {
		t.Fatalf("multiplier should floor at 0.5, got %v", got)
	}
	if got := m.Volume("METAL"); got != 0 {
		t.Fatalf("net volume should floor at 0, got %v", got)
	}
}

func TestMarketSaleQuoteIsFractionOfPurchase(t *testing.T) {
	m, _ := newTestMarket()

	buy := m.QuotePurchase("METAL", 10)
	sale := m.QuoteSale("METAL", 10)
	if !almostEqual(sale, buy*0.7) {
		t.Fatalf("sale quote %v, want %v", sale, buy*0.7)
	}
}

func TestMarketPathDependence(t *testing.T) {
	m, l := newTestMarket()

	if err := m.Buy(l, "METAL", 100); err != nil {
		t.Fatalf("Buy: %v", err)
	}
	if err := m.Sell(l, "METAL", 100); err != nil {
		t.Fatalf("Sell: %v", err)
	}
	// Buy raised the multiplier to 3.0; the equal sell decays it
	// multiplicatively (clamped to 0.5 per trade) down to 1.5, not
	// back to 1.0.
	if got := m.Multiplier("METAL"); !almostEqual(got, 1.5) {
		t.Fatalf("round trip multiplier = %v, want 1.5", got)
	}
}

func TestMarketRejectsCurrencyAndUnknownKinds(t *testing.T) {
	m, l := newTestMarket()

	if err := m.Buy(l, "CREDITS", 10); !errors.Is(err, ErrInvalidKind) {
		t.Fatalf("buying currency: want ErrInvalidKind, got %v", err)
	}
	if err := m.Sell(l, "CREDITS", 10); !errors.Is(err, ErrInvalidKind) {
		t.Fatalf("selling currency: want ErrInvalidKind, got %v", err)
	}
	if err := m.Buy(l, "PLUTONIUM", 10); !errors.Is(err, ErrInvalidKind) {
		t.Fatalf("unknown kind: want ErrInvalidKind, got %v", err)
	}
	if err := m.Buy(l, "METAL", 0); !errors.Is(err, ErrInvalidQuantity) {
		t.Fatalf("zero qty: want ErrInvalidQuantity, got %v", err)
	}
	if m.QuotePurchase("CREDITS", 10) != 0 {
		t.Fatal("currency must always quote 0")
	}
}

func TestMarketBuyInsufficientCreditsLeavesStateUntouched(t *testing.T) {
	m, l := newTestMarket()

	if err := m.Buy(l, "CRYSTAL", 200); !errors.Is(err, ErrInsufficient) {
		t.Fatalf("want ErrInsufficient, got %v", err)
	}
	if got := m.Multiplier("CRYSTAL"); !almostEqual(got, 1.0) {
		t.Fatalf("failed buy must not move the multiplier: got %v", got)
	}
	if got := l.Amount("CRYSTAL"); got != 0 {
		t.Fatalf("failed buy must not credit stock: got %v", got)
	}
}

func TestMarketPriceBoardExcludesCurrency(t *testing.T) {
	m, _ := newTestMarket()
	board := m.PriceBoard()
	if _, ok := board["CREDITS"]; ok {
		t.Fatal("currency kind must not be priced")
	}
	if !almostEqual(board["METAL"], 1.5) {
		t.Fatalf("METAL price = %v", board["METAL"])
	}
}
