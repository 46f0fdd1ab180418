package game

import (
	"errors"
	"testing"
)

func TestLedgerAddClampsToBounds(t *testing.T) {
	l := NewLedger("F_A", testCatalogs())

	l.Add("METAL", 600)
	l.Add("METAL", 600)
	if got := l.Amount("METAL"); got != 1000 {
		t.Fatalf("overfill should clamp at capacity: got %v", got)
	}

	l.Add("METAL", -5000)
	if got := l.Amount("METAL"); got != 0 {
		t.Fatalf("overdraft should clamp at zero: got %v", got)
	}
}

func TestLedgerConsumeAllOrNothing(t *testing.T) {
	l := NewLedger("F_A", testCatalogs())
	l.Add("METAL", 50)

	if err := l.Consume("METAL", 51); !errors.Is(err, ErrInsufficient) {
		t.Fatalf("want ErrInsufficient, got %v", err)
	}
	if got := l.Amount("METAL"); got != 50 {
		t.Fatalf("failed consume must not change stock: got %v", got)
	}
	if err := l.Consume("METAL", -1); !errors.Is(err, ErrInvalidQuantity) {
		t.Fatalf("want ErrInvalidQuantity, got %v", err)
	}
	if err := l.Consume("METAL", 50); err != nil {
		t.Fatalf("full consume: %v", err)
	}
	if got := l.Amount("METAL"); got != 0 {
		t.Fatalf("got %v after consume", got)
	}
}

func TestLedgerConsumeAllAtomicity(t *testing.T) {
	l := NewLedger("F_A", testCatalogs())
	l.Add("METAL", 100)
	l.Add("FOOD", 10)

	err := l.ConsumeAll(map[string]float64{"METAL": 50, "FOOD": 20})
	if !errors.Is(err, ErrInsufficient) {
		t.Fatalf("want ErrInsufficient, got %v", err)
	}
	if l.Amount("METAL") != 100 || l.Amount("FOOD") != 10 {
		t.Fatal("partial debit leaked out of a failed ConsumeAll")
	}

	if err := l.ConsumeAll(map[string]float64{"METAL": 50, "FOOD": 10}); err != nil {
		t.Fatalf("ConsumeAll: %v", err)
	}
	if l.Amount("METAL") != 50 || l.Amount("FOOD") != 0 {
		t.Fatalf("unexpected stock after ConsumeAll: METAL=%v FOOD=%v", l.Amount("METAL"), l.Amount("FOOD"))
	}
}

func TestLedgerSetCapacityTruncates(t *testing.T) {
	l := NewLedger("F_A", testCatalogs())
	l.Add("METAL", 800)

	l.SetCapacity("METAL", 300)
	if got := l.Amount("METAL"); got != 300 {
		t.Fatalf("stock above new capacity must be destroyed: got %v", got)
	}
	if got := l.Capacity("METAL"); got != 300 {
		t.Fatalf("capacity = %v", got)
	}
}

func TestLedgerDefaultCapacityForUnknownKind(t *testing.T) {
	l := NewLedger("F_A", testCatalogs())
	if got := l.Capacity("UNLISTED"); got != DefaultCapacity {
		t.Fatalf("unknown kind capacity = %v, want %v", got, float64(DefaultCapacity))
	}
}

func TestLedgerTransferToAllOrNothing(t *testing.T) {
	cats := testCatalogs()
	src := NewLedger("F_A", cats)
	dst := NewLedger("F_B", cats)
	src.Add("METAL", 40)

	if err := src.TransferTo(dst, "METAL", 50); !errors.Is(err, ErrInsufficient) {
		t.Fatalf("want ErrInsufficient, got %v", err)
	}
	if src.Amount("METAL") != 40 || dst.Amount("METAL") != 0 {
		t.Fatal("failed transfer must leave both ledgers untouched")
	}

	if err := src.TransferTo(dst, "METAL", 40); err != nil {
		t.Fatalf("TransferTo: %v", err)
	}
	if src.Amount("METAL") != 0 || dst.Amount("METAL") != 40 {
		t.Fatalf("transfer mismatch: src=%v dst=%v", src.Amount("METAL"), dst.Amount("METAL"))
	}
}

func TestLedgerScaleCapacities(t *testing.T) {
	l := NewLedger("F_A", testCatalogs())
	l.Add("METAL", 1000)

	l.ScaleCapacities(1.25)
	if got := l.Capacity("METAL"); got != 1250 {
		t.Fatalf("capacity after scale = %v", got)
	}

	l.ScaleCapacities(0.5)
	if got := l.Capacity("METAL"); got != 625 {
		t.Fatalf("capacity after downscale = %v", got)
	}
	if got := l.Amount("METAL"); got != 625 {
		t.Fatalf("stock must clamp down with capacity: got %v", got)
	}
}

func TestLedgerSnapshotOmitsZeroes(t *testing.T) {
	l := NewLedger("F_A", testCatalogs())
	l.Add("METAL", 10)
	l.Add("FOOD", 5)
	if err := l.Consume("FOOD", 5); err != nil {
		t.Fatal(err)
	}

	snap := l.Snapshot()
	if _, ok := snap["FOOD"]; ok {
		t.Fatal("zero stock must not appear in snapshot")
	}
	if snap["METAL"] != 10 {
		t.Fatalf("snapshot METAL = %v", snap["METAL"])
	}
}
