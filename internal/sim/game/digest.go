package game

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"hash"
	"math"
	"sort"
)

// StateDigest is a canonical sha256 over world state: factions,
// ledgers, research, market and relations in sorted order. Two games
// driven identically from the same seed must produce identical digests
// each turn; replay tooling depends on this.
func (g *Game) StateDigest() string {
	h := sha256.New()
	var tmp [8]byte

	digestWriteU64(h, &tmp, g.turn.Load())
	digestWriteI64(h, &tmp, g.cfg.Seed)
	h.Write([]byte{boolByte(g.GameOver())})
	victor, vtype := g.Result()
	digestWriteString(h, &tmp, victor)
	digestWriteString(h, &tmp, vtype)

	for _, f := range g.factionList() {
		digestWriteString(h, &tmp, f.ID)
		h.Write([]byte{boolByte(f.Eliminated), boolByte(f.Player)})
		digestWriteFloatMap(h, &tmp, f.Ledger.Snapshot())

		for _, cid := range f.colonyIDs() {
			c := f.Colonies[cid]
			digestWriteString(h, &tmp, cid)
			digestWriteString(h, &tmp, c.Planet)
			for _, b := range c.Buildings {
				digestWriteString(h, &tmp, b)
			}
		}

		ships := make([]string, 0, len(f.Ships))
		for id := range f.Ships {
			ships = append(ships, id)
		}
		sort.Strings(ships)
		for _, id := range ships {
			digestWriteString(h, &tmp, id)
			digestWriteU64(h, &tmp, uint64(f.Ships[id]))
		}

		techs := make([]string, 0, len(f.Research.Researched))
		for id := range f.Research.Researched {
			techs = append(techs, id)
		}
		sort.Strings(techs)
		for _, id := range techs {
			digestWriteString(h, &tmp, id)
		}
		digestWriteString(h, &tmp, f.Research.Current)
		digestWriteFloat(h, &tmp, f.Research.Progress)
	}

	board := g.market.PriceBoard()
	digestWriteFloatMap(h, &tmp, board)
	kinds := make([]string, 0, len(board))
	for k := range board {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)
	for _, k := range kinds {
		digestWriteI64(h, &tmp, g.market.Volume(k))
	}

	for _, r := range g.relations.Snapshot() {
		digestWriteString(h, &tmp, r.A)
		digestWriteString(h, &tmp, r.B)
		digestWriteI64(h, &tmp, int64(r.Value))
	}

	return hex.EncodeToString(h.Sum(nil))
}

func digestWriteU64(h hash.Hash, tmp *[8]byte, v uint64) {
	binary.LittleEndian.PutUint64(tmp[:], v)
	h.Write(tmp[:])
}

func digestWriteI64(h hash.Hash, tmp *[8]byte, v int64) {
	digestWriteU64(h, tmp, uint64(v))
}

func digestWriteFloat(h hash.Hash, tmp *[8]byte, v float64) {
	digestWriteU64(h, tmp, math.Float64bits(v))
}

func digestWriteString(h hash.Hash, tmp *[8]byte, s string) {
	digestWriteU64(h, tmp, uint64(len(s)))
	h.Write([]byte(s))
}

func digestWriteFloatMap(h hash.Hash, tmp *[8]byte, m map[string]float64) {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		digestWriteString(h, tmp, k)
		digestWriteFloat(h, tmp, m[k])
	}
}

func boolByte(b bool) byte {
	if b {
		return 1
	}
	return 0
}
