// Package vaultsim holds store-backed reference simulations of the systems
// the router talks to: a bank, a V2-style outer vault and an ERC-4626 style
// inner vault. They exist so the router can be exercised end to end.
package vaultsim

import (
	"encoding/json"

	"cosmossdk.io/math"
	storetypes "cosmossdk.io/store/types"
	sdk "github.com/cosmos/cosmos-sdk/types"
	"github.com/cosmos/cosmos-sdk/types/address"
)

// StoreKey of the simulation store
const StoreKey = "vaultsim"

var (
	balanceKeyPrefix     = []byte{0x01}
	outerVaultKeyPrefix  = []byte{0x02}
	outerStrategyPrefix  = []byte{0x03}
	innerVaultKeyPrefix  = []byte{0x04}
	innerSharesKeyPrefix = []byte{0x05}
)

// Unlimited stands in for an uncapped limit
var Unlimited = math.NewIntWithDecimal(1, 60)

func key(prefix []byte, parts ...string) []byte {
	k := append([]byte{}, prefix...)
	for i, p := range parts {
		if i > 0 {
			k = append(k, '/')
		}
		k = append(k, []byte(p)...)
	}
	return k
}

// VaultAddress derives a deterministic address for a named sim vault
func VaultAddress(kind, name string) string {
	return sdk.AccAddress(address.Module(StoreKey, []byte(kind), []byte(name))).String()
}

func getJSON(store storetypes.KVStore, k []byte, v interface{}) bool {
	bz := store.Get(k)
	if bz == nil {
		return false
	}
	return json.Unmarshal(bz, v) == nil
}

func setJSON(store storetypes.KVStore, k []byte, v interface{}) {
	bz, _ := json.Marshal(v)
	store.Set(k, bz)
}

// mulDiv returns a*b/c rounded down
func mulDiv(a, b, c math.Int) math.Int {
	if c.IsZero() {
		return math.ZeroInt()
	}
	return a.Mul(b).Quo(c)
}

// mulDivUp returns a*b/c rounded up
func mulDivUp(a, b, c math.Int) math.Int {
	if c.IsZero() {
		return math.ZeroInt()
	}
	p := a.Mul(b)
	q := p.Quo(c)
	if !q.Mul(c).Equal(p) {
		q = q.AddRaw(1)
	}
	return q
}
