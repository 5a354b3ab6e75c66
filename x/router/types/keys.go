package types

import (
	sdk "github.com/cosmos/cosmos-sdk/types"
)

// Store key prefixes
var (
	StrategyKeyPrefix      = []byte{0x01}
	CloneRecordKeyPrefix   = []byte{0x02}
	HarvestReportKeyPrefix = []byte{0x03}
	SequenceKey            = []byte{0x04}
	ReportSequenceKey      = []byte{0x05}
)

// StrategyKey returns the store key of a strategy record
func StrategyKey(addr string) []byte {
	return append(append([]byte{}, StrategyKeyPrefix...), []byte(addr)...)
}

// CloneRecordKey returns the store key of the seq-th clone record
func CloneRecordKey(seq uint64) []byte {
	return append(append([]byte{}, CloneRecordKeyPrefix...), sdk.Uint64ToBigEndian(seq)...)
}

// HarvestReportPrefix returns the prefix holding all reports of a strategy
func HarvestReportPrefix(strategy string) []byte {
	return append(append([]byte{}, HarvestReportKeyPrefix...), []byte(strategy+"/")...)
}

// HarvestReportKey orders reports of a strategy by report sequence
func HarvestReportKey(strategy string, seq uint64) []byte {
	return append(HarvestReportPrefix(strategy), sdk.Uint64ToBigEndian(seq)...)
}
