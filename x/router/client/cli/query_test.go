package cli

import (
	"encoding/json"
	"testing"

	"github.com/cosmos/cosmos-sdk/types/kv"

	"github.com/openalpha/yield-router/x/router/types"
)

func TestDecodeSubspace(t *testing.T) {
	first, _ := json.Marshal(types.CloneRecord{Sequence: 1, Clone: "clone1"})
	second, _ := json.Marshal(types.CloneRecord{Sequence: 2, Clone: "clone2"})
	pairs := kv.Pairs{Pairs: []kv.Pair{
		{Key: types.CloneRecordKey(1), Value: first},
		{Key: types.CloneRecordKey(2), Value: second},
	}}
	bz, err := pairs.Marshal()
	if err != nil {
		t.Fatal(err)
	}

	output, err := decodeSubspace(bz)
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	var records []types.CloneRecord
	if err := json.Unmarshal(output, &records); err != nil {
		t.Fatalf("output is not a JSON array: %v", err)
	}
	if len(records) != 2 || records[0].Clone != "clone1" || records[1].Clone != "clone2" {
		t.Errorf("unexpected records %+v", records)
	}
}

func TestDecodeSubspaceEmpty(t *testing.T) {
	output, err := decodeSubspace(nil)
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if string(output) != "[]" {
		t.Errorf("expected [], got %s", output)
	}
}

func TestDecodeSubspaceRejectsGarbage(t *testing.T) {
	if _, err := decodeSubspace([]byte{0xff, 0xff, 0xff}); err == nil {
		t.Error("expected error for malformed response")
	}
}
