package abi

import (
	"math/big"
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/trebuchet-org/sling/internal/domain"
)

const minterABI = `[
	{"type":"constructor","inputs":[
		{"name":"token","type":"address"},
		{"name":"gateway","type":"address"},
		{"name":"cap","type":"uint256"}
	]},
	{"type":"function","name":"setZkTokenMinter","inputs":[{"name":"minter","type":"address"}],"outputs":[]}
]`

func mustType(t *testing.T, typ string) abi.Type {
	t.Helper()
	ty, err := abi.NewType(typ, "", nil)
	require.NoError(t, err)
	return ty
}

func minterArtifact(t *testing.T) *domain.ContractArtifact {
	t.Helper()
	parsed, err := abi.JSON(strings.NewReader(minterABI))
	require.NoError(t, err)
	return &domain.ContractArtifact{Name: "ZkCappedMinter", ABI: parsed}
}

func TestConvertValue(t *testing.T) {
	bigCap, _ := new(big.Int).SetString("100000000000000000000000000", 10)

	tests := []struct {
		name    string
		typ     string
		value   any
		want    any
		wantErr bool
	}{
		{name: "address from string", typ: "address", value: "0x69e5dc39e2bcb1c17053d2a4ee7caeaac5d36f96", want: common.HexToAddress("0x69e5DC39E2bCb1C17053d2A4ee7CAEAAc5D36f96")},
		{name: "address passthrough", typ: "address", value: common.HexToAddress("0x01"), want: common.HexToAddress("0x01")},
		{name: "bad address", typ: "address", value: "0x123", wantErr: true},
		{name: "bool from string", typ: "bool", value: "true", want: true},
		{name: "bool native", typ: "bool", value: false, want: false},
		{name: "bool garbage", typ: "bool", value: "yes please", wantErr: true},
		{name: "string", typ: "string", value: "hello", want: "hello"},
		{name: "string from number", typ: "string", value: 42, want: "42"},
		{name: "bytes", typ: "bytes", value: "0xdead", want: []byte{0xde, 0xad}},
		{name: "empty bytes", typ: "bytes", value: "0x", want: []byte{}},
		{name: "bytes4", typ: "bytes4", value: "0x01020304", want: [4]byte{1, 2, 3, 4}},
		{name: "bytes4 wrong length", typ: "bytes4", value: "0x0102", wantErr: true},
		{name: "uint256 decimal string", typ: "uint256", value: "100000000000000000000000000", want: bigCap},
		{name: "uint256 hex string", typ: "uint256", value: "0x10", want: big.NewInt(16)},
		{name: "uint8 native", typ: "uint8", value: "255", want: uint8(255)},
		{name: "uint8 overflow", typ: "uint8", value: 256, wantErr: true},
		{name: "uint64 from int64", typ: "uint64", value: int64(7), want: uint64(7)},
		{name: "uint negative", typ: "uint256", value: "-1", wantErr: true},
		{name: "int32 negative", typ: "int32", value: "-5", want: int32(-5)},
		{name: "int8 lower bound", typ: "int8", value: -128, want: int8(-128)},
		{name: "int8 overflow", typ: "int8", value: 128, wantErr: true},
		{name: "int24 uses big.Int", typ: "int24", value: "-7", want: big.NewInt(-7)},
		{name: "integer from whole float", typ: "uint256", value: float64(3), want: big.NewInt(3)},
		{name: "integer from fraction", typ: "uint256", value: 1.5, wantErr: true},
		{name: "integer garbage", typ: "uint256", value: "ten", wantErr: true},
		{
			name:  "address slice from []any",
			typ:   "address[]",
			value: []any{"0x0000000000000000000000000000000000000001", "0x0000000000000000000000000000000000000002"},
			want:  []common.Address{common.HexToAddress("0x01"), common.HexToAddress("0x02")},
		},
		{name: "uint slice from string", typ: "uint64[]", value: "[1, 2, 3]", want: []uint64{1, 2, 3}},
		{name: "empty slice from string", typ: "uint256[]", value: "[]", want: []*big.Int{}},
		{name: "fixed array", typ: "bool[2]", value: []string{"true", "false"}, want: [2]bool{true, false}},
		{name: "fixed array wrong length", typ: "bool[2]", value: []any{true}, wantErr: true},
		{name: "slice from bare string", typ: "uint8[]", value: "1,2", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ConvertValue(mustType(t, tt.typ), tt.value)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEncoder_CheckArity(t *testing.T) {
	enc := NewEncoder()
	artifact := minterArtifact(t)

	assert.NoError(t, enc.CheckArity(artifact, "", 3))
	assert.NoError(t, enc.CheckArity(artifact, "setZkTokenMinter", 1))

	err := enc.CheckArity(artifact, "", 2)
	require.Error(t, err)
	assert.Equal(t, "ZkCappedMinter constructor expects 3 arguments, got 2", err.Error())

	err = enc.CheckArity(artifact, "mint", 1)
	assert.EqualError(t, err, "method mint not found in ZkCappedMinter ABI")
}

func TestEncoder_EncodeConstructorArgs(t *testing.T) {
	enc := NewEncoder()
	artifact := minterArtifact(t)

	encoded, err := enc.EncodeConstructorArgs(artifact, []any{
		"0x69e5DC39E2bCb1C17053d2A4ee7CAEAAc5D36f96",
		"0x5FbDB2315678afecb367f032d93F642f64180aa3",
		"100000000000000000000000000",
	})
	require.NoError(t, err)

	want := "00000000000000000000000069e5dc39e2bcb1c17053d2a4ee7caeaac5d36f96" +
		"0000000000000000000000005fbdb2315678afecb367f032d93f642f64180aa3" +
		"00000000000000000000000000000000000000000052b7d2dcc80cd2e4000000"
	assert.Equal(t, want, encoded)

	t.Run("no constructor arguments", func(t *testing.T) {
		empty := &domain.ContractArtifact{Name: "SablierV2BatchLockup"}
		encoded, err := enc.EncodeConstructorArgs(empty, nil)
		require.NoError(t, err)
		assert.Empty(t, encoded)
	})

	t.Run("conversion error names the argument", func(t *testing.T) {
		_, err := enc.EncodeConstructorArgs(artifact, []any{"0x69e5DC39E2bCb1C17053d2A4ee7CAEAAc5D36f96", "nope", "1"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "argument gateway (address)")
		assert.ErrorIs(t, err, domain.ErrInvalidAddress)
	})
}

func TestEncoder_ConvertArgs_Method(t *testing.T) {
	values, err := NewEncoder().ConvertArgs(minterArtifact(t), "setZkTokenMinter", []any{"0x5fbdb2315678afecb367f032d93f642f64180aa3"})
	require.NoError(t, err)
	assert.Equal(t, []any{common.HexToAddress("0x5FbDB2315678afecb367f032d93F642f64180aa3")}, values)
}
