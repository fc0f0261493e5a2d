package abi

import (
	"fmt"
	"math"
	"math/big"
	"reflect"
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/trebuchet-org/sling/internal/domain"
)

// Encoder converts loosely typed plan arguments (strings, YAML scalars,
// addresses) into the Go values go-ethereum's ABI packer expects.
type Encoder struct{}

// NewEncoder creates a new ABI argument encoder
func NewEncoder() *Encoder {
	return &Encoder{}
}

// CheckArity verifies the argument count against the constructor, or against
// method when it is not empty
func (e *Encoder) CheckArity(artifact *domain.ContractArtifact, method string, args int) error {
	inputs, label, err := inputsFor(artifact, method)
	if err != nil {
		return err
	}
	if len(inputs) != args {
		return fmt.Errorf("%s expects %d arguments, got %d", label, len(inputs), args)
	}
	return nil
}

// EncodeConstructorArgs ABI-encodes constructor arguments as hex without 0x
// prefix, the form explorers expect
func (e *Encoder) EncodeConstructorArgs(artifact *domain.ContractArtifact, args []any) (string, error) {
	packed, err := e.PackConstructor(artifact, args)
	if err != nil {
		return "", err
	}
	return common.Bytes2Hex(packed), nil
}

// PackConstructor ABI-encodes constructor arguments
func (e *Encoder) PackConstructor(artifact *domain.ContractArtifact, args []any) ([]byte, error) {
	values, err := e.ConvertArgs(artifact, "", args)
	if err != nil {
		return nil, err
	}
	if len(values) == 0 {
		return []byte{}, nil
	}
	return artifact.ABI.Constructor.Inputs.Pack(values...)
}

// ConvertArgs converts args for the constructor, or for method when it is
// not empty
func (e *Encoder) ConvertArgs(artifact *domain.ContractArtifact, method string, args []any) ([]any, error) {
	inputs, label, err := inputsFor(artifact, method)
	if err != nil {
		return nil, err
	}
	if len(inputs) != len(args) {
		return nil, fmt.Errorf("%s expects %d arguments, got %d", label, len(inputs), len(args))
	}

	values := make([]any, len(args))
	for i, input := range inputs {
		v, err := ConvertValue(input.Type, args[i])
		if err != nil {
			name := input.Name
			if name == "" {
				name = fmt.Sprintf("#%d", i)
			}
			return nil, fmt.Errorf("%s argument %s (%s): %w", label, name, input.Type.String(), err)
		}
		values[i] = v
	}
	return values, nil
}

func inputsFor(artifact *domain.ContractArtifact, method string) (abi.Arguments, string, error) {
	if artifact == nil {
		return nil, "", fmt.Errorf("no artifact")
	}
	if method == "" {
		return artifact.ABI.Constructor.Inputs, artifact.Name + " constructor", nil
	}
	m, ok := artifact.ABI.Methods[method]
	if !ok {
		return nil, "", fmt.Errorf("method %s not found in %s ABI", method, artifact.Name)
	}
	return m.Inputs, fmt.Sprintf("%s.%s", artifact.Name, method), nil
}

// ConvertValue converts v to the Go representation of the ABI type t
func ConvertValue(t abi.Type, v any) (any, error) {
	switch t.T {
	case abi.AddressTy:
		return toAddress(v)
	case abi.BoolTy:
		return toBool(v)
	case abi.StringTy:
		if s, ok := v.(string); ok {
			return s, nil
		}
		return fmt.Sprint(v), nil
	case abi.BytesTy:
		return toBytes(v)
	case abi.FixedBytesTy:
		return toFixedBytes(t, v)
	case abi.IntTy, abi.UintTy:
		return toInteger(t, v)
	case abi.SliceTy, abi.ArrayTy:
		return toList(t, v)
	default:
		return nil, fmt.Errorf("unsupported ABI type %s", t.String())
	}
}

func toAddress(v any) (common.Address, error) {
	switch val := v.(type) {
	case common.Address:
		return val, nil
	case string:
		s := strings.TrimSpace(val)
		if !common.IsHexAddress(s) {
			return common.Address{}, fmt.Errorf("%w: %q", domain.ErrInvalidAddress, val)
		}
		return common.HexToAddress(s), nil
	default:
		return common.Address{}, fmt.Errorf("%w: %v", domain.ErrInvalidAddress, v)
	}
}

func toBool(v any) (bool, error) {
	switch val := v.(type) {
	case bool:
		return val, nil
	case string:
		return strconv.ParseBool(strings.TrimSpace(val))
	default:
		return false, fmt.Errorf("cannot use %T as bool", v)
	}
}

func toBytes(v any) ([]byte, error) {
	switch val := v.(type) {
	case []byte:
		return val, nil
	case string:
		s := strings.TrimSpace(val)
		if s == "" || s == "0x" {
			return []byte{}, nil
		}
		b, err := hexutil.Decode(s)
		if err != nil {
			return nil, fmt.Errorf("invalid hex bytes %q: %w", val, err)
		}
		return b, nil
	default:
		return nil, fmt.Errorf("cannot use %T as bytes", v)
	}
}

func toFixedBytes(t abi.Type, v any) (any, error) {
	b, err := toBytes(v)
	if err != nil {
		return nil, err
	}
	if len(b) != t.Size {
		return nil, fmt.Errorf("expected %d bytes, got %d", t.Size, len(b))
	}
	arr := reflect.New(t.GetType()).Elem()
	reflect.Copy(arr, reflect.ValueOf(b))
	return arr.Interface(), nil
}

func toInteger(t abi.Type, v any) (any, error) {
	n, err := toBigInt(v)
	if err != nil {
		return nil, err
	}

	if t.T == abi.UintTy {
		if n.Sign() < 0 {
			return nil, fmt.Errorf("negative value %s for unsigned type", n)
		}
		if n.BitLen() > t.Size {
			return nil, fmt.Errorf("value %s overflows uint%d", n, t.Size)
		}
	} else {
		limit := new(big.Int).Lsh(big.NewInt(1), uint(t.Size-1))
		if n.Cmp(limit) >= 0 || n.Cmp(new(big.Int).Neg(limit)) < 0 {
			return nil, fmt.Errorf("value %s overflows int%d", n, t.Size)
		}
	}

	rt := t.GetType()
	if rt.Kind() == reflect.Ptr {
		return n, nil
	}
	if t.T == abi.UintTy {
		return reflect.ValueOf(n.Uint64()).Convert(rt).Interface(), nil
	}
	return reflect.ValueOf(n.Int64()).Convert(rt).Interface(), nil
}

func toBigInt(v any) (*big.Int, error) {
	switch val := v.(type) {
	case *big.Int:
		return new(big.Int).Set(val), nil
	case int:
		return big.NewInt(int64(val)), nil
	case int64:
		return big.NewInt(val), nil
	case int32:
		return big.NewInt(int64(val)), nil
	case uint64:
		return new(big.Int).SetUint64(val), nil
	case uint32:
		return new(big.Int).SetUint64(uint64(val)), nil
	case float64:
		if val != math.Trunc(val) {
			return nil, fmt.Errorf("%v is not an integer", val)
		}
		n, _ := big.NewFloat(val).Int(nil)
		return n, nil
	case string:
		s := strings.ReplaceAll(strings.TrimSpace(val), "_", "")
		n, ok := new(big.Int).SetString(s, 0)
		if !ok {
			return nil, fmt.Errorf("%q is not an integer", val)
		}
		return n, nil
	default:
		return nil, fmt.Errorf("cannot use %T as integer", v)
	}
}

func toList(t abi.Type, v any) (any, error) {
	items, err := listItems(v)
	if err != nil {
		return nil, err
	}
	if t.T == abi.ArrayTy && len(items) != t.Size {
		return nil, fmt.Errorf("expected %d elements, got %d", t.Size, len(items))
	}

	var out reflect.Value
	if t.T == abi.ArrayTy {
		out = reflect.New(t.GetType()).Elem()
	} else {
		out = reflect.MakeSlice(t.GetType(), len(items), len(items))
	}

	for i, item := range items {
		converted, err := ConvertValue(*t.Elem, item)
		if err != nil {
			return nil, fmt.Errorf("element %d: %w", i, err)
		}
		out.Index(i).Set(reflect.ValueOf(converted))
	}
	return out.Interface(), nil
}

// listItems accepts []any, []string, or a bracketed comma separated string
// such as "[0xabc..., 0xdef...]"
func listItems(v any) ([]any, error) {
	switch val := v.(type) {
	case []any:
		return val, nil
	case []string:
		items := make([]any, len(val))
		for i, s := range val {
			items[i] = s
		}
		return items, nil
	case string:
		s := strings.TrimSpace(val)
		if !strings.HasPrefix(s, "[") || !strings.HasSuffix(s, "]") {
			return nil, fmt.Errorf("expected a list like [a,b], got %q", val)
		}
		s = strings.TrimSpace(s[1 : len(s)-1])
		if s == "" {
			return []any{}, nil
		}
		parts := strings.Split(s, ",")
		items := make([]any, len(parts))
		for i, p := range parts {
			items[i] = strings.Trim(strings.TrimSpace(p), `"'`)
		}
		return items, nil
	default:
		return nil, fmt.Errorf("cannot use %T as list", v)
	}
}
