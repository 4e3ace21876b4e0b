package artifact

import (
	"fmt"
	"math/big"
	"reflect"
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

// ConvertArgs turns textual arguments into the Go values abi.Arguments.Pack
// expects.
func ConvertArgs(args abi.Arguments, values []string) ([]interface{}, error) {
	if len(args) != len(values) {
		return nil, fmt.Errorf("expected %d arguments, got %d", len(args), len(values))
	}
	out := make([]interface{}, 0, len(values))
	for i, arg := range args {
		v, err := convert(arg.Type, strings.TrimSpace(values[i]))
		if err != nil {
			name := arg.Name
			if name == "" {
				name = strconv.Itoa(i)
			}
			return nil, fmt.Errorf("argument %s (%s): %w", name, arg.Type.String(), err)
		}
		out = append(out, v)
	}
	return out, nil
}

func convert(t abi.Type, value string) (interface{}, error) {
	switch t.T {
	case abi.AddressTy:
		if !common.IsHexAddress(value) {
			return nil, fmt.Errorf("invalid address %q", value)
		}
		return common.HexToAddress(value), nil
	case abi.UintTy, abi.IntTy:
		return convertInt(t, value)
	case abi.BoolTy:
		return strconv.ParseBool(value)
	case abi.StringTy:
		return value, nil
	case abi.BytesTy:
		return hexutil.Decode(value)
	case abi.FixedBytesTy:
		raw, err := hexutil.Decode(value)
		if err != nil {
			return nil, err
		}
		if len(raw) != t.Size {
			return nil, fmt.Errorf("want %d bytes, got %d", t.Size, len(raw))
		}
		arr := reflect.New(t.GetType()).Elem()
		reflect.Copy(arr, reflect.ValueOf(raw))
		return arr.Interface(), nil
	default:
		return nil, fmt.Errorf("unsupported type")
	}
}

func convertInt(t abi.Type, value string) (interface{}, error) {
	n, ok := new(big.Int).SetString(value, 0)
	if !ok {
		return nil, fmt.Errorf("invalid integer %q", value)
	}
	unsigned := t.T == abi.UintTy
	if unsigned {
		if n.Sign() < 0 {
			return nil, fmt.Errorf("negative value for unsigned type")
		}
		if n.BitLen() > t.Size {
			return nil, fmt.Errorf("value overflows uint%d", t.Size)
		}
	} else {
		limit := new(big.Int).Lsh(big.NewInt(1), uint(t.Size-1))
		if n.Cmp(limit) >= 0 || n.Cmp(new(big.Int).Neg(limit)) < 0 {
			return nil, fmt.Errorf("value overflows int%d", t.Size)
		}
	}

	switch {
	case unsigned && t.Size == 8:
		return uint8(n.Uint64()), nil
	case unsigned && t.Size == 16:
		return uint16(n.Uint64()), nil
	case unsigned && t.Size == 32:
		return uint32(n.Uint64()), nil
	case unsigned && t.Size == 64:
		return n.Uint64(), nil
	case !unsigned && t.Size == 8:
		return int8(n.Int64()), nil
	case !unsigned && t.Size == 16:
		return int16(n.Int64()), nil
	case !unsigned && t.Size == 32:
		return int32(n.Int64()), nil
	case !unsigned && t.Size == 64:
		return n.Int64(), nil
	default:
		return n, nil
	}
}
