package artifact

import (
	"errors"
	"math/big"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const placeholder = "__$0123456789abcdef0123456789abcdef01$__"

const routerJSON = `{
  "_format": "hh-sol-artifact-1",
  "contractName": "StableSwapRouter",
  "sourceName": "contracts/StableSwapRouter.sol",
  "abi": [{"type":"constructor","inputs":[{"name":"factory","type":"address"},{"name":"info","type":"address"}]}],
  "bytecode": "0x6080` + placeholder + `00",
  "linkReferences": {
    "contracts/libraries/SmartRouterHelper.sol": {
      "SmartRouterHelper": [{"start": 2, "length": 20}]
    }
  }
}`

func TestLinkedBytecodePatchesOffsets(t *testing.T) {
	a, err := Parse([]byte(routerJSON))
	require.NoError(t, err)
	assert.Equal(t, []string{"SmartRouterHelper"}, a.Libraries())

	lib := common.HexToAddress("0x205c5D534b8848f4c399414B10Bee526Dca7a8dA")
	code, err := a.LinkedBytecode(map[string]common.Address{"SmartRouterHelper": lib})
	require.NoError(t, err)
	require.Len(t, code, 23)
	assert.Equal(t, []byte{0x60, 0x80}, code[:2])
	assert.Equal(t, lib.Bytes(), code[2:22])
	assert.Equal(t, byte(0x00), code[22])
}

func TestLinkedBytecodeQualifiedName(t *testing.T) {
	a, err := Parse([]byte(routerJSON))
	require.NoError(t, err)

	lib := common.HexToAddress("0x00000000000000000000000000000000000000aa")
	code, err := a.LinkedBytecode(map[string]common.Address{
		"contracts/libraries/SmartRouterHelper.sol:SmartRouterHelper": lib,
	})
	require.NoError(t, err)
	assert.Equal(t, lib.Bytes(), code[2:22])
}

func TestLinkedBytecodeMissingLibrary(t *testing.T) {
	a, err := Parse([]byte(routerJSON))
	require.NoError(t, err)

	_, err = a.LinkedBytecode(nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnlinkedLibrary))
}

func TestDeployDataAppendsConstructorArgs(t *testing.T) {
	a, err := Parse([]byte(routerJSON))
	require.NoError(t, err)

	libs := map[string]common.Address{"SmartRouterHelper": common.HexToAddress("0x01")}
	factory := common.HexToAddress("0x70711cb5044a21dC76501c423862b39BF4628B05")
	info := common.HexToAddress("0xec36d72EA6D6436EB0fe69C72017D43A1a79D7FB")

	data, err := a.DeployData(libs, factory, info)
	require.NoError(t, err)
	require.Len(t, data, 23+64)
	assert.Equal(t, factory.Bytes(), data[23+12:23+32])
	assert.Equal(t, info.Bytes(), data[23+44:23+64])

	_, err = a.DeployData(libs, factory)
	assert.Error(t, err)
}

func TestBytecodeObjectForm(t *testing.T) {
	doc := `{"abi": [], "bytecode": {"object": "0x6080` + placeholder + `", "linkReferences": {"src/L.sol": {"L": [{"start": 2, "length": 20}]}}}}`
	a, err := Parse([]byte(doc))
	require.NoError(t, err)
	assert.Equal(t, []string{"L"}, a.Libraries())

	code, err := a.LinkedBytecode(map[string]common.Address{"L": common.HexToAddress("0x02")})
	require.NoError(t, err)
	assert.Len(t, code, 22)
}

func TestParseRejectsEmptyBytecode(t *testing.T) {
	_, err := Parse([]byte(`{"contractName": "IThing", "abi": [], "bytecode": "0x"}`))
	assert.Error(t, err)
}

func TestConvertArgs(t *testing.T) {
	parsed, err := abi.JSON(strings.NewReader(`[{"type":"constructor","inputs":[
		{"name":"owner","type":"address"},
		{"name":"amount","type":"uint256"},
		{"name":"decimals","type":"uint8"},
		{"name":"delta","type":"int64"},
		{"name":"enabled","type":"bool"},
		{"name":"label","type":"string"},
		{"name":"salt","type":"bytes32"},
		{"name":"blob","type":"bytes"}
	]}]`))
	require.NoError(t, err)

	salt := "0x" + strings.Repeat("ab", 32)
	values, err := ConvertArgs(parsed.Constructor.Inputs, []string{
		"0x70711cb5044a21dC76501c423862b39BF4628B05",
		"1000000000000000000",
		"18",
		"-5",
		"true",
		"3Pool",
		salt,
		"0x0102",
	})
	require.NoError(t, err)

	assert.Equal(t, common.HexToAddress("0x70711cb5044a21dC76501c423862b39BF4628B05"), values[0])
	assert.Equal(t, 0, values[1].(*big.Int).Cmp(big.NewInt(1_000_000_000_000_000_000)))
	assert.Equal(t, uint8(18), values[2])
	assert.Equal(t, int64(-5), values[3])
	assert.Equal(t, true, values[4])
	assert.Equal(t, "3Pool", values[5])
	var want [32]byte
	for i := range want {
		want[i] = 0xab
	}
	assert.Equal(t, want, values[6])
	assert.Equal(t, []byte{1, 2}, values[7])

	_, err = parsed.Constructor.Inputs.Pack(values...)
	require.NoError(t, err)
}

func TestConvertArgsRejectsBadInput(t *testing.T) {
	parsed, err := abi.JSON(strings.NewReader(`[{"type":"constructor","inputs":[
		{"name":"decimals","type":"uint8"}
	]}]`))
	require.NoError(t, err)

	_, err = ConvertArgs(parsed.Constructor.Inputs, []string{"256"})
	assert.Error(t, err)
	_, err = ConvertArgs(parsed.Constructor.Inputs, []string{"-1"})
	assert.Error(t, err)
	_, err = ConvertArgs(parsed.Constructor.Inputs, nil)
	assert.Error(t, err)
}

func TestDirSourceFindsHardhatLayout(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, "contracts", "StableSwapRouter.sol")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "StableSwapRouter.json"), []byte(routerJSON), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "StableSwapRouter.dbg.json"), []byte(`{}`), 0o644))

	src := NewDirSource(root)
	a, err := src.Load("StableSwapRouter")
	require.NoError(t, err)
	assert.Equal(t, "StableSwapRouter", a.ContractName)

	again, err := src.Load("StableSwapRouter")
	require.NoError(t, err)
	assert.Same(t, a, again)

	_, err = src.Load("Missing")
	assert.Error(t, err)
}
