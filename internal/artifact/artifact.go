// Package artifact loads compiled contract artifacts and prepares deployment
// payloads from them.
package artifact

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

// ErrUnlinkedLibrary is returned when bytecode references a library that has
// no address.
var ErrUnlinkedLibrary = errors.New("unlinked library")

// Artifact is a compiled contract as emitted by Hardhat or Foundry.
type Artifact struct {
	ContractName   string          `json:"contractName"`
	SourceName     string          `json:"sourceName,omitempty"`
	ABI            json.RawMessage `json:"abi"`
	Bytecode       Bytecode        `json:"bytecode"`
	LinkReferences LinkReferences  `json:"linkReferences,omitempty"`
}

// LinkReferences maps source file -> library name -> placeholder offsets.
type LinkReferences map[string]map[string][]Offset

// Offset locates one library placeholder in the creation bytecode, in bytes.
type Offset struct {
	Start  int `json:"start"`
	Length int `json:"length"`
}

// Bytecode accepts both "0x6080..." and {"object": "0x6080...", "linkReferences": {...}}.
type Bytecode struct {
	hex   string
	links LinkReferences
}

func (b *Bytecode) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		b.hex = s
		return nil
	}
	var obj struct {
		Object         string         `json:"object"`
		LinkReferences LinkReferences `json:"linkReferences"`
	}
	if err := json.Unmarshal(data, &obj); err == nil {
		b.hex = obj.Object
		b.links = obj.LinkReferences
		return nil
	}
	return fmt.Errorf("bytecode must be a string or object with 'object' field")
}

func (b Bytecode) MarshalJSON() ([]byte, error) {
	return json.Marshal(b.hex)
}

func (b Bytecode) String() string {
	return b.hex
}

// Parse decodes a single artifact document.
func Parse(data []byte) (*Artifact, error) {
	var a Artifact
	if err := json.Unmarshal(data, &a); err != nil {
		return nil, fmt.Errorf("decode artifact: %w", err)
	}
	if len(a.LinkReferences) == 0 && len(a.Bytecode.links) > 0 {
		a.LinkReferences = a.Bytecode.links
	}
	if strings.TrimPrefix(a.Bytecode.hex, "0x") == "" {
		return nil, fmt.Errorf("artifact %s has no creation bytecode", a.ContractName)
	}
	return &a, nil
}

// ParsedABI decodes the artifact ABI.
func (a *Artifact) ParsedABI() (abi.ABI, error) {
	if len(a.ABI) == 0 {
		return abi.ABI{}, fmt.Errorf("artifact %s has no abi", a.ContractName)
	}
	parsed, err := abi.JSON(bytes.NewReader(a.ABI))
	if err != nil {
		return abi.ABI{}, fmt.Errorf("parse abi of %s: %w", a.ContractName, err)
	}
	return parsed, nil
}

// Libraries lists the library names the bytecode links against, sorted.
func (a *Artifact) Libraries() []string {
	set := make(map[string]struct{})
	for _, libs := range a.LinkReferences {
		for name := range libs {
			set[name] = struct{}{}
		}
	}
	out := make([]string, 0, len(set))
	for name := range set {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// LinkedBytecode substitutes library addresses into the placeholders and
// returns the creation code. libs is keyed by library name, or by
// "source:name" when two sources define the same name.
func (a *Artifact) LinkedBytecode(libs map[string]common.Address) ([]byte, error) {
	code := []byte(strings.TrimPrefix(a.Bytecode.hex, "0x"))
	for source, refs := range a.LinkReferences {
		for name, offsets := range refs {
			addr, ok := libs[source+":"+name]
			if !ok {
				addr, ok = libs[name]
			}
			if !ok {
				return nil, fmt.Errorf("%w: %s (%s)", ErrUnlinkedLibrary, name, source)
			}
			replacement := []byte(strings.ToLower(strings.TrimPrefix(addr.Hex(), "0x")))
			for _, off := range offsets {
				begin, end := off.Start*2, (off.Start+off.Length)*2
				if off.Length != common.AddressLength || begin < 0 || end > len(code) {
					return nil, fmt.Errorf("link %s: bad offset %d+%d", name, off.Start, off.Length)
				}
				copy(code[begin:end], replacement)
			}
		}
	}
	if bytes.Contains(code, []byte("__")) {
		return nil, fmt.Errorf("%w: placeholder without link reference", ErrUnlinkedLibrary)
	}
	out, err := hexutil.Decode("0x" + string(code))
	if err != nil {
		return nil, fmt.Errorf("decode bytecode of %s: %w", a.ContractName, err)
	}
	return out, nil
}

// DeployData returns linked creation code followed by the ABI-encoded
// constructor arguments.
func (a *Artifact) DeployData(libs map[string]common.Address, args ...interface{}) ([]byte, error) {
	code, err := a.LinkedBytecode(libs)
	if err != nil {
		return nil, err
	}
	parsed, err := a.ParsedABI()
	if err != nil {
		return nil, err
	}
	if len(parsed.Constructor.Inputs) != len(args) {
		return nil, fmt.Errorf("%s constructor takes %d args, got %d",
			a.ContractName, len(parsed.Constructor.Inputs), len(args))
	}
	if len(args) == 0 {
		return code, nil
	}
	encoded, err := parsed.Constructor.Inputs.Pack(args...)
	if err != nil {
		return nil, fmt.Errorf("encode constructor args: %w", err)
	}
	return append(code, encoded...), nil
}
