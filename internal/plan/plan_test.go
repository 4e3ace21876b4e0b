package plan

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func names(steps []Step) []string {
	out := make([]string, 0, len(steps))
	for _, s := range steps {
		out = append(out, s.Name)
	}
	return out
}

func TestDefaultPlanOrder(t *testing.T) {
	p := Default()
	order, err := p.Order()
	require.NoError(t, err)

	pos := make(map[string]int)
	for i, s := range order {
		pos[s.Name] = i
	}
	for _, s := range order {
		for _, key := range s.Requires() {
			for _, other := range order {
				for _, produced := range other.Produces() {
					if produced == key {
						assert.Less(t, pos[other.Name], pos[s.Name], "%s must precede %s", other.Name, s.Name)
					}
				}
			}
		}
	}
	assert.Empty(t, p.External())
	assert.Equal(t, names(p.Steps), names(order))
}

func TestDefaultPlanShape(t *testing.T) {
	p := Default()

	factory, ok := p.Step("StableSwapFactory")
	require.True(t, ok)
	assert.Equal(t, []string{"STABLE_SWAP_FACTORY"}, factory.Produces())
	assert.Equal(t, []string{
		"STABLE_SWAP_LP_FACTORY",
		"STABLE_SWAP_THREE_POOL_DEPLOYER",
		"STABLE_SWAP_TWO_POOL_DEPLOYER",
	}, factory.Requires())

	link, ok := p.Step("transferStableSwapTwoPoolDeployer")
	require.True(t, ok)
	assert.Empty(t, link.Produces())
	assert.Equal(t, "link:transferStableSwapTwoPoolDeployer", link.JournalKey())
	assert.Equal(t, []string{"STABLE_SWAP_FACTORY", "STABLE_SWAP_TWO_POOL_DEPLOYER"}, link.Requires())

	router, ok := p.Step("StableSwapRouter")
	require.True(t, ok)
	assert.Equal(t, "SMART_ROUTER_HELPER_LIBRARY", router.Libraries["SmartRouterHelper"])
	assert.Contains(t, router.Requires(), "SMART_ROUTER_HELPER_LIBRARY")
}

func TestOrderUsesDependenciesOverDeclaration(t *testing.T) {
	p := &Plan{Steps: []Step{
		{Name: "factory", Kind: KindDeploy, Contract: "Factory", LedgerKey: "FACTORY", Args: []Arg{{Ledger: "DEPLOYER"}}},
		{Name: "other", Kind: KindDeploy, Contract: "Other", LedgerKey: "OTHER"},
		{Name: "deployer", Kind: KindDeploy, Contract: "Deployer", LedgerKey: "DEPLOYER"},
	}}
	order, err := p.Order()
	require.NoError(t, err)
	assert.Equal(t, []string{"other", "deployer", "factory"}, names(order))
}

func TestOrderRejectsCycle(t *testing.T) {
	p := &Plan{Steps: []Step{
		{Name: "a", Kind: KindDeploy, Contract: "A", LedgerKey: "A", Args: []Arg{{Ledger: "B"}}},
		{Name: "b", Kind: KindDeploy, Contract: "B", LedgerKey: "B", Args: []Arg{{Ledger: "A"}}},
	}}
	_, err := p.Order()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrCycle))
}

func TestValidateRejectsDuplicateProducer(t *testing.T) {
	p := &Plan{Steps: []Step{
		{Name: "a", Kind: KindDeploy, Contract: "A", LedgerKey: "X"},
		{Name: "b", Kind: KindDeploy, Contract: "B", LedgerKey: "X"},
	}}
	err := p.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "both produce X")
}

func TestSelectAndExternal(t *testing.T) {
	sub, err := Default().Select([]string{"StableSwapRouter"})
	require.NoError(t, err)
	require.Len(t, sub.Steps, 1)
	assert.Equal(t, []string{
		"SMART_ROUTER_HELPER_LIBRARY",
		"STABLE_SWAP_FACTORY",
		"STABLE_SWAP_INFO",
	}, sub.External())

	_, err = Default().Select([]string{"Nope"})
	assert.Error(t, err)
}

func TestLoadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plan.yaml")
	doc := `name: custom
steps:
  - contract: StableSwapTwoPoolDeployer
  - name: owner
    kind: link
    contract: StableSwapTwoPoolDeployer
    target: STABLE_SWAP_TWO_POOL_DEPLOYER
    method: transferOwnership
    args:
      - ledger: STABLE_SWAP_FACTORY
`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))

	p, err := Load(path)
	require.NoError(t, err)
	require.Len(t, p.Steps, 2)
	assert.Equal(t, "StableSwapTwoPoolDeployer", p.Steps[0].Name)
	assert.Equal(t, KindDeploy, p.Steps[0].Kind)
	assert.Equal(t, "STABLE_SWAP_TWO_POOL_DEPLOYER", p.Steps[0].LedgerKey)
	assert.Equal(t, KindLink, p.Steps[1].Kind)
	assert.Equal(t, []string{"STABLE_SWAP_FACTORY"}, p.External())
}

func TestParseRejectsUnknownKind(t *testing.T) {
	_, err := Parse([]byte("steps:\n  - contract: A\n    kind: upgrade\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown kind")
}

func TestDefaultHelperLibraryStep(t *testing.T) {
	s, ok := Default().Step("SmartRouterHelperLibrary")
	require.True(t, ok)
	assert.Equal(t, "SmartRouterHelper", s.Contract)
	assert.Equal(t, []string{"SMART_ROUTER_HELPER_LIBRARY"}, s.Produces())
}
