package plan

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"stableDeploy/internal/ledger"
)

// Kind is the action a step performs.
type Kind string

const (
	KindDeploy Kind = "deploy"
	KindLink   Kind = "link"
)

// ErrCycle is returned by Order when steps depend on each other.
var ErrCycle = errors.New("plan has a dependency cycle")

// Arg is a constructor or method argument. Exactly one of Ledger or Value is
// set; Ledger names the key whose value is substituted at run time.
type Arg struct {
	Ledger string `yaml:"ledger,omitempty" json:"ledger,omitempty"`
	Value  string `yaml:"value,omitempty" json:"value,omitempty"`
}

// Step is one node of the deployment graph.
type Step struct {
	Name     string `yaml:"name" json:"name"`
	Kind     Kind   `yaml:"kind" json:"kind"`
	Contract string `yaml:"contract" json:"contract"`
	// LedgerKey receives the deployed address. Defaults to ledger.KeyFor(Contract).
	LedgerKey string `yaml:"ledgerKey,omitempty" json:"ledgerKey,omitempty"`
	Args      []Arg  `yaml:"args,omitempty" json:"args,omitempty"`
	// Libraries maps a library name in the artifact link references to the
	// ledger key holding its address.
	Libraries map[string]string `yaml:"libraries,omitempty" json:"libraries,omitempty"`
	// Target is the ledger key of the contract a link step calls.
	Target string `yaml:"target,omitempty" json:"target,omitempty"`
	Method string `yaml:"method,omitempty" json:"method,omitempty"`
}

// Plan is an ordered list of steps. Declaration order breaks ties in Order.
type Plan struct {
	Name  string `yaml:"name" json:"name"`
	Steps []Step `yaml:"steps" json:"steps"`
}

// Produces returns the ledger keys a step writes.
func (s Step) Produces() []string {
	if s.Kind != KindDeploy {
		return nil
	}
	return []string{s.key()}
}

// Requires returns the ledger keys a step reads, sorted.
func (s Step) Requires() []string {
	set := make(map[string]struct{})
	for _, arg := range s.Args {
		if arg.Ledger != "" {
			set[arg.Ledger] = struct{}{}
		}
	}
	for _, key := range s.Libraries {
		set[key] = struct{}{}
	}
	if s.Kind == KindLink && s.Target != "" {
		set[s.Target] = struct{}{}
	}
	out := make([]string, 0, len(set))
	for key := range set {
		out = append(out, key)
	}
	sort.Strings(out)
	return out
}

// JournalKey is the key under which the step's progress is journaled.
func (s Step) JournalKey() string {
	if s.Kind == KindLink {
		return "link:" + s.Name
	}
	return s.key()
}

func (s Step) key() string {
	if s.LedgerKey != "" {
		return s.LedgerKey
	}
	return ledger.KeyFor(s.Contract)
}

// Load reads a YAML plan file.
func Load(path string) (*Plan, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read plan: %w", err)
	}
	return Parse(data)
}

// Parse decodes a YAML plan and fills in default ledger keys.
func Parse(data []byte) (*Plan, error) {
	var p Plan
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("decode plan: %w", err)
	}
	p.normalize()
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &p, nil
}

func (p *Plan) normalize() {
	for i := range p.Steps {
		s := &p.Steps[i]
		s.Kind = Kind(strings.ToLower(strings.TrimSpace(string(s.Kind))))
		if s.Kind == "" {
			s.Kind = KindDeploy
		}
		if s.Name == "" {
			s.Name = s.Contract
		}
		if s.Kind == KindDeploy && s.LedgerKey == "" {
			s.LedgerKey = ledger.KeyFor(s.Contract)
		}
	}
}

// Validate checks step shapes and producer uniqueness.
func (p *Plan) Validate() error {
	names := make(map[string]struct{}, len(p.Steps))
	producers := make(map[string]string)
	for _, s := range p.Steps {
		if s.Name == "" {
			return fmt.Errorf("step without name")
		}
		if _, dup := names[s.Name]; dup {
			return fmt.Errorf("duplicate step %q", s.Name)
		}
		names[s.Name] = struct{}{}
		if s.Contract == "" {
			return fmt.Errorf("step %q: contract is required", s.Name)
		}
		for i, arg := range s.Args {
			if (arg.Ledger == "") == (arg.Value == "") {
				return fmt.Errorf("step %q arg %d: exactly one of ledger or value must be set", s.Name, i)
			}
		}
		switch s.Kind {
		case KindDeploy:
			if s.Target != "" || s.Method != "" {
				return fmt.Errorf("step %q: deploy steps take no target or method", s.Name)
			}
			for _, key := range s.Produces() {
				if other, dup := producers[key]; dup {
					return fmt.Errorf("steps %q and %q both produce %s", other, s.Name, key)
				}
				producers[key] = s.Name
			}
		case KindLink:
			if s.Target == "" || s.Method == "" {
				return fmt.Errorf("step %q: link steps need target and method", s.Name)
			}
			if len(s.Libraries) > 0 {
				return fmt.Errorf("step %q: link steps take no libraries", s.Name)
			}
		default:
			return fmt.Errorf("step %q: unknown kind %q", s.Name, s.Kind)
		}
	}
	return nil
}

// Order returns the steps in a dependency-respecting order. Among steps that
// are ready at the same time, the one declared first runs first.
func (p *Plan) Order() ([]Step, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	producer := make(map[string]int)
	for i, s := range p.Steps {
		for _, key := range s.Produces() {
			producer[key] = i
		}
	}

	indegree := make([]int, len(p.Steps))
	dependents := make([][]int, len(p.Steps))
	for i, s := range p.Steps {
		for _, key := range s.Requires() {
			from, ok := producer[key]
			if !ok {
				continue
			}
			if from == i {
				return nil, fmt.Errorf("%w: step %q requires its own output %s", ErrCycle, s.Name, key)
			}
			dependents[from] = append(dependents[from], i)
			indegree[i]++
		}
	}

	ready := make([]int, 0, len(p.Steps))
	for i, d := range indegree {
		if d == 0 {
			ready = append(ready, i)
		}
	}

	out := make([]Step, 0, len(p.Steps))
	for len(ready) > 0 {
		sort.Ints(ready)
		next := ready[0]
		ready = ready[1:]
		out = append(out, p.Steps[next])
		for _, dep := range dependents[next] {
			indegree[dep]--
			if indegree[dep] == 0 {
				ready = append(ready, dep)
			}
		}
	}

	if len(out) != len(p.Steps) {
		var stuck []string
		for i, d := range indegree {
			if d > 0 {
				stuck = append(stuck, p.Steps[i].Name)
			}
		}
		return nil, fmt.Errorf("%w: %s", ErrCycle, strings.Join(stuck, ", "))
	}
	return out, nil
}

// External returns the keys required by some step but produced by none.
// They must already be present in the ledger when the plan runs.
func (p *Plan) External() []string {
	produced := make(map[string]struct{})
	for _, s := range p.Steps {
		for _, key := range s.Produces() {
			produced[key] = struct{}{}
		}
	}
	set := make(map[string]struct{})
	for _, s := range p.Steps {
		for _, key := range s.Requires() {
			if _, ok := produced[key]; !ok {
				set[key] = struct{}{}
			}
		}
	}
	out := make([]string, 0, len(set))
	for key := range set {
		out = append(out, key)
	}
	sort.Strings(out)
	return out
}

// Select returns a plan restricted to the named steps, keeping declaration
// order. Unknown names are an error.
func (p *Plan) Select(names []string) (*Plan, error) {
	if len(names) == 0 {
		return p, nil
	}
	wanted := make(map[string]bool, len(names))
	for _, n := range names {
		wanted[strings.TrimSpace(n)] = false
	}
	out := &Plan{Name: p.Name}
	for _, s := range p.Steps {
		if _, ok := wanted[s.Name]; ok {
			out.Steps = append(out.Steps, s)
			wanted[s.Name] = true
		}
	}
	for n, found := range wanted {
		if !found {
			return nil, fmt.Errorf("unknown step %q", n)
		}
	}
	return out, nil
}

// Step returns the named step.
func (p *Plan) Step(name string) (Step, bool) {
	for _, s := range p.Steps {
		if s.Name == name {
			return s, true
		}
	}
	return Step{}, false
}
