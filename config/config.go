// Package config loads a model/run description from YAML: node names and
// roles, intra- and inter-slice edges declared by node name, and the
// training knobs (restart count, iteration cap, tolerance, seed).
//
// A minimal document:
//
//	nodes:
//	  - name: zooplankton        # hidden driver
//	  - name: herring
//	    observed: true
//	  - name: sprat
//	    observed: true
//	intra:
//	  - {from: zooplankton, to: herring}
//	  - {from: zooplankton, to: sprat}
//	inter:
//	  - {from: zooplankton, to: zooplankton}
//	restarts: 100
//	max_iter: 500
//	tolerance: 1e-6
//	seed: 42
//	report: [zooplankton]
//
// Name resolution failures carry the offending name; structural validation
// proper (cycles, ranges) stays with package template.
package config

import (
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/luusitalo/BalticFoodwebModel/em"
	"github.com/luusitalo/BalticFoodwebModel/fit"
	"github.com/luusitalo/BalticFoodwebModel/template"
)

var (
	// ErrUnknownNode indicates an edge or report entry naming a node that
	// is not declared under nodes.
	ErrUnknownNode = errors.New("config: unknown node name")

	// ErrDuplicateName indicates two node declarations sharing a name.
	ErrDuplicateName = errors.New("config: duplicate node name")
)

// NodeSpec declares one template position.
type NodeSpec struct {
	Name     string `yaml:"name"`
	Observed bool   `yaml:"observed"`
}

// EdgeSpec declares one edge by node names.
type EdgeSpec struct {
	From string `yaml:"from"`
	To   string `yaml:"to"`
}

// Config is a parsed and name-checked run description.
type Config struct {
	Nodes     []NodeSpec `yaml:"nodes"`
	Intra     []EdgeSpec `yaml:"intra"`
	Inter     []EdgeSpec `yaml:"inter"`
	Restarts  int        `yaml:"restarts"`
	MaxIter   int        `yaml:"max_iter"`
	Tolerance float64    `yaml:"tolerance"`
	Seed      uint64     `yaml:"seed"`
	Report    []string   `yaml:"report"`

	index map[string]int
}

// Load reads and parses a YAML run description.
func Load(r io.Reader) (*Config, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("config: read: %w", err)
	}

	return Parse(raw)
}

// Parse decodes a YAML document and resolves every name reference.
func Parse(raw []byte) (*Config, error) {
	var c Config
	if err := yaml.Unmarshal(raw, &c); err != nil {
		return nil, fmt.Errorf("config: parse yaml: %w", err)
	}

	c.index = make(map[string]int, len(c.Nodes))
	for i, n := range c.Nodes {
		if _, dup := c.index[n.Name]; dup {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateName, n.Name)
		}
		c.index[n.Name] = i
	}
	for _, e := range append(append([]EdgeSpec(nil), c.Intra...), c.Inter...) {
		if _, ok := c.index[e.From]; !ok {
			return nil, fmt.Errorf("%w: edge from %q", ErrUnknownNode, e.From)
		}
		if _, ok := c.index[e.To]; !ok {
			return nil, fmt.Errorf("%w: edge to %q", ErrUnknownNode, e.To)
		}
	}
	for _, name := range c.Report {
		if _, ok := c.index[name]; !ok {
			return nil, fmt.Errorf("%w: report entry %q", ErrUnknownNode, name)
		}
	}

	return &c, nil
}

// Template builds the validated template graph this config describes.
func (c *Config) Template() (*template.Graph, error) {
	names := make([]string, len(c.Nodes))
	var observed []int
	for i, n := range c.Nodes {
		names[i] = n.Name
		if n.Observed {
			observed = append(observed, i)
		}
	}

	return template.New(len(c.Nodes),
		c.edges(c.Intra), c.edges(c.Inter), observed,
		template.WithNames(names))
}

// Observed returns the indices of Observed-role positions, in declaration
// order.
func (c *Config) Observed() []int {
	var out []int
	for i, n := range c.Nodes {
		if n.Observed {
			out = append(out, i)
		}
	}

	return out
}

// ReportIndices resolves the report list to template positions, in request
// order.
func (c *Config) ReportIndices() []int {
	out := make([]int, len(c.Report))
	for i, name := range c.Report {
		out[i] = c.index[name] // names were resolved at Parse time
	}

	return out
}

// FitOptions translates the training knobs into fit options. Zero-valued
// knobs fall back to the package defaults.
func (c *Config) FitOptions() []fit.Option {
	opts := []fit.Option{
		fit.WithSeed(c.Seed),
		fit.WithEM(em.WithMaxIter(c.MaxIter), em.WithTolerance(c.Tolerance)),
	}
	if c.Restarts > 0 {
		opts = append(opts, fit.WithRestarts(c.Restarts))
	}

	return opts
}

func (c *Config) edges(specs []EdgeSpec) []template.Edge {
	out := make([]template.Edge, len(specs))
	for i, e := range specs {
		out[i] = template.Edge{From: c.index[e.From], To: c.index[e.To]}
	}

	return out
}
