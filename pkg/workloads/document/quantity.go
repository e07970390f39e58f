package document

import (
	"fmt"
	"slices"
	"sort"

	"gopkg.in/yaml.v3"
)

const (
	ResourceCPU    = "cpu"
	ResourceMemory = "memory"
	ResourceGPU    = "nvidia.com/gpu"
)

type presence uint8

const (
	absent presence = iota
	null
	present
)

// Quantity is an optional resource quantity.
//
// It is absent (the zero value), explicit null, or a string value.
type Quantity struct {
	presence presence
	value    string
}

func Value(v string) Quantity {
	return Quantity{presence: present, value: v}
}

func Null() Quantity {
	return Quantity{presence: null}
}

// IsMissing tells the quantity is absent or null.
func (q Quantity) IsMissing() bool {
	return q.presence != present
}

func (q Quantity) IsNull() bool {
	return q.presence == null
}

func (q Quantity) IsAbsent() bool {
	return q.presence == absent
}

// Get returns the value, and whether it has value.
func (q Quantity) Get() (string, bool) {
	return q.value, q.presence == present
}

func (q Quantity) Equal(o Quantity) bool {
	return q == o
}

func (q Quantity) String() string {
	switch q.presence {
	case absent:
		return "(absent)"
	case null:
		return "null"
	}
	return q.value
}

func (q Quantity) node() *yaml.Node {
	if q.presence == null {
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!null", Value: "null"}
	}
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: q.value}
}

func quantityOf(n *yaml.Node) (Quantity, error) {
	if n.Kind == yaml.AliasNode && n.Alias != nil {
		n = n.Alias
	}
	if n.Kind != yaml.ScalarNode {
		return Quantity{}, fmt.Errorf("line %d: resource quantity should be a scalar", n.Line)
	}
	if n.Tag == "!!null" {
		return Null(), nil
	}
	return Value(n.Value), nil
}

// ResourceList is "requests" or "limits" of a container.
type ResourceList struct {
	CPU    Quantity
	Memory Quantity
	GPU    Quantity

	// other resources, by name
	Others map[string]Quantity
}

func (r *ResourceList) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: resource list should be a mapping", node.Line)
	}
	*r = ResourceList{}
	for i := 0; i+1 < len(node.Content); i += 2 {
		key := node.Content[i].Value
		q, err := quantityOf(node.Content[i+1])
		if err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
		switch key {
		case ResourceCPU:
			r.CPU = q
		case ResourceMemory:
			r.Memory = q
		case ResourceGPU:
			r.GPU = q
		default:
			if r.Others == nil {
				r.Others = map[string]Quantity{}
			}
			r.Others[key] = q
		}
	}
	return nil
}

func (r ResourceList) MarshalYAML() (any, error) {
	n := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	add := func(key string, q Quantity) {
		if q.IsAbsent() {
			return
		}
		n.Content = append(
			n.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: key},
			q.node(),
		)
	}
	add(ResourceCPU, r.CPU)
	add(ResourceMemory, r.Memory)
	add(ResourceGPU, r.GPU)

	names := make([]string, 0, len(r.Others))
	for k := range r.Others {
		names = append(names, k)
	}
	sort.Strings(names)
	for _, k := range names {
		add(k, r.Others[k])
	}
	return n, nil
}

func (r ResourceList) Equal(o ResourceList) bool {
	if r.CPU != o.CPU || r.Memory != o.Memory || r.GPU != o.GPU {
		return false
	}
	if len(r.Others) != len(o.Others) {
		return false
	}
	for k, v := range r.Others {
		if w, ok := o.Others[k]; !ok || v != w {
			return false
		}
	}
	return true
}

// Names returns names of resources which are not absent.
func (r ResourceList) Names() []string {
	names := []string{}
	for k, q := range map[string]Quantity{ResourceCPU: r.CPU, ResourceMemory: r.Memory, ResourceGPU: r.GPU} {
		if !q.IsAbsent() {
			names = append(names, k)
		}
	}
	for k, q := range r.Others {
		if !q.IsAbsent() {
			names = append(names, k)
		}
	}
	slices.Sort(names)
	return names
}
