// Package nn implements the module registry used to organize trainable state.
//
// This package provides:
//   - Module: an ordered registry of named fields, each one of
//     {Parameter, Submodule, PlainData}, plus a training/evaluation flag
//   - Parameter: a named leaf Value that requires grad
//   - Layer: modules computing tensor outputs (Linear, Sequential, ReLU, Sigmoid)
//   - MSELoss
//
// Design inspired by PyTorch's nn.Module, with explicit registration instead
// of attribute interception.
package nn

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
	"k8s.io/klog/v2"
)

// FieldKind tags what a registered field holds.
type FieldKind int

// Field kinds.
const (
	ParameterField FieldKind = iota
	SubmoduleField
	PlainDataField
)

// String implements fmt.Stringer.
func (k FieldKind) String() string {
	switch k {
	case ParameterField:
		return "parameter"
	case SubmoduleField:
		return "submodule"
	case PlainDataField:
		return "data"
	default:
		return fmt.Sprintf("FieldKind(%d)", int(k))
	}
}

// Field is one registered entry. Exactly one of Parameter, Submodule or
// Data is meaningful, selected by Kind.
type Field[P any] struct {
	Name      string
	Kind      FieldKind
	Parameter *Parameter[P]
	Submodule *Module[P]
	Data      any
}

// NamedParameter is a parameter with its dotted path from the root module.
type NamedParameter[P any] struct {
	Path      string // e.g. "encoder.0.weight"
	Parameter *Parameter[P]
}

// Module is an ordered registry of named fields.
//
// Registration order is preserved by every traversal. Modules start in
// training mode; Train and Eval propagate to all submodules.
//
// Example:
//
//	m := nn.NewModule[float64]("affine")
//	_ = m.RegisterParameter("w", nn.NewParameter("w", scalar.New(0.5)))
//	_ = m.SetData("activation", "relu")
type Module[P any] struct {
	name     string
	fields   []Field[P]
	index    map[string]int
	training bool
}

// NewModule creates an empty module in training mode.
func NewModule[P any](name string) *Module[P] {
	return &Module[P]{
		name:     name,
		index:    make(map[string]int),
		training: true,
	}
}

// Name returns the module name.
func (m *Module[P]) Name() string {
	return m.name
}

func (m *Module[P]) add(f Field[P]) error {
	if f.Name == "" || strings.Contains(f.Name, ".") {
		return errors.Wrapf(ErrInvalidField, "module %q: field name %q", m.name, f.Name)
	}
	if i, ok := m.index[f.Name]; ok {
		return errors.Wrapf(ErrDuplicateField, "module %q: %q already registered as %s", m.name, f.Name, m.fields[i].Kind)
	}
	m.index[f.Name] = len(m.fields)
	m.fields = append(m.fields, f)
	return nil
}

// RegisterParameter adds a trainable parameter under name.
func (m *Module[P]) RegisterParameter(name string, p *Parameter[P]) error {
	if p == nil {
		return errors.Wrapf(ErrInvalidField, "module %q: nil parameter %q", m.name, name)
	}
	return m.add(Field[P]{Name: name, Kind: ParameterField, Parameter: p})
}

// RegisterModule adds a submodule under name. The submodule must not
// already contain m.
func (m *Module[P]) RegisterModule(name string, sub *Module[P]) error {
	if sub == nil {
		return errors.Wrapf(ErrInvalidField, "module %q: nil submodule %q", m.name, name)
	}
	if sub == m || sub.contains(m) {
		return errors.Wrapf(ErrInvalidField, "module %q: registering %q would create a cycle", m.name, name)
	}
	return m.add(Field[P]{Name: name, Kind: SubmoduleField, Submodule: sub})
}

// SetData stores non-trainable data under name, replacing a previous value
// stored by SetData.
func (m *Module[P]) SetData(name string, value any) error {
	if i, ok := m.index[name]; ok && m.fields[i].Kind == PlainDataField {
		m.fields[i].Data = value
		return nil
	}
	return m.add(Field[P]{Name: name, Kind: PlainDataField, Data: value})
}

// Data returns the plain data stored under name.
func (m *Module[P]) Data(name string) (any, bool) {
	f, ok := m.Field(name)
	if !ok || f.Kind != PlainDataField {
		return nil, false
	}
	return f.Data, true
}

// Field returns the field registered under name.
func (m *Module[P]) Field(name string) (Field[P], bool) {
	i, ok := m.index[name]
	if !ok {
		return Field[P]{}, false
	}
	return m.fields[i], true
}

// Fields returns all fields in registration order.
func (m *Module[P]) Fields() []Field[P] {
	return append([]Field[P](nil), m.fields...)
}

// Children returns the direct submodules in registration order.
func (m *Module[P]) Children() []*Module[P] {
	var children []*Module[P]
	for _, f := range m.fields {
		if f.Kind == SubmoduleField {
			children = append(children, f.Submodule)
		}
	}
	return children
}

func (m *Module[P]) contains(target *Module[P]) bool {
	for _, c := range m.Children() {
		if c == target || c.contains(target) {
			return true
		}
	}
	return false
}

// NamedParameters returns every parameter of m and its submodules, depth
// first in registration order. A parameter shared by several modules is
// listed once, under its first path.
func (m *Module[P]) NamedParameters() []NamedParameter[P] {
	var out []NamedParameter[P]
	seen := make(map[*Parameter[P]]bool)
	m.walk("", func(path string, p *Parameter[P]) {
		if !seen[p] {
			seen[p] = true
			out = append(out, NamedParameter[P]{Path: path, Parameter: p})
		}
	})
	return out
}

// Parameters returns the parameters of NamedParameters without paths.
func (m *Module[P]) Parameters() []*Parameter[P] {
	named := m.NamedParameters()
	params := make([]*Parameter[P], len(named))
	for i, np := range named {
		params[i] = np.Parameter
	}
	return params
}

func (m *Module[P]) walk(prefix string, visit func(path string, p *Parameter[P])) {
	for _, f := range m.fields {
		switch f.Kind {
		case ParameterField:
			visit(prefix+f.Name, f.Parameter)
		case SubmoduleField:
			f.Submodule.walk(prefix+f.Name+".", visit)
		}
	}
}

// Train puts m and all its submodules in training mode.
func (m *Module[P]) Train() {
	m.setTraining(true)
}

// Eval puts m and all its submodules in evaluation mode.
func (m *Module[P]) Eval() {
	m.setTraining(false)
}

func (m *Module[P]) setTraining(training bool) {
	klog.V(2).Infof("nn: module %q training=%v", m.name, training)
	m.training = training
	for _, c := range m.Children() {
		c.setTraining(training)
	}
}

// IsTraining reports whether m is in training mode.
func (m *Module[P]) IsTraining() bool {
	return m.training
}

// ZeroGrad clears the gradients of all parameters.
func (m *Module[P]) ZeroGrad() {
	for _, p := range m.Parameters() {
		p.ZeroGrad()
	}
}

// String renders the module tree.
func (m *Module[P]) String() string {
	var sb strings.Builder
	m.format(&sb, 0)
	return sb.String()
}

func (m *Module[P]) format(sb *strings.Builder, depth int) {
	indent := strings.Repeat("  ", depth)
	fmt.Fprintf(sb, "%s%s(\n", indent, m.name)
	for _, f := range m.fields {
		switch f.Kind {
		case ParameterField:
			fmt.Fprintf(sb, "%s  %s: parameter\n", indent, f.Name)
		case SubmoduleField:
			fmt.Fprintf(sb, "%s  %s:\n", indent, f.Name)
			f.Submodule.format(sb, depth+2)
		case PlainDataField:
			fmt.Fprintf(sb, "%s  %s: %v\n", indent, f.Name, f.Data)
		}
	}
	fmt.Fprintf(sb, "%s)\n", indent)
}
