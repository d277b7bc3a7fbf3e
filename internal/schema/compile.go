package schema

import (
	"context"
	"fmt"
	"maps"
	"slices"

	"go.uber.org/multierr"

	"coreobject/internal/logging"
	"coreobject/pkg/object"
)

// Registry holds compiled types by name.
type Registry struct {
	types    map[string]*object.Type
	defs     map[string]*TypeDef
	order    []string
	children map[string][]string
}

// Lookup returns the type called name. RootName resolves to object.Base.
func (r *Registry) Lookup(name string) (*object.Type, bool) {
	if name == RootName {
		return object.Base, true
	}
	t, ok := r.types[name]
	return t, ok
}

// Def returns the definition a type was compiled from.
func (r *Registry) Def(name string) (*TypeDef, bool) {
	d, ok := r.defs[name]
	return d, ok
}

// Names returns the compiled type names in compile order, parents first.
func (r *Registry) Names() []string {
	return slices.Clone(r.order)
}

// Children returns the names of the types directly extending name.
func (r *Registry) Children(name string) []string {
	return slices.Clone(r.children[name])
}

// Len returns the number of compiled types.
func (r *Registry) Len() int {
	return len(r.order)
}

// Option configures Compile.
type Option func(*compiler)

// WithMethods makes extra method implementations available to definitions.
func WithMethods(m Methods) Option {
	return func(c *compiler) {
		maps.Copy(c.methods, m)
	}
}

type compiler struct {
	methods Methods
	defs    map[string]*TypeDef
	names   []string
	reg     *Registry
}

// Load reads every definition under paths and compiles them.
func Load(ctx context.Context, paths []string, opts ...Option) (*Registry, error) {
	docs, err := LoadFiles(ctx, paths)
	if err != nil {
		return nil, err
	}
	return Compile(docs, opts...)
}

// Compile validates the definitions of docs and builds their types, parents
// before children. All validation problems are reported together.
func Compile(docs []*Document, opts ...Option) (*Registry, error) {
	c := &compiler{
		methods: BuiltinMethods(),
		defs:    map[string]*TypeDef{},
		reg: &Registry{
			types:    map[string]*object.Type{},
			defs:     map[string]*TypeDef{},
			children: map[string][]string{},
		},
	}
	for _, opt := range opts {
		opt(c)
	}

	timer := logging.StartTimer(logging.CategorySchema, "compile")
	defer timer.Stop()

	if err := c.collect(docs); err != nil {
		return nil, err
	}
	if err := c.validate(); err != nil {
		return nil, err
	}
	for _, name := range c.names {
		if err := c.build(name); err != nil {
			return nil, err
		}
	}

	logging.Schema("compiled %d types from %d documents", c.reg.Len(), len(docs))
	return c.reg, nil
}

func (c *compiler) collect(docs []*Document) error {
	var errs error
	for _, doc := range docs {
		if doc == nil {
			continue
		}
		for i := range doc.Types {
			def := &doc.Types[i]
			switch {
			case def.Name == "":
				errs = multierr.Append(errs, fmt.Errorf("%s: entry %d: %w", doc.Source, i, ErrMissingName))
				continue
			case def.Name == RootName:
				errs = multierr.Append(errs, fmt.Errorf("%s: %w: %s is built in", def.where(), ErrDuplicateType, RootName))
				continue
			}
			if prev, ok := c.defs[def.Name]; ok {
				errs = multierr.Append(errs, fmt.Errorf("%s: %w, first defined in %s", def.where(), ErrDuplicateType, prev.source))
				continue
			}
			c.defs[def.Name] = def
			c.names = append(c.names, def.Name)
		}
	}
	return errs
}

func (c *compiler) validate() error {
	var errs error
	for _, name := range c.names {
		def := c.defs[name]
		parent := def.Parent()
		if _, ok := c.defs[parent]; !ok && parent != RootName {
			errs = multierr.Append(errs, fmt.Errorf("%s: %w: %s", def.where(), ErrUnknownParent, parent))
			continue
		}
		if c.inCycle(name) {
			errs = multierr.Append(errs, fmt.Errorf("%s: %w", def.where(), ErrCycle))
		}
		for key, impl := range def.Methods {
			if _, ok := c.methods[impl]; !ok {
				errs = multierr.Append(errs, fmt.Errorf("%s: method %q: %w: %s", def.where(), key, ErrUnknownMethod, impl))
			}
		}
	}
	return errs
}

// inCycle reports whether following extends from name leads back to name.
func (c *compiler) inCycle(name string) bool {
	seen := map[string]bool{}
	for cur := name; cur != RootName; {
		if seen[cur] {
			return cur == name
		}
		seen[cur] = true
		def, ok := c.defs[cur]
		if !ok {
			return false
		}
		cur = def.Parent()
	}
	return false
}

func (c *compiler) build(name string) error {
	if _, ok := c.reg.types[name]; ok {
		return nil
	}
	def := c.defs[name]
	parentName := def.Parent()
	if parentName != RootName {
		if err := c.build(parentName); err != nil {
			return err
		}
	}
	parent, _ := c.reg.Lookup(parentName)

	sources, err := def.sources(c.methods)
	if err != nil {
		return err
	}
	t, err := parent.ExtendNamed(name, sources...)
	if err != nil {
		return fmt.Errorf("%s: %w", def.where(), err)
	}

	c.reg.types[name] = t
	c.reg.defs[name] = def
	c.reg.order = append(c.reg.order, name)
	c.reg.children[parentName] = append(c.reg.children[parentName], name)
	logging.SchemaDebug("built %s extends %s", name, parentName)
	return nil
}
