// Package schema compiles declarative YAML type definitions into object
// types.
//
// A definition file looks like:
//
//	types:
//	  - name: Person
//	    concatProperties: [tags]
//	    mergedProperties: [settings]
//	    properties:
//	      firstName: ""
//	      tags: [person]
//	      settings: {locale: en}
//	      name:
//	        computed: {alias: firstName, enumerable: true}
//	    methods:
//	      toString: toString
//	  - name: Employee
//	    extends: Person
//	    properties:
//	      tags: [employee]
//
// Every loaded file shares one namespace; extends may name a type defined in
// any file, or BaseObject.
package schema

import (
	"errors"
	"fmt"
	"slices"

	"coreobject/pkg/object"
	"coreobject/pkg/object/computed"
)

// RootName is the name definitions use to extend object.Base.
const RootName = "BaseObject"

var (
	ErrDuplicateType   = errors.New("duplicate type")
	ErrUnknownParent   = errors.New("unknown parent type")
	ErrCycle           = errors.New("inheritance cycle")
	ErrUnknownMethod   = errors.New("unknown method implementation")
	ErrInvalidComputed = errors.New("invalid computed property")
	ErrMissingName     = errors.New("type without a name")
)

// Document is one decoded definition file.
type Document struct {
	Types []TypeDef `yaml:"types"`

	// Source is the file the document was read from.
	Source string `yaml:"-"`
}

// TypeDef defines one type.
type TypeDef struct {
	Name             string            `yaml:"name"`
	Extends          string            `yaml:"extends"`
	Description      string            `yaml:"description,omitempty"`
	ConcatProperties []string          `yaml:"concatProperties,omitempty"`
	MergedProperties []string          `yaml:"mergedProperties,omitempty"`
	Properties       map[string]any    `yaml:"properties,omitempty"`
	Statics          map[string]any    `yaml:"statics,omitempty"`
	Methods          map[string]string `yaml:"methods,omitempty"`

	source string
}

// Parent returns the name of the extended type.
func (d *TypeDef) Parent() string {
	if d.Extends == "" {
		return RootName
	}
	return d.Extends
}

// Source returns the file d was read from.
func (d *TypeDef) Source() string {
	return d.source
}

func (d *TypeDef) where() string {
	if d.source == "" {
		return fmt.Sprintf("type %q", d.Name)
	}
	return fmt.Sprintf("%s: type %q", d.source, d.Name)
}

// sources converts d into Extend sources. Properties holding a computed
// mapping become descriptors, method names resolve against methods.
func (d *TypeDef) sources(methods Methods) ([]object.Source, error) {
	proto := object.Bundle{}
	if len(d.ConcatProperties) > 0 {
		proto[object.ConcatProperties] = slices.Clone(d.ConcatProperties)
	}
	if len(d.MergedProperties) > 0 {
		proto[object.MergedProperties] = slices.Clone(d.MergedProperties)
	}

	for key, value := range d.Properties {
		v, err := propertyValue(value)
		if err != nil {
			return nil, fmt.Errorf("%s: property %q: %w", d.where(), key, err)
		}
		proto[key] = v
	}

	for key, impl := range d.Methods {
		m, ok := methods[impl]
		if !ok {
			return nil, fmt.Errorf("%s: method %q: %w: %s", d.where(), key, ErrUnknownMethod, impl)
		}
		proto[key] = m
	}

	out := []object.Source{proto}
	if len(d.Statics) > 0 {
		statics := object.Static{}
		for key, value := range d.Statics {
			v, err := propertyValue(value)
			if err != nil {
				return nil, fmt.Errorf("%s: static %q: %w", d.where(), key, err)
			}
			statics[key] = v
		}
		out = append(out, statics)
	}
	return out, nil
}

// propertyValue returns a descriptor for {computed: {...}} mappings and the
// value itself otherwise.
func propertyValue(v any) (any, error) {
	m, ok := v.(map[string]any)
	if !ok || len(m) != 1 {
		return v, nil
	}
	spec, ok := m["computed"]
	if !ok {
		return v, nil
	}
	specMap, ok := spec.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: expected a mapping, got %T", ErrInvalidComputed, spec)
	}
	return computedProperty(specMap)
}

var computedKinds = []string{"alias", "constant", "strictConstant", "not", "readonly"}

func computedProperty(spec map[string]any) (*computed.Property, error) {
	var kind string
	for _, k := range computedKinds {
		if _, ok := spec[k]; !ok {
			continue
		}
		if kind != "" {
			return nil, fmt.Errorf("%w: both %s and %s given", ErrInvalidComputed, kind, k)
		}
		kind = k
	}
	if kind == "" {
		return nil, fmt.Errorf("%w: one of %v is required", ErrInvalidComputed, computedKinds)
	}

	opts := computed.FromOptions(spec)
	value := spec[kind]
	switch kind {
	case "constant":
		return computed.Constant(value, opts), nil
	case "strictConstant":
		return computed.StrictConstant(value, opts), nil
	}

	path, ok := value.(string)
	if !ok || path == "" {
		return nil, fmt.Errorf("%w: %s needs a property path, got %v", ErrInvalidComputed, kind, value)
	}
	switch kind {
	case "alias":
		return computed.Alias(path, opts), nil
	case "not":
		return computed.Not(path, opts), nil
	default:
		return computed.Readonly(path, opts), nil
	}
}
