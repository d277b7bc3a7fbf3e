// Package object implements a class-style object model on top of a
// prototype slot system.
//
// Types are created by extending Base (or another Type) with property
// bundles and mixins:
//
//	Person := object.Base.MustExtend(object.Bundle{
//		"firstName": nil,
//		"greet": object.Method(func(self *object.Object, super object.Super, args ...any) (any, error) {
//			return "hello " + self.Get("firstName").(string), nil
//		}),
//	})
//	p := Person.MustNew(object.Bundle{"firstName": "Sue"})
//
// Methods receive the implementation they shadow as an explicit Super
// handle. Names listed in a type's concatProperties accumulate by sequence
// concatenation across the hierarchy and at construction, and names listed
// in mergedProperties accumulate by deep map merge. Values implementing
// Descriptor are installed as accessor properties instead of being copied
// (see the computed subpackage).
package object
