package schema

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"coreobject/pkg/object"
)

// Methods maps implementation names used in definitions to Go methods.
type Methods map[string]object.Method

// BuiltinMethods returns the implementations every compiler knows.
func BuiltinMethods() Methods {
	return Methods{
		"toString": func(self *object.Object, _ object.Super, _ ...any) (any, error) {
			return self.String(), nil
		},
		"properties": func(self *object.Object, _ object.Super, _ ...any) (any, error) {
			return self.Properties(), nil
		},
		"describe": func(self *object.Object, _ object.Super, _ ...any) (any, error) {
			props := self.Properties()
			var b strings.Builder
			b.WriteString(self.Type().Name())
			for _, k := range slices.Sorted(maps.Keys(props)) {
				fmt.Fprintf(&b, " %s=%v", k, props[k])
			}
			return b.String(), nil
		},
	}
}
