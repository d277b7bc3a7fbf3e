package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"coreobject/internal/objpath"
	"coreobject/internal/schema"
	"coreobject/pkg/object"
)

func (a *app) treeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tree",
		Short: "Print the type hierarchy rooted at BaseObject",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := a.load(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), a.renderer().Tree(reg, schema.RootName))
			return nil
		},
	}
}

func (a *app) describeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "describe TYPE",
		Short: "Print the ancestry, declarations, prototype slots and statics of a type",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := a.load(cmd.Context())
			if err != nil {
				return err
			}
			t, ok := reg.Lookup(args[0])
			if !ok {
				return fmt.Errorf("unknown type %q", args[0])
			}
			r := a.renderer()
			out := cmd.OutOrStdout()
			if def, ok := reg.Def(args[0]); ok {
				fmt.Fprint(out, r.Description(def.Description))
			}
			fmt.Fprint(out, r.Type(t))
			return nil
		},
	}
}

func (a *app) newCmd() *cobra.Command {
	var sets []string

	cmd := &cobra.Command{
		Use:   "new TYPE",
		Short: "Construct an instance and print its properties",
		Long: `Constructs an instance of TYPE and prints its enumerable properties.
Own properties are marked with '*'.

Initialization data is given with repeated --set flags. Paths may be nested
and values are parsed as YAML:

  objinspect new Employee --set firstName=Kim --set tags=[lead] --set settings.theme.mode=dark`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := parseSets(sets)
			if err != nil {
				return err
			}
			reg, err := a.load(cmd.Context())
			if err != nil {
				return err
			}
			t, ok := reg.Lookup(args[0])
			if !ok {
				return fmt.Errorf("unknown type %q", args[0])
			}
			o, err := t.New(data)
			if err != nil {
				return fmt.Errorf("failed to construct %s: %w", args[0], err)
			}
			fmt.Fprint(cmd.OutOrStdout(), a.renderer().Object(o))
			return nil
		},
	}
	cmd.Flags().StringArrayVar(&sets, "set", nil, "Initialization value as path=value (repeatable)")
	return cmd
}

// parseSets builds construction data from path=value assignments.
func parseSets(sets []string) (object.Bundle, error) {
	data := map[string]any{}
	for _, s := range sets {
		path, raw, ok := strings.Cut(s, "=")
		if !ok || path == "" {
			return nil, fmt.Errorf("invalid --set %q: expected path=value", s)
		}
		keys, err := objpath.Parse(path)
		if err != nil {
			return nil, fmt.Errorf("invalid --set %q: %w", s, err)
		}

		var value any
		if err := yaml.Unmarshal([]byte(raw), &value); err != nil {
			return nil, fmt.Errorf("invalid --set %q: %w", s, err)
		}
		if raw == "" {
			value = ""
		}
		if err := objpath.Set(data, keys, value); err != nil {
			return nil, fmt.Errorf("invalid --set %q: %w", s, err)
		}
	}
	if len(data) == 0 {
		return nil, nil
	}
	return object.Bundle(data), nil
}
