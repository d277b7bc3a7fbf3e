// Package inspect renders type hierarchies, prototypes and instances for the
// terminal.
package inspect

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/tree"

	"coreobject/pkg/object"
)

// Hierarchy lists the direct subtypes of a type name.
type Hierarchy interface {
	Children(name string) []string
}

// Options controls what the renderer shows.
type Options struct {
	Color        bool
	ShowHidden   bool // non-enumerable slots
	ShowBuiltins bool // slots defined on BaseObject
}

type styles struct {
	title  lipgloss.Style
	name   lipgloss.Style
	kind   lipgloss.Style
	muted  lipgloss.Style
	value  lipgloss.Style
	border lipgloss.Style
}

var (
	accent = lipgloss.Color("#8BC34A")
	info   = lipgloss.Color("#2196F3")
	muted  = lipgloss.Color("#6B7280")
	warn   = lipgloss.Color("#FFC107")
)

func newStyles(color bool) styles {
	if !color {
		plain := lipgloss.NewStyle()
		return styles{title: plain, name: plain, kind: plain, muted: plain, value: plain, border: plain}
	}
	return styles{
		title:  lipgloss.NewStyle().Bold(true).Foreground(accent),
		name:   lipgloss.NewStyle().Foreground(info),
		kind:   lipgloss.NewStyle().Foreground(warn),
		muted:  lipgloss.NewStyle().Foreground(muted),
		value:  lipgloss.NewStyle(),
		border: lipgloss.NewStyle().Foreground(muted),
	}
}

// Renderer formats objects as text.
type Renderer struct {
	opts Options
	s    styles
}

// NewRenderer creates a renderer.
func NewRenderer(opts Options) *Renderer {
	return &Renderer{opts: opts, s: newStyles(opts.Color)}
}

// Tree renders the hierarchy below root.
func (r *Renderer) Tree(h Hierarchy, root string) string {
	t := r.subtree(h, root).
		Enumerator(tree.RoundedEnumerator).
		EnumeratorStyle(r.s.border).
		RootStyle(r.s.title).
		ItemStyle(r.s.name)
	return t.String()
}

func (r *Renderer) subtree(h Hierarchy, name string) *tree.Tree {
	t := tree.Root(name)
	for _, child := range h.Children(name) {
		if len(h.Children(child)) == 0 {
			t.Child(child)
			continue
		}
		t.Child(r.subtree(h, child))
	}
	return t
}

// Description renders a type description written in markdown. Without color
// the text is returned as written.
func (r *Renderer) Description(md string) string {
	md = strings.TrimSpace(md)
	if md == "" {
		return ""
	}
	if !r.opts.Color {
		return md + "\n"
	}
	tr, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(80),
	)
	if err != nil {
		return md + "\n"
	}
	out, err := tr.Render(md)
	if err != nil {
		return md + "\n"
	}
	return out
}

// Type renders the ancestry, declarations, prototype slots and statics of t.
func (r *Renderer) Type(t *object.Type) string {
	var b strings.Builder

	b.WriteString(r.s.title.Render(t.Name()))
	if t.IsNative() {
		b.WriteString(r.s.muted.Render(" (native)"))
	}
	b.WriteString("\n")

	chain := []string{t.Name()}
	for _, a := range t.Ancestors() {
		chain = append(chain, a.Name())
	}
	if len(chain) > 1 {
		fmt.Fprintf(&b, "%s %s\n", r.s.muted.Render("extends"), strings.Join(chain[1:], r.s.muted.Render(" > ")))
	}

	if names := t.ConcatProperties(); len(names) > 0 {
		fmt.Fprintf(&b, "%s %s\n", r.s.muted.Render("concatProperties"), strings.Join(names, ", "))
	}
	if names := t.MergedProperties(); len(names) > 0 {
		fmt.Fprintf(&b, "%s %s\n", r.s.muted.Render("mergedProperties"), strings.Join(names, ", "))
	}

	for c := t; c != nil; c = c.Parent() {
		if c == object.Base && !r.opts.ShowBuiltins {
			break
		}
		if section := r.slots(c.Name()+".prototype", c.Prototype().Slots()); section != "" {
			b.WriteString(section)
		}
	}
	if section := r.slots(t.Name()+" statics", t.Statics()); section != "" {
		b.WriteString(section)
	}
	return b.String()
}

func (r *Renderer) slots(title string, infos []object.SlotInfo) string {
	var lines []string
	for _, info := range infos {
		if !info.Enumerable && !r.opts.ShowHidden {
			continue
		}
		lines = append(lines, r.slotLine(info))
	}
	if len(lines) == 0 {
		return ""
	}
	return r.s.title.Render(title) + "\n" + strings.Join(lines, "\n") + "\n"
}

func (r *Renderer) slotLine(info object.SlotInfo) string {
	line := fmt.Sprintf("  %s %s", r.s.name.Render(info.Name), r.s.kind.Render(info.Kind.String()))
	switch {
	case info.Kind == object.SlotMethod && info.Shadows:
		line += r.s.muted.Render(" overrides")
	case info.Kind != object.SlotMethod && info.Value != nil:
		line += " = " + r.s.value.Render(formatValue(info.Value))
	}
	if !info.Enumerable {
		line += r.s.muted.Render(" hidden")
	}
	return line
}

// Object renders the enumerable properties of o, own properties marked.
func (r *Renderer) Object(o *object.Object) string {
	var b strings.Builder
	b.WriteString(r.s.title.Render(o.String()))
	b.WriteString("\n")

	props := o.Properties()
	for _, k := range o.Keys() {
		v, ok := props[k]
		if !ok {
			continue
		}
		marker := " "
		if o.HasOwn(k) {
			marker = "*"
		}
		fmt.Fprintf(&b, "%s %s = %s\n", marker, r.s.name.Render(k), r.s.value.Render(formatValue(v)))
	}
	return b.String()
}

func formatValue(v any) string {
	switch v := v.(type) {
	case string:
		return fmt.Sprintf("%q", v)
	case nil:
		return "nil"
	}
	return fmt.Sprintf("%v", v)
}
