package dom

import "strings"

type declaration struct {
	prop, val string
}

func parseStyle(s string) []declaration {
	var out []declaration
	for _, part := range strings.Split(s, ";") {
		prop, val, ok := strings.Cut(part, ":")
		if !ok {
			continue
		}
		prop = strings.ToLower(strings.TrimSpace(prop))
		val = strings.TrimSpace(val)
		if prop == "" {
			continue
		}
		out = append(out, declaration{prop, val})
	}
	return out
}

func formatStyle(decls []declaration) string {
	parts := make([]string, 0, len(decls))
	for _, d := range decls {
		parts = append(parts, d.prop+": "+d.val)
	}
	return strings.Join(parts, "; ")
}

// Style returns an inline style property. There is no cascade: computed
// style is approximated by the element's own style attribute.
func (e *Element) Style(prop string) string {
	prop = strings.ToLower(prop)
	for _, d := range parseStyle(e.GetAttr("style")) {
		if d.prop == prop {
			return d.val
		}
	}
	return ""
}

// SetStyle sets an inline style property; an empty value removes it.
func (e *Element) SetStyle(prop, val string) {
	prop = strings.ToLower(prop)
	decls := parseStyle(e.GetAttr("style"))
	out := decls[:0]
	replaced := false
	for _, d := range decls {
		if d.prop == prop {
			if val != "" && !replaced {
				out = append(out, declaration{prop, val})
				replaced = true
			}
			continue
		}
		out = append(out, d)
	}
	if val != "" && !replaced {
		out = append(out, declaration{prop, val})
	}
	if len(out) == 0 {
		e.RemoveAttr("style")
		return
	}
	e.SetAttr("style", formatStyle(out))
}
