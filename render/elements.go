package render

// voidElements cannot have children and have no closing tag.
var voidElements = map[string]bool{
	"area": true, "base": true, "br": true, "col": true, "embed": true,
	"hr": true, "img": true, "input": true, "link": true, "meta": true,
	"param": true, "source": true, "track": true, "wbr": true,
}

func isVoidElement(tag string) bool { return voidElements[tag] }

// booleanAttrs render as just the bare attribute name when truthy, never
// with a ="value" suffix.
var booleanAttrs = map[string]bool{
	"allowfullscreen": true, "async": true, "autofocus": true, "autoplay": true,
	"checked": true, "controls": true, "default": true, "defer": true,
	"disabled": true, "formnovalidate": true, "hidden": true, "loop": true,
	"multiple": true, "muted": true, "novalidate": true, "open": true,
	"readonly": true, "required": true, "reversed": true, "selected": true,
}

func isBooleanAttr(name string) bool { return booleanAttrs[name] }

// geometryPrefixes are the Tailwind-style utility-class prefixes that
// layout.FromElement already expresses as concrete Style fields. A
// RenderNode's className can carry both layout classes and purely visual
// ones (color, typography); stripping only these prefixes from the
// rendered class attribute avoids emitting a class the browser would
// otherwise apply redundantly (or, for a class the engine interpreted
// differently than Tailwind would, misleadingly). This is a minimal
// recognizer, not a Tailwind parser: any class outside this prefix set
// passes through untouched.
var geometryPrefixes = []string{"w-", "h-", "flex-", "justify-", "items-", "gap-"}

func isGeometryClass(class string) bool {
	for _, p := range geometryPrefixes {
		if len(class) > len(p) && class[:len(p)] == p {
			return true
		}
	}
	return false
}
