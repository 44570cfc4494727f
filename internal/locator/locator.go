// Package locator builds Playwright selectors from typed parts so that
// visible-text and attribute values are always quoted correctly.
package locator

import (
	"strconv"
	"strings"
)

// Selector is anything that renders to a Playwright selector string.
type Selector interface {
	String() string
}

// CSS is a CSS selector rendered with the css= engine prefix.
type CSS struct {
	expr string
}

// Tag starts a CSS selector for an element name. An empty tag matches any element.
func Tag(tag string) CSS {
	return CSS{expr: tag}
}

// AttrEquals appends [attr="value"].
func (c CSS) AttrEquals(attr, value string) CSS {
	c.expr += "[" + attr + "=" + cssString(value) + "]"
	return c
}

// AttrContains appends [attr*="value"].
func (c CSS) AttrContains(attr, value string) CSS {
	c.expr += "[" + attr + "*=" + cssString(value) + "]"
	return c
}

// Expr returns the raw CSS expression.
func (c CSS) Expr() string {
	return c.expr
}

func (c CSS) String() string {
	return "css=" + c.expr
}

func cssString(value string) string {
	r := strings.NewReplacer(`\`, `\\`, `"`, `\"`, "\n", `\a `)
	return `"` + r.Replace(value) + `"`
}

// XPath is an XPath expression rendered with the xpath= engine prefix.
// Each builder method appends one location step or one predicate on the
// last step.
type XPath struct {
	expr string
}

// Descendant starts an absolute //tag path.
func Descendant(tag string) XPath {
	return XPath{expr: "//" + tag}
}

// Descendant appends //tag.
func (x XPath) Descendant(tag string) XPath {
	x.expr += "//" + tag
	return x
}

// Child appends /tag.
func (x XPath) Child(tag string) XPath {
	x.expr += "/" + tag
	return x
}

// Ancestor appends /ancestor::tag.
func (x XPath) Ancestor(tag string) XPath {
	x.expr += "/ancestor::" + tag
	return x
}

// FollowingSibling appends /following-sibling::tag.
func (x XPath) FollowingSibling(tag string) XPath {
	x.expr += "/following-sibling::" + tag
	return x
}

// AttrEquals appends [@attr="value"].
func (x XPath) AttrEquals(attr, value string) XPath {
	x.expr += "[@" + attr + "=" + Literal(value) + "]"
	return x
}

// AttrContains appends [contains(@attr, "value")].
func (x XPath) AttrContains(attr, value string) XPath {
	x.expr += "[contains(@" + attr + ", " + Literal(value) + ")]"
	return x
}

// ClassContains appends [contains(@class, "value")].
func (x XPath) ClassContains(value string) XPath {
	return x.AttrContains("class", value)
}

// TextEquals appends [text()="value"].
func (x XPath) TextEquals(value string) XPath {
	x.expr += "[text()=" + Literal(value) + "]"
	return x
}

// TextContains appends [contains(text(), "value")].
func (x XPath) TextContains(value string) XPath {
	x.expr += "[contains(text(), " + Literal(value) + ")]"
	return x
}

// Then appends another path expression, which must start with / or //.
func (x XPath) Then(next XPath) XPath {
	x.expr += next.expr
	return x
}

// Nth selects the n-th (1-based) match of the whole expression: (expr)[n].
func (x XPath) Nth(n int) XPath {
	x.expr = "(" + x.expr + ")[" + strconv.Itoa(n) + "]"
	return x
}

// Expr returns the raw XPath expression.
func (x XPath) Expr() string {
	return x.expr
}

func (x XPath) String() string {
	return "xpath=" + x.expr
}

// Literal renders value as an XPath 1.0 string literal. XPath has no escape
// sequences, so a value holding both quote kinds is split into concat().
func Literal(value string) string {
	if !strings.Contains(value, `"`) {
		return `"` + value + `"`
	}
	if !strings.Contains(value, "'") {
		return "'" + value + "'"
	}

	parts := strings.Split(value, `"`)
	pieces := make([]string, 0, len(parts)*2)
	for i, part := range parts {
		if i > 0 {
			pieces = append(pieces, `'"'`)
		}
		if part != "" {
			pieces = append(pieces, `"`+part+`"`)
		}
	}
	return "concat(" + strings.Join(pieces, ", ") + ")"
}
