package sqlfrag

import (
	"fmt"

	"github.com/zoobzio/sqlfrag/internal/render"
	"github.com/zoobzio/sqlfrag/internal/types"
)

// XMLElement wraps field values in <name>...</name>.
// Element names must be valid XML names and may not start with "xml".
func XMLElement(name string, field types.Field) *XMLElementBuilder {
	eb := &XMLElementBuilder{el: types.XMLElement{Name: name, Field: field}}
	if err := render.ValidateXMLName(name); err != nil {
		eb.err = err
	}
	return eb
}

// XMLElementBuilder builds a single XML element expression.
type XMLElementBuilder struct {
	el    types.XMLElement
	alias string
	err   error
}

// As sets the column alias.
func (eb *XMLElementBuilder) As(alias string) *XMLElementBuilder {
	if eb.err != nil {
		return eb
	}
	if !isValidSQLIdentifier(alias) {
		eb.err = fmt.Errorf("invalid alias '%s'", alias)
		return eb
	}
	eb.alias = alias
	return eb
}

// Build returns the element as a select-list item.
func (eb *XMLElementBuilder) Build() (types.FieldExpression, error) {
	if eb.err != nil {
		return types.FieldExpression{}, eb.err
	}
	el := eb.el
	return types.FieldExpression{XMLElement: &el, Alias: eb.alias}, nil
}

// XMLAgg concatenates XML values across a group. The argument is a Field or
// an *XMLElementBuilder.
func XMLAgg(value any) *XMLAggBuilder {
	ab := &XMLAggBuilder{}
	switch v := value.(type) {
	case types.Field:
		ab.expr.Field = v
	case *XMLElementBuilder:
		if v.err != nil {
			ab.err = v.err
			break
		}
		el := v.el
		ab.expr.Element = &el
	default:
		ab.err = fmt.Errorf("XMLAgg requires a field or XML element, got %T", value)
	}
	return ab
}

// XMLAggBuilder builds an XML aggregation.
type XMLAggBuilder struct {
	expr  types.XMLAggExpression
	alias string
	err   error
}

// OrderBy orders the aggregated values.
func (ab *XMLAggBuilder) OrderBy(field types.Field, direction types.Direction) *XMLAggBuilder {
	if ab.err != nil {
		return ab
	}
	if direction != types.ASC && direction != types.DESC {
		ab.err = fmt.Errorf("invalid sort direction: %q", direction)
		return ab
	}
	ab.expr.OrderBy = append(ab.expr.OrderBy, types.OrderBy{Field: field, Direction: direction})
	return ab
}

// As sets the column alias.
func (ab *XMLAggBuilder) As(alias string) *XMLAggBuilder {
	if ab.err != nil {
		return ab
	}
	if !isValidSQLIdentifier(alias) {
		ab.err = fmt.Errorf("invalid alias '%s'", alias)
		return ab
	}
	ab.alias = alias
	return ab
}

// Build returns the aggregation as a select-list item.
func (ab *XMLAggBuilder) Build() (types.FieldExpression, error) {
	if ab.err != nil {
		return types.FieldExpression{}, ab.err
	}
	if ab.expr.Element == nil && ab.expr.Field.IsStar() {
		return types.FieldExpression{}, fmt.Errorf("XMLAGG requires a field")
	}
	expr := ab.expr
	return types.FieldExpression{XMLAgg: &expr, Alias: ab.alias}, nil
}
