package render

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/zoobzio/sqlfrag/internal/types"
)

var xmlNamePattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_.-]*$`)

// ValidateXMLName checks an element name. Names beginning with "xml" in any
// case are reserved.
func ValidateXMLName(name string) error {
	if !xmlNamePattern.MatchString(name) {
		return fmt.Errorf("%w: invalid XML element name %q", ErrInvalidIdentifier, name)
	}
	if strings.HasPrefix(strings.ToLower(name), "xml") {
		return fmt.Errorf("%w: XML element name %q uses the reserved xml prefix", ErrInvalidIdentifier, name)
	}
	return nil
}

func (e *Engine) renderXMLElement(el *types.XMLElement) (string, error) {
	if err := ValidateXMLName(el.Name); err != nil {
		return "", err
	}
	field := e.renderField(el.Field)

	if e.caps.NativeXML {
		return fmt.Sprintf("XMLELEMENT(NAME %s, %s)", e.QuoteIdentifier(el.Name), field), nil
	}

	open := e.QuoteString("<" + el.Name + ">")
	closing := e.QuoteString("</" + el.Name + ">")
	// NULL content yields an empty element, not a NULL row.
	content := fmt.Sprintf("COALESCE(%s, %s)", e.xmlEscape(field), e.QuoteString(""))
	if e.dialect == SQLite {
		return fmt.Sprintf("(%s || %s || %s)", open, content, closing), nil
	}
	return fmt.Sprintf("CONCAT(%s, %s, %s)", open, content, closing), nil
}

// xmlEscape escapes markup characters in emulated element content.
// The ampersand goes first so later entities are not escaped twice.
func (e *Engine) xmlEscape(value string) string {
	for _, r := range [][2]string{{"&", "&amp;"}, {"<", "&lt;"}, {">", "&gt;"}} {
		value = fmt.Sprintf("REPLACE(%s, %s, %s)", value, e.QuoteString(r[0]), e.QuoteString(r[1]))
	}
	return value
}

func (e *Engine) renderXMLAgg(agg *types.XMLAggExpression) (string, error) {
	var value string
	if agg.Element != nil {
		el, err := e.renderXMLElement(agg.Element)
		if err != nil {
			return "", err
		}
		value = el
	} else {
		if agg.Field.IsStar() {
			return "", fmt.Errorf("XMLAGG requires a field or element")
		}
		value = e.renderField(agg.Field)
	}

	switch {
	case e.caps.NativeXML:
		return fmt.Sprintf("XMLAGG(%s%s)", value, e.inlineOrderBy(agg.OrderBy)), nil
	case MySQLFamily.Contains(e.dialect):
		return fmt.Sprintf("GROUP_CONCAT(%s%s SEPARATOR '')", value, e.inlineOrderBy(agg.OrderBy)), nil
	case e.dialect == SQLite:
		return fmt.Sprintf("GROUP_CONCAT(%s, ''%s)", value, e.inlineOrderBy(agg.OrderBy)), nil
	case e.dialect == MSSQL:
		sql := fmt.Sprintf("STRING_AGG(CAST(%s AS NVARCHAR(MAX)), N'')", value)
		if len(agg.OrderBy) > 0 {
			sql += " WITHIN GROUP (ORDER BY " + e.renderOrderItems(agg.OrderBy) + ")"
		}
		return "CAST(" + sql + " AS XML)", nil
	default:
		return "", e.unsupported("XMLAGG")
	}
}
