// Package document decodes YAML query documents and translates them into
// sqlfrag builders.
//
// A document holds exactly one statement key:
//
//	comment: monthly revenue
//	select:
//	  table: orders
//	  fields: [user_id]
//	  aggregates:
//	    - func: sum
//	      field: total
//	      filter: {field: paid, op: "=", param: paid}
//	      as: paid_total
//	  group_by: [user_id]
//	params:
//	  paid: true
package document

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// Document is a single query description.
type Document struct {
	Comment string         `yaml:"comment,omitempty"`
	Params  map[string]any `yaml:"params,omitempty"`

	Select     *Select    `yaml:"select,omitempty"`
	Count      *Select    `yaml:"count,omitempty"`
	Insert     *Insert    `yaml:"insert,omitempty"`
	Update     *Update    `yaml:"update,omitempty"`
	Delete     *Delete    `yaml:"delete,omitempty"`
	CommentOn  *CommentOn `yaml:"comment_on,omitempty"`
	CreateUser *User      `yaml:"create_user,omitempty"`
	DropUser   *User      `yaml:"drop_user,omitempty"`
	Grant      *Grant     `yaml:"grant,omitempty"`
	Revoke     *Grant     `yaml:"revoke,omitempty"`
}

// Condition is a comparison or a group. Field references accept an
// optional qualifier ("o.user_id").
type Condition struct {
	Field string      `yaml:"field,omitempty"`
	Op    string      `yaml:"op,omitempty"`
	Param string      `yaml:"param,omitempty"`
	Other string      `yaml:"other,omitempty"` // field on the right-hand side
	And   []Condition `yaml:"and,omitempty"`
	Or    []Condition `yaml:"or,omitempty"`
}

// Order is an ORDER BY entry.
type Order struct {
	Field string `yaml:"field"`
	Dir   string `yaml:"dir,omitempty"`
	Nulls string `yaml:"nulls,omitempty"`
}

// Aggregate describes an aggregate select item.
type Aggregate struct {
	Func      string     `yaml:"func"`
	Field     string     `yaml:"field,omitempty"`
	Distinct  bool       `yaml:"distinct,omitempty"`
	Filter    *Condition `yaml:"filter,omitempty"`
	Condition *Condition `yaml:"condition,omitempty"` // bool_and, bool_or, every
	Separator string     `yaml:"separator,omitempty"` // string_agg
	Fraction  string     `yaml:"fraction,omitempty"`  // percentile param name
	OrderBy   []Order    `yaml:"order_by,omitempty"`
	As        string     `yaml:"as,omitempty"`
}

// XMLAgg describes an XMLAGG select item. Element wraps each value in
// an XML element when set.
type XMLAgg struct {
	Element string  `yaml:"element,omitempty"`
	Field   string  `yaml:"field"`
	OrderBy []Order `yaml:"order_by,omitempty"`
	As      string  `yaml:"as,omitempty"`
}

// Join is a JOIN clause.
type Join struct {
	Type  string     `yaml:"type,omitempty"` // inner, left, right, cross
	Table string     `yaml:"table"`
	Alias string     `yaml:"alias,omitempty"`
	On    *Condition `yaml:"on,omitempty"`
}

// Having compares an aggregate with a parameter.
type Having struct {
	Aggregate Aggregate `yaml:"aggregate"`
	Op        string    `yaml:"op"`
	Param     string    `yaml:"param"`
}

// Select is a SELECT or COUNT statement.
type Select struct {
	Table           string      `yaml:"table"`
	Alias           string      `yaml:"alias,omitempty"`
	Distinct        bool        `yaml:"distinct,omitempty"`
	Fields          []string    `yaml:"fields,omitempty"`
	Aggregates      []Aggregate `yaml:"aggregates,omitempty"`
	XMLAgg          []XMLAgg    `yaml:"xml_agg,omitempty"`
	Joins           []Join      `yaml:"joins,omitempty"`
	Where           []Condition `yaml:"where,omitempty"`
	GroupBy         []string    `yaml:"group_by,omitempty"`
	Having          []Having    `yaml:"having,omitempty"`
	OrderBy         []Order     `yaml:"order_by,omitempty"`
	OrderByConstant bool        `yaml:"order_by_constant,omitempty"`
	Limit           *int        `yaml:"limit,omitempty"`
	Offset          *int        `yaml:"offset,omitempty"`
}

// Conflict is an ON CONFLICT clause. A non-empty Set selects DO UPDATE.
type Conflict struct {
	Columns   []string          `yaml:"columns"`
	DoNothing bool              `yaml:"do_nothing,omitempty"`
	Set       map[string]string `yaml:"set,omitempty"`
}

// Insert is an INSERT statement. Each row maps fields to parameter names.
type Insert struct {
	Table      string              `yaml:"table"`
	Rows       []map[string]string `yaml:"rows"`
	OnConflict *Conflict           `yaml:"on_conflict,omitempty"`
	Returning  []string            `yaml:"returning,omitempty"`
}

// Update is an UPDATE statement.
type Update struct {
	Table     string            `yaml:"table"`
	Set       map[string]string `yaml:"set"`
	Where     []Condition       `yaml:"where,omitempty"`
	Returning []string          `yaml:"returning,omitempty"`
}

// Delete is a DELETE statement.
type Delete struct {
	Table     string      `yaml:"table"`
	Where     []Condition `yaml:"where,omitempty"`
	Returning []string    `yaml:"returning,omitempty"`
}

// CommentOn sets or removes a table or column comment. An empty Text
// removes it.
type CommentOn struct {
	Table  string `yaml:"table"`
	Column string `yaml:"column,omitempty"`
	Text   string `yaml:"text"`
}

// User is a CREATE USER or DROP USER statement.
type User struct {
	Name     string `yaml:"name"`
	Host     string `yaml:"host,omitempty"`
	IfExists bool   `yaml:"if_exists,omitempty"`
}

// Grant is a GRANT or REVOKE statement.
type Grant struct {
	User       string   `yaml:"user"`
	Host       string   `yaml:"host,omitempty"`
	Table      string   `yaml:"table"`
	Privileges []string `yaml:"privileges"`
}

// Parse decodes a single YAML document. Unknown keys are rejected.
func Parse(data []byte) (*Document, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var doc Document
	if err := dec.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("empty document")
		}
		return nil, fmt.Errorf("failed to decode document: %w", err)
	}

	var extra any
	if err := dec.Decode(&extra); err == nil {
		return nil, fmt.Errorf("multiple YAML documents are not supported")
	}

	if _, err := doc.statement(); err != nil {
		return nil, err
	}
	return &doc, nil
}

// Load reads and parses a document file.
func Load(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read document: %w", err)
	}
	doc, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return doc, nil
}

// Kind returns the statement key of the document.
func (d *Document) Kind() string {
	kind, _ := d.statement()
	return kind
}

func (d *Document) statement() (string, error) {
	set := map[string]bool{
		"select":      d.Select != nil,
		"count":       d.Count != nil,
		"insert":      d.Insert != nil,
		"update":      d.Update != nil,
		"delete":      d.Delete != nil,
		"comment_on":  d.CommentOn != nil,
		"create_user": d.CreateUser != nil,
		"drop_user":   d.DropUser != nil,
		"grant":       d.Grant != nil,
		"revoke":      d.Revoke != nil,
	}

	var kind string
	for k, ok := range set {
		if !ok {
			continue
		}
		if kind != "" {
			return "", fmt.Errorf("document has more than one statement")
		}
		kind = k
	}
	if kind == "" {
		return "", fmt.Errorf("document has no statement")
	}
	return kind, nil
}
