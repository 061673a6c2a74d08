package document

import (
	"fmt"
	"sort"
	"strings"

	"github.com/zoobzio/sqlfrag"
)

var operators = map[string]sqlfrag.Operator{
	"=":           sqlfrag.EQ,
	"!=":          sqlfrag.NE,
	"<>":          sqlfrag.NE,
	">":           sqlfrag.GT,
	">=":          sqlfrag.GE,
	"<":           sqlfrag.LT,
	"<=":          sqlfrag.LE,
	"IN":          sqlfrag.IN,
	"NOT IN":      sqlfrag.NotIn,
	"LIKE":        sqlfrag.LIKE,
	"NOT LIKE":    sqlfrag.NotLike,
	"IS NULL":     sqlfrag.IsNull,
	"IS NOT NULL": sqlfrag.IsNotNull,
}

// Build translates the document into a builder, validating references
// against s. The returned builder has already built without error.
func (d *Document) Build(s *sqlfrag.Instance) (*sqlfrag.Builder, error) {
	kind, err := d.statement()
	if err != nil {
		return nil, err
	}

	t := &translator{s: s}
	var b *sqlfrag.Builder
	switch kind {
	case "select":
		b, err = t.selectStmt(d.Select, false)
	case "count":
		b, err = t.selectStmt(d.Count, true)
	case "insert":
		b, err = t.insert(d.Insert)
	case "update":
		b, err = t.update(d.Update)
	case "delete":
		b, err = t.delete(d.Delete)
	case "comment_on":
		b, err = t.commentOn(d.CommentOn)
	case "create_user":
		b, err = t.user(d.CreateUser, sqlfrag.CreateUser)
	case "drop_user":
		b, err = t.user(d.DropUser, sqlfrag.DropUser)
	case "grant":
		b, err = t.grant(d.Grant, sqlfrag.Grant)
	case "revoke":
		b, err = t.grant(d.Revoke, sqlfrag.Revoke)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", kind, err)
	}

	if d.Comment != "" {
		b = b.Comment(d.Comment)
	}
	if _, err := b.Build(); err != nil {
		return nil, fmt.Errorf("%s: %w", kind, err)
	}
	return b, nil
}

type translator struct {
	s *sqlfrag.Instance
}

func (t *translator) table(name, alias string) (sqlfrag.Table, error) {
	if alias == "" {
		return t.s.TryT(name)
	}
	return t.s.TryT(name, alias)
}

// field resolves "name" or "qualifier.name".
func (t *translator) field(ref string) (sqlfrag.Field, error) {
	qualifier, name, qualified := strings.Cut(ref, ".")
	if !qualified {
		return t.s.TryF(ref)
	}
	f, err := t.s.TryF(name)
	if err != nil {
		return sqlfrag.Field{}, err
	}
	return t.s.TryWithTable(f, qualifier)
}

func (t *translator) fields(refs []string) ([]sqlfrag.Field, error) {
	out := make([]sqlfrag.Field, 0, len(refs))
	for _, ref := range refs {
		f, err := t.field(ref)
		if err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, nil
}

func operator(op string) (sqlfrag.Operator, error) {
	if o, ok := operators[strings.ToUpper(strings.Join(strings.Fields(op), " "))]; ok {
		return o, nil
	}
	return "", fmt.Errorf("unknown operator: %q", op)
}

func direction(dir string) (sqlfrag.Direction, error) {
	switch strings.ToUpper(dir) {
	case "", "ASC":
		return sqlfrag.ASC, nil
	case "DESC":
		return sqlfrag.DESC, nil
	}
	return "", fmt.Errorf("unknown sort direction: %q", dir)
}

func (t *translator) condition(c Condition) (sqlfrag.ConditionItem, error) {
	if len(c.And) > 0 || len(c.Or) > 0 {
		if len(c.And) > 0 && len(c.Or) > 0 {
			return nil, fmt.Errorf("condition cannot have both and and or")
		}
		group := c.And
		if len(c.Or) > 0 {
			group = c.Or
		}
		items := make([]sqlfrag.ConditionItem, 0, len(group))
		for _, sub := range group {
			item, err := t.condition(sub)
			if err != nil {
				return nil, err
			}
			items = append(items, item)
		}
		if len(c.And) > 0 {
			return t.s.TryAnd(items...)
		}
		return t.s.TryOr(items...)
	}

	f, err := t.field(c.Field)
	if err != nil {
		return nil, err
	}
	op, err := operator(c.Op)
	if err != nil {
		return nil, err
	}

	switch {
	case op == sqlfrag.IsNull:
		return t.s.TryNull(f)
	case op == sqlfrag.IsNotNull:
		return t.s.TryNotNull(f)
	case c.Other != "":
		right, err := t.field(c.Other)
		if err != nil {
			return nil, err
		}
		return sqlfrag.CF(f, op, right), nil
	}

	p, err := t.s.TryP(c.Param)
	if err != nil {
		return nil, err
	}
	return t.s.TryC(f, op, p)
}

func (t *translator) aggregate(a Aggregate) (*sqlfrag.AggregateBuilder, error) {
	fn := strings.ToLower(a.Func)

	var field sqlfrag.Field
	if a.Field != "" {
		f, err := t.field(a.Field)
		if err != nil {
			return nil, err
		}
		field = f
	}

	var ab *sqlfrag.AggregateBuilder
	switch fn {
	case "count":
		if a.Field == "" {
			ab = sqlfrag.CountAll()
		} else {
			ab = sqlfrag.CountField(field)
		}
	case "bool_and", "bool_or", "every":
		if a.Condition == nil {
			return nil, fmt.Errorf("%s requires a condition", fn)
		}
		cond, err := t.condition(*a.Condition)
		if err != nil {
			return nil, err
		}
		switch fn {
		case "bool_and":
			ab = sqlfrag.BoolAnd(cond)
		case "bool_or":
			ab = sqlfrag.BoolOr(cond)
		default:
			ab = sqlfrag.Every(cond)
		}
	default:
		if a.Field == "" {
			return nil, fmt.Errorf("%s requires a field", fn)
		}
		var err error
		if ab, err = t.fieldAggregate(fn, field, a); err != nil {
			return nil, err
		}
	}

	if a.Distinct {
		ab = ab.Distinct()
	}
	if a.Filter != nil {
		cond, err := t.condition(*a.Filter)
		if err != nil {
			return nil, err
		}
		ab = ab.Filter(cond)
	}
	for _, o := range a.OrderBy {
		f, err := t.field(o.Field)
		if err != nil {
			return nil, err
		}
		dir, err := direction(o.Dir)
		if err != nil {
			return nil, err
		}
		ab = ab.OrderBy(f, dir)
	}
	if a.As != "" {
		ab = ab.As(a.As)
	}
	return ab, nil
}

func (t *translator) fieldAggregate(fn string, field sqlfrag.Field, a Aggregate) (*sqlfrag.AggregateBuilder, error) {
	switch fn {
	case "sum":
		return sqlfrag.Sum(field), nil
	case "avg":
		return sqlfrag.Avg(field), nil
	case "min":
		return sqlfrag.Min(field), nil
	case "max":
		return sqlfrag.Max(field), nil
	case "product":
		return sqlfrag.Product(field), nil
	case "mode":
		return sqlfrag.Mode(field), nil
	case "median":
		return sqlfrag.Median(field), nil
	case "stddev_pop":
		return sqlfrag.StddevPop(field), nil
	case "stddev_samp":
		return sqlfrag.StddevSamp(field), nil
	case "var_pop":
		return sqlfrag.VarPop(field), nil
	case "var_samp":
		return sqlfrag.VarSamp(field), nil
	case "string_agg":
		return sqlfrag.StringAgg(field, a.Separator), nil
	case "array_agg":
		return sqlfrag.ArrayAgg(field), nil
	case "percentile_cont", "percentile_disc":
		fraction, err := t.s.TryP(a.Fraction)
		if err != nil {
			return nil, fmt.Errorf("%s fraction: %w", fn, err)
		}
		if fn == "percentile_cont" {
			return sqlfrag.PercentileCont(fraction, field), nil
		}
		return sqlfrag.PercentileDisc(fraction, field), nil
	}
	return nil, fmt.Errorf("unknown aggregate function: %q", a.Func)
}

func (t *translator) xmlAgg(x XMLAgg) (*sqlfrag.XMLAggBuilder, error) {
	f, err := t.field(x.Field)
	if err != nil {
		return nil, err
	}

	var value any = f
	if x.Element != "" {
		value = sqlfrag.XMLElement(x.Element, f)
	}
	xb := sqlfrag.XMLAgg(value)
	for _, o := range x.OrderBy {
		of, err := t.field(o.Field)
		if err != nil {
			return nil, err
		}
		dir, err := direction(o.Dir)
		if err != nil {
			return nil, err
		}
		xb = xb.OrderBy(of, dir)
	}
	if x.As != "" {
		xb = xb.As(x.As)
	}
	return xb, nil
}

func (t *translator) where(b *sqlfrag.Builder, conds []Condition) (*sqlfrag.Builder, error) {
	for _, c := range conds {
		item, err := t.condition(c)
		if err != nil {
			return nil, err
		}
		b = b.Where(item)
	}
	return b, nil
}

func (t *translator) returning(b *sqlfrag.Builder, refs []string) (*sqlfrag.Builder, error) {
	if len(refs) == 0 {
		return b, nil
	}
	fs, err := t.fields(refs)
	if err != nil {
		return nil, err
	}
	return b.Returning(fs...), nil
}

func (t *translator) selectStmt(s *Select, count bool) (*sqlfrag.Builder, error) {
	tbl, err := t.table(s.Table, s.Alias)
	if err != nil {
		return nil, err
	}

	var b *sqlfrag.Builder
	if count {
		b = sqlfrag.Count(tbl)
	} else {
		b = sqlfrag.Select(tbl)
	}

	if s.Distinct {
		b = b.Distinct()
	}
	if len(s.Fields) > 0 {
		fs, err := t.fields(s.Fields)
		if err != nil {
			return nil, err
		}
		b = b.Fields(fs...)
	}
	for _, a := range s.Aggregates {
		ab, err := t.aggregate(a)
		if err != nil {
			return nil, err
		}
		b = b.Expr(ab)
	}
	for _, x := range s.XMLAgg {
		xb, err := t.xmlAgg(x)
		if err != nil {
			return nil, err
		}
		b = b.Expr(xb)
	}

	for _, j := range s.Joins {
		jt, err := t.table(j.Table, j.Alias)
		if err != nil {
			return nil, err
		}
		var on sqlfrag.ConditionItem
		if j.On != nil {
			if on, err = t.condition(*j.On); err != nil {
				return nil, err
			}
		}
		switch strings.ToLower(j.Type) {
		case "", "inner":
			b = b.InnerJoin(jt, on)
		case "left":
			b = b.LeftJoin(jt, on)
		case "right":
			b = b.RightJoin(jt, on)
		case "cross":
			if on != nil {
				return nil, fmt.Errorf("cross join takes no condition")
			}
			b = b.CrossJoin(jt)
		default:
			return nil, fmt.Errorf("unknown join type: %q", j.Type)
		}
	}

	if b, err = t.where(b, s.Where); err != nil {
		return nil, err
	}

	if len(s.GroupBy) > 0 {
		fs, err := t.fields(s.GroupBy)
		if err != nil {
			return nil, err
		}
		b = b.GroupBy(fs...)
	}
	for _, h := range s.Having {
		ab, err := t.aggregate(h.Aggregate)
		if err != nil {
			return nil, err
		}
		op, err := operator(h.Op)
		if err != nil {
			return nil, err
		}
		p, err := t.s.TryP(h.Param)
		if err != nil {
			return nil, err
		}
		b = b.HavingAgg(ab, op, p)
	}

	for _, o := range s.OrderBy {
		f, err := t.field(o.Field)
		if err != nil {
			return nil, err
		}
		dir, err := direction(o.Dir)
		if err != nil {
			return nil, err
		}
		if o.Nulls == "" {
			b = b.OrderBy(f, dir)
		} else {
			b = b.OrderByNulls(f, dir, sqlfrag.NullsOrdering("NULLS "+strings.ToUpper(o.Nulls)))
		}
	}
	if s.OrderByConstant {
		b = b.OrderByConstant()
	}
	if s.Limit != nil {
		b = b.Limit(*s.Limit)
	}
	if s.Offset != nil {
		b = b.Offset(*s.Offset)
	}
	return b, nil
}

// assignments applies a field-to-param map in field order.
func (t *translator) assignments(m map[string]string, apply func(sqlfrag.Field, sqlfrag.Param)) error {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		f, err := t.field(k)
		if err != nil {
			return err
		}
		p, err := t.s.TryP(m[k])
		if err != nil {
			return err
		}
		apply(f, p)
	}
	return nil
}

func (t *translator) insert(in *Insert) (*sqlfrag.Builder, error) {
	tbl, err := t.table(in.Table, "")
	if err != nil {
		return nil, err
	}

	b := sqlfrag.Insert(tbl)
	for i, row := range in.Rows {
		if i > 0 {
			b = b.NextRow()
		}
		if err := t.assignments(row, func(f sqlfrag.Field, p sqlfrag.Param) { b = b.Value(f, p) }); err != nil {
			return nil, err
		}
	}

	if c := in.OnConflict; c != nil {
		cols, err := t.fields(c.Columns)
		if err != nil {
			return nil, err
		}
		cb := b.OnConflict(cols...)
		switch {
		case len(c.Set) > 0:
			ub := cb.DoUpdate()
			if err := t.assignments(c.Set, func(f sqlfrag.Field, p sqlfrag.Param) { ub = ub.Set(f, p) }); err != nil {
				return nil, err
			}
			b = ub.Build()
		case c.DoNothing:
			b = cb.DoNothing()
		default:
			return nil, fmt.Errorf("on_conflict requires do_nothing or set")
		}
	}

	return t.returning(b, in.Returning)
}

func (t *translator) update(up *Update) (*sqlfrag.Builder, error) {
	tbl, err := t.table(up.Table, "")
	if err != nil {
		return nil, err
	}

	b := sqlfrag.Update(tbl)
	if err := t.assignments(up.Set, func(f sqlfrag.Field, p sqlfrag.Param) { b = b.Set(f, p) }); err != nil {
		return nil, err
	}
	if b, err = t.where(b, up.Where); err != nil {
		return nil, err
	}
	return t.returning(b, up.Returning)
}

func (t *translator) delete(del *Delete) (*sqlfrag.Builder, error) {
	tbl, err := t.table(del.Table, "")
	if err != nil {
		return nil, err
	}

	b, err := t.where(sqlfrag.Delete(tbl), del.Where)
	if err != nil {
		return nil, err
	}
	return t.returning(b, del.Returning)
}

func (t *translator) commentOn(c *CommentOn) (*sqlfrag.Builder, error) {
	tbl, err := t.table(c.Table, "")
	if err != nil {
		return nil, err
	}
	if c.Column == "" {
		return sqlfrag.CommentOnTable(tbl, c.Text), nil
	}
	f, err := t.field(c.Column)
	if err != nil {
		return nil, err
	}
	return sqlfrag.CommentOnColumn(tbl, f, c.Text), nil
}

func (t *translator) userRef(name, host string) (sqlfrag.User, error) {
	u, err := t.s.TryU(name)
	if err != nil {
		return sqlfrag.User{}, err
	}
	if host != "" {
		u = u.At(host)
	}
	return u, nil
}

func (t *translator) user(u *User, stmt func(sqlfrag.User) *sqlfrag.Builder) (*sqlfrag.Builder, error) {
	ref, err := t.userRef(u.Name, u.Host)
	if err != nil {
		return nil, err
	}
	b := stmt(ref)
	if u.IfExists {
		b = b.IfExists()
	}
	return b, nil
}

func (t *translator) grant(g *Grant, stmt func(sqlfrag.User, sqlfrag.Table, ...sqlfrag.Privilege) *sqlfrag.Builder) (*sqlfrag.Builder, error) {
	ref, err := t.userRef(g.User, g.Host)
	if err != nil {
		return nil, err
	}
	tbl, err := t.table(g.Table, "")
	if err != nil {
		return nil, err
	}
	privs := make([]sqlfrag.Privilege, 0, len(g.Privileges))
	for _, p := range g.Privileges {
		privs = append(privs, sqlfrag.Privilege(strings.ToUpper(p)))
	}
	return stmt(ref, tbl, privs...), nil
}
