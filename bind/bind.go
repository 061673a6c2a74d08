// Package bind rewrites the named parameters emitted by the renderers
// (`:name`) into the positional placeholders database drivers expect.
//
//	query, names, err := bind.Rebind("postgres", result.SQL)
//	args, err := bind.Args(names, map[string]any{"id": 42})
//	rows, err := db.QueryContext(ctx, query, args...)
package bind

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/zoobzio/sqlfrag/internal/render"
)

// ErrMissingParam is returned by Args when a named parameter has no value.
var ErrMissingParam = errors.New("missing parameter")

// style is a positional placeholder syntax. Numbered styles reuse the
// number of a repeated name; question marks repeat the name instead.
type style int

const (
	dollar   style = iota // $1, $2
	question              // ?
	atP                   // @p1, @p2
)

func styleFor(d render.Dialect) style {
	switch d {
	case render.Postgres:
		return dollar
	case render.MSSQL:
		return atP
	default:
		return question
	}
}

// Rebind converts the named parameters of query into the placeholders of
// the named dialect. It returns the rewritten query and the parameter names
// in argument order.
func Rebind(dialect, query string) (string, []string, error) {
	d, err := render.ParseDialect(dialect)
	if err != nil {
		return "", nil, err
	}
	s := &scanner{
		src:       query,
		style:     styleFor(d),
		brackets:  d == render.MSSQL,
		backslash: render.MySQLFamily.Contains(d),
		index:     make(map[string]int),
	}
	if err := s.scan(); err != nil {
		return "", nil, err
	}
	return s.out.String(), s.names, nil
}

// Args orders values by names.
func Args(names []string, values map[string]any) ([]any, error) {
	args := make([]any, 0, len(names))
	for _, name := range names {
		v, ok := values[name]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrMissingParam, name)
		}
		args = append(args, v)
	}
	return args, nil
}

type scanner struct {
	src       string
	pos       int
	out       strings.Builder
	style     style
	brackets  bool
	backslash bool
	names     []string
	index     map[string]int
}

func (s *scanner) scan() error {
	for s.pos < len(s.src) {
		ch := s.src[s.pos]
		switch {
		case ch == '\'':
			if err := s.quoted('\'', s.backslash); err != nil {
				return err
			}
		case ch == '"':
			if err := s.quoted('"', false); err != nil {
				return err
			}
		case ch == '`':
			if err := s.quoted('`', false); err != nil {
				return err
			}
		case ch == '[' && s.brackets:
			if err := s.quoted(']', false); err != nil {
				return err
			}
		case ch == '-' && s.peek(1) == '-':
			s.lineComment()
		case ch == '/' && s.peek(1) == '*':
			if err := s.blockComment(); err != nil {
				return err
			}
		case ch == ':' && s.peek(1) == ':':
			s.out.WriteString("::")
			s.pos += 2
		case ch == ':' && isNameStart(s.peek(1)):
			s.placeholder()
		default:
			s.out.WriteByte(ch)
			s.pos++
		}
	}
	return nil
}

func (s *scanner) peek(n int) byte {
	if s.pos+n < len(s.src) {
		return s.src[s.pos+n]
	}
	return 0
}

// quoted copies a quoted literal or identifier. A doubled closing
// character is an escape.
func (s *scanner) quoted(closing byte, backslash bool) error {
	start := s.pos
	s.pos++
	for s.pos < len(s.src) {
		ch := s.src[s.pos]
		switch {
		case backslash && ch == '\\':
			s.pos += 2
			continue
		case ch == closing && s.peek(1) == closing:
			s.pos += 2
			continue
		case ch == closing:
			s.pos++
			s.out.WriteString(s.src[start:s.pos])
			return nil
		}
		s.pos++
	}
	return fmt.Errorf("unterminated %c at offset %d", s.src[start], start)
}

func (s *scanner) lineComment() {
	end := strings.IndexByte(s.src[s.pos:], '\n')
	if end < 0 {
		end = len(s.src) - s.pos
	}
	s.out.WriteString(s.src[s.pos : s.pos+end])
	s.pos += end
}

func (s *scanner) blockComment() error {
	end := strings.Index(s.src[s.pos+2:], "*/")
	if end < 0 {
		return fmt.Errorf("unterminated comment at offset %d", s.pos)
	}
	stop := s.pos + 2 + end + 2
	s.out.WriteString(s.src[s.pos:stop])
	s.pos = stop
	return nil
}

func (s *scanner) placeholder() {
	start := s.pos + 1
	end := start
	for end < len(s.src) && isNameChar(s.src[end]) {
		end++
	}
	name := s.src[start:end]
	s.pos = end

	if s.style == question {
		s.names = append(s.names, name)
		s.out.WriteByte('?')
		return
	}

	n, seen := s.index[name]
	if !seen {
		s.names = append(s.names, name)
		n = len(s.names)
		s.index[name] = n
	}
	if s.style == dollar {
		s.out.WriteString("$" + strconv.Itoa(n))
	} else {
		s.out.WriteString("@p" + strconv.Itoa(n))
	}
}

func isNameStart(ch byte) bool {
	return ch == '_' || (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z')
}

func isNameChar(ch byte) bool {
	return isNameStart(ch) || (ch >= '0' && ch <= '9')
}
