// SPDX-License-Identifier: Apache-2.0

package directive

import (
	"fmt"
	"strings"

	pgq "github.com/xataio/pg_query_go/v6"
)

const anonPrefix = "anon: "

// errNotAStatement is returned internally when a line that matched a
// recognizer prefix does not actually parse as the expected statement
// shape. Callers treat this the same as "not recognized" and pass the
// line through unchanged rather than treat the mismatch as fatal.
var errNotAStatement = fmt.Errorf("directive: line does not parse as the expected statement")

// CommentTarget identifies what a COMMENT statement is attached to.
type CommentTarget struct {
	// Qualified is the dotted-name parts in source order, e.g.
	// ["public", "users", "email"] for `COMMENT ON COLUMN
	// public.users.email`, or ["users"] for `COMMENT ON TABLE users`.
	Qualified []string
	// Payload is the raw string literal passed to IS, unprefixed.
	Payload string
}

// ParseCommentColumn parses a `COMMENT ON COLUMN <qualified> IS '...';`
// statement using a real SQL parser. It returns errNotAStatement (wrapped)
// if the line does not parse as a COMMENT ON COLUMN statement at all; a
// successful parse whose payload isn't an "anon: " literal is returned
// with an empty AnonJSON so the caller can pass the line through.
func ParseCommentColumn(line string) (*CommentTarget, error) {
	return parseComment(line, pgq.ObjectType_OBJECT_COLUMN)
}

// ParseCommentTable parses a `COMMENT ON TABLE <qualified> IS '...';`
// statement. See ParseCommentColumn for error semantics.
func ParseCommentTable(line string) (*CommentTarget, error) {
	return parseComment(line, pgq.ObjectType_OBJECT_TABLE)
}

func parseComment(line string, want pgq.ObjectType) (*CommentTarget, error) {
	tree, err := pgq.Parse(line)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errNotAStatement, err)
	}

	stmts := tree.GetStmts()
	if len(stmts) != 1 {
		return nil, errNotAStatement
	}

	comment, ok := stmts[0].GetStmt().GetNode().(*pgq.Node_CommentStmt)
	if !ok {
		return nil, errNotAStatement
	}

	cs := comment.CommentStmt
	if cs.GetObjtype() != want {
		return nil, errNotAStatement
	}

	parts := qualifiedNameParts(cs.GetObject())
	if len(parts) == 0 {
		return nil, errNotAStatement
	}

	return &CommentTarget{
		Qualified: parts,
		Payload:   cs.GetComment(),
	}, nil
}

func qualifiedNameParts(n *pgq.Node) []string {
	list := n.GetList()
	if list == nil {
		return nil
	}

	parts := make([]string, 0, len(list.GetItems()))
	for _, item := range list.GetItems() {
		s := item.GetString_()
		if s == nil {
			return nil
		}
		parts = append(parts, s.GetSval())
	}
	return parts
}

// AnonJSON strips the "anon: " prefix from a COMMENT payload, returning
// ("", false) if the payload is not an anon directive at all (a comment
// with unrelated text is not an error, just not a directive).
func (t *CommentTarget) AnonJSON() (string, bool) {
	if !strings.HasPrefix(t.Payload, anonPrefix) {
		return "", false
	}
	return strings.TrimPrefix(t.Payload, anonPrefix), true
}

// CopyHeader is the parsed form of `COPY <table> (<cols>) FROM stdin;`.
type CopyHeader struct {
	TableName string
	Columns   []string
}

// ParseCopyHeader parses a COPY ... FROM stdin statement. It returns
// (nil, nil) for a syntactically valid COPY statement that isn't a
// "FROM stdin" column-list copy (e.g. COPY ... TO stdout, or a query
// copy), since those never open a data block in a logical dump.
func ParseCopyHeader(line string) (*CopyHeader, error) {
	tree, err := pgq.Parse(line)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errNotAStatement, err)
	}

	stmts := tree.GetStmts()
	if len(stmts) != 1 {
		return nil, errNotAStatement
	}

	copyNode, ok := stmts[0].GetStmt().GetNode().(*pgq.Node_CopyStmt)
	if !ok {
		return nil, errNotAStatement
	}

	cp := copyNode.CopyStmt
	if !cp.GetIsFrom() || cp.GetFilename() != "" || cp.GetRelation() == nil {
		return nil, nil
	}

	table := qualifiedRelationName(cp.GetRelation())

	cols := make([]string, 0, len(cp.GetAttlist()))
	for _, n := range cp.GetAttlist() {
		s := n.GetString_()
		if s == nil {
			continue
		}
		cols = append(cols, s.GetSval())
	}

	return &CopyHeader{TableName: table, Columns: cols}, nil
}

func qualifiedRelationName(rv *pgq.RangeVar) string {
	if rv.GetSchemaname() != "" {
		return rv.GetSchemaname() + "." + rv.GetRelname()
	}
	return rv.GetRelname()
}

// JoinQualified joins dotted-name parts with "." into a directive key,
// keeping every part it is given. Callers pass the parts without the
// trailing column name to get a column directive's table key.
func JoinQualified(parts []string) string {
	return strings.Join(parts, ".")
}
