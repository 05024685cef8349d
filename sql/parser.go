package sql

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ledgerlite/ledgerlite/core"
)

// ParseError reports a structural mismatch between the token stream and the
// grammar, carrying what was expected and what was found.
type ParseError struct {
	Expected string
	Found    Token
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error at line %d, column %d: expected %s, found %s",
		e.Found.Line, e.Found.Column, e.Expected, e.Found)
}

type StatementType int

const (
	SelectStatementType StatementType = iota
	InsertStatementType
	UpdateStatementType
	DeleteStatementType
	CreateTableStatementType
)

type Statement interface {
	Type() StatementType
}

type SelectStatement struct {
	Table   string
	Columns []string // nil means all columns
	Joins   []JoinClause
	Where   Expr // nil when no WHERE clause
}

type JoinClause struct {
	Table    string
	LeftCol  string
	RightCol string
}

type InsertStatement struct {
	Table  string
	Values []any
}

type UpdateStatement struct {
	Table string
	Sets  []SetClause
	Where Expr
}

type SetClause struct {
	Column string
	Value  any
}

type DeleteStatement struct {
	Table string
	Where Expr
}

type CreateTableStatement struct {
	Table   string
	Columns []core.Column
}

func (s SelectStatement) Type() StatementType {
	return SelectStatementType
}

func (s InsertStatement) Type() StatementType {
	return InsertStatementType
}

func (s UpdateStatement) Type() StatementType {
	return UpdateStatementType
}

func (s DeleteStatement) Type() StatementType {
	return DeleteStatementType
}

func (s CreateTableStatement) Type() StatementType {
	return CreateTableStatementType
}

// Expr is a WHERE-clause expression. AND binds tighter than OR; the grammar
// encodes that directly in the tree shape, so evaluation is a plain fold.
type Expr interface {
	exprNode()
}

type LogicalOp int

const (
	LogicalAnd LogicalOp = iota
	LogicalOr
)

type LogicalExpr struct {
	Op    LogicalOp
	Left  Expr
	Right Expr
}

type CompareOp int

const (
	CompareEquals CompareOp = iota
	CompareNotEquals
	CompareLessThan
	CompareGreaterThan
	CompareLessThanOrEqual
	CompareGreaterThanOrEqual
)

type ComparisonExpr struct {
	Left  Operand
	Op    CompareOp
	Right Operand
}

func (LogicalExpr) exprNode()    {}
func (ComparisonExpr) exprNode() {}

// Operand is one side of a comparison: a column reference (possibly
// qualified as table.column) or a typed literal.
type Operand struct {
	Column   string
	Literal  any
	IsColumn bool
}

// ColumnName returns the bare column name of a column operand, stripping a
// table qualifier if present.
func (o Operand) ColumnName() string {
	if i := strings.LastIndexByte(o.Column, '.'); i >= 0 {
		return o.Column[i+1:]
	}
	return o.Column
}

type Parser struct {
	lexer *Lexer
}

func NewParser(sql string) *Parser {
	lexer := NewLexer(sql)
	return &Parser{lexer: lexer}
}

func (parser *Parser) Parse() (Statement, error) {
	token, err := parser.lexer.NextToken()
	if err != nil {
		return nil, err
	}
	switch token.Type {
	case Select:
		return ParseSelect(parser)
	case Insert:
		return ParseInsert(parser)
	case Update:
		return ParseUpdate(parser)
	case Delete:
		return ParseDelete(parser)
	case Create:
		return ParseCreate(parser)
	default:
		return nil, &ParseError{Expected: "SELECT, INSERT, UPDATE, DELETE or CREATE", Found: token}
	}
}

func ParseSelect(parser *Parser) (Statement, error) {
	var selectStatement SelectStatement

	token, err := parser.lexer.NextToken()
	if err != nil {
		return nil, err
	}

	switch token.Type {
	case Wildcard:
		token, err = parser.lexer.NextToken()
		if err != nil {
			return nil, err
		}
	case Identifier:
		selectStatement.Columns = append(selectStatement.Columns, token.Value)
		for {
			token, err = parser.lexer.NextToken()
			if err != nil {
				return nil, err
			}
			if token.Type != Comma {
				break
			}
			token, err = parser.lexer.NextToken()
			if err != nil {
				return nil, err
			}
			if token.Type != Identifier {
				return nil, &ParseError{Expected: "column name", Found: token}
			}
			selectStatement.Columns = append(selectStatement.Columns, token.Value)
		}
	default:
		return nil, &ParseError{Expected: "'*' or column list", Found: token}
	}

	if token.Type != From {
		return nil, &ParseError{Expected: "FROM", Found: token}
	}

	token, err = parser.lexer.NextToken()
	if err != nil {
		return nil, err
	}
	if token.Type != Identifier {
		return nil, &ParseError{Expected: "table name", Found: token}
	}
	selectStatement.Table = token.Value

	token, err = parser.lexer.NextToken()
	if err != nil {
		return nil, err
	}
	for token.Type == Join {
		join, err := parseJoinClause(parser)
		if err != nil {
			return nil, err
		}
		selectStatement.Joins = append(selectStatement.Joins, join)
		token, err = parser.lexer.NextToken()
		if err != nil {
			return nil, err
		}
	}

	if token.Type == Where {
		selectStatement.Where, err = parseWhereExpr(parser)
		if err != nil {
			return nil, err
		}
		token, err = parser.lexer.NextToken()
		if err != nil {
			return nil, err
		}
	}

	if err := expectEnd(token); err != nil {
		return nil, err
	}
	return selectStatement, nil
}

func parseJoinClause(parser *Parser) (JoinClause, error) {
	var join JoinClause

	token, err := parser.lexer.NextToken()
	if err != nil {
		return join, err
	}
	if token.Type != Identifier {
		return join, &ParseError{Expected: "table name after JOIN", Found: token}
	}
	join.Table = token.Value

	token, err = parser.lexer.NextToken()
	if err != nil {
		return join, err
	}
	if token.Type != On {
		return join, &ParseError{Expected: "ON", Found: token}
	}

	token, err = parser.lexer.NextToken()
	if err != nil {
		return join, err
	}
	if token.Type != Identifier {
		return join, &ParseError{Expected: "join column", Found: token}
	}
	join.LeftCol = token.Value

	token, err = parser.lexer.NextToken()
	if err != nil {
		return join, err
	}
	if token.Type != Equals {
		return join, &ParseError{Expected: "'='", Found: token}
	}

	token, err = parser.lexer.NextToken()
	if err != nil {
		return join, err
	}
	if token.Type != Identifier {
		return join, &ParseError{Expected: "join column", Found: token}
	}
	join.RightCol = token.Value

	return join, nil
}

func ParseInsert(parser *Parser) (Statement, error) {
	var insertStatement InsertStatement

	token, err := parser.lexer.NextToken()
	if err != nil {
		return nil, err
	}
	if token.Type != Into {
		return nil, &ParseError{Expected: "INTO", Found: token}
	}

	token, err = parser.lexer.NextToken()
	if err != nil {
		return nil, err
	}
	if token.Type != Identifier {
		return nil, &ParseError{Expected: "table name", Found: token}
	}
	insertStatement.Table = token.Value

	token, err = parser.lexer.NextToken()
	if err != nil {
		return nil, err
	}
	if token.Type != Values {
		return nil, &ParseError{Expected: "VALUES", Found: token}
	}

	token, err = parser.lexer.NextToken()
	if err != nil {
		return nil, err
	}
	if token.Type != ParenOpen {
		return nil, &ParseError{Expected: "'('", Found: token}
	}

	for {
		token, err = parser.lexer.NextToken()
		if err != nil {
			return nil, err
		}
		value, ok := literalValue(token)
		if !ok {
			return nil, &ParseError{Expected: "literal value", Found: token}
		}
		insertStatement.Values = append(insertStatement.Values, value)

		token, err = parser.lexer.NextToken()
		if err != nil {
			return nil, err
		}
		if token.Type == Comma {
			continue
		}
		if token.Type == ParenClose {
			break
		}
		return nil, &ParseError{Expected: "',' or ')'", Found: token}
	}

	token, err = parser.lexer.NextToken()
	if err != nil {
		return nil, err
	}
	if err := expectEnd(token); err != nil {
		return nil, err
	}
	return insertStatement, nil
}

func ParseUpdate(parser *Parser) (Statement, error) {
	var updateStatement UpdateStatement

	token, err := parser.lexer.NextToken()
	if err != nil {
		return nil, err
	}
	if token.Type != Identifier {
		return nil, &ParseError{Expected: "table name", Found: token}
	}
	updateStatement.Table = token.Value

	token, err = parser.lexer.NextToken()
	if err != nil {
		return nil, err
	}
	if token.Type != Set {
		return nil, &ParseError{Expected: "SET", Found: token}
	}

	for {
		token, err = parser.lexer.NextToken()
		if err != nil {
			return nil, err
		}
		if token.Type != Identifier {
			return nil, &ParseError{Expected: "column name", Found: token}
		}
		column := token.Value

		token, err = parser.lexer.NextToken()
		if err != nil {
			return nil, err
		}
		if token.Type != Equals {
			return nil, &ParseError{Expected: "'='", Found: token}
		}

		token, err = parser.lexer.NextToken()
		if err != nil {
			return nil, err
		}
		value, ok := literalValue(token)
		if !ok {
			return nil, &ParseError{Expected: "literal value", Found: token}
		}
		updateStatement.Sets = append(updateStatement.Sets, SetClause{Column: column, Value: value})

		token, err = parser.lexer.NextToken()
		if err != nil {
			return nil, err
		}
		if token.Type == Comma {
			continue
		}
		break
	}

	if token.Type == Where {
		updateStatement.Where, err = parseWhereExpr(parser)
		if err != nil {
			return nil, err
		}
		token, err = parser.lexer.NextToken()
		if err != nil {
			return nil, err
		}
	}

	if err := expectEnd(token); err != nil {
		return nil, err
	}
	return updateStatement, nil
}

func ParseDelete(parser *Parser) (Statement, error) {
	var deleteStatement DeleteStatement

	token, err := parser.lexer.NextToken()
	if err != nil {
		return nil, err
	}
	if token.Type != From {
		return nil, &ParseError{Expected: "FROM", Found: token}
	}

	token, err = parser.lexer.NextToken()
	if err != nil {
		return nil, err
	}
	if token.Type != Identifier {
		return nil, &ParseError{Expected: "table name", Found: token}
	}
	deleteStatement.Table = token.Value

	token, err = parser.lexer.NextToken()
	if err != nil {
		return nil, err
	}
	if token.Type == Where {
		deleteStatement.Where, err = parseWhereExpr(parser)
		if err != nil {
			return nil, err
		}
		token, err = parser.lexer.NextToken()
		if err != nil {
			return nil, err
		}
	}

	if err := expectEnd(token); err != nil {
		return nil, err
	}
	return deleteStatement, nil
}

func ParseCreate(parser *Parser) (Statement, error) {
	var createStatement CreateTableStatement

	token, err := parser.lexer.NextToken()
	if err != nil {
		return nil, err
	}
	if token.Type != TableKeyword {
		return nil, &ParseError{Expected: "TABLE", Found: token}
	}

	token, err = parser.lexer.NextToken()
	if err != nil {
		return nil, err
	}
	if token.Type != Identifier {
		return nil, &ParseError{Expected: "table name", Found: token}
	}
	createStatement.Table = token.Value

	token, err = parser.lexer.NextToken()
	if err != nil {
		return nil, err
	}
	if token.Type != ParenOpen {
		return nil, &ParseError{Expected: "'('", Found: token}
	}

	for {
		column, next, err := parseColumnDef(parser)
		if err != nil {
			return nil, err
		}
		createStatement.Columns = append(createStatement.Columns, column)

		if next.Type == Comma {
			continue
		}
		if next.Type == ParenClose {
			break
		}
		return nil, &ParseError{Expected: "',' or ')'", Found: next}
	}

	token, err = parser.lexer.NextToken()
	if err != nil {
		return nil, err
	}
	if err := expectEnd(token); err != nil {
		return nil, err
	}
	return createStatement, nil
}

// parseColumnDef parses one "name TYPE [PRIMARY KEY] [UNIQUE]" definition and
// returns the token that terminated it (',' or ')').
func parseColumnDef(parser *Parser) (core.Column, Token, error) {
	var column core.Column

	token, err := parser.lexer.NextToken()
	if err != nil {
		return column, token, err
	}
	if token.Type != Identifier {
		return column, token, &ParseError{Expected: "column name", Found: token}
	}
	column.Name = token.Value

	token, err = parser.lexer.NextToken()
	if err != nil {
		return column, token, err
	}
	typeName := strings.ToUpper(token.Value)
	if token.Type != Identifier || !core.ValidDataType(typeName) {
		return column, token, &ParseError{Expected: "column type (INT, TEXT, FLOAT, BOOLEAN or TIMESTAMP)", Found: token}
	}
	column.Type = core.DataType(typeName)

	for {
		token, err = parser.lexer.NextToken()
		if err != nil {
			return column, token, err
		}
		switch token.Type {
		case PrimaryKey:
			column.PrimaryKey = true
		case Unique:
			column.Unique = true
		default:
			return column, token, nil
		}
	}
}

// parseWhereExpr parses an OR-separated list of AND groups; the tree shape
// gives AND precedence over OR.
func parseWhereExpr(parser *Parser) (Expr, error) {
	left, err := parseAndGroup(parser)
	if err != nil {
		return nil, err
	}
	for {
		peeked, err := parser.lexer.PeekToken()
		if err != nil {
			return nil, err
		}
		if peeked.Type != Or {
			return left, nil
		}
		if _, err := parser.lexer.NextToken(); err != nil {
			return nil, err
		}
		right, err := parseAndGroup(parser)
		if err != nil {
			return nil, err
		}
		left = LogicalExpr{Op: LogicalOr, Left: left, Right: right}
	}
}

func parseAndGroup(parser *Parser) (Expr, error) {
	left, err := parseComparison(parser)
	if err != nil {
		return nil, err
	}
	for {
		peeked, err := parser.lexer.PeekToken()
		if err != nil {
			return nil, err
		}
		if peeked.Type != And {
			return left, nil
		}
		if _, err := parser.lexer.NextToken(); err != nil {
			return nil, err
		}
		right, err := parseComparison(parser)
		if err != nil {
			return nil, err
		}
		left = LogicalExpr{Op: LogicalAnd, Left: left, Right: right}
	}
}

func parseComparison(parser *Parser) (Expr, error) {
	left, err := parseOperand(parser)
	if err != nil {
		return nil, err
	}

	token, err := parser.lexer.NextToken()
	if err != nil {
		return nil, err
	}
	var op CompareOp
	switch token.Type {
	case Equals:
		op = CompareEquals
	case NotEquals:
		op = CompareNotEquals
	case LessThan:
		op = CompareLessThan
	case GreaterThan:
		op = CompareGreaterThan
	case LessThanOrEqual:
		op = CompareLessThanOrEqual
	case GreaterThanOrEqual:
		op = CompareGreaterThanOrEqual
	default:
		return nil, &ParseError{Expected: "comparison operator", Found: token}
	}

	right, err := parseOperand(parser)
	if err != nil {
		return nil, err
	}
	return ComparisonExpr{Left: left, Op: op, Right: right}, nil
}

func parseOperand(parser *Parser) (Operand, error) {
	token, err := parser.lexer.NextToken()
	if err != nil {
		return Operand{}, err
	}
	if token.Type == Identifier {
		return Operand{Column: token.Value, IsColumn: true}, nil
	}
	if value, ok := literalValue(token); ok {
		return Operand{Literal: value}, nil
	}
	return Operand{}, &ParseError{Expected: "column or literal value", Found: token}
}

// literalValue converts a literal token to its typed Go value. NULL maps to
// nil; int literals become int64, float literals float64.
func literalValue(token Token) (any, bool) {
	switch token.Type {
	case Int:
		n, err := strconv.ParseInt(token.Value, 10, 64)
		if err != nil {
			return nil, false
		}
		return n, true
	case Float:
		f, err := strconv.ParseFloat(token.Value, 64)
		if err != nil {
			return nil, false
		}
		return f, true
	case String:
		return token.Value, true
	case True:
		return true, true
	case False:
		return false, true
	case Null:
		return nil, true
	default:
		return nil, false
	}
}

// expectEnd accepts an optional trailing semicolon followed by end of input.
func expectEnd(token Token) error {
	if token.Type == Semicolon || token.Type == EOF {
		return nil
	}
	return &ParseError{Expected: "end of statement", Found: token}
}
