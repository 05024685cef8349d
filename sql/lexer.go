package sql

import (
	"fmt"
	"strings"
)

// LexError reports an unrecognized character or an unterminated string,
// with the source position of the offending input.
type LexError struct {
	Line    int
	Column  int
	Message string
}

func (e *LexError) Error() string {
	return fmt.Sprintf("lex error at line %d, column %d: %s", e.Line, e.Column, e.Message)
}

type Token struct {
	Type   TokenType
	Value  string
	Line   int
	Column int
}

type TokenType int

const (
	Identifier TokenType = iota
	String
	Int
	Float
	True
	False
	Null
	Wildcard
	Comma
	ParenOpen
	ParenClose
	Semicolon
	Equals
	NotEquals
	LessThan
	GreaterThan
	LessThanOrEqual
	GreaterThanOrEqual
	And
	Or
	Select
	From
	Where
	Join
	On
	Insert
	Into
	Values
	Update
	Set
	Delete
	Create
	TableKeyword
	PrimaryKey
	Unique
	EOF
)

func (token Token) String() string {
	switch token.Type {
	case Identifier:
		return "Identifier(" + token.Value + ")"
	case String:
		return "String(" + token.Value + ")"
	case Int:
		return "Int(" + token.Value + ")"
	case Float:
		return "Float(" + token.Value + ")"
	case True:
		return "True"
	case False:
		return "False"
	case Null:
		return "Null"
	case Wildcard:
		return "Wildcard"
	case Comma:
		return "Comma"
	case ParenOpen:
		return "ParenOpen"
	case ParenClose:
		return "ParenClose"
	case Semicolon:
		return "Semicolon"
	case Equals:
		return "Equals"
	case NotEquals:
		return "NotEquals"
	case LessThan:
		return "LessThan"
	case GreaterThan:
		return "GreaterThan"
	case LessThanOrEqual:
		return "LessThanOrEqual"
	case GreaterThanOrEqual:
		return "GreaterThanOrEqual"
	case And:
		return "And"
	case Or:
		return "Or"
	case Select:
		return "Select"
	case From:
		return "From"
	case Where:
		return "Where"
	case Join:
		return "Join"
	case On:
		return "On"
	case Insert:
		return "Insert"
	case Into:
		return "Into"
	case Values:
		return "Values"
	case Update:
		return "Update"
	case Set:
		return "Set"
	case Delete:
		return "Delete"
	case Create:
		return "Create"
	case TableKeyword:
		return "Table"
	case PrimaryKey:
		return "PrimaryKey"
	case Unique:
		return "Unique"
	case EOF:
		return "EOF"
	default:
		return "Unknown(" + token.Value + ")"
	}
}

type Lexer struct {
	sql          string
	position     int
	readPosition int
	ch           byte
	line         int
	column       int
}

func NewLexer(sql string) *Lexer {
	lexer := &Lexer{sql: sql, line: 1}
	lexer.readChar()
	return lexer
}

func (lexer *Lexer) readChar() {
	if lexer.ch == '\n' {
		lexer.line++
		lexer.column = 0
	}
	if lexer.readPosition >= len(lexer.sql) {
		lexer.ch = 0
	} else {
		lexer.ch = lexer.sql[lexer.readPosition]
	}
	lexer.position = lexer.readPosition
	lexer.readPosition++
	lexer.column++
}

func (lexer *Lexer) NextToken() (Token, error) {
	lexer.skipWhitespaceAndComments()

	line, column := lexer.line, lexer.column

	var token Token
	switch lexer.ch {
	case ',':
		token = Token{Type: Comma, Value: string(lexer.ch)}
	case '(':
		token = Token{Type: ParenOpen, Value: string(lexer.ch)}
	case ')':
		token = Token{Type: ParenClose, Value: string(lexer.ch)}
	case ';':
		token = Token{Type: Semicolon, Value: string(lexer.ch)}
	case '*':
		token = Token{Type: Wildcard, Value: string(lexer.ch)}
	case 0:
		token = Token{Type: EOF}
	case '\'':
		value, err := lexer.readString()
		if err != nil {
			return Token{}, err
		}
		return Token{Type: String, Value: value, Line: line, Column: column}, nil
	default:
		if isOperator(lexer.ch) {
			operator := lexer.readOperator()
			token := Token{Value: operator, Line: line, Column: column}
			switch operator {
			case "=":
				token.Type = Equals
			case "!=", "<>":
				token.Type = NotEquals
			case "<":
				token.Type = LessThan
			case ">":
				token.Type = GreaterThan
			case "<=":
				token.Type = LessThanOrEqual
			case ">=":
				token.Type = GreaterThanOrEqual
			default:
				return Token{}, &LexError{Line: line, Column: column, Message: "unrecognized operator " + operator}
			}
			return token, nil
		}
		if isDigit(lexer.ch) || (lexer.ch == '-' && isDigit(lexer.peekChar())) {
			var sign string
			if lexer.ch == '-' {
				sign = "-"
				lexer.readChar()
			}
			num := sign + lexer.readNumber()
			if lexer.ch == '.' && isDigit(lexer.peekChar()) {
				lexer.readChar() // consume '.'
				decimal := lexer.readNumber()
				return Token{Type: Float, Value: num + "." + decimal, Line: line, Column: column}, nil
			}
			return Token{Type: Int, Value: num, Line: line, Column: column}, nil
		}
		if isIdentStart(lexer.ch) {
			literal := lexer.readIdentifier()
			if strings.EqualFold(literal, "PRIMARY") {
				save := lexer.save()
				lexer.skipWhitespaceAndComments()
				next := lexer.readIdentifier()
				if strings.EqualFold(next, "KEY") {
					return Token{Type: PrimaryKey, Value: "PRIMARY KEY", Line: line, Column: column}, nil
				}
				lexer.restore(save)
			}
			return Token{Type: lookupIdentifier(literal), Value: literal, Line: line, Column: column}, nil
		}
		return Token{}, &LexError{Line: line, Column: column, Message: fmt.Sprintf("unrecognized character %q", lexer.ch)}
	}

	token.Line, token.Column = line, column
	lexer.readChar()
	return token, nil
}

// PeekToken returns the next token without consuming it.
func (lexer *Lexer) PeekToken() (Token, error) {
	save := lexer.save()
	token, err := lexer.NextToken()
	lexer.restore(save)
	return token, err
}

type lexerState struct {
	position     int
	readPosition int
	ch           byte
	line         int
	column       int
}

func (lexer *Lexer) save() lexerState {
	return lexerState{lexer.position, lexer.readPosition, lexer.ch, lexer.line, lexer.column}
}

func (lexer *Lexer) restore(s lexerState) {
	lexer.position = s.position
	lexer.readPosition = s.readPosition
	lexer.ch = s.ch
	lexer.line = s.line
	lexer.column = s.column
}

func (lexer *Lexer) peekChar() byte {
	if lexer.readPosition >= len(lexer.sql) {
		return 0
	}
	return lexer.sql[lexer.readPosition]
}

func (lexer *Lexer) skipWhitespaceAndComments() {
	for {
		for lexer.ch == ' ' || lexer.ch == '\t' || lexer.ch == '\n' || lexer.ch == '\r' {
			lexer.readChar()
		}
		// "--" comments run to end of line
		if lexer.ch == '-' && lexer.peekChar() == '-' {
			for lexer.ch != '\n' && lexer.ch != 0 {
				lexer.readChar()
			}
			continue
		}
		return
	}
}

func (lexer *Lexer) readIdentifier() string {
	position := lexer.position
	for isIdentPart(lexer.ch) {
		lexer.readChar()
	}
	return lexer.sql[position:lexer.position]
}

// readString consumes a single-quoted string literal. Both backslash escapes
// and doubled quotes ('') produce a literal quote.
func (lexer *Lexer) readString() (string, error) {
	line, column := lexer.line, lexer.column
	lexer.readChar() // skip opening quote

	var b strings.Builder
	for {
		switch lexer.ch {
		case 0:
			return "", &LexError{Line: line, Column: column, Message: "unterminated string literal"}
		case '\\':
			lexer.readChar()
			if lexer.ch == 0 {
				return "", &LexError{Line: line, Column: column, Message: "unterminated string literal"}
			}
			b.WriteByte(lexer.ch)
			lexer.readChar()
		case '\'':
			if lexer.peekChar() == '\'' {
				b.WriteByte('\'')
				lexer.readChar()
				lexer.readChar()
				continue
			}
			lexer.readChar() // skip closing quote
			return b.String(), nil
		default:
			b.WriteByte(lexer.ch)
			lexer.readChar()
		}
	}
}

func (lexer *Lexer) readNumber() string {
	position := lexer.position
	for isDigit(lexer.ch) {
		lexer.readChar()
	}
	return lexer.sql[position:lexer.position]
}

func (lexer *Lexer) readOperator() string {
	position := lexer.position
	for isOperator(lexer.ch) {
		lexer.readChar()
	}
	return lexer.sql[position:lexer.position]
}

func isIdentStart(ch byte) bool {
	return ('a' <= ch && ch <= 'z') || ('A' <= ch && ch <= 'Z') || ch == '_'
}

// isIdentPart includes '.' so qualified names like orders.user_id lex as a
// single identifier token; the parser splits on the dot.
func isIdentPart(ch byte) bool {
	return isIdentStart(ch) || ch == '.' || isDigit(ch)
}

func isDigit(ch byte) bool {
	return '0' <= ch && ch <= '9'
}

func isOperator(ch byte) bool {
	return ch == '=' || ch == '!' || ch == '<' || ch == '>'
}

func lookupIdentifier(id string) TokenType {
	switch strings.ToUpper(id) {
	case "SELECT":
		return Select
	case "FROM":
		return From
	case "WHERE":
		return Where
	case "JOIN":
		return Join
	case "ON":
		return On
	case "INSERT":
		return Insert
	case "INTO":
		return Into
	case "VALUES":
		return Values
	case "UPDATE":
		return Update
	case "SET":
		return Set
	case "DELETE":
		return Delete
	case "CREATE":
		return Create
	case "TABLE":
		return TableKeyword
	case "UNIQUE":
		return Unique
	case "AND":
		return And
	case "OR":
		return Or
	case "TRUE":
		return True
	case "FALSE":
		return False
	case "NULL":
		return Null
	default:
		return Identifier
	}
}
