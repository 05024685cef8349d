// Package sql provides SQL lexing and parsing for LedgerLite.
//
// The package includes a lexer that tokenizes SQL strings and a
// recursive-descent parser that produces abstract syntax trees for SQL
// statements.
//
// # Lexer Usage
//
//	lexer := sql.NewLexer("SELECT * FROM users")
//	for {
//	    token, err := lexer.NextToken()
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    if token.Type == sql.EOF {
//	        break
//	    }
//	    fmt.Printf("Token: %s\n", token)
//	}
//
// # Parser Usage
//
//	parser := sql.NewParser("SELECT * FROM users WHERE id = 1")
//	statement, err := parser.Parse()
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// # Supported Statements
//
// The parser supports the following statement types:
//   - SelectStatement (with INNER JOIN and WHERE)
//   - InsertStatement
//   - UpdateStatement
//   - DeleteStatement
//   - CreateTableStatement
//
// # WHERE Expressions
//
// WHERE clauses parse into an expression tree of LogicalExpr and
// ComparisonExpr nodes. AND binds tighter than OR, so
// "a = 1 AND b = 2 OR c = 3" parses as "(a = 1 AND b = 2) OR c = 3".
// Parenthesized sub-expressions are not supported.
package sql
