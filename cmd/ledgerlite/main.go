// Package main provides the interactive LedgerLite shell.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/chzyer/readline"
	"github.com/go-git/go-billy/v6/osfs"

	"github.com/ledgerlite/ledgerlite"
	"github.com/ledgerlite/ledgerlite/db"
	"github.com/ledgerlite/ledgerlite/ledger"
)

const (
	PromptColor  = "\033[36m" // Cyan
	ErrorColor   = "\033[31m" // Red
	SuccessColor = "\033[32m" // Green
	ResetColor   = "\033[0m"
	BoldColor    = "\033[1m"
)

// Version is set at build time via -ldflags
var Version = "dev"

// CLI holds the shell state.
type CLI struct {
	engine      *db.Engine
	fileLog     *ledger.FileLog // nil for in-memory ledgers
	history     []string
	historyFile string
}

func main() {
	dir := flag.String("dir", "", "Directory for the ledger file (memory if empty)")
	path := flag.String("path", "ledger.jsonl", "Ledger file name inside -dir")
	sqlFile := flag.String("file", "", "SQL file to execute (non-interactive)")
	oneShot := flag.String("c", "", "Execute one statement and exit")
	showVersion := flag.Bool("version", false, "Show version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Printf("LedgerLite v%s\n", Version)
		return
	}

	var (
		instance *ledgerlite.Instance
		fileLog  *ledger.FileLog
	)
	if *dir == "" {
		instance = ledgerlite.Open(ledger.NewMemoryLog())
	} else {
		log, err := ledger.NewFileLog(osfs.New(*dir), *path)
		if err != nil {
			fmt.Printf("%sError opening ledger: %v%s\n", ErrorColor, err, ResetColor)
			os.Exit(1)
		}
		fileLog = log
		instance = ledgerlite.Open(log)
	}
	defer instance.Close()

	cli := &CLI{
		engine:      instance.Engine(),
		fileLog:     fileLog,
		historyFile: getHistoryPath(),
	}
	cli.loadHistory()

	if *oneShot != "" {
		result, err := cli.engine.Execute(strings.TrimSuffix(strings.TrimSpace(*oneShot), ";"))
		if err != nil {
			fmt.Printf("%sError: %v%s\n", ErrorColor, err, ResetColor)
			os.Exit(1)
		}
		result.Display()
		return
	}

	if *sqlFile != "" {
		if err := cli.importFile(*sqlFile); err != nil {
			fmt.Printf("%sError importing file: %v%s\n", ErrorColor, err, ResetColor)
			os.Exit(1)
		}
		return
	}

	printBanner(*dir)
	cli.run()
}

func printBanner(dir string) {
	fmt.Println()
	fmt.Printf("%s%sLedgerLite v%s%s\n", BoldColor, PromptColor, Version, ResetColor)
	if dir == "" {
		fmt.Println("Using in-memory ledger (nothing is persisted)")
	} else {
		fmt.Printf("Using ledger directory: %s\n", dir)
	}
	fmt.Println("Type .help for commands, .quit to exit")
	fmt.Println()
}

const (
	mainPrompt = PromptColor + "ledgerlite>" + ResetColor + " "
	contPrompt = PromptColor + "       ...>" + ResetColor + " "
)

func (cli *CLI) run() {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          mainPrompt,
		InterruptPrompt: "^C",
		EOFPrompt:       ".quit",
	})
	if err != nil {
		fmt.Printf("%sError: %v%s\n", ErrorColor, err, ResetColor)
		os.Exit(1)
	}
	defer rl.Close()

	// preload history so the up arrow works immediately
	for _, line := range cli.history {
		rl.SaveHistory(line)
	}

	var buffer strings.Builder

	for {
		line, err := rl.Readline()
		if err == readline.ErrInterrupt {
			// Ctrl+C clears the pending statement
			if buffer.Len() > 0 {
				buffer.Reset()
				rl.SetPrompt(mainPrompt)
			}
			continue
		}
		if err != nil { // EOF
			fmt.Printf("\n%sGoodbye!%s\n", SuccessColor, ResetColor)
			cli.saveHistory()
			return
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		// Dot-commands only apply outside a pending statement
		if buffer.Len() == 0 && strings.HasPrefix(line, ".") {
			if cli.handleCommand(line) {
				continue
			}
		}

		if buffer.Len() > 0 {
			buffer.WriteString(" ")
		}
		buffer.WriteString(line)

		if !statementComplete(buffer.String()) {
			rl.SetPrompt(contPrompt)
			continue
		}

		statement := strings.TrimSpace(buffer.String())
		buffer.Reset()
		rl.SetPrompt(mainPrompt)

		cli.addToHistory(statement)
		rl.SaveHistory(statement)

		result, err := cli.engine.Execute(strings.TrimSuffix(statement, ";"))
		if err != nil {
			fmt.Printf("%s✗ Error: %v%s\n", ErrorColor, err, ResetColor)
		} else {
			result.Display()
		}
	}
}

// handleCommand processes a dot-command. It returns true when the input was
// consumed.
func (cli *CLI) handleCommand(input string) bool {
	parts := strings.Fields(input)
	if len(parts) == 0 {
		return true
	}

	switch strings.ToLower(parts[0]) {
	case ".quit", ".exit", ".q":
		fmt.Printf("%sGoodbye!%s\n", SuccessColor, ResetColor)
		cli.saveHistory()
		os.Exit(0)

	case ".help", ".h", ".?":
		cli.printHelp()

	case ".tables":
		cli.showTables()

	case ".schema":
		if len(parts) > 1 {
			cli.showSchema(parts[1])
		} else {
			fmt.Printf("%s✗ Usage: .schema <table>%s\n", ErrorColor, ResetColor)
		}

	case ".history":
		cli.printHistory()

	case ".backup":
		if len(parts) > 1 {
			cli.backup(parts[1])
		} else {
			fmt.Printf("%s✗ Usage: .backup <dest>%s\n", ErrorColor, ResetColor)
		}

	case ".clear", ".cls":
		fmt.Print("\033[H\033[2J")

	case ".version":
		fmt.Printf("LedgerLite version %s\n", Version)

	case ".import":
		if len(parts) > 1 {
			if err := cli.importFile(parts[1]); err != nil {
				fmt.Printf("%s✗ Error: %v%s\n", ErrorColor, err, ResetColor)
			}
		} else {
			fmt.Printf("%s✗ Usage: .import <file.sql>%s\n", ErrorColor, ResetColor)
		}

	default:
		fmt.Printf("%s✗ Unknown command: %s (type .help for commands)%s\n", ErrorColor, parts[0], ResetColor)
	}

	return true
}

func (cli *CLI) printHelp() {
	fmt.Println()
	fmt.Printf("%s%sSpecial Commands:%s\n", BoldColor, PromptColor, ResetColor)
	fmt.Println("  .help, .h        Show this help message")
	fmt.Println("  .quit, .exit     Exit the shell")
	fmt.Println("  .tables          List declared tables")
	fmt.Println("  .schema <table>  Show a table's columns")
	fmt.Println("  .history         Show command history")
	fmt.Println("  .backup <dest>   Copy the ledger file to a path or s3:// URL")
	fmt.Println("  .import <file>   Execute SQL statements from a file")
	fmt.Println("  .clear           Clear the screen")
	fmt.Println("  .version         Show version info")
	fmt.Println()
	fmt.Printf("%s%sSQL Commands:%s\n", BoldColor, PromptColor, ResetColor)
	fmt.Println("  CREATE TABLE <table> (<column> <type> [PRIMARY KEY|UNIQUE], ...);")
	fmt.Println("  INSERT INTO <table> VALUES (<values>);")
	fmt.Println("  SELECT <cols> FROM <table> [JOIN <t> ON a = b] [WHERE ...];")
	fmt.Println("  UPDATE <table> SET <col> = <val> [WHERE ...];")
	fmt.Println("  DELETE FROM <table> [WHERE ...];")
	fmt.Println()
	fmt.Printf("%s%sTypes:%s INT, TEXT, FLOAT, BOOLEAN, TIMESTAMP\n", BoldColor, PromptColor, ResetColor)
	fmt.Println("Statements end with ';' and may span multiple lines.")
	fmt.Println()
}

func (cli *CLI) showTables() {
	tables := cli.engine.Tables()
	if len(tables) == 0 {
		fmt.Println("No tables declared (schemas are per-process; use CREATE TABLE)")
		return
	}

	table := db.NewTable(os.Stdout)
	table.Header("table")
	for _, name := range tables {
		table.Row(name)
	}
	table.Render()
}

func (cli *CLI) showSchema(name string) {
	schema, err := cli.engine.Table(name)
	if err != nil {
		fmt.Printf("%s✗ Error: %v%s\n", ErrorColor, err, ResetColor)
		return
	}

	table := db.NewTable(os.Stdout)
	table.Header("column", "type", "constraint")
	for _, column := range schema.Columns {
		constraint := ""
		if column.PrimaryKey {
			constraint = "PRIMARY KEY"
		} else if column.Unique {
			constraint = "UNIQUE"
		}
		table.Row(column.Name, string(column.Type), constraint)
	}
	table.Render()
}

func (cli *CLI) backup(dest string) {
	if cli.fileLog == nil {
		fmt.Printf("%s✗ Backup requires a file-backed ledger (start with -dir)%s\n", ErrorColor, ResetColor)
		return
	}

	written, err := cli.fileLog.Backup(dest, nil)
	if err != nil {
		fmt.Printf("%s✗ Backup failed: %v%s\n", ErrorColor, err, ResetColor)
		return
	}
	fmt.Printf("%s✓ Backed up %d bytes to %s%s\n", SuccessColor, written, dest, ResetColor)
}

func (cli *CLI) addToHistory(cmd string) {
	if len(cli.history) > 0 && cli.history[len(cli.history)-1] == cmd {
		return
	}
	cli.history = append(cli.history, cmd)

	if len(cli.history) > 1000 {
		cli.history = cli.history[len(cli.history)-1000:]
	}
}

func (cli *CLI) printHistory() {
	if len(cli.history) == 0 {
		fmt.Println("No command history")
		return
	}

	start := 0
	if len(cli.history) > 20 {
		start = len(cli.history) - 20
	}
	for i := start; i < len(cli.history); i++ {
		fmt.Printf("  %3d  %s\n", i+1, cli.history[i])
	}
}

func getHistoryPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".ledgerlite_history")
}

func (cli *CLI) loadHistory() {
	if cli.historyFile == "" {
		return
	}

	file, err := os.Open(cli.historyFile)
	if err != nil {
		return
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line != "" {
			cli.history = append(cli.history, line)
		}
	}
}

func (cli *CLI) saveHistory() {
	if cli.historyFile == "" {
		return
	}

	file, err := os.Create(cli.historyFile)
	if err != nil {
		return
	}
	defer file.Close()

	start := 0
	if len(cli.history) > 1000 {
		start = len(cli.history) - 1000
	}
	for i := start; i < len(cli.history); i++ {
		fmt.Fprintln(file, cli.history[i])
	}
}

// importFile reads and executes SQL statements from a file.
func (cli *CLI) importFile(filename string) error {
	data, err := os.ReadFile(filename)
	if err != nil {
		return fmt.Errorf("failed to read file: %w", err)
	}

	statements := splitStatements(string(data))
	successCount := 0
	errorCount := 0

	for i, statement := range statements {
		result, err := cli.engine.Execute(statement)
		if err != nil {
			fmt.Printf("%s[%d] ✗ %s%s\n", ErrorColor, i+1, truncate(statement, 50), ResetColor)
			fmt.Printf("      Error: %v\n", err)
			errorCount++
			continue
		}
		successCount++

		switch r := result.(type) {
		case db.RowSet:
			fmt.Printf("%s[%d] ✓ %s (%d rows)%s\n", SuccessColor, i+1, truncate(statement, 50), len(r.Rows), ResetColor)
		case db.AffectedCount:
			fmt.Printf("%s[%d] ✓ %s (%d affected)%s\n", SuccessColor, i+1, truncate(statement, 50), r.Count, ResetColor)
		default:
			fmt.Printf("%s[%d] ✓ %s%s\n", SuccessColor, i+1, truncate(statement, 50), ResetColor)
		}
	}

	fmt.Printf("\n%s✓ Import complete: %d succeeded, %d failed%s\n",
		SuccessColor, successCount, errorCount, ResetColor)

	return nil
}

// statementComplete reports whether the buffer holds a ';' outside single
// quotes.
func statementComplete(buffer string) bool {
	inQuote := false
	escaped := false

	for _, r := range buffer {
		if escaped {
			escaped = false
			continue
		}
		switch {
		case r == '\\':
			escaped = true
		case r == '\'':
			inQuote = !inQuote
		case r == ';' && !inQuote:
			return true
		}
	}
	return false
}

// splitStatements splits SQL text into individual statements on semicolons
// outside string literals, dropping -- comments.
func splitStatements(content string) []string {
	var statements []string
	var current strings.Builder
	inString := false

	for i := 0; i < len(content); i++ {
		ch := content[i]

		if ch == '\'' && (i == 0 || content[i-1] != '\\') {
			inString = !inString
		}

		if !inString && ch == '-' && i+1 < len(content) && content[i+1] == '-' {
			for i < len(content) && content[i] != '\n' {
				i++
			}
			continue
		}

		if !inString && ch == ';' {
			statement := strings.TrimSpace(current.String())
			if statement != "" {
				statements = append(statements, statement)
			}
			current.Reset()
			continue
		}

		current.WriteByte(ch)
	}

	statement := strings.TrimSpace(current.String())
	if statement != "" {
		statements = append(statements, statement)
	}

	return statements
}

// truncate shortens a string to max length with ellipsis.
func truncate(s string, max int) string {
	s = strings.ReplaceAll(s, "\n", " ")
	s = strings.ReplaceAll(s, "\t", " ")
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
