package md5

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/timtadh/lexmachine"
	"github.com/timtadh/lexmachine/machines"
)

const (
	TOKEN_NUMBER = iota
	TOKEN_STRING
	TOKEN_WORD
	TOKEN_LPAREN
	TOKEN_RPAREN
	TOKEN_LBRACE
	TOKEN_RBRACE
	TOKEN_NEWLINE
	TOKEN_OTHER
)

var lexer *lexmachine.Lexer

func init() {
	lexer = lexmachine.NewLexer()
	lexer.Add([]byte(`[\+\-]?([0-9]+\.?[0-9]*|\.[0-9]+)([eE][\+\-]?[0-9]+)?`), getToken(TOKEN_NUMBER))
	lexer.Add([]byte(`"[^"]*"`), getToken(TOKEN_STRING))
	lexer.Add([]byte(`[a-zA-Z_][a-zA-Z0-9_]*`), getToken(TOKEN_WORD))
	lexer.Add([]byte(`\(`), getToken(TOKEN_LPAREN))
	lexer.Add([]byte(`\)`), getToken(TOKEN_RPAREN))
	lexer.Add([]byte(`\{`), getToken(TOKEN_LBRACE))
	lexer.Add([]byte(`\}`), getToken(TOKEN_RBRACE))
	lexer.Add([]byte(`(\r\n|\n|\r)`), getToken(TOKEN_NEWLINE))
	lexer.Add([]byte(`//[^\n]*`), skip)
	lexer.Add([]byte(`( |\t)+`), skip)
	lexer.Add([]byte(`.`), getToken(TOKEN_OTHER))

	// compiled up front, Scanner would otherwise build the dfa on first use
	// from whichever goroutine gets there
	if err := lexer.Compile(); err != nil {
		panic(err)
	}
}

func getToken(tokenType int) lexmachine.Action {
	return func(s *lexmachine.Scanner, m *machines.Match) (interface{}, error) {
		return s.Token(tokenType, string(m.Bytes), m), nil
	}
}

func skip(scan *lexmachine.Scanner, match *machines.Match) (interface{}, error) {
	return nil, nil
}

type token struct {
	Type   int
	Lexeme string
	Line   int
}

// tokenizeLines splits a block body into non-empty lines of tokens.
func tokenizeLines(text []byte) ([][]token, error) {
	scanner, err := lexer.Scanner(text)
	if err != nil {
		return nil, errors.Wrapf(err, "Failed to create lexer scanner")
	}

	lines := make([][]token, 0, 16)
	var line []token
	for itok, err, eos := scanner.Next(); !eos; itok, err, eos = scanner.Next() {
		if err != nil {
			return nil, errors.Wrapf(err, "Failed to parse token")
		}
		tok := itok.(*lexmachine.Token)

		if tok.Type == TOKEN_NEWLINE {
			if len(line) != 0 {
				lines = append(lines, line)
				line = nil
			}
			continue
		}
		line = append(line, token{
			Type:   tok.Type,
			Lexeme: string(tok.Lexeme),
			Line:   tok.StartLine,
		})
	}
	if len(line) != 0 {
		lines = append(lines, line)
	}
	return lines, nil
}

// shape is a line pattern: "N" is a number, "S" a quoted string, parens and
// braces match themselves and any other element is a literal word.
type shape []string

func newShape(pattern string) shape {
	return shape(strings.Fields(pattern))
}

// captures holds the N and S values of a matched line in order.
type captures struct {
	numbers []float64
	strings []string
}

func (c *captures) int(i int) int {
	return int(c.numbers[i])
}

func (c *captures) float(i int) float32 {
	return float32(c.numbers[i])
}

func (s shape) match(line []token) (*captures, bool) {
	if len(line) != len(s) {
		return nil, false
	}
	c := &captures{}
	for i, el := range s {
		tok := line[i]
		switch el {
		case "N":
			if tok.Type != TOKEN_NUMBER {
				return nil, false
			}
			v, err := strconv.ParseFloat(tok.Lexeme, 64)
			if err != nil {
				return nil, false
			}
			c.numbers = append(c.numbers, v)
		case "S":
			if tok.Type != TOKEN_STRING {
				return nil, false
			}
			c.strings = append(c.strings, strings.Trim(tok.Lexeme, `"`))
		case "(":
			if tok.Type != TOKEN_LPAREN {
				return nil, false
			}
		case ")":
			if tok.Type != TOKEN_RPAREN {
				return nil, false
			}
		default:
			if tok.Type != TOKEN_WORD || tok.Lexeme != el {
				return nil, false
			}
		}
	}
	return c, true
}

// numbers returns every number token of a block body in order.
func numbers(text []byte) ([]float32, error) {
	lines, err := tokenizeLines(text)
	if err != nil {
		return nil, err
	}
	values := make([]float32, 0, 64)
	for _, line := range lines {
		for _, tok := range line {
			if tok.Type != TOKEN_NUMBER {
				continue
			}
			v, err := strconv.ParseFloat(tok.Lexeme, 32)
			if err != nil {
				return nil, errors.Wrapf(err, "line %d", tok.Line)
			}
			values = append(values, float32(v))
		}
	}
	return values, nil
}
