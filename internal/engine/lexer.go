package engine

import (
	"strconv"
	"strings"

	"github.com/oakmoss/percolate/internal/types"
)

/*
 * S-expression lexer.
 *
 * Scans expression text into position-carrying tokens. The grammar's
 * keywords and operator spellings (and, or, not, =, <, <=, >, >=, in,
 * not-in, one-of, all-of, none-of, null?, empty?) all lex as plain
 * identifiers; the parser matches spellings. Comments start with ';' and
 * run to end of line. Token positions are byte offsets into the input,
 * reported in SyntaxError values.
 */

type tokenType int

const (
	tokEOF tokenType = iota
	tokLParen
	tokRParen
	tokLBracket
	tokRBracket
	tokIdent
	tokString
	tokInt
	tokBool
)

func (t tokenType) String() string {
	switch t {
	case tokEOF:
		return "end of input"
	case tokLParen:
		return "'('"
	case tokRParen:
		return "')'"
	case tokLBracket:
		return "'['"
	case tokRBracket:
		return "']'"
	case tokIdent:
		return "identifier"
	case tokString:
		return "string literal"
	case tokInt:
		return "integer literal"
	case tokBool:
		return "boolean literal"
	default:
		return "unknown token"
	}
}

type token struct {
	typ  tokenType
	text string // identifier spelling or decoded string literal
	num  int64  // tokInt payload
	b    bool   // tokBool payload
	pos  int    // byte offset of the token start
}

type lexer struct {
	src string
	cur int
}

// lex scans the full input into tokens, ending with a tokEOF entry.
func lex(src string) ([]token, error) {
	l := &lexer{src: src}
	var tokens []token
	for {
		tok, err := l.next()
		if err != nil {
			return nil, err
		}
		tokens = append(tokens, tok)
		if tok.typ == tokEOF {
			return tokens, nil
		}
	}
}

func (l *lexer) next() (token, error) {
	l.skipSpace()
	if l.cur >= len(l.src) {
		return token{typ: tokEOF, pos: l.cur}, nil
	}

	start := l.cur
	switch c := l.src[l.cur]; c {
	case '(':
		l.cur++
		return token{typ: tokLParen, pos: start}, nil
	case ')':
		l.cur++
		return token{typ: tokRParen, pos: start}, nil
	case '[':
		l.cur++
		return token{typ: tokLBracket, pos: start}, nil
	case ']':
		l.cur++
		return token{typ: tokRBracket, pos: start}, nil
	case '"':
		return l.scanString()
	default:
		return l.scanAtom()
	}
}

// skipSpace consumes whitespace and ';' comments.
func (l *lexer) skipSpace() {
	for l.cur < len(l.src) {
		switch l.src[l.cur] {
		case ' ', '\t', '\r', '\n':
			l.cur++
		case ';':
			for l.cur < len(l.src) && l.src[l.cur] != '\n' {
				l.cur++
			}
		default:
			return
		}
	}
}

// scanString decodes a quoted string literal. Supported escapes:
// \\ \" \n \t. Unterminated strings and unknown escapes are syntax errors.
func (l *lexer) scanString() (token, error) {
	start := l.cur
	l.cur++ // opening quote
	var sb strings.Builder
	for l.cur < len(l.src) {
		c := l.src[l.cur]
		switch c {
		case '"':
			l.cur++
			return token{typ: tokString, text: sb.String(), pos: start}, nil
		case '\\':
			if l.cur+1 >= len(l.src) {
				return token{}, &types.SyntaxError{Pos: l.cur, Msg: "unterminated escape sequence"}
			}
			switch esc := l.src[l.cur+1]; esc {
			case '\\':
				sb.WriteByte('\\')
			case '"':
				sb.WriteByte('"')
			case 'n':
				sb.WriteByte('\n')
			case 't':
				sb.WriteByte('\t')
			default:
				return token{}, &types.SyntaxError{Pos: l.cur, Msg: "unknown escape sequence '\\" + string(esc) + "'"}
			}
			l.cur += 2
		case '\n':
			return token{}, &types.SyntaxError{Pos: start, Msg: "unterminated string literal"}
		default:
			sb.WriteByte(c)
			l.cur++
		}
	}
	return token{}, &types.SyntaxError{Pos: start, Msg: "unterminated string literal"}
}

// scanAtom consumes an identifier, integer, or boolean keyword. Identifiers
// are any run of characters excluding whitespace, delimiters, quotes, and
// comments, which covers spellings like "not-in", "<=", and "null?".
func (l *lexer) scanAtom() (token, error) {
	start := l.cur
	for l.cur < len(l.src) && !isDelimiter(l.src[l.cur]) {
		l.cur++
	}
	text := l.src[start:l.cur]

	switch text {
	case "true":
		return token{typ: tokBool, b: true, pos: start}, nil
	case "false":
		return token{typ: tokBool, b: false, pos: start}, nil
	}

	if isIntegerStart(text) {
		n, err := strconv.ParseInt(text, 10, 64)
		if err != nil {
			return token{}, &types.SyntaxError{Pos: start, Msg: "malformed integer literal " + strconv.Quote(text)}
		}
		return token{typ: tokInt, num: n, pos: start}, nil
	}

	return token{typ: tokIdent, text: text, pos: start}, nil
}

// isIntegerStart reports whether the atom must parse as an integer:
// a leading digit, or a sign followed by a digit.
func isIntegerStart(text string) bool {
	if text == "" {
		return false
	}
	if text[0] >= '0' && text[0] <= '9' {
		return true
	}
	if (text[0] == '-' || text[0] == '+') && len(text) > 1 && text[1] >= '0' && text[1] <= '9' {
		return true
	}
	return false
}

func isDelimiter(c byte) bool {
	switch c {
	case ' ', '\t', '\r', '\n', '(', ')', '[', ']', '"', ';':
		return true
	}
	return false
}
