// Package ql implements a small query language: grammar, AST, parser
// and evaluator, including the `their.X` where-clause filter compiler.
// The lexer/parser follow a single-pass scanner style (a src/pos
// cursor with small scan* helpers) rather than a parser generator.
package ql

import (
	"strings"

	"github.com/killiandvcz/hyperion/internal/herr"
)

type tokenKind int

const (
	tEOF tokenKind = iota
	tLBrace
	tRBrace
	tLParen
	tRParen
	tComma
	tDot
	tAssign
	tEqEq
	tNeq
	tLt
	tLe
	tGt
	tGe
	tAnd
	tOr
	tString
	tNumber
	tBareword
)

type token struct {
	kind tokenKind
	text string // raw text (bareword, number literal, unescaped string)
}

// lex tokenizes the full query source up front.
func lex(src string) ([]token, error) {
	var toks []token
	i := 0
	n := len(src)

	for i < n {
		c := src[i]
		switch {
		case c == ' ' || c == '\t' || c == '\n' || c == '\r':
			i++
		case c == '{':
			toks = append(toks, token{kind: tLBrace})
			i++
		case c == '}':
			toks = append(toks, token{kind: tRBrace})
			i++
		case c == '(':
			toks = append(toks, token{kind: tLParen})
			i++
		case c == ')':
			toks = append(toks, token{kind: tRParen})
			i++
		case c == ',':
			toks = append(toks, token{kind: tComma})
			i++
		case c == '.':
			toks = append(toks, token{kind: tDot})
			i++
		case c == '"':
			s, next, err := scanString(src, i)
			if err != nil {
				return nil, err
			}
			toks = append(toks, token{kind: tString, text: s})
			i = next
		case c == '=' && i+1 < n && src[i+1] == '=':
			toks = append(toks, token{kind: tEqEq})
			i += 2
		case c == '=':
			toks = append(toks, token{kind: tAssign})
			i++
		case c == '!' && i+1 < n && src[i+1] == '=':
			toks = append(toks, token{kind: tNeq})
			i += 2
		case c == '<' && i+1 < n && src[i+1] == '=':
			toks = append(toks, token{kind: tLe})
			i += 2
		case c == '<':
			toks = append(toks, token{kind: tLt})
			i++
		case c == '>' && i+1 < n && src[i+1] == '=':
			toks = append(toks, token{kind: tGe})
			i += 2
		case c == '>':
			toks = append(toks, token{kind: tGt})
			i++
		case c == '&' && i+1 < n && src[i+1] == '&':
			toks = append(toks, token{kind: tAnd})
			i += 2
		case c == '|' && i+1 < n && src[i+1] == '|':
			toks = append(toks, token{kind: tOr})
			i += 2
		case isNumberStart(c):
			text, next := scanNumber(src, i)
			toks = append(toks, token{kind: tNumber, text: text})
			i = next
		case isBarewordStart(c):
			text, next := scanBareword(src, i)
			toks = append(toks, token{kind: tBareword, text: text})
			i = next
		default:
			return nil, herr.InvalidOperation("unexpected character %q at position %d", c, i)
		}
	}

	toks = append(toks, token{kind: tEOF})
	return toks, nil
}

func isNumberStart(c byte) bool {
	return c >= '0' && c <= '9' || c == '-'
}

func isBarewordStart(c byte) bool {
	return c == '_' || c == '*' ||
		(c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isBarewordCont(c byte) bool {
	return isBarewordStart(c) || (c >= '0' && c <= '9') || c == '-' || c == '[' || c == ']'
}

func scanBareword(src string, i int) (string, int) {
	start := i
	for i < len(src) && isBarewordCont(src[i]) {
		i++
	}
	return src[start:i], i
}

func scanNumber(src string, i int) (string, int) {
	start := i
	if src[i] == '-' {
		i++
	}
	for i < len(src) && src[i] >= '0' && src[i] <= '9' {
		i++
	}
	if i < len(src) && src[i] == '.' {
		j := i + 1
		if j < len(src) && src[j] >= '0' && src[j] <= '9' {
			i = j
			for i < len(src) && src[i] >= '0' && src[i] <= '9' {
				i++
			}
		}
	}
	return src[start:i], i
}

func scanString(src string, i int) (string, int, error) {
	// src[i] == '"'
	i++
	var b strings.Builder
	for i < len(src) && src[i] != '"' {
		c := src[i]
		if c == '\\' && i+1 < len(src) {
			i++
			switch src[i] {
			case 'n':
				b.WriteByte('\n')
			case 't':
				b.WriteByte('\t')
			case '"':
				b.WriteByte('"')
			case '\\':
				b.WriteByte('\\')
			default:
				b.WriteByte(src[i])
			}
			i++
			continue
		}
		b.WriteByte(c)
		i++
	}
	if i >= len(src) {
		return "", i, herr.InvalidOperation("unterminated string literal")
	}
	return b.String(), i + 1, nil
}
