package ql

import (
	"strconv"
	"strings"

	"github.com/killiandvcz/hyperion/internal/herr"
	"github.com/killiandvcz/hyperion/internal/path"
	"github.com/killiandvcz/hyperion/internal/value"
)

// Parse parses a query against the language grammar. Parse errors
// surface as InvalidOperation with a human-readable message.
func Parse(src string) (*Query, error) {
	toks, err := lex(src)
	if err != nil {
		return nil, err
	}
	p := &parser{toks: toks}
	q, err := p.parseQuery()
	if err != nil {
		return nil, err
	}
	if p.peek().kind != tEOF {
		return nil, herr.InvalidOperation("trailing input after query")
	}
	return q, nil
}

type parser struct {
	toks []token
	pos  int
}

func (p *parser) peek() token { return p.toks[p.pos] }

func (p *parser) advance() token {
	t := p.toks[p.pos]
	if p.pos < len(p.toks)-1 {
		p.pos++
	}
	return t
}

func (p *parser) expect(k tokenKind, what string) (token, error) {
	if p.peek().kind != k {
		return token{}, herr.InvalidOperation("expected %s", what)
	}
	return p.advance(), nil
}

func (p *parser) parseQuery() (*Query, error) {
	if _, err := p.expect(tLBrace, "'{'"); err != nil {
		return nil, err
	}

	q := &Query{}
	for {
		if p.peek().kind == tRBrace {
			break
		}
		if p.peek().kind == tBareword && p.peek().text == "return" {
			p.advance()
			expr, err := p.parseExpression()
			if err != nil {
				return nil, err
			}
			q.Return = &expr
			break
		}
		op, err := p.parseOperation()
		if err != nil {
			return nil, err
		}
		q.Operations = append(q.Operations, op)
	}

	if _, err := p.expect(tRBrace, "'}'"); err != nil {
		return nil, err
	}
	return q, nil
}

func (p *parser) parseOperation() (Operation, error) {
	if p.peek().kind == tBareword && p.peek().text == "delete" {
		p.advance()
		pth, err := p.parsePathLiteral()
		if err != nil {
			return nil, err
		}
		return Delete{Path: pth}, nil
	}

	pth, err := p.parsePathLiteral()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(tAssign, "'='"); err != nil {
		return nil, err
	}
	expr, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	return Assignment{Path: pth, Expr: expr}, nil
}

func (p *parser) parseExpression() (Expression, error) {
	base, err := p.parsePrimary()
	if err != nil {
		return Expression{}, err
	}
	expr := Expression{Base: base}

	if p.peek().kind == tBareword && p.peek().text == "where" {
		p.advance()
		conds, ops, err := p.parseWhere()
		if err != nil {
			return Expression{}, err
		}
		expr.Where = conds
		expr.Ops = ops
	}
	return expr, nil
}

func (p *parser) parseWhere() ([]Condition, []string, error) {
	var conds []Condition
	var ops []string

	cond, err := p.parseCondition()
	if err != nil {
		return nil, nil, err
	}
	conds = append(conds, cond)
	ops = append(ops, "")

	for {
		var opTok string
		switch p.peek().kind {
		case tAnd:
			opTok = "&&"
		case tOr:
			opTok = "||"
		default:
			return conds, ops, nil
		}
		p.advance()
		cond, err := p.parseCondition()
		if err != nil {
			return nil, nil, err
		}
		conds = append(conds, cond)
		ops = append(ops, opTok)
	}
}

func (p *parser) parseCondition() (Condition, error) {
	left, err := p.parsePrimary()
	if err != nil {
		return Condition{}, err
	}
	opStr, err := p.parseComparisonOp()
	if err != nil {
		return Condition{}, err
	}
	right, err := p.parsePrimary()
	if err != nil {
		return Condition{}, err
	}
	return Condition{Left: left, Op: opStr, Right: right}, nil
}

func (p *parser) parseComparisonOp() (string, error) {
	switch p.peek().kind {
	case tEqEq:
		p.advance()
		return "==", nil
	case tNeq:
		p.advance()
		return "!=", nil
	case tLt:
		p.advance()
		return "<", nil
	case tLe:
		p.advance()
		return "<=", nil
	case tGt:
		p.advance()
		return ">", nil
	case tGe:
		p.advance()
		return ">=", nil
	default:
		return "", herr.InvalidOperation("expected comparison operator")
	}
}

func (p *parser) parsePrimary() (Primary, error) {
	t := p.peek()

	switch t.kind {
	case tString:
		p.advance()
		return LiteralPrimary{Value: value.NewString(t.text)}, nil
	case tNumber:
		p.advance()
		return LiteralPrimary{Value: parseNumber(t.text)}, nil
	case tBareword:
		switch t.text {
		case "true":
			p.advance()
			return LiteralPrimary{Value: value.NewBool(true)}, nil
		case "false":
			p.advance()
			return LiteralPrimary{Value: value.NewBool(false)}, nil
		case "null":
			p.advance()
			return LiteralPrimary{Value: value.NewNull()}, nil
		}

		// function_call := IDENT '(' ... ')'
		if p.toks[p.pos+1].kind == tLParen {
			name := t.text
			p.advance()
			p.advance() // '('
			var args []Primary
			if p.peek().kind != tRParen {
				for {
					arg, err := p.parsePrimary()
					if err != nil {
						return nil, err
					}
					args = append(args, arg)
					if p.peek().kind == tComma {
						p.advance()
						continue
					}
					break
				}
			}
			if _, err := p.expect(tRParen, "')'"); err != nil {
				return nil, err
			}
			return CallPrimary{Name: name, Args: args}, nil
		}

		pth, err := p.parsePathLiteral()
		if err != nil {
			return nil, err
		}
		if len(pth.Segments) > 0 && pth.Segments[0].Kind == path.Named && pth.Segments[0].Name == "their" {
			return TheirPrimary{Sub: pth.Suffix(1)}, nil
		}
		return PathPrimary{Path: pth}, nil
	default:
		return nil, herr.InvalidOperation("expected a value, path or function call")
	}
}

// parsePathLiteral assembles a dotted path from bareword/dot tokens and
// parses it with the path package's own parser.
func (p *parser) parsePathLiteral() (path.Path, error) {
	if p.peek().kind != tBareword {
		return path.Path{}, herr.InvalidOperation("expected a path")
	}
	var b strings.Builder
	b.WriteString(p.advance().text)
	for p.peek().kind == tDot && p.toks[p.pos+1].kind == tBareword {
		p.advance() // '.'
		b.WriteByte('.')
		b.WriteString(p.advance().text)
	}
	return path.Parse(b.String())
}

func parseNumber(text string) value.Value {
	if !strings.Contains(text, ".") {
		if n, err := strconv.ParseInt(text, 10, 64); err == nil {
			return value.NewInt(n)
		}
	}
	f, _ := strconv.ParseFloat(text, 64)
	return value.NewFloat(f)
}
