package formula

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Parser is a recursive-descent, precedence-climbing parser over formula
// source text, in the shape of a classic expression-statement grammar
// (comparison > concat > additive > multiplicative > unary > power >
// postfix > primary).
type Parser struct {
	lex  *Lexer
	cur  Token
	peek Token
}

// Parse parses src (with any leading "=" already stripped by the caller)
// into an Expr.
func Parse(src string) (Expr, error) {
	p := &Parser{lex: NewLexer(src)}
	p.advance()
	p.advance()
	expr, err := p.parseComparison()
	if err != nil {
		return nil, err
	}
	if p.cur.Type != TokenEOF {
		return nil, fmt.Errorf("formula: unexpected token %q at offset %d", p.cur.Literal, p.cur.Offset)
	}
	return expr, nil
}

func (p *Parser) advance() {
	p.cur = p.peek
	p.peek = p.lex.Next()
}

func (p *Parser) parseComparison() (Expr, error) {
	left, err := p.parseConcat()
	if err != nil {
		return nil, err
	}
	for {
		var op BinaryOp
		switch p.cur.Type {
		case TokenEq:
			op = OpEq
		case TokenNeq:
			op = OpNeq
		case TokenLt:
			op = OpLt
		case TokenLte:
			op = OpLte
		case TokenGt:
			op = OpGt
		case TokenGte:
			op = OpGte
		default:
			return left, nil
		}
		p.advance()
		right, err := p.parseConcat()
		if err != nil {
			return nil, err
		}
		left = BinaryExpr{Op: op, Left: left, Right: right}
	}
}

func (p *Parser) parseConcat() (Expr, error) {
	left, err := p.parseAdditive()
	if err != nil {
		return nil, err
	}
	for p.cur.Type == TokenAmpersand {
		p.advance()
		right, err := p.parseAdditive()
		if err != nil {
			return nil, err
		}
		left = BinaryExpr{Op: OpConcat, Left: left, Right: right}
	}
	return left, nil
}

func (p *Parser) parseAdditive() (Expr, error) {
	left, err := p.parseMultiplicative()
	if err != nil {
		return nil, err
	}
	for p.cur.Type == TokenPlus || p.cur.Type == TokenMinus {
		op := OpAdd
		if p.cur.Type == TokenMinus {
			op = OpSub
		}
		p.advance()
		right, err := p.parseMultiplicative()
		if err != nil {
			return nil, err
		}
		left = BinaryExpr{Op: op, Left: left, Right: right}
	}
	return left, nil
}

func (p *Parser) parseMultiplicative() (Expr, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for p.cur.Type == TokenStar || p.cur.Type == TokenSlash {
		op := OpMul
		if p.cur.Type == TokenSlash {
			op = OpDiv
		}
		p.advance()
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		left = BinaryExpr{Op: op, Left: left, Right: right}
	}
	return left, nil
}

func (p *Parser) parseUnary() (Expr, error) {
	if p.cur.Type == TokenMinus {
		p.advance()
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return UnaryExpr{Op: UnaryNeg, Operand: operand}, nil
	}
	if p.cur.Type == TokenPlus {
		p.advance()
		return p.parseUnary()
	}
	return p.parsePower()
}

func (p *Parser) parsePower() (Expr, error) {
	left, err := p.parsePostfix()
	if err != nil {
		return nil, err
	}
	if p.cur.Type == TokenCaret {
		p.advance()
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return BinaryExpr{Op: OpPow, Left: left, Right: right}, nil
	}
	return left, nil
}

func (p *Parser) parsePostfix() (Expr, error) {
	expr, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	for p.cur.Type == TokenPercent {
		p.advance()
		expr = UnaryExpr{Op: UnaryPercent, Operand: expr}
	}
	return expr, nil
}

func (p *Parser) parsePrimary() (Expr, error) {
	switch p.cur.Type {
	case TokenNumber:
		d, err := decimal.NewFromString(p.cur.Literal)
		if err != nil {
			return nil, fmt.Errorf("formula: invalid number %q", p.cur.Literal)
		}
		p.advance()
		return NumberLit{Value: d}, nil
	case TokenString:
		s := p.cur.Literal
		p.advance()
		return StringLit{Value: s}, nil
	case TokenTrue:
		p.advance()
		return BoolLit{Value: true}, nil
	case TokenFalse:
		p.advance()
		return BoolLit{Value: false}, nil
	case TokenRef:
		text := p.cur.Literal
		p.advance()
		return RefNode{Text: text}, nil
	case TokenIdent:
		name := p.cur.Literal
		p.advance()
		if p.cur.Type != TokenLParen {
			return nil, fmt.Errorf("formula: expected '(' after function name %s", name)
		}
		p.advance()
		var args []Expr
		if p.cur.Type != TokenRParen {
			for {
				arg, err := p.parseComparison()
				if err != nil {
					return nil, err
				}
				args = append(args, arg)
				if p.cur.Type == TokenComma {
					p.advance()
					continue
				}
				break
			}
		}
		if p.cur.Type != TokenRParen {
			return nil, fmt.Errorf("formula: expected ')' closing call to %s", name)
		}
		p.advance()
		return CallExpr{Name: name, Args: args}, nil
	case TokenLParen:
		p.advance()
		expr, err := p.parseComparison()
		if err != nil {
			return nil, err
		}
		if p.cur.Type != TokenRParen {
			return nil, fmt.Errorf("formula: expected ')'")
		}
		p.advance()
		return expr, nil
	default:
		return nil, fmt.Errorf("formula: unexpected token %q at offset %d", p.cur.Literal, p.cur.Offset)
	}
}
