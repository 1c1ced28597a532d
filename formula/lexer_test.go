package formula

import "testing"

func TestLexerTokenizesOperatorsAndLiterals(t *testing.T) {
	lex := NewLexer(`A1+B2*3<="x"&TRUE`)
	var types []TokenType
	for {
		tok := lex.Next()
		types = append(types, tok.Type)
		if tok.Type == TokenEOF {
			break
		}
	}
	want := []TokenType{
		TokenRef, TokenPlus, TokenRef, TokenStar, TokenNumber,
		TokenLte, TokenString, TokenAmpersand, TokenTrue, TokenEOF,
	}
	if len(types) != len(want) {
		t.Fatalf("got %v tokens, want %v", types, want)
	}
	for i := range want {
		if types[i] != want[i] {
			t.Errorf("token %d = %s, want %s", i, types[i], want[i])
		}
	}
}

func TestLexerFunctionNameVsReference(t *testing.T) {
	lex := NewLexer("SUM(A1)")
	first := lex.Next()
	if first.Type != TokenIdent || first.Literal != "SUM" {
		t.Fatalf("got %+v, want IDENT SUM", first)
	}
}

func TestLexerEscapedQuoteInString(t *testing.T) {
	lex := NewLexer(`"a""b"`)
	tok := lex.Next()
	if tok.Type != TokenString || tok.Literal != `a"b` {
		t.Fatalf("got %+v, want STRING a\"b", tok)
	}
}

func TestLexerNumberWithExponent(t *testing.T) {
	lex := NewLexer("1.5e3")
	tok := lex.Next()
	if tok.Type != TokenNumber || tok.Literal != "1.5e3" {
		t.Fatalf("got %+v", tok)
	}
}

func TestLexerRangeReference(t *testing.T) {
	lex := NewLexer("A1:B2")
	tok := lex.Next()
	if tok.Type != TokenRef || tok.Literal != "A1:B2" {
		t.Fatalf("got %+v, want single REF A1:B2", tok)
	}
}

func TestParserRejectsUnclosedParen(t *testing.T) {
	if _, err := Parse("(1+2"); err == nil {
		t.Fatalf("expected parse error for unclosed paren")
	}
}

func TestParserRejectsTrailingTokens(t *testing.T) {
	if _, err := Parse("1+2)"); err == nil {
		t.Fatalf("expected parse error for trailing token")
	}
}

func TestParserUnaryMinusBeforePower(t *testing.T) {
	expr, err := Parse("-2^2")
	if err != nil {
		t.Fatal(err)
	}
	ctx := newFakeCtx()
	v := expr.Eval(ctx)
	// parseUnary wraps parsePower, so unary minus binds looser than '^':
	// -2^2 is -(2^2) = -4.
	if got := v.Scalar.Inspect(); got != "-4" {
		t.Fatalf("-2^2 = %s, want -4", got)
	}
}
