// SPDX-License-Identifier: Apache-2.0
package reader

import (
	"strconv"

	"pidgin/internal/errors"
	"pidgin/token"
)

// Reader builds a forest of Nodes from source text, one per top-level
// form.
type Reader struct {
	scanner *Scanner
	lookahead *token.Token
}

func New(src string) *Reader {
	return &Reader{scanner: NewScanner(src)}
}

// ReadAll parses every top-level form in the source.
func ReadAll(src string) ([]Node, error) {
	r := New(src)
	var forms []Node
	for {
		tok, err := r.peek()
		if err != nil {
			return nil, err
		}
		if tok.Type == token.EOF {
			return forms, nil
		}
		form, err := r.readForm()
		if err != nil {
			return nil, err
		}
		forms = append(forms, form)
	}
}

func (r *Reader) peek() (token.Token, error) {
	if r.lookahead == nil {
		tok, err := r.scanner.Next()
		if err != nil {
			return token.Token{}, err
		}
		r.lookahead = &tok
	}
	return *r.lookahead, nil
}

func (r *Reader) next() (token.Token, error) {
	tok, err := r.peek()
	if err != nil {
		return token.Token{}, err
	}
	r.lookahead = nil
	return tok, nil
}

func (r *Reader) readForm() (Node, error) {
	tok, err := r.next()
	if err != nil {
		return Node{}, err
	}
	switch tok.Type {
	case token.LPAREN:
		return r.readList(tok.Pos)
	case token.RPAREN:
		return Node{}, &errors.CompilerError{
			Level: errors.Error, Code: errors.ErrorUnbalancedParen,
			Message: "unexpected closing parenthesis", Position: errors.Position{Line: tok.Pos.Line, Column: tok.Pos.Column},
		}
	case token.NIL:
		return Node{Kind: NodeNil, Pos: tok.Pos}, nil
	case token.INT:
		n, _ := strconv.ParseInt(tok.Literal, 10, 64)
		return Node{Kind: NodeInt, Int: n, Pos: tok.Pos}, nil
	case token.FLOAT:
		f, _ := strconv.ParseFloat(tok.Literal, 64)
		return Node{Kind: NodeFloat, Float: f, Pos: tok.Pos}, nil
	case token.STRING:
		return Node{Kind: NodeString, Str: tok.Literal, Pos: tok.Pos}, nil
	case token.SYMBOL:
		return Node{Kind: NodeSymbol, Sym: tok.Literal, Pos: tok.Pos}, nil
	case token.EOF:
		return Node{}, &errors.CompilerError{
			Level: errors.Error, Code: errors.ErrorUnexpectedEOF,
			Message: "source ended mid-expression", Position: errors.Position{Line: tok.Pos.Line, Column: tok.Pos.Column},
		}
	default:
		return Node{}, &errors.CompilerError{
			Level: errors.Error, Code: errors.ErrorCantParseToken,
			Message: "unrecognized token", Position: errors.Position{Line: tok.Pos.Line, Column: tok.Pos.Column},
		}
	}
}

func (r *Reader) readList(openPos token.Position) (Node, error) {
	var items []Node
	for {
		tok, err := r.peek()
		if err != nil {
			return Node{}, err
		}
		if tok.Type == token.RPAREN {
			r.next()
			return Node{Kind: NodeList, Items: items, Pos: openPos}, nil
		}
		if tok.Type == token.EOF {
			return Node{}, &errors.CompilerError{
				Level: errors.Error, Code: errors.ErrorUnexpectedEOF,
				Message: "unbalanced parentheses: reached end of source inside a list",
				Position: errors.Position{Line: openPos.Line, Column: openPos.Column},
			}
		}
		item, err := r.readForm()
		if err != nil {
			return Node{}, err
		}
		items = append(items, item)
	}
}
