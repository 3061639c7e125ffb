package runeway

// Parser implements the statement grammar on top of a Pratt
// expression parser.  Statement-level errors are recorded and the
// parser resynchronises on statement boundaries so several errors can
// surface per run.
type Parser struct {
	toks  []SpannedToken
	pos   int
	diags []*Diagnostic
}

func NewParser(toks []SpannedToken) *Parser {
	return &Parser{toks: toks}
}

// ParseSource lexes and parses one registered source file.
func ParseSource(src SourceId, sm *SourceMap) ([]Stmt, []*Diagnostic) {
	toks, err := NewLexer(src, sm).Lex()
	if err != nil {
		return nil, []*Diagnostic{err}
	}
	return NewParser(toks).ParseFull()
}

func (p *Parser) peek() Token {
	return p.toks[p.pos].Node
}

func (p *Parser) peekSpan() Span {
	return p.toks[p.pos].Span
}

func (p *Parser) advance() SpannedToken {
	tok := p.toks[p.pos]
	if p.pos < len(p.toks)-1 {
		p.pos++
	}
	return tok
}

func (p *Parser) at(t TokenType) bool {
	return p.peek().Type == t
}

func (p *Parser) consume(t TokenType) bool {
	if p.at(t) {
		p.advance()
		return true
	}
	return false
}

func (p *Parser) expect(t TokenType) (SpannedToken, *Diagnostic) {
	if p.at(t) {
		return p.advance(), nil
	}
	return SpannedToken{}, p.unexpected(tokenDisplay[t])
}

func (p *Parser) unexpected(expected string) *Diagnostic {
	got := p.peek()
	if got.Type == TokenType_EOF {
		return NewSyntaxError("unexpected-eof").WithLabel(p.peekSpan())
	}
	return NewSyntaxError("expected-token").
		WithArg("expected", expected).
		WithArg("got", got.Display()).
		WithLabel(p.peekSpan())
}

func (p *Parser) expectIdent() (string, Span, *Diagnostic) {
	if p.at(TokenType_Ident) {
		tok := p.advance()
		return tok.Node.Text, tok.Span, nil
	}
	return "", Span{}, NewSyntaxError("expected-identifier").
		WithArg("got", p.peek().Display()).
		WithLabel(p.peekSpan())
}

// ParseFull parses every top-level statement, accumulating
// diagnostics and recovering at statement boundaries.
func (p *Parser) ParseFull() ([]Stmt, []*Diagnostic) {
	var stmts []Stmt
	for !p.at(TokenType_EOF) {
		stmt, err := p.parseStatement()
		if err != nil {
			p.diags = append(p.diags, err)
			p.synchronize()
			continue
		}
		stmts = append(stmts, stmt)
	}
	return stmts, p.diags
}

// statement starter keywords used as recovery points.
var stmtStarters = map[TokenType]bool{
	TokenType_Let:      true,
	TokenType_Mut:      true,
	TokenType_Const:    true,
	TokenType_Act:      true,
	TokenType_Class:    true,
	TokenType_Return:   true,
	TokenType_If:       true,
	TokenType_While:    true,
	TokenType_For:      true,
	TokenType_Break:    true,
	TokenType_Continue: true,
	TokenType_Import:   true,
	TokenType_Assert:   true,
}

func (p *Parser) synchronize() {
	for !p.at(TokenType_EOF) {
		if p.consume(TokenType_Semicolon) {
			return
		}
		if stmtStarters[p.peek().Type] {
			return
		}
		p.advance()
	}
}

func (p *Parser) parseStatement() (Stmt, *Diagnostic) {
	switch p.peek().Type {
	case TokenType_Let, TokenType_Const:
		return p.parseLet()
	case TokenType_Act:
		return p.parseAct()
	case TokenType_Class:
		return p.parseClass()
	case TokenType_Return:
		return p.parseReturn()
	case TokenType_If:
		return p.parseIf()
	case TokenType_While:
		return p.parseWhile()
	case TokenType_For:
		return p.parseFor()
	case TokenType_Break:
		tok := p.advance()
		if _, err := p.expect(TokenType_Semicolon); err != nil {
			return nil, err
		}
		return &BreakStmt{stmtBase{tok.Span}}, nil
	case TokenType_Continue:
		tok := p.advance()
		if _, err := p.expect(TokenType_Semicolon); err != nil {
			return nil, err
		}
		return &ContinueStmt{stmtBase{tok.Span}}, nil
	case TokenType_Import:
		return p.parseImport()
	case TokenType_Assert:
		return p.parseAssert()
	default:
		return p.parseExprStatement()
	}
}

func (p *Parser) parseBlock() ([]Stmt, *Diagnostic) {
	if _, err := p.expect(TokenType_OpenBrace); err != nil {
		return nil, err
	}
	var stmts []Stmt
	for !p.at(TokenType_CloseBrace) {
		if p.at(TokenType_EOF) {
			return nil, p.unexpected("}")
		}
		stmt, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, stmt)
	}
	p.advance()
	return stmts, nil
}

func (p *Parser) parseAnnotation() (*Spanned[string], *Diagnostic) {
	if !p.consume(TokenType_Colon) {
		return nil, nil
	}
	name, span, err := p.expectIdent()
	if err != nil {
		return nil, err
	}
	anno := NewSpanned(name, span)
	return &anno, nil
}

func (p *Parser) parseLet() (Stmt, *Diagnostic) {
	start := p.advance() // let or const
	isConst := start.Node.Type == TokenType_Const
	mutable := false
	if !isConst && p.consume(TokenType_Mut) {
		mutable = true
	}

	name, nameSpan, err := p.expectIdent()
	if err != nil {
		return nil, err
	}

	annotation, err := p.parseAnnotation()
	if err != nil {
		return nil, err
	}

	var value Expr
	if p.consume(TokenType_Eq) {
		value, err = p.parseExpr()
		if err != nil {
			return nil, err
		}
	}
	semi, err := p.expect(TokenType_Semicolon)
	if err != nil {
		return nil, err
	}

	return &LetStmt{
		stmtBase:   stmtBase{start.Span.Merge(semi.Span)},
		Name:       name,
		NameSpan:   nameSpan,
		Mutable:    mutable,
		Const:      isConst,
		Annotation: annotation,
		Value:      value,
	}, nil
}

func (p *Parser) parseAct() (Stmt, *Diagnostic) {
	start := p.advance()
	name, nameSpan, err := p.expectIdent()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(TokenType_OpenParen); err != nil {
		return nil, err
	}

	var params []Param
	for !p.at(TokenType_CloseParen) {
		pname, pspan, err := p.expectIdent()
		if err != nil {
			return nil, err
		}
		annotation, err := p.parseAnnotation()
		if err != nil {
			return nil, err
		}
		params = append(params, Param{Name: pname, Span: pspan, Annotation: annotation})
		if !p.consume(TokenType_Comma) {
			break
		}
	}
	if _, err := p.expect(TokenType_CloseParen); err != nil {
		return nil, err
	}

	var returnAnnotation *Spanned[string]
	if p.consume(TokenType_Arrow) {
		rname, rspan, err := p.expectIdent()
		if err != nil {
			return nil, err
		}
		anno := NewSpanned(rname, rspan)
		returnAnnotation = &anno
	}

	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}

	return &ActStmt{
		stmtBase:         stmtBase{start.Span.Merge(p.toks[p.pos-1].Span)},
		Name:             name,
		NameSpan:         nameSpan,
		Params:           params,
		ReturnAnnotation: returnAnnotation,
		Body:             body,
	}, nil
}

func (p *Parser) parseClass() (Stmt, *Diagnostic) {
	start := p.advance()
	name, nameSpan, err := p.expectIdent()
	if err != nil {
		return nil, err
	}
	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	return &ClassStmt{
		stmtBase: stmtBase{start.Span.Merge(p.toks[p.pos-1].Span)},
		Name:     name,
		NameSpan: nameSpan,
		Body:     body,
	}, nil
}

func (p *Parser) parseReturn() (Stmt, *Diagnostic) {
	start := p.advance()
	var value Expr
	if !p.at(TokenType_Semicolon) {
		var err *Diagnostic
		value, err = p.parseExpr()
		if err != nil {
			return nil, err
		}
	}
	semi, err := p.expect(TokenType_Semicolon)
	if err != nil {
		return nil, err
	}
	return &ReturnStmt{stmtBase{start.Span.Merge(semi.Span)}, value}, nil
}

func (p *Parser) parseIf() (Stmt, *Diagnostic) {
	start := p.advance()
	cond, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	then, err := p.parseBlock()
	if err != nil {
		return nil, err
	}

	var elseBranch []Stmt
	if p.consume(TokenType_Else) {
		if p.at(TokenType_If) {
			// else-if chains desugar to a nested if
			nested, err := p.parseIf()
			if err != nil {
				return nil, err
			}
			elseBranch = []Stmt{nested}
		} else {
			elseBranch, err = p.parseBlock()
			if err != nil {
				return nil, err
			}
		}
	}

	return &IfStmt{
		stmtBase: stmtBase{start.Span.Merge(p.toks[p.pos-1].Span)},
		Cond:     cond,
		Then:     then,
		Else:     elseBranch,
	}, nil
}

func (p *Parser) parseWhile() (Stmt, *Diagnostic) {
	start := p.advance()
	cond, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	return &WhileStmt{
		stmtBase: stmtBase{start.Span.Merge(p.toks[p.pos-1].Span)},
		Cond:     cond,
		Body:     body,
	}, nil
}

func (p *Parser) parseFor() (Stmt, *Diagnostic) {
	start := p.advance()
	name, nameSpan, err := p.expectIdent()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(TokenType_In); err != nil {
		return nil, err
	}
	iterable, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	return &ForStmt{
		stmtBase: stmtBase{start.Span.Merge(p.toks[p.pos-1].Span)},
		Var:      name,
		VarSpan:  nameSpan,
		Iterable: iterable,
		Body:     body,
	}, nil
}

// parseImportPath reads a string literal path, or identifiers joined
// by `::` (`a`, `std::name`), as one string.
func (p *Parser) parseImportPath() (string, Span, *Diagnostic) {
	if p.at(TokenType_StringLiteral) || p.at(TokenType_RawStringLiteral) {
		tok := p.advance()
		return tok.Node.Text, tok.Span, nil
	}
	name, span, err := p.expectIdent()
	if err != nil {
		return "", Span{}, err
	}
	path := name
	for p.at(TokenType_DColon) {
		p.advance()
		next, nextSpan, err := p.expectIdent()
		if err != nil {
			return "", Span{}, err
		}
		path += "::" + next
		span = span.Merge(nextSpan)
	}
	return path, span, nil
}

func (p *Parser) parseImport() (Stmt, *Diagnostic) {
	start := p.advance()
	path, pathSpan, err := p.parseImportPath()
	if err != nil {
		return nil, err
	}

	stmt := &ImportStmt{Path: path, PathSpan: pathSpan, Kind: ImportItemKind_All}

	switch {
	case p.consume(TokenType_As):
		alias, _, err := p.expectIdent()
		if err != nil {
			return nil, err
		}
		stmt.Kind = ImportItemKind_Alias
		stmt.Alias = alias
	case p.consume(TokenType_Get):
		if _, err := p.expect(TokenType_OpenBrace); err != nil {
			return nil, err
		}
		stmt.Kind = ImportItemKind_Selective
		for !p.at(TokenType_CloseBrace) {
			original, symSpan, err := p.expectIdent()
			if err != nil {
				return nil, err
			}
			sym := ImportSymbol{Original: original, Span: symSpan}
			if p.consume(TokenType_As) {
				alias, aliasSpan, err := p.expectIdent()
				if err != nil {
					return nil, err
				}
				sym.Alias = alias
				sym.Span = symSpan.Merge(aliasSpan)
			}
			stmt.Symbols = append(stmt.Symbols, sym)
			if !p.consume(TokenType_Comma) {
				break
			}
		}
		if _, err := p.expect(TokenType_CloseBrace); err != nil {
			return nil, err
		}
	}

	semi, err := p.expect(TokenType_Semicolon)
	if err != nil {
		return nil, err
	}
	stmt.stmtBase = stmtBase{start.Span.Merge(semi.Span)}
	return stmt, nil
}

func (p *Parser) parseAssert() (Stmt, *Diagnostic) {
	start := p.advance()
	cond, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	semi, err := p.expect(TokenType_Semicolon)
	if err != nil {
		return nil, err
	}
	return &AssertStmt{stmtBase{start.Span.Merge(semi.Span)}, cond}, nil
}

// parseExprStatement handles bare assignments (`x = e;`), attribute
// writes (`a.b = e;`) and plain expression statements.
func (p *Parser) parseExprStatement() (Stmt, *Diagnostic) {
	expr, err := p.parseExpr()
	if err != nil {
		return nil, err
	}

	if p.at(TokenType_Eq) {
		switch target := expr.(type) {
		case *VarExpr:
			p.advance()
			value, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			semi, err := p.expect(TokenType_Semicolon)
			if err != nil {
				return nil, err
			}
			return &AssignStmt{
				stmtBase: stmtBase{expr.Span().Merge(semi.Span)},
				Name:     target.Name,
				Value:    value,
			}, nil
		case *GetAttrExpr:
			p.advance()
			value, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			semi, err := p.expect(TokenType_Semicolon)
			if err != nil {
				return nil, err
			}
			write := &SetAttrExpr{
				exprBase: exprBase{expr.Span().Merge(value.Span())},
				Object:   target.Object,
				Field:    target.Field,
				Value:    value,
			}
			return &ExprStmt{stmtBase{expr.Span().Merge(semi.Span)}, write}, nil
		default:
			return nil, NewSyntaxError("invalid-assignment-target").
				WithLabel(expr.Span())
		}
	}

	semi, err := p.expect(TokenType_Semicolon)
	if err != nil {
		return nil, err
	}
	return &ExprStmt{stmtBase{expr.Span().Merge(semi.Span)}, expr}, nil
}

func (p *Parser) parseExpr() (Expr, *Diagnostic) {
	return p.parseExprBP(0)
}

// parseExprBP is the Pratt loop: consume a primary (or a prefix
// operator), then fold infix and postfix operators while their left
// binding power stays at or above minBP.
func (p *Parser) parseExprBP(minBP int) (Expr, *Diagnostic) {
	var left Expr

	if op, ok := prefixTokens[p.peek().Type]; ok {
		tok := p.advance()
		operand, err := p.parseExprBP(bpUnary)
		if err != nil {
			return nil, err
		}
		left = &UnaryExpr{
			exprBase: exprBase{tok.Span.Merge(operand.Span())},
			Op:       op,
			Operand:  operand,
		}
	} else {
		var err *Diagnostic
		left, err = p.parsePrimary()
		if err != nil {
			return nil, err
		}
	}

	for {
		var err *Diagnostic
		left, err = p.parsePostfix(left)
		if err != nil {
			return nil, err
		}

		t := p.peek().Type

		// iterator literal `start .. end [:: step]`
		if (t == TokenType_Range || t == TokenType_RangeInclusive) && minBP <= bpRange {
			p.advance()
			end, err := p.parseExprBP(bpRange + 1)
			if err != nil {
				return nil, err
			}
			var step Expr
			if p.consume(TokenType_DColon) {
				step, err = p.parseExprBP(bpRange + 1)
				if err != nil {
					return nil, err
				}
			}
			span := left.Span().Merge(end.Span())
			if step != nil {
				span = span.Merge(step.Span())
			}
			left = &RangeLit{
				exprBase:  exprBase{span},
				Start:     left,
				End:       end,
				Step:      step,
				Inclusive: t == TokenType_RangeInclusive,
			}
			continue
		}

		info, ok := binaryTokens[t]
		if !ok || info.lbp < minBP {
			return left, nil
		}
		opSpan := p.peekSpan()
		p.advance()

		nextBP := info.lbp + 1
		if info.rightAssoc {
			nextBP = info.lbp
		}
		right, err := p.parseExprBP(nextBP)
		if err != nil {
			return nil, err
		}
		left = &BinaryExpr{
			exprBase: exprBase{left.Span().Merge(right.Span())},
			Left:     left,
			Op:       info.op,
			Right:    right,
		}

		// comparisons do not associate: a < b < c is an error
		if info.op.IsComparison() {
			if next, ok := binaryTokens[p.peek().Type]; ok && next.op.IsComparison() {
				return nil, NewSyntaxError("chained-comparison").
					WithLabel(opSpan.Merge(p.peekSpan())).
					WithHelp("chained-comparison-help")
			}
		}
	}
}

// parsePostfix folds calls, indexing, attribute access and the
// postfix increment/decrement operators.
func (p *Parser) parsePostfix(left Expr) (Expr, *Diagnostic) {
	for {
		switch p.peek().Type {
		case TokenType_OpenParen:
			p.advance()
			var args []Expr
			for !p.at(TokenType_CloseParen) {
				arg, err := p.parseExpr()
				if err != nil {
					return nil, err
				}
				args = append(args, arg)
				if !p.consume(TokenType_Comma) {
					break
				}
			}
			closing, err := p.expect(TokenType_CloseParen)
			if err != nil {
				return nil, err
			}
			left = &CallExpr{
				exprBase: exprBase{left.Span().Merge(closing.Span)},
				Callee:   left,
				Args:     args,
			}
		case TokenType_OpenBracket:
			p.advance()
			index, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			closing, err := p.expect(TokenType_CloseBracket)
			if err != nil {
				return nil, err
			}
			left = &IndexExpr{
				exprBase: exprBase{left.Span().Merge(closing.Span)},
				Object:   left,
				Index:    index,
			}
		case TokenType_Dot:
			p.advance()
			field, fieldSpan, err := p.expectIdent()
			if err != nil {
				return nil, err
			}
			left = &GetAttrExpr{
				exprBase: exprBase{left.Span().Merge(fieldSpan)},
				Object:   left,
				Field:    field,
			}
		case TokenType_PlusPlus:
			tok := p.advance()
			left = &UnaryExpr{
				exprBase: exprBase{left.Span().Merge(tok.Span)},
				Op:       UnaryOp_Inc,
				Operand:  left,
				Postfix:  true,
			}
		case TokenType_MinusMinus:
			tok := p.advance()
			left = &UnaryExpr{
				exprBase: exprBase{left.Span().Merge(tok.Span)},
				Op:       UnaryOp_Dec,
				Operand:  left,
				Postfix:  true,
			}
		default:
			return left, nil
		}
	}
}

func (p *Parser) parsePrimary() (Expr, *Diagnostic) {
	tok := p.peek()
	span := p.peekSpan()

	switch tok.Type {
	case TokenType_IntLiteral:
		p.advance()
		return &IntLit{exprBase{span}, tok.Int, tok.Text}, nil
	case TokenType_UIntLiteral:
		p.advance()
		return &UIntLit{exprBase{span}, tok.UInt, tok.Text}, nil
	case TokenType_FloatLiteral:
		p.advance()
		return &FloatLit{exprBase{span}, tok.Float, tok.Text}, nil
	case TokenType_StringLiteral, TokenType_RawStringLiteral:
		p.advance()
		return &StringLit{exprBase{span}, tok.Text}, nil
	case TokenType_True:
		p.advance()
		return &BoolLit{exprBase{span}, true}, nil
	case TokenType_False:
		p.advance()
		return &BoolLit{exprBase{span}, false}, nil
	case TokenType_Null:
		p.advance()
		return &NullLit{exprBase{span}}, nil
	case TokenType_CharLiteral:
		return nil, NewSyntaxError("unsupported-char-expression").WithLabel(span)
	case TokenType_Ident:
		p.advance()
		return &VarExpr{exprBase{span}, tok.Text}, nil
	case TokenType_FormatStringStart:
		return p.parseFString()
	case TokenType_OpenParen:
		p.advance()
		first, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if p.at(TokenType_Comma) {
			items := []Expr{first}
			for p.consume(TokenType_Comma) {
				if p.at(TokenType_CloseParen) {
					break
				}
				item, err := p.parseExpr()
				if err != nil {
					return nil, err
				}
				items = append(items, item)
			}
			closing, err := p.expect(TokenType_CloseParen)
			if err != nil {
				return nil, err
			}
			return &TupleLit{exprBase{span.Merge(closing.Span)}, items}, nil
		}
		closing, err := p.expect(TokenType_CloseParen)
		if err != nil {
			return nil, err
		}
		return &ParenExpr{exprBase{span.Merge(closing.Span)}, first}, nil
	case TokenType_OpenBracket:
		p.advance()
		var items []Expr
		for !p.at(TokenType_CloseBracket) {
			item, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			items = append(items, item)
			if !p.consume(TokenType_Comma) {
				break
			}
		}
		closing, err := p.expect(TokenType_CloseBracket)
		if err != nil {
			return nil, err
		}
		return &ListLit{exprBase{span.Merge(closing.Span)}, items}, nil
	case TokenType_OpenBrace:
		p.advance()
		var keys, values []Expr
		for !p.at(TokenType_CloseBrace) {
			key, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			if _, err := p.expect(TokenType_Colon); err != nil {
				return nil, err
			}
			value, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			keys = append(keys, key)
			values = append(values, value)
			if !p.consume(TokenType_Comma) {
				break
			}
		}
		closing, err := p.expect(TokenType_CloseBrace)
		if err != nil {
			return nil, err
		}
		return &DictLit{exprBase{span.Merge(closing.Span)}, keys, values}, nil
	case TokenType_EOF:
		return nil, NewSyntaxError("unexpected-eof").WithLabel(span)
	default:
		return nil, NewSyntaxError("expected-expression").
			WithArg("got", tok.Display()).
			WithLabel(span)
	}
}

// parseFString collects alternating literal parts and bracketed
// sub-expression runs into an FStringLit.
func (p *Parser) parseFString() (Expr, *Diagnostic) {
	start, _ := p.expect(TokenType_FormatStringStart)
	var parts []FStringPart

	for !p.at(TokenType_FormatStringEnd) {
		switch p.peek().Type {
		case TokenType_StringLiteral, TokenType_RawStringLiteral:
			tok := p.advance()
			parts = append(parts, FStringPart{Literal: tok.Node.Text})
		case TokenType_FormatCodeBlockStart:
			p.advance()
			expr, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			if _, err := p.expect(TokenType_FormatCodeBlockEnd); err != nil {
				return nil, err
			}
			parts = append(parts, FStringPart{Expr: expr, IsExpr: true})
		case TokenType_EOF:
			return nil, NewSyntaxError("unexpected-eof").WithLabel(p.peekSpan())
		default:
			return nil, p.unexpected("format-string")
		}
	}
	end := p.advance()

	return &FStringLit{exprBase{start.Span.Merge(end.Span)}, parts}, nil
}
