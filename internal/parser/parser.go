package parser

import (
	"errors"
	"fmt"

	"github.com/vovanwin/conf2yaml/internal/ast"
	"github.com/vovanwin/conf2yaml/internal/model"
	"github.com/vovanwin/conf2yaml/internal/token"
)

// DefaultMaxDepth глубина вложенности блоков и списков по умолчанию
const DefaultMaxDepth = 100

// errSyntax внутренний сигнал: диагностика уже записана, нужна синхронизация
var errSyntax = errors.New("синтаксическая ошибка")

type parser struct {
	toks     []token.Token
	pos      int
	maxDepth int
	diags    []model.Diagnostic
}

// Parse строит синтаксическое дерево документа из потока токенов.
// Дублирование ключей здесь не проверяется — это забота нормализатора.
// При синтаксической ошибке парсер пропускает токены до следующего перевода
// строки и продолжает, чтобы за один проход собрать несколько независимых
// ошибок; итоговая трансляция все равно считается неуспешной.
func Parse(toks []token.Token, maxDepth int) (*ast.Document, []model.Diagnostic) {
	if maxDepth <= 0 {
		maxDepth = DefaultMaxDepth
	}
	p := &parser{toks: stripComments(toks), maxDepth: maxDepth}
	if len(p.toks) == 0 {
		p.toks = []token.Token{{Kind: token.EOF}}
	}
	doc := p.parseDocument()
	return doc, p.diags
}

// stripComments убирает токены комментариев из потока
func stripComments(toks []token.Token) []token.Token {
	out := make([]token.Token, 0, len(toks))
	for _, t := range toks {
		if t.Kind != token.Comment {
			out = append(out, t)
		}
	}
	return out
}

func (p *parser) cur() token.Token {
	if p.pos >= len(p.toks) {
		return p.toks[len(p.toks)-1]
	}
	return p.toks[p.pos]
}

func (p *parser) peekAhead(n int) token.Token {
	if p.pos+n >= len(p.toks) {
		return p.toks[len(p.toks)-1]
	}
	return p.toks[p.pos+n]
}

func (p *parser) advance() {
	if p.pos < len(p.toks)-1 {
		p.pos++
	}
}

func (p *parser) errorf(pos token.Pos, format string, args ...any) {
	p.diags = append(p.diags, model.Errorf(model.CategorySyntax, pos, format, args...))
}

// describe человекочитаемое описание токена для сообщений об ошибках
func describe(t token.Token) string {
	switch t.Kind {
	case token.EOF:
		return "конец файла"
	case token.Newline:
		return "перевод строки"
	default:
		return fmt.Sprintf("%q", t.Lexeme)
	}
}

func (p *parser) skipNewlines() {
	for p.cur().Kind == token.Newline {
		p.advance()
	}
}

// skipSeparators пропускает переводы строк и запятые между записями блока
func (p *parser) skipSeparators() {
	for {
		t := p.cur()
		if t.Kind == token.Newline || t.IsPunct(",") {
			p.advance()
			continue
		}
		return
	}
}

// sync пропускает токены до конца текущей строки включительно
func (p *parser) sync() {
	for {
		t := p.cur()
		if t.Kind == token.EOF {
			return
		}
		p.advance()
		if t.Kind == token.Newline {
			return
		}
	}
}

// syncBlock пропускает токены до разделителя записей или '}' (не потребляя '}').
// Возвращает false если достигнут конец файла.
func (p *parser) syncBlock() bool {
	for {
		t := p.cur()
		switch {
		case t.Kind == token.EOF:
			return false
		case t.IsPunct("}"):
			return true
		case t.Kind == token.Newline || t.IsPunct(","):
			p.advance()
			return true
		default:
			p.advance()
		}
	}
}

func (p *parser) parseDocument() *ast.Document {
	doc := &ast.Document{}
	for {
		p.skipNewlines()
		if p.cur().Kind == token.EOF {
			return doc
		}
		e, err := p.parseEntry(0)
		if err != nil {
			p.sync()
			continue
		}
		doc.Entries = append(doc.Entries, e)
		if t := p.cur(); t.Kind != token.Newline && t.Kind != token.EOF {
			p.errorf(t.Pos, "ожидается перевод строки после записи, получено %s", describe(t))
			p.sync()
		}
	}
}

// parseEntry разбирает запись: key: value, key { ... } или key [ ... ].
// level — уровень вложенности контейнера, в котором находится запись.
func (p *parser) parseEntry(level int) (ast.Entry, error) {
	t := p.cur()
	if t.Kind != token.Ident && t.Kind != token.String {
		p.errorf(t.Pos, "ожидается ключ, получено %s", describe(t))
		return ast.Entry{}, errSyntax
	}
	key, keyPos := t.Lexeme, t.Pos
	p.advance()

	switch cur := p.cur(); {
	case cur.IsPunct(":"):
		p.advance()
		v, err := p.parseValueOrEmpty(level)
		if err != nil {
			return ast.Entry{}, err
		}
		return ast.Entry{Key: key, KeyPos: keyPos, Value: v}, nil
	case cur.IsPunct("{"):
		v, err := p.parseBlock(level + 1)
		if err != nil {
			return ast.Entry{}, err
		}
		return ast.Entry{Key: key, KeyPos: keyPos, Value: v}, nil
	case cur.IsPunct("["):
		v, err := p.parseList(level + 1)
		if err != nil {
			return ast.Entry{}, err
		}
		return ast.Entry{Key: key, KeyPos: keyPos, Value: v}, nil
	default:
		p.errorf(cur.Pos, "ожидается ':', '{' или '[' после ключа %q, получено %s", key, describe(cur))
		return ast.Entry{}, errSyntax
	}
}

// parseValueOrEmpty разбирает значение после ':'; пустое значение
// допустимо и типизируется нормализатором как null
func (p *parser) parseValueOrEmpty(level int) (ast.Node, error) {
	t := p.cur()
	if t.Kind == token.Newline || t.Kind == token.EOF || t.IsPunct("}") || t.IsPunct(",") {
		return &ast.Scalar{Tok: token.Token{Kind: token.Ident, Lexeme: "", Pos: t.Pos}}, nil
	}
	return p.parseValue(level)
}

func (p *parser) parseValue(level int) (ast.Node, error) {
	t := p.cur()
	switch {
	case t.Kind == token.Number || t.Kind == token.String || t.Kind == token.Ident:
		p.advance()
		return &ast.Scalar{Tok: t}, nil
	case t.IsPunct("{"):
		return p.parseBlock(level + 1)
	case t.IsPunct("["):
		return p.parseList(level + 1)
	case t.IsPunct("."):
		return p.parseExpr()
	default:
		p.errorf(t.Pos, "неожиданный токен при разборе значения: %s", describe(t))
		return nil, errSyntax
	}
}

// parseBlock разбирает блок { ... }; записи разделяются переводами строк
// или запятыми. level — уровень вложенности самого блока.
func (p *parser) parseBlock(level int) (ast.Node, error) {
	lbrace := p.cur().Pos
	if level > p.maxDepth {
		p.errorf(lbrace, "превышена максимальная глубина вложенности (%d)", p.maxDepth)
		return nil, errSyntax
	}
	p.advance() // {

	blk := &ast.Block{Lbrace: lbrace}
	for {
		p.skipSeparators()
		t := p.cur()
		if t.IsPunct("}") {
			p.advance()
			return blk, nil
		}
		if t.Kind == token.EOF {
			p.errorf(lbrace, "незакрытый блок")
			return nil, errSyntax
		}

		e, err := p.parseEntry(level)
		if err != nil {
			if !p.syncBlock() {
				p.errorf(lbrace, "незакрытый блок")
				return nil, errSyntax
			}
			continue
		}
		blk.Entries = append(blk.Entries, e)

		t = p.cur()
		if t.Kind == token.Newline || t.Kind == token.EOF || t.IsPunct(",") || t.IsPunct("}") {
			continue
		}
		p.errorf(t.Pos, "ожидается ',', перевод строки или '}', получено %s", describe(t))
		if !p.syncBlock() {
			p.errorf(lbrace, "незакрытый блок")
			return nil, errSyntax
		}
	}
}

// parseList разбирает список [ ... ]; переводы строк внутри незначимы,
// завершающая запятая допустима и игнорируется
func (p *parser) parseList(level int) (ast.Node, error) {
	lbrack := p.cur().Pos
	if level > p.maxDepth {
		p.errorf(lbrack, "превышена максимальная глубина вложенности (%d)", p.maxDepth)
		return nil, errSyntax
	}
	p.advance() // [

	lst := &ast.List{Lbrack: lbrack}
	p.skipNewlines()
	if p.cur().IsPunct("]") {
		p.advance()
		return lst, nil
	}
	for {
		item, err := p.parseListItem(level)
		if err != nil {
			return nil, err
		}
		lst.Items = append(lst.Items, item)

		p.skipNewlines()
		t := p.cur()
		switch {
		case t.IsPunct(","):
			p.advance()
			p.skipNewlines()
			if p.cur().IsPunct("]") {
				p.advance()
				return lst, nil
			}
		case t.IsPunct("]"):
			p.advance()
			return lst, nil
		case t.Kind == token.EOF:
			p.errorf(lbrack, "незакрытый список")
			return nil, errSyntax
		default:
			p.errorf(t.Pos, "ожидается ',' или ']', получено %s", describe(t))
			return nil, errSyntax
		}
	}
}

// parseListItem разбирает элемент списка. Пара key: value здесь синтаксически
// принимается (как ast.Pair), ее непригодность для списка — семантический
// вопрос, который решает нормализатор.
func (p *parser) parseListItem(level int) (ast.Node, error) {
	t := p.cur()
	if (t.Kind == token.Ident || t.Kind == token.String) && p.peekAhead(1).IsPunct(":") {
		key, keyPos := t.Lexeme, t.Pos
		p.advance() // ключ
		p.advance() // :
		v, err := p.parseValue(level)
		if err != nil {
			return nil, err
		}
		return &ast.Pair{Key: key, KeyPos: keyPos, Value: v}, nil
	}
	return p.parseValue(level)
}

// parseExpr разбирает константное выражение .( ... ). — внутри допустимы
// только числа, имена и операторы '+'/'-'
func (p *parser) parseExpr() (ast.Node, error) {
	dot := p.cur().Pos
	p.advance() // .
	if !p.cur().IsPunct("(") {
		p.errorf(p.cur().Pos, "ожидается '(' после '.'")
		return nil, errSyntax
	}
	p.advance() // (

	var toks []token.Token
	for {
		t := p.cur()
		switch {
		case t.IsPunct(")"):
			p.advance()
			if !p.cur().IsPunct(".") {
				p.errorf(p.cur().Pos, "ожидается '.' после константного выражения")
				return nil, errSyntax
			}
			p.advance()
			return &ast.Expr{Dot: dot, Tokens: toks}, nil
		case t.Kind == token.Number || t.Kind == token.Ident || t.IsPunct("+") || t.IsPunct("-"):
			toks = append(toks, t)
			p.advance()
		case t.Kind == token.Newline || t.Kind == token.EOF:
			p.errorf(dot, "незакрытое константное выражение")
			return nil, errSyntax
		default:
			p.errorf(t.Pos, "недопустимый токен в константном выражении: %s", describe(t))
			return nil, errSyntax
		}
	}
}
