package ast

import "github.com/vovanwin/conf2yaml/internal/token"

// Node узел синтаксического дерева. Каждый узел знает свою позицию
// в исходном тексте для привязки диагностик.
type Node interface {
	Pos() token.Pos
}

// Scalar скалярный литерал. Хранит исходный токен целиком:
// типизация (bool/null/int/float/string) выполняется нормализатором,
// Tok.Kind == token.String означает что значение было в кавычках.
type Scalar struct {
	Tok token.Token
}

func (s *Scalar) Pos() token.Pos { return s.Tok.Pos }

// List упорядоченный список значений [a, b, c]
type List struct {
	Lbrack token.Pos
	Items  []Node
}

func (l *List) Pos() token.Pos { return l.Lbrack }

// Entry пара ключ-значение внутри блока или документа
type Entry struct {
	Key    string
	KeyPos token.Pos
	Value  Node
}

// Block вложенный блок { key: value; ... }
type Block struct {
	Lbrace  token.Pos
	Entries []Entry
}

func (b *Block) Pos() token.Pos { return b.Lbrace }

// Pair пара key: value, встреченная как элемент списка. Синтаксически
// допустима, но список — не место для пары: нормализатор выдаст ошибку
// и заменит поддерево на null.
type Pair struct {
	Key    string
	KeyPos token.Pos
	Value  Node
}

func (p *Pair) Pos() token.Pos { return p.KeyPos }

// Expr константное выражение .( ... ). в постфиксной записи.
// Токены сохраняются как есть для вычислителя в нормализаторе.
type Expr struct {
	Dot    token.Pos
	Tokens []token.Token
}

func (e *Expr) Pos() token.Pos { return e.Dot }

// Document один разобранный документ — последовательность записей верхнего уровня
type Document struct {
	Entries []Entry
}
