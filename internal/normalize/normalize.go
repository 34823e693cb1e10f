package normalize

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/vovanwin/conf2yaml/internal/ast"
	"github.com/vovanwin/conf2yaml/internal/model"
	"github.com/vovanwin/conf2yaml/internal/token"
)

var (
	intRe   = regexp.MustCompile(`^[+-]?[0-9]+$`)
	// дробная часть начинается только после цифр: лексема вида ".5" из
	// лексера не приходит, это синтаксическая ошибка
	floatRe = regexp.MustCompile(`^[+-]?([0-9]+\.[0-9]*|[0-9]+)([eE][+-]?[0-9]+)?$`)
)

type normalizer struct {
	diags  []model.Diagnostic
	consts map[string]*model.Value // записи верхнего уровня, видимые выражениям
}

// Normalize превращает синтаксическое дерево в каноническое дерево значений.
// Типизация скаляров, проверка дубликатов ключей и вычисление константных
// выражений происходят здесь. Ошибки накапливаются, проход не прерывается:
// проблемное поддерево заменяется на null, чтобы за один запуск показать
// как можно больше проблем.
func Normalize(doc *ast.Document) (*model.Value, []model.Diagnostic) {
	n := &normalizer{consts: make(map[string]*model.Value)}
	root := n.document(doc)
	return root, n.diags
}

func (n *normalizer) errorf(pos token.Pos, format string, args ...any) {
	n.diags = append(n.diags, model.Errorf(model.CategorySemantic, pos, format, args...))
}

func (n *normalizer) document(doc *ast.Document) *model.Value {
	pos := token.Pos{Line: 1, Column: 1}
	if len(doc.Entries) > 0 {
		pos = doc.Entries[0].KeyPos
	}

	var entries []model.Entry
	seen := make(map[string]token.Pos)
	for _, e := range doc.Entries {
		if first, ok := seen[e.Key]; ok {
			n.errorf(e.KeyPos, "дублирующийся ключ %q (первое объявление в %s)", e.Key, first)
			continue // действует первое объявление
		}
		seen[e.Key] = e.KeyPos
		v := n.node(e.Value)
		entries = append(entries, model.Entry{Key: e.Key, Value: v})
		n.consts[e.Key] = v
	}
	return model.MapValue(entries, pos)
}

func (n *normalizer) node(node ast.Node) *model.Value {
	switch v := node.(type) {
	case *ast.Scalar:
		return n.scalar(v)
	case *ast.Block:
		return n.block(v)
	case *ast.List:
		return n.list(v)
	case *ast.Expr:
		return n.evalExpr(v)
	case *ast.Pair:
		n.errorf(v.KeyPos, "элемент списка не может быть парой ключ-значение (%q)", v.Key)
		return model.NullValue(v.KeyPos)
	default:
		n.errorf(node.Pos(), "неизвестный узел синтаксического дерева")
		return model.NullValue(node.Pos())
	}
}

func (n *normalizer) block(b *ast.Block) *model.Value {
	var entries []model.Entry
	seen := make(map[string]token.Pos)
	for _, e := range b.Entries {
		if first, ok := seen[e.Key]; ok {
			n.errorf(e.KeyPos, "дублирующийся ключ %q (первое объявление в %s)", e.Key, first)
			continue
		}
		seen[e.Key] = e.KeyPos
		entries = append(entries, model.Entry{Key: e.Key, Value: n.node(e.Value)})
	}
	return model.MapValue(entries, b.Lbrace)
}

func (n *normalizer) list(l *ast.List) *model.Value {
	items := make([]*model.Value, 0, len(l.Items))
	for _, it := range l.Items {
		items = append(items, n.node(it))
	}
	return model.SeqValue(items, l.Lbrack)
}

// scalar типизирует скалярный литерал. Порядок приоритетов фиксирован:
// кавычки дают строку; затем true/false (без учета регистра); затем
// null/~/пустое значение; затем целое; затем вещественное; иначе строка.
func (n *normalizer) scalar(s *ast.Scalar) *model.Value {
	t := s.Tok
	switch t.Kind {
	case token.String:
		return model.StringValue(t.Lexeme, t.Pos)
	case token.Number:
		return n.number(t.Lexeme, t.Pos)
	default:
		switch strings.ToLower(t.Lexeme) {
		case "true":
			return model.BoolValue(true, t.Pos)
		case "false":
			return model.BoolValue(false, t.Pos)
		case "null", "~", "":
			return model.NullValue(t.Pos)
		}
		if intRe.MatchString(t.Lexeme) || isFloatLexeme(t.Lexeme) {
			return n.number(t.Lexeme, t.Pos)
		}
		return model.StringValue(t.Lexeme, t.Pos)
	}
}

// number разбирает числовую лексему: целое без точки и экспоненты — int64,
// при переполнении или наличии дробной части — float64
func (n *normalizer) number(lexeme string, pos token.Pos) *model.Value {
	if intRe.MatchString(lexeme) {
		if i, err := strconv.ParseInt(lexeme, 10, 64); err == nil {
			return model.IntValue(i, pos)
		}
		// переполнение int64 — храним как float
	}
	f, err := strconv.ParseFloat(lexeme, 64)
	if err != nil {
		n.errorf(pos, "некорректное число: %q", lexeme)
		return model.NullValue(pos)
	}
	return model.FloatValue(f, pos)
}

// isFloatLexeme проверяет вещественную грамматику: обязательна точка
// или экспонента, иначе лексема целая либо строковая
func isFloatLexeme(s string) bool {
	return floatRe.MatchString(s) && strings.ContainsAny(s, ".eE")
}
