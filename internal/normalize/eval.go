package normalize

import (
	"sort"

	"github.com/vovanwin/conf2yaml/internal/ast"
	"github.com/vovanwin/conf2yaml/internal/model"
	"github.com/vovanwin/conf2yaml/internal/token"
)

// evalExpr вычисляет постфиксное константное выражение на стековой машине.
// Операнды — числа и ссылки на ранее объявленные ключи верхнего уровня,
// операторы — '+', '-' и sort. При любой ошибке значением выражения
// становится null, трансляция в целом завершается неуспехом.
func (n *normalizer) evalExpr(e *ast.Expr) *model.Value {
	var stack []*model.Value

	pop := func() *model.Value {
		v := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		return v
	}

	for _, t := range e.Tokens {
		switch {
		case t.Kind == token.Number:
			stack = append(stack, n.number(t.Lexeme, t.Pos))

		case t.Kind == token.Ident && t.Lexeme == "sort":
			if len(stack) < 1 {
				n.errorf(t.Pos, "недостаточно операндов для sort()")
				return model.NullValue(e.Dot)
			}
			sorted, ok := n.sortSeq(pop(), t.Pos)
			if !ok {
				return model.NullValue(e.Dot)
			}
			stack = append(stack, sorted)

		case t.Kind == token.Ident:
			v, ok := n.consts[t.Lexeme]
			if !ok {
				n.errorf(t.Pos, "неизвестная константа: %s", t.Lexeme)
				return model.NullValue(e.Dot)
			}
			stack = append(stack, v)

		case t.IsPunct("+"), t.IsPunct("-"):
			if len(stack) < 2 {
				n.errorf(t.Pos, "недостаточно операндов для %q", t.Lexeme)
				return model.NullValue(e.Dot)
			}
			b := pop()
			a := pop()
			r, ok := n.binop(t, a, b)
			if !ok {
				return model.NullValue(e.Dot)
			}
			stack = append(stack, r)

		default:
			n.errorf(t.Pos, "неожиданный токен в выражении: %s", t.Lexeme)
			return model.NullValue(e.Dot)
		}
	}

	if len(stack) != 1 {
		n.errorf(e.Dot, "некорректное выражение: в стеке осталось %d значений", len(stack))
		return model.NullValue(e.Dot)
	}
	res := *stack[0]
	res.Pos = e.Dot
	return &res
}

// binop применяет '+' или '-'. Сложение определено для чисел и для пары
// последовательностей (конкатенация), вычитание — только для чисел.
// Результат над двумя целыми остается целым.
func (n *normalizer) binop(op token.Token, a, b *model.Value) (*model.Value, bool) {
	plus := op.Lexeme == "+"

	if a.IsNumber() && b.IsNumber() {
		if a.Kind == model.KindInt && b.Kind == model.KindInt {
			if plus {
				return model.IntValue(a.Int+b.Int, op.Pos), true
			}
			return model.IntValue(a.Int-b.Int, op.Pos), true
		}
		if plus {
			return model.FloatValue(a.AsFloat()+b.AsFloat(), op.Pos), true
		}
		return model.FloatValue(a.AsFloat()-b.AsFloat(), op.Pos), true
	}

	if plus && a.Kind == model.KindSeq && b.Kind == model.KindSeq {
		items := make([]*model.Value, 0, len(a.Items)+len(b.Items))
		items = append(items, a.Items...)
		items = append(items, b.Items...)
		return model.SeqValue(items, op.Pos), true
	}

	n.errorf(op.Pos, "несовместимые типы для %q: %s и %s", op.Lexeme, a.Kind, b.Kind)
	return nil, false
}

// sortSeq возвращает отсортированную копию последовательности.
// Сортируются только однородные последовательности: все элементы числа
// либо все элементы строки.
func (n *normalizer) sortSeq(v *model.Value, pos token.Pos) (*model.Value, bool) {
	if v.Kind != model.KindSeq {
		n.errorf(pos, "sort() ожидает последовательность, получено %s", v.Kind)
		return nil, false
	}

	numeric := true
	textual := true
	for _, it := range v.Items {
		if !it.IsNumber() {
			numeric = false
		}
		if it.Kind != model.KindString {
			textual = false
		}
	}
	if !numeric && !textual {
		n.errorf(pos, "sort() ожидает последовательность однотипных скаляров")
		return nil, false
	}

	items := make([]*model.Value, len(v.Items))
	copy(items, v.Items)
	if numeric {
		sort.SliceStable(items, func(i, j int) bool {
			return items[i].AsFloat() < items[j].AsFloat()
		})
	} else {
		sort.SliceStable(items, func(i, j int) bool {
			return items[i].Str < items[j].Str
		})
	}
	return model.SeqValue(items, pos), true
}
