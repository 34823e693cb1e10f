package normalize

import (
	"strings"
	"testing"

	"github.com/vovanwin/conf2yaml/internal/lexer"
	"github.com/vovanwin/conf2yaml/internal/model"
	"github.com/vovanwin/conf2yaml/internal/parser"
)

// normalizeSrc прогоняет текст через лексер, парсер и нормализатор
func normalizeSrc(t *testing.T, src string) (*model.Value, []model.Diagnostic) {
	t.Helper()
	toks, diags := lexer.Lex(src)
	if model.HasErrors(diags) {
		t.Fatalf("лексические ошибки в тестовом тексте: %v", diags)
	}
	doc, pdiags := parser.Parse(toks, 0)
	if model.HasErrors(pdiags) {
		t.Fatalf("синтаксические ошибки в тестовом тексте: %v", pdiags)
	}
	return Normalize(doc)
}

func TestTypeInference(t *testing.T) {
	tests := []struct {
		name  string
		src   string
		check func(t *testing.T, v *model.Value)
	}{
		{"целое", "v: 42", func(t *testing.T, v *model.Value) {
			if v.Kind != model.KindInt || v.Int != 42 {
				t.Errorf("получено %v, ожидалось Int(42)", v)
			}
		}},
		{"отрицательное", "v: -3", func(t *testing.T, v *model.Value) {
			if v.Kind != model.KindInt || v.Int != -3 {
				t.Errorf("получено %v, ожидалось Int(-3)", v)
			}
		}},
		{"вещественное", "v: 3.14", func(t *testing.T, v *model.Value) {
			if v.Kind != model.KindFloat || v.Float != 3.14 {
				t.Errorf("получено %v, ожидалось Float(3.14)", v)
			}
		}},
		{"экспонента", "v: 1e3", func(t *testing.T, v *model.Value) {
			if v.Kind != model.KindFloat || v.Float != 1000 {
				t.Errorf("получено %v, ожидалось Float(1000)", v)
			}
		}},
		{"bool строчными", "v: true", func(t *testing.T, v *model.Value) {
			if v.Kind != model.KindBool || !v.Bool {
				t.Errorf("получено %v, ожидалось Bool(true)", v)
			}
		}},
		{"bool без учета регистра", "v: True", func(t *testing.T, v *model.Value) {
			if v.Kind != model.KindBool || !v.Bool {
				t.Errorf("получено %v, ожидалось Bool(true)", v)
			}
		}},
		{"false", "v: FALSE", func(t *testing.T, v *model.Value) {
			if v.Kind != model.KindBool || v.Bool {
				t.Errorf("получено %v, ожидалось Bool(false)", v)
			}
		}},
		{"кавычки дают строку", `v: "42"`, func(t *testing.T, v *model.Value) {
			if v.Kind != model.KindString || v.Str != "42" {
				t.Errorf("получено %v, ожидалось String(42)", v)
			}
		}},
		{"null", "v: null", func(t *testing.T, v *model.Value) {
			if v.Kind != model.KindNull {
				t.Errorf("получено %v, ожидалось Null", v)
			}
		}},
		{"тильда", "v: ~", func(t *testing.T, v *model.Value) {
			if v.Kind != model.KindNull {
				t.Errorf("получено %v, ожидалось Null", v)
			}
		}},
		{"пустое значение", "v:", func(t *testing.T, v *model.Value) {
			if v.Kind != model.KindNull {
				t.Errorf("получено %v, ожидалось Null", v)
			}
		}},
		{"слово дает строку", "v: web", func(t *testing.T, v *model.Value) {
			if v.Kind != model.KindString || v.Str != "web" {
				t.Errorf("получено %v, ожидалось String(web)", v)
			}
		}},
		{"переполнение int64 дает float", "v: 99999999999999999999", func(t *testing.T, v *model.Value) {
			if v.Kind != model.KindFloat {
				t.Errorf("получено %v, ожидалось Float", v)
			}
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tree, diags := normalizeSrc(t, tt.src+"\n")
			if model.HasErrors(diags) {
				t.Fatalf("неожиданные диагностики: %v", diags)
			}
			v, ok := tree.Get("v")
			if !ok {
				t.Fatal("ключ v не найден")
			}
			tt.check(t, v)
		})
	}
}

func TestDuplicateKeyFirstWins(t *testing.T) {
	tree, diags := normalizeSrc(t, "a: 1\na: 2\n")
	if len(diags) != 1 {
		t.Fatalf("получено %d диагностик, ожидалась 1: %v", len(diags), diags)
	}
	d := diags[0]
	if d.Severity != model.SeverityError || d.Category != model.CategorySemantic {
		t.Errorf("неверная классификация: %+v", d)
	}
	// диагностика указывает на повтор и называет позицию первого объявления
	if d.Pos.Line != 2 || d.Pos.Column != 1 {
		t.Errorf("позиция %d:%d, ожидалось 2:1", d.Pos.Line, d.Pos.Column)
	}
	if !strings.Contains(d.Message, "1:1") {
		t.Errorf("сообщение не называет первое объявление: %q", d.Message)
	}

	v, _ := tree.Get("a")
	if v.Kind != model.KindInt || v.Int != 1 {
		t.Errorf("должно сохраниться первое значение 1, получено %v", v)
	}
}

func TestDuplicateKeyNested(t *testing.T) {
	_, diags := normalizeSrc(t, "b {\n  x: 1\n  x: 2\n}\n")
	if len(diags) != 1 || diags[0].Category != model.CategorySemantic {
		t.Fatalf("ожидалась одна семантическая ошибка: %v", diags)
	}
}

func TestSameKeyDifferentLevelsAllowed(t *testing.T) {
	_, diags := normalizeSrc(t, "x: 1\nb {\n  x: 2\n}\n")
	if len(diags) != 0 {
		t.Errorf("одинаковые ключи на разных уровнях допустимы: %v", diags)
	}
}

func TestPairInListBecomesNull(t *testing.T) {
	tree, diags := normalizeSrc(t, "xs: [a: 1, b]\n")
	if len(diags) != 1 || diags[0].Category != model.CategorySemantic {
		t.Fatalf("ожидалась одна семантическая ошибка: %v", diags)
	}
	xs, _ := tree.Get("xs")
	if xs.Kind != model.KindSeq || len(xs.Items) != 2 {
		t.Fatalf("неверная последовательность: %v", xs)
	}
	if xs.Items[0].Kind != model.KindNull {
		t.Errorf("проблемное поддерево должно стать null, получено %v", xs.Items[0])
	}
	if xs.Items[1].Kind != model.KindString || xs.Items[1].Str != "b" {
		t.Errorf("второй элемент поврежден: %v", xs.Items[1])
	}
}

func TestEvalArithmetic(t *testing.T) {
	tests := []struct {
		name  string
		src   string
		check func(t *testing.T, v *model.Value)
	}{
		{"сложение целых", "base: 100\nv: .( base 28 + ).\n", func(t *testing.T, v *model.Value) {
			if v.Kind != model.KindInt || v.Int != 128 {
				t.Errorf("получено %v, ожидалось Int(128)", v)
			}
		}},
		{"вычитание", "v: .( 10 3 - ).\n", func(t *testing.T, v *model.Value) {
			if v.Kind != model.KindInt || v.Int != 7 {
				t.Errorf("получено %v, ожидалось Int(7)", v)
			}
		}},
		{"смешанная арифметика дает float", "v: .( 1 0.5 + ).\n", func(t *testing.T, v *model.Value) {
			if v.Kind != model.KindFloat || v.Float != 1.5 {
				t.Errorf("получено %v, ожидалось Float(1.5)", v)
			}
		}},
		{"конкатенация последовательностей", "a: [1, 2]\nb: [3]\nv: .( a b + ).\n", func(t *testing.T, v *model.Value) {
			if v.Kind != model.KindSeq || len(v.Items) != 3 {
				t.Fatalf("получено %v, ожидалась последовательность из 3", v)
			}
			if v.Items[2].Int != 3 {
				t.Errorf("неверный порядок конкатенации: %v", v.Items)
			}
		}},
		{"сортировка чисел", "a: [3, 1, 2]\nv: .( a sort ).\n", func(t *testing.T, v *model.Value) {
			if v.Kind != model.KindSeq || len(v.Items) != 3 {
				t.Fatalf("получено %v", v)
			}
			if v.Items[0].Int != 1 || v.Items[2].Int != 3 {
				t.Errorf("не отсортировано: %v", v.Items)
			}
		}},
		{"сортировка строк", "a: [c, a, b]\nv: .( a sort ).\n", func(t *testing.T, v *model.Value) {
			if v.Items[0].Str != "a" || v.Items[2].Str != "c" {
				t.Errorf("не отсортировано: %v", v.Items)
			}
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tree, diags := normalizeSrc(t, tt.src)
			if model.HasErrors(diags) {
				t.Fatalf("неожиданные диагностики: %v", diags)
			}
			v, ok := tree.Get("v")
			if !ok {
				t.Fatal("ключ v не найден")
			}
			tt.check(t, v)
		})
	}
}

func TestEvalSortDoesNotMutateSource(t *testing.T) {
	tree, diags := normalizeSrc(t, "a: [3, 1, 2]\nv: .( a sort ).\n")
	if model.HasErrors(diags) {
		t.Fatalf("неожиданные диагностики: %v", diags)
	}
	a, _ := tree.Get("a")
	if a.Items[0].Int != 3 || a.Items[1].Int != 1 || a.Items[2].Int != 2 {
		t.Errorf("исходная последовательность изменена: %v", a.Items)
	}
}

func TestEvalErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		msg  string
	}{
		{"неизвестная константа", "v: .( missing 1 + ).\n", "неизвестная константа"},
		{"ссылка вперед не видна", "v: .( later 1 + ).\nlater: 5\n", "неизвестная константа"},
		{"мало операндов", "v: .( 1 + ).\n", "недостаточно операндов"},
		{"лишние значения в стеке", "v: .( 1 2 ).\n", "некорректное выражение"},
		{"вычитание строк", "a: x\nb: y\nv: .( a b - ).\n", "несовместимые типы"},
		{"sort не последовательности", "a: 5\nv: .( a sort ).\n", "sort() ожидает"},
		{"sort смешанных типов", "a: [1, x]\nv: .( a sort ).\n", "однотипных"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tree, diags := normalizeSrc(t, tt.src)
			if !model.HasErrors(diags) {
				t.Fatal("ожидалась семантическая ошибка")
			}
			found := false
			for _, d := range diags {
				if strings.Contains(d.Message, tt.msg) {
					found = true
				}
			}
			if !found {
				t.Errorf("нет сообщения %q: %v", tt.msg, diags)
			}
			// значение выражения заменяется на null
			if v, ok := tree.Get("v"); ok && v.Kind != model.KindNull {
				t.Errorf("значение должно стать null, получено %v", v)
			}
		})
	}
}

func TestOrderPreserved(t *testing.T) {
	tree, diags := normalizeSrc(t, "z: 1\na: 2\nm: 3\n")
	if len(diags) != 0 {
		t.Fatalf("неожиданные диагностики: %v", diags)
	}
	keys := make([]string, 0, len(tree.Entries))
	for _, e := range tree.Entries {
		keys = append(keys, e.Key)
	}
	want := []string{"z", "a", "m"}
	for i := range want {
		if keys[i] != want[i] {
			t.Fatalf("порядок ключей %v, ожидалось %v", keys, want)
		}
	}
}
