package emit

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/vovanwin/conf2yaml/internal/model"
)

var (
	intLikeRe   = regexp.MustCompile(`^[+-]?[0-9][0-9_]*$`)
	floatLikeRe = regexp.MustCompile(`^[+-]?([0-9][0-9_]*\.[0-9_]*|\.[0-9_]+|[0-9][0-9_]*)([eE][+-]?[0-9]+)?$`)
	radixLikeRe = regexp.MustCompile(`^[+-]?0[bxoBXO][0-9a-fA-F_]+$`)
)

// Emit сериализует каноническое дерево в YAML: блочный стиль на всех
// уровнях, отступ два пробела, порядок ключей сохранен. Для одинаковых
// деревьев вывод побайтово совпадает. Ошибка возможна только при нарушении
// внутреннего инварианта (неизвестный тип узла) — это баг ядра, а не
// ошибка входных данных.
func Emit(root *model.Value) (string, error) {
	if root == nil || root.Kind != model.KindMap {
		return "", fmt.Errorf("корень документа должен быть отображением")
	}
	if len(root.Entries) == 0 {
		return "{}\n", nil
	}
	var b strings.Builder
	if err := writeMap(&b, root, 0); err != nil {
		return "", err
	}
	return b.String(), nil
}

func indentOf(level int) string {
	return strings.Repeat("  ", level)
}

// writeMap пишет записи отображения на указанном уровне отступа
func writeMap(b *strings.Builder, v *model.Value, level int) error {
	prefix := indentOf(level)
	for _, e := range v.Entries {
		key := renderString(e.Key)
		val := e.Value
		switch val.Kind {
		case model.KindMap:
			if len(val.Entries) == 0 {
				fmt.Fprintf(b, "%s%s: {}\n", prefix, key)
				continue
			}
			fmt.Fprintf(b, "%s%s:\n", prefix, key)
			if err := writeMap(b, val, level+1); err != nil {
				return err
			}
		case model.KindSeq:
			if len(val.Items) == 0 {
				fmt.Fprintf(b, "%s%s: []\n", prefix, key)
				continue
			}
			fmt.Fprintf(b, "%s%s:\n", prefix, key)
			if err := writeSeq(b, val, level+1); err != nil {
				return err
			}
		default:
			s, err := renderScalar(val)
			if err != nil {
				return err
			}
			fmt.Fprintf(b, "%s%s: %s\n", prefix, key, s)
		}
	}
	return nil
}

// writeSeq пишет элементы последовательности; вложенные коллекции
// выводятся в компактной записи ("- key: value" с висячим отступом)
func writeSeq(b *strings.Builder, v *model.Value, level int) error {
	prefix := indentOf(level)
	for _, it := range v.Items {
		switch it.Kind {
		case model.KindMap:
			if len(it.Entries) == 0 {
				b.WriteString(prefix + "- {}\n")
				continue
			}
			var sub strings.Builder
			if err := writeMap(&sub, it, level+1); err != nil {
				return err
			}
			writeCompact(b, sub.String(), level)
		case model.KindSeq:
			if len(it.Items) == 0 {
				b.WriteString(prefix + "- []\n")
				continue
			}
			var sub strings.Builder
			if err := writeSeq(&sub, it, level+1); err != nil {
				return err
			}
			writeCompact(b, sub.String(), level)
		default:
			s, err := renderScalar(it)
			if err != nil {
				return err
			}
			b.WriteString(prefix + "- " + s + "\n")
		}
	}
	return nil
}

// writeCompact заменяет отступ первой строки вложенного фрагмента на
// "- "; длина "- " равна ширине одного уровня отступа, поэтому остальные
// строки фрагмента остаются выровненными
func writeCompact(b *strings.Builder, sub string, level int) {
	child := indentOf(level + 1)
	i := strings.IndexByte(sub, '\n')
	first := sub[:i+1]
	b.WriteString(indentOf(level) + "- " + strings.TrimPrefix(first, child))
	b.WriteString(sub[i+1:])
}

// renderScalar возвращает текстовое представление скаляра
func renderScalar(v *model.Value) (string, error) {
	switch v.Kind {
	case model.KindNull:
		return "null", nil
	case model.KindBool:
		return strconv.FormatBool(v.Bool), nil
	case model.KindInt:
		return strconv.FormatInt(v.Int, 10), nil
	case model.KindFloat:
		return formatFloat(v.Float), nil
	case model.KindString:
		return renderString(v.Str), nil
	default:
		return "", fmt.Errorf("непредставимый тип узла: %s", v.Kind)
	}
}

// formatFloat каноническая десятичная запись: кратчайшая форма,
// ".0" добавляется когда нет ни точки, ни экспоненты, чтобы значение
// читалось обратно как вещественное
func formatFloat(f float64) string {
	switch {
	case math.IsNaN(f):
		return ".nan"
	case math.IsInf(f, 1):
		return ".inf"
	case math.IsInf(f, -1):
		return "-.inf"
	}
	s := strconv.FormatFloat(f, 'g', -1, 64)
	if !strings.ContainsAny(s, ".eE") {
		s += ".0"
	}
	return s
}

// renderString выводит строку простым скаляром когда она однозначна
// в YAML, иначе — в двойных кавычках со стандартным экранированием
func renderString(s string) string {
	if needsQuote(s) {
		return quote(s)
	}
	return s
}

// needsQuote проверяет, обязана ли строка быть в кавычках: пустая,
// похожая на bool/null/число (включая yes/no/on/off, подчеркивания в
// цифрах, .inf/.nan и формы 0x/0o/0b из YAML 1.1), с ведущими/замыкающими
// пробелами, начинающаяся с символа-индикатора или содержащая спецсимволы
func needsQuote(s string) bool {
	if s == "" {
		return true
	}
	switch strings.ToLower(s) {
	case "true", "false", "null", "~", "yes", "no", "on", "off":
		return true
	case ".inf", "+.inf", "-.inf", ".nan":
		return true
	}
	if intLikeRe.MatchString(s) || radixLikeRe.MatchString(s) {
		return true
	}
	if floatLikeRe.MatchString(s) && strings.ContainsAny(s, ".eE") {
		return true
	}
	if strings.HasPrefix(s, " ") || strings.HasSuffix(s, " ") {
		return true
	}
	first, _ := utf8.DecodeRuneInString(s)
	if strings.ContainsRune("-?:,[]{}#&*!|>'\"%@`", first) {
		return true
	}
	for _, r := range s {
		if r < 0x20 {
			return true
		}
		if strings.ContainsRune(`:#,[]{}"'\`, r) {
			return true
		}
	}
	return false
}

// quote двойные кавычки со стандартным экранированием
func quote(s string) string {
	var b strings.Builder
	b.WriteByte('"')
	for _, r := range s {
		switch r {
		case '\\':
			b.WriteString(`\\`)
		case '"':
			b.WriteString(`\"`)
		case '\n':
			b.WriteString(`\n`)
		case '\t':
			b.WriteString(`\t`)
		case '\r':
			b.WriteString(`\r`)
		default:
			if r < 0x20 {
				fmt.Fprintf(&b, `\u%04X`, r)
			} else {
				b.WriteRune(r)
			}
		}
	}
	b.WriteByte('"')
	return b.String()
}
