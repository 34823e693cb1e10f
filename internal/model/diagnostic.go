package model

import (
	"fmt"

	"github.com/vovanwin/conf2yaml/internal/token"
)

// Severity уровень серьезности диагностики
type Severity int

const (
	SeverityError Severity = iota
	SeverityWarning
)

func (s Severity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	default:
		return "unknown"
	}
}

// Category категория диагностики по стадии конвейера
type Category int

const (
	CategoryLexical Category = iota
	CategorySyntax
	CategorySemantic
	CategoryInternal
)

func (c Category) String() string {
	switch c {
	case CategoryLexical:
		return "лексическая ошибка"
	case CategorySyntax:
		return "синтаксическая ошибка"
	case CategorySemantic:
		return "семантическая ошибка"
	case CategoryInternal:
		return "внутренняя ошибка"
	default:
		return "unknown"
	}
}

// Diagnostic сообщение об ошибке или предупреждение с позицией в исходном тексте
type Diagnostic struct {
	Severity Severity
	Category Category
	Message  string
	Pos      token.Pos
}

// Errorf создает диагностику уровня Error
func Errorf(cat Category, pos token.Pos, format string, args ...any) Diagnostic {
	return Diagnostic{
		Severity: SeverityError,
		Category: cat,
		Message:  fmt.Sprintf(format, args...),
		Pos:      pos,
	}
}

// String форматирует диагностику в виде <строка>:<колонка>: <severity>: <сообщение>
func (d Diagnostic) String() string {
	return fmt.Sprintf("%d:%d: %s: %s", d.Pos.Line, d.Pos.Column, d.Severity, d.Message)
}

// HasErrors проверяет есть ли в списке диагностики уровня Error
func HasErrors(diags []Diagnostic) bool {
	for _, d := range diags {
		if d.Severity == SeverityError {
			return true
		}
	}
	return false
}
