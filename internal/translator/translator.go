package translator

import (
	"fmt"

	"github.com/BurntSushi/toml"
	"github.com/vovanwin/conf2yaml/internal/emit"
	"github.com/vovanwin/conf2yaml/internal/lexer"
	"github.com/vovanwin/conf2yaml/internal/model"
	"github.com/vovanwin/conf2yaml/internal/normalize"
	"github.com/vovanwin/conf2yaml/internal/parser"
	"github.com/vovanwin/conf2yaml/internal/token"
)

// Options настройки транслятора
type Options struct {
	MaxDepth int `toml:"max_depth"` // предел вложенности блоков и списков
}

func DefaultOptions() Options {
	return Options{MaxDepth: parser.DefaultMaxDepth}
}

// LoadOptions читает TOML файл с настройками; отсутствующие поля
// получают значения по умолчанию
func LoadOptions(path string) (Options, error) {
	opts := DefaultOptions()
	if _, err := toml.DecodeFile(path, &opts); err != nil {
		return opts, fmt.Errorf("чтение настроек %s: %w", path, err)
	}
	if opts.MaxDepth <= 0 {
		return opts, fmt.Errorf("настройки %s: max_depth должен быть положительным", path)
	}
	return opts, nil
}

// Translate переводит текст конфигурационного языка в YAML.
// Чистая функция без ввода-вывода и глобального состояния: каждый вызов
// владеет своими токенами, деревом и диагностиками, поэтому независимые
// документы можно транслировать параллельно.
//
// Стадии запускаются последовательно: лексер → парсер → нормализатор →
// генератор YAML. Стадия может накопить несколько диагностик, но первая же
// стадия с ошибкой останавливает конвейер. Предупреждения успеху не мешают.
func Translate(src string, opts Options) (string, []model.Diagnostic) {
	if opts.MaxDepth <= 0 {
		opts.MaxDepth = parser.DefaultMaxDepth
	}

	toks, diags := lexer.Lex(src)
	if model.HasErrors(diags) {
		return "", diags
	}

	doc, pdiags := parser.Parse(toks, opts.MaxDepth)
	diags = append(diags, pdiags...)
	if model.HasErrors(diags) {
		return "", diags
	}

	tree, ndiags := normalize.Normalize(doc)
	diags = append(diags, ndiags...)
	if model.HasErrors(diags) {
		return "", diags
	}

	out, err := emit.Emit(tree)
	if err != nil {
		diags = append(diags, model.Diagnostic{
			Severity: model.SeverityError,
			Category: model.CategoryInternal,
			Message:  err.Error(),
			Pos:      token.Pos{Line: 1, Column: 1},
		})
		return "", diags
	}
	return out, diags
}
