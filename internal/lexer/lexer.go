package lexer

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/vovanwin/conf2yaml/internal/model"
	"github.com/vovanwin/conf2yaml/internal/token"
)

// lexer состояние одного прохода по исходному тексту
type lexer struct {
	src    []rune
	pos    int // индекс следующей руны
	line   int // текущая строка, с 1
	col    int // текущая колонка, с 1
	offset int // смещение в байтах, с 0

	tokens []token.Token
	diags  []model.Diagnostic
}

// Lex разбивает исходный текст на токены. Последним токеном всегда идет EOF.
// Комментарии выдаются как токены (парсер их пропускает), переводы строк
// значимы и тоже выдаются. Лексическая ошибка фатальна для документа:
// разбор прерывается, возвращаются накопленные токены и одна диагностика.
func Lex(src string) ([]token.Token, []model.Diagnostic) {
	l := &lexer{src: []rune(src), line: 1, col: 1}
	l.run()
	return l.tokens, l.diags
}

func (l *lexer) run() {
	for l.pos < len(l.src) {
		l.skipSpaces()
		if l.pos >= len(l.src) {
			break
		}

		c := l.peek()
		pos := l.here()

		switch {
		case c == '\n':
			l.advance()
			l.emit(token.Newline, "\n", pos)

		case c == ':' && l.peekAt(1) == ':':
			l.lexLineComment(pos)

		case c == '<' && l.peekAt(1) == '#':
			if !l.lexBlockComment(pos) {
				return
			}

		case c == '"':
			if !l.lexString(pos) {
				return
			}

		case unicode.IsDigit(c):
			l.lexNumber(pos)

		case (c == '-' || c == '+') && unicode.IsDigit(l.peekAt(1)):
			l.lexNumber(pos)

		case unicode.IsLetter(c) || c == '_':
			l.lexIdent(pos)

		case c == '~':
			// одиночная тильда — пустое значение, типизируется нормализатором
			l.advance()
			l.emit(token.Ident, "~", pos)

		case strings.ContainsRune("{}[]():,.+-", c):
			l.advance()
			l.emit(token.Punct, string(c), pos)

		default:
			l.errorf(pos, "неожиданный символ: %q", c)
			return
		}
	}
	l.emit(token.EOF, "", l.here())
}

func (l *lexer) here() token.Pos {
	return token.Pos{Line: l.line, Column: l.col, Offset: l.offset}
}

func (l *lexer) peek() rune {
	if l.pos >= len(l.src) {
		return 0
	}
	return l.src[l.pos]
}

func (l *lexer) peekAt(n int) rune {
	if l.pos+n >= len(l.src) {
		return 0
	}
	return l.src[l.pos+n]
}

// advance потребляет одну руну и возвращает ее
func (l *lexer) advance() rune {
	if l.pos >= len(l.src) {
		return 0
	}
	r := l.src[l.pos]
	l.pos++
	l.offset += utf8.RuneLen(r)
	if r == '\n' {
		l.line++
		l.col = 1
	} else {
		l.col++
	}
	return r
}

func (l *lexer) emit(kind token.Kind, lexeme string, pos token.Pos) {
	l.tokens = append(l.tokens, token.Token{Kind: kind, Lexeme: lexeme, Pos: pos})
}

func (l *lexer) errorf(pos token.Pos, format string, args ...any) {
	l.diags = append(l.diags, model.Errorf(model.CategoryLexical, pos, format, args...))
}

// skipSpaces пропускает пробелы и табуляцию внутри строки;
// перевод строки — отдельный токен
func (l *lexer) skipSpaces() {
	for l.pos < len(l.src) {
		c := l.peek()
		if c == ' ' || c == '\t' || c == '\r' {
			l.advance()
			continue
		}
		break
	}
}

// lexLineComment читает комментарий :: до конца строки
func (l *lexer) lexLineComment(pos token.Pos) {
	l.advance() // :
	l.advance() // :
	var b strings.Builder
	for l.pos < len(l.src) && l.peek() != '\n' {
		b.WriteRune(l.advance())
	}
	l.emit(token.Comment, strings.TrimSpace(b.String()), pos)
}

// lexBlockComment читает комментарий <# ... #>, возможно многострочный.
// Возвращает false если комментарий не закрыт.
func (l *lexer) lexBlockComment(pos token.Pos) bool {
	l.advance() // <
	l.advance() // #
	var b strings.Builder
	for l.pos < len(l.src) {
		if l.peek() == '#' && l.peekAt(1) == '>' {
			l.advance()
			l.advance()
			l.emit(token.Comment, strings.TrimSpace(b.String()), pos)
			return true
		}
		b.WriteRune(l.advance())
	}
	l.errorf(pos, "незакрытый многострочный комментарий")
	return false
}

// lexString читает строку в двойных кавычках с экранированием.
// Возвращает false если строка не закрыта до конца строки или файла;
// диагностика указывает на открывающую кавычку.
func (l *lexer) lexString(pos token.Pos) bool {
	l.advance() // открывающая кавычка
	var b strings.Builder
	for l.pos < len(l.src) {
		c := l.peek()
		if c == '\n' {
			break
		}
		if c == '"' {
			l.advance()
			l.emit(token.String, b.String(), pos)
			return true
		}
		if c == '\\' {
			escPos := l.here()
			l.advance()
			switch e := l.advance(); e {
			case '\\':
				b.WriteRune('\\')
			case '"':
				b.WriteRune('"')
			case 'n':
				b.WriteRune('\n')
			case 't':
				b.WriteRune('\t')
			case 'r':
				b.WriteRune('\r')
			default:
				l.errorf(escPos, "неизвестная экранирующая последовательность: \\%c", e)
				return false
			}
			continue
		}
		b.WriteRune(l.advance())
	}
	l.errorf(pos, "незакрытая строка")
	return false
}

// lexNumber читает число: необязательный знак, цифры, необязательная
// дробная часть и экспонента. Лексема сохраняется как есть — разбор
// в int/float выполняет нормализатор.
func (l *lexer) lexNumber(pos token.Pos) {
	var b strings.Builder
	if l.peek() == '-' || l.peek() == '+' {
		b.WriteRune(l.advance())
	}
	for l.pos < len(l.src) && unicode.IsDigit(l.peek()) {
		b.WriteRune(l.advance())
	}
	if l.peek() == '.' && unicode.IsDigit(l.peekAt(1)) {
		b.WriteRune(l.advance())
		for l.pos < len(l.src) && unicode.IsDigit(l.peek()) {
			b.WriteRune(l.advance())
		}
	}
	if c := l.peek(); c == 'e' || c == 'E' {
		next := l.peekAt(1)
		if unicode.IsDigit(next) || ((next == '-' || next == '+') && unicode.IsDigit(l.peekAt(2))) {
			b.WriteRune(l.advance())
			if l.peek() == '-' || l.peek() == '+' {
				b.WriteRune(l.advance())
			}
			for l.pos < len(l.src) && unicode.IsDigit(l.peek()) {
				b.WriteRune(l.advance())
			}
		}
	}
	l.emit(token.Number, b.String(), pos)
}

// lexIdent читает слово: буква или '_', дальше буквы, цифры, '_', '-' и '.'
// (точка внутри слова нужна для имен хостов и версий; выражение начинается
// с точки только в позиции значения, конфликта нет)
func (l *lexer) lexIdent(pos token.Pos) {
	var b strings.Builder
	b.WriteRune(l.advance())
	for l.pos < len(l.src) {
		c := l.peek()
		if unicode.IsLetter(c) || unicode.IsDigit(c) || c == '_' || c == '-' || c == '.' {
			b.WriteRune(l.advance())
			continue
		}
		break
	}
	l.emit(token.Ident, b.String(), pos)
}
