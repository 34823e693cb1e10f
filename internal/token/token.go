package token

import "fmt"

// Kind представляет тип токена
type Kind int

const (
	EOF Kind = iota
	Ident
	String
	Number
	Punct
	Comment
	Newline
)

func (k Kind) String() string {
	switch k {
	case EOF:
		return "EOF"
	case Ident:
		return "идентификатор"
	case String:
		return "строка"
	case Number:
		return "число"
	case Punct:
		return "разделитель"
	case Comment:
		return "комментарий"
	case Newline:
		return "перевод строки"
	default:
		return "unknown"
	}
}

// Pos позиция в исходном тексте. Строка и колонка нумеруются с 1,
// смещение в байтах — с 0.
type Pos struct {
	Line   int
	Column int
	Offset int
}

func (p Pos) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

// Token лексема с типом, текстом и позицией. После создания не изменяется.
// Для Kind == String в Lexeme лежит уже раскодированное значение без кавычек,
// для остальных типов — исходный текст.
type Token struct {
	Kind   Kind
	Lexeme string
	Pos    Pos
}

// IsPunct проверяет что токен — разделитель с указанным текстом
func (t Token) IsPunct(lexeme string) bool {
	return t.Kind == Punct && t.Lexeme == lexeme
}
