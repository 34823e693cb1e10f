package model

import "github.com/vovanwin/conf2yaml/internal/token"

// Kind представляет тип канонического значения
type Kind int

const (
	KindNull Kind = iota
	KindString
	KindInt
	KindFloat
	KindBool
	KindSeq
	KindMap
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindString:
		return "string"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindBool:
		return "bool"
	case KindSeq:
		return "sequence"
	case KindMap:
		return "mapping"
	default:
		return "unknown"
	}
}

// Entry пара ключ-значение внутри отображения. Порядок пар фиксирован
// порядком появления в исходном тексте, ключи уникальны.
type Entry struct {
	Key   string
	Value *Value
}

// Value узел канонического дерева конфигурации — единственное представление,
// которое потребляет генератор YAML. Каждый узел хранит позицию исходного
// фрагмента для диагностик.
type Value struct {
	Kind    Kind
	Str     string  // KindString
	Int     int64   // KindInt
	Float   float64 // KindFloat
	Bool    bool    // KindBool
	Items   []*Value
	Entries []Entry
	Pos     token.Pos
}

func NullValue(pos token.Pos) *Value {
	return &Value{Kind: KindNull, Pos: pos}
}

func StringValue(s string, pos token.Pos) *Value {
	return &Value{Kind: KindString, Str: s, Pos: pos}
}

func IntValue(n int64, pos token.Pos) *Value {
	return &Value{Kind: KindInt, Int: n, Pos: pos}
}

func FloatValue(f float64, pos token.Pos) *Value {
	return &Value{Kind: KindFloat, Float: f, Pos: pos}
}

func BoolValue(b bool, pos token.Pos) *Value {
	return &Value{Kind: KindBool, Bool: b, Pos: pos}
}

func SeqValue(items []*Value, pos token.Pos) *Value {
	return &Value{Kind: KindSeq, Items: items, Pos: pos}
}

func MapValue(entries []Entry, pos token.Pos) *Value {
	return &Value{Kind: KindMap, Entries: entries, Pos: pos}
}

// Get ищет значение по ключу в отображении
func (v *Value) Get(key string) (*Value, bool) {
	if v == nil || v.Kind != KindMap {
		return nil, false
	}
	for _, e := range v.Entries {
		if e.Key == key {
			return e.Value, true
		}
	}
	return nil, false
}

// IsNumber проверяет что значение числовое
func (v *Value) IsNumber() bool {
	return v.Kind == KindInt || v.Kind == KindFloat
}

// AsFloat возвращает числовое значение как float64
func (v *Value) AsFloat() float64 {
	if v.Kind == KindInt {
		return float64(v.Int)
	}
	return v.Float
}
