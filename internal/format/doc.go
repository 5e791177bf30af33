// Package format prints the CST back to canonical source text and dumps it in
// a span-free form for structural comparison.
//
// Назначение: канонический pretty-print файла и проверка round-trip
// (parse(print(parse(src))) == parse(src) без учёта span'ов и комментариев).
// Не делает: сохранения комментариев и исходных пробелов.
// Зависимости: internal/ast, internal/parser, internal/source.
package format
