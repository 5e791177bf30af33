// Package fuzztests runs fuzz harnesses over the lexer and parser. Inputs
// are loaded into a FileSet; no input may hang the parser or break the span
// invariants of internal/testkit.
//
// Seeds are the .sw files under testdata/ plus a few known recovery cases:
//
//	go test ./internal/fuzz -fuzz=FuzzParserNoHang -fuzztime=30s
package fuzztests
