// Package token defines lexical token kinds and trivia.
// Invariants:
//   - Token.Text is the exact source slice covered by Token.Span.
//   - Attributes are lexed as '#' (Kind: Hash) followed by a bracketed list; no
//     per-attribute token kinds exist.
//   - Primitive type names (u8, u64, bool, b256, str) are identifiers and are
//     recognized by the resolver, not the lexer.
//   - Comments and whitespace never appear in the token stream; they ride on
//     the following token as leading Trivia.
package token
