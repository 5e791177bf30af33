// Package diag defines the diagnostic model shared by every pipeline stage.
//
// Stages never abort on user errors. They report through a Reporter and keep
// going, substituting error placeholders where needed. The driver owns a Bag,
// sorts it into source order once all stages finished and hands it to the
// renderers in internal/diagfmt.
//
// Diagnostic is the central record:
//
//   - Severity – Info, Warning or Error; only errors block a successful compile.
//   - Code – numeric identifier; the thousands digit selects the taxonomy bucket
//     (LEX, SYN, RES, TYP, PUR, ATR, PRJ, IO).
//   - Message – short human-oriented text.
//   - Primary span and optional Notes with their own spans and labels.
//   - Help – optional hint on how to fix the problem.
//
// Reporters must be safe for concurrent use when a stage runs in parallel;
// BagReporter, DedupReporter and CountingReporter are.
package diag
