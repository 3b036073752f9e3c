// Package svg draws workflow graphs as self-contained SVG.
//
// [Graph] draws a layered layout produced by the layout package: every node
// is a rounded rectangle outlined in its status color, labelled with its
// display name and agent, and every dependency is a curved arrow from the
// dependency to the dependent. [Fallback] draws a flat phase list in one row
// when the workflow structure could not be loaded.
//
// The root element scales to its container (width="100%" with a viewBox).
// Empty input yields a short HTML placeholder instead of a drawing.
// Output is a pure function of the input, so identical calls produce
// identical bytes.
package svg
