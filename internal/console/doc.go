// Package console renders the colored status lines shown to the operator.
//
// Status output goes to stdout and is the machine-visible surface of a run;
// structured logs go to stderr via the logger package. Task lines use a
// "==>" prefix, nested detail lines use an indented "->".
package console
