// Package report implements persistence for the build Report.
//
// The FileRepository stores and loads the last build report as indented
// JSON on disk and exposes a Repository interface that the builder and the
// doctor depend on.
package report
