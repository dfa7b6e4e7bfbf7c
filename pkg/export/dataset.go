// Package export renders console output (listing snapshots, pre-delete
// backups, registration posters) into CSV and PDF documents.
package export

// Dataset defines tabular export content. Title is used by renderers that
// carry a heading; CSV output ignores it.
type Dataset struct {
	Title   string
	Headers []string
	Rows    []map[string]string
}
