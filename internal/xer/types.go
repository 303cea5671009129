package xer

// Table is one %T block of an XER file.
type Table struct {
	Name   string
	Fields []string
	Rows   [][]string

	index map[string]int
}

// Get returns the value of field in row, or "" when the table has no such column.
func (t *Table) Get(row []string, field string) string {
	if t.index == nil {
		t.index = make(map[string]int, len(t.Fields))
		for i, f := range t.Fields {
			t.index[f] = i
		}
	}
	i, ok := t.index[field]
	if !ok || i >= len(row) {
		return ""
	}
	return row[i]
}

// File is a parsed XER export.
type File struct {
	Header []string // ERMHDR line fields after the marker
	Tables map[string]*Table
	Order  []string // table names in file order
}

// Table returns the named table, or nil.
func (f *File) Table(name string) *Table {
	return f.Tables[name]
}

// DiscoveredFile is an XER file found during directory scanning.
type DiscoveredFile struct {
	Path      string
	Name      string // base file name, used as the upload's display name
	MtimeNs   int64
	SizeBytes int64
}
