package clientcli

// Table is the human rendering of a list result.
type Table struct {
	// Kind names the listed items in summaries, e.g. "bucket(s)".
	Kind    string
	Columns []string
	Rows    [][]string
	// Total is the server-side count; zero hides the summary line.
	Total int
}

// Field is one labelled value of a Details view.
type Field struct {
	Label string
	Value string
}

// Details is the human rendering of a single entity.
type Details struct {
	Fields []Field
	// Nested lists rendered below the fields, such as a function's jobs.
	Tables []*Table
}

func (d *Details) add(label, value string) {
	d.Fields = append(d.Fields, Field{Label: label, Value: value})
}
