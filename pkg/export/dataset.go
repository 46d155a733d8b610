package export

// Dataset defines tabular export content.
type Dataset struct {
	Headers []string
	Rows    []map[string]string
}

// Section is a named table inside a report document.
type Section struct {
	Name string
	Data Dataset
}

// Document is a computed report rendered into a downloadable file.
// Summary lines are printed before the sections in their given order.
type Document struct {
	Title    string
	Summary  []string
	Sections []Section
}

// Renderer turns a Document into file bytes.
type Renderer interface {
	Render(doc Document) ([]byte, error)
	ContentType() string
	Extension() string
}
