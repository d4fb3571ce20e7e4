package models

type Role string

const (
	ROLE_COMMENTS Role = "comments"
	ROLE_ARTICLES Role = "articles"
)

// Source and derived column names
const (
	FIELD_COMMENT_BODY   = "commentBody"
	FIELD_COMMENT_DATE   = "commentDate"
	FIELD_ABSTRACT       = "abstract"
	FIELD_SNIPPET        = "snippet"
	FIELD_LEAD_PARAGRAPH = "lead_paragraph"
	FIELD_ARTICLE_DATE   = "articleDate"

	FIELD_ARTICLE_TEXT = "article_text"
	FIELD_SENTIMENT    = "sentiment"
	FIELD_SCORE        = "score"
	FIELD_DATE         = "date"
)

// Value is a single cell. Numbers keep their textual form; Valid is false for
// missing cells.
type Value struct {
	Str   string `json:"value"`
	Valid bool   `json:"valid"`
}

func StringValue(s string) Value {
	return Value{Str: s, Valid: true}
}

func MissingValue() Value {
	return Value{}
}

// Record is one row of a Dataset. Index is its position in the source.
type Record struct {
	Index      int
	Fields     map[string]Value
	Annotation *Annotation
}

func NewRecord(index int) Record {
	return Record{
		Index:  index,
		Fields: make(map[string]Value),
	}
}

func (r Record) Get(field string) Value {
	return r.Fields[field]
}

func (r Record) Set(field string, v Value) {
	r.Fields[field] = v
}

type Dataset struct {
	Role    Role
	Columns []string
	Records []Record
}

func NewDataset(role Role, columns []string) *Dataset {
	return &Dataset{
		Role:    role,
		Columns: append([]string(nil), columns...),
	}
}

func (d *Dataset) Len() int {
	return len(d.Records)
}

func (d *Dataset) HasColumn(name string) bool {
	for _, c := range d.Columns {
		if c == name {
			return true
		}
	}
	return false
}

// AddColumn appends name to the schema unless it is already present. Existing
// columns keep their position so re-derived fields do not reorder exports.
func (d *Dataset) AddColumn(name string) {
	if d.HasColumn(name) {
		return
	}
	d.Columns = append(d.Columns, name)
}

// IsAnnotated reports whether the sentiment and score columns exist.
func (d *Dataset) IsAnnotated() bool {
	return d != nil && d.HasColumn(FIELD_SENTIMENT) && d.HasColumn(FIELD_SCORE)
}
