package models

// Table is an ordered sequence of records sharing a schema.
// The first record's keys define the columns used for display.
type Table []Record

// Columns returns the column names of the first record.
func (t Table) Columns() []string {
	if len(t) == 0 {
		return []string{}
	}
	return t[0].Keys()
}

func (t Table) Len() int { return len(t) }

func (t Table) IsEmpty() bool { return len(t) == 0 }

// Rows converts the table to plain maps, used for msgpack export.
func (t Table) Rows() []map[string]interface{} {
	rows := make([]map[string]interface{}, len(t))
	for i, r := range t {
		rows[i] = r.Map()
	}
	return rows
}

// ParseWarning describes a row that was reconciled during ingestion.
type ParseWarning struct {
	Line    int    `json:"line"`
	Content string `json:"content"`
	Reason  string `json:"reason"`
}
