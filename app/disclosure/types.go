package disclosure

// Source identifies which extractor produced a record.
type Source string

const (
	SourceRegulatory Source = "regulatory"
	SourceWebpage    Source = "webpage"
)

const (
	DescriptionRegulatory = "regulatory filing"
	DescriptionWebpage    = "disclosure & news service"
)

// Record is a single disclosure observation. Extractors produce candidate
// records; the reconciler turns them into the deduplicated, ordered entries
// persisted to the feed artifact.
type Record struct {
	Source      Source `json:"source"`
	Title       string `json:"title"`
	Date        string `json:"date"` // YYYY-MM-DD, empty when unparseable
	Description string `json:"description"`
	Link        string `json:"link"`
}

// IdentityKey joins the fields that make two records the same disclosure.
func (r Record) IdentityKey() string {
	return r.Title + "|" + r.Link + "|" + r.Date
}
