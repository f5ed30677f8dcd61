package viewer

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/tickerwatch/disclosure-comb/app/disclosure"
)

const (
	// MaxRecords is a defensive upper bound on artifact ingestion.
	MaxRecords = 2000

	// EpochSentinel replaces dates the artifact carries in an unusable form.
	EpochSentinel = "1970-01-01"

	DefaultPageSize = 25

	placeholderTitle       = "Feed unavailable"
	placeholderDescription = "The disclosure feed could not be loaded"
	StatusUnavailable      = "disclosure feed is unavailable"
)

// Entry is one re-normalized feed record as the consumer presents it. The
// consumer never trusts the artifact's shape, so every field is coerced on
// load.
type Entry struct {
	Title       string `json:"title"`
	Date        string `json:"date"`
	Description string `json:"description"`
	Link        string `json:"link"`
}

// View is an immutable working set of entries loaded from one artifact.
// Filter, sort, and pagination recompute fully on every Apply call.
type View struct {
	entries  []Entry
	pageSize int
	status   string
}

// Load builds a view from artifact bytes. The artifact may be a bare array or
// an object with an items field; any other valid-JSON shape yields an empty
// working set. Malformed JSON is a load failure and returns an error so the
// caller can fall back to Placeholder.
func Load(data []byte, pageSize int) (*View, error) {
	if !json.Valid(data) {
		return nil, fmt.Errorf("artifact is not valid JSON")
	}

	var items []map[string]interface{}
	if err := json.Unmarshal(data, &items); err != nil {
		var wrapped struct {
			Items []map[string]interface{} `json:"items"`
		}
		if err := json.Unmarshal(data, &wrapped); err == nil {
			items = wrapped.Items
		} else {
			items = nil
		}
	}

	if len(items) > MaxRecords {
		items = items[:MaxRecords]
	}

	entries := make([]Entry, 0, len(items))
	for _, item := range items {
		entries = append(entries, normalizeEntry(item))
	}

	return &View{entries: entries, pageSize: normalizePageSize(pageSize)}, nil
}

// Placeholder is the fallback view shown when the artifact cannot be loaded:
// one synthetic record and a user-visible status message, never an error
// state.
func Placeholder(pageSize int) *View {
	return &View{
		entries: []Entry{{
			Title:       placeholderTitle,
			Date:        EpochSentinel,
			Description: placeholderDescription,
		}},
		pageSize: normalizePageSize(pageSize),
		status:   StatusUnavailable,
	}
}

func (v *View) Len() int {
	return len(v.entries)
}

type SortMode string

const (
	SortDateDesc  SortMode = "date_desc"
	SortDateAsc   SortMode = "date_asc"
	SortTitleAsc  SortMode = "title_asc"
	SortTitleDesc SortMode = "title_desc"
	SortNone      SortMode = "none"
)

// ParseSortMode maps user input to a sort mode, defaulting to newest-first.
func ParseSortMode(value string) SortMode {
	switch SortMode(value) {
	case SortDateAsc, SortTitleAsc, SortTitleDesc, SortNone:
		return SortMode(value)
	default:
		return SortDateDesc
	}
}

// State is the consumer's UI state. Mutate it only through the transition
// methods: changing the query or sort mode resets pagination to the first
// page.
type State struct {
	Query string
	Sort  SortMode
	Page  int
}

func NewState() State {
	return State{Sort: SortDateDesc, Page: 1}
}

func (s *State) SetQuery(query string) {
	if query != s.Query {
		s.Query = query
		s.Page = 1
	}
}

func (s *State) SetSort(mode SortMode) {
	if mode != s.Sort {
		s.Sort = mode
		s.Page = 1
	}
}

func (s *State) SetPage(page int) {
	s.Page = page
}

// Page is one recomputed slice of the working set plus the totals the UI
// status text needs.
type Page struct {
	Entries     []Entry `json:"entries"`
	Total       int     `json:"total"`
	Page        int     `json:"page"`
	PageCount   int     `json:"page_count"`
	ShowingFrom int     `json:"showing_from"`
	ShowingTo   int     `json:"showing_to"`
	Status      string  `json:"status,omitempty"`
}

// Apply recomputes filter, sort, and pagination from scratch. The page index
// is clamped into the valid range for the filtered total.
func (v *View) Apply(state State) Page {
	query := strings.ToLower(strings.TrimSpace(state.Query))

	matched := make([]Entry, 0, len(v.entries))
	for _, entry := range v.entries {
		if query == "" ||
			strings.Contains(strings.ToLower(entry.Title), query) ||
			strings.Contains(strings.ToLower(entry.Description), query) {
			matched = append(matched, entry)
		}
	}

	switch state.Sort {
	case SortDateAsc:
		sort.SliceStable(matched, func(i, j int) bool { return matched[i].Date < matched[j].Date })
	case SortTitleAsc:
		sort.SliceStable(matched, func(i, j int) bool {
			return strings.ToLower(matched[i].Title) < strings.ToLower(matched[j].Title)
		})
	case SortTitleDesc:
		sort.SliceStable(matched, func(i, j int) bool {
			return strings.ToLower(matched[i].Title) > strings.ToLower(matched[j].Title)
		})
	case SortNone:
		// pass-through: artifact order
	default:
		sort.SliceStable(matched, func(i, j int) bool { return matched[i].Date > matched[j].Date })
	}

	total := len(matched)
	pageCount := (total + v.pageSize - 1) / v.pageSize
	if pageCount < 1 {
		pageCount = 1
	}

	page := state.Page
	if page < 1 {
		page = 1
	}
	if page > pageCount {
		page = pageCount
	}

	from := (page - 1) * v.pageSize
	if from > total {
		from = total
	}
	to := from + v.pageSize
	if to > total {
		to = total
	}

	showingFrom := 0
	if total > 0 {
		showingFrom = from + 1
	}

	return Page{
		Entries:     matched[from:to],
		Total:       total,
		Page:        page,
		PageCount:   pageCount,
		ShowingFrom: showingFrom,
		ShowingTo:   to,
		Status:      v.status,
	}
}

func normalizeEntry(raw map[string]interface{}) Entry {
	entry := Entry{
		Title:       coerceString(raw["title"]),
		Description: coerceString(raw["description"]),
		Link:        coerceString(raw["link"]),
	}

	entry.Date = disclosure.NormalizeDate(coerceString(raw["date"]))
	if entry.Date == "" {
		entry.Date = EpochSentinel
	}

	return entry
}

func coerceString(value interface{}) string {
	switch v := value.(type) {
	case string:
		return strings.TrimSpace(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	case nil:
		return ""
	default:
		return fmt.Sprintf("%v", v)
	}
}

func normalizePageSize(pageSize int) int {
	if pageSize <= 0 {
		return DefaultPageSize
	}
	return pageSize
}
