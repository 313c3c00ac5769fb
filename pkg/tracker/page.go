package tracker

// Location is the address of the instrumented page.
type Location struct {
	Href     string
	Hostname string
	Pathname string
}

// Page is the minimum a host page must provide.
type Page interface {
	Location() Location
	Title() string
	Referrer() string
	UserAgent() string
}

// Element is the target of a click.
type Element struct {
	TagName   string
	ID        string
	ClassName string
	Text      string
	// Href is set for links.
	Href string
}

// FormField is one submitted name/value entry.
type FormField struct {
	Name  string
	Value string
}

// Form is a submitted form and its entries.
type Form struct {
	ID     string
	Name   string
	Action string
	Method string
	Fields []FormField
}

// Visibility is the page visibility state.
type Visibility string

const (
	Visible Visibility = "visible"
	Hidden  Visibility = "hidden"
)

// ReadyStateComplete is the document ready state after load.
const ReadyStateComplete = "complete"

// EventSource lets the client listen to user interaction. Each On* call
// returns a function that removes the listener.
type EventSource interface {
	OnClick(fn func(Element)) func()
	OnSubmit(fn func(Form)) func()
	OnVisibilityChange(fn func(Visibility)) func()
	OnUnload(fn func()) func()
}

// Lifecycle exposes document load state.
type Lifecycle interface {
	ReadyState() string
	OnLoad(fn func()) func()
}

// NavigationTiming holds navigation milestones in milliseconds since time origin.
type NavigationTiming struct {
	FetchStart    float64
	ResponseStart float64
}

// PaintTiming is one paint entry, e.g. "first-contentful-paint".
type PaintTiming struct {
	Name      string
	StartTime float64
}

// PerformanceTimeline exposes buffered timing entries.
type PerformanceTimeline interface {
	Navigation() (NavigationTiming, bool)
	Paint() []PaintTiming
}

// Observed performance entry types.
const (
	EntryLargestContentfulPaint = "largest-contentful-paint"
	EntryFirstInput             = "first-input"
	EntryLayoutShift            = "layout-shift"
)

// PerformanceEntry is a reported web-vitals entry. Only the fields relevant to
// its EntryType are set.
type PerformanceEntry struct {
	EntryType       string
	StartTime       float64
	ProcessingStart float64
	Value           float64
	HadRecentInput  bool
}

// PerformanceObserver delivers performance entries as they are recorded.
type PerformanceObserver interface {
	Observe(entryType string, fn func([]PerformanceEntry)) (stop func(), err error)
}
