// Package trackertest provides an in-memory host page and a recording
// transport for exercising tracker.Client without a browser or network.
package trackertest

import (
	"net/url"
	"sync"

	"github.com/PratikDhanave/web-analytics-service/pkg/tracker"
)

// Page is a scriptable host page implementing every tracker capability.
// It is safe for concurrent use.
type Page struct {
	mu         sync.Mutex
	location   tracker.Location
	title      string
	referrer   string
	userAgent  string
	readyState string
	navigation *tracker.NavigationTiming
	paints     []tracker.PaintTiming
	observeErr map[string]error

	nextID     int
	click      map[int]func(tracker.Element)
	submit     map[int]func(tracker.Form)
	visibility map[int]func(tracker.Visibility)
	unload     map[int]func()
	load       map[int]func()
	observers  map[string]map[int]func([]tracker.PerformanceEntry)
}

var (
	_ tracker.Page                = (*Page)(nil)
	_ tracker.EventSource         = (*Page)(nil)
	_ tracker.Lifecycle           = (*Page)(nil)
	_ tracker.PerformanceTimeline = (*Page)(nil)
	_ tracker.PerformanceObserver = (*Page)(nil)
)

// PageOption configures NewPage.
type PageOption func(*Page)

func WithTitle(title string) PageOption      { return func(p *Page) { p.title = title } }
func WithReferrer(ref string) PageOption     { return func(p *Page) { p.referrer = ref } }
func WithUserAgent(ua string) PageOption     { return func(p *Page) { p.userAgent = ua } }
func WithReadyState(state string) PageOption { return func(p *Page) { p.readyState = state } }
func WithPaint(entries ...tracker.PaintTiming) PageOption {
	return func(p *Page) { p.paints = append(p.paints, entries...) }
}

// WithNavigation sets the navigation timing entry.
func WithNavigation(fetchStart, responseStart float64) PageOption {
	return func(p *Page) {
		p.navigation = &tracker.NavigationTiming{FetchStart: fetchStart, ResponseStart: responseStart}
	}
}

// WithObserveError makes Observe fail for entryType.
func WithObserveError(entryType string, err error) PageOption {
	return func(p *Page) { p.observeErr[entryType] = err }
}

// NewPage returns a loaded page at href.
func NewPage(href string, opts ...PageOption) *Page {
	p := &Page{
		location:   parseLocation(href),
		readyState: tracker.ReadyStateComplete,
		observeErr: map[string]error{},
		click:      map[int]func(tracker.Element){},
		submit:     map[int]func(tracker.Form){},
		visibility: map[int]func(tracker.Visibility){},
		unload:     map[int]func(){},
		load:       map[int]func(){},
		observers:  map[string]map[int]func([]tracker.PerformanceEntry){},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func parseLocation(href string) tracker.Location {
	loc := tracker.Location{Href: href}
	if u, err := url.Parse(href); err == nil {
		loc.Hostname = u.Hostname()
		loc.Pathname = u.EscapedPath()
		if loc.Pathname == "" {
			loc.Pathname = "/"
		}
	}
	return loc
}

func (p *Page) Location() tracker.Location {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.location
}

func (p *Page) Title() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.title
}

func (p *Page) Referrer() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.referrer
}

func (p *Page) UserAgent() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.userAgent
}

func (p *Page) ReadyState() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.readyState
}

// Navigate changes the current location, as a client-side route change would.
func (p *Page) Navigate(href string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.location = parseLocation(href)
}

func (p *Page) Navigation() (tracker.NavigationTiming, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.navigation == nil {
		return tracker.NavigationTiming{}, false
	}
	return *p.navigation, true
}

func (p *Page) Paint() []tracker.PaintTiming {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]tracker.PaintTiming(nil), p.paints...)
}

func (p *Page) OnClick(fn func(tracker.Element)) func()               { return listen(p, p.click, fn) }
func (p *Page) OnSubmit(fn func(tracker.Form)) func()                 { return listen(p, p.submit, fn) }
func (p *Page) OnVisibilityChange(fn func(tracker.Visibility)) func() { return listen(p, p.visibility, fn) }
func (p *Page) OnUnload(fn func()) func()                             { return listen(p, p.unload, fn) }
func (p *Page) OnLoad(fn func()) func()                               { return listen(p, p.load, fn) }

func (p *Page) Observe(entryType string, fn func([]tracker.PerformanceEntry)) (func(), error) {
	p.mu.Lock()
	if err := p.observeErr[entryType]; err != nil {
		p.mu.Unlock()
		return nil, err
	}
	m, ok := p.observers[entryType]
	if !ok {
		m = map[int]func([]tracker.PerformanceEntry){}
		p.observers[entryType] = m
	}
	p.mu.Unlock()
	return listen(p, m, fn), nil
}

// Click dispatches a click on el to every listener.
func (p *Page) Click(el tracker.Element) {
	for _, fn := range snapshot(p, p.click) {
		fn(el)
	}
}

// Submit dispatches a form submission.
func (p *Page) Submit(f tracker.Form) {
	for _, fn := range snapshot(p, p.submit) {
		fn(f)
	}
}

// SetVisibility dispatches a visibility change.
func (p *Page) SetVisibility(v tracker.Visibility) {
	for _, fn := range snapshot(p, p.visibility) {
		fn(v)
	}
}

// Unload dispatches the page exit.
func (p *Page) Unload() {
	for _, fn := range snapshot(p, p.unload) {
		fn()
	}
}

// Load marks the document complete and fires the load listeners.
func (p *Page) Load() {
	p.mu.Lock()
	p.readyState = tracker.ReadyStateComplete
	p.mu.Unlock()
	for _, fn := range snapshot(p, p.load) {
		fn()
	}
}

// EmitEntries delivers entries to the observers of entryType.
func (p *Page) EmitEntries(entryType string, entries ...tracker.PerformanceEntry) {
	p.mu.Lock()
	m := p.observers[entryType]
	p.mu.Unlock()
	if m == nil {
		return
	}
	for _, fn := range snapshot(p, m) {
		fn(entries)
	}
}

// Listeners reports how many listeners are attached across all event kinds.
func (p *Page) Listeners() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	n := len(p.click) + len(p.submit) + len(p.visibility) + len(p.unload) + len(p.load)
	for _, m := range p.observers {
		n += len(m)
	}
	return n
}

func listen[T any](p *Page, m map[int]T, fn T) func() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.nextID++
	id := p.nextID
	m[id] = fn
	return func() {
		p.mu.Lock()
		defer p.mu.Unlock()
		delete(m, id)
	}
}

func snapshot[T any](p *Page, m map[int]T) []T {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]T, 0, len(m))
	for _, fn := range m {
		out = append(out, fn)
	}
	return out
}
