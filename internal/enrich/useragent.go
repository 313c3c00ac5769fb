package enrich

import "strings"

// Device types.
const (
	DeviceDesktop = "desktop"
	DeviceMobile  = "mobile"
	DeviceTablet  = "tablet"
)

// Browser families.
const (
	BrowserChrome  = "chrome"
	BrowserFirefox = "firefox"
	BrowserSafari  = "safari"
	BrowserEdge    = "edge"
	BrowserUnknown = "unknown"
)

// Operating systems.
const (
	OSWindows = "windows"
	OSMacOS   = "macos"
	OSLinux   = "linux"
	OSAndroid = "android"
	OSIOS     = "ios"
	OSUnknown = "unknown"
)

// Client is the server-side classification of a user agent.
type Client struct {
	DeviceType string
	Browser    string
	OS         string
}

type rule struct {
	value    string
	keywords []string
}

// Rules are checked in order; the first keyword hit wins.
// Mobile precedes tablet so a UA claiming both resolves to mobile.
var (
	deviceRules = []rule{
		{DeviceMobile, []string{"mobile", "android", "iphone"}},
		{DeviceTablet, []string{"tablet", "ipad"}},
	}
	// Edge and Chromium UAs also carry "chrome" and "safari", Chrome carries "safari".
	browserRules = []rule{
		{BrowserEdge, []string{"edg/", "edge/", "edga/", "edgios/"}},
		{BrowserChrome, []string{"chrome", "crios"}},
		{BrowserFirefox, []string{"firefox", "fxios"}},
		{BrowserSafari, []string{"safari"}},
	}
	// Android UAs carry "linux", iOS UAs carry "mac os x".
	osRules = []rule{
		{OSWindows, []string{"windows"}},
		{OSAndroid, []string{"android"}},
		{OSIOS, []string{"iphone", "ipad", "ipod", "ios"}},
		{OSMacOS, []string{"mac"}},
		{OSLinux, []string{"linux"}},
	}
)

// ClassifyUserAgent derives device type, browser and OS by case-insensitive
// substring matching. It is deterministic and never fails.
func ClassifyUserAgent(userAgent string) Client {
	ua := strings.ToLower(userAgent)
	return Client{
		DeviceType: match(ua, deviceRules, DeviceDesktop),
		Browser:    match(ua, browserRules, BrowserUnknown),
		OS:         match(ua, osRules, OSUnknown),
	}
}

func match(ua string, rules []rule, fallback string) string {
	for _, r := range rules {
		for _, kw := range r.keywords {
			if strings.Contains(ua, kw) {
				return r.value
			}
		}
	}
	return fallback
}
