// Package useragent buckets raw User-Agent strings into coarse device,
// browser and operating system names using ordered substring rules.
//
// Rules are order-sensitive. Chromium-based Edge carries the "Chrome"
// marker and is classified as Chrome.
package useragent

import "strings"

// Bucket names returned by Classify.
const (
	DeviceMobile  = "Mobile"
	DeviceDesktop = "Desktop"
	Unknown       = "Unknown"
)

// Info is the classification of one User-Agent string.
type Info struct {
	Device  string
	Browser string
	OS      string
}

type rule struct {
	markers []string
	name    string
}

var mobileMarkers = []string{"Mobile", "Android", "iPhone", "iPad"}

// First match wins.
var browserRules = []rule{
	{[]string{"Chrome"}, "Chrome"},
	{[]string{"Firefox"}, "Firefox"},
	{[]string{"Safari"}, "Safari"},
	{[]string{"Edge"}, "Edge"},
}

// First match wins. Real iOS agents contain "Mac OS X" and land on macOS.
var osRules = []rule{
	{[]string{"Windows"}, "Windows"},
	{[]string{"Mac"}, "macOS"},
	{[]string{"Linux"}, "Linux"},
	{[]string{"Android"}, "Android"},
	{[]string{"iPhone", "iPad"}, "iOS"},
}

// Classify maps ua to its device, browser and OS buckets. Matching is
// case-sensitive. It never fails: unmatched fields are Unknown.
func Classify(ua string) Info {
	info := Info{
		Device:  DeviceDesktop,
		Browser: match(ua, browserRules),
		OS:      match(ua, osRules),
	}
	if containsAny(ua, mobileMarkers) {
		info.Device = DeviceMobile
	}
	return info
}

func match(ua string, rules []rule) string {
	for _, r := range rules {
		if containsAny(ua, r.markers) {
			return r.name
		}
	}
	return Unknown
}

func containsAny(s string, markers []string) bool {
	for _, m := range markers {
		if strings.Contains(s, m) {
			return true
		}
	}
	return false
}
