package service

import "strings"

const (
	deviceMobile  = "Mobile"
	deviceDesktop = "Desktop"
	uaOther       = "Other"
)

type uaRule struct {
	token string
	name  string
}

// Порядок важен: Edge содержит "Chrome", Chrome содержит "Safari",
// iOS и Android содержат "Mac OS" и "Linux"
var browserRules = []uaRule{
	{"edg", "Edge"},
	{"firefox", "Firefox"},
	{"chrome", "Chrome"},
	{"safari", "Safari"},
}

var osRules = []uaRule{
	{"windows", "Windows"},
	{"iphone", "iOS"},
	{"ipad", "iOS"},
	{"android", "Android"},
	{"mac", "MacOS"},
	{"linux", "Linux"},
}

// DeviceInfo грубая классификация клиента по User-Agent
type DeviceInfo struct {
	Device  string
	Browser string
	OS      string
}

// ParseUserAgent определяет устройство, браузер и ОС подстрочными эвристиками
func ParseUserAgent(ua string) DeviceInfo {
	lower := strings.ToLower(ua)

	info := DeviceInfo{Device: deviceDesktop, Browser: uaOther, OS: uaOther}
	if strings.Contains(lower, "mobile") {
		info.Device = deviceMobile
	}
	info.Browser = match(lower, browserRules)
	info.OS = match(lower, osRules)
	return info
}

func match(ua string, rules []uaRule) string {
	for _, r := range rules {
		if strings.Contains(ua, r.token) {
			return r.name
		}
	}
	return uaOther
}
