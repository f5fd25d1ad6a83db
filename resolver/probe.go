package resolver

import "strings"

// HostProbe reports the protocol of the page hosting the caller, if any
type HostProbe interface {
	// PageProtocol returns the page protocol scheme (e.g. "https:") and
	// whether a page context exists at all
	PageProtocol() (string, bool)
}

type pageProtocol string

// PageProtocol returns a probe for callers running inside a page served with scheme.
// The ssl preference is ignored: urls use https only when scheme starts with "https".
func PageProtocol(scheme string) HostProbe {
	return pageProtocol(scheme)
}

func (p pageProtocol) PageProtocol() (string, bool) {
	return string(p), true
}

type noHost struct{}

// NoHost returns a probe for callers without a page context, the ssl preference decides
func NoHost() HostProbe {
	return noHost{}
}

func (noHost) PageProtocol() (string, bool) {
	return "", false
}

func isHTTPS(scheme string) bool {
	return strings.HasPrefix(strings.ToLower(scheme), "https")
}
