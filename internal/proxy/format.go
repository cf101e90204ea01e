package proxy

import (
	"fmt"
	"net"
	"strings"

	"golang.org/x/net/publicsuffix"
)

// Line renders the record as one listing line:
//
//	[2022-04-03 07:34:41-00:00] (a1b2c3d4e5) fireprox_example => http://a1b2c3d4e5.execute-api.us-east-1.amazonaws.com/ (http://example.com)
func (r Record) Line() string {
	return fmt.Sprintf("[%s] (%s) fireprox_%s => http://%s/ (http://%s)",
		r.CreatedAt, r.ID, domainLabel(r.Target), r.Hostname, r.Target)
}

// domainLabel returns the registered-domain label of the target host
// ("example" for example.com), used to give each proxy a readable name.
// Hosts without a recognizable public suffix (IPs, bare names) fall back
// to the host itself.
func domainLabel(target string) string {
	host := target
	if h, _, err := net.SplitHostPort(target); err == nil {
		host = h
	}
	if net.ParseIP(host) != nil {
		return host
	}

	etldPlusOne, err := publicsuffix.EffectiveTLDPlusOne(host)
	if err != nil {
		return host
	}

	label, _, _ := strings.Cut(etldPlusOne, ".")
	return label
}
