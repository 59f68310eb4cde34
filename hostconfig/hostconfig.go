// Package hostconfig holds per-host fetch tunables: timeouts, connection
// limits, retry pacing, render wait, and whether TLS verification may be
// skipped for that host. Skipping verification is opt-in per host and
// off by default -- see Default below.
package hostconfig

import (
	"strings"
	"time"
)

// Config is one host's tunables.
type Config struct {
	TotalTimeout         time.Duration
	ConnectTimeout        time.Duration
	MaxConnections         int
	RetryBaseDelay        time.Duration
	RenderWait             time.Duration
	ConsentClickTimeout    time.Duration

	// InsecureSkipVerify disables TLS certificate verification for this
	// host. Default false; only named hosts known to serve over
	// misconfigured or self-signed TLS opt in.
	InsecureSkipVerify bool
}

// Default is used for any host with no explicit entry.
func Default() Config {
	return Config{
		TotalTimeout:        30 * time.Second,
		ConnectTimeout:      10 * time.Second,
		MaxConnections:      10,
		RetryBaseDelay:      1 * time.Second,
		RenderWait:          2 * time.Second,
		ConsentClickTimeout: 3 * time.Second,
		InsecureSkipVerify:  false,
	}
}

// byHost is the per-host override table. Hosts absent from this table get
// Default(). Only hosts observed needing relaxed TLS verification set
// InsecureSkipVerify true. Each entry is a complete Config that For
// returns as is; no field is filled in from Default().
var byHost = map[string]Config{
	"indico.desy.de": {
		TotalTimeout: 45 * time.Second, ConnectTimeout: 15 * time.Second,
		MaxConnections: 6, RetryBaseDelay: 2 * time.Second,
		RenderWait: 3 * time.Second, ConsentClickTimeout: 3 * time.Second,
		InsecureSkipVerify: true,
	},
	"bib-pubdb1.desy.de": {
		TotalTimeout: 40 * time.Second, ConnectTimeout: 15 * time.Second,
		MaxConnections: 8, RetryBaseDelay: 2 * time.Second,
		RenderWait: 2 * time.Second, ConsentClickTimeout: 3 * time.Second,
		InsecureSkipVerify: true,
	},
	"confluence.desy.de": {
		TotalTimeout: 30 * time.Second, ConnectTimeout: 10 * time.Second,
		MaxConnections: 6, RetryBaseDelay: 2 * time.Second,
		RenderWait: 2 * time.Second, ConsentClickTimeout: 3 * time.Second,
		InsecureSkipVerify: true,
	},
	"wiki.zeuthen.desy.de": {
		TotalTimeout: 30 * time.Second, ConnectTimeout: 10 * time.Second,
		MaxConnections: 6, RetryBaseDelay: 2 * time.Second,
		RenderWait: 2 * time.Second, ConsentClickTimeout: 3 * time.Second,
		InsecureSkipVerify: true,
	},
	"www-zeuthen.desy.de": {
		TotalTimeout: 30 * time.Second, ConnectTimeout: 10 * time.Second,
		MaxConnections: 10, RetryBaseDelay: 1 * time.Second,
		RenderWait: 2 * time.Second, ConsentClickTimeout: 3 * time.Second,
		InsecureSkipVerify: true,
	},
	"photon-science.desy.de": {
		TotalTimeout: 35 * time.Second, ConnectTimeout: 12 * time.Second,
		MaxConnections: 8, RetryBaseDelay: 1500 * time.Millisecond,
		RenderWait: 2500 * time.Millisecond, ConsentClickTimeout: 3 * time.Second,
		InsecureSkipVerify: true,
	},
	"pier-hamburg.de": {
		TotalTimeout: 30 * time.Second, ConnectTimeout: 10 * time.Second,
		MaxConnections: 10, RetryBaseDelay: 1 * time.Second,
		RenderWait: 2 * time.Second, ConsentClickTimeout: 3 * time.Second,
		InsecureSkipVerify: true,
	},
	"cfel.de": {
		TotalTimeout: 30 * time.Second, ConnectTimeout: 10 * time.Second,
		MaxConnections: 10, RetryBaseDelay: 1 * time.Second,
		RenderWait: 2 * time.Second, ConsentClickTimeout: 3 * time.Second,
		InsecureSkipVerify: true,
	},
	"helmholtz-berlin.de": {
		TotalTimeout: 30 * time.Second, ConnectTimeout: 10 * time.Second,
		MaxConnections: 8, RetryBaseDelay: 1500 * time.Millisecond,
		RenderWait: 2 * time.Second, ConsentClickTimeout: 3 * time.Second,
		InsecureSkipVerify: true,
	},
	"xfel.eu": {
		TotalTimeout: 35 * time.Second, ConnectTimeout: 12 * time.Second,
		MaxConnections: 8, RetryBaseDelay: 1500 * time.Millisecond,
		RenderWait: 2500 * time.Millisecond, ConsentClickTimeout: 3 * time.Second,
		InsecureSkipVerify: true,
	},
	"desy.de": {
		TotalTimeout: 30 * time.Second, ConnectTimeout: 10 * time.Second,
		MaxConnections: 12, RetryBaseDelay: 1 * time.Second,
		RenderWait: 2 * time.Second, ConsentClickTimeout: 3 * time.Second,
		InsecureSkipVerify: true,
	},
	"desy-dmg.de": {
		TotalTimeout: 30 * time.Second, ConnectTimeout: 10 * time.Second,
		MaxConnections: 6, RetryBaseDelay: 2 * time.Second,
		RenderWait: 2 * time.Second, ConsentClickTimeout: 3 * time.Second,
		InsecureSkipVerify: true,
	},
	"belle2.org": {
		TotalTimeout: 30 * time.Second, ConnectTimeout: 10 * time.Second,
		MaxConnections: 8, RetryBaseDelay: 1 * time.Second,
		RenderWait: 2 * time.Second, ConsentClickTimeout: 3 * time.Second,
		InsecureSkipVerify: true,
	},
	"ilc.desy.de": {
		TotalTimeout: 30 * time.Second, ConnectTimeout: 10 * time.Second,
		MaxConnections: 6, RetryBaseDelay: 2 * time.Second,
		RenderWait: 2 * time.Second, ConsentClickTimeout: 3 * time.Second,
		InsecureSkipVerify: true,
	},
	"desy-thd.de": {
		TotalTimeout: 30 * time.Second, ConnectTimeout: 10 * time.Second,
		MaxConnections: 6, RetryBaseDelay: 2 * time.Second,
		RenderWait: 2 * time.Second, ConsentClickTimeout: 3 * time.Second,
		InsecureSkipVerify: true,
	},
	"zeuthen.desy.de": {
		TotalTimeout: 30 * time.Second, ConnectTimeout: 10 * time.Second,
		MaxConnections: 8, RetryBaseDelay: 1 * time.Second,
		RenderWait: 2 * time.Second, ConsentClickTimeout: 3 * time.Second,
		InsecureSkipVerify: true,
	},
}

// For looks up host's entry, matching the host itself and its registrable
// parent suffixes (so "foo.desy.de" inherits "desy.de"'s entry when no
// more specific one exists), falling back to Default.
func For(host string) Config {
	host = strings.ToLower(strings.TrimSuffix(host, "."))
	if c, ok := byHost[host]; ok {
		return c
	}
	for i := 0; i < len(host); i++ {
		if host[i] == '.' {
			if c, ok := byHost[host[i+1:]]; ok {
				return c
			}
		}
	}
	return Default()
}
