// Package config models the read-only configuration snapshot the
// dispatcher consults once per processed batch: a device-node
// allow/deny list and the identifier-attribute rules that drive
// merging.
package config

import "regexp"

// DefaultUIDAttribute is the environment key consulted for wwid when no
// UIDAttrRule pattern matches a device's kernel name.
const DefaultUIDAttribute = "ID_SERIAL"

// RuleConfig is the top-level YAML structure loaded from disk.
type RuleConfig struct {
	Version  string        `yaml:"version"`
	Devnode  DevnodeFilter `yaml:"devnode_filter"`
	UIDAttrs []UIDAttrRule `yaml:"uid_attrs"`
	Listener ListenerConf  `yaml:"listener"`
}

// ListenerConf holds tunables that don't change the merge algorithm
// but affect how aggressively the listener locks memory and how large
// its staging buffer starts out.
type ListenerConf struct {
	LockMemory  bool `yaml:"lock_memory"`
	StagingHint int  `yaml:"staging_hint"`
}

// DevnodeFilter holds blacklist and exception regex patterns matched
// against a device's kernel name (e.g. "sdb"). An exception match wins
// over a blacklist match, mirroring the "blist_devnode / elist_devnode"
// pair in the original multipath filter.
type DevnodeFilter struct {
	Blacklist  []string `yaml:"blacklist"`
	Exceptions []string `yaml:"exceptions"`

	blacklist  []*regexp.Regexp
	exceptions []*regexp.Regexp
}

// UIDAttrRule maps a kernel-name pattern to the env key that carries a
// device's wwid.
type UIDAttrRule struct {
	Match string `yaml:"match"`
	Attr  string `yaml:"attr"`

	pattern *regexp.Regexp
}

// MergingEnabled reports whether the identifier-attribute rules list is
// non-empty; a non-empty rules list turns merging on.
func (c *RuleConfig) MergingEnabled() bool {
	return len(c.UIDAttrs) > 0
}

// UIDAttribute returns the env key that should be resolved for kernel's
// wwid: the Attr of the first matching rule, or DefaultUIDAttribute if
// none match.
func (c *RuleConfig) UIDAttribute(kernel string) string {
	for _, r := range c.UIDAttrs {
		if r.pattern != nil && r.pattern.MatchString(kernel) {
			return r.Attr
		}
	}
	return DefaultUIDAttribute
}

// Accepts applies the devnode filter to kernel: an exception match
// always accepts; otherwise a blacklist match rejects; otherwise the
// device is accepted.
func (f *DevnodeFilter) Accepts(kernel string) bool {
	for _, re := range f.exceptions {
		if re.MatchString(kernel) {
			return true
		}
	}
	for _, re := range f.blacklist {
		if re.MatchString(kernel) {
			return false
		}
	}
	return true
}
