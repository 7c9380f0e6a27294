package config

import (
	"fmt"
	"regexp"
	"strings"
)

// Validate checks the config for required fields and compiles every
// regex pattern (devnode blacklist/exceptions, uid_attrs match), caching
// the compiled form on the struct so the hot path never re-compiles.
func Validate(cfg *RuleConfig) error {
	if cfg.Version == "" {
		return fmt.Errorf("config: version is required")
	}
	var errs []string

	compileInto(&cfg.Devnode.blacklist, cfg.Devnode.Blacklist, "devnode_filter.blacklist", &errs)
	compileInto(&cfg.Devnode.exceptions, cfg.Devnode.Exceptions, "devnode_filter.exceptions", &errs)

	for i, rule := range cfg.UIDAttrs {
		if rule.Match == "" {
			errs = append(errs, fmt.Sprintf("uid_attrs[%d]: match is required", i))
			continue
		}
		if rule.Attr == "" {
			errs = append(errs, fmt.Sprintf("uid_attrs[%d]: attr is required", i))
			continue
		}
		re, err := regexp.Compile(rule.Match)
		if err != nil {
			errs = append(errs, fmt.Sprintf("uid_attrs[%d]: invalid pattern %q: %s", i, rule.Match, err))
			continue
		}
		cfg.UIDAttrs[i].pattern = re
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation errors:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}

func compileInto(dst *[]*regexp.Regexp, patterns []string, loc string, errs *[]string) {
	out := make([]*regexp.Regexp, 0, len(patterns))
	for i, p := range patterns {
		re, err := regexp.Compile(p)
		if err != nil {
			*errs = append(*errs, fmt.Sprintf("%s[%d]: invalid pattern %q: %s", loc, i, p, err))
			continue
		}
		out = append(out, re)
	}
	*dst = out
}
