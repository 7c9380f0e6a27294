package uevent

import (
	"strconv"
	"strings"
)

// mpathUUIDPrefix is the fixed prefix multipath stamps into DM_UUID for
// its own device-mapper targets.
const mpathUUIDPrefix = "mpath-"

// GetEnv returns the value of key in ev's env, and whether it was
// present. It never errors; an absent key is a normal, sentinel-valued
// outcome.
func GetEnv(ev *Event, key string) (string, bool) {
	if ev == nil {
		return "", false
	}
	return ev.Env.Get(key)
}

// GetEnvPositiveInt parses key's value as a base-10 non-negative
// integer, returning -1 if the key is absent, empty, or does not parse
// cleanly (trailing garbage, sign, or overflow).
func GetEnvPositiveInt(ev *Event, key string) int {
	v, ok := GetEnv(ev, key)
	if !ok || v == "" {
		return -1
	}
	n, err := strconv.ParseUint(v, 10, 63)
	if err != nil {
		return -1
	}
	return int(n)
}

// IsMpath reports whether ev's DM_UUID starts with the multipath UUID
// prefix and has at least one character after it.
func IsMpath(ev *Event) bool {
	uuid, ok := GetEnv(ev, "DM_UUID")
	if !ok {
		return false
	}
	if !strings.HasPrefix(uuid, mpathUUIDPrefix) {
		return false
	}
	return len(uuid) > len(mpathUUIDPrefix)
}

// GetDMStr returns the value of key in ev's env as an owned string
// (a plain Go string is already independently owned, so this simply
// aliases GetEnv — kept as a distinct name to mirror the caller's
// mental model of a device-mapper string lookup).
func GetDMStr(ev *Event, key string) (string, bool) {
	return GetEnv(ev, key)
}
