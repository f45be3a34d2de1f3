package env

import (
	"os"
	"strconv"
	"strings"
	"time"
)

var (
	DefaultTrue  = []string{"1", "yes", "true", "on"}  // DefaultTrue are the values considered "true" when using [Source.Bool], and can be changed.
	DefaultFalse = []string{"0", "no", "false", "off"} // DefaultFalse are the values considered "false" when using [Source.Bool], and can be changed.
)

// Source reads environment variables that share a common prefix.
// Keys are compared case-insensitive, and the prefix is joined to keys with an underscore.
type Source struct {
	prefix  string
	environ func() []string
}

// Prefixed creates a [Source] for variables named PREFIX_KEY.
// An empty prefix reads keys as they are given.
func Prefixed(prefix string) Source {
	return Source{
		prefix:  strings.TrimSuffix(prefix, "_"),
		environ: os.Environ,
	}
}

// FromMap creates a [Source] backed by a fixed set of variables instead of the process environment.
// This is mostly useful for tests.
func FromMap(prefix string, vars map[string]string) Source {
	environ := make([]string, 0, len(vars))
	for k, v := range vars {
		environ = append(environ, k+"="+v)
	}
	return Source{
		prefix: strings.TrimSuffix(prefix, "_"),
		environ: func() []string {
			return environ
		},
	}
}

// Name returns the full variable name for key.
func (s Source) Name(key string) string {
	if len(s.prefix) == 0 {
		return strings.ToUpper(key)
	}
	return strings.ToUpper(s.prefix + "_" + key)
}

func (s Source) lookup(key string) (string, bool) {
	environ := s.environ
	if environ == nil {
		environ = os.Environ
	}
	name := strings.ToLower(s.Name(key))
	for _, kv := range environ() {
		k, v, found := strings.Cut(kv, "=")
		if !found {
			continue
		}
		if strings.ToLower(k) == name {
			return v, true
		}
	}
	return "", false
}

// Has reports whether the variable for key is set to a non-blank value.
func (s Source) Has(key string) bool {
	return len(s.Val(key, "")) > 0
}

// Val will attempt to get an environment variable value using the given key.
// If the variable isn't set, or is empty, then the defaultVal will be returned.
func (s Source) Val(key string, defaultVal string) string {
	val, ok := s.lookup(key)
	if !ok {
		return defaultVal
	}
	trimmed := strings.TrimSpace(val)
	if len(trimmed) == 0 {
		return defaultVal
	}
	return trimmed
}

// Bool interprets an environment variable as a boolean, using [DefaultTrue] and [DefaultFalse].
// The defaultVal will be returned if the variable isn't set, is empty, or can't be a boolean value.
func (s Source) Bool(key string, defaultVal bool) bool {
	sval := strings.ToLower(s.Val(key, ""))
	if len(sval) == 0 {
		return defaultVal
	}
	for _, v := range DefaultTrue {
		if sval == strings.ToLower(v) {
			return true
		}
	}
	for _, v := range DefaultFalse {
		if sval == strings.ToLower(v) {
			return false
		}
	}
	return defaultVal
}

// Int will attempt to interpret an environment variable as an integer, returning the defaultVal if the environment variable isn't found or can't be a valid integer.
func (s Source) Int(key string, defaultVal int64) int64 {
	sval := s.Val(key, "")
	if len(sval) == 0 {
		return defaultVal
	}
	ival, err := strconv.ParseInt(sval, 10, 64)
	if err != nil {
		return defaultVal
	}
	return ival
}

// Duration will attempt to interpret an environment variable as a [time.Duration], returning the defaultVal if the environment variable isn't found or can't be a valid [time.Duration].
func (s Source) Duration(key string, defaultVal time.Duration) time.Duration {
	sval := s.Val(key, "")
	if len(sval) == 0 {
		return defaultVal
	}
	dval, err := time.ParseDuration(sval)
	if err != nil {
		return defaultVal
	}
	return dval
}
