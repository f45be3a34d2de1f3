package env

import (
	"github.com/stretchr/testify/assert"
	"testing"
	"time"
)

func TestSource_Name(t *testing.T) {
	assert.Equal(t, "EVENTCAST_LOG_LEVEL", Prefixed("eventcast").Name("log_level"))
	assert.Equal(t, "EVENTCAST_LOG_LEVEL", Prefixed("EVENTCAST_").Name("LOG_LEVEL"))
	assert.Equal(t, "LOG_LEVEL", Prefixed("").Name("log_level"))
}

func TestSource_Val(t *testing.T) {
	const key = "VAL"

	tests := []struct {
		name     string
		value    string
		expected string
		unset    bool
	}{
		{
			name:     "Unset",
			unset:    true,
			expected: "default",
		},
		{
			name:     "Empty",
			value:    "",
			expected: "default",
		},
		{
			name:     "Trimmed",
			value:    "\n\t abc \t\n",
			expected: "abc",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			vars := map[string]string{}
			if !tc.unset {
				vars["TEST_VAL"] = tc.value
			}
			src := FromMap("TEST", vars)
			assert.Equal(t, tc.expected, src.Val(key, "default"))
		})
	}
}

func TestSource_ProcessEnvironment(t *testing.T) {
	t.Setenv("EVENTCAST_TEST_PROCESS", "from-process")
	src := Prefixed("EVENTCAST_TEST")
	assert.Equal(t, "from-process", src.Val("process", "default"), "Keys should be case-insensitive")
	assert.True(t, src.Has("PROCESS"))
	assert.False(t, src.Has("MISSING"))
}

func TestSource_Bool(t *testing.T) {
	tests := []struct {
		name     string
		unset    bool
		value    string
		expected bool
	}{
		{name: "Unset", unset: true, expected: false},
		{name: "Empty", value: "", expected: false},
		{name: "Not a bool", value: "blah", expected: false},
		{name: "True", value: "TRUE", expected: true},
		{name: "Yes", value: "yes", expected: true},
		{name: "On", value: " on ", expected: true},
		{name: "False", value: "0", expected: false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			vars := map[string]string{}
			if !tc.unset {
				vars["test_bool"] = tc.value
			}
			assert.Equal(t, tc.expected, FromMap("TEST", vars).Bool("BOOL", false))
		})
	}

	assert.True(t, FromMap("TEST", map[string]string{"TEST_BOOL": "off?"}).Bool("BOOL", true), "Unknown values should return the default")
	assert.False(t, FromMap("TEST", map[string]string{"TEST_BOOL": "off"}).Bool("BOOL", true))
}

func TestSource_Int(t *testing.T) {
	src := FromMap("TEST", map[string]string{
		"TEST_INT":     "42",
		"TEST_NOT_INT": "4.2",
	})
	assert.Equal(t, int64(42), src.Int("INT", 5))
	assert.Equal(t, int64(5), src.Int("NOT_INT", 5))
	assert.Equal(t, int64(5), src.Int("MISSING", 5))
}

func TestSource_Duration(t *testing.T) {
	src := FromMap("TEST", map[string]string{
		"TEST_DUR":     "1m30s",
		"TEST_NOT_DUR": "90",
	})
	assert.Equal(t, 90*time.Second, src.Duration("DUR", time.Second))
	assert.Equal(t, time.Second, src.Duration("NOT_DUR", time.Second))
}
