package values

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_NewProfileKey(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"cis/centos-7.yaml", "/cis/centos-7"},
		{"/cis/centos-7.yml", "/cis/centos-7"},
		{"cis\\windows\\2016.yaml", "/cis/windows/2016"},
		{"  top.yaml ", "/top"},
		{"a//b/../c", "/a/c"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			k, err := NewProfileKey(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, k.String())
		})
	}

	_, err := NewProfileKey("")
	assert.Error(t, err)
	_, err = NewProfileKey("/")
	assert.Error(t, err)
}

func Test_ProfileKey_ShortName(t *testing.T) {
	assert.Equal(t, "centos-7", MustNewProfileKey("cis/centos-7.yaml").ShortName())
	assert.Equal(t, "top", MustNewProfileKey("top").ShortName())
	assert.Equal(t, "", ProfileKey{}.ShortName())
}

func Test_ProfileKey_HasPrefix(t *testing.T) {
	key := MustNewProfileKey("/a/b/c")

	tests := []struct {
		request  string
		expected bool
	}{
		{"/", true},
		{"/a", true},
		{"/a/b", true},
		{"/a/b/c", true},
		{"/a/b/c/d", false},
		{"/a/bx", false},
		{"/b", false},
	}

	for _, tt := range tests {
		t.Run(tt.request, func(t *testing.T) {
			assert.Equal(t, tt.expected, key.HasPrefix(tt.request))
		})
	}
}

func Test_ProfileKey_SegmentWiseNotSubstring(t *testing.T) {
	req := NormalizeRequest("a.b")
	assert.True(t, MustNewProfileKey("/a/b/c").HasPrefix(req))
	assert.False(t, MustNewProfileKey("/a/bx/c").HasPrefix(req))
}

func Test_NormalizeRequest(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"foo", "/foo"},
		{"foo.bar", "/foo/bar"},
		{"foo.bar.yaml", "/foo/bar"},
		{"cis.centos-7-level-1-scored-v2-1-0", "/cis/centos-7-level-1-scored-v2-1-0"},
		{"", "/"},
		{"/", "/"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, NormalizeRequest(tt.input))
		})
	}
}
