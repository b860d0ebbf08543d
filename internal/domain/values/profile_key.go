package values

import (
	"fmt"
	"path"
	"strings"
)

// PathSeparator separates the segments of a ProfileKey and of a profile request.
const PathSeparator = "/"

// ProfileKey identifies one loaded profile document by its slash-delimited
// path relative to the profile root, extension stripped and rooted at "/".
type ProfileKey struct {
	value string
}

// NewProfileKey normalizes a relative or rooted profile path into a ProfileKey.
// Backslashes are treated as separators and a trailing .yaml/.yml is removed.
func NewProfileKey(p string) (ProfileKey, error) {
	p = strings.TrimSpace(strings.ReplaceAll(p, "\\", PathSeparator))
	p = stripProfileExt(p)
	p = path.Clean(PathSeparator + p)
	if p == PathSeparator {
		return ProfileKey{}, fmt.Errorf("profile key cannot be empty")
	}
	return ProfileKey{value: p}, nil
}

// MustNewProfileKey creates a ProfileKey or panics (for tests/constants)
func MustNewProfileKey(p string) ProfileKey {
	k, err := NewProfileKey(p)
	if err != nil {
		panic(err)
	}
	return k
}

// String returns the rooted key, e.g. "/cis/centos-7".
func (k ProfileKey) String() string {
	return k.value
}

// IsEmpty returns true if this is the zero value
func (k ProfileKey) IsEmpty() bool {
	return k.value == ""
}

// Segments returns the path segments of the key without the leading root.
func (k ProfileKey) Segments() []string {
	if k.value == "" {
		return nil
	}
	return strings.Split(strings.TrimPrefix(k.value, PathSeparator), PathSeparator)
}

// ShortName returns the final path segment.
func (k ProfileKey) ShortName() string {
	segs := k.Segments()
	if len(segs) == 0 {
		return ""
	}
	return segs[len(segs)-1]
}

// HasPrefix reports whether the key's segments start with the request's
// segments. Segments compare by equality, so "/a/b" matches "/a/b/c" but not
// "/a/bx/c". The bare separator matches every key.
func (k ProfileKey) HasPrefix(request string) bool {
	if request == PathSeparator {
		return true
	}
	want := strings.Split(strings.Trim(request, PathSeparator), PathSeparator)
	have := k.Segments()
	if len(want) > len(have) {
		return false
	}
	for i, seg := range want {
		if have[i] != seg {
			return false
		}
	}
	return true
}

// Equals checks if two ProfileKeys are equal
func (k ProfileKey) Equals(other ProfileKey) bool {
	return k.value == other.value
}

// Less orders keys lexically.
func (k ProfileKey) Less(other ProfileKey) bool {
	return k.value < other.value
}

// MarshalText implements encoding.TextMarshaler
func (k ProfileKey) MarshalText() ([]byte, error) {
	return []byte(k.value), nil
}

// NormalizeRequest converts a dotted profile request such as "cis.centos-7"
// or "cis.centos-7.yaml" into a rooted path request ("/cis/centos-7").
// An empty request becomes the bare separator, which selects every profile.
func NormalizeRequest(request string) string {
	request = strings.TrimSpace(request)
	if i := strings.Index(request, ".yaml"); i >= 0 {
		request = request[:i]
	}
	var segs []string
	for _, seg := range strings.Split(request, ".") {
		seg = strings.Trim(seg, PathSeparator)
		if seg != "" {
			segs = append(segs, seg)
		}
	}
	return PathSeparator + strings.Join(segs, PathSeparator)
}

func stripProfileExt(p string) string {
	for _, ext := range []string{".yaml", ".yml"} {
		if strings.HasSuffix(p, ext) {
			return strings.TrimSuffix(p, ext)
		}
	}
	return p
}
