package wire

import (
	"fmt"
	"net/url"
	"strings"
)

// URI is a bus or endpoint address such as "loopback://localhost/mt_client".
type URI string

// String returns the URI text.
func (u URI) String() string {
	return string(u)
}

// Normalize returns the URI with scheme and host lower-cased and any fragment
// removed, so that two spellings of the same address compare equal. Text that does not parse as an
// absolute URI is returned trimmed but otherwise unchanged.
func (u URI) Normalize() URI {
	s := strings.TrimSpace(string(u))
	parsed, err := url.Parse(s)
	if err != nil || parsed.Scheme == "" {
		return URI(s)
	}
	parsed.Scheme = strings.ToLower(parsed.Scheme)
	parsed.Host = strings.ToLower(parsed.Host)
	parsed.Fragment = ""
	parsed.RawFragment = ""
	return URI(parsed.String())
}

// Validate reports whether the URI parses as an absolute URI.
func (u URI) Validate() error {
	parsed, err := url.Parse(string(u))
	if err != nil {
		return err
	}
	if !parsed.IsAbs() {
		return fmt.Errorf("uri %q is not absolute", string(u))
	}
	return nil
}

// AddressSet is an immutable set of bus addresses compared in normalized form.
type AddressSet struct {
	addrs map[URI]struct{}
}

// NewAddressSet builds a set from the given addresses. Empty addresses are
// skipped.
func NewAddressSet(addrs ...URI) AddressSet {
	set := AddressSet{addrs: make(map[URI]struct{}, len(addrs))}
	for _, a := range addrs {
		n := a.Normalize()
		if n == "" {
			continue
		}
		set.addrs[n] = struct{}{}
	}
	return set
}

// Contains reports whether addr is in the set.
func (s AddressSet) Contains(addr URI) bool {
	if len(s.addrs) == 0 {
		return false
	}
	_, ok := s.addrs[addr.Normalize()]
	return ok
}

// Len returns the number of distinct addresses.
func (s AddressSet) Len() int {
	return len(s.addrs)
}

// Slice returns the normalized addresses in no particular order.
func (s AddressSet) Slice() []URI {
	out := make([]URI, 0, len(s.addrs))
	for a := range s.addrs {
		out = append(out, a)
	}
	return out
}
