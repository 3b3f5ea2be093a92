// Package represent turns stored catalog records into their API shapes.
//
// Every entity has a summary shape (lists) and a detail shape (single item).
// Absolute links are built by a Linker that callers derive from the inbound
// request and pass in explicitly.
package represent

import (
	"net/http"
	"strconv"
	"strings"
)

// Linker builds absolute detail URLs of the form <base>/<resource>/<id>/.
type Linker struct {
	base string
}

// NewLinker returns a Linker rooted at base (scheme://host[/prefix]).
// A trailing slash on base is ignored.
func NewLinker(base string) Linker {
	return Linker{base: strings.TrimRight(base, "/")}
}

// LinkerFromRequest derives the base URL from r. A non-empty override (the
// configured public base URL) wins. Otherwise the scheme is https when the
// connection is TLS or a proxy reports X-Forwarded-Proto: https, and the
// host is r.Host.
func LinkerFromRequest(r *http.Request, override string) Linker {
	if override != "" {
		return NewLinker(override)
	}
	scheme := "http"
	if r.TLS != nil || strings.EqualFold(r.Header.Get("X-Forwarded-Proto"), "https") {
		scheme = "https"
	}
	return NewLinker(scheme + "://" + r.Host)
}

// Base returns the root URL, without a trailing slash.
func (l Linker) Base() string {
	return l.base
}

// List returns the collection URL of a resource.
func (l Linker) List(resource string) string {
	return l.base + "/" + resource + "/"
}

// Detail returns the URL of one item of a resource.
func (l Linker) Detail(resource string, id int64) string {
	return l.base + "/" + resource + "/" + strconv.FormatInt(id, 10) + "/"
}
