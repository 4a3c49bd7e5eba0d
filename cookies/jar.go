// Package cookies holds the credential store used by the session proxy: a
// structured cookie jar, the session cookie domain rule, Set-Cookie parsing
// and the policy for the cookies this service writes to browsers.
package cookies

import (
	"net/http"
	"strings"
)

// Jar is an ordered name/value cookie store. It is serialised into a single
// Cookie header only at the network boundary.
type Jar struct {
	names  []string
	values map[string]string
}

func NewJar() *Jar {
	return &Jar{values: make(map[string]string)}
}

// ParseJar reads a Cookie header value. Malformed pairs are skipped.
func ParseJar(header string) *Jar {
	jar := NewJar()
	if strings.TrimSpace(header) == "" {
		return jar
	}
	r := http.Request{Header: http.Header{"Cookie": {header}}}
	for _, c := range r.Cookies() {
		jar.Set(c.Name, c.Value)
	}
	return jar
}

// JarFromRequest copies every cookie the browser sent, across all Cookie
// headers.
func JarFromRequest(r *http.Request) *Jar {
	return ParseJar(strings.Join(r.Header.Values("Cookie"), "; "))
}

func (j *Jar) Get(name string) (string, bool) {
	v, ok := j.values[name]
	return v, ok
}

// Set stores value under name, replacing any previous value wholesale.
func (j *Jar) Set(name, value string) {
	if _, ok := j.values[name]; !ok {
		j.names = append(j.names, name)
	}
	j.values[name] = value
}

func (j *Jar) Delete(name string) {
	if _, ok := j.values[name]; !ok {
		return
	}
	delete(j.values, name)
	for i, n := range j.names {
		if n == name {
			j.names = append(j.names[:i], j.names[i+1:]...)
			break
		}
	}
}

func (j *Jar) Len() int {
	return len(j.names)
}

// String renders the jar as a Cookie header value, e.g. "a=1; b=2".
func (j *Jar) String() string {
	parts := make([]string, 0, len(j.names))
	for _, name := range j.names {
		parts = append(parts, (&http.Cookie{Name: name, Value: j.values[name]}).String())
	}
	return strings.Join(parts, "; ")
}

// Apply replaces the Cookie header of req with the jar contents. An empty jar
// removes the header.
func (j *Jar) Apply(req *http.Request) {
	if j.Len() == 0 {
		req.Header.Del("Cookie")
		return
	}
	req.Header.Set("Cookie", j.String())
}
