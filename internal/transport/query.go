package transport

import (
	"net/url"
	"strconv"
	"strings"
)

// Param is a single query-string key/value pair.
type Param struct {
	Key   string
	Value string
}

// Query is an ordered list of query parameters.
//
// The controller firmware parses parameters positionally in a few handlers,
// so unlike url.Values the encoding preserves insertion order.
type Query []Param

// Add appends a string parameter.
func (q *Query) Add(key, value string) {
	*q = append(*q, Param{Key: key, Value: value})
}

// AddInt appends an integer parameter.
func (q *Query) AddInt(key string, value int) {
	q.Add(key, strconv.Itoa(value))
}

// AddInt64 appends a 64-bit integer parameter.
func (q *Query) AddInt64(key string, value int64) {
	q.Add(key, strconv.FormatInt(value, 10))
}

// AddFlag appends key=1 when on is true and nothing otherwise.
func (q *Query) AddFlag(key string, on bool) {
	if on {
		q.Add(key, "1")
	}
}

// AddBit appends key=1 or key=0.
func (q *Query) AddBit(key string, on bool) {
	if on {
		q.Add(key, "1")
	} else {
		q.Add(key, "0")
	}
}

// Get returns the first value stored under key.
func (q Query) Get(key string) (string, bool) {
	for _, p := range q {
		if p.Key == key {
			return p.Value, true
		}
	}
	return "", false
}

// Has reports whether key is present.
func (q Query) Has(key string) bool {
	_, ok := q.Get(key)
	return ok
}

// Keys returns the parameter keys in order.
func (q Query) Keys() []string {
	keys := make([]string, len(q))
	for i, p := range q {
		keys[i] = p.Key
	}
	return keys
}

// Encode renders the query in insertion order ("a=1&b=2").
func (q Query) Encode() string {
	var b strings.Builder
	for i, p := range q {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(url.QueryEscape(p.Key))
		b.WriteByte('=')
		b.WriteString(url.QueryEscape(p.Value))
	}
	return b.String()
}

// Values converts the query to url.Values. Ordering is lost.
func (q Query) Values() url.Values {
	v := url.Values{}
	for _, p := range q {
		v.Add(p.Key, p.Value)
	}
	return v
}

// Redacted returns a copy of the query with the password parameters masked,
// suitable for logging.
func (q Query) Redacted() Query {
	out := make(Query, len(q))
	for i, p := range q {
		switch p.Key {
		case "pw", "npw", "cpw":
			p.Value = "********"
		}
		out[i] = p
	}
	return out
}
