package transport

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestHTTP_Get_DecodesJSON(t *testing.T) {
	var gotPath, gotQuery string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			t.Errorf("Expected GET request, got %s", r.Method)
		}
		gotPath = r.URL.Path
		gotQuery = r.URL.RawQuery
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"result":1}`))
	}))
	defer server.Close()

	var q Query
	q.Add("pw", "hash")
	q.AddInt("pid", 0)

	var out struct {
		Result int `json:"result"`
	}
	err := NewHTTP().Get(context.Background(), server.URL+"/mp", q, &out)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}

	if gotPath != "/mp" {
		t.Errorf("path = %q, want /mp", gotPath)
	}
	if gotQuery != "pw=hash&pid=0" {
		t.Errorf("query = %q, want pw=hash&pid=0", gotQuery)
	}
	if out.Result != 1 {
		t.Errorf("result = %d, want 1", out.Result)
	}
}

func TestHTTP_Get_NoQuery(t *testing.T) {
	var gotURI string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotURI = r.URL.RequestURI()
		_, _ = w.Write([]byte(`{}`))
	}))
	defer server.Close()

	if err := NewHTTP().Get(context.Background(), server.URL+"/db", nil, nil); err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if gotURI != "/db" {
		t.Errorf("request URI = %q, want /db", gotURI)
	}
}

func TestHTTP_Get_StatusError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	err := NewHTTP().Get(context.Background(), server.URL+"/pq", nil, nil)
	if err == nil {
		t.Fatal("Expected error for 404")
	}

	var tErr *Error
	if !errors.As(err, &tErr) {
		t.Fatalf("Expected *Error, got %T", err)
	}
	if tErr.Type != ErrTypeHTTP || tErr.StatusCode != 404 {
		t.Errorf("got %v/%d, want HTTP Error/404", tErr.Type, tErr.StatusCode)
	}
	if tErr.Path != "/pq" {
		t.Errorf("Path = %q, want /pq", tErr.Path)
	}
}

func TestHTTP_Get_ParseError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html>not json</html>`))
	}))
	defer server.Close()

	var out map[string]any
	err := NewHTTP().Get(context.Background(), server.URL+"/jo", nil, &out)
	if !IsParseError(err) {
		t.Fatalf("Expected parse error, got %v", err)
	}
}

func TestHTTP_Get_RawMessage(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"json object", `{"date":"Mon Jan 1"}`, `{"date":"Mon Jan 1"}`},
		{"json with whitespace", "  [1,2]\n", `[1,2]`},
		{"plain text", "free heap: 21000\n", `"free heap: 21000\n"`},
		{"empty", "", `""`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			var raw json.RawMessage
			if err := NewHTTP().Get(context.Background(), server.URL+"/db", nil, &raw); err != nil {
				t.Fatalf("Get() error = %v", err)
			}
			if string(raw) != tt.want {
				t.Errorf("raw = %s, want %s", raw, tt.want)
			}
		})
	}
}

func TestHTTP_Get_Timeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		_, _ = w.Write([]byte(`{}`))
	}))
	defer server.Close()

	tr := NewHTTP()
	tr.SetTimeout(20 * time.Millisecond)

	err := tr.Get(context.Background(), server.URL+"/jc", nil, nil)
	if !IsTimeout(err) {
		t.Fatalf("Expected timeout error, got %v", err)
	}
}

func TestHTTP_Get_ConnectionRefused(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	addr := server.URL
	server.Close()

	err := NewHTTP().Get(context.Background(), addr+"/jc", nil, nil)
	if !IsNetworkError(err) {
		t.Fatalf("Expected network error, got %v", err)
	}
}

func TestHTTP_Get_UserAgent(t *testing.T) {
	var ua string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ua = r.Header.Get("User-Agent")
	}))
	defer server.Close()

	tr := NewHTTP()
	tr.UserAgent = "opensprinkler-cfg/test"
	if err := tr.Get(context.Background(), server.URL+"/jc", nil, nil); err != nil {
		t.Fatal(err)
	}
	if ua != "opensprinkler-cfg/test" {
		t.Errorf("User-Agent = %q", ua)
	}
}

func TestRequestPath(t *testing.T) {
	tests := map[string]string{
		"http://192.168.1.20/jc":        "/jc",
		"http://192.168.1.20:8080/a/jo": "/jo",
	}
	for in, want := range tests {
		if got := requestPath(in); got != want {
			t.Errorf("requestPath(%q) = %q, want %q", in, got, want)
		}
	}
}
