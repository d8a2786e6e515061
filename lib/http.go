package lib

import "net/http"

// HttpClient is the part of http.Client the remote clients in this repo
// depend on. Tests substitute a mock implementation.
type HttpClient interface {
	Do(req *http.Request) (*http.Response, error)
}
