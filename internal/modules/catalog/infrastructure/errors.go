package infrastructure

import "fmt"

// FetchError describes a failed catalog request. Status is zero when no
// response was received.
type FetchError struct {
	URL    string
	Status int
	Body   string
	Err    error
}

func (e *FetchError) Error() string {
	switch {
	case e.Status != 0 && e.Err == nil:
		return fmt.Sprintf("fetch %d %s :: %s", e.Status, e.URL, e.Body)
	case e.Status != 0:
		return fmt.Sprintf("fetch %d %s: %v", e.Status, e.URL, e.Err)
	default:
		return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
	}
}

func (e *FetchError) Unwrap() error {
	return e.Err
}
