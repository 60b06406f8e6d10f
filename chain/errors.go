package chain

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrNotFound matches LCD 404 responses.
var ErrNotFound = errors.New("not found on chain")

// HTTPError represents a non-2xx LCD response.
type HTTPError struct {
	StatusCode int
	Status     string
	URL        string
	Method     string
	Body       string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("%s %s failed with status %d %s: %s", e.Method, e.URL, e.StatusCode, e.Status, e.Body)
}

// Is lets errors.Is match ErrNotFound for 404 responses.
func (e *HTTPError) Is(target error) bool {
	return target == ErrNotFound && e.StatusCode == http.StatusNotFound
}

// ContractError is a query failure reported by the contract itself, with the
// encrypted message already decrypted when possible.
type ContractError struct {
	Contract string
	Message  string
}

func (e *ContractError) Error() string {
	return fmt.Sprintf("contract %s query failed: %s", e.Contract, e.Message)
}
