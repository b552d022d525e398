package param

import "context"

// Fetcher resolves a secret by its parameter path.
type Fetcher interface {
	Fetch(context.Context, string) (string, error)
}
