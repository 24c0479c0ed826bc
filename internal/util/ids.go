package util

import (
	gonanoid "github.com/matoous/go-nanoid/v2"
)

const idAlphabet = "0123456789abcdefghijklmnopqrstuvwxyz"

// NewCorrelationID returns a short url-safe identifier used to correlate
// queue messages belonging to one indexing run.
func NewCorrelationID() string {
	id, err := gonanoid.Generate(idAlphabet, 16)
	if err != nil {
		// gonanoid only errors on invalid alphabet/size arguments.
		panic(err)
	}
	return id
}
