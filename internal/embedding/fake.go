/*
Copyright (c) 2026 testudo-ai
SPDX-License-Identifier: MIT
*/

package embedding

import (
	"context"
	"hash/fnv"
	"math"
	"strings"
	"unicode"
)

// Fake is a deterministic, offline Provider for tests and degraded runs.
// Each lowercase token is hashed into one dimension of a bag-of-words
// vector, so texts sharing words land closer together under cosine
// distance. It is not a semantic model and never errors.
type Fake struct {
	Dim int
	Err error // returned from Embed when set
}

var _ Provider = (*Fake)(nil)

// NewFake returns a Fake with the standard dimensionality.
func NewFake() *Fake { return &Fake{Dim: 512} }

// Embed implements Provider.
func (f *Fake) Embed(_ context.Context, text string) ([]float32, error) {
	if f.Err != nil {
		return nil, f.Err
	}
	vec := make([]float32, f.Dim)
	for _, tok := range tokenize(text) {
		h := fnv.New32a()
		_, _ = h.Write([]byte(tok))
		vec[int(h.Sum32())%f.Dim]++
	}
	var norm float64
	for _, v := range vec {
		norm += float64(v) * float64(v)
	}
	if norm == 0 {
		vec[0] = 1
		return vec, nil
	}
	scale := float32(1 / math.Sqrt(norm))
	for i := range vec {
		vec[i] *= scale
	}
	return vec, nil
}

// Dimensions implements Provider.
func (f *Fake) Dimensions() int { return f.Dim }

func tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}
