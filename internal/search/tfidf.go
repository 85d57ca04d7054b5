package search

import (
	"errors"
	"math"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/kljensen/snowball"
)

// ErrEmptyCorpus is returned when a vector space is fitted on zero documents.
var ErrEmptyCorpus = errors.New("empty corpus: nothing to index")

// minTokenLength drops single-character tokens.
const minTokenLength = 2

// Options tunes vocabulary construction. The zero value keeps every term.
type Options struct {
	// Stem reduces tokens to their Snowball English stem.
	Stem bool `json:"stem"`
	// MinDocFreq drops terms that appear in fewer documents. Values below 1 mean 1.
	MinDocFreq int `json:"min_doc_freq"`
	// MaxVocabulary keeps only the highest-IDF terms when positive.
	MaxVocabulary int `json:"max_vocabulary"`
}

// Tokenizer turns text into index terms.
type Tokenizer struct {
	stem bool
}

// NewTokenizer creates a tokenizer, optionally stemming.
func NewTokenizer(stem bool) *Tokenizer {
	return &Tokenizer{stem: stem}
}

// Tokenize lowercases text, splits it on every rune that is not a letter or
// digit, and removes stop words and tokens shorter than two runes.
func (t *Tokenizer) Tokenize(text string) []string {
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})

	tokens := make([]string, 0, len(fields))
	for _, f := range fields {
		if utf8.RuneCountInString(f) < minTokenLength || IsStopword(f) {
			continue
		}
		if t.stem {
			f = stem(f)
		}
		tokens = append(tokens, f)
	}
	return tokens
}

// stem falls back to the original word if the stemmer rejects it.
func stem(word string) string {
	stemmed, err := snowball.Stem(word, "english", true)
	if err != nil || stemmed == "" {
		return word
	}
	return stemmed
}

// VectorSpace is a fitted TF-IDF model plus the vector of every training
// document. It is immutable once built.
type VectorSpace struct {
	Vocabulary map[string]int `json:"vocabulary"` // term → dimension
	IDF        []float64      `json:"idf"`        // per dimension
	DocCount   int            `json:"doc_count"`
	Stem       bool           `json:"stem"`
	Vectors    []Vector       `json:"-"` // one per document, L2-normalized

	tokenizer *Tokenizer
}

// Fit builds a vector space over documents.
//
// Weights are tf × idf with tf the raw term count and
// idf(t) = ln((1+N)/(1+df(t))) + 1. Every document vector is L2-normalized so
// cosine similarity is a dot product. Dimensions are assigned in ascending
// lexical order of terms.
func Fit(documents []string, opts Options) (*VectorSpace, error) {
	if len(documents) == 0 {
		return nil, ErrEmptyCorpus
	}

	tokenizer := NewTokenizer(opts.Stem)
	tokenized := make([][]string, len(documents))
	df := make(map[string]int)
	for i, doc := range documents {
		tokens := tokenizer.Tokenize(doc)
		tokenized[i] = tokens
		seen := make(map[string]bool, len(tokens))
		for _, tok := range tokens {
			if !seen[tok] {
				seen[tok] = true
				df[tok]++
			}
		}
	}

	minDF := opts.MinDocFreq
	if minDF < 1 {
		minDF = 1
	}

	type termIDF struct {
		term string
		idf  float64
	}
	n := float64(len(documents))
	terms := make([]termIDF, 0, len(df))
	for term, f := range df {
		if f < minDF {
			continue
		}
		terms = append(terms, termIDF{term, smoothIDF(n, float64(f))})
	}

	if opts.MaxVocabulary > 0 && len(terms) > opts.MaxVocabulary {
		// Rare-but-kept terms are the most discriminative.
		sort.Slice(terms, func(i, j int) bool {
			if terms[i].idf != terms[j].idf {
				return terms[i].idf > terms[j].idf
			}
			return terms[i].term < terms[j].term
		})
		terms = terms[:opts.MaxVocabulary]
	}

	sort.Slice(terms, func(i, j int) bool { return terms[i].term < terms[j].term })

	space := &VectorSpace{
		Vocabulary: make(map[string]int, len(terms)),
		IDF:        make([]float64, len(terms)),
		DocCount:   len(documents),
		Stem:       opts.Stem,
		Vectors:    make([]Vector, len(documents)),
		tokenizer:  tokenizer,
	}
	for idx, td := range terms {
		space.Vocabulary[td.term] = idx
		space.IDF[idx] = td.idf
	}

	for i, tokens := range tokenized {
		space.Vectors[i] = space.weigh(tokens)
	}

	return space, nil
}

// Restore rebuilds a vector space from persisted parts.
func Restore(vocabulary map[string]int, idf []float64, docCount int, stem bool, vectors []Vector) (*VectorSpace, error) {
	if docCount == 0 || len(vectors) == 0 {
		return nil, ErrEmptyCorpus
	}
	if len(vocabulary) != len(idf) {
		return nil, errors.New("vocabulary and idf length mismatch")
	}
	if len(vectors) != docCount {
		return nil, errors.New("vector count does not match document count")
	}
	for _, v := range vectors {
		for _, term := range v {
			if term.Index < 0 || term.Index >= len(idf) {
				return nil, errors.New("vector dimension out of range")
			}
		}
	}
	return &VectorSpace{
		Vocabulary: vocabulary,
		IDF:        idf,
		DocCount:   docCount,
		Stem:       stem,
		Vectors:    vectors,
		tokenizer:  NewTokenizer(stem),
	}, nil
}

func smoothIDF(n, df float64) float64 {
	return math.Log((1+n)/(1+df)) + 1.0
}

// Dim returns the number of vocabulary dimensions.
func (s *VectorSpace) Dim() int {
	return len(s.IDF)
}

// Terms returns the vocabulary ordered by dimension.
func (s *VectorSpace) Terms() []string {
	terms := make([]string, len(s.IDF))
	for term, idx := range s.Vocabulary {
		terms[idx] = term
	}
	return terms
}

// Transform vectorizes arbitrary text against the fitted vocabulary.
// Out-of-vocabulary terms are ignored.
func (s *VectorSpace) Transform(text string) Vector {
	tokenizer := s.tokenizer
	if tokenizer == nil {
		tokenizer = NewTokenizer(s.Stem)
	}
	return s.weigh(tokenizer.Tokenize(text))
}

// weigh computes the normalized TF-IDF vector for a token list.
func (s *VectorSpace) weigh(tokens []string) Vector {
	counts := make(map[int]float64)
	for _, tok := range tokens {
		if idx, ok := s.Vocabulary[tok]; ok {
			counts[idx]++
		}
	}
	if len(counts) == 0 {
		return nil
	}

	vec := make(Vector, 0, len(counts))
	for idx, tf := range counts {
		vec = append(vec, Term{Index: idx, Weight: tf * s.IDF[idx]})
	}
	sort.Slice(vec, func(i, j int) bool { return vec[i].Index < vec[j].Index })

	return vec.Normalize()
}

// Term is one non-zero dimension of a sparse vector.
type Term struct {
	Index  int     `json:"index"`
	Weight float64 `json:"weight"`
}

// Vector is a sparse vector with terms sorted by ascending index.
// A nil Vector is the zero vector.
type Vector []Term

// Norm returns the L2 norm.
func (v Vector) Norm() float64 {
	var sum float64
	for _, t := range v {
		sum += t.Weight * t.Weight
	}
	return math.Sqrt(sum)
}

// Normalize returns v scaled to unit length. The zero vector stays zero.
func (v Vector) Normalize() Vector {
	norm := v.Norm()
	if norm == 0 {
		return nil
	}
	out := make(Vector, len(v))
	for i, t := range v {
		out[i] = Term{Index: t.Index, Weight: t.Weight / norm}
	}
	return out
}

// Dot returns the dot product of two sorted sparse vectors.
func (v Vector) Dot(o Vector) float64 {
	var dot float64
	i, j := 0, 0
	for i < len(v) && j < len(o) {
		switch {
		case v[i].Index == o[j].Index:
			dot += v[i].Weight * o[j].Weight
			i++
			j++
		case v[i].Index < o[j].Index:
			i++
		default:
			j++
		}
	}
	return dot
}

// CosineSimilarity computes the cosine similarity between two sparse vectors.
// Returns 0 if either vector is zero.
func CosineSimilarity(a, b Vector) float64 {
	denom := a.Norm() * b.Norm()
	if denom == 0 {
		return 0
	}
	return a.Dot(b) / denom
}
