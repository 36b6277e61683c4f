package nlp

import (
	"bufio"
	_ "embed"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/jdkato/prose/v2"
)

//go:embed lexicon.tsv
var defaultLexicon string

// negators flip the next sentiment word and damp it by half.
var negators = map[string]struct{}{
	"not": {}, "no": {}, "never": {}, "nor": {}, "neither": {},
	"dont": {}, "doesnt": {}, "didnt": {}, "isnt": {}, "wasnt": {}, "werent": {},
	"arent": {}, "cant": {}, "cannot": {}, "couldnt": {}, "wont": {}, "wouldnt": {},
	"shouldnt": {}, "hardly": {}, "barely": {},
}

// intensifiers scale the next sentiment word.
var intensifiers = map[string]float64{
	"very": 1.3, "really": 1.3, "extremely": 1.5, "so": 1.2, "too": 1.2,
	"super": 1.3, "absolutely": 1.4, "highly": 1.4, "incredibly": 1.5,
	"totally": 1.3, "quite": 1.1, "pretty": 1.1, "slightly": 0.5, "somewhat": 0.7,
}

const (
	negationFactor = -0.5
	// modifiers expire after this many unrelated tokens
	modifierWindow = 2
)

// Lexicon is a word-level polarity estimator. The zero value is not usable;
// build one with NewLexicon or LoadLexicon.
type Lexicon struct {
	words map[string]float64
}

// NewLexicon returns the estimator backed by the embedded word list.
func NewLexicon() *Lexicon {
	l, err := LoadLexicon(defaultLexicon)
	if err != nil {
		panic(fmt.Sprintf("embedded lexicon: %v", err))
	}
	return l
}

// LoadLexicon parses "word<TAB>polarity" lines. Blank lines and lines
// starting with '#' are skipped. Polarity must lie in [-1, 1].
func LoadLexicon(src string) (*Lexicon, error) {
	words := make(map[string]float64, 128)
	sc := bufio.NewScanner(strings.NewReader(src))
	line := 0
	for sc.Scan() {
		line++
		txt := strings.TrimSpace(sc.Text())
		if txt == "" || strings.HasPrefix(txt, "#") {
			continue
		}
		fields := strings.Fields(txt)
		if len(fields) != 2 {
			return nil, fmt.Errorf("lexicon line %d: want 2 fields, got %d", line, len(fields))
		}
		p, err := strconv.ParseFloat(fields[1], 64)
		if err != nil {
			return nil, fmt.Errorf("lexicon line %d: %w", line, err)
		}
		if p < -1 || p > 1 || math.IsNaN(p) {
			return nil, fmt.Errorf("lexicon line %d: polarity %v out of range", line, p)
		}
		words[strings.ToLower(fields[0])] = p
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return &Lexicon{words: words}, nil
}

// Polarity returns the mean polarity of the sentiment words in text, with
// negation and intensity applied, clamped to [-1, 1]. Text with no sentiment
// words scores 0.
func (l *Lexicon) Polarity(text string) float64 {
	tokens := tokenize(text)
	if len(tokens) == 0 {
		return 0
	}

	var (
		sum, n  float64
		negate  bool
		scale   = 1.0
		pending int // tokens since the last modifier
	)
	reset := func() { negate, scale, pending = false, 1.0, 0 }

	for _, tok := range tokens {
		if _, ok := negators[tok]; ok {
			negate = !negate
			pending = 0
			continue
		}
		if f, ok := intensifiers[tok]; ok {
			scale *= f
			pending = 0
			continue
		}
		p, ok := l.words[tok]
		if !ok {
			if negate || scale != 1 {
				pending++
				if pending > modifierWindow {
					reset()
				}
			}
			continue
		}
		v := clamp(p * scale)
		if negate {
			v *= negationFactor
		}
		sum += v
		n++
		reset()
	}

	if n == 0 {
		return 0
	}
	return clamp(sum / n)
}

func clamp(v float64) float64 {
	switch {
	case math.IsNaN(v):
		return 0
	case v > 1:
		return 1
	case v < -1:
		return -1
	}
	return v
}

// tokenize splits text into lowercase word tokens with prose's tokenizer.
// Tagging, segmentation and entity extraction are off; only the token
// stream is needed.
func tokenize(text string) []string {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	doc, err := prose.NewDocument(text,
		prose.WithTagging(false),
		prose.WithSegmentation(false),
		prose.WithExtraction(false),
	)
	if err != nil {
		return strings.Fields(strings.ToLower(text))
	}
	toks := doc.Tokens()
	out := make([]string, 0, len(toks))
	for _, t := range toks {
		if w := strings.ToLower(strings.TrimSpace(t.Text)); w != "" {
			out = append(out, w)
		}
	}
	return out
}
