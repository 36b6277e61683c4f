// Package nlp holds the two text transformations applied to every review:
// Clean, which normalises a review body, and Lexicon, which scores the
// cleaned text for polarity.
package nlp
