// Package mnemonic implements BIP39 recovery-phrase encoding, decoding, and
// generation.
package mnemonic

import (
	"crypto/rand"
	"crypto/sha256"
	"math"
	"strings"

	"github.com/agnivade/levenshtein"
	bip39 "github.com/tyler-smith/go-bip39"
	"golang.org/x/text/unicode/norm"

	"github.com/duskvault/duskvault/pkg/vaulterr"
)

// Phrase is a sequence of BIP39 words.
type Phrase []string

// Entropy is the raw entropy underlying a Phrase.
type Entropy []byte

// validWordCounts are the only word counts Decode/Encode accept.
var validWordCounts = map[int]bool{12: true, 15: true, 18: true, 21: true, 24: true}

// validEntropyLens maps word count to required entropy length in bytes, per
// bits(entropy) = 32 * word_count / 3.
var validEntropyLens = map[int]int{12: 16, 15: 20, 18: 24, 21: 28, 24: 32}

var wordIndex = buildWordIndex()

func buildWordIndex() map[string]int {
	m := make(map[string]int, len(bip39.WordList))
	for i, w := range bip39.WordList {
		m[w] = i
	}
	return m
}

// Generate creates a new mnemonic of wordCount words (one of 12, 15, 18,
// 21, 24) using a CSPRNG entropy source.
func Generate(wordCount int) (Phrase, error) {
	entLen, ok := validEntropyLens[wordCount]
	if !ok {
		return nil, vaulterr.New(vaulterr.KindMnemonicInvalid, "unsupported word count %d", wordCount)
	}
	entropy := make([]byte, entLen)
	if _, err := rand.Read(entropy); err != nil {
		return nil, err
	}
	return Encode(entropy)
}

// Encode turns entropy (16, 20, 24, 28, or 32 bytes) into a BIP39 phrase:
// the checksum (the first len(entropy)*8/32 bits of SHA-256(entropy)) is
// appended to the entropy bits, and the result is split into 11-bit groups
// indexing the wordlist.
func Encode(entropy []byte) (Phrase, error) {
	entBits := len(entropy) * 8
	wordCount := 0
	for wc, el := range validEntropyLens {
		if el == len(entropy) {
			wordCount = wc
		}
	}
	if wordCount == 0 {
		return nil, vaulterr.New(vaulterr.KindMnemonicInvalid, "entropy must be 16, 20, 24, 28, or 32 bytes, got %d", len(entropy))
	}

	checksumBits := entBits / 32
	hash := sha256.Sum256(entropy)

	bits := newBitReader(entropy, hash[:], entBits, checksumBits)
	totalGroups := (entBits + checksumBits) / 11

	words := make(Phrase, totalGroups)
	for i := 0; i < totalGroups; i++ {
		idx := bits.next11()
		words[i] = bip39.WordList[idx]
	}

	return words, nil
}

// Decode validates and converts a phrase back to its entropy. It fails
// with vaulterr.KindMnemonicInvalid if the word count is not one of
// {12,15,18,21,24}, any word is unknown, or the checksum does not match.
func Decode(words []string) (Entropy, error) {
	wordCount := len(words)
	if !validWordCounts[wordCount] {
		return nil, vaulterr.New(vaulterr.KindMnemonicInvalid, "word count must be one of 12, 15, 18, 21, 24, got %d", wordCount)
	}

	totalBits := wordCount * 11
	entBits := totalBits * 32 / 33
	checksumBits := totalBits - entBits

	bitBuf := make([]bool, 0, totalBits)
	for _, w := range words {
		idx, ok := wordIndex[strings.ToLower(norm.NFKD.String(w))]
		if !ok {
			return nil, vaulterr.New(vaulterr.KindMnemonicInvalid, "unknown word %q", w)
		}
		for i := 10; i >= 0; i-- {
			bitBuf = append(bitBuf, (idx>>uint(i))&1 == 1)
		}
	}

	entropy := make([]byte, entBits/8)
	for i := 0; i < entBits; i++ {
		if bitBuf[i] {
			entropy[i/8] |= 1 << uint(7-i%8)
		}
	}

	hash := sha256.Sum256(entropy)
	for i := 0; i < checksumBits; i++ {
		want := (hash[i/8]>>uint(7-i%8))&1 == 1
		got := bitBuf[entBits+i]
		if want != got {
			return nil, vaulterr.New(vaulterr.KindMnemonicInvalid, "checksum mismatch")
		}
	}

	return entropy, nil
}

// Normalize returns the NFKD form of phrase joined by single ASCII spaces.
func (p Phrase) Normalize() string {
	return norm.NFKD.String(strings.Join(p, " "))
}

type bitReader struct {
	bits []bool
	pos  int
}

func newBitReader(entropy, checksum []byte, entBits, checksumBits int) *bitReader {
	bits := make([]bool, 0, entBits+checksumBits)
	for i := 0; i < entBits; i++ {
		bits = append(bits, (entropy[i/8]>>uint(7-i%8))&1 == 1)
	}
	for i := 0; i < checksumBits; i++ {
		bits = append(bits, (checksum[i/8]>>uint(7-i%8))&1 == 1)
	}
	return &bitReader{bits: bits}
}

func (b *bitReader) next11() int {
	n := 0
	for i := 0; i < 11; i++ {
		n <<= 1
		if b.bits[b.pos] {
			n |= 1
		}
		b.pos++
	}
	return n
}

// MaxTypoDistance is the maximum Levenshtein distance considered a usable
// suggestion when correcting a mistyped word.
const MaxTypoDistance = 2

// TypoInfo describes a detected typo and its suggested correction.
type TypoInfo struct {
	Index      int
	Word       string
	Suggestion string
	Distance   int
}

// SuggestWord finds the closest BIP39 word to input by Levenshtein
// distance, or "" if nothing is within MaxTypoDistance.
func SuggestWord(input string) string {
	input = strings.ToLower(input)
	minDist := math.MaxInt
	var suggestion string

	for _, word := range bip39.WordList {
		dist := levenshtein.ComputeDistance(input, word)
		if dist == 0 {
			return word
		}
		if dist < minDist {
			minDist = dist
			suggestion = word
		}
	}

	if minDist <= MaxTypoDistance {
		return suggestion
	}
	return ""
}

// DetectTypos scans phrase and reports words absent from the BIP39
// wordlist, each with its closest suggestion.
func DetectTypos(phrase string) []TypoInfo {
	words := strings.Fields(strings.ToLower(phrase))
	var typos []TypoInfo
	for i, w := range words {
		if _, ok := wordIndex[w]; ok {
			continue
		}
		suggestion := SuggestWord(w)
		dist := 0
		if suggestion != "" {
			dist = levenshtein.ComputeDistance(w, suggestion)
		}
		typos = append(typos, TypoInfo{Index: i, Word: w, Suggestion: suggestion, Distance: dist})
	}
	return typos
}
