package catalog

import (
	"math/big"
	"strings"
)

// Signature classifies the shape of a numeric wrong answer relative to
// the correct one.
type Signature string

const (
	SignatureNone            Signature = ""
	SignatureSignDropped     Signature = "sign-dropped"
	SignatureReciprocal      Signature = "reciprocal"
	SignaturePlaceValueShift Signature = "place-value-shift"
	SignatureDigitReversal   Signature = "digit-reversal"
	SignatureOffByOne        Signature = "off-by-one"
)

// signatureMisconceptions maps answer signatures to the misconception they
// most often indicate. Signatures with no entry (off-by-one) are treated
// as slips rather than misconceptions.
var signatureMisconceptions = map[Signature]string{
	SignatureSignDropped:     "negative-number-operations",
	SignatureReciprocal:      "fraction-operations",
	SignaturePlaceValueShift: "place-value",
	SignatureDigitReversal:   "place-value",
}

// MisconceptionFor returns the misconception ID for a signature, or "".
func MisconceptionFor(sig Signature) string {
	return signatureMisconceptions[sig]
}

// DetectSignature compares a wrong numeric answer with the correct one and
// returns the first matching signature. Non-numeric answers return
// SignatureNone.
func DetectSignature(studentAnswer, correctAnswer string) Signature {
	given, ok := parseRat(studentAnswer)
	if !ok {
		return SignatureNone
	}
	want, ok := parseRat(correctAnswer)
	if !ok || given.Cmp(want) == 0 {
		return SignatureNone
	}

	if want.Sign() != 0 && new(big.Rat).Neg(want).Cmp(given) == 0 {
		return SignatureSignDropped
	}

	if want.Sign() != 0 && given.Sign() != 0 && !want.IsInt() {
		if new(big.Rat).Inv(want).Cmp(given) == 0 {
			return SignatureReciprocal
		}
	}

	if want.Sign() != 0 && given.Sign() != 0 {
		ratio := new(big.Rat).Quo(given, want)
		for _, f := range []int64{10, 100, 1000} {
			if ratio.Cmp(big.NewRat(f, 1)) == 0 || ratio.Cmp(big.NewRat(1, f)) == 0 {
				return SignaturePlaceValueShift
			}
		}
	}

	if want.IsInt() && given.IsInt() {
		w := strings.TrimPrefix(want.RatString(), "-")
		g := strings.TrimPrefix(given.RatString(), "-")
		if len(w) >= 2 && w != reverse(w) && g == reverse(w) {
			return SignatureDigitReversal
		}
	}

	diff := new(big.Rat).Sub(given, want)
	if diff.Abs(diff).Cmp(big.NewRat(1, 1)) == 0 {
		return SignatureOffByOne
	}

	return SignatureNone
}

// parseRat parses integers, decimals and fractions ("3/4", "-1.5").
func parseRat(s string) (*big.Rat, bool) {
	s = strings.TrimSpace(strings.ReplaceAll(s, ",", ""))
	s = strings.ReplaceAll(s, " ", "")
	if s == "" {
		return nil, false
	}
	r, ok := new(big.Rat).SetString(s)
	return r, ok
}

func reverse(s string) string {
	b := []byte(s)
	for i, j := 0, len(b)-1; i < j; i, j = i+1, j-1 {
		b[i], b[j] = b[j], b[i]
	}
	return string(b)
}
