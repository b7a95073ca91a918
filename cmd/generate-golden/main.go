package main

import (
	"flag"
	"fmt"
	"math/big"
	"os"
	"path/filepath"

	"modernc.org/mathutil"
)

// guardDigits are computed beyond the requested count and dropped, so the
// truncation error of the last term never reaches a written digit.
const guardDigits = 10

func main() {
	outputDir := flag.String("out", "resources", "Output directory for the reference file")
	digits := flag.Int("digits", 50_000, "Number of decimals to write")
	flag.Parse()

	if *digits <= 0 {
		fmt.Fprintf(os.Stderr, "Error: -digits must be positive, got %d\n", *digits)
		os.Exit(1)
	}
	if err := os.MkdirAll(*outputDir, 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "Error creating output directory: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Generating %d decimals of π...\n", *digits)
	pi := chudnovskyPi(*digits + guardDigits).String()
	// pi is the integer part of π·10^(digits+guard).
	value := pi[:1] + "." + pi[1:1+*digits]

	filename := filepath.Join(*outputDir, "pi_reference.txt")
	if err := os.WriteFile(filename, []byte(value+"\n"), 0o644); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing reference file: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Successfully generated reference file at %s\n", filename)
}

// chudnovskyPi returns ⌊π·10^n⌋ (up to the last few digits) by binary
// splitting of the Chudnovsky series in integer arithmetic. It is kept
// independent of the internal packages so the reference it produces can
// check them.
func chudnovskyPi(n int) *big.Int {
	one := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(n)), nil)
	c3over24 := new(big.Int).Exp(big.NewInt(640320), big.NewInt(3), nil)
	c3over24.Quo(c3over24, big.NewInt(24))

	terms := int64(n)/14 + 1
	_, q, t := binarySplit(0, terms, c3over24)

	// sqrt(10005·one²) = sqrt(10005)·one at full precision.
	root := new(big.Int).Mul(big.NewInt(10005), one)
	root.Mul(root, one)
	root = mathutil.SqrtBig(root)

	pi := root.Mul(root, big.NewInt(426880))
	pi.Mul(pi, q)
	return pi.Quo(pi, t)
}

// binarySplit returns P(a,b), Q(a,b) and T(a,b) of the Chudnovsky terms
// a (inclusive) to b (exclusive).
func binarySplit(a, b int64, c3over24 *big.Int) (p, q, t *big.Int) {
	if b-a == 1 {
		p, q = big.NewInt(1), big.NewInt(1)
		if a != 0 {
			p.SetInt64(6*a - 5)
			p.Mul(p, big.NewInt(2*a-1))
			p.Mul(p, big.NewInt(6*a-1))
			q.SetInt64(a)
			q.Mul(q, q).Mul(q, big.NewInt(a))
			q.Mul(q, c3over24)
		}
		t = big.NewInt(545140134)
		t.Mul(t, big.NewInt(a))
		t.Add(t, big.NewInt(13591409))
		t.Mul(t, p)
		if a%2 == 1 {
			t.Neg(t)
		}
		return p, q, t
	}

	m := (a + b) / 2
	pam, qam, tam := binarySplit(a, m, c3over24)
	pmb, qmb, tmb := binarySplit(m, b, c3over24)

	p = new(big.Int).Mul(pam, pmb)
	q = new(big.Int).Mul(qam, qmb)
	// T(a,b) = Q(m,b)·T(a,m) + P(a,m)·T(m,b)
	t = new(big.Int).Mul(qmb, tam)
	t.Add(t, pam.Mul(pam, tmb))
	return p, q, t
}
