package main

import (
	"math/big"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/talgya/cellview/internal/cert"
	"github.com/talgya/cellview/internal/harness"
)

func TestCertificationSummary(t *testing.T) {
	out := &harness.Outcome{
		Certification: []cert.Result{
			{Rank: 1, Value: big.NewInt(101), Gcd: big.NewInt(101), IsFactor: true},
			{Rank: 2, Value: big.NewInt(97), Gcd: big.NewInt(1)},
			{Rank: 3, Value: big.NewInt(89), Gcd: big.NewInt(1)},
		},
	}

	got := certificationSummary(out, 2)

	// The shown count leads; the full corridor size follows.
	assert.True(t, strings.HasPrefix(got, "Top-2 certified (of 3):\n"), "got %q", got)
	assert.Contains(t, got, "101")
	assert.Contains(t, got, "FACTOR")
	assert.NotContains(t, got, "89")
}

func TestCertificationSummaryCapsAndEmpty(t *testing.T) {
	assert.Empty(t, certificationSummary(&harness.Outcome{}, 5))

	out := &harness.Outcome{
		Certification: []cert.Result{
			{Rank: 1, Value: big.NewInt(7), Gcd: big.NewInt(7), IsFactor: true},
		},
	}
	got := certificationSummary(out, 10)
	assert.True(t, strings.HasPrefix(got, "Top-1 certified (of 1):\n"), "got %q", got)
}
