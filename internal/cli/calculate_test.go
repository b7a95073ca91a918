package cli

import (
	"bytes"
	"strings"
	"testing"

	"github.com/agbru/picalc/internal/config"
	"github.com/agbru/picalc/internal/partition"
	"github.com/agbru/picalc/internal/pi"
	"github.com/agbru/picalc/internal/series"
)

func TestGetCalculatorsToRun(t *testing.T) {
	t.Parallel()
	factory := pi.NewDefaultFactory()
	base := config.AppConfig{Library: "MPFR", Algo: "3"}

	calcs, err := GetCalculatorsToRun(base, factory)
	if err != nil || len(calcs) != 1 || calcs[0].Name() != "MPFR-BEL-BSP-CYC" {
		t.Fatalf("single selection = %v, %v", calcs, err)
	}

	all := base
	all.Algo = config.AlgoAll
	if calcs, _ = GetCalculatorsToRun(all, factory); len(calcs) != 5 {
		t.Errorf("comparison selects %d calculators, want 5", len(calcs))
	}

	custom := base
	custom.Series, custom.Scheme = "bbp", "snake"
	calcs, err = GetCalculatorsToRun(custom, factory)
	if err != nil {
		t.Fatal(err)
	}
	want := pi.Custom(pi.MPFR, series.BBP, partition.Snake)
	if calcs[0].Algorithm() != want {
		t.Errorf("custom algorithm = %v, want %v", calcs[0].Algorithm(), want)
	}

	bad := base
	bad.Algo = "12"
	if _, err := GetCalculatorsToRun(bad, factory); err == nil {
		t.Error("unknown id should fail")
	}
}

func TestGenerateCompletion(t *testing.T) {
	t.Parallel()
	algs := []string{"0", "1", "2"}
	for _, shell := range append(Shells, "ps") {
		var buf bytes.Buffer
		if err := GenerateCompletion(&buf, shell, []string{"GMP", "MPFR"}, algs, series.Kinds(), partition.Names()); err != nil {
			t.Fatalf("%s: %v", shell, err)
		}
		out := buf.String()
		for _, want := range []string{"picalc", "precision", "chudnovsky", "snake", "MPFR"} {
			if !strings.Contains(out, want) {
				t.Errorf("%s script misses %q", shell, want)
			}
		}
	}
	if err := GenerateCompletion(&bytes.Buffer{}, "tcsh", nil, nil, nil, nil); err == nil {
		t.Error("unsupported shell should fail")
	}
	if len(algs) != 3 {
		t.Error("the algorithm list of the caller must not grow")
	}
}
