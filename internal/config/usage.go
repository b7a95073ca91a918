package config

import (
	"flag"
	"fmt"
	"os"

	"github.com/agbru/picalc/internal/ui"
)

// setCustomUsage installs a colored usage function on fs.
func setCustomUsage(fs *flag.FlagSet) {
	fs.Usage = func() {
		t := ui.GetCurrentTheme()
		if _, ok := os.LookupEnv("NO_COLOR"); ok {
			t = ui.NoColorTheme
		}

		out := fs.Output()
		fmt.Fprintf(out, "\n%sπ Calculator%s\n", t.Bold, t.Reset)
		fmt.Fprintf(out, "Parallel computation of π with the BBP, Bellard and Chudnovsky series.\n\n")
		fmt.Fprintf(out, "%sUsage:%s\n  %s [flags]\n  %s LIBRARY ALGORITHM PRECISION THREADS [-csv]\n\n%sFlags:%s\n",
			t.Warning, t.Reset, fs.Name(), fs.Name(), t.Warning, t.Reset)

		fs.VisitAll(func(f *flag.Flag) {
			name, usage := flag.UnquoteUsage(f)
			sig := "-" + f.Name
			if name != "" {
				sig += " " + name
			}
			fmt.Fprintf(out, "  %s%-25s%s %s", t.Primary, sig, t.Reset, usage)
			if f.DefValue != "" && f.DefValue != "0" && f.DefValue != "false" {
				fmt.Fprintf(out, " %s(default %s)%s", t.Secondary, f.DefValue, t.Reset)
			}
			fmt.Fprintln(out)
		})
		fmt.Fprintf(out, "\n%sEnvironment:%s every flag can be set with %s<NAME>, e.g. %sPRECISION=5000.\n\n",
			t.Warning, t.Reset, EnvPrefix, EnvPrefix)
	}
}
