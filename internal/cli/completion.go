package cli

import (
	"fmt"
	"io"
	"slices"
	"strings"
)

// Shells lists the shells GenerateCompletion supports.
var Shells = []string{"bash", "zsh", "fish", "powershell"}

type completionFlag struct {
	name string
	help string
	// values completes the flag argument; "FILE" completes paths.
	values []string
}

func completionFlags(libraries, algorithms, seriesNames, schemes []string) []completionFlag {
	return []completionFlag{
		{"library", "Arithmetic flavour", libraries},
		{"algo", "Algorithm id or all", slices.Concat(algorithms, []string{"all"})},
		{"precision", "Number of decimals", []string{"1000", "10000", "50000"}},
		{"threads", "Worker threads", []string{"1", "2", "4", "8", "16"}},
		{"csv", "Print a CSV line", nil},
		{"series", "Series of a custom run", seriesNames},
		{"scheme", "Partition scheme of a custom run", schemes},
		{"ratios", "Cheater ratio table", []string{"FILE"}},
		{"reference", "Reference digits file", []string{"FILE"}},
		{"timeout", "Maximum execution time", []string{"1m", "5m", "30m", "1h"}},
		{"json", "JSON output", nil},
		{"q", "Quiet mode", nil},
		{"v", "Print the computed digits", nil},
		{"d", "Show details", nil},
		{"o", "Write the digits to a file", []string{"FILE"}},
		{"server", "Start the HTTP server", nil},
		{"port", "Server port", []string{"8080", "9000"}},
		{"no-color", "Disable colours", nil},
		{"calibrate", "Rebuild the ratio table", nil},
		{"calibrate-threads", "Largest calibrated thread count", []string{"16", "64", "160"}},
		{"log-level", "Log level", []string{"debug", "info", "warn", "error", "disabled"}},
		{"config", "YAML or TOML configuration file", []string{"FILE"}},
		{"completion", "Print a completion script", Shells},
		{"version", "Show version information", nil},
	}
}

// GenerateCompletion writes the completion script of shell for picalc.
//
// Parameters:
//   - out: The destination of the script.
//   - shell: One of bash, zsh, fish or powershell.
//   - libraries: The library names offered for -library.
//   - algorithms: The values offered for -algo.
//   - seriesNames: The values offered for -series.
//   - schemes: The values offered for -scheme.
//
// Returns:
//   - error: An error if shell is not supported.
func GenerateCompletion(out io.Writer, shell string, libraries, algorithms, seriesNames, schemes []string) error {
	flags := completionFlags(libraries, algorithms, seriesNames, schemes)
	switch shell {
	case "bash":
		return writeBash(out, flags)
	case "zsh":
		return writeZsh(out, flags)
	case "fish":
		return writeFish(out, flags)
	case "powershell", "ps":
		return writePowerShell(out, flags)
	default:
		return fmt.Errorf("unsupported shell: %s (accepted values: %s)", shell, strings.Join(Shells, ", "))
	}
}

func isFile(f completionFlag) bool {
	return len(f.values) == 1 && f.values[0] == "FILE"
}

func writeBash(out io.Writer, flags []completionFlag) error {
	var b strings.Builder
	b.WriteString("# Bash completion for picalc\n_picalc() {\n")
	b.WriteString("    local cur=\"${COMP_WORDS[COMP_CWORD]}\" prev=\"${COMP_WORDS[COMP_CWORD-1]}\"\n")
	b.WriteString("    case \"${prev}\" in\n")
	var opts []string
	for _, f := range flags {
		opts = append(opts, "-"+f.name)
		switch {
		case isFile(f):
			fmt.Fprintf(&b, "        -%s) COMPREPLY=( $(compgen -f -- \"${cur}\") ); return 0 ;;\n", f.name)
		case len(f.values) > 0:
			fmt.Fprintf(&b, "        -%s) COMPREPLY=( $(compgen -W %q -- \"${cur}\") ); return 0 ;;\n",
				f.name, strings.Join(f.values, " "))
		}
	}
	b.WriteString("    esac\n")
	fmt.Fprintf(&b, "    COMPREPLY=( $(compgen -W %q -- \"${cur}\") )\n}\n", strings.Join(opts, " "))
	b.WriteString("complete -F _picalc picalc\n")
	_, err := io.WriteString(out, b.String())
	return err
}

func writeZsh(out io.Writer, flags []completionFlag) error {
	var b strings.Builder
	b.WriteString("#compdef picalc\n\n_picalc() {\n    _arguments -s \\\n")
	for _, f := range flags {
		spec := fmt.Sprintf("'-%s[%s]", f.name, f.help)
		switch {
		case isFile(f):
			spec += ":file:_files"
		case len(f.values) > 0:
			spec += fmt.Sprintf(":%s:(%s)", f.name, strings.Join(f.values, " "))
		}
		fmt.Fprintf(&b, "        %s' \\\n", spec)
	}
	b.WriteString("        '*::positional:'\n}\n\n_picalc \"$@\"\n")
	_, err := io.WriteString(out, b.String())
	return err
}

func writeFish(out io.Writer, flags []completionFlag) error {
	var b strings.Builder
	b.WriteString("# Fish completion for picalc\ncomplete -c picalc -f\n")
	for _, f := range flags {
		fmt.Fprintf(&b, "complete -c picalc -o %s -d '%s'", f.name, f.help)
		switch {
		case isFile(f):
			b.WriteString(" -rF")
		case len(f.values) > 0:
			fmt.Fprintf(&b, " -xa '%s'", strings.Join(f.values, " "))
		}
		b.WriteString("\n")
	}
	_, err := io.WriteString(out, b.String())
	return err
}

func writePowerShell(out io.Writer, flags []completionFlag) error {
	var b strings.Builder
	b.WriteString("# PowerShell completion for picalc\n")
	b.WriteString("Register-ArgumentCompleter -CommandName 'picalc' -Native -ScriptBlock {\n")
	b.WriteString("    param($wordToComplete, $commandAst, $cursorPosition)\n")
	b.WriteString("    $elements = $commandAst.CommandElements\n")
	b.WriteString("    $prev = if ($elements.Count -gt 1) { $elements[-1].ToString() } else { '' }\n")
	b.WriteString("    $values = switch ($prev) {\n")
	var names []string
	for _, f := range flags {
		names = append(names, fmt.Sprintf("'-%s'", f.name))
		if len(f.values) > 0 && !isFile(f) {
			quoted := make([]string, len(f.values))
			for i, v := range f.values {
				quoted[i] = "'" + v + "'"
			}
			fmt.Fprintf(&b, "        '-%s' { @(%s) }\n", f.name, strings.Join(quoted, ", "))
		}
	}
	fmt.Fprintf(&b, "        default { @(%s) }\n    }\n", strings.Join(names, ", "))
	b.WriteString("    $values | Where-Object { $_ -like \"$wordToComplete*\" } | ForEach-Object {\n")
	b.WriteString("        [System.Management.Automation.CompletionResult]::new($_, $_, 'ParameterValue', $_)\n")
	b.WriteString("    }\n}\n")
	_, err := io.WriteString(out, b.String())
	return err
}
