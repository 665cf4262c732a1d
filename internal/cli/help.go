package cli

import (
	"fmt"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/charmbracelet/lipgloss"
)

var (
	helpSectionStyle = lipgloss.NewStyle().Bold(true).Foreground(warnColor)
	helpNameStyle    = lipgloss.NewStyle().Bold(true).Foreground(primaryColor)
)

// StyledHelpPrinter returns a kong help printer for a single-command tool:
// a usage line, the positional arguments and one aligned option list.
func StyledHelpPrinter(title, description string) kong.HelpPrinter {
	return func(_ kong.HelpOptions, ctx *kong.Context) error {
		node := ctx.Model.Node
		w := ctx.Stdout

		fmt.Fprintln(w, TitleStyle.Render(title))
		fmt.Fprintln(w, KeyStyle.Render(description))
		fmt.Fprintln(w)

		usage := []string{ctx.Model.Name, "[flags]"}
		for _, arg := range node.Positional {
			usage = append(usage, arg.Summary())
		}
		fmt.Fprintf(w, "%s %s\n", helpSectionStyle.Render("Usage:"), strings.Join(usage, " "))

		rows := make([][2]string, 0, len(node.Positional)+len(node.Flags))
		for _, arg := range node.Positional {
			rows = append(rows, [2]string{arg.Summary(), arg.Help})
		}
		for _, f := range node.Flags {
			if !f.Hidden {
				rows = append(rows, [2]string{flagSyntax(f), flagHelp(f)})
			}
		}

		width := 0
		for _, r := range rows {
			width = max(width, len(r[0]))
		}

		fmt.Fprintln(w)
		for _, r := range rows {
			pad := strings.Repeat(" ", width-len(r[0]))
			fmt.Fprintf(w, "  %s%s  %s\n", helpNameStyle.Render(r[0]), pad, r[1])
		}
		fmt.Fprintln(w)

		return nil
	}
}

func flagSyntax(f *kong.Flag) string {
	s := "--" + f.Name
	if f.Short != 0 {
		s = fmt.Sprintf("-%c, %s", f.Short, s)
	}
	if f.IsBool() {
		return s
	}

	ph := f.PlaceHolder
	if ph == "" {
		ph = f.Name
	}
	return s + "=" + strings.ToUpper(ph)
}

func flagHelp(f *kong.Flag) string {
	if !f.HasDefault || f.Default == "" {
		return f.Help
	}
	return f.Help + " " + KeyStyle.Render("(default: "+f.Default+")")
}
