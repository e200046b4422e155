package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"icon_studio/catalog"
)

func newLibraryCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "library [query]",
		Short: "Search the library of pre-generated icons",
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, err := catalog.Load()
			if err != nil {
				return err
			}
			icons := cat.Search(strings.Join(args, " "))
			return a.print(icons, func(w io.Writer) {
				tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
				fmt.Fprintln(tw, "ID\tSTYLE\tPROMPT")
				for _, icon := range icons {
					fmt.Fprintf(tw, "%s\t%s\t%s\n", icon.ID, icon.Style, icon.Prompt)
				}
				_ = tw.Flush()
			})
		},
	}
}

func newStylesCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "styles",
		Short: "List icon styles and preset colors",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, err := catalog.Load()
			if err != nil {
				return err
			}
			v := struct {
				Styles []catalog.Style `json:"styles"`
				Colors []string        `json:"colors"`
			}{cat.Styles, cat.Colors}
			return a.print(v, func(w io.Writer) {
				tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
				fmt.Fprintln(tw, "STYLE\tLABEL\tDESCRIPTION")
				for _, st := range cat.Styles {
					fmt.Fprintf(tw, "%s\t%s\t%s\n", st.ID, st.Label, strings.TrimSpace(st.Description))
				}
				_ = tw.Flush()
				fmt.Fprintf(w, "\ncolors: %s\n", strings.Join(cat.Colors, " "))
			})
		},
	}
}
