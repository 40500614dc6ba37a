package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

type codeSystemOutput struct {
	Name     string   `json:"name"`
	Prefix   string   `json:"prefix"`
	URL      string   `json:"url,omitempty"`
	Version  string   `json:"version"`
	Synonyms []string `json:"synonyms,omitempty"`
	Concepts bool     `json:"concepts"`
}

func codeSystemsCmd(cfg *config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "codesystems",
		Short: "List the code systems codings may refer to",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := cfg.registry()
			if err != nil {
				return err
			}
			var out []codeSystemOutput
			for _, cs := range reg.Systems() {
				out = append(out, codeSystemOutput{
					Name:     cs.Name,
					Prefix:   cs.NamespacePrefix,
					URL:      cs.URL,
					Version:  cs.Version,
					Synonyms: cs.Synonyms,
					Concepts: reg.HasConcepts(cs),
				})
			}

			if strings.EqualFold(cfg.v.GetString("format"), formatJSON) {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(out)
			}
			tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "PREFIX\tNAME\tVERSION\tCONCEPTS\tURL")
			for _, cs := range out {
				concepts := "-"
				if cs.Concepts {
					concepts = "loaded"
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", cs.Prefix, cs.Name, cs.Version, concepts, cs.URL)
			}
			return tw.Flush()
		},
	}
	cmd.Flags().String("format", "text", "output format: text, json")
	return cmd
}
