package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var languagesCmd = &cobra.Command{
	Use:   "languages",
	Short: "List the supported languages and their file extensions",
	Args:  cobra.NoArgs,
	RunE:  runLanguages,
}

type languageInfo struct {
	Name       string   `json:"name"`
	Extensions []string `json:"extensions"`
}

func runLanguages(cmd *cobra.Command, args []string) error {
	_, _, registry, err := workspace("")
	if err != nil {
		return err
	}

	var infos []languageInfo
	for _, name := range registry.Names() {
		p, _ := registry.Get(name)
		infos = append(infos, languageInfo{Name: name, Extensions: p.Language().Extensions()})
	}

	out := cmd.OutOrStdout()
	if jsonOut {
		return writeJSON(out, infos)
	}
	s := newStyles(colorEnabled(out))
	for _, info := range infos {
		fmt.Fprintf(out, "%s %s\n", s.heading.Sprintf("%-12s", info.Name), strings.Join(info.Extensions, " "))
	}
	return nil
}
