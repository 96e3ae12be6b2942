package main

import (
	"fmt"
	"io"
	"sort"

	"github.com/deppfellow/vistual/internal/lib/email"
	"github.com/spf13/cobra"
)

func newEmailCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "email",
		Short: "Work with transactional email templates",
	}

	cmd.AddCommand(&cobra.Command{
		Use:     "preview <template>",
		Short:   "Render a template with sample data to stdout",
		Example: "  vistual email preview welcome > welcome.html",
		Args:    cobra.ExactArgs(1),
		ValidArgsFunction: func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
			return previewNames(), cobra.ShellCompDirectiveNoFileComp
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return previewEmail(cmd.OutOrStdout(), email.Template(args[0]))
		},
	})

	return cmd
}

func previewEmail(w io.Writer, name email.Template) error {
	data, ok := email.PreviewData[name]
	if !ok {
		return fmt.Errorf("unknown template %q, available: %v", name, previewNames())
	}

	html, err := email.RenderTemplate(name, data)
	if err != nil {
		return err
	}

	_, err = io.WriteString(w, html)
	return err
}

func previewNames() []string {
	names := make([]string, 0, len(email.PreviewData))
	for name := range email.PreviewData {
		names = append(names, string(name))
	}
	sort.Strings(names)
	return names
}
