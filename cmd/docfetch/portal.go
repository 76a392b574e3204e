package main

import (
	"github.com/spf13/cobra"
)

func (a *app) searchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "search <query>",
		Short: "Search the portal and print matching document references.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			acq, err := a.acquirer()
			if err != nil {
				return err
			}
			refs, err := acq.Search(cmd.Context(), args[0], a.cfg.Portal.Limit)
			if err != nil {
				return err
			}
			return a.printJSON(refs)
		},
	}
}

func (a *app) recentCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "recent",
		Short: "Print the newest documents on the portal home page.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			acq, err := a.acquirer()
			if err != nil {
				return err
			}
			refs, err := acq.Recent(cmd.Context(), a.cfg.Portal.Limit)
			if err != nil {
				return err
			}
			return a.printJSON(refs)
		},
	}
}

func (a *app) documentCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "document <id_doc>",
		Short: "Print a document's title, metadata and PDF link.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			acq, err := a.acquirer()
			if err != nil {
				return err
			}
			d, err := acq.Document(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return a.printJSON(d)
		},
	}
}

func (a *app) downloadCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "download <id_doc>",
		Short: "Save a document as PDF, or as HTML when no PDF can be produced.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			acq, err := a.acquirer()
			if err != nil {
				return err
			}
			res, err := acq.Download(cmd.Context(), args[0], a.opts.output)
			if err != nil {
				return err
			}
			return a.printJSON(res)
		},
	}
}
