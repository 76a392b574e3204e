package main

import (
	"context"
	"errors"

	"github.com/spf13/cobra"
	"google.golang.org/api/option"

	"github.com/hazyhaar/docfetch/filesearch"
)

type backends struct {
	uploader bool
	answerer bool
}

// fileSearch opens the manifest and the cloud backends the command needs.
// The returned function releases all of them.
func (a *app) fileSearch(ctx context.Context, need backends) (*filesearch.Service, func(), error) {
	fs := a.cfg.FileSearch
	var closers []func() error
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	repo, err := filesearch.OpenRepository(fs.Manifest)
	if err != nil {
		return nil, nil, err
	}
	closers = append(closers, repo.Close)

	var opts []option.ClientOption
	if fs.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(fs.CredentialsFile))
	}

	cfg := filesearch.Config{Repository: repo, Logger: a.logger}
	if need.uploader {
		up, err := filesearch.NewGCSUploader(ctx, fs.Bucket, opts...)
		if err != nil {
			cleanup()
			return nil, nil, err
		}
		closers = append(closers, up.Close)
		cfg.Uploader = up
	}
	if need.answerer {
		ans, err := filesearch.NewVertexAnswerer(ctx, fs.Project, fs.Location, fs.Model, opts...)
		if err != nil {
			cleanup()
			return nil, nil, err
		}
		closers = append(closers, ans.Close)
		cfg.Answerer = ans
	}

	svc, err := filesearch.New(cfg)
	if err != nil {
		cleanup()
		return nil, nil, err
	}
	return svc, cleanup, nil
}

func (a *app) storeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "store",
		Short: "Manage file-search stores of downloaded documents.",
	}

	// run opens the service, calls fn and prints its result.
	run := func(need backends, fn func(context.Context, *filesearch.Service) (any, error)) func(*cobra.Command, []string) error {
		return func(cmd *cobra.Command, _ []string) error {
			svc, cleanup, err := a.fileSearch(cmd.Context(), need)
			if err != nil {
				return err
			}
			defer cleanup()
			v, err := fn(cmd.Context(), svc)
			if err != nil {
				return err
			}
			return a.printJSON(v)
		}
	}

	create := &cobra.Command{
		Use:   "create <name>",
		Short: "Create a store (no-op if it exists).",
		Args:  cobra.ExactArgs(1),
	}
	create.RunE = func(cmd *cobra.Command, args []string) error {
		return run(backends{}, func(ctx context.Context, s *filesearch.Service) (any, error) {
			return s.CreateStore(ctx, args[0])
		})(cmd, args)
	}

	var storeName, displayName string
	upload := &cobra.Command{
		Use:   "upload <file>",
		Short: "Upload a PDF or HTML file into --store.",
		Args:  cobra.ExactArgs(1),
	}
	upload.Flags().StringVar(&storeName, "store", "", "store name")
	upload.Flags().StringVar(&displayName, "display-name", "", "name shown for the file (default: base name)")
	upload.RunE = func(cmd *cobra.Command, args []string) error {
		if storeName == "" {
			return errors.New("--store is required")
		}
		return run(backends{uploader: true}, func(ctx context.Context, s *filesearch.Service) (any, error) {
			return s.UploadFile(ctx, args[0], storeName, displayName)
		})(cmd, args)
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List stores with file count and total size.",
		Args:  cobra.NoArgs,
		RunE: run(backends{}, func(ctx context.Context, s *filesearch.Service) (any, error) {
			return s.ListStores(ctx)
		}),
	}

	files := &cobra.Command{
		Use:   "files <name>",
		Short: "List the files of a store.",
		Args:  cobra.ExactArgs(1),
	}
	files.RunE = func(cmd *cobra.Command, args []string) error {
		return run(backends{}, func(ctx context.Context, s *filesearch.Service) (any, error) {
			return s.ListFiles(ctx, args[0])
		})(cmd, args)
	}

	var searchStore string
	search := &cobra.Command{
		Use:   "search <query>",
		Short: "Answer a question over every file of --store.",
		Args:  cobra.ExactArgs(1),
	}
	search.Flags().StringVar(&searchStore, "store", "", "store name")
	search.RunE = func(cmd *cobra.Command, args []string) error {
		if searchStore == "" {
			return errors.New("--store is required")
		}
		return run(backends{answerer: true}, func(ctx context.Context, s *filesearch.Service) (any, error) {
			return s.Search(ctx, args[0], searchStore)
		})(cmd, args)
	}

	del := &cobra.Command{
		Use:   "delete <name>",
		Short: "Delete a store from the manifest.",
		Args:  cobra.ExactArgs(1),
	}
	del.RunE = func(cmd *cobra.Command, args []string) error {
		return run(backends{}, func(ctx context.Context, s *filesearch.Service) (any, error) {
			if err := s.DeleteStore(ctx, args[0]); err != nil {
				return nil, err
			}
			return map[string]any{"deleted": args[0]}, nil
		})(cmd, args)
	}

	cmd.AddCommand(create, upload, list, files, search, del)
	return cmd
}
