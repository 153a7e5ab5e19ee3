package main

import (
	"encoding/json"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/guileen/gridsource/datasource"
	"github.com/guileen/gridsource/engine/config"
	"github.com/guileen/gridsource/protocol/api"
	"github.com/guileen/gridsource/storage"
)

func newQueryCmd() *cobra.Command {
	var configPath, dataset, requestPath string

	cmd := &cobra.Command{
		Use:   "query",
		Short: "Run one block request against a dataset and print the response",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			ds, err := cfg.Dataset(dataset)
			if err != nil {
				return err
			}

			body, err := readRequest(cmd, requestPath)
			if err != nil {
				return err
			}
			wire, err := api.DecodeBlockRequest(body)
			if err != nil {
				return err
			}

			store, err := storage.Open(cmd.Context(), ds)
			if err != nil {
				return err
			}
			registry, err := datasource.NewRegistry(cfg.Engine, nil)
			if err != nil {
				return err
			}
			defer registry.Close()
			src, err := registry.Register(ds.Name, store)
			if err != nil {
				return err
			}

			overlay := ""
			notifier := datasource.NotifierFuncs{
				OnShowNoData:  func() { overlay = api.OverlayNoRows },
				OnClearNoData: func() { overlay = api.OverlayNone },
			}
			resp := datasource.NewAdapter(src, notifier).RequestBlock(cmd.Context(), wire.ToBlockRequest())

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			if err := enc.Encode(api.NewBlockResponseBody(resp, overlay)); err != nil {
				return err
			}
			return resp.Err
		},
	}
	cmd.Flags().StringVarP(&configPath, "config", "c", os.Getenv("GRIDSOURCE_CONFIG"), "path to the YAML configuration file")
	cmd.Flags().StringVarP(&dataset, "dataset", "d", "", "dataset to query")
	cmd.Flags().StringVarP(&requestPath, "request", "r", "-", "file holding the block request JSON, or - for stdin")
	cmd.MarkFlagRequired("dataset")
	return cmd
}

func readRequest(cmd *cobra.Command, path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(cmd.InOrStdin())
	}
	return os.ReadFile(path)
}
