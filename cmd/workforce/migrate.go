package main

import (
	"github.com/go-pkgz/lgr"
	"github.com/spf13/cobra"
)

func newMigrateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or upgrade storage tables",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			st, err := openStores(ctx, a.cfg)
			if err != nil {
				return err
			}
			defer st.close()

			if err := st.ensureTables(ctx); err != nil {
				return err
			}
			lgr.Printf("[INFO] %s storage is up to date", a.cfg.Storage.Driver)
			return nil
		},
	}
}
