// Command kvs is the CLI front end for the ignite store: set, get, and
// remove a key in the store rooted at the current directory.
package main

import (
	"context"
	"fmt"
	"os"

	stdErrors "errors"

	"github.com/ignitedb/ignitedb/pkg/errors"
	"github.com/ignitedb/ignitedb/pkg/ignite"
	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "kvs",
		Short:         "kvs is a small CLI front end for the ignite key/value store",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.Help()
			return stdErrors.New("no subcommand given")
		},
	}

	root.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		cmd.Help()
		return err
	})
	root.AddCommand(newSetCmd(), newGetCmd(), newRmCmd())
	return root
}

func newSetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set <KEY> <VALUE>",
		Short: "Set a key's value",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			db, err := openStore(ctx)
			if err != nil {
				return err
			}
			defer db.Close(ctx)
			return db.Set(ctx, args[0], []byte(args[1]))
		},
	}
}

func newGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <KEY>",
		Short: "Print a key's value",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			db, err := openStore(ctx)
			if err != nil {
				return err
			}
			defer db.Close(ctx)

			value, err := db.Get(ctx, args[0])
			if err != nil {
				if stdErrors.Is(err, errors.ErrKeyNotFound) {
					fmt.Println("Key not found")
					return nil
				}
				return err
			}
			fmt.Println(string(value))
			return nil
		},
	}
}

func newRmCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rm <KEY>",
		Short: "Remove a key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			db, err := openStore(ctx)
			if err != nil {
				return err
			}
			defer db.Close(ctx)

			if err := db.Delete(ctx, args[0]); err != nil {
				if stdErrors.Is(err, errors.ErrKeyNotFound) {
					fmt.Println("Key not found")
				}
				return err
			}
			return nil
		},
	}
}

func openStore(ctx context.Context) (*ignite.Instance, error) {
	return ignite.NewInstance(ctx, "kvs")
}
