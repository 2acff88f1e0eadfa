package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var categoriesCmd = &cobra.Command{
	Use:   "categories",
	Short: "Manage job categories",
}

var categoriesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List categories by label",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()
		a, err := openApp(ctx)
		if err != nil {
			return err
		}
		defer a.Close()

		cats, err := a.Catalog.ListCategories(ctx)
		if err != nil {
			return err
		}
		for _, c := range cats {
			fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", c.ID, c.Label)
		}
		return nil
	},
}

var categoriesAddCmd = &cobra.Command{
	Use:   "add LABEL",
	Short: "Add a category unless it already exists",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := openApp(ctx)
		if err != nil {
			return err
		}
		defer a.Close()

		cat, err := a.Catalog.AddCategory(ctx, args[0])
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", cat.ID, cat.Label)
		return nil
	},
}

func init() {
	categoriesCmd.AddCommand(categoriesListCmd, categoriesAddCmd)
	rootCmd.AddCommand(categoriesCmd)
}
