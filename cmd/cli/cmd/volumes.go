// Package cmd - volumes commands
package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"service-discounts/internal/domain"
	"service-discounts/pkg/engine"
)

var groupID int64

// volumesCmd groups the accumulated-volume commands
var volumesCmd = &cobra.Command{
	Use:   "volumes",
	Short: "Manage accumulated volumes",
	Run: func(cmd *cobra.Command, args []string) {
		_ = cmd.Help()
	},
}

var volumesRecordCmd = &cobra.Command{
	Use:   "record",
	Short: "Add the group totals of an order to the company's volumes",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		snap, err := engine.LoadSnapshot(snapshotFile)
		if err != nil {
			return err
		}
		svc, closeFn, err := newService(ctx)
		if err != nil {
			return err
		}
		defer closeFn()

		entries, err := svc.RecordVolume(ctx, snap, engine.Request{OrderID: orderID, CompanyID: companyID})
		if err != nil {
			return fmt.Errorf("recording volumes failed: %w", err)
		}
		for _, e := range entries {
			fmt.Fprintf(cmd.OutOrStdout(), "company %d group %d: +%s\n",
				e.CompanyID, e.GroupID, e.Volume.StringFixed(domain.MoneyPlaces))
		}
		return nil
	},
}

var volumesGetCmd = &cobra.Command{
	Use:   "get",
	Short: "Print the accumulated volume of a company",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		svc, closeFn, err := newService(ctx)
		if err != nil {
			return err
		}
		defer closeFn()

		v, err := svc.ReadVolume(ctx, companyID, domain.GroupID(groupID))
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), v.StringFixed(domain.MoneyPlaces))
		return nil
	},
}

var volumesImportCmd = &cobra.Command{
	Use:   "import [file.csv]",
	Short: "Add volumes from a CSV file (company_id,portal_id,volume[,nomenclature_group_id])",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		f, err := os.Open(args[0])
		if err != nil {
			return fmt.Errorf("open %s: %w", args[0], err)
		}
		defer f.Close()

		svc, closeFn, err := newService(ctx)
		if err != nil {
			return err
		}
		defer closeFn()

		n, err := svc.ImportVolumes(ctx, f)
		if err != nil {
			return fmt.Errorf("import failed, nothing stored: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "imported %d rows\n", n)
		return nil
	},
}

func init() {
	addOrderFlags(volumesRecordCmd)

	volumesGetCmd.Flags().Int64Var(&companyID, "company", 0, "company id")
	volumesGetCmd.Flags().Int64Var(&groupID, "group", 0, "nomenclature group id")
	_ = volumesGetCmd.MarkFlagRequired("company")

	volumesCmd.AddCommand(volumesRecordCmd)
	volumesCmd.AddCommand(volumesGetCmd)
	volumesCmd.AddCommand(volumesImportCmd)
}
