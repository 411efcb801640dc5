// Package cmd - calculate command
package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"service-discounts/internal/domain"
	"service-discounts/internal/infrastructure/snapshot"
	"service-discounts/pkg/engine"
)

var (
	snapshotFile string
	patchFile    string
	orderID      int64
	companyID    int64
	outputFormat string
)

// calculateCmd represents the calculate command
var calculateCmd = &cobra.Command{
	Use:   "calculate",
	Short: "Calculate the discounts of an order",
	Long: `Run every enabled discount program over an order taken from a CRM snapshot
and print the priced lines.

Examples:
  discounts calculate --snapshot crm.yaml --order 100 --company 7
  discounts calculate --snapshot crm.json --patch change.json --order 100 --company 7 --format json`,
	RunE: runCalculate,
}

func init() {
	addOrderFlags(calculateCmd)
	calculateCmd.Flags().StringVarP(&patchFile, "patch", "p", "", "RFC 6902 patch applied to the snapshot first")
	calculateCmd.Flags().StringVarP(&outputFormat, "format", "f", "text", "output format (text, json)")
}

func addOrderFlags(c *cobra.Command) {
	c.Flags().StringVarP(&snapshotFile, "snapshot", "s", "", "CRM snapshot file (json or yaml)")
	c.Flags().Int64Var(&orderID, "order", 0, "order id")
	c.Flags().Int64Var(&companyID, "company", 0, "company id")
	_ = c.MarkFlagRequired("snapshot")
	_ = c.MarkFlagRequired("order")
	_ = c.MarkFlagRequired("company")
}

func runCalculate(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	snap, err := loadSnapshot(snapshotFile, patchFile)
	if err != nil {
		return err
	}
	svc, closeFn, err := newService(ctx)
	if err != nil {
		return err
	}
	defer closeFn()

	res, err := svc.Calculate(ctx, snap, engine.Request{OrderID: orderID, CompanyID: companyID})
	if err != nil {
		return fmt.Errorf("calculation failed: %w", err)
	}

	out := cmd.OutOrStdout()
	if outputFormat == "json" {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	}
	printResult(out, res)
	return nil
}

// loadSnapshot reads the snapshot file, applying the patch file when one is given.
func loadSnapshot(path, patchPath string) (*engine.Snapshot, error) {
	if patchPath == "" {
		return engine.LoadSnapshot(path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read snapshot %s: %w", path, err)
	}
	if snapshot.FormatOf(path) == snapshot.FormatYAML {
		if data, err = snapshot.ToJSON(data); err != nil {
			return nil, err
		}
	}
	ops, err := os.ReadFile(patchPath)
	if err != nil {
		return nil, fmt.Errorf("read patch %s: %w", patchPath, err)
	}
	return engine.PatchSnapshot(data, ops)
}

func printResult(w io.Writer, res *engine.CalculationResult) {
	fmt.Fprintf(w, "Order %d, company %d (run %s)\n\n", res.OrderID, res.CompanyID, res.RunID)

	fmt.Fprintln(w, "DISCOUNTS")
	for _, id := range res.Totals.IDs() {
		fmt.Fprintf(w, "  group %-8d total %12s  discount %3d%%\n",
			id, res.Totals[id].StringFixed(domain.MoneyPlaces), res.Discounts[id])
	}

	fmt.Fprintln(w, "\nLINES")
	for _, l := range res.Lines {
		fmt.Fprintf(w, "  %-8d product %-8d qty %8s  list %12s  rate %3d%%  price %12s\n",
			l.ID, l.ProductID, l.Quantity.String(),
			l.UnitPrice.StringFixed(domain.MoneyPlaces), l.DiscountRate, l.Price.StringFixed(domain.MoneyPlaces))
	}

	fmt.Fprintln(w, "\nEXECUTION LOG")
	for _, step := range res.ExecutionLog {
		fmt.Fprintf(w, "  [%-12s] %-12s %-8s %s\n", strings.ToUpper(step.Phase), step.RuleID, step.Action, step.Message)
	}
}
