package cmd

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/emicalc/internal/cli"
	"github.com/theirongolddev/emicalc/internal/store"
)

var (
	flagHistoryLimit int
	flagHistoryClear bool
)

var historyCmd = &cobra.Command{
	Use:   "history [id]",
	Short: "List saved calculations, or show one by id",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runHistory,
}

func init() {
	historyCmd.Flags().IntVarP(&flagHistoryLimit, "limit", "n", store.DefaultLimit, "Number of calculations to list")
	historyCmd.Flags().BoolVar(&flagHistoryClear, "clear", false, "Delete all saved calculations")
	rootCmd.AddCommand(historyCmd)
}

func runHistory(_ *cobra.Command, args []string) error {
	h, err := store.Open(store.DefaultPath())
	if err != nil {
		return err
	}
	defer func() { _ = h.Close() }()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if flagHistoryClear {
		n, err := h.Clear(ctx)
		if err != nil {
			return err
		}
		fmt.Printf("  Deleted %s calculations from %s\n", cli.GroupIndian(n), store.DefaultPath())
		return nil
	}

	if len(args) == 1 {
		return showCalculation(ctx, h, args[0])
	}

	calcs, err := h.List(ctx, flagHistoryLimit)
	if err != nil {
		return err
	}
	if flagJSON {
		return printJSON(calcs)
	}

	if len(calcs) == 0 {
		fmt.Println("\n  No saved calculations yet.")
		fmt.Println("  Run `emicalc emi` or press s in `emicalc tui` to save one.")
		return nil
	}

	total, err := h.Count(ctx)
	if err != nil {
		return err
	}

	fmt.Println()
	fmt.Println(cli.RenderTitle(fmt.Sprintf("HISTORY  %d of %s", len(calcs), cli.GroupIndian(int64(total)))))
	fmt.Println()

	table := cli.Table{Headers: []string{"ID", "When", "From", "Scheme", "Price", "EMI", "Status"}}
	for _, c := range calcs {
		table.Rows = append(table.Rows, []string{
			c.ID[:8],
			c.CreatedAt.Local().Format("2006-01-02 15:04"),
			c.Source,
			c.Input.Scheme.Name,
			cli.FormatCompactINR(c.Input.PropertyPrice),
			cli.FormatINR(c.Result.MonthlyInstallment),
			cli.StatusLabel(c.Result.Affordability),
		})
	}
	fmt.Print(cli.RenderTable(table))
	fmt.Println()
	return nil
}

// showCalculation prints one saved calculation. A unique id prefix is enough.
func showCalculation(ctx context.Context, h *store.History, id string) error {
	c, ok, err := h.Get(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		total, err := h.Count(ctx)
		if err != nil {
			return err
		}
		calcs, err := h.List(ctx, total)
		if err != nil {
			return err
		}
		var matches int
		for _, cand := range calcs {
			if len(id) >= 4 && len(cand.ID) >= len(id) && cand.ID[:len(id)] == id {
				c = cand
				matches++
			}
		}
		switch {
		case matches == 0:
			return fmt.Errorf("no calculation %q", id)
		case matches > 1:
			return errors.New("id prefix is ambiguous, use more characters")
		}
	}

	if flagJSON {
		return printJSON(c)
	}

	fmt.Println()
	fmt.Println(cli.RenderTitle(fmt.Sprintf("%s  %s", c.Input.Scheme.Name, c.CreatedAt.Local().Format(time.RFC1123))))
	fmt.Println()
	fmt.Print(cli.RenderTable(resultTable(c.Input, c.Result)))
	fmt.Println()
	return nil
}
