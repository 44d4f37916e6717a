package cmd

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"sort"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/rustyeddy/tradeorg/internal/scenario"
	"github.com/rustyeddy/tradeorg/journal"
	"github.com/rustyeddy/tradeorg/org"
	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Build the organization and replay its orders",
	Long: `Build the account, funds, portfolios and strategies from the config,
then replay the configured orders in sequence. Every order is checked
against the portfolio and fund rules above its strategy and fills
immediately at its stated price when accepted.

Rejected orders are reported, not fatal.

Examples:
  tradeorg run
  tradeorg run --config org.yaml --org
  tradeorg run --events
  tradeorg run --metrics-addr :9090 --hold`,
	RunE: runRun,
}

var (
	runOrg    bool
	runEvents bool
	runHold   bool
)

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().BoolVar(&runOrg, "org", false, "print filled trades as Org mode entries")
	runCmd.Flags().BoolVar(&runEvents, "events", false, "print the fill and rejection audit trail")
	runCmd.Flags().BoolVar(&runHold, "hold", false, "keep serving metrics after the replay until interrupted")
	runCmd.Flags().String("metrics-addr", "", "serve Prometheus metrics on this address")
	_ = settings.BindPFlag("metrics.addr", runCmd.Flags().Lookup("metrics-addr"))
}

func runRun(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	s, err := openSession(cmd.ErrOrStderr(), true)
	if err != nil {
		return err
	}
	defer s.Close()

	sc, results, err := s.replay(ctx)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	printResults(out, results)
	fmt.Fprintln(out)
	printStrategies(out, sc)

	if runEvents {
		fmt.Fprintln(out)
		printEvents(out, s.events.Events())
	}

	if runOrg {
		fmt.Fprintln(out)
		fmt.Fprint(out, journal.FormatTradesOrg(sc.Account.Ledger().Trades()))
	}

	if runHold && s.server != nil {
		fmt.Fprintf(out, "\nServing metrics on %s, interrupt to exit\n", s.cfg.Metrics.Addr)
		<-ctx.Done()
	}
	return nil
}

func printResults(w io.Writer, results []scenario.Result) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tSTRATEGY\tSYMBOL\tSIDE\tQTY\tPRICE\tRESULT")
	for _, r := range results {
		side := r.Order.Direction
		if side == "" {
			side = strings.ToUpper(r.Order.Action)
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\t%s\n",
			r.Index+1, r.Order.Strategy, r.Order.Symbol, side,
			r.Order.Quantity, r.Order.Price.StringFixed(2), outcome(r))
	}
	tw.Flush()

	sum := scenario.Summarize(results)
	fmt.Fprintf(w, "\nOrders: %d  Trades filled: %d  Rejected: %d\n", sum.Orders, sum.Filled, sum.Rejected)
	kinds := make([]string, 0, len(sum.ByKind))
	for k := range sum.ByKind {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)
	for _, k := range kinds {
		fmt.Fprintf(w, "  %s: %d\n", k, sum.ByKind[k])
	}
}

func outcome(r scenario.Result) string {
	if r.Err != nil {
		return "✗ " + r.Err.Error()
	}
	legs := make([]string, 0, len(r.Trades))
	for _, t := range r.Trades {
		legs = append(legs, string(t.Direction))
	}
	return "✓ " + strings.Join(legs, "+")
}

func printEvents(w io.Writer, events []org.Event) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "TIME\tEVENT\tSTRATEGY\tSYMBOL\tSIDE\tQTY\tDETAIL")
	for _, e := range events {
		detail := e.TradeID
		if e.Type == org.EventRejected {
			detail = e.Kind + ": " + e.Reason
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			e.At.Format(time.RFC3339), e.Type, e.StrategyID, e.Symbol, e.Direction, e.Quantity, detail)
	}
	tw.Flush()
}

func printStrategies(w io.Writer, sc *scenario.Scenario) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "STRATEGY\tBALANCE\tCASH\tREALIZED\tOPEN POSITIONS")
	for _, st := range sc.Strategies() {
		var open []string
		for _, p := range st.OpenPositions() {
			open = append(open, fmt.Sprintf("%s %s@%s", p.Symbol, p.Quantity, p.AvgEntryPrice.StringFixed(2)))
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
			st.ID(), st.Balance().StringFixed(2), st.Cash().StringFixed(2),
			st.RealizedPnL().StringFixed(2), strings.Join(open, ", "))
	}
	tw.Flush()
}
