package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/rustyeddy/tradeorg/internal/scenario"
	"github.com/rustyeddy/tradeorg/journal"
	"github.com/rustyeddy/tradeorg/ledger"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var ledgerCmd = &cobra.Command{
	Use:   "ledger",
	Short: "Replay orders and inspect node ledgers",
	Long: `Replay the configured orders, then print the trade ledger of every node
in the hierarchy, or of a single node with --node.

Formats:
  text - one summary line per node, indented by depth
  json - ledger export snapshots
  yaml - ledger export snapshots

With --trades the node's trades are printed as Org mode entries instead.

Examples:
  tradeorg ledger
  tradeorg ledger --node FUND-001 --format json
  tradeorg ledger --node ST-MOMO --trades`,
	RunE: runLedger,
}

var (
	ledgerNode   string
	ledgerFormat string
	ledgerTrades bool
)

func init() {
	rootCmd.AddCommand(ledgerCmd)

	ledgerCmd.Flags().StringVarP(&ledgerNode, "node", "n", "", "only this node id")
	ledgerCmd.Flags().StringVar(&ledgerFormat, "format", "text", "output format: text, json or yaml")
	ledgerCmd.Flags().BoolVar(&ledgerTrades, "trades", false, "print trades as Org mode entries")
}

func runLedger(cmd *cobra.Command, args []string) error {
	s, err := openSession(cmd.ErrOrStderr(), false)
	if err != nil {
		return err
	}
	defer s.Close()

	sc, _, err := s.replay(cmd.Context())
	if err != nil {
		return err
	}

	nodes := sc.Ledgers()
	if ledgerNode != "" {
		nodes = selectNode(nodes, ledgerNode)
		if len(nodes) == 0 {
			return fmt.Errorf("node %q not found", ledgerNode)
		}
	}

	out := cmd.OutOrStdout()
	if ledgerTrades {
		for _, n := range nodes {
			fmt.Fprintf(out, "* %s %s\n", n.Kind, n.ID)
			fmt.Fprint(out, journal.FormatTradesOrg(n.Ledger.Trades()))
		}
		return nil
	}

	switch strings.ToLower(ledgerFormat) {
	case "text":
		printLedgers(out, nodes)
		return nil
	case "json":
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(snapshots(nodes, ledgerNode != ""))
	case "yaml":
		enc := yaml.NewEncoder(out)
		enc.SetIndent(2)
		defer enc.Close()
		return enc.Encode(snapshots(nodes, ledgerNode != ""))
	default:
		return fmt.Errorf("unknown format %q (want text, json or yaml)", ledgerFormat)
	}
}

// selectNode returns the entries with the given id. Ids are unique per
// kind, so more than one kind may match.
func selectNode(nodes []scenario.NodeLedger, id string) []scenario.NodeLedger {
	var out []scenario.NodeLedger
	for _, n := range nodes {
		if n.ID == id {
			out = append(out, n)
		}
	}
	return out
}

// snapshots exports a single node as an object and several as a list.
func snapshots(nodes []scenario.NodeLedger, single bool) any {
	if single && len(nodes) == 1 {
		return nodes[0].Ledger.Export()
	}
	out := make([]ledger.Snapshot, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, n.Ledger.Export())
	}
	return out
}

func printLedgers(w io.Writer, nodes []scenario.NodeLedger) {
	for _, n := range nodes {
		ix := n.Ledger
		fmt.Fprintf(w, "%s%s %s (%s): %d trades, volume %s, commission %s",
			strings.Repeat("  ", n.Depth), n.Kind, n.ID, n.Name,
			ix.Count(), ix.TotalVolume().StringFixed(2), ix.TotalCommission().StringFixed(2))
		if syms := ix.Symbols(); len(syms) > 0 {
			fmt.Fprintf(w, " [%s]", strings.Join(syms, " "))
		}
		fmt.Fprintln(w)
	}
}
