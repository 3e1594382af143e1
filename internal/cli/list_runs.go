// internal/cli/list_runs.go
package redqueen

import (
	"fmt"
	"io"
	"time"

	"github.com/mwiater/redqueen/internal/store"
	"github.com/spf13/cobra"
)

var listRunsStore string

// runsCmd implements 'list runs', which prints the runs kept in the SQLite store.
var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List benchmark runs recorded in the store",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		path := listRunsStore
		if path == "" {
			path = config().StorePath
		}
		if path == "" {
			return fmt.Errorf("no store configured (pass --store or set storePath)")
		}
		st, err := store.NewSQLiteStore(path)
		if err != nil {
			return err
		}
		defer st.Close()

		runs, err := st.Runs()
		if err != nil {
			return err
		}
		printRuns(cmd.OutOrStdout(), runs)
		return nil
	},
}

func init() {
	runsCmd.Flags().StringVar(&listRunsStore, "store", "", "path to the SQLite store")
	listCmd.AddCommand(runsCmd)
}

func printRuns(out io.Writer, runs []store.Run) {
	if len(runs) == 0 {
		fmt.Fprintln(out, "No runs recorded.")
		return
	}
	for _, r := range runs {
		fmt.Fprintf(out, "%s  %s  %d records\n", r.ID, r.StartedAt.Local().Format(time.DateTime), r.Records)
	}
}
