package cmd

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/diffsec/codesearchd/internal/rpcclient"
	"github.com/diffsec/codesearchd/internal/rpcserver"
)

var queryCmd = &cobra.Command{
	Use:   "query <project-path> <search query>",
	Short: "Search a project's indexed code",
	Long: `query dials the running daemon's hardcoded socket and asks it
to search the given project root for the given query, triggering
bring-up on first contact if the project hasn't been indexed yet.`,
	Args: cobra.MinimumNArgs(2),
	RunE: runQuery,
}

func init() {
	rootCmd.AddCommand(queryCmd)
}

func runQuery(cmd *cobra.Command, args []string) error {
	projectPath, err := filepath.Abs(args[0])
	if err != nil {
		return err
	}
	query := strings.Join(args[1:], " ")

	client, err := rpcclient.Dial(rpcserver.DefaultSocketPath)
	if err != nil {
		exitErrorJSON(err)
		return nil
	}
	defer client.Close()

	chunks, err := client.SearchCode(projectPath, query)
	if err != nil {
		exitErrorJSON(err)
		return nil
	}

	output(chunks, formatChunks)
	return nil
}

func formatChunks(data interface{}) string {
	chunks := data.([]rpcclient.ResponseChunk)
	if len(chunks) == 0 {
		return "no matches\n"
	}
	var b strings.Builder
	for _, c := range chunks {
		fmt.Fprintf(&b, "%s:%d:%d\n%s\n\n", c.Path, c.RowStart+1, c.ColumnStart+1, c.Content)
	}
	return b.String()
}
