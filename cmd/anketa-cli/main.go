// Anketa CLI — инструмент командной строки для управления
// формами и заявками через HTTP API.
//
// Использование:
//
//	anketa [--api-url URL] [--json] <command> <subcommand> [flags]
//
// Команды:
//
//	form       Управление формами и версиями структур
//	entry      Создание и пошаговый submit заявок
//	structure  Локальная валидация структур форм
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/shaiso/Anketa/internal/cli"
)

// version задаётся через ldflags при сборке.
var version = "dev"

func main() {
	var apiURL string
	var jsonOutput bool

	rootCmd := &cobra.Command{
		Use:           "anketa",
		Short:         "Anketa CLI — dynamic form management tool",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&apiURL, "api-url", "http://localhost:8080", "API server URL")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output in JSON format")

	clientFn := func() *cli.Client { return cli.NewClient(apiURL) }
	outputFn := func() *cli.Output { return cli.NewOutput(jsonOutput) }

	rootCmd.AddCommand(
		cli.NewFormCmd(clientFn, outputFn),
		cli.NewEntryCmd(clientFn, outputFn),
		cli.NewStructureCmd(outputFn),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
