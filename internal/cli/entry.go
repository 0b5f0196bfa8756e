package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
)

// NewEntryCmd создаёт группу команд для работы с заявками.
func NewEntryCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "entry",
		Short: "Manage form entries",
	}

	cmd.AddCommand(
		newEntryCreateCmd(clientFn, outputFn),
		newEntryShowCmd(clientFn, outputFn),
		newEntrySubmitCmd(clientFn, outputFn),
	)

	return cmd
}

var submitResultHeaders = []string{"ENTRY_ID", "PUBLIC_ID", "COMPLETE", "CURRENT_STAGE"}

func submitResultRow(r *SubmitResultResponse) []string {
	stage := "-"
	if !r.IsComplete {
		stage = strconv.Itoa(r.CurrentStageID)
	}
	return []string{r.EntryID, r.PublicID, strconv.FormatBool(r.IsComplete), stage}
}

func newEntryCreateCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	var valuesFile string
	var sets []string
	var version int

	cmd := &cobra.Command{
		Use:   "create FORM_ID",
		Short: "Create an entry by submitting the initial stage",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			values, err := collectValues(valuesFile, sets)
			if err != nil {
				return err
			}

			result, err := client.CreateEntry(args[0], CreateEntryRequest{
				Version:     version,
				FieldValues: values,
			})
			if err != nil {
				return err
			}

			out.Success(fmt.Sprintf("Entry created: %s", result.PublicID))
			out.Print(submitResultHeaders, [][]string{submitResultRow(result)}, result)
			return nil
		},
	}

	cmd.Flags().StringVar(&valuesFile, "values-file", "", "Path to JSON file with field values")
	cmd.Flags().StringArrayVar(&sets, "set", nil, "Field value as FIELD_ID=VALUE (repeatable)")
	cmd.Flags().IntVar(&version, "version", 0, "Form version (default: latest)")

	return cmd
}

func newEntryShowCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "show PUBLIC_ID",
		Short: "Show entry details",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			entry, err := client.GetEntry(args[0])
			if err != nil {
				return err
			}

			out.Print(
				[]string{"PUBLIC_ID", "FORM_ID", "VERSION", "STAGE", "COMPLETE", "UPDATED"},
				[][]string{{
					entry.PublicID,
					entry.FormID,
					strconv.Itoa(entry.Version),
					strconv.Itoa(entry.CurrentStageID),
					strconv.FormatBool(entry.IsComplete),
					entry.UpdatedAt,
				}},
				entry,
			)
			return nil
		},
	}
}

func newEntrySubmitCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	var valuesFile string
	var sets []string

	cmd := &cobra.Command{
		Use:   "submit PUBLIC_ID",
		Short: "Submit the current stage of an entry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			values, err := collectValues(valuesFile, sets)
			if err != nil {
				return err
			}

			result, err := client.SubmitStage(args[0], SubmitStageRequest{FieldValues: values})
			if err != nil {
				return err
			}

			if result.IsComplete {
				out.Success(fmt.Sprintf("Entry completed: %s", result.PublicID))
			} else {
				out.Success(fmt.Sprintf("Stage submitted, entry advanced to stage %d", result.CurrentStageID))
			}
			out.Print(submitResultHeaders, [][]string{submitResultRow(result)}, result)
			return nil
		},
	}

	cmd.Flags().StringVar(&valuesFile, "values-file", "", "Path to JSON file with field values")
	cmd.Flags().StringArrayVar(&sets, "set", nil, "Field value as FIELD_ID=VALUE (repeatable)")

	return cmd
}

// collectValues собирает значения полей из файла и флагов --set.
// Файл — JSON массив объектов {"field_id": N, "value": ...};
// флаги --set имеют вид FIELD_ID=VALUE, значение передаётся строкой.
func collectValues(valuesFile string, sets []string) ([]FieldValue, error) {
	var values []FieldValue

	if valuesFile != "" {
		data, err := os.ReadFile(valuesFile)
		if err != nil {
			return nil, fmt.Errorf("failed to read values file: %w", err)
		}
		if err := json.Unmarshal(data, &values); err != nil {
			return nil, fmt.Errorf("values file must be a JSON array of {field_id, value}: %w", err)
		}
	}

	for _, s := range sets {
		id, value, ok := strings.Cut(s, "=")
		if !ok {
			return nil, fmt.Errorf("invalid --set %q, expected FIELD_ID=VALUE", s)
		}
		fieldID, err := strconv.Atoi(id)
		if err != nil {
			return nil, fmt.Errorf("invalid field id in --set %q", s)
		}
		values = append(values, FieldValue{FieldID: fieldID, Value: value})
	}

	return values, nil
}
