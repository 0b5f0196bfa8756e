package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"
)

// NewFormCmd создаёт группу команд для управления формами.
func NewFormCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "form",
		Short: "Manage forms",
	}

	cmd.AddCommand(
		newFormListCmd(clientFn, outputFn),
		newFormCreateCmd(clientFn, outputFn),
		newFormShowCmd(clientFn, outputFn),
		newFormUpdateCmd(clientFn, outputFn),
		newFormDeleteCmd(clientFn, outputFn),
		newFormVersionsCmd(clientFn, outputFn),
		newFormPublishCmd(clientFn, outputFn),
	)

	return cmd
}

func formRow(f *FormResponse) []string {
	return []string{f.ID, f.Name, strconv.FormatBool(f.IsActive), f.CreatedAt}
}

var formHeaders = []string{"ID", "NAME", "ACTIVE", "CREATED"}

func newFormListCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all forms",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			forms, err := client.ListForms()
			if err != nil {
				return err
			}

			rows := make([][]string, len(forms))
			for i := range forms {
				rows[i] = formRow(&forms[i])
			}

			out.Print(formHeaders, rows, forms)
			return nil
		},
	}
}

func newFormCreateCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	var name string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a new form",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			form, err := client.CreateForm(name)
			if err != nil {
				return err
			}

			out.Success(fmt.Sprintf("Form created: %s", form.ID))
			out.Print(formHeaders, [][]string{formRow(form)}, form)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Form name (required)")
	cmd.MarkFlagRequired("name")

	return cmd
}

func newFormShowCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "show ID",
		Short: "Show form details",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			form, err := client.GetForm(args[0])
			if err != nil {
				return err
			}

			out.Print(formHeaders, [][]string{formRow(form)}, form)
			return nil
		},
	}
}

func newFormUpdateCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	var name string
	var active string

	cmd := &cobra.Command{
		Use:   "update ID",
		Short: "Update a form",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			req := UpdateFormRequest{}
			if cmd.Flags().Changed("name") {
				req.Name = &name
			}
			if cmd.Flags().Changed("active") {
				b, err := strconv.ParseBool(active)
				if err != nil {
					return fmt.Errorf("invalid value for --active: %s", active)
				}
				req.IsActive = &b
			}

			form, err := client.UpdateForm(args[0], req)
			if err != nil {
				return err
			}

			out.Success("Form updated")
			out.Print(formHeaders, [][]string{formRow(form)}, form)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "New form name")
	cmd.Flags().StringVar(&active, "active", "", "Set active status (true/false)")

	return cmd
}

func newFormDeleteCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "delete ID",
		Short: "Delete a form",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			if err := client.DeleteForm(args[0]); err != nil {
				return err
			}

			out.Success(fmt.Sprintf("Form deleted: %s", args[0]))
			return nil
		},
	}
}

func newFormVersionsCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "versions FORM_ID",
		Short: "List form versions",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			versions, err := client.ListVersions(args[0])
			if err != nil {
				return err
			}

			headers := []string{"FORM_ID", "VERSION", "CREATED"}
			rows := make([][]string, len(versions))
			for i, v := range versions {
				rows[i] = []string{v.FormID, strconv.Itoa(v.Version), v.CreatedAt}
			}

			out.Print(headers, rows, versions)
			return nil
		},
	}
}

func newFormPublishCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	var structureFile string

	cmd := &cobra.Command{
		Use:   "publish FORM_ID",
		Short: "Publish a new form version from structure file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			data, err := os.ReadFile(structureFile)
			if err != nil {
				return fmt.Errorf("failed to read structure file: %w", err)
			}

			// YAML конвертируется в JSON, JSON проходит как есть
			jsonData, err := structureToJSON(structureFile, data)
			if err != nil {
				return err
			}

			version, err := client.PublishVersion(args[0], json.RawMessage(jsonData))
			if err != nil {
				return err
			}

			out.Success(fmt.Sprintf("Version %d published for form %s", version.Version, version.FormID))
			out.Print(
				[]string{"FORM_ID", "VERSION", "CREATED"},
				[][]string{{version.FormID, strconv.Itoa(version.Version), version.CreatedAt}},
				version,
			)
			return nil
		},
	}

	cmd.Flags().StringVar(&structureFile, "structure-file", "", "Path to structure JSON or YAML file (required)")
	cmd.MarkFlagRequired("structure-file")

	return cmd
}
