package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/shaiso/Anketa/internal/domain"
	"github.com/shaiso/Anketa/internal/engine"
)

// NewStructureCmd создаёт группу команд для работы со структурами форм.
func NewStructureCmd(outputFn func() *Output) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "structure",
		Short: "Work with form structures",
	}

	cmd.AddCommand(
		newStructureValidateCmd(outputFn),
	)

	return cmd
}

// newStructureValidateCmd валидирует структуру локально, без запроса к API.
// Полезно в CI: ошибки ловятся до публикации версии.
func newStructureValidateCmd(outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "validate FILE",
		Short: "Validate a form structure file (JSON or YAML)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := outputFn()

			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("failed to read structure file: %w", err)
			}

			jsonData, err := structureToJSON(args[0], data)
			if err != nil {
				return err
			}

			var structure domain.Structure
			if err := json.Unmarshal(jsonData, &structure); err != nil {
				return fmt.Errorf("failed to parse structure: %w", err)
			}

			if err := engine.ValidateStructure(&structure); err != nil {
				return fmt.Errorf("structure is invalid: %w", err)
			}

			fields := 0
			for _, stage := range structure.Stages {
				for _, section := range stage.Sections {
					fields += len(section.Fields)
				}
			}

			out.Success(fmt.Sprintf("Structure is valid: %d stage(s), %d field(s), %d transition(s)",
				len(structure.Stages), fields, len(structure.Transitions)))
			out.Print(
				[]string{"STAGES", "FIELDS", "TRANSITIONS"},
				[][]string{{
					strconv.Itoa(len(structure.Stages)),
					strconv.Itoa(fields),
					strconv.Itoa(len(structure.Transitions)),
				}},
				structure,
			)
			return nil
		},
	}
}

// structureToJSON приводит содержимое файла структуры к JSON.
// Формат определяется по расширению: .yaml/.yml парсится как YAML,
// остальное должно быть валидным JSON.
func structureToJSON(path string, data []byte) ([]byte, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if ext == ".yaml" || ext == ".yml" {
		var doc any
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("structure file is not valid YAML: %w", err)
		}

		jsonData, err := json.Marshal(doc)
		if err != nil {
			return nil, fmt.Errorf("failed to convert YAML to JSON: %w", err)
		}
		return jsonData, nil
	}

	if !json.Valid(data) {
		return nil, fmt.Errorf("structure file is not valid JSON")
	}
	return data, nil
}
