package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/invopop/jsonschema"
	"github.com/mirkobrombin/doorman/pkg/config"
	"github.com/mirkobrombin/doorman/pkg/logger"
	"github.com/mirkobrombin/doorman/pkg/types"
	"github.com/spf13/cobra"
	"github.com/xeipuuv/gojsonschema"
	"gopkg.in/yaml.v3"
)

// NewValidateCommand creates the `validate` command for verifying a
// doorman.yml against the JSON Schema generated from the config types.
func NewValidateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate [config]",
		Short: "Validate doorman.yml against its schema",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runValidate,
	}
	return cmd
}

// runValidate checks the configuration against the JSON Schema and
// reports any validation errors, then reruns the semantic checks the
// loader applies.
func runValidate(cmd *cobra.Command, args []string) error {
	var path string
	var err error
	if len(args) > 0 {
		path = args[0]
	} else {
		explicit, _ := cmd.Flags().GetString("config")
		path, err = config.ResolvePath(explicit)
		if err != nil {
			return err
		}
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("couldn't read %s: %w", path, err)
	}

	var document any
	if err := yaml.Unmarshal(raw, &document); err != nil {
		return fmt.Errorf("couldn't parse %s: %w", path, err)
	}
	documentBytes, err := json.Marshal(document)
	if err != nil {
		return fmt.Errorf("couldn't convert %s to JSON: %w", path, err)
	}

	reflector := &jsonschema.Reflector{ExpandedStruct: true}
	schema := reflector.Reflect(&types.ConfigFile{})

	schemaBytes, err := json.Marshal(schema)
	if err != nil {
		return fmt.Errorf("failed to serialize schema: %w", err)
	}

	result, err := gojsonschema.Validate(
		gojsonschema.NewBytesLoader(schemaBytes),
		gojsonschema.NewBytesLoader(documentBytes),
	)
	if err != nil {
		return fmt.Errorf("schema validation error: %w", err)
	}

	if !result.Valid() {
		logger.Println("Configuration validation errors:")
		for _, desc := range result.Errors() {
			logger.Printf(" - %s", desc)
		}
		return fmt.Errorf("validation failed with %d errors", len(result.Errors()))
	}

	if _, err := config.LoadFile(path); err != nil {
		return err
	}

	logger.Println("Configuration is valid against the schema.")
	return nil
}
