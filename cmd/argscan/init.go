package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/ludo-technologies/argscan/internal/config"
	"github.com/ludo-technologies/argscan/internal/constants"
	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
)

func initCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Generate an argscan configuration file",
		Long: `Generate a documented argscan configuration file with sensible defaults.

By default, creates .argscan.yaml in the current directory with full
documentation. Use --interactive for a guided setup wizard.

Examples:
  # Create .argscan.yaml in current directory
  argscan init

  # Custom output path
  argscan init --config ci/argscan.yaml

  # Overwrite existing file
  argscan init --force

  # Generate smaller config with essential options only
  argscan init --minimal

  # Interactive setup wizard
  argscan init -i`,
		Args: cobra.NoArgs,
		RunE: runInit,
	}

	cmd.Flags().StringP("config", "c", constants.ConfigFileName,
		"Output path for the config file")
	cmd.Flags().BoolP("force", "f", false,
		"Overwrite existing config file")
	cmd.Flags().Bool("minimal", false,
		"Generate minimal config with essential options only")
	cmd.Flags().BoolP("interactive", "i", false,
		"Interactive setup wizard")

	return cmd
}

func runInit(cmd *cobra.Command, args []string) error {
	configPath, _ := cmd.Flags().GetString("config")
	force, _ := cmd.Flags().GetBool("force")
	minimal, _ := cmd.Flags().GetBool("minimal")
	interactive, _ := cmd.Flags().GetBool("interactive")

	out := cmd.OutOrStdout()
	projectType := config.ProjectTypeCrate
	strictness := config.StrictnessStandard

	if interactive {
		var err error
		projectType, strictness, configPath, err = runInteractiveSetup(out, configPath)
		if err != nil {
			return err
		}
	}

	if !force {
		if _, err := os.Stat(configPath); err == nil {
			return fmt.Errorf("%s already exists. Use --force to overwrite", configPath)
		}
	}

	dir := filepath.Dir(configPath)
	if dir != "." && dir != "" {
		if _, err := os.Stat(dir); os.IsNotExist(err) {
			return fmt.Errorf("directory does not exist: %s", dir)
		}
	}

	var content string
	if minimal {
		content = config.GetMinimalConfigTemplate()
	} else {
		content = config.GetFullConfigTemplate(projectType, strictness)
	}

	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	displayPath := configPath
	if absPath, err := filepath.Abs(configPath); err == nil {
		displayPath = absPath
	}
	fmt.Fprintf(out, "Created %s\n", displayPath)
	fmt.Fprintln(out, "\nRun 'argscan . 5' to scan your project.")

	return nil
}

func runInteractiveSetup(out io.Writer, defaultConfigPath string) (config.ProjectType, config.Strictness, string, error) {
	fmt.Fprintln(out)
	fmt.Fprintln(out, "argscan Configuration Setup")
	fmt.Fprintln(out, "===========================")
	fmt.Fprintln(out)

	projectTypes := []struct {
		Label string
		Value config.ProjectType
	}{
		{"Single crate", config.ProjectTypeCrate},
		{"Cargo workspace", config.ProjectTypeWorkspace},
		{"Crate with generated FFI bindings", config.ProjectTypeBindings},
	}

	projectTemplates := &promptui.SelectTemplates{
		Label:    "{{ . }}",
		Active:   "\U0001F449 {{ .Label | cyan }}",
		Inactive: "   {{ .Label | white }}",
		Selected: "\U00002705 {{ .Label | green }}",
	}

	projectPrompt := promptui.Select{
		Label:     "What kind of Rust project is this?",
		Items:     projectTypes,
		Templates: projectTemplates,
	}

	projectIdx, _, err := projectPrompt.Run()
	if err != nil {
		return "", "", "", fmt.Errorf("project selection cancelled: %w", err)
	}
	selectedProject := projectTypes[projectIdx].Value

	fmt.Fprintln(out)

	presets := config.GetStrictnessPresets()
	strictnessLevels := []struct {
		Label       string
		Description string
		Value       config.Strictness
	}{
		{"Standard (recommended)", fmt.Sprintf("At most %d parameters", presets[config.StrictnessStandard].MaxArgs), config.StrictnessStandard},
		{"Relaxed", fmt.Sprintf("At most %d parameters", presets[config.StrictnessRelaxed].MaxArgs), config.StrictnessRelaxed},
		{"Strict", fmt.Sprintf("At most %d parameters, for CI enforcement", presets[config.StrictnessStrict].MaxArgs), config.StrictnessStrict},
	}

	strictnessTemplates := &promptui.SelectTemplates{
		Label:    "{{ . }}",
		Active:   "\U0001F449 {{ .Label | cyan }} - {{ .Description | faint }}",
		Inactive: "   {{ .Label | white }} - {{ .Description | faint }}",
		Selected: "\U00002705 {{ .Label | green }}",
	}

	strictnessPrompt := promptui.Select{
		Label:     "How strict should the parameter limit be?",
		Items:     strictnessLevels,
		Templates: strictnessTemplates,
	}

	strictnessIdx, _, err := strictnessPrompt.Run()
	if err != nil {
		return "", "", "", fmt.Errorf("strictness selection cancelled: %w", err)
	}
	selectedStrictness := strictnessLevels[strictnessIdx].Value

	fmt.Fprintln(out)

	outputPrompt := promptui.Prompt{
		Label:   "Output file path",
		Default: defaultConfigPath,
	}

	outputPath, err := outputPrompt.Run()
	if err != nil {
		return "", "", "", fmt.Errorf("output path input cancelled: %w", err)
	}

	// Use default if empty
	if outputPath == "" {
		outputPath = defaultConfigPath
	}

	fmt.Fprintln(out)
	fmt.Fprintf(out, "Creating %s... ", outputPath)

	return selectedProject, selectedStrictness, outputPath, nil
}
