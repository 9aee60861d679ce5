package cli

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
)

var completionShells = []string{"bash", "zsh", "fish"}

func newCompletionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "completion <bash|zsh|fish>",
		Short: "Generate or install shell completion scripts",
		Long: `Print the completion script for a shell to stdout.

To load completions in your current shell session:
  source <(javanav completion bash)

To install for the current user instead:
  javanav completion install`,
		Args:      cobra.ExactArgs(1),
		ValidArgs: completionShells,
		RunE: func(cmd *cobra.Command, args []string) error {
			var buf bytes.Buffer
			if err := genCompletion(cmd.Root(), args[0], &buf); err != nil {
				return err
			}
			_, err := cmd.OutOrStdout().Write(buf.Bytes())
			return err
		},
	}

	cmd.AddCommand(newCompletionInstallCmd())
	return cmd
}

func newCompletionInstallCmd() *cobra.Command {
	var shell string

	cmd := &cobra.Command{
		Use:   "install",
		Short: "Install the completion script for the current user",
		Long: `Detect the shell from $SHELL (or use --shell) and write its completion
script under the home directory:
  bash   ~/.bash_completion.d/javanav
  zsh    ~/.zsh/completions/_javanav
  fish   ~/.config/fish/completions/javanav.fish`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if shell == "" {
				shell = detectShell()
			}
			home, err := os.UserHomeDir()
			if err != nil {
				return fmt.Errorf("get home directory: %w", err)
			}
			path, err := completionPath(home, shell)
			if err != nil {
				return err
			}

			var buf bytes.Buffer
			if err := genCompletion(cmd.Root(), shell, &buf); err != nil {
				return err
			}
			if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
				return fmt.Errorf("create %s: %w", filepath.Dir(path), err)
			}
			if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
				return fmt.Errorf("write completion file: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Installed %s completion to: %s\n", shell, path)
			return nil
		},
	}

	cmd.Flags().StringVar(&shell, "shell", "", "shell to install for (default from $SHELL)")
	return cmd
}

func genCompletion(root *cobra.Command, shell string, buf *bytes.Buffer) error {
	var err error
	switch shell {
	case "bash":
		err = root.GenBashCompletionV2(buf, true)
	case "zsh":
		err = root.GenZshCompletion(buf)
	case "fish":
		err = root.GenFishCompletion(buf, true)
	default:
		return fmt.Errorf("unsupported shell %q (want one of %s)", shell, strings.Join(completionShells, ", "))
	}
	if err != nil {
		return fmt.Errorf("generate %s completion: %w", shell, err)
	}
	return nil
}

func completionPath(home, shell string) (string, error) {
	switch shell {
	case "bash":
		return filepath.Join(home, ".bash_completion.d", "javanav"), nil
	case "zsh":
		return filepath.Join(home, ".zsh", "completions", "_javanav"), nil
	case "fish":
		return filepath.Join(home, ".config", "fish", "completions", "javanav.fish"), nil
	case "":
		return "", fmt.Errorf("could not detect shell; pass --shell")
	}
	return "", fmt.Errorf("unsupported shell %q (want one of %s)", shell, strings.Join(completionShells, ", "))
}

// detectShell returns the base name of $SHELL, or "" when unset.
func detectShell() string {
	shell := os.Getenv("SHELL")
	if shell == "" {
		return ""
	}
	return filepath.Base(shell)
}
