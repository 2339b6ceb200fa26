package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/will-hwang/ml-commons/frontend/cli/pkg/terminal"
	"github.com/will-hwang/ml-commons/shared/keyring"
)

// keyProviders are the LLM providers whose API keys the server reads from the
// keyring. Ollama needs no key.
var keyProviders = []string{"openai", "anthropic"}

func NewKeyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "key",
		Short:   "Store LLM provider API keys in the OS keyring",
		GroupID: "system",
	}

	cmd.AddCommand(NewKeySetCmd())
	cmd.AddCommand(NewKeyDeleteCmd())
	return cmd
}

func NewKeySetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set <provider>",
		Short: "Store an API key, read from stdin",
		Example: `  # Store the OpenAI key
  printf '%s' "$OPENAI_API_KEY" | ml-commons key set openai`,
		Args:      cobra.ExactArgs(1),
		ValidArgs: keyProviders,
		RunE: func(cmd *cobra.Command, args []string) error {
			provider, err := keyProvider(args[0])
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.ErrOrStderr(), "Enter the %s API key: ", provider)
			line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
			if err != nil && line == "" {
				return fmt.Errorf("failed to read api key: %w", err)
			}

			secret := strings.TrimSpace(line)
			if secret == "" {
				return errors.New("api key must not be empty")
			}

			if err := getKeyring(cmd.Context()).Set(keyring.ProviderKey(provider), secret); err != nil {
				return fmt.Errorf("failed to store %s api key: %w", provider, err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%s Stored %s API key\n", terminal.SuccessSymbol, provider)
			return nil
		},
	}
}

func NewKeyDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:       "delete <provider>",
		Short:     "Remove a stored API key",
		Aliases:   []string{"rm"},
		Args:      cobra.ExactArgs(1),
		ValidArgs: keyProviders,
		RunE: func(cmd *cobra.Command, args []string) error {
			provider, err := keyProvider(args[0])
			if err != nil {
				return err
			}

			err = getKeyring(cmd.Context()).Delete(keyring.ProviderKey(provider))
			if errors.Is(err, &keyring.ErrSecretNotFound{}) {
				fmt.Fprintf(cmd.OutOrStdout(), "%s No %s API key stored\n", terminal.WarningSymbol, provider)
				return nil
			}
			if err != nil {
				return fmt.Errorf("failed to delete %s api key: %w", provider, err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%s Deleted %s API key\n", terminal.SuccessSymbol, provider)
			return nil
		},
	}
}

func keyProvider(name string) (string, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if !slices.Contains(keyProviders, name) {
		return "", fmt.Errorf("unknown provider %q, expected one of %s", name, strings.Join(keyProviders, ", "))
	}
	return name, nil
}
