package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/deskkit/pkg/config"
	"github.com/matzehuels/deskkit/pkg/errors"
	"github.com/matzehuels/deskkit/pkg/kv"
	"github.com/matzehuels/deskkit/pkg/vault"
)

// vaultPasswordEnv supplies the vault password when --password is not given.
const vaultPasswordEnv = "DESKKIT_VAULT_PASSWORD"

func (c *CLI) vaultCommand() *cobra.Command {
	var password string

	cmd := &cobra.Command{
		Use:   "vault",
		Short: "Store short text notes under a name and password",
		Long: `Store short text notes under a name and password.

The name and password together locate a note; they do not encrypt it.
Anyone with access to the store can read every note.`,
	}
	cmd.PersistentFlags().StringVarP(&password, "password", "p", "", "note password (or $"+vaultPasswordEnv+")")

	pw := func() string {
		if password != "" {
			return password
		}
		return os.Getenv(vaultPasswordEnv)
	}

	cmd.AddCommand(c.vaultSaveCommand(pw))
	cmd.AddCommand(c.vaultLoadCommand(pw))
	cmd.AddCommand(c.vaultDeleteCommand(pw))
	cmd.AddCommand(c.vaultListCommand())

	return cmd
}

// withVault opens the store, runs fn against the vault and closes the store.
func (c *CLI) withVault(ctx context.Context, fn func(context.Context, *vault.Vault) error) error {
	ctx = c.commandContext(ctx)
	store, err := c.openStore(ctx)
	if err != nil {
		return err
	}
	defer store.Close()
	if _, ok := store.(*kv.NullStore); ok {
		return errors.New(errors.ErrCodeUnsupported, "the vault needs a store; backend %q keeps nothing", config.BackendNone)
	}
	return fn(ctx, vault.New(store, c.Logger))
}

func (c *CLI) vaultSaveCommand(password func() string) *cobra.Command {
	var (
		text string
		file string
	)
	cmd := &cobra.Command{
		Use:   "save <name>",
		Short: "Save a note, replacing any note with the same name and password",
		Long: `Save a note. The text comes from --text, --file, or standard input.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			body, err := noteText(cmd.InOrStdin(), text, file)
			if err != nil {
				return err
			}
			return c.withVault(cmd.Context(), func(ctx context.Context, v *vault.Vault) error {
				note, err := v.Save(ctx, args[0], password(), body)
				if err != nil {
					return err
				}
				printSuccess("Saved %q", note.Name)
				printDetail("%d characters", len([]rune(note.Text)))
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&text, "text", "t", "", "note text")
	cmd.Flags().StringVarP(&file, "file", "f", "", "read the note text from a file")
	cmd.MarkFlagsMutuallyExclusive("text", "file")
	return cmd
}

func (c *CLI) vaultLoadCommand(password func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "load <name>",
		Short: "Print a saved note",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withVault(cmd.Context(), func(ctx context.Context, v *vault.Vault) error {
				note, err := v.Load(ctx, args[0], password())
				if err != nil {
					return err
				}
				fmt.Fprintln(c.Out, note.Text)
				c.Logger.Debug("note loaded", "name", note.Name, "updated", note.UpdatedAt.Format(time.DateTime))
				return nil
			})
		},
	}
}

func (c *CLI) vaultDeleteCommand(password func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <name>",
		Short: "Delete a saved note",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withVault(cmd.Context(), func(ctx context.Context, v *vault.Vault) error {
				if err := v.Delete(ctx, args[0], password()); err != nil {
					return err
				}
				printSuccess("Deleted %q", args[0])
				return nil
			})
		},
	}
}

func (c *CLI) vaultListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the names of saved notes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withVault(cmd.Context(), func(ctx context.Context, v *vault.Vault) error {
				names, err := v.List(ctx)
				if err != nil {
					return err
				}
				if len(names) == 0 {
					printInfo("The vault is empty")
					return nil
				}
				for _, n := range names {
					fmt.Fprintln(c.Out, n)
				}
				return nil
			})
		},
	}
}

// noteText picks the note body from the flag, a file, or r.
func noteText(r io.Reader, text, file string) (string, error) {
	switch {
	case text != "":
		return text, nil
	case file != "":
		data, err := os.ReadFile(file)
		if err != nil {
			return "", errors.Wrap(errors.ErrCodeFileNotFound, err, "%s", file)
		}
		return string(data), nil
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	body := strings.TrimRight(string(data), "\n")
	if body == "" {
		return "", errors.New(errors.ErrCodeInvalidInput, "note text is empty")
	}
	return body, nil
}
