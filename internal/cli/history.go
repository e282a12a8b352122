package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/matzehuels/deskkit/pkg/errors"
	"github.com/matzehuels/deskkit/pkg/history"
)

// historyNames returns the list names accepted by the history commands.
func historyNames() []string {
	names := make([]string, 0, len(history.Lists))
	for n := range history.Lists {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// historyKey maps a list name such as "palette" to its store key.
func historyKey(name string) (string, error) {
	if key, ok := history.Lists[strings.ToLower(name)]; ok {
		return key, nil
	}
	return "", errors.New(errors.ErrCodeInvalidInput, "unknown history %q (must be one of %s)", name, strings.Join(historyNames(), ", "))
}

// withHistory opens the store and the named history list for fn.
func (c *CLI) withHistory(ctx context.Context, name string, fn func(context.Context, *history.History) error) error {
	key, err := historyKey(name)
	if err != nil {
		return err
	}
	ctx = c.commandContext(ctx)
	store, err := c.openStore(ctx)
	if err != nil {
		return err
	}
	defer store.Close()
	return fn(ctx, c.history(store, key))
}

// historyCommand creates the history management command.
func (c *CLI) historyCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show and manage recent palette, extraction and watermark runs",
		Long: fmt.Sprintf(`Show and manage recent runs. Each list keeps the %d most recent entries.

Lists: %s`, history.DefaultLimit, strings.Join(historyNames(), ", ")),
	}

	cmd.AddCommand(c.historyListCommand())
	cmd.AddCommand(c.historyShowCommand())
	cmd.AddCommand(c.historyClearCommand())
	cmd.AddCommand(c.historyBrowseCommand())

	return cmd
}

func (c *CLI) historyListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list [list]",
		Short: "Print a history list, most recent first",
		Long: `Print a history list, most recent first. Without an argument, print a
summary of every list that has entries.`,
		Args:      cobra.MaximumNArgs(1),
		ValidArgs: historyNames(),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return c.historySummary(cmd.Context())
			}
			return c.withHistory(cmd.Context(), args[0], func(ctx context.Context, h *history.History) error {
				entries, err := h.List(ctx)
				if err != nil {
					return err
				}
				if len(entries) == 0 {
					printInfo("No %s history", args[0])
					return nil
				}
				rows := make([][]string, len(entries))
				for i, e := range entries {
					rows[i] = []string{strconv.Itoa(i + 1), shortID(e.ID), truncate(e.Title, 56), formatRelativeTime(e.CreatedAt)}
				}
				fmt.Fprintln(c.Out, renderTable([]string{"#", "ID", "Title", "When"}, rows))
				return nil
			})
		},
	}
}

// historySummary prints one row per stored list with its size and newest entry.
func (c *CLI) historySummary(ctx context.Context) error {
	ctx = c.commandContext(ctx)
	store, err := c.openStore(ctx)
	if err != nil {
		return err
	}
	defer store.Close()

	names, err := history.Stored(ctx, store)
	if err != nil {
		return err
	}
	var rows [][]string
	for _, name := range names {
		entries, err := c.history(store, history.Lists[name]).List(ctx)
		if err != nil {
			return err
		}
		if len(entries) == 0 {
			continue
		}
		rows = append(rows, []string{name, strconv.Itoa(len(entries)), truncate(entries[0].Title, 48), formatRelativeTime(entries[0].CreatedAt)})
	}
	if len(rows) == 0 {
		printInfo("No history yet")
		return nil
	}
	fmt.Fprintln(c.Out, renderTable([]string{"List", "Entries", "Latest", "When"}, rows))
	return nil
}

func (c *CLI) historyShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show <list> <id>",
		Short: "Print the stored data of one entry (ID prefix is enough)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withHistory(cmd.Context(), args[0], func(ctx context.Context, h *history.History) error {
				entries, err := h.List(ctx)
				if err != nil {
					return err
				}
				e, err := findEntry(entries, args[1])
				if err != nil {
					return err
				}
				return c.printEntry(e)
			})
		},
	}
}

func (c *CLI) historyClearCommand() *cobra.Command {
	return &cobra.Command{
		Use:       "clear <list>",
		Short:     "Remove every entry from a history list",
		Args:      cobra.ExactArgs(1),
		ValidArgs: historyNames(),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withHistory(cmd.Context(), args[0], func(ctx context.Context, h *history.History) error {
				if err := h.Clear(ctx); err != nil {
					return err
				}
				printSuccess("Cleared %s history", args[0])
				return nil
			})
		},
	}
}

func (c *CLI) historyBrowseCommand() *cobra.Command {
	return &cobra.Command{
		Use:       "browse <list>",
		Short:     "Browse a history list interactively",
		Args:      cobra.ExactArgs(1),
		ValidArgs: historyNames(),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withHistory(cmd.Context(), args[0], func(ctx context.Context, h *history.History) error {
				entries, err := h.List(ctx)
				if err != nil {
					return err
				}

				final, err := tea.NewProgram(NewHistoryListModel(args[0], entries), tea.WithContext(ctx)).Run()
				if err != nil {
					return err
				}
				m := final.(HistoryListModel)

				for id, removed := range m.Removed {
					if !removed {
						continue
					}
					if err := h.Remove(ctx, id); err != nil {
						return err
					}
				}
				if n := m.removedCount(); n > 0 {
					printSuccess("Removed %d entries", n)
				}
				if m.Selected != nil {
					return c.printEntry(*m.Selected)
				}
				return nil
			})
		},
	}
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// findEntry returns the entry whose ID starts with prefix.
func findEntry(entries []history.Entry, prefix string) (history.Entry, error) {
	var found []history.Entry
	for _, e := range entries {
		if strings.HasPrefix(e.ID, prefix) {
			found = append(found, e)
		}
	}
	switch len(found) {
	case 0:
		return history.Entry{}, errors.New(errors.ErrCodeNotFound, "no entry with ID %s", prefix)
	case 1:
		return found[0], nil
	}
	return history.Entry{}, errors.New(errors.ErrCodeInvalidInput, "ID prefix %s matches %d entries", prefix, len(found))
}

// printEntry prints an entry's title and indented data.
func (c *CLI) printEntry(e history.Entry) error {
	printKeyValue("Title", e.Title)
	printKeyValue("When", e.CreatedAt.Local().Format("2006-01-02 15:04:05"))
	if len(e.Data) == 0 {
		return nil
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, e.Data, "", "  "); err != nil {
		return err
	}
	fmt.Fprintln(c.Out, buf.String())
	return nil
}
