package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/restage/restage"
)

func buildRoot() *cobra.Command {
	g := &GlobalFlags{}
	root := &cobra.Command{
		Use:           "restage",
		Short:         "Capture and restore complete workspace setups",
		Long:          "restage saves the running applications, their window geometry and per-app state (tabs, documents, layouts) as named workspaces, and restores them later.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&g.ConfigPath, "config", "c", "", "path to TOML config file")

	c := &command{g: g}

	saveFlags := &SaveFlags{}
	saveCmd := &cobra.Command{
		Use:   "save <name>",
		Short: "Capture the current workspace under a name",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			saveFlags.Name = args[0]
			return c.Save(*saveFlags)
		},
	}

	restoreFlags := &RestoreFlags{}
	restoreCmd := &cobra.Command{
		Use:   "restore <name>",
		Short: "Restore a saved workspace",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			restoreFlags.Name = args[0]
			return c.Restore(*restoreFlags)
		},
	}
	restoreCmd.Flags().DurationVar(&restoreFlags.Timeout, "timeout", 0, "overall restore deadline (0 uses the configured default)")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List saved workspaces",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			return c.List()
		},
	}

	deleteFlags := &DeleteFlags{}
	deleteCmd := &cobra.Command{
		Use:   "delete <name>",
		Short: "Delete a saved workspace",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			deleteFlags.Name = args[0]
			return c.Delete(*deleteFlags)
		},
	}
	deleteCmd.Flags().BoolVarP(&deleteFlags.Force, "force", "f", false, "skip confirmation prompt")

	serveFlags := &ServeFlags{}
	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the workspace API daemon",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			return c.Serve(*serveFlags)
		},
	}
	serveCmd.Flags().StringVar(&serveFlags.Listen, "listen", "", "listen address (default 127.0.0.1:8553)")
	serveCmd.Flags().StringVar(&serveFlags.BasePath, "base-path", "", "API base path (default /api)")

	root.AddCommand(saveCmd, restoreCmd, listCmd, deleteCmd, serveCmd)
	return root
}

type command struct {
	g *GlobalFlags
}

// buildEngine wires an engine from the config file when given, or from
// defaults otherwise.
func (c *command) buildEngine() (*restage.Engine, error) {
	fc, err := c.loadConfig()
	if err != nil {
		return nil, err
	}
	return restage.NewFromConfig(fc)
}

func (c *command) loadConfig() (*restage.FileConfig, error) {
	if c.g.ConfigPath != "" {
		return restage.LoadConfig(c.g.ConfigPath)
	}
	return &restage.FileConfig{}, nil
}

func (c *command) Save(f SaveFlags) error {
	eng, err := c.buildEngine()
	if err != nil {
		return err
	}
	defer func() { _ = eng.Close() }()
	report, err := eng.CaptureWorkspace(context.Background(), f.Name)
	if err != nil {
		return wrapExit(err, report)
	}
	printReport("captured", report)
	return wrapExit(nil, report)
}

func (c *command) Restore(f RestoreFlags) error {
	eng, err := c.buildEngine()
	if err != nil {
		return err
	}
	defer func() { _ = eng.Close() }()
	ctx := context.Background()
	if f.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.Timeout)
		defer cancel()
	}
	report, err := eng.RestoreWorkspace(ctx, f.Name)
	if err != nil {
		return wrapExit(err, report)
	}
	printReport("restored", report)
	return wrapExit(nil, report)
}

func (c *command) List() error {
	eng, err := c.buildEngine()
	if err != nil {
		return err
	}
	defer func() { _ = eng.Close() }()
	names, err := eng.ListWorkspaces(context.Background())
	if err != nil {
		return err
	}
	if len(names) == 0 {
		fmt.Println("no saved workspaces")
		return nil
	}
	for _, n := range names {
		fmt.Println(n)
	}
	return nil
}

func (c *command) Delete(f DeleteFlags) error {
	if !f.Force && !confirm(fmt.Sprintf("delete workspace %q?", f.Name)) {
		fmt.Println("cancelled")
		return nil
	}
	eng, err := c.buildEngine()
	if err != nil {
		return err
	}
	defer func() { _ = eng.Close() }()
	if err := eng.DeleteWorkspace(context.Background(), f.Name); err != nil {
		return wrapExit(err, nil)
	}
	fmt.Printf("workspace %q deleted\n", f.Name)
	return nil
}

func confirm(prompt string) bool {
	fmt.Printf("%s (y/N): ", prompt)
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil {
		return false
	}
	return strings.EqualFold(strings.TrimSpace(line), "y")
}
