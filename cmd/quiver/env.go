package main

import (
	"fmt"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/quiverhttp/quiver/pkg/output"
)

func newEnvCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "env",
		Short: "Manage environments and the active-environment pointer",
	}

	cmd.AddCommand(newEnvListCmd())
	cmd.AddCommand(newEnvNewCmd())
	cmd.AddCommand(newEnvDeleteCmd())
	cmd.AddCommand(newEnvUseCmd())
	cmd.AddCommand(newEnvUnuseCmd())
	cmd.AddCommand(newEnvSetCmd())
	cmd.AddCommand(newEnvUnsetCmd())
	cmd.AddCommand(newEnvImportCmd())
	cmd.AddCommand(newEnvSyncCmd())

	return cmd
}

func newEnvListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List environments",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}

			cfg, err := a.environments.Config()
			if err != nil {
				return err
			}
			if len(cfg.Environments) == 0 {
				pterm.Info.Println("No environments yet. Create one with: quiver env new <name>")
				return nil
			}
			return output.EnvironmentTable(cfg)
		},
	}
}

func newEnvNewCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "new <name>",
		Short: "Create an environment",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}

			env, err := a.environments.Create(args[0])
			if err != nil {
				return err
			}
			pterm.Success.Printfln("Created environment %s (%s)", env.Name, env.ID)
			return nil
		},
	}
}

func newEnvDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete an environment",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}

			found, err := a.environments.Delete(args[0])
			if err != nil {
				return err
			}
			if !found {
				pterm.Warning.Printfln("No environment with id %s", args[0])
			}
			return nil
		},
	}
}

func newEnvUseCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "use <name>",
		Short: "Make an environment the active one",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}

			env, err := a.environments.ByName(args[0])
			if err != nil {
				return err
			}
			if err := a.environments.SetActive(env.ID); err != nil {
				return err
			}
			pterm.Success.Printfln("Active environment: %s", env.Name)
			return nil
		},
	}
}

func newEnvUnuseCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "unuse",
		Short: "Clear the active environment",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			return a.environments.SetActive("")
		},
	}
}

func newEnvSetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set <env-name> <key> <value>",
		Short: "Set a variable in an environment",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}

			env, err := a.environments.ByName(args[0])
			if err != nil {
				return err
			}
			return a.environments.SetVariable(env.ID, args[1], args[2])
		},
	}
}

func newEnvUnsetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "unset <env-name> <key>",
		Short: "Remove a variable from an environment",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}

			env, err := a.environments.ByName(args[0])
			if err != nil {
				return err
			}
			return a.environments.UnsetVariable(env.ID, args[1])
		},
	}
}

func newEnvImportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import <env-name> <path-to-dotenv>",
		Short: "Replace an environment's variables from a .env file",
		Long: `Replace an environment's variables with the contents of a .env file.
The file path is remembered so "quiver env sync" can re-read it later.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}

			env, err := a.environments.ByName(args[0])
			if err != nil {
				return err
			}
			if err := a.environments.ImportDotenv(env.ID, args[1]); err != nil {
				return err
			}
			pterm.Success.Printfln("Imported %s into %s", args[1], env.Name)
			return nil
		},
	}
}

func newEnvSyncCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sync <env-name>",
		Short: "Re-read an environment's recorded .env file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}

			env, err := a.environments.ByName(args[0])
			if err != nil {
				return err
			}
			if err := a.environments.Sync(env.ID); err != nil {
				return err
			}
			fmt.Printf("Synced %s from %s\n", env.Name, env.EnvFilePath)
			return nil
		},
	}
}
