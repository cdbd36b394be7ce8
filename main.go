package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"excel_automation/infrastructure/config"
	"excel_automation/presentation/terminal"

	"github.com/playwright-community/playwright-go"
	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "excel-automation",
		Short:        "Browser checks for the hosted Excel workbook",
		SilenceUsage: true,
	}
	root.AddCommand(newRunCmd(), newReportCmd(), newInstallCmd())
	return root
}

func newRunCmd() *cobra.Command {
	var (
		env       string
		overrides terminal.Overrides
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Sign in, create a blank workbook and run every scenario",
		Long: `Run signs in with EXCEL_USERNAME and EXCEL_PASSWORD from the environment or
the selected dotenv file (.env, or .env.qa with --env qa), opens a blank
workbook and runs the scenarios against it. Screenshots and the video of a
failed run are kept under the artifacts directory.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if env != "" {
				if err := os.Setenv("ENV", env); err != nil {
					return err
				}
			}

			ti, err := terminal.NewTerminalInterface(".", overrides, cmd.OutOrStdout())
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			run, err := ti.Run(ctx)
			if err != nil {
				return err
			}
			if run.Failed() {
				return fmt.Errorf("run %s failed", run.ID)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&env, "env", "", "Environment profile (qa selects .env.qa)")
	cmd.Flags().BoolVar(&overrides.Headed, "headed", false, "Show the browser window")
	cmd.Flags().StringVar(&overrides.BrowserName, "browser", "", "Browser engine: chromium, firefox or webkit")
	cmd.Flags().StringVar(&overrides.ArtifactsDir, "artifacts", "", "Directory for screenshots, videos and results.json")
	cmd.Flags().StringVar(&overrides.JUnitPath, "junit", "", "Also write a JUnit XML report to this file")
	return cmd
}

func newReportCmd() *cobra.Command {
	var reportDir string

	cmd := &cobra.Command{
		Use:   "report <run-dir>",
		Short: "Render the HTML report of a saved run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := terminal.RenderReport(args[0], reportDir, cmd.OutOrStdout())
			return err
		},
	}
	cmd.Flags().StringVar(&reportDir, "report-dir", config.DefaultReportDir, "Directory the report is written to")
	return cmd
}

func newInstallCmd() *cobra.Command {
	var browsers []string

	cmd := &cobra.Command{
		Use:   "install",
		Short: "Download the Playwright driver and browsers",
		RunE: func(cmd *cobra.Command, args []string) error {
			return playwright.Install(&playwright.RunOptions{
				Browsers: browsers,
				Verbose:  true,
			})
		},
	}
	cmd.Flags().StringSliceVar(&browsers, "browsers", []string{"chromium"}, "Browsers to install")
	return cmd
}
