package main

import (
	"os"

	"github.com/spf13/cobra"
)

var (
	flagConfig string

	flagListen  string
	flagCamera  int
	flagNoTray  bool
	flagOut     string
	flagCountry string
	flagCity    string
	flagAge     int
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "blinkwell",
		Short: "Blinkwell - browser-based blink monitoring and eye health screening",
		Long: `Blinkwell watches your webcam for blinks, reminds you when your blink
rate drops below a healthy target, and can run an AI screening of a
captured frame sequence, producing a downloadable PDF report.`,
		RunE: runServe,
	}

	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "config.yaml", "Path to the configuration file")

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the monitor, web UI, and analysis API (default)",
		RunE:  runServe,
	}
	addServeFlags(rootCmd)
	addServeFlags(serveCmd)

	analyzeCmd := &cobra.Command{
		Use:   "analyze <frames.zip>",
		Short: "Run the AI screening on a captured frame archive and write a PDF report",
		Args:  cobra.ExactArgs(1),
		RunE:  runAnalyze,
	}
	analyzeCmd.Flags().StringVar(&flagOut, "out", "blink_analysis_report.pdf", "Output PDF path")
	analyzeCmd.Flags().StringVar(&flagCountry, "country", "", "Patient country")
	analyzeCmd.Flags().StringVar(&flagCity, "city", "", "Patient city")
	analyzeCmd.Flags().IntVar(&flagAge, "age", 0, "Patient age")

	rootCmd.AddCommand(serveCmd, analyzeCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func addServeFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&flagListen, "listen", "", "Listen address (overrides the config file)")
	cmd.Flags().IntVar(&flagCamera, "camera", -1, "Camera device ID (overrides the config file)")
	cmd.Flags().BoolVar(&flagNoTray, "no-tray", false, "Run without the system tray")
}
