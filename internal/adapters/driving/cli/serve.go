package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/reqsift/internal/adapters/driving/rest"
	"github.com/custodia-labs/reqsift/internal/app"
)

var (
	serveAddr      string
	serveUploadDir string
	serveMaxFiles  int
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	Long: `Start the HTTP API.

Endpoints:
  GET  /health        liveness check
  POST /upload        multipart form: files (repeated), userId, projectId, prompt
  POST /requirements  JSON body {"projectId": "..."}; returns every stored run

Uploaded files are staged in a temporary directory and removed once the
run finishes.

Examples:
  reqsift serve
  reqsift serve --addr 127.0.0.1:9000 --upload-dir /var/tmp/reqsift`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", ":8080", "listen address")
	serveCmd.Flags().StringVar(&serveUploadDir, "upload-dir", "", "directory for staged uploads (default OS temp dir)")
	serveCmd.Flags().IntVar(&serveMaxFiles, "max-files", rest.DefaultMaxFiles, "maximum files per upload")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	svc, err := requireExtraction(cmd.Context(), true, app.DefaultCacheSize)
	if err != nil {
		return err
	}

	server := rest.NewServer(svc, rest.Config{
		UploadDir: serveUploadDir,
		MaxFiles:  serveMaxFiles,
	})

	fmt.Fprintf(cmd.ErrOrStderr(), "reqsift API listening on %s\n", serveAddr)
	return server.Run(cmd.Context(), serveAddr)
}
