// Package main is the entrypoint for the sshops CLI.
package main

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	// Import operations to register them
	_ "github.com/opsforge/sshops/internal/operation/command"
	_ "github.com/opsforge/sshops/internal/operation/download"
	_ "github.com/opsforge/sshops/internal/operation/facts"
	_ "github.com/opsforge/sshops/internal/operation/script"
	_ "github.com/opsforge/sshops/internal/operation/upload"

	"github.com/opsforge/sshops/internal/config"
	"github.com/opsforge/sshops/internal/executor"
	"github.com/opsforge/sshops/internal/operation"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// Global flags
var (
	configPath string
	keyPath    string
	user       string
	host       string
	port       int
	debug      bool
	noColor    bool
	jsonOut    bool
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "sshops",
	Short: "sshops - stateless SSH operations against remote hosts",
	Long: `sshops runs discrete, stateless SSH operations against remote hosts:
run a command, run a script, upload or download a file, or collect host
facts. Every invocation opens its own connection and closes it when the
operation completes; nothing is reused between calls.`,
	Version:       fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Config file (YAML)")
	rootCmd.PersistentFlags().StringVarP(&keyPath, "key", "k", "", "Private key file (overrides config)")
	rootCmd.PersistentFlags().StringVarP(&user, "user", "u", "", "Username (overrides config)")
	rootCmd.PersistentFlags().StringVarP(&host, "host", "H", "", "Target host")
	rootCmd.PersistentFlags().IntVarP(&port, "port", "p", 0, "Target port (default 22)")
	rootCmd.PersistentFlags().BoolVarP(&debug, "debug", "d", false, "Enable debug output")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable colored output")
	rootCmd.PersistentFlags().BoolVar(&jsonOut, "json", false, "Print the result as JSON")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(scriptCmd)
	rootCmd.AddCommand(uploadCmd)
	rootCmd.AddCommand(downloadCmd)
	rootCmd.AddCommand(factsCmd)
	rootCmd.AddCommand(operationsCmd)
}

// newExecutor loads the configuration and builds an executor.
func newExecutor() (*executor.Executor, error) {
	cfg := &config.Config{}

	if configPath != "" {
		loaded, err := config.Load(configPath)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if keyPath != "" {
		cfg.PrivateKey = ""
		cfg.PrivateKeyPath = keyPath
	}
	if user != "" {
		cfg.User = user
	}

	exec := executor.New(cfg)
	exec.Output.SetColor(!noColor)
	exec.Output.SetDebug(debug)

	return exec, nil
}

func target() config.Target {
	return config.Target{Host: host, Port: port, User: user}
}

// signalContext returns a context cancelled on SIGINT/SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		fmt.Fprintln(os.Stderr, "\nInterrupted, cleaning up...")
		cancel()
	}()

	return ctx, cancel
}

// execute runs one operation and prints its result. Remote exit codes are
// surfaced as the process exit code; typed failures exit 1.
func execute(opName string, params map[string]any) error {
	exec, err := newExecutor()
	if err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	tgt := target()
	result, err := exec.Run(ctx, tgt, opName, params)
	if err != nil {
		exec.Output.Failure(tgt.Host, opName, err)
		os.Exit(1)
	}

	if jsonOut {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(result.Data); err != nil {
			return err
		}
	} else {
		exec.Output.Result(tgt.Host, opName, result.Message, result.Data)
	}

	if code, ok := result.Data["exit_code"].(int); ok && code != 0 {
		os.Exit(code)
	}

	return nil
}

var runCmd = &cobra.Command{
	Use:   "run -H <host> -- <command>",
	Short: "Run a command on the target host",
	Long: `Execute a single shell command over a one-shot SSH session.

The remote exit code is reported in the result and becomes the process
exit code; a non-zero exit is not treated as an operation failure.

Examples:
  sshops run -H web1 -u deploy -k ~/.ssh/id_ed25519 -- uptime
  sshops run -H web1 --chdir /var/log -- 'grep -c ERROR app.log'`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		params := map[string]any{"cmd": strings.Join(args, " ")}
		if chdir, _ := cmd.Flags().GetString("chdir"); chdir != "" {
			params["chdir"] = chdir
		}
		return execute("run", params)
	},
}

var scriptCmd = &cobra.Command{
	Use:   "script -H <host> <file|->",
	Short: "Run a local script on the target host",
	Long: `Stage a script on the target, execute it, and remove it.

The script body is transferred verbatim over SFTP, so arbitrary shell
content is safe. Pass "-" to read the script from stdin.

Examples:
  sshops script -H web1 deploy.sh
  echo 'echo hello' | sshops script -H web1 -`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var body []byte
		var err error

		if args[0] == "-" {
			body, err = io.ReadAll(os.Stdin)
		} else {
			body, err = os.ReadFile(args[0])
		}
		if err != nil {
			return fmt.Errorf("failed to read script: %w", err)
		}

		params := map[string]any{"script": string(body)}
		if interp, _ := cmd.Flags().GetString("interpreter"); interp != "" {
			params["interpreter"] = interp
		}
		if chdir, _ := cmd.Flags().GetString("chdir"); chdir != "" {
			params["chdir"] = chdir
		}
		return execute("script", params)
	},
}

var uploadCmd = &cobra.Command{
	Use:   "upload -H <host> --dest <path> <file>",
	Short: "Upload a file to the target host",
	Long: `Copy a local file to the target over SFTP.

Examples:
  sshops upload -H web1 --dest /etc/app/app.conf --mode 0644 app.conf
  sshops upload -H web1 --dest /opt/blob.bin --base64 blob.bin`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("failed to read file: %w", err)
		}

		dest, _ := cmd.Flags().GetString("dest")
		useBase64, _ := cmd.Flags().GetBool("base64")

		params := map[string]any{"dest": dest}
		if useBase64 {
			params["content"] = base64.StdEncoding.EncodeToString(data)
			params["encoding"] = "base64"
		} else {
			params["content"] = string(data)
			params["encoding"] = "text"
		}
		if mode, _ := cmd.Flags().GetString("mode"); mode != "" {
			params["mode"] = mode
		}
		if createDirs, _ := cmd.Flags().GetBool("create-dirs"); createDirs {
			params["create_dirs"] = true
		}
		return execute("upload", params)
	},
}

var downloadCmd = &cobra.Command{
	Use:   "download -H <host> --src <path>",
	Short: "Download a file from the target host",
	Long: `Copy a remote file from the target over SFTP.

Without --out the content is printed in the result (base64 by default,
--text for UTF-8 passthrough). With --out the raw bytes are written to
the given local file.

Examples:
  sshops download -H web1 --src /var/log/app.log --text
  sshops download -H web1 --src /opt/blob.bin --out blob.bin`,
	RunE: func(cmd *cobra.Command, args []string) error {
		src, _ := cmd.Flags().GetString("src")
		text, _ := cmd.Flags().GetBool("text")
		out, _ := cmd.Flags().GetString("out")

		params := map[string]any{"src": src}
		if text {
			params["encoding"] = "text"
		}

		if out == "" {
			return execute("download", params)
		}

		// Write-to-file mode: run the operation directly so the raw
		// bytes never go through the terminal.
		exec, err := newExecutor()
		if err != nil {
			return err
		}

		ctx, cancel := signalContext()
		defer cancel()

		tgt := target()
		result, err := exec.Run(ctx, tgt, "download", params)
		if err != nil {
			exec.Output.Failure(tgt.Host, "download", err)
			os.Exit(1)
		}

		content, _ := result.Data["content"].(string)
		data := []byte(content)
		if !text {
			data, err = base64.StdEncoding.DecodeString(content)
			if err != nil {
				return fmt.Errorf("failed to decode downloaded content: %w", err)
			}
		}

		if err := os.WriteFile(out, data, 0o644); err != nil {
			return fmt.Errorf("failed to write %s: %w", out, err)
		}

		exec.Output.Info("wrote %d bytes to %s", len(data), out)
		return nil
	},
}

var factsCmd = &cobra.Command{
	Use:   "facts -H <host>",
	Short: "Collect host facts",
	Long: `Collect a normalized metadata record from the target host:
hostname, OS type and release, architecture, uptime, load average, and
memory. Probes that fail on a given host degrade to zero values.

Examples:
  sshops facts -H web1
  sshops facts -H web1 --json`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return execute("facts", nil)
	},
}

var operationsCmd = &cobra.Command{
	Use:   "operations",
	Short: "List available operations",
	Run: func(cmd *cobra.Command, args []string) {
		names := operation.List()
		fmt.Println("Available operations:")
		fmt.Println()
		for _, name := range names {
			fmt.Printf("  - %s\n", name)
		}
		fmt.Println()
		fmt.Printf("Total: %d operations\n", len(names))
	},
}

func init() {
	runCmd.Flags().String("chdir", "", "Working directory on the target")

	scriptCmd.Flags().String("interpreter", "sh", "Interpreter to run the script with")
	scriptCmd.Flags().String("chdir", "", "Working directory on the target")

	uploadCmd.Flags().String("dest", "", "Destination path on the target (required)")
	uploadCmd.Flags().String("mode", "", "File permissions in octal (e.g. 0644)")
	uploadCmd.Flags().Bool("base64", false, "Transfer the content base64-encoded")
	uploadCmd.Flags().Bool("create-dirs", false, "Create parent directories on the target")
	_ = uploadCmd.MarkFlagRequired("dest")

	downloadCmd.Flags().String("src", "", "Source path on the target (required)")
	downloadCmd.Flags().String("out", "", "Write content to this local file")
	downloadCmd.Flags().Bool("text", false, "Treat the file as UTF-8 text")
	_ = downloadCmd.MarkFlagRequired("src")
}
