// Comando harness: carga (load) e cenário e2e (e2e) contra o serviço de limites.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"limites-harness/harness/config"
)

// código de saída convencional do k6 quando um threshold falha
const exitThresholds = 99

type thresholdsError struct {
	failed []string
}

func (e *thresholdsError) Error() string {
	return "thresholds failed: " + strings.Join(e.failed, ", ")
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()
	// depois do primeiro sinal o segundo volta a matar o processo
	go func() {
		<-ctx.Done()
		cancel()
	}()

	root := newRootCmd(config.New(), stdout, stderr)
	root.SetArgs(args)
	err := root.ExecuteContext(ctx)
	if err == nil {
		return 0
	}

	var te *thresholdsError
	if errors.As(err, &te) {
		fmt.Fprintln(stderr, err)
		return exitThresholds
	}
	fmt.Fprintln(stderr, "error:", err)
	return 1
}

func newRootCmd(v *viper.Viper, stdout, stderr io.Writer) *cobra.Command {
	root := &cobra.Command{
		Use:           "harness",
		Short:         "Load and end-to-end checks for the documents/limits service",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(stdout)
	root.SetErr(stderr)

	root.PersistentFlags().String("log-level", "info", "log level (debug, info, warn, error)")
	_ = v.BindPFlag("log_level", root.PersistentFlags().Lookup("log-level"))

	root.AddCommand(newLoadCmd(v, stdout, stderr), newE2ECmd(v, stdout, stderr))
	return root
}
