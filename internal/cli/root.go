// Package cli implements the trl CLI commands.
package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/dmarx/trl/internal/corpus"
)

var (
	dbPath   string
	runsDB   string
	envFile  string
	logLevel string
	encoding string
)

// RootCmd is the top-level command.
var RootCmd = &cobra.Command{
	Use:   "trl",
	Short: "Reward-guided fine-tuning of a text-generation policy",
	Long: "Fine-tune an autoregressive policy against an external reward model\n" +
		"with a clipped policy-gradient update and a KL penalty toward a frozen\n" +
		"reference. SQLite-backed corpus cache and run history, single binary.",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if envFile != "" {
			if err := godotenv.Load(envFile); err != nil {
				exitErr("load env file", err)
			}
		} else {
			godotenv.Load()
		}
		level, err := log.ParseLevel(logLevel)
		if err != nil {
			exitErr("parse log level", err)
		}
		log.SetLevel(level)
	},
}

func init() {
	RootCmd.PersistentFlags().StringVarP(&dbPath, "db", "d", "", "Corpus cache path (default: $TRL_DB or ~/.trl/corpus.db)")
	RootCmd.PersistentFlags().StringVar(&runsDB, "runs-db", "", "Run history path (default: $TRL_RUNS_DB or ~/.trl/runs.db)")
	RootCmd.PersistentFlags().StringVar(&envFile, "env-file", "", "Load environment from this file")
	RootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level: debug, info, warn, error")
	RootCmd.PersistentFlags().StringVar(&encoding, "encoding", "r50k_base", "tiktoken encoding name")
}

func getDBPath() string {
	if dbPath != "" {
		return dbPath
	}
	if env := os.Getenv("TRL_DB"); env != "" {
		return env
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".trl", "corpus.db")
}

func getRunsDBPath() string {
	if runsDB != "" {
		return runsDB
	}
	if env := os.Getenv("TRL_RUNS_DB"); env != "" {
		return env
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".trl", "runs.db")
}

func openStore() (*corpus.Store, error) {
	return corpus.NewStore(getDBPath())
}

func openTokenizer() (*corpus.BPE, error) {
	return corpus.NewBPE(encoding)
}

func exitErr(msg string, err error) {
	fmt.Fprintf(os.Stderr, "error: %s: %v\n", msg, err)
	os.Exit(1)
}
