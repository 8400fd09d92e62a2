package cli

import (
	"math/rand"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/dmarx/trl/internal/corpus"
	"github.com/dmarx/trl/internal/sampler"
)

func init() {
	cmd := &cobra.Command{
		Use:   "prepare",
		Short: "Prepare and cache the prompt corpus",
		Long: "Load raw documents (one per line, plain text or JSONL with a \"text\"\n" +
			"field), filter short ones, truncate each to a sampled prompt length,\n" +
			"and cache the prepared records for training.",
		Run: runPrepare,
	}

	cmd.Flags().StringP("input", "i", "", "Raw corpus file (required)")
	cmd.Flags().Int("min-chars", corpus.DefaultMinChars, "Drop documents shorter than this many characters")
	cmd.Flags().Int("in-min", 2, "Minimum prompt length in tokens (inclusive)")
	cmd.Flags().Int("in-max", 8, "Maximum prompt length in tokens (exclusive)")
	cmd.Flags().Int64("seed", 0, "Seed prompt-length sampling (0 = nondeterministic)")

	cmd.MarkFlagRequired("input")

	RootCmd.AddCommand(cmd)
}

func runPrepare(cmd *cobra.Command, args []string) {
	input, _ := cmd.Flags().GetString("input")
	minChars, _ := cmd.Flags().GetInt("min-chars")
	inMin, _ := cmd.Flags().GetInt("in-min")
	inMax, _ := cmd.Flags().GetInt("in-max")
	seed, _ := cmd.Flags().GetInt64("seed")

	var rng *rand.Rand
	if seed != 0 {
		rng = rand.New(rand.NewSource(seed))
	}
	inputLen, err := sampler.NewWithSource(inMin, inMax, rng)
	if err != nil {
		exitErr("prompt length range", err)
	}

	tok, err := openTokenizer()
	if err != nil {
		exitErr("load tokenizer", err)
	}

	store, err := openStore()
	if err != nil {
		exitErr("open corpus store", err)
	}
	defer store.Close()

	preparer, err := corpus.NewPreparer(tok, inputLen, corpus.PreparerOptions{MinChars: minChars}, store.NewID)
	if err != nil {
		exitErr("build preparer", err)
	}

	items, err := corpus.FileSource{Path: input}.Load()
	if err != nil {
		exitErr("load corpus", err)
	}

	records := preparer.Prepare(items)
	if err := store.Replace(cmd.Context(), records); err != nil {
		exitErr("cache records", err)
	}

	log.WithFields(log.Fields{
		"input":    input,
		"loaded":   len(items),
		"prepared": len(records),
		"dropped":  len(items) - len(records),
		"db":       getDBPath(),
	}).Info("corpus prepared")
}
