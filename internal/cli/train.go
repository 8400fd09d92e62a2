package cli

import (
	"math/rand"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/dmarx/trl/internal/corpus"
	"github.com/dmarx/trl/internal/metrics"
	"github.com/dmarx/trl/internal/policy"
	"github.com/dmarx/trl/internal/ppo"
	"github.com/dmarx/trl/internal/reward"
	"github.com/dmarx/trl/internal/sampler"
	"github.com/dmarx/trl/internal/trainer"
)

func init() {
	cmd := &cobra.Command{
		Use:   "train",
		Short: "Run the reward-guided training loop",
		Long: "Iterate the prepared corpus in fixed batches: generate responses with\n" +
			"the current policy, score them with the reward classifier, and hand\n" +
			"aligned (prompt, response, reward) triplets to the PPO backend.",
		Run: runTrain,
	}

	cmd.Flags().Int("total-steps", 25600, "Target number of training samples")
	cmd.Flags().Int("batch-size", 256, "Records per optimizer step")
	cmd.Flags().Int("forward-batch-size", 16, "Ceiling on any single forward pass")
	cmd.Flags().Int("out-min", 4, "Minimum response length in tokens (inclusive)")
	cmd.Flags().Int("out-max", 16, "Maximum response length in tokens (exclusive)")
	cmd.Flags().Int64("seed", 0, "Seed response-length sampling and generation (0 = nondeterministic)")
	cmd.Flags().String("save", "", "Ask the policy backend to persist weights here after the run")

	cmd.Flags().Float64("lr", 1.41e-5, "Optimizer learning rate")
	cmd.Flags().Int("ppo-epochs", 4, "Optimization epochs per step")
	cmd.Flags().Float64("init-kl-coef", 0.2, "Initial KL penalty coefficient")
	cmd.Flags().Float64("target-kl", 6.0, "Adaptive KL target")
	cmd.Flags().Bool("adaptive-kl", true, "Adapt the KL coefficient toward the target")

	RootCmd.AddCommand(cmd)
}

func runTrain(cmd *cobra.Command, args []string) {
	flags := cmd.Flags()
	totalSteps, _ := flags.GetInt("total-steps")
	batchSize, _ := flags.GetInt("batch-size")
	forwardBatchSize, _ := flags.GetInt("forward-batch-size")
	outMin, _ := flags.GetInt("out-min")
	outMax, _ := flags.GetInt("out-max")
	seed, _ := flags.GetInt64("seed")
	saveDest, _ := flags.GetString("save")

	cfg := trainer.Config{
		TotalSteps:       totalSteps,
		BatchSize:        batchSize,
		ForwardBatchSize: forwardBatchSize,
		TxtOutMinLen:     outMin,
		TxtOutMaxLen:     outMax,
		// Prompt lengths were fixed at preparation time; the range
		// here only participates in validation.
		TxtInMinLen: 1,
		TxtInMaxLen: 1 << 16,
		Seed:        seed,
		SaveDest:    saveDest,
	}
	if err := cfg.Validate(); err != nil {
		exitErr("configuration", err)
	}

	optCfg := ppo.DefaultConfig()
	optCfg.LearningRate, _ = flags.GetFloat64("lr")
	optCfg.PPOEpochs, _ = flags.GetInt("ppo-epochs")
	optCfg.InitKLCoef, _ = flags.GetFloat64("init-kl-coef")
	optCfg.TargetKL, _ = flags.GetFloat64("target-kl")
	optCfg.AdaptiveKL, _ = flags.GetBool("adaptive-kl")
	optCfg.BatchSize = batchSize
	optCfg.ForwardBatchSize = forwardBatchSize

	tok, err := openTokenizer()
	if err != nil {
		exitErr("load tokenizer", err)
	}

	store, err := openStore()
	if err != nil {
		exitErr("open corpus store", err)
	}
	defer store.Close()

	var rng *rand.Rand
	if seed != 0 {
		rng = rand.New(rand.NewSource(seed))
	}
	outputLen, err := sampler.NewWithSource(outMin, outMax, rng)
	if err != nil {
		exitErr("response length range", err)
	}

	samplingCfg := policy.UnconstrainedSampling(tok.PadID())
	samplingCfg.Seed = seed
	policyClient := policy.NewFromEnv()
	stage, err := policy.NewStage(policyClient, outputLen, samplingCfg)
	if err != nil {
		exitErr("build generation stage", err)
	}

	scorer, err := reward.NewScorer(reward.NewFromEnv(), forwardBatchSize)
	if err != nil {
		exitErr("build reward scorer", err)
	}

	history, err := metrics.NewSQLiteSink(getRunsDBPath())
	if err != nil {
		exitErr("open run history", err)
	}
	defer history.Close()

	loop, err := trainer.New(cfg, trainer.Deps{
		Iterator:  corpus.NewStoreIterator(store, batchSize),
		Tokenizer: tok,
		Stage:     stage,
		Scorer:    scorer,
		Optimizer: ppo.NewFromEnv(optCfg),
		Sink:      metrics.Multi{metrics.NewLogSink(nil), history},
		Saver:     policyClient,
	})
	if err != nil {
		exitErr("build training loop", err)
	}

	completed, err := loop.Run(cmd.Context())
	if err != nil {
		exitErr("training run", err)
	}
	log.WithFields(log.Fields{
		"run_id":     loop.RunID(),
		"iterations": completed,
	}).Info("done")
}
