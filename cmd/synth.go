package cmd

import (
	"flag"
	"os"

	"github.com/spf13/cobra"

	"github.com/skt-inc/quicklink-infra/internal/common"
	"github.com/skt-inc/quicklink-infra/internal/compose"
	"github.com/skt-inc/quicklink-infra/internal/config"
	"github.com/skt-inc/quicklink-infra/internal/logging"
	"github.com/skt-inc/quicklink-infra/internal/synth"
)

type synthConfig struct {
	stackName  string
	account    string
	region     string
	configPath string
	outDir     string
	codePath   string
	noQueue    bool
	rateLimit  int
	burstLimit int
	verbose    bool
}

func newSynthCommand() *cobra.Command {
	var cfg synthConfig

	cmd := &cobra.Command{
		Use:   "synth",
		Short: "Synthesize the stack template and output manifest",
		RunE: func(cmd *cobra.Command, _ []string) error {
			fileCfg, err := config.Load(cfg.configPath)
			if err != nil {
				return err
			}
			// Flags win over the config file; the file wins over defaults.
			if !cmd.Flags().Changed("account") {
				cfg.account = fileCfg.Account
			}
			if !cmd.Flags().Changed("region") {
				cfg.region = fileCfg.Region
			}
			if !cmd.Flags().Changed("out") {
				cfg.outDir = fileCfg.OutputDir
			}
			if !cmd.Flags().Changed("code") {
				cfg.codePath = fileCfg.CodePath
			}
			if !cmd.Flags().Changed("no-analytics-queue") {
				cfg.noQueue = !fileCfg.QueueEnabled()
			}
			if !cmd.Flags().Changed("rate-limit") {
				cfg.rateLimit = fileCfg.Throttle.RateLimit
			}
			if !cmd.Flags().Changed("burst-limit") {
				cfg.burstLimit = fileCfg.Throttle.BurstLimit
			}
			cfg.verbose = verbose
			return runSynth(cfg)
		},
	}

	cmd.Flags().StringVar(&cfg.stackName, "stack", "QuickLinkStack", "Logical stack name")
	cmd.Flags().StringVar(&cfg.account, "account", "", "Target account ID")
	cmd.Flags().StringVar(&cfg.region, "region", config.DefaultRegion, "Target region")
	cmd.Flags().StringVar(&cfg.configPath, "config", "quicklink.yaml", "Path to the topology config file")
	cmd.Flags().StringVar(&cfg.outDir, "out", config.DefaultOutputDir, "Directory to write the template into")
	cmd.Flags().StringVar(&cfg.codePath, "code", config.DefaultCodePath, "Path to the pre-built function package")
	cmd.Flags().BoolVar(&cfg.noQueue, "no-analytics-queue", false, "Build the topology variant without the analytics queue")
	cmd.Flags().IntVar(&cfg.rateLimit, "rate-limit", config.DefaultRateLimit, "Gateway throttling rate limit")
	cmd.Flags().IntVar(&cfg.burstLimit, "burst-limit", config.DefaultBurstLimit, "Gateway throttling burst limit")

	return cmd
}

// bridgeTraceVerbosity wires the CLI verbose flag onto glog's stdlib flags
// so the V-level trace points inside compose and synth emit. glog reads only
// flag.CommandLine, which cobra never parses.
func bridgeTraceVerbosity(verbose bool) {
	level := "0"
	if verbose {
		level = "2"
	}
	_ = flag.Set("logtostderr", "true")
	_ = flag.Set("v", level)
	if !flag.Parsed() {
		_ = flag.CommandLine.Parse(nil)
	}
}

func runSynth(cfg synthConfig) error {
	bridgeTraceVerbosity(cfg.verbose)
	logger := logging.New(os.Stderr, cfg.verbose)
	stackName := common.StackName(cfg.stackName)
	env := config.Environment{Account: cfg.account, Region: cfg.region}

	logger.Info("Composing stack graph", "stack", cfg.stackName, "analyticsQueue", !cfg.noQueue)
	graph, err := compose.Stack(compose.Options{
		AnalyticsQueue: !cfg.noQueue,
		CodePath:       cfg.codePath,
		RateLimit:      cfg.rateLimit,
		BurstLimit:     cfg.burstLimit,
	})
	if err != nil {
		return err
	}
	logger.Debug("Graph complete", "resources", len(graph.Descriptors()), "grants", len(graph.Grants()))

	doc, manifest, err := synth.Synthesize(graph, stackName, env)
	if err != nil {
		return err
	}

	path, err := synth.Write(cfg.outDir, stackName, doc)
	if err != nil {
		return err
	}
	logger.Info("Template written", "path", path)

	return renderManifest(os.Stdout, manifest)
}
