package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"

	airport "go-airport"
	"go-airport/kafkajournal"
)

var (
	cfg        = defaultConfig()
	configPath string
)

func main() {
	var rootCmd = &cobra.Command{
		Use:   "airportsim",
		Short: "An airport runway and parking stand simulator",
		Long: `Airportsim is a demonstration of the go-airport library.
It builds an airport with a number of runways and parking stands and lets
a fleet of aircraft race each other for landing and takeoff slots.`,
		SilenceUsage: true,
	}

	var runCmd = &cobra.Command{
		Use:   "run",
		Short: "Run a simulation",
		RunE:  runSimulation,
	}

	var flags = runCmd.Flags()
	flags.StringVar(&configPath, "config", "", "YAML configuration file")
	flags.StringVar(&cfg.AirportID, "airport-id", cfg.AirportID, "Airport identifier")
	flags.IntVar(&cfg.Runways, "runways", cfg.Runways, "Number of runways")
	flags.IntVar(&cfg.ParkingStands, "stands", cfg.ParkingStands, "Number of parking stands")
	flags.IntVar(&cfg.Aircraft, "aircraft", cfg.Aircraft, "Number of aircraft")
	flags.DurationVar(&cfg.OperationDuration, "operation-duration", cfg.OperationDuration, "How long a landing or takeoff occupies the runway")
	flags.DurationVar(&cfg.TokenValidity, "token-validity", cfg.TokenValidity, "How long a proceed token may be performed")
	flags.DurationVar(&cfg.MaxDelay, "max-delay", cfg.MaxDelay, "Maximum random delay between request and perform")
	flags.DurationVar(&cfg.RetryInterval, "retry-interval", cfg.RetryInterval, "Wait between requests after a hold")
	flags.BoolVar(&cfg.Takeoff, "takeoff", cfg.Takeoff, "Take every aircraft off again after it has parked")
	flags.BoolVar(&cfg.Interactive, "interactive", cfg.Interactive, "Show a live status board, press q to quit")
	flags.BoolVar(&cfg.Trace, "trace", cfg.Trace, "Export spans to stdout")
	flags.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "Log level: debug, info, warn or error")
	flags.StringVar(&cfg.Journal.Driver, "db-driver", cfg.Journal.Driver, "Movement journal database driver: postgres or sqlite3")
	flags.StringVar(&cfg.Journal.DSN, "db", cfg.Journal.DSN, "Movement journal database URL")
	flags.StringSliceVar(&cfg.Journal.KafkaBrokers, "kafka-brokers", cfg.Journal.KafkaBrokers, "Kafka brokers for the movement journal")
	flags.StringVar(&cfg.Journal.KafkaTopic, "kafka-topic", "airport.movements", "Kafka topic for the movement journal")

	rootCmd.AddCommand(runCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runSimulation(cmd *cobra.Command, args []string) error {
	var ctx = cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	if err := resolveConfig(cmd.Flags()); err != nil {
		return err
	}

	// Logs go to stderr so they don't get cleared by status updates
	var logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: parseLevel(cfg.LogLevel),
	}))

	var opts = []airport.Option{
		airport.WithTokenValidity(cfg.TokenValidity),
		airport.WithOperationDuration(cfg.OperationDuration),
		airport.WithLogger(logger),
	}

	if cfg.Trace {
		var tracer, shutdown, err = newTracer()
		if err != nil {
			return err
		}
		defer shutdown(context.Background())
		opts = append(opts, airport.WithTracer(tracer))
	}

	var journals []airport.Journal

	if cfg.Journal.Driver != "" {
		var db, err = sql.Open(cfg.Journal.Driver, cfg.Journal.DSN)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		defer db.Close()

		if err := db.PingContext(ctx); err != nil {
			return fmt.Errorf("failed to ping database: %w", err)
		}

		journal, err := airport.NewSQLJournal(ctx, db, cfg.AirportID)
		if err != nil {
			return err
		}
		journals = append(journals, journal)
	}

	if len(cfg.Journal.KafkaBrokers) > 0 {
		var publisher, err = kafkajournal.NewPublisher(cfg.Journal.KafkaBrokers, cfg.Journal.KafkaTopic, logger)
		if err != nil {
			return err
		}
		defer publisher.Close()
		journals = append(journals, publisher)
	}

	if len(journals) > 0 {
		opts = append(opts, airport.WithJournal(multiJournal(journals)))
	}

	var a = airport.NewAirport(cfg.AirportID, opts...)
	for i := range cfg.Runways {
		if err := a.AddRunway(fmt.Sprintf("r_%d", i)); err != nil {
			return err
		}
	}
	for i := range cfg.ParkingStands {
		if err := a.AddParkingStand(fmt.Sprintf("p_%d", i)); err != nil {
			return err
		}
	}

	var sim = &simulation{
		airport: a,
		logger:  logger,
		cfg:     cfg,
	}

	var start = time.Now()
	var err error
	if cfg.Interactive {
		err = sim.runInteractive(ctx)
	} else {
		err = sim.run(ctx)
	}

	var closeCtx, cancel = context.WithTimeout(context.Background(), cfg.OperationDuration+5*time.Second)
	defer cancel()
	if closeErr := a.Close(closeCtx); closeErr != nil && err == nil {
		err = fmt.Errorf("failed to close airport: %w", closeErr)
	}

	fmt.Printf("Elapsed time: %s\n", time.Since(start).Round(time.Millisecond))
	return err
}

// resolveConfig overlays the config file and then re-applies explicitly set flags.
func resolveConfig(flags *pflag.FlagSet) error {
	if configPath != "" {
		var fromFlags = cfg
		if err := loadConfigFile(configPath, &cfg); err != nil {
			return err
		}
		flags.Visit(func(f *pflag.Flag) {
			applyFlag(f.Name, fromFlags, &cfg)
		})
	}

	return cfg.validate()
}

func applyFlag(name string, from config, to *config) {
	switch name {
	case "airport-id":
		to.AirportID = from.AirportID
	case "runways":
		to.Runways = from.Runways
	case "stands":
		to.ParkingStands = from.ParkingStands
	case "aircraft":
		to.Aircraft = from.Aircraft
	case "operation-duration":
		to.OperationDuration = from.OperationDuration
	case "token-validity":
		to.TokenValidity = from.TokenValidity
	case "max-delay":
		to.MaxDelay = from.MaxDelay
	case "retry-interval":
		to.RetryInterval = from.RetryInterval
	case "takeoff":
		to.Takeoff = from.Takeoff
	case "interactive":
		to.Interactive = from.Interactive
	case "trace":
		to.Trace = from.Trace
	case "log-level":
		to.LogLevel = from.LogLevel
	case "db-driver":
		to.Journal.Driver = from.Journal.Driver
	case "db":
		to.Journal.DSN = from.Journal.DSN
	case "kafka-brokers":
		to.Journal.KafkaBrokers = from.Journal.KafkaBrokers
	case "kafka-topic":
		to.Journal.KafkaTopic = from.Journal.KafkaTopic
	}
}

func parseLevel(level string) slog.Level {
	var l slog.Level
	if err := l.UnmarshalText([]byte(level)); err != nil {
		return slog.LevelInfo
	}
	return l
}

// multiJournal fans a movement out to every journal and returns the first error.
type multiJournal []airport.Journal

func (m multiJournal) RecordMovement(ctx context.Context, movement airport.Movement) error {
	var first error
	for _, journal := range m {
		if err := journal.RecordMovement(ctx, movement); err != nil && first == nil {
			first = err
		}
	}
	return first
}
