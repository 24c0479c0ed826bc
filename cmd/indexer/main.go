// The indexer reads a travel dataset file, derives the relation graph, and
// publishes everything to the index queue for the worker to embed and
// store.
package main

import (
	"flag"

	"github.com/wanderkit/wanderkit/internal/queue"
	"github.com/wanderkit/wanderkit/internal/util"
	"github.com/wanderkit/wanderkit/pkg/index"
	"github.com/wanderkit/wanderkit/pkg/logger"
	"github.com/wanderkit/wanderkit/pkg/logger/console"
)

func main() {
	util.LoadEnv()

	debug := util.GetEnvBool("DEBUG", false)
	consoleLogger := console.NewConsoleLogger(console.ConsoleLoggerParams{
		Debug: debug,
	})
	logger.Init(consoleLogger)

	datasetPath := flag.String("dataset", "data/vietnam_travel.json", "path to the dataset file")
	flag.Parse()

	records, err := index.ReadDatasetFile(*datasetPath)
	if err != nil {
		logger.Fatal("Failed to read dataset", "path", *datasetPath, "err", err)
	}
	logger.Info("Dataset loaded", "path", *datasetPath, "records", len(records))

	conn := queue.Init()
	defer conn.Close()

	ch, err := conn.Channel()
	if err != nil {
		logger.Fatal("Failed to open channel", "err", err)
	}
	defer ch.Close()

	if err := queue.SetupQueues(ch, queue.Queues); err != nil {
		logger.Fatal("Failed to set up queues", "err", err)
	}

	if err := queue.PublishDataset(ch, records); err != nil {
		logger.Fatal("Failed to publish dataset", "err", err)
	}
}
