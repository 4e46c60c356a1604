package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"treescape/local-app/src/pkg/adapter"
	"treescape/local-app/src/pkg/cli"
	"treescape/local-app/src/pkg/config"
	"treescape/local-app/src/pkg/event"
	"treescape/local-app/src/pkg/generator"
	"treescape/local-app/src/pkg/log"
	"treescape/local-app/src/pkg/model"
	"treescape/local-app/src/pkg/session"
	"treescape/local-app/src/pkg/storage"
	"treescape/local-app/src/pkg/tree"
)

// bootstrap initializes and runs the Treescape application.
// It sets up signal handling, loads configuration, initializes components
// (logger, storage, node generator, tree engine, session manager, adapter
// manager), runs the CLI, and handles graceful shutdown.
// Returns an error if any part of the initialization or execution fails.
func bootstrap(configPath, source, browsePath string) error {
	// Set up channel to receive interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	// Load configuration
	config.SetConfigPath(configPath)
	if err := config.ConfigLoad(); err != nil {
		return fmt.Errorf("failed to load configuration: %v", err)
	}
	cfg := config.ConfigGet()
	if source != "" {
		cfg.Source = source
	}
	if browsePath != "" {
		cfg.BrowseRoot = browsePath
	}

	// Initialize logger
	logger, err := log.NewLogger(cfg, log.LevelInfo)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %v", err)
	}
	defer func() {
		if err := logger.Close(); err != nil {
			fmt.Printf("Failed to close logger: %v\n", err)
		}
	}()

	logger.Info(context.Background(), "Application started", log.Fields{"source": cfg.Source})

	// Initialize event manager
	eventManager := event.NewEventManager(logger)

	// Build the node generator for the configured source
	gen, cleanup, err := buildGenerator(cfg, eventManager, logger)
	if err != nil {
		logger.Error(context.Background(), "Failed to initialize node generator", log.Fields{"error": err})
		return fmt.Errorf("failed to initialize node generator: %v", err)
	}
	defer cleanup()

	logger.Info(context.Background(), "Node generator initialized", log.Fields{"source": cfg.Source})

	// Initialize tree engine
	engine, err := tree.NewEngine(gen, eventManager, logger)
	if err != nil {
		logger.Error(context.Background(), "Failed to initialize tree engine", log.Fields{"error": err})
		return fmt.Errorf("failed to initialize tree engine: %v", err)
	}

	// Initialize session manager
	sessionManager := session.NewSessionManager(engine, cfg, logger)
	defer sessionManager.Stop()

	// Initialize adapter manager (which includes CLI adapter initialization)
	adapterManager, err := adapter.NewAdapterManager(sessionManager, logger)
	if err != nil {
		logger.Error(context.Background(), "Failed to initialize adapter manager", log.Fields{"error": err})
		return fmt.Errorf("failed to initialize adapter manager: %v", err)
	}
	defer adapterManager.Shutdown()

	// Initialize CLI
	cliInstance, err := cli.NewCLI(adapterManager.CLIAdapter(), logger)
	if err != nil {
		logger.Error(context.Background(), "Failed to initialize CLI", log.Fields{"error": err})
		return fmt.Errorf("failed to initialize CLI: %v", err)
	}

	// Set up graceful shutdown
	go func() {
		<-sigChan
		logger.Info(context.Background(), "Received interrupt signal. Shutting down...", nil)
		fmt.Println("\nReceived interrupt signal. Shutting down...")
		cliInstance.Stop()
	}()

	// Run CLI
	if err := cliInstance.Run(); err != nil {
		logger.Error(context.Background(), "CLI error", log.Fields{"error": err})
		return fmt.Errorf("CLI error: %v", err)
	}

	logger.Info(context.Background(), "Application shutting down", nil)
	fmt.Println("Goodbye!")

	return nil
}

// buildGenerator constructs the node generator for the configured source and
// returns it with a cleanup function for whatever it holds open.
func buildGenerator(cfg *model.Config, eventManager *event.EventManager, logger *log.Logger) (generator.Generator[model.Item], func(), error) {
	switch cfg.Source {
	case "demo":
		return generator.NewStaticGenerator(demoTree()), func() {}, nil

	case "fs":
		fsGen, err := generator.NewFSGenerator(cfg.BrowseRoot, eventManager, logger)
		if err != nil {
			return nil, nil, err
		}
		if err := fsGen.Watch(); err != nil {
			logger.Warn(context.Background(), "Filesystem watcher unavailable", log.Fields{"error": err})
		}
		return fsGen, func() { fsGen.Close() }, nil

	case "sqlite":
		store, err := storage.NewStorage(cfg, logger)
		if err != nil {
			return nil, nil, err
		}
		if _, err := store.Seed(context.Background()); err != nil {
			store.Close()
			return nil, nil, err
		}
		gen, err := generator.NewSQLiteGenerator(store, logger)
		if err != nil {
			store.Close()
			return nil, nil, err
		}
		return gen, func() { store.Close() }, nil

	default:
		return nil, nil, fmt.Errorf("unknown source '%s' (want demo, sqlite or fs)", cfg.Source)
	}
}

// demoTree is the built-in sample served by the demo source.
func demoTree() *generator.StaticNode {
	return &generator.StaticNode{
		Key:  "demo",
		Item: model.Item{Name: "demo"},
		Children: []generator.StaticNode{
			{
				Key:  "demo/projects",
				Item: model.Item{Name: "projects"},
				Children: []generator.StaticNode{
					{Key: "demo/projects/treescape", Item: model.Item{Name: "treescape"}},
					{Key: "demo/projects/archive", Item: model.Item{Name: "archive"}},
				},
			},
			{
				Key:  "demo/notes",
				Item: model.Item{Name: "notes"},
				Children: []generator.StaticNode{
					{Key: "demo/notes/today", Item: model.Item{Name: "today"}},
				},
			},
		},
	}
}
