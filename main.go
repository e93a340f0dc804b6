package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/joho/godotenv"

	"github.com/StefanoGysin/voxy/internal/config"
	"github.com/StefanoGysin/voxy/internal/models"
	"github.com/StefanoGysin/voxy/internal/service"
	"github.com/StefanoGysin/voxy/internal/service/storage"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "voxy:", err)
		os.Exit(1)
	}
}

func run() error {
	configPath := flag.String("config", "", "path to YAML config file")
	userID := flag.String("user", "local", "user id for this session")
	flag.Parse()

	_ = godotenv.Load()

	var cfg *config.Config
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			return err
		}
		cfg = loaded
	} else {
		cfg = config.Default()
	}

	logger := newLogger(cfg.Logging.Level)
	ctx := context.Background()

	store, err := openStore(ctx, cfg.Storage)
	if err != nil {
		return err
	}
	defer store.Close()

	registry, err := service.NewModelRegistry(cfg.Models)
	if err != nil {
		return err
	}

	orchestrator, err := service.NewOrchestrator(ctx, cfg, store, registry, logger)
	if err != nil {
		return err
	}

	return repl(ctx, orchestrator, *userID)
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}

func openStore(ctx context.Context, cfg config.StorageConfig) (storage.Store, error) {
	switch cfg.Backend {
	case "memory":
		return storage.NewMemoryStore(), nil
	case "bolt":
		return storage.OpenBoltStore(cfg.Path)
	case "postgres":
		return storage.OpenPostgresStore(ctx, cfg.DSN)
	default:
		return nil, fmt.Errorf("unknown storage backend: %s", cfg.Backend)
	}
}

func repl(ctx context.Context, orchestrator *service.Orchestrator, userID string) error {
	fmt.Println("voxy: type a message, /image <url> [question], /threads, /new, or /quit")

	threadID := ""
	scanner := bufio.NewScanner(os.Stdin)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			return scanner.Err()
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		req := models.TurnRequest{ThreadID: threadID, UserID: userID}

		switch {
		case line == "/quit" || line == "/exit":
			return nil
		case line == "/new":
			threadID = ""
			fmt.Println("started a new thread")
			continue
		case line == "/threads":
			infos, err := orchestrator.ListThreads(ctx)
			if err != nil {
				fmt.Println("error:", err)
				continue
			}
			for _, info := range infos {
				fmt.Printf("%s  %s\n", info.ID, info.Title)
			}
			continue
		case strings.HasPrefix(line, "/delete "):
			id := strings.TrimSpace(strings.TrimPrefix(line, "/delete "))
			if err := orchestrator.DeleteThread(ctx, id); err != nil {
				fmt.Println("error:", err)
			} else if id == threadID {
				threadID = ""
			}
			continue
		case strings.HasPrefix(line, "/image "):
			fields := strings.Fields(strings.TrimPrefix(line, "/image "))
			if len(fields) == 0 {
				fmt.Println("usage: /image <url> [question]")
				continue
			}
			req.ImageURL = fields[0]
			req.Message = strings.Join(fields[1:], " ")
		default:
			req.Message = line
		}

		resp := orchestrator.ProcessTurn(ctx, req)
		threadID = resp.ThreadID
		printResponse(resp)
	}
}

func printResponse(resp *models.TurnResponse) {
	fmt.Println(resp.Response)

	meta := fmt.Sprintf("[%s] route=%s", resp.ThreadID, resp.Route)
	if len(resp.ToolsUsed) > 0 {
		meta += " tools=" + strings.Join(resp.ToolsUsed, ",")
	}
	meta += fmt.Sprintf(" tokens=%d", resp.Usage.TotalTokens)
	if resp.Usage.CostUSD != nil {
		meta += fmt.Sprintf(" cost=$%.6f", *resp.Usage.CostUSD)
		if resp.Usage.CostPartial {
			meta += " (partial)"
		}
	}
	if resp.Incomplete {
		meta += " incomplete"
	}
	if resp.Error != nil {
		meta += fmt.Sprintf(" error=%s", resp.Error.Kind)
	}
	fmt.Println(meta)
}
