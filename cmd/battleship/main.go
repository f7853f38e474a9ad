package main

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"battleship/internal/app"
	"battleship/internal/codec"
	"battleship/internal/config"
	"battleship/internal/game"
	"battleship/internal/merkle"
	"battleship/internal/server"
	"battleship/internal/terminal"
	"battleship/internal/zk"
)

func main() {
	cmd, args := "play", os.Args[1:]
	if len(args) > 0 && len(args[0]) > 0 && args[0][0] != '-' {
		cmd, args = args[0], args[1:]
	}

	cfg, err := config.Load()
	if err != nil {
		config.Exitf("%v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	switch cmd {
	case "play":
		err = cmdPlay(ctx, cfg, args)
	case "serve":
		err = cmdServe(ctx, cfg, args)
	case "keys":
		err = cmdKeys(cfg, args)
	case "verify":
		err = cmdVerify(args)
	default:
		usage()
		os.Exit(2)
	}
	if err != nil {
		config.Exitf("%v", err)
	}
}

func usage() {
	fmt.Println(`Battleship: you against the CPU

Commands:
  play   [--size N --ship-length L --ship-orientation H|V --ship-row R --ship-col C
          --random-cpu --seed S --prove --keys ./keys --log-level warn]
  serve  [same flags] --addr :8080
  keys   --size N --keys ./keys
  verify --request verify.json

Environment variables BATTLESHIP_* supply the defaults for every flag.`)
}

func setup(cfg config.Config) (app.Config, zerolog.Logger, *zk.Prover, error) {
	log, err := cfg.Logger()
	if err != nil {
		return app.Config{}, log, nil, err
	}
	zk.SetLogger(log.With().Str("component", "gnark").Logger())

	gcfg, err := cfg.Game()
	if err != nil {
		return app.Config{}, log, nil, err
	}
	if !cfg.Prove {
		return gcfg, log, nil, nil
	}
	depth := merkle.DepthFor(gcfg.BoardSize * gcfg.BoardSize)
	log.Info().Str("keys", cfg.KeysDir).Int("depth", depth).Msg("loading shot keys")
	p, err := zk.Setup(cfg.KeysDir, depth)
	if err != nil {
		return app.Config{}, log, nil, err
	}
	return gcfg, log, p, nil
}

func cmdPlay(ctx context.Context, cfg config.Config, args []string) error {
	fs := flag.NewFlagSet("play", flag.ExitOnError)
	cfg.GameFlags(fs)
	_ = fs.Parse(args)

	gcfg, log, prover, err := setup(cfg)
	if err != nil {
		return err
	}
	opts := []app.Option{app.WithLogger(log)}
	if prover != nil {
		opts = append(opts, app.WithProver(prover))
	}
	c, err := app.New(gcfg, opts...)
	if err != nil {
		return err
	}

	term := terminal.New(os.Stdin, os.Stdout)
	defer term.Close()
	status, err := c.Run(ctx, term)
	if errors.Is(err, context.Canceled) {
		fmt.Println("\nGame abandoned.")
		return nil
	}
	if err != nil {
		return err
	}
	log.Debug().Stringer("status", status).Int("rounds", c.Rounds()).Msg("session over")
	return nil
}

func cmdServe(ctx context.Context, cfg config.Config, args []string) error {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	cfg.GameFlags(fs)
	fs.StringVar(&cfg.Addr, "addr", cfg.Addr, "listen address")
	_ = fs.Parse(args)

	gcfg, log, prover, err := setup(cfg)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           server.New(gcfg, prover, log).Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info().Str("addr", cfg.Addr).Bool("prove", prover != nil).Msg("serving")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

func cmdKeys(cfg config.Config, args []string) error {
	fs := flag.NewFlagSet("keys", flag.ExitOnError)
	fs.IntVar(&cfg.BoardSize, "size", cfg.BoardSize, "board size N")
	fs.StringVar(&cfg.KeysDir, "keys", cfg.KeysDir, "keys directory")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level")
	_ = fs.Parse(args)

	if cfg.BoardSize <= 0 {
		return fmt.Errorf("size must be positive")
	}
	log, err := cfg.Logger()
	if err != nil {
		return err
	}
	zk.SetLogger(log.With().Str("component", "gnark").Logger())

	depth := merkle.DepthFor(cfg.BoardSize * cfg.BoardSize)
	if _, err := zk.Setup(cfg.KeysDir, depth); err != nil {
		return err
	}
	fmt.Println("✓ keys ready, verifying key:", zk.VerifyingKeyPath(cfg.KeysDir, depth))
	return nil
}

// cmdVerify checks a saved /v1/verify request body offline.
func cmdVerify(args []string) error {
	fs := flag.NewFlagSet("verify", flag.ExitOnError)
	reqPath := fs.String("request", "verify.json", "verify request json (same body as POST /v1/verify)")
	_ = fs.Parse(args)

	var req codec.VerifyRequest
	if err := loadJSON(*reqPath, &req); err != nil {
		return err
	}
	rawVK, err := base64.StdEncoding.DecodeString(req.VKB64)
	if err != nil {
		return fmt.Errorf("decode vkB64: %w", err)
	}
	vk, err := zk.ReadVerifyingKey(bytes.NewReader(rawVK))
	if err != nil {
		return fmt.Errorf("read verifying key: %w", err)
	}
	root, err := codec.ParseHex(req.RootHex)
	if err != nil {
		return err
	}
	res, err := app.VerifyShot(vk, root, req.Size, game.Coord{Row: req.Row, Col: req.Col}, req.Payload)
	if err != nil {
		return fmt.Errorf("invalid proof: %w", err)
	}
	fmt.Println(map[uint8]string{0: "MISS", 1: "HIT"}[res.Hit])
	return nil
}

func loadJSON(path string, v any) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return json.NewDecoder(f).Decode(v)
}
