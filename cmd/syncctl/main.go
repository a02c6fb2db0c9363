package main

import (
	"context"
	"encoding/json"
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/docopt/docopt-go"

	"github.com/Marco3041/linkedin-clone/internal/bootstrap"
	"github.com/Marco3041/linkedin-clone/internal/config"
	"github.com/Marco3041/linkedin-clone/internal/docstore"
	chat "github.com/Marco3041/linkedin-clone/internal/modules/chat/service"
	media "github.com/Marco3041/linkedin-clone/internal/modules/media/service"
	"github.com/Marco3041/linkedin-clone/internal/modules/subscription"
	"github.com/Marco3041/linkedin-clone/pkg/storage"
)

const SyncCtlVersion = "0.1.0"

var Out *log.Logger
var Err *log.Logger

func init() {
	Out = log.New(os.Stdout, "", 0)
	Err = log.New(os.Stderr, "", log.Ldate|log.Ltime|log.Lshortfile)
}

func main() {
	usage := `Sync control.

The store is selected from the environment (STORE_DRIVER, DATABASE_URL,
FIREBASE_PROJECT_ID, ...), the same way the server selects it.

Usage:
    syncctl seed [--strict]
    syncctl tail <collection> [--order=<field>] [--desc] [--limit=<n>] [--snapshots=<n>]
    syncctl channel <a> <b>
    syncctl media-gc [--age=<duration>]
    syncctl -h | --help
    syncctl --version

Options:
    -h --help              Show this screen.
    --version              Show version.
    --strict               Write defaults at fixed ids.
    --order=<field>        Order snapshots by this field [default: timestamp].
    --desc                 Newest first.
    --limit=<n>            Keep at most n documents per snapshot.
    --snapshots=<n>        Print this many snapshots then exit.
    --age=<duration>       Only collect uploads older than this [default: 24h].`

	opts, err := docopt.ParseArgs(usage, os.Args[1:], SyncCtlVersion)
	if err != nil {
		panic(err)
	}

	if channel_, _ := opts.Bool("channel"); channel_ {
		channel(opts)
		return
	}

	cfg, err := config.Load()
	if err != nil {
		Err.Fatalf("config: %v", err)
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	infra, err := bootstrap.Open(ctx, cfg)
	if err != nil {
		Err.Fatalf("open: %v", err)
	}
	defer infra.Close()

	if seed_, _ := opts.Bool("seed"); seed_ {
		seed(ctx, opts, infra)
	} else if tail_, _ := opts.Bool("tail"); tail_ {
		tail(ctx, opts, infra)
	} else if mediaGc_, _ := opts.Bool("media-gc"); mediaGc_ {
		mediaGc(ctx, opts, cfg, infra)
	}
}

// channel prints the chat id shared by two users.
func channel(opts docopt.Opts) {
	a, _ := opts.String("<a>")
	b, _ := opts.String("<b>")

	id, err := chat.ChannelID(a, b)
	if err != nil {
		Err.Fatalf("%v", err)
	}
	Out.Printf("%s", id)
}

func seed(ctx context.Context, opts docopt.Opts, infra *bootstrap.Infra) {
	strict, _ := opts.Bool("--strict")
	if err := infra.Seed(ctx, strict); err != nil {
		Err.Fatalf("%v", err)
	}
}

// tail prints every snapshot of a live subscription as one JSON line.
func tail(ctx context.Context, opts docopt.Opts, infra *bootstrap.Infra) {
	collection, _ := opts.String("<collection>")
	order, _ := opts.String("--order")
	desc, _ := opts.Bool("--desc")

	q := docstore.Query{Collection: collection, OrderBy: order}
	if desc {
		q.Direction = docstore.Desc
	}
	if limitStr, err := opts.String("--limit"); err == nil && limitStr != "" {
		limit, err := strconv.Atoi(limitStr)
		if err != nil || limit <= 0 {
			Err.Fatalf("invalid --limit %q", limitStr)
		}
		q.Limit = limit
	}
	maxSnapshots := 0
	if n, err := opts.String("--snapshots"); err == nil && n != "" {
		maxSnapshots, err = strconv.Atoi(n)
		if err != nil {
			Err.Fatalf("invalid --snapshots %q", n)
		}
	}

	manager := subscription.NewManager(infra.Store)
	defer manager.Close()

	sub, err := manager.Subscribe(ctx, q)
	if err != nil {
		Err.Fatalf("subscribe: %v", err)
	}
	defer sub.Cancel()

	printed := 0
	for {
		select {
		case <-ctx.Done():
			return
		case v, ok := <-sub.Updates():
			if !ok {
				return
			}
			if v.State == subscription.StateUnavailable {
				Err.Fatalf("channel unavailable: %v", v.Err)
			}
			if v.State != subscription.StateLive {
				continue
			}
			line, err := json.Marshal(map[string]any{
				"version": v.Version,
				"at":      time.Now().UTC().Format(time.RFC3339Nano),
				"docs":    v.Docs,
			})
			if err != nil {
				Err.Fatalf("encode snapshot: %v", err)
			}
			Out.Printf("%s", line)

			printed++
			if maxSnapshots > 0 && printed >= maxSnapshots {
				return
			}
		}
	}
}

func mediaGc(ctx context.Context, opts docopt.Opts, cfg *config.Config, infra *bootstrap.Infra) {
	ageStr, _ := opts.String("--age")
	age, err := time.ParseDuration(ageStr)
	if err != nil {
		Err.Fatalf("invalid --age %q: %v", ageStr, err)
	}

	fileStorage, err := storage.NewCloudinary(storage.CloudinaryConfig{
		CloudName: cfg.CloudinaryCloudName,
		APIKey:    cfg.CloudinaryAPIKey,
		APISecret: cfg.CloudinaryAPISecret,
		Folder:    cfg.CloudinaryUploadFolder,
	})
	if err != nil {
		Err.Fatalf("%v", err)
	}

	removed, err := media.NewMediaService(infra.Store, fileStorage).CleanupOrphans(ctx, age)
	if err != nil {
		Err.Fatalf("cleanup: %v", err)
	}
	Out.Printf("removed %d orphan uploads", removed)
}
