package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"

	"github.com/redis/go-redis/v9"

	"github.com/alexbotov/hirez/internal/config"
	"github.com/alexbotov/hirez/pkg/hirez"
	"github.com/alexbotov/hirez/pkg/hirez/redisstore"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "usage: hirez <method> [args...]")
		fmt.Fprintln(os.Stderr, "       hirez ping")
		os.Exit(2)
	}
	if err := run(os.Args[1], os.Args[2:]); err != nil {
		log.Fatal(err)
	}
}

func run(method string, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	baseURL, err := cfg.API.ResolveBaseURL()
	if err != nil {
		return err
	}

	cc := hirez.DefaultConfig()
	cc.BaseURL = baseURL
	cc.DevID = cfg.API.DevID
	cc.AuthKey = cfg.API.AuthKey
	cc.Timeout = cfg.API.Timeout
	cc.Delay = cfg.API.Delay
	cc.SessionTTL = cfg.API.SessionTTL
	cc.Logger = slog.New(slog.NewTextHandler(os.Stderr, nil))

	if cfg.Redis.Addr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer rdb.Close()
		cc.Store = redisstore.New(rdb)
	}

	client, err := hirez.NewClient(cc)
	if err != nil {
		return err
	}
	defer client.Close()

	ctx := context.Background()
	if method == "ping" {
		out, err := client.Ping(ctx)
		if err != nil {
			return err
		}
		fmt.Println(out)
		return nil
	}

	out, err := client.Call(ctx, method, args...)
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}
