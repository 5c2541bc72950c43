// Lowisko - Map-Centric Fishing Log and Lake Analytics
// Copyright 2026 Lowisko Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/lowisko/lowisko

// Package main is the Lowisko terminal client. It talks to a running
// Lowisko server, keeps the auth token and map state in a local
// BadgerDB store, and offers an interactive lake map.
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/lowisko/lowisko/internal/apiclient"
	"github.com/lowisko/lowisko/internal/config"
	"github.com/lowisko/lowisko/internal/localstore"
	"github.com/lowisko/lowisko/internal/models"
	"github.com/lowisko/lowisko/internal/session"
	"github.com/lowisko/lowisko/internal/supervisor/services"
)

const usageText = `Usage: lowisko-client [flags] <command> [args]

Commands:
  login <email>               sign in (password read from stdin)
  register <username> <email> create an account (password read from stdin)
  logout                      sign out and forget the stored token
  whoami                      show the current session
  catches [lake-id]           list recorded catches, optionally per lake
  record <lake-id> <fish> <date> <time> [length-cm] [weight-kg]
                              record a catch (date YYYY-MM-DD, time HH:MM:SS)
  stats                       show your fishing statistics
  global                      show platform statistics
  map                         open the interactive lake map

Flags:
`

func main() {
	cfg, err := config.LoadClient()
	if err != nil {
		fatalf("load config: %v", err)
	}

	apiURL := flag.String("api", envOr("LOWISKO_API", "http://localhost:8080"), "Lowisko server base URL")
	dataDir := flag.String("data", cfg.LocalStore.Path, "local state directory")
	timeout := flag.Duration("timeout", 10*time.Second, "request timeout")
	flag.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), usageText)
		flag.PrintDefaults()
	}
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		flag.Usage()
		os.Exit(2)
	}

	var store localstore.Store
	var gc services.GCStore
	if cfg.LocalStore.InMemory {
		store = localstore.NewMemoryStore()
	} else {
		badgerStore, err := localstore.OpenBadger(*dataDir)
		if err != nil {
			fatalf("open local store: %v", err)
		}
		defer badgerStore.Close()
		store = badgerStore
		gc = badgerStore
	}

	client := apiclient.NewClient(*apiURL, *timeout)
	sess := session.NewStore(client, store)

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	app := &app{client: client, sess: sess, store: store, gc: gc, cfg: cfg}

	switch args[0] {
	case "login":
		err = app.login(ctx, args[1:])
	case "register":
		err = app.register(ctx, args[1:])
	case "logout":
		err = app.logout(ctx)
	case "whoami":
		err = app.whoami(ctx)
	case "catches":
		err = app.catches(ctx, args[1:])
	case "record":
		err = app.record(ctx, args[1:])
	case "stats":
		err = app.stats(ctx)
	case "global":
		err = app.global(ctx)
	case "map":
		err = app.runMap()
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n", args[0])
		flag.Usage()
		os.Exit(2)
	}

	if err != nil {
		fatalf("%v", err)
	}
}

type app struct {
	client *apiclient.Client
	sess   *session.Store
	store  localstore.Store
	cfg    *config.Config

	// gc is nil when the local store has no value log to compact.
	gc         services.GCStore
	gcInterval time.Duration
}

func (a *app) login(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return errors.New("usage: login <email>")
	}
	password, err := promptPassword()
	if err != nil {
		return err
	}
	if err := a.sess.Login(ctx, args[0], password); err != nil {
		return sessionError(a.sess)
	}
	user := a.sess.User()
	fmt.Printf("Zalogowano jako %s (%s)\n", user.Username, user.Email)
	return nil
}

func (a *app) register(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return errors.New("usage: register <username> <email>")
	}
	password, err := promptPassword()
	if err != nil {
		return err
	}
	if err := a.sess.Register(ctx, args[0], args[1], password); err != nil {
		return sessionError(a.sess)
	}
	user := a.sess.User()
	fmt.Printf("Utworzono konto %s (%s)\n", user.Username, user.Email)
	return nil
}

func (a *app) logout(ctx context.Context) error {
	a.sess.Logout(ctx)
	fmt.Println("Wylogowano")
	return nil
}

func (a *app) whoami(ctx context.Context) error {
	// Verification failures stay silent; whatever the reason, the user
	// simply is not logged in.
	if a.sess.VerifyToken(ctx) != nil {
		fmt.Println("Niezalogowany")
		return nil
	}
	user := a.sess.User()
	fmt.Printf("%s <%s>\n", user.Username, user.Email)
	return nil
}

func (a *app) catches(ctx context.Context, args []string) error {
	lakeID := ""
	if len(args) > 0 {
		lakeID = args[0]
	}
	catches, err := a.client.ListFishCatches(ctx, lakeID)
	if err != nil {
		return err
	}
	if len(catches) == 0 {
		fmt.Println("Brak połowów")
		return nil
	}
	for _, c := range catches {
		line := fmt.Sprintf("%s %s  %-12s %s", c.Date, c.Time, c.Fish, c.LakeID)
		if c.Length != nil {
			line += fmt.Sprintf("  %.1f cm", *c.Length)
		}
		if c.Weight != nil {
			line += fmt.Sprintf("  %.2f kg", *c.Weight)
		}
		fmt.Println(line)
	}
	return nil
}

func (a *app) record(ctx context.Context, args []string) error {
	if len(args) < 4 || len(args) > 6 {
		return errors.New("usage: record <lake-id> <fish> <date> <time> [length-cm] [weight-kg]")
	}
	req := models.CreateFishCatch{
		LakeID: args[0],
		Fish:   args[1],
		Date:   args[2],
		Time:   args[3],
	}
	if len(args) > 4 {
		length, err := strconv.ParseFloat(args[4], 64)
		if err != nil {
			return fmt.Errorf("invalid length %q", args[4])
		}
		req.Length = &length
	}
	if len(args) > 5 {
		weight, err := strconv.ParseFloat(args[5], 64)
		if err != nil {
			return fmt.Errorf("invalid weight %q", args[5])
		}
		req.Weight = &weight
	}

	// An expired token is dropped here so the catch goes in anonymously
	// instead of failing.
	_ = a.sess.VerifyToken(ctx)

	created, err := a.client.CreateFishCatch(ctx, a.sess.Token(), req)
	if err != nil {
		return err
	}
	fmt.Printf("Zapisano połów #%d: %s (%s)\n", created.ID, created.Fish, created.LakeID)
	return nil
}

var errNotLoggedIn = errors.New(`niezalogowany: użyj "lowisko-client login <email>"`)

func (a *app) stats(ctx context.Context) error {
	if a.sess.VerifyToken(ctx) != nil {
		return errNotLoggedIn
	}
	stats, err := a.client.UserStats(ctx, a.sess.Token())
	if err != nil {
		return err
	}
	o := stats.Overview
	fmt.Printf("Połowy: %d   Jeziora: %d   Gatunki: %d\n", o.TotalCatches, o.LakesVisited, o.SpeciesCaught)
	fmt.Printf("Średnia waga: %s kg   Średnia długość: %s cm\n", o.AvgWeight, o.AvgLength)
	if o.BiggestFishWeight != nil {
		fmt.Printf("Największa ryba: %.2f kg\n", *o.BiggestFishWeight)
	}
	for _, lake := range stats.FavoriteLakes {
		fmt.Printf("  %s: %d połowów\n", lake.LakeID, lake.CatchCount)
	}
	return nil
}

func (a *app) global(ctx context.Context) error {
	stats, err := a.client.GlobalStats(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("Użytkownicy: %d   Połowy: %d   Jeziora: %d\n",
		stats.TotalUsers, stats.TotalCatches, stats.TotalLakesWithCatches)
	if bf := stats.BiggestFish; bf != nil {
		fmt.Printf("Największa ryba: %s %.2f kg (%s, %s)\n", bf.Species, bf.Weight, bf.Lake, bf.CaughtBy)
	}
	for _, s := range stats.MostPopularSpecies {
		fmt.Printf("  %-12s %d (%.0f%%)\n", s.Species, s.CatchCount, s.Percentage)
	}
	return nil
}

func sessionError(sess *session.Store) error {
	if failure := sess.State().Failure; failure != nil {
		return errors.New(failure.Message)
	}
	return errors.New("Wystąpił błąd sieci")
}

func promptPassword() (string, error) {
	fmt.Print("Hasło: ")
	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func fatalf(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
