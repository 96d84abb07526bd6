// Command rrdemo exercises a roundrobin.Balancer with one goroutine adding
// servers, one removing them and several selecting from the list.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/zeebo/pcg"

	"github.com/zeebo/doublebuf/roundrobin"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(args []string) error {
	fs := flag.NewFlagSet("rrdemo", flag.ContinueOnError)
	path := fs.String("config", "", "path to a yaml config file")
	duration := fs.Duration("duration", 0, "how long to run")
	interval := fs.Duration("interval", 0, "pause between actions of a worker")
	selectors := fs.Int("selectors", 0, "number of selecting goroutines")
	ids := fs.Uint("ids", 0, "server ids are drawn from [0, ids)")
	level := fs.String("log-level", "", "debug | info | warn | error")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := loadConfig(*path)
	if err != nil {
		return err
	}
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "duration":
			cfg.Duration = *duration
		case "interval":
			cfg.Interval = *interval
		case "selectors":
			cfg.Selectors = *selectors
		case "ids":
			cfg.IDs = uint32(*ids)
		case "log-level":
			cfg.LogLevel = *level
		}
	})
	if err := cfg.Validate(); err != nil {
		return err
	}

	lvl, _ := cfg.level()
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Duration)
	defer cancel()

	d := &demo{cfg: cfg, log: log}
	d.run(ctx)
	return nil
}

type demo struct {
	cfg   Config
	log   *slog.Logger
	lb    roundrobin.Balancer
	count int64 // servers believed present
}

func (d *demo) run(ctx context.Context) {
	var wg sync.WaitGroup
	wg.Add(2 + d.cfg.Selectors)
	go func() {
		defer wg.Done()
		d.every(ctx, d.add)
	}()
	go func() {
		defer wg.Done()
		d.every(ctx, d.remove)
	}()
	for i := 0; i < d.cfg.Selectors; i++ {
		go func() {
			defer wg.Done()
			s := d.lb.Selector()
			defer s.Close()
			d.every(ctx, func() time.Duration { return d.selectFrom(s) })
		}()
	}
	wg.Wait()

	list, err := d.lb.Servers()
	if err != nil {
		d.log.Error("listing servers", "err", err)
	}
	d.log.Info("done", "servers", list)
	d.lb.Close()
}

// every calls fn until ctx is done, pausing for the interval plus whatever
// extra time fn asks for.
func (d *demo) every(ctx context.Context, fn func() time.Duration) {
	timer := time.NewTimer(0)
	defer timer.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
		}
		timer.Reset(d.cfg.Interval + fn())
	}
}

func (d *demo) add() time.Duration {
	id := roundrobin.ServerID(pcg.Uint32n(d.cfg.IDs))
	if !d.lb.Add(id) {
		d.log.Debug("add skipped", "id", id)
	} else {
		d.log.Info("added", "id", id, "count", atomic.AddInt64(&d.count, 1))
	}
	if atomic.LoadInt64(&d.count) > int64(d.cfg.Target) {
		return 5 * d.cfg.Interval
	}
	return 0
}

func (d *demo) remove() time.Duration {
	id := roundrobin.ServerID(pcg.Uint32n(d.cfg.IDs))
	if !d.lb.Remove(id) {
		d.log.Debug("remove skipped", "id", id)
	} else {
		d.log.Info("removed", "id", id, "count", atomic.AddInt64(&d.count, -1))
	}
	if atomic.LoadInt64(&d.count) <= int64(d.cfg.Target) {
		return 5 * d.cfg.Interval
	}
	return 0
}

func (d *demo) selectFrom(s *roundrobin.Selector) time.Duration {
	id, err := s.Select()
	switch {
	case errors.Is(err, roundrobin.ErrNoServers):
		d.log.Warn("select failed", "err", err)
	case err != nil:
		d.log.Error("select failed", "err", err)
	default:
		d.log.Info("selected", "id", id)
	}
	return 0
}
