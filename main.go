package main

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime/debug"
	"sync"
	"time"

	"tunebox/audio"
	"tunebox/gui"
	"tunebox/log"
	"tunebox/player"
	"tunebox/shutdown"
)

var version = "dev"

var shutdownOnce sync.Once

func main() {
	initCrashLog()

	if err := log.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not init logging: %v\n", err)
	}
	log.SessionStart(version)

	app := gui.New()
	p := player.New(audio.System{}, app)
	app.SetPlayer(p)

	sigChan := make(chan os.Signal, 1)
	shutdown.Notify(sigChan)
	go func() {
		<-sigChan
		gracefulShutdown(p)
		app.Quit()
	}()

	app.Run()
	gracefulShutdown(p)
}

// gracefulShutdown runs on window close and on signal; whichever comes
// first wins.
func gracefulShutdown(p *player.Player) {
	shutdownOnce.Do(func() {
		p.Stop()
		log.SessionEnd()
		log.Close()
	})
}

// initCrashLog routes runtime crash output to an append-only file in
// the log directory, before any GUI or audio code runs.
func initCrashLog() {
	dir, err := log.ResolveDir()
	if err != nil {
		return
	}
	log.SetDir(dir)
	if err := log.EnsureDir(); err != nil {
		return
	}
	crashPath := filepath.Join(log.Dir(), "crash_log.txt")
	f, err := os.OpenFile(crashPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return
	}
	fmt.Fprintf(f, "\n=== Session %s [pid=%d] ===\n", time.Now().Format("2006-01-02 15:04:05"), os.Getpid())
	debug.SetCrashOutput(f, debug.CrashOptions{})
}
