// Command oakdemo is a small interactive driver for the oak runtime: a
// REPL where each line you type is an event fed into a running
// transducer, and each cycle's output is printed back.
//
// Commands:
//
//	inc              bump the counter
//	dec              drop the counter
//	wait <seconds>   schedule a DelayedEmitEvent that bumps the counter
//	                 after the given delay, cancellable by typing "cancel"
//	cancel           cancel the pending wait, if any
//	stop             drive the transducer to its terminal state and exit
//	exit / Ctrl-D    quit without stopping the transducer cleanly
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/chzyer/readline"
	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"github.com/haricheung/oak"
)

func main() {
	_ = godotenv.Load(".env")

	homeDir, _ := os.UserHomeDir()
	cacheDir := filepath.Join(homeDir, ".cache", "oakdemo")
	_ = os.MkdirAll(cacheDir, 0755)

	if f, err := os.OpenFile(filepath.Join(cacheDir, "debug.log"),
		os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644); err == nil {
		log.SetOutput(f)
		defer f.Close()
	}

	ctx, cancel := context.WithCancel(context.Background())
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTERM, os.Interrupt)
	go func() {
		select {
		case <-sigCh:
			cancel()
		case <-ctx.Done():
		}
	}()

	proxy := oak.NewBufferedProxy[counterEvent](oak.DefaultBufferedCapacity)
	outputs := oak.NewCallbackSubject(func(_ context.Context, out counterOutput) error {
		fmt.Printf("\033[2m[%s]\033[0m count=%d\n", out.correlationID, out.count)
		return nil
	})

	runDone := make(chan struct{})
	var runErr error
	go func() {
		defer close(runDone)
		_, runErr = oak.Run(
			ctx,
			counterState{},
			updateCounter,
			oak.WithProxy[counterState, counterEvent, counterOutput, struct{}](proxy),
			oak.WithOutputSubject[counterState, counterEvent, counterOutput, struct{}](outputs),
			oak.WithInitialOutput[counterState, counterEvent, counterOutput, struct{}](counterOutput{correlationID: "start", count: 0}),
		)
	}()

	runREPL(ctx, cancel, proxy.Input())

	<-runDone
	if runErr != nil && ctx.Err() == nil {
		fmt.Fprintf(os.Stderr, "oak: run ended with error: %v\n", runErr)
		os.Exit(1)
	}
}

func runREPL(ctx context.Context, cancel context.CancelFunc, input *oak.Input[counterEvent]) {
	fmt.Println("\033[1m\033[36moakdemo\033[0m â€” type inc/dec/wait <seconds>/cancel/stop/exit")

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "\033[36m>\033[0m ",
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "readline init error: %v\n", err)
		cancel()
		return
	}
	defer rl.Close()

	for {
		line, err := rl.Readline()
		if err == readline.ErrInterrupt {
			continue
		}
		if err != nil {
			cancel()
			return
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if line == "exit" || line == "quit" {
			cancel()
			return
		}

		ev, ok := parseLine(line)
		if !ok {
			fmt.Println("unrecognized command")
			continue
		}

		sendCtx, sendCancel := context.WithTimeout(ctx, 2*time.Second)
		err = input.Send(sendCtx, ev)
		sendCancel()
		if err != nil {
			fmt.Fprintf(os.Stderr, "send failed: %v\n", err)
			if ctx.Err() != nil {
				return
			}
		}
		if line == "stop" {
			return
		}
	}
}

func parseLine(line string) (counterEvent, bool) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return counterEvent{}, false
	}
	switch fields[0] {
	case "inc":
		return counterEvent{kind: eventInc, correlationID: uuid.NewString()}, true
	case "dec":
		return counterEvent{kind: eventDec, correlationID: uuid.NewString()}, true
	case "cancel":
		return counterEvent{kind: eventCancelWait, correlationID: uuid.NewString()}, true
	case "stop":
		return counterEvent{kind: eventStop, correlationID: uuid.NewString()}, true
	case "wait":
		if len(fields) != 2 {
			return counterEvent{}, false
		}
		seconds, err := strconv.Atoi(fields[1])
		if err != nil || seconds < 0 {
			return counterEvent{}, false
		}
		return counterEvent{kind: eventWait, correlationID: uuid.NewString(), delay: time.Duration(seconds) * time.Second}, true
	default:
		return counterEvent{}, false
	}
}
