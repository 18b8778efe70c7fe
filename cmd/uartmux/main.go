// Command uartmux multiplexes access to a local serial device over TCP,
// or bridges it directly to the local console.
package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/exonlabs/go-uartmux/internal/server"
	"github.com/exonlabs/go-uartmux/internal/terminal"
	"github.com/exonlabs/go-uartmux/pkg/unix/psutils"
	"github.com/exonlabs/go-uartmux/pkg/xlog"
)

const defaultPort = "5000"

func usage() {
	fmt.Fprintln(os.Stderr, "usage:")
	fmt.Fprintln(os.Stderr, "  uartmux [-x <level>] [<port>]         start the multiplexer server")
	fmt.Fprintln(os.Stderr, "  uartmux -o <device> [<setting>...]    terminal bridge, exit on device loss")
	fmt.Fprintln(os.Stderr, "  uartmux -O <device> [<setting>...]    terminal bridge, auto-reconnect")
}

func main() {
	os.Exit(run())
}

func run() int {
	var debug int
	flag.IntVar(&debug, "x", 0, "debug verbosity `level` (1: debug, 2 or more: trace)")
	var bridgeOnce string
	flag.StringVar(&bridgeOnce, "o", "", "direct terminal bridge to `device`, exit on device loss")
	var bridgeKeep string
	flag.StringVar(&bridgeKeep, "O", "", "direct terminal bridge to `device`, auto-reconnect")
	flag.Usage = usage
	flag.Parse()

	log := xlog.NewLogger("uartmux")
	if debug > 0 {
		log.Level = xlog.DEBUG
	}
	if debug > 1 {
		log.Level = xlog.TRACE1
	}

	switch {
	case bridgeOnce != "":
		return runTerminal(bridgeOnce, flag.Args(), false, log)
	case bridgeKeep != "":
		return runTerminal(bridgeKeep, flag.Args(), true, log)
	default:
		return runServer(flag.Args(), log)
	}
}

func runServer(args []string, log *xlog.Logger) int {
	port := defaultPort
	if len(args) > 0 {
		port = args[0]
	}
	if _, err := strconv.Atoi(port); err != nil {
		fmt.Fprintf(os.Stderr, "invalid port: %s\n", port)
		return 1
	}

	psutils.SetProcTitle("uartmux:" + port)

	srv := server.New(":"+port, server.DefaultConnectionsLimit, log)

	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigc
		log.Info("SIGNAL -- shutdown requested")
		srv.Shutdown()
	}()

	if err := srv.Run(); err != nil {
		if errors.Is(err, server.ErrSetupFatal) {
			fmt.Fprintf(os.Stderr, "%s\n", err)
			return 1
		}
		fmt.Fprintf(os.Stderr, "%s\n", err)
		return 1
	}
	return 0
}

func runTerminal(device string, settings []string, keepOpen bool, log *xlog.Logger) int {
	psutils.SetProcTitle("uartmux:" + device)

	client := terminal.New(device, settings, keepOpen, log)
	if err := client.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", err)
		return 1
	}
	return 0
}
