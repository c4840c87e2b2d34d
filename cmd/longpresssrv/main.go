package main

import (
	"bufio"
	"flag"
	"fmt"
	"github.com/jypelle/longpress/internal/srv"
	"github.com/jypelle/longpress/internal/version"
	"github.com/sirupsen/logrus"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"
)

const configSuffix = "longpress"

func main() {

	// Logger
	logrus.SetFormatter(&logrus.TextFormatter{ForceColors: true})

	mainCommand := filepath.Base(os.Args[0])

	// region Flags and Commands definition

	// Debug Mode
	debugMode := flag.Bool("d", false, "Enable debug mode")

	// Simulation Mode
	simulationMode := flag.Bool("s", false, "Enable simulation mode (no GPIO, in-memory display)")

	// Simulation window
	windowMode := flag.Bool("w", false, "Show the simulated display in a window (simulation mode, window build)")

	// User config dir
	defaultConfigDir := "./." + configSuffix
	if userConfigDir, err := os.UserConfigDir(); err == nil {
		defaultConfigDir = filepath.Join(userConfigDir, configSuffix)
	}
	configDir := flag.String("c", defaultConfigDir, "Location of longpress config folder")

	// Usage
	flag.Usage = func() {
		fmt.Printf("\nUsage: %s [OPTIONS] [COMMAND]\n", mainCommand)
		fmt.Printf("\nLong press button monitor with OLED feedback\n")
		fmt.Printf("\nOptions:\n")
		flag.PrintDefaults()
		fmt.Printf("\nCommands:\n")
		fmt.Printf("  run       Run server\n")
		fmt.Printf("  version   Show the version number\n")
		fmt.Printf("\nRun '%s COMMAND --help' for more information on a command.\n", mainCommand)
	}

	// run command
	runCmd := flag.NewFlagSet("run", flag.ExitOnError)

	runCmd.Usage = func() {
		fmt.Printf("\nUsage: %s run\n", mainCommand)
		fmt.Printf("\nRun the server until ENTER is pressed\n")
	}

	// version command
	versionCmd := flag.NewFlagSet("version", flag.ExitOnError)

	versionCmd.Usage = func() {
		fmt.Printf("\nUsage: %s version\n", mainCommand)
		fmt.Printf("\nShow the version information\n")
	}

	// endregion

	// region Flags and Commands Parsing
	flag.Parse()

	command := "run"
	if flag.NArg() > 0 {
		command = flag.Arg(0)
	}

	switch command {
	case "run":
		if flag.NArg() > 0 {
			runCmd.Parse(flag.Args()[1:])
		}
		if runCmd.NArg() > 0 {
			fmt.Printf("\n\"%s %s\" accepts no arguments\n", mainCommand, command)
			runCmd.Usage()
			os.Exit(1)
		}
	case "version":
		versionCmd.Parse(flag.Args()[1:])
		if versionCmd.NArg() > 0 {
			fmt.Printf("\n\"%s %s\" accepts no arguments\n", mainCommand, command)
			versionCmd.Usage()
			os.Exit(1)
		}
		fmt.Printf("Version %s\n", version.AppVersion)
		os.Exit(0)
	default:
		fmt.Printf("\n%s is not a longpress command\n", command)
		flag.Usage()
		os.Exit(1)
	}
	// endregion

	if *debugMode {
		logrus.SetLevel(logrus.DebugLevel)
		logrus.SetFormatter(&logrus.TextFormatter{ForceColors: true, FullTimestamp: true, TimestampFormat: time.RFC3339Nano})
		logrus.Printf("Debug mode activated")
	}

	// Create longpress server
	serverApp, err := srv.NewServerApp(*configDir, *debugMode, *simulationMode, *windowMode)
	if err != nil {
		logrus.Errorf("Unable to start: %v", err)
		os.Exit(1)
	}

	if err = serverApp.Start(); err != nil {
		logrus.Errorf("Unable to start: %v", err)
		os.Exit(1)
	}

	// Listen stop signal
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, os.Interrupt, syscall.SIGTERM)

	enter := make(chan bool, 1)
	go func() {
		fmt.Println("Press ENTER to stop")
		if _, err := bufio.NewReader(os.Stdin).ReadString('\n'); err != nil {
			// No terminal, wait for a signal
			logrus.Debugf("Stdin closed: %v", err)
			return
		}
		enter <- true
	}()

	select {
	case sig := <-ch:
		logrus.Infof("Received signal: %v", sig)
	case <-enter:
	}

	serverApp.Stop()
	os.Exit(0)
}
