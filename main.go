// Copyright (c) 2020-present devguard GmbH

package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/nbuchwitz/test-serial/echo"
	"github.com/nbuchwitz/test-serial/port"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	bugst "go.bug.st/serial"
)

type flags struct {
	config          string
	device          string
	baud            int
	rs485           bool
	responseTimeout time.Duration
	runs            int
}

func main() {
	logrus.SetOutput(os.Stderr)
	logrus.SetFormatter(&Formatter{})

	var f flags
	var verbose bool

	rootCmd := &cobra.Command{
		Use:           "test-serial",
		Short:         "test the serial connection between two devices",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if verbose {
				logrus.SetLevel(logrus.DebugLevel)
			}
		},
	}
	rootCmd.PersistentFlags().StringVar(&f.config, "config", "", "yaml file with flag defaults")
	rootCmd.PersistentFlags().StringVarP(&f.device, "device", "d", "", "serial device to use")
	rootCmd.PersistentFlags().IntVarP(&f.baud, "baud", "b", 115200, "baudrate for the interface")
	rootCmd.PersistentFlags().BoolVar(&f.rs485, "rs485", false, "use the interface in RS485 mode")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log every echo round")

	cc := &cobra.Command{
		Use:   "server",
		Short: "echo back everything received on the device",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := f.load(cmd); err != nil {
				return err
			}
			return runServer(&f)
		},
	}
	rootCmd.AddCommand(cc)

	cc = &cobra.Command{
		Use:   "client",
		Short: "send test payloads and verify the echoes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := f.load(cmd); err != nil {
				return err
			}
			return runClient(&f)
		},
	}
	cc.Flags().DurationVar(&f.responseTimeout, "response-timeout", echo.DefaultResponseTimeout, "how long to wait for an echo")
	cc.Flags().IntVar(&f.runs, "runs", echo.DefaultRuns, "number of echo rounds")
	rootCmd.AddCommand(cc)

	cc = &cobra.Command{
		Use:   "list",
		Short: "list the serial ports on this host",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList()
		},
	}
	rootCmd.AddCommand(cc)

	err := rootCmd.Execute()
	if err != nil {
		logrus.Error(err)
		os.Exit(1)
	}
}

func (self *flags) open() (port.Port, error) {
	if self.device == "" {
		return nil, fmt.Errorf("--device is required")
	}
	return port.Open(port.Config{
		Device: self.device,
		Baud:   self.baud,
		RS485:  self.rs485,
	})
}

func runServer(f *flags) error {
	p, err := f.open()
	if err != nil {
		return err
	}
	defer p.Close()

	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	stop := make(chan struct{})
	go func() {
		<-sigc
		close(stop)
		go func() {
			// second signal forces the exit
			<-sigc
			p.Close()
			os.Exit(1)
		}()
	}()

	logrus.Infof("echo server on %s at %d baud", f.device, f.baud)
	return echo.Serve(p, stop)
}

func runClient(f *flags) error {
	p, err := f.open()
	if err != nil {
		return err
	}
	defer p.Close()

	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigc
		p.Close()
		os.Exit(1)
	}()

	client := &echo.Client{
		Port:            p,
		Runs:            f.runs,
		ResponseTimeout: f.responseTimeout,
	}
	if err := client.Run(); err != nil {
		return err
	}

	fmt.Println("TEST OK")
	return nil
}

func runList() error {
	ports, err := bugst.GetPortsList()
	if err != nil {
		return err
	}
	if len(ports) == 0 {
		fmt.Println("no serial ports found")
		return nil
	}
	for _, p := range ports {
		fmt.Println(p)
	}
	return nil
}
