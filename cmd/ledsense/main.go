package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path"
	"syscall"

	"github.com/go-stack/stack"
	logxi "github.com/mgutz/logxi/v1"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/host/v3"

	"github.com/TeamNorCal/ledsense"
	"github.com/TeamNorCal/ledsense/errors"
	"github.com/TeamNorCal/ledsense/kvstore"
	"github.com/TeamNorCal/ledsense/zscs2016c"
)

var (
	logger = logxi.New("ledsense")
)

func usage() {
	fmt.Fprintln(os.Stderr, path.Base(os.Args[0]))
	fmt.Fprintln(os.Stderr, "usage: ", os.Args[0], "[options] command [args]       color sensor ← I2C, strip → OPC/MQTT (ledsense)")
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintln(os.Stderr, "ledsense calibrates a ZSCS2016C color sensor and drives an LED strip from it")
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintln(os.Stderr, "Commands:")
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintln(os.Stderr, "  calibrate    sample a white then a black surface and save the result")
	fmt.Fprintln(os.Stderr, "  read         print calibrated channel values once")
	fmt.Fprintln(os.Stderr, "  watch        mirror the sensor color onto the strip until interrupted")
	fmt.Fprintln(os.Stderr, "  fill #rrggbb set every pixel to one color")
	fmt.Fprintln(os.Stderr, "  gradient #rrggbb #rrggbb")
	fmt.Fprintln(os.Stderr, "               blend from the first color to the second along the strip")
	fmt.Fprintln(os.Stderr, "  rainbow      animate a rotating color wheel until interrupted")
	fmt.Fprintln(os.Stderr, "  clear        turn every pixel off")
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintln(os.Stderr, "Options:")
	fmt.Fprintln(os.Stderr, "")
	flag.PrintDefaults()
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintln(os.Stderr, "Environment Variables:")
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintln(os.Stderr, "options can also be extracted from environment variables by changing dashes '-' to underscores, using upper case and adding a LEDSENSE_ prefix.")
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintln(os.Stderr, "log levels are handled by the LOGXI env variables, these are documented at https://github.com/mgutz/logxi")
}

func init() {
	flag.Usage = usage
}

func main() {

	cfg, err := loadConfig(flag.CommandLine, os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(2)
	}

	if cfg.Verbose {
		logger.SetLevel(logxi.LevelDebug)
	}

	// Cancel long running commands on an interrupt so that calibration runs
	// are abandoned and the strip is left in a known state
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err = run(ctx, cfg, flag.Args()); err != nil {
		logger.Error(err.Error())
		cancel()
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *Config, args []string) (err errors.Error) {
	if len(args) == 0 {
		flag.Usage()
		return errors.New("no command given").With("stack", stack.Trace().TrimRuntime())
	}

	switch args[0] {
	case "calibrate":
		return runCalibrate(ctx, cfg)
	case "read":
		return runRead(cfg)
	case "watch":
		return runWatch(ctx, cfg)
	case "fill":
		if len(args) != 2 {
			return errors.New("fill expects one color").With("args", args[1:]).With("stack", stack.Trace().TrimRuntime())
		}
		return runFill(cfg, args[1])
	case "gradient":
		if len(args) != 3 {
			return errors.New("gradient expects two colors").With("args", args[1:]).With("stack", stack.Trace().TrimRuntime())
		}
		return runGradient(cfg, args[1], args[2])
	case "rainbow":
		return runRainbow(ctx, cfg)
	case "clear":
		return runClear(cfg)
	}
	return errors.New("unknown command").With("command", args[0]).With("stack", stack.Trace().TrimRuntime())
}

// openSensor initialises the host drivers and opens the sensor on the
// configured bus.  The returned closer releases the bus.
func openSensor(cfg *Config) (dev *zscs2016c.Dev, bus i2c.BusCloser, err errors.Error) {
	if _, errGo := host.Init(); errGo != nil {
		return nil, nil, errors.Wrap(errGo).With("stack", stack.Trace().TrimRuntime())
	}
	bus, errGo := i2creg.Open(cfg.Bus)
	if errGo != nil {
		return nil, nil, errors.Wrap(errGo).With("bus", cfg.Bus).With("stack", stack.Trace().TrimRuntime())
	}
	if dev, err = zscs2016c.New(bus, cfg.AddrBit); err != nil {
		bus.Close()
		return nil, nil, err.With("bus", cfg.Bus)
	}
	logger.Debug("sensor opened", "device", dev.String())
	return dev, bus, nil
}

// openStore selects the calibration store backend.
func openStore(cfg *Config) (store kvstore.Store, closer func() error, err errors.Error) {
	noop := func() error { return nil }

	switch cfg.Store {
	case "memory":
		return kvstore.NewMemory(), noop, nil
	case "file":
		file, err := kvstore.NewFile(cfg.StoreDir)
		if err != nil {
			return nil, nil, err
		}
		return file, noop, nil
	case "redis":
		rdb, err := kvstore.DialRedis(cfg.Redis, cfg.RedisPrefix)
		if err != nil {
			return nil, nil, err
		}
		return rdb, rdb.Close, nil
	}
	return nil, nil, errors.New("unknown store").With("store", cfg.Store).With("stack", stack.Trace().TrimRuntime())
}

func newCalibrator(cfg *Config, reader ledsense.RawReader, opts ...ledsense.Option) (cal *ledsense.Calibrator, closer func() error, err errors.Error) {
	store, closer, err := openStore(cfg)
	if err != nil {
		return nil, nil, err
	}
	opts = append([]ledsense.Option{ledsense.WithLogger(logger)}, opts...)
	return ledsense.NewCalibrator(reader, store, opts...), closer, nil
}
