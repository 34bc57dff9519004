package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/go-stack/stack"
	"github.com/google/uuid"

	"github.com/TeamNorCal/ledsense"
	"github.com/TeamNorCal/ledsense/colors"
	"github.com/TeamNorCal/ledsense/errors"
	"github.com/TeamNorCal/ledsense/model"
)

// multiOutput drives several outputs with the same pixels
type multiOutput []ledsense.Output

func (m multiOutput) Set(index int, color colors.Rgb) {
	for _, out := range m {
		out.Set(index, color)
	}
}

func (m multiOutput) Show() (err error) {
	for _, out := range m {
		shower, isShower := out.(ledsense.Shower)
		if !isShower {
			continue
		}
		if errGo := shower.Show(); errGo != nil && err == nil {
			err = errGo
		}
	}
	return err
}

// openStrip builds the strip from the configured outputs, falling back to the
// terminal.  The MQTT output is returned separately so readings can also be
// published through it.
func openStrip(cfg *Config) (strip *ledsense.Strip, mq *ledsense.MQTTOutput, closer func(), err errors.Error) {
	outputs := multiOutput{}
	closers := []func(){}

	if len(cfg.OPC) != 0 {
		opc := ledsense.NewOPCOutput(cfg.OPC, byte(cfg.OPCChannel), cfg.Pixels)
		outputs = append(outputs, opc)
		closers = append(closers, func() { opc.Close() })
	}
	if len(cfg.MQTT) != 0 {
		client, err := ledsense.DialMQTT(cfg.MQTT, "ledsense-"+uuid.New().String())
		if err != nil {
			for _, c := range closers {
				c()
			}
			return nil, nil, nil, err
		}
		mq = ledsense.NewMQTTOutput(client, cfg.MQTTTopic, cfg.Pixels)
		outputs = append(outputs, mq)
		closers = append(closers, func() { client.Disconnect(250) })
	}
	if len(outputs) == 0 {
		outputs = append(outputs, newTermOutput(os.Stdout, cfg.Pixels))
		closers = append(closers, func() { fmt.Fprintln(os.Stdout) })
	}

	strip = ledsense.NewStrip(outputs, cfg.Pixels)
	strip.SetMaxBrightnessPercent(cfg.Brightness)
	strip.SetLinearize(cfg.Linearize)

	closer = func() {
		for _, c := range closers {
			c()
		}
	}
	return strip, mq, closer, nil
}

func loadCalibration(cal *ledsense.Calibrator, id string) (err errors.Error) {
	errGo := cal.LoadCalibration(id)
	if errGo == nil {
		return nil
	}
	if errors.Is(errGo, ledsense.ErrNotFound) {
		logger.Warn("no saved calibration, using defaults", "id", id)
		return nil
	}
	return errors.Wrap(errGo).With("id", id).With("stack", stack.Trace().TrimRuntime())
}

func runCalibrate(ctx context.Context, cfg *Config) (err errors.Error) {
	dev, bus, err := openSensor(cfg)
	if err != nil {
		return err
	}
	defer bus.Close()

	strip, _, closeStrip, err := openStrip(cfg)
	if err != nil {
		return err
	}
	defer closeStrip()

	quitC := make(chan struct{})
	defer close(quitC)

	errorC := make(chan errors.Error, 1)
	go msgWatch(nil, errorC, quitC)

	fan := ledsense.StartFanOut[ledsense.Event](logger, quitC)
	ind := ledsense.NewIndicator(strip)
	go ind.Run(fan.SubC, errorC, quitC)
	go runMonitoring(os.Stdout, fan.SubC, quitC)

	// Wait for both listeners so the first prompt is not missed
	for deadline := time.Now().Add(time.Second); fan.Subscribers() < 2 && time.Now().Before(deadline); {
		time.Sleep(10 * time.Millisecond)
	}

	calibrator, closeStore, err := newCalibrator(cfg, dev, ledsense.WithEvents(fan.InC))
	if err != nil {
		return err
	}
	defer closeStore()

	result, errGo := calibrator.Run(ctx)
	if errGo != nil {
		return errors.Wrap(errGo, "calibration failed").With("stack", stack.Trace().TrimRuntime())
	}

	// Give the indicator a moment to show the outcome
	for deadline := time.Now().Add(time.Second); time.Now().Before(deadline); time.Sleep(10 * time.Millisecond) {
		if ev, ok := ind.Last(); ok && ev.Phase == ledsense.PhaseReady {
			break
		}
	}

	if errGo = calibrator.SaveCalibration(cfg.Calibration); errGo != nil {
		return errors.Wrap(errGo).With("stack", stack.Trace().TrimRuntime())
	}

	for _, ch := range model.Channels {
		fmt.Printf("%-6s min %5d max %5d\n", ch, result.Mins[ch], result.Maxs[ch])
	}
	if !result.Ready() {
		logger.Warn("calibration has channels where black read brighter than white, readings will saturate")
	}
	return nil
}

func runRead(cfg *Config) (err errors.Error) {
	dev, bus, err := openSensor(cfg)
	if err != nil {
		return err
	}
	defer bus.Close()

	calibrator, closeStore, err := newCalibrator(cfg, dev)
	if err != nil {
		return err
	}
	defer closeStore()

	if err = loadCalibration(calibrator, cfg.Calibration); err != nil {
		return err
	}

	for _, ch := range model.Channels {
		v, errGo := calibrator.Read(ch)
		if errGo != nil {
			return errors.Wrap(errGo).With("stack", stack.Trace().TrimRuntime())
		}
		fmt.Printf("%-6s %.3f\n", ch, v)
	}

	rgb, errGo := calibrator.ReadRGB()
	if errGo != nil {
		return errors.Wrap(errGo).With("stack", stack.Trace().TrimRuntime())
	}
	fmt.Printf("rgb    %s\n", rgb.Hex())
	return nil
}

func runWatch(ctx context.Context, cfg *Config) (err errors.Error) {
	dev, bus, err := openSensor(cfg)
	if err != nil {
		return err
	}
	defer bus.Close()

	calibrator, closeStore, err := newCalibrator(cfg, dev)
	if err != nil {
		return err
	}
	defer closeStore()

	if err = loadCalibration(calibrator, cfg.Calibration); err != nil {
		return err
	}

	strip, mq, closeStrip, err := openStrip(cfg)
	if err != nil {
		return err
	}
	defer closeStrip()

	quitC := make(chan struct{})
	errorC := make(chan errors.Error, 1)
	readingC := make(chan ledsense.Reading, 1)
	mirrorC := make(chan ledsense.Reading, 1)

	go msgWatch(nil, errorC, quitC)

	// Readings are published when an MQTT broker is configured and then
	// painted onto the strip
	go func() {
		defer close(mirrorC)
		for {
			select {
			case reading := <-readingC:
				if mq != nil {
					if errGo := mq.PublishReading(reading); errGo != nil {
						select {
						case errorC <- errors.Wrap(errGo).With("stack", stack.Trace().TrimRuntime()):
						case <-time.After(100 * time.Millisecond):
						}
					}
				}
				select {
				case mirrorC <- reading:
				case <-quitC:
					return
				}
			case <-quitC:
				return
			}
		}
	}()

	go ledsense.Mirror(strip, mirrorC, errorC, quitC)
	go ledsense.NewPoller(calibrator, cfg.Interval, nil, readingC, errorC).Run(quitC)

	<-ctx.Done()
	close(quitC)

	strip.Clear()
	if err = strip.Show(); err != nil {
		return err
	}
	return nil
}

func runFill(cfg *Config, hex string) (err errors.Error) {
	color, errGo := colors.HexToRgb(hex)
	if errGo != nil {
		return errors.Wrap(errGo).With("stack", stack.Trace().TrimRuntime())
	}

	strip, _, closeStrip, err := openStrip(cfg)
	if err != nil {
		return err
	}
	defer closeStrip()

	strip.SetAll(color)
	return strip.Show()
}

// runGradient blends between two colors in Lab space, one step per pixel
func runGradient(cfg *Config, fromHex string, toHex string) (err errors.Error) {
	from, errGo := colors.HexToRgb(fromHex)
	if errGo != nil {
		return errors.Wrap(errGo).With("stack", stack.Trace().TrimRuntime())
	}
	to, errGo := colors.HexToRgb(toHex)
	if errGo != nil {
		return errors.Wrap(errGo).With("stack", stack.Trace().TrimRuntime())
	}

	strip, _, closeStrip, err := openStrip(cfg)
	if err != nil {
		return err
	}
	defer closeStrip()

	strip.SetFrame(colors.Gradient(from, to, strip.Len()))
	return strip.Show()
}

func runRainbow(ctx context.Context, cfg *Config) (err errors.Error) {
	strip, _, closeStrip, err := openStrip(cfg)
	if err != nil {
		return err
	}
	defer closeStrip()

	rb := ledsense.NewRainbow(strip.Len(), cfg.Period, time.Now())

	ticker := time.NewTicker(cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case tm := <-ticker.C:
			if err = rb.Render(strip, tm); err != nil {
				logger.Warn(err.Error())
			}
		case <-ctx.Done():
			strip.Clear()
			return strip.Show()
		}
	}
}

func runClear(cfg *Config) (err errors.Error) {
	strip, _, closeStrip, err := openStrip(cfg)
	if err != nil {
		return err
	}
	defer closeStrip()

	strip.Clear()
	return strip.Show()
}
