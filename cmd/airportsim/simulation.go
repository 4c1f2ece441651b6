package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/eiannone/keyboard"
	"golang.org/x/sync/errgroup"

	airport "go-airport"
)

type simulation struct {
	airport *airport.Airport
	logger  *slog.Logger
	cfg     config
}

// run flies every aircraft and returns when all of them are done.
func (s *simulation) run(ctx context.Context) error {
	var g, gctx = errgroup.WithContext(ctx)
	for i := range s.cfg.Aircraft {
		var aircraftID = fmt.Sprintf("Aircraft %d", i)
		g.Go(func() error {
			return s.fly(gctx, aircraftID)
		})
	}
	return g.Wait()
}

// runInteractive flies the fleet in the background and redraws the status board
// every second until the fleet is done or q is pressed.
func (s *simulation) runInteractive(ctx context.Context) error {
	var ctx2, cancel = context.WithCancel(ctx)
	defer cancel()

	var done = make(chan error, 1)
	go func() {
		done <- s.run(ctx2)
	}()

	var ticker = time.NewTicker(1 * time.Second)
	defer ticker.Stop()

	var sigCh = make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	if err := keyboard.Open(); err != nil {
		return fmt.Errorf("failed to initialize keyboard: %w", err)
	}
	defer keyboard.Close()

	var keyCh = make(chan rune)
	go func() {
		for {
			char, _, err := keyboard.GetKey()
			if err != nil {
				return
			}
			keyCh <- char
		}
	}()

	printStatus(s.airport)

	for {
		select {
		case <-ticker.C:
			printStatus(s.airport)
		case err := <-done:
			printStatus(s.airport)
			fmt.Printf("\nAll aircraft done.\n")
			return err
		case key := <-keyCh:
			if key == 'q' || key == 'Q' {
				fmt.Printf("\n\nShutting down gracefully...\n")
				cancel()
				return ignoreCanceled(<-done)
			}
		case sig := <-sigCh:
			fmt.Printf("\n\nReceived signal %v, shutting down...\n", sig)
			cancel()
			return ignoreCanceled(<-done)
		}
	}
}

// fly lands one aircraft and, when configured, takes it off again.
func (s *simulation) fly(ctx context.Context, aircraftID string) error {
	var logger = s.logger.With("aircraft_id", aircraftID)

	var landing, err = retry(ctx, s.cfg.RetryInterval, func() (airport.LandingToken, bool, error) {
		var token, err = s.airport.RequestLanding(aircraftID)
		return token, token.Outcome == airport.Proceed, err
	})
	if err != nil {
		return err
	}
	logger.Info("landing cleared", "runway_id", landing.RunwayID, "parking_stand_id", landing.ParkingStandID)

	if err := s.delay(ctx); err != nil {
		return err
	}

	if err := s.airport.PerformLanding(landing); err != nil {
		logger.Warn("[FAIL] landing", "error", err)
		return nil
	}
	logger.Info("[PASS] landing")

	if !s.cfg.Takeoff {
		return nil
	}

	takeoff, err := retry(ctx, s.cfg.RetryInterval, func() (airport.TakeoffToken, bool, error) {
		var token, err = s.airport.RequestTakeoff(aircraftID)
		if errors.Is(err, airport.ErrUnknownAircraft) {
			// Still landing.
			return token, false, nil
		}
		return token, token.Outcome == airport.Proceed, err
	})
	if err != nil {
		return err
	}
	logger.Info("takeoff cleared", "runway_id", takeoff.RunwayID)

	if err := s.delay(ctx); err != nil {
		return err
	}

	if err := s.airport.PerformTakeoff(takeoff); err != nil {
		logger.Warn("[FAIL] takeoff", "error", err)
		return nil
	}
	logger.Info("[PASS] takeoff")
	return nil
}

// delay sleeps for a random duration up to MaxDelay.
func (s *simulation) delay(ctx context.Context) error {
	if s.cfg.MaxDelay <= 0 {
		return nil
	}

	var timer = time.NewTimer(rand.N(s.cfg.MaxDelay))
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// retry calls request until it reports ok, fails, or ctx is done.
func retry[T any](ctx context.Context, interval time.Duration, request func() (T, bool, error)) (T, error) {
	for {
		var token, ok, err = request()
		if err != nil || ok {
			return token, err
		}

		select {
		case <-ctx.Done():
			return token, ctx.Err()
		case <-time.After(interval):
		}
	}
}

func ignoreCanceled(err error) error {
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func printStatus(a *airport.Airport) {
	fmt.Print("\033[2J\033[H") // Clear screen and move cursor to top
	fmt.Println(a.String())

	fmt.Printf("\nControls:\n")
	fmt.Printf("  [q] Quit gracefully\n")
}
