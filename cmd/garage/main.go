// Command garage assembles a car from a binding manifest and takes it on a
// trip.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/kbukum/inject/bootstrap"
	"github.com/kbukum/inject/config"
	"github.com/kbukum/inject/di"
	"github.com/kbukum/inject/inspect"
	"github.com/kbukum/inject/loader"
	"github.com/kbukum/inject/logger"
)

func main() {
	var cfg bootstrap.Config
	if err := config.LoadConfig("garage", &cfg, config.WithEnvPrefix("GARAGE")); err != nil {
		fmt.Fprintln(os.Stderr, "garage:", err)
		os.Exit(1)
	}

	app, err := bootstrap.NewApp(&cfg,
		bootstrap.WithTypes(describeTypes()),
		bootstrap.WithCatalog(loader.NewCatalog().AddScope(TripTag)),
	)
	if err != nil {
		fmt.Fprintln(os.Stderr, "garage:", err)
		os.Exit(1)
	}

	if err := app.RunTask(context.Background(), func(ctx context.Context) error {
		return drive(app.Injector(), app.Logger)
	}); err != nil {
		app.Logger.Error("Garage failed", logger.ErrorFields("run", err))
		os.Exit(1)
	}
}

func drive(inj *di.Injector, log *logger.Logger) error {
	report, err := inspect.Analyze(inj)
	if err != nil {
		return err
	}
	log.Info("Binding graph analyzed", map[string]interface{}{
		"providers": len(report.Nodes),
		"levels":    len(report.Levels),
	})

	car, err := di.Get[*Car](inj)
	if err != nil {
		return err
	}
	serials := make([]int64, len(car.Wheels))
	for i, w := range car.Wheels {
		serials[i] = w.Serial
	}
	log.Info("Car assembled", map[string]interface{}{
		"motor":  car.Motor.Describe(),
		"wheels": serials,
	})

	trip, err := inj.EnterScope(TripTag.Marker())
	if err != nil {
		return err
	}
	t, err := di.Get[*Trip](trip)
	if err != nil {
		return err
	}
	driver, err := car.Driver.Get()
	if err != nil {
		return err
	}
	log.Info("Trip started", map[string]interface{}{
		"context_id":  trip.ID(),
		"same_driver": t.Driver == driver,
		"driver_owns": driver.Car == car,
	})
	return trip.Close()
}
