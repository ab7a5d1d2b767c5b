package main

import (
	"fmt"
	"sync/atomic"

	"github.com/kbukum/inject/di"
	"github.com/kbukum/inject/introspect"
	"github.com/kbukum/inject/marker"
)

// TripTag scopes values to one trip. Trips are entered as child contexts.
var TripTag = marker.NewScope("trip")

// Motor drives a car.
type Motor interface {
	Describe() string
}

// DieselEngine is the only motor in the garage.
type DieselEngine struct {
	Power int
}

func (e *DieselEngine) Describe() string { return fmt.Sprintf("diesel %dhp", e.Power) }

// Wheel is built fresh for every request.
type Wheel struct {
	Serial int64
}

var wheelSerial atomic.Int64

func newWheel() *Wheel { return &Wheel{Serial: wheelSerial.Add(1)} }

// Car is a singleton assembled from a motor and a list of wheels. Its driver
// is resolved on demand, since the driver depends on the car.
type Car struct {
	Motor  Motor
	Wheels []*Wheel
	Driver di.Provider[*Driver]
}

func newCar(m Motor, wheels []*Wheel, d di.Provider[*Driver]) *Car {
	return &Car{Motor: m, Wheels: wheels, Driver: d}
}

// Driver drives the car.
type Driver struct {
	Car *Car
}

// Trip lives in the trip scope and is closed with it.
type Trip struct {
	Driver *Driver
	Closed bool
}

func (t *Trip) Close() error {
	t.Closed = true
	return nil
}

// describeTypes registers the garage types under the names the binding
// manifest uses.
func describeTypes() *introspect.Table {
	types := introspect.NewTable()
	types.MustRegister(
		introspect.Describe[Motor]().Named("Motor").Abstract(),
		introspect.Describe[*DieselEngine]().Named("DieselEngine").Scope(marker.Singleton).
			Constructor(func() *DieselEngine { return &DieselEngine{Power: 150} }),
		introspect.Describe[*Wheel]().Named("Wheel").Constructor(newWheel),
		introspect.Describe[*Car]().Named("Car").Scope(marker.Singleton).Constructor(newCar),
		introspect.Describe[*Driver]().Named("Driver").Scope(marker.Singleton).
			Constructor(func(c *Car) *Driver { return &Driver{Car: c} }),
		introspect.Describe[*Trip]().Named("Trip").Scope(TripTag.Marker()).
			Constructor(func(d *Driver) *Trip { return &Trip{Driver: d} }),
	)
	return types
}
