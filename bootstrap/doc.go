// Package bootstrap runs an injector-backed application.
//
// NewApp validates the configuration and sets up logging. Start and Run then
// initialize tracing and metrics when enabled, build the injector from the
// configured scopes, binding manifests and code loaders, start the
// components (the injector first, the inspection server when enabled) and
// run the lifecycle hooks. Shutdown runs in reverse and closes the root
// context.
//
//	app, err := bootstrap.NewApp(&cfg, bootstrap.WithTypes(types), bootstrap.WithLoaders(garage))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	err = app.RunTask(ctx, func(ctx context.Context) error {
//	    car, err := di.Get[*Car](app.Injector())
//	    ...
//	})
package bootstrap
