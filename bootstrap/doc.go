// Package bootstrap runs a service through its lifecycle: components start
// in registration order, ready hooks run once they are all up, a startup
// summary is printed, and on a signal the stop hooks and components shut
// down in reverse.
//
//	app, err := bootstrap.NewApp(cfg)
//	app.RegisterComponent(db)
//	app.RegisterComponent(httpServer)
//	app.OnStop(flushTelemetry)
//	return app.Run(ctx)
package bootstrap
