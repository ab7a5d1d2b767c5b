// Package logger provides structured logging on top of zerolog.
//
// Messages take optional field maps, which keeps call sites uniform across
// the injector, the inspection server and the bootstrap layer:
//
//	log := logger.Get("di")
//	log.Debug("Instance constructed", logger.RequestFields("*garage.Engine", "@named(v8)"))
//
// # Configuration
//
//	logging:
//	  level: "info"
//	  format: "json"
package logger
