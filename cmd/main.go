package main

import "github.com/rabotim/marketplace/internal/app"

func main() {
	app.InitDefaultLogger()
	app.MustReadEnv()
	app.MustInitApplicationLogger()

	app.MustConnectPostgres()
	defer app.DisconnectPostgres()

	app.MustInitServices()

	app.MustStartDigestWorker()
	defer app.StopDigestWorker()

	app.MustListenAndServeHTTP()
}
