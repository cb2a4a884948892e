// Copyright (C) 2025 Josh Simonot
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

package main

import (
	"heatmon/internal/collector"
	"heatmon/internal/config"
	"heatmon/internal/dashdata"
	"heatmon/internal/gateway"
	"heatmon/internal/provider"
	"heatmon/internal/timeseries"
	"heatmon/pkg/appctx"
	"heatmon/pkg/eventbus"
	"heatmon/pkg/logger"
	"heatmon/pkg/rootserv"
	"heatmon/pkg/service"
	"heatmon/pkg/sysmon"
	"os"
	"path/filepath"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {

	rootdir := os.Getenv("PROJECT_ROOT")
	if rootdir == "" {
		rootdir = "."
	}

	if err := logger.Init(filepath.Join(rootdir, "var/logs/heatmon.log")); err != nil {
		panic(err)
	}
	defer logger.Close()
	log := logger.New("Main")

	appConf, err := config.LoadFile(filepath.Join(rootdir, "var/config/heatmon.yml"))
	if err != nil {
		log.Fatal("%v", err)
	}

	heatpump, err := provider.New(appConf.Brand)
	if err != nil {
		log.Fatal("%v", err)
	}
	log.Info("provider: %s", heatpump.DisplayName())

	source, err := gateway.New(appConf.Gateway, heatpump)
	if err != nil {
		log.Fatal("%v", err)
	}

	// use conf to pass eventbus to whoever needs it
	appConf.EventBus = eventbus.New()

	influx := influxdb2.NewClient(appConf.Influx.URL, appConf.Influx.Token)
	defer influx.Close()

	ctx, ctxCancel := appctx.New()

	// init services
	server := rootserv.New(appConf.HTTPListenAddr)
	sysMonitorService := sysmon.New()
	store := timeseries.NewStore(influx, appConf.Influx.Org, appConf.Influx.Bucket)
	collectorService := collector.New(appConf, heatpump, source, influx)
	dashDataService := dashdata.New(appConf, heatpump, store)

	// attach web handler enabled services
	server.Attach("/logger", "Logger", logger.WebService())
	server.Attach("/monitor", "System Monitor", sysMonitorService)
	server.Attach("/metrics", "Prometheus Metrics", promhttp.Handler())
	server.Attach("/api", "Dashboard Data API", dashDataService)

	// start runnable services
	exitCh := service.Start(ctx, ctxCancel, []service.Runnable{
		collectorService,
		server,
	})

	// waits for all services to stop
	os.Exit(<-exitCh)
}
