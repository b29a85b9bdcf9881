// Package exporter exposes an OpenSprinkler controller as Prometheus
// metrics.
//
// Collector issues a single /ja request per scrape and converts the
// snapshot into gauges (opensprinkler_up, opensprinkler_station_active,
// opensprinkler_rain_delay_active, ...). A failed request reports
// opensprinkler_up 0 and increments opensprinkler_scrape_errors_total
// with the transport error category as the reason label.
//
// Server wraps a private registry with promhttp and adds /healthz:
//
//	client := sprinkler.NewClientWithURL("http://192.168.1.20")
//	srv := exporter.New(&exporter.Config{
//	    Listen:        ":9563",
//	    Endpoint:      client.BaseURL,
//	    Password:      sprinkler.NormalizePassword(pw),
//	    ScrapeTimeout: 5 * time.Second,
//	}, client)
//	log.Fatal(srv.Start(ctx))
package exporter
