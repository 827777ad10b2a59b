package main

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"stowaway/internal/shipping/handler"
	"stowaway/internal/shipping/service"
	"stowaway/internal/shipping/usps"
	"stowaway/pkg/app"
	"stowaway/pkg/config"
	"stowaway/pkg/metrics"
)

const ServiceName = "shipping"

func main() {
	cfg := config.Load(ServiceName)
	if cfg.USPSUserID == "" {
		cfg.Log.Warn("USPS_USER_ID is not set, every estimate will report the rate as unavailable")
	}

	cfg.Log.Info("Starting Shipping service")

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	collector := metrics.NewCollector(registry)

	shippingService := service.NewShippingService(usps.NewClient(cfg), collector, cfg)

	serverApp := app.NewApplication(cfg)
	serverApp.SetApp(handler.NewShippingHandler(shippingService, cfg.Log), collector, registry)
	serverApp.Run()
}
