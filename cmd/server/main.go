package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"contact-service/internal/client"
	"contact-service/internal/config"
	"contact-service/internal/handler"
	"contact-service/internal/ratelimit"
	"contact-service/internal/relay"
	"contact-service/internal/service"
	"contact-service/internal/tlsutil"
	"contact-service/internal/util"
)

func main() {
	cfg := config.LoadConfig()
	util.Init(cfg.Environment, cfg.Logging.Level, cfg.Logging.Format)
	defer util.Sync()

	// Rate-limit store: shared Redis window when configured, else in-process
	var store ratelimit.Store
	var redisClient *client.RedisClient
	if cfg.Redis.URL != "" {
		rc, err := client.NewRedisClient(cfg)
		if err != nil {
			util.Fatal("Failed to initialize Redis client", util.ErrorField(err))
		}
		redisClient = rc
		store = ratelimit.NewRedisStore(rc, cfg.RateLimit.Limit, cfg.RateLimit.Window)
	} else {
		util.Warn("No Redis configured - rate limits are per-instance and reset on restart")
		store = ratelimit.NewMemoryStore(cfg.RateLimit.Limit, cfg.RateLimit.Window)
	}
	defer func() {
		if redisClient != nil {
			redisClient.Close()
		}
	}()

	// Lead-event publishing is optional
	var publisher service.LeadPublisher
	var producer *client.KafkaProducer
	if len(cfg.Kafka.Brokers) > 0 {
		p, err := client.NewKafkaProducer(cfg, util.Get())
		if err != nil {
			util.Warn("Kafka producer initialization failed - proceeding without lead events", util.ErrorField(err))
		} else {
			producer = p
			publisher = p
		}
	}
	defer func() {
		if producer != nil {
			producer.Close()
		}
	}()

	if cfg.Relay.AccessKey == "" {
		// Fail closed per submission, but make the operator aware at startup
		util.Warn("Relay access key is not set - submissions will be rejected")
	}

	sender := relay.NewClient(cfg.Relay, util.Get())
	contactService := service.NewContactService(store, sender, publisher, util.Get())
	contactHandler := handler.NewContactHandler(contactService, util.Get())
	router := handler.NewRouter(contactHandler, cfg.Server.CORSOrigins, util.Get())

	var serverAddr string
	if cfg.Server.EnableTLS {
		serverAddr = fmt.Sprintf(":%d", cfg.Server.TLSPort)
	} else {
		serverAddr = fmt.Sprintf(":%d", cfg.Server.Port)
	}

	server := &http.Server{
		Addr:         serverAddr,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	var tlsManager *tlsutil.Manager
	if cfg.Server.EnableTLS {
		tlsManager = tlsutil.NewManager(&tlsutil.Config{
			EnableTLS:   cfg.Server.EnableTLS,
			AutoCert:    cfg.Server.AutoCert,
			Domain:      cfg.Server.Domain,
			CertFile:    cfg.Server.CertFile,
			KeyFile:     cfg.Server.KeyFile,
			AutoCertDir: cfg.Server.AutoCertDir,
			Email:       cfg.Server.Email,
		})
		server.TLSConfig = tlsManager.GetTLSConfig()

		if cfg.IsProduction() && cfg.Server.AutoCert {
			startProductionServerWithAutoCert(tlsManager, server, router)
			return
		}

		util.Info("Starting HTTPS server",
			util.String("environment", cfg.Environment),
			util.Int("port", cfg.Server.TLSPort),
		)
	} else {
		util.Info("Starting HTTP server",
			util.String("environment", cfg.Environment),
			util.Int("port", cfg.Server.Port),
		)
	}

	startServer(server, cfg)
}

func startProductionServerWithAutoCert(tlsManager *tlsutil.Manager, server *http.Server, router http.Handler) {
	autoCertManager := tlsManager.GetAutocertManager()
	if autoCertManager == nil {
		util.Fatal("AutoCert manager is not available in production")
	}

	// HTTP server for ACME challenge and redirect only
	httpServer := &http.Server{
		Addr:    ":80",
		Handler: autoCertManager.HTTPHandler(nil),
	}

	httpsServer := &http.Server{
		Addr:      ":443",
		Handler:   router,
		TLSConfig: server.TLSConfig,
	}

	go func() {
		util.Info("Starting HTTP redirect server on port 80")
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			util.Error("HTTP redirect server failed", util.ErrorField(err))
		}
	}()

	go func() {
		util.Info("Starting HTTPS server with AutoCert on port 443")
		if err := httpsServer.ListenAndServeTLS("", ""); err != nil && err != http.ErrServerClosed {
			util.Error("HTTPS AutoCert server failed", util.ErrorField(err))
		}
	}()

	waitForShutdown(httpsServer, httpServer)
}

func startServer(server *http.Server, cfg *config.Config) {
	go func() {
		var err error
		if cfg.Server.EnableTLS {
			if cfg.Server.CertFile != "" && cfg.Server.KeyFile != "" {
				err = server.ListenAndServeTLS(cfg.Server.CertFile, cfg.Server.KeyFile)
			} else {
				err = server.ListenAndServeTLS("", "")
			}
		} else {
			err = server.ListenAndServe()
		}
		if err != nil && err != http.ErrServerClosed {
			util.Fatal("Server failed to start", util.ErrorField(err))
		}
	}()

	util.Info("Server started successfully",
		util.String("environment", cfg.Environment),
		util.Bool("tls_enabled", cfg.Server.EnableTLS),
		util.String("address", server.Addr),
	)

	waitForShutdown(server)
}

func waitForShutdown(servers ...*http.Server) {
	signalChan := make(chan os.Signal, 1)
	signal.Notify(signalChan, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	sig := <-signalChan
	util.Info("Received shutdown signal", util.String("signal", sig.String()))

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	for _, srv := range servers {
		if srv != nil {
			if err := srv.Shutdown(ctx); err != nil {
				util.Error("Failed to shutdown server gracefully", util.ErrorField(err))
			} else {
				util.Info("Server shutdown completed")
			}
		}
	}
}
