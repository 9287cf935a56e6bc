package main

import (
	"context"
	"crypto/tls"
	"log"
	"net"
	"net/http"
	"os"
	"path"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/icecave/httpsredirect/cert"
	"github.com/icecave/httpsredirect/cmd"
	"github.com/icecave/httpsredirect/connection"
	"github.com/icecave/httpsredirect/proxyprotocol"
	"github.com/icecave/httpsredirect/rules"
	"golang.org/x/net/http2"
)

var version = "notset"

// loadTimeout is the time allowed for loading rewrite rules from Redis.
const loadTimeout = 5 * time.Second

func main() {
	config := cmd.GetConfigFromEnvironment()
	logger := log.New(os.Stdout, "", log.LstdFlags)

	if err := config.Validate(); err != nil {
		logger.Fatalln(err)
	}

	logger.Printf("httpsredirect %s", version)

	var (
		redisClient *redis.Client
		loader      *rules.RedisLoader
	)

	if config.Redis.Address != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     config.Redis.Address,
			Password: config.Redis.Password,
		})
		defer redisClient.Close()

		loader = &rules.RedisLoader{
			Client: redisClient,
			Key:    config.Redis.ReplacementsKey,
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), loadTimeout)
	replacements, err := rules.Load(ctx, config.Replacements, loader)
	cancel()
	if err != nil {
		logger.Fatalln(err)
	}

	logger.Printf("Loaded %d rewrite rule(s)", len(replacements))

	pipeline, err := cmd.NewPipeline(config, replacements)
	if err != nil {
		logger.Fatalln(err)
	}

	handler, err := cmd.NewHandler(config, pipeline, logger)
	if err != nil {
		logger.Fatalln(err)
	}

	tlsConfig, err := newTLSConfig(config, redisClient, logger)
	if err != nil {
		logger.Fatalln(err)
	}

	server := &http.Server{
		Addr:      ":" + config.Port,
		TLSConfig: tlsConfig,
		Handler:   handler,
		ErrorLog:  logger,
	}

	if err := http2.ConfigureServer(server, nil); err != nil {
		logger.Fatalln(err)
	}

	go redirectServer(config, handler, logger)

	listener := listen(config, config.Port, logger)
	logger.Printf("Listening on port %s", config.Port)

	err = server.ServeTLS(listener, "", "")
	if err != nil {
		logger.Fatalln(err)
	}
}

func newTLSConfig(
	config *cmd.Config,
	redisClient *redis.Client,
	logger *log.Logger,
) (*tls.Config, error) {
	defaultCertificate, err := tls.LoadX509KeyPair(
		path.Join(config.Certificates.BasePath, config.Certificates.ServerCertificate),
		path.Join(config.Certificates.BasePath, config.Certificates.ServerKey),
	)
	if err != nil {
		return nil, err
	}

	providers := []cert.Provider{
		&cert.FileProvider{
			BasePath: config.Certificates.BasePath,
			CacheAge: config.Certificates.CacheExpire,
			Logger:   logger,
		},
	}

	if redisClient != nil {
		providers = append(
			providers,
			&cert.RedisProvider{
				Client:   redisClient,
				Logger:   logger,
				CacheAge: config.Redis.CacheExpire,
			},
		)
	}

	adaptor := &cert.ProviderAdaptor{
		Provider: &cert.MultiProvider{
			Providers: providers,
		},
	}

	return &tls.Config{
		GetCertificate:           adaptor.GetCertificate,
		Certificates:             []tls.Certificate{defaultCertificate},
		NextProtos:               []string{"h2", "http/1.1"},
		MinVersion:               config.MinTLSVersion,
		MaxVersion:               config.MaxTLSVersion,
		CipherSuites:             config.CipherSuite,
		PreferServerCipherSuites: true,
		CurvePreferences:         []tls.CurveID{tls.CurveP256, tls.CurveP384, tls.CurveP521},
	}, nil
}

// listen opens a TCP listener on port. If PROXY protocol is enabled, headers
// are only accepted from the trusted proxies.
func listen(config *cmd.Config, port string, logger *log.Logger) net.Listener {
	listener, err := net.Listen("tcp", ":"+port)
	if err != nil {
		logger.Fatal(err)
	}

	if !config.ProxyProtocol {
		return listener
	}

	trustedProxies, err := connection.ParseNetworks(config.TrustedProxies)
	if err != nil {
		logger.Fatal(err)
	}

	return &proxyprotocol.Listener{
		Listener:       listener,
		TrustedProxies: trustedProxies,
		HeaderTimeout:  config.ProxyHeaderTimeout,
	}
}

// redirectServer serves the handler over plain HTTP. Requests that did not
// reach a trusted proxy securely are redirected by the interceptor.
func redirectServer(config *cmd.Config, handler http.Handler, logger *log.Logger) {
	listener := listen(config, config.InsecurePort, logger)
	logger.Printf("Listening on port %s", config.InsecurePort)

	server := &http.Server{
		Handler:  handler,
		ErrorLog: logger,
	}

	if err := server.Serve(listener); err != nil {
		logger.Fatalln(err)
	}
}
