package main

import (
	"context"
	"fmt"
	"os"

	"github.com/icecave/httpsredirect/cmd"
	"github.com/icecave/httpsredirect/health"
)

func main() {
	config := cmd.GetConfigFromEnvironment()

	checker := &health.HTTPChecker{
		Address:       ":" + config.Port,
		Secure:        true,
		ProxyProtocol: config.ProxyProtocol,
		Timeout:       config.CheckTimeout,
	}

	status := checker.Check(context.Background())
	fmt.Println(status.Message)
	if !status.IsHealthy {
		os.Exit(1)
	}
}
