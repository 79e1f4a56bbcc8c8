package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"

	"github.com/hatstand/oregontx/wirelesstag"
	"go.uber.org/zap"
)

var clientID = flag.String("client-id", "44c1dfbd-85ed-4dd4-b4d3-51cccd3c067c", "WirelessTag OAuth2 client ID")
var clientSecret = flag.String("client-secret", "", "WirelessTag OAuth2 client secret")
var tokenFile = flag.String("token-file", "", "Where to cache the token. Defaults to ~/.credentials/mytaglist.json")

// Authorizes once interactively so the daemon can start unattended.
func main() {
	flag.Parse()

	logger, err := zap.NewDevelopment()
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer logger.Sync()

	file := *tokenFile
	if file == "" {
		file, err = wirelesstag.TokenCacheFile()
		if err != nil {
			logger.Fatal("No token cache file", zap.Error(err))
		}
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	c, err := wirelesstag.NewClient(ctx, *clientID, *clientSecret, file, logger)
	if err != nil {
		logger.Fatal("Failed to authorize", zap.Error(err))
	}
	tags, err := c.GetTags(ctx)
	if err != nil {
		logger.Fatal("Failed to list tags", zap.Error(err))
	}
	for _, t := range tags {
		logger.Info("Tag",
			zap.String("name", t.Name),
			zap.Float64("temperature", t.Temperature),
			zap.Float64("humidity", t.Humidity),
			zap.Float64("battery", t.BatteryRemaining))
	}
	logger.Info("Token cached", zap.String("file", file))
}
