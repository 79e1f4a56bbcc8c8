package main

import (
	"flag"
	"log"
	"math/rand"
	"time"

	"github.com/hatstand/oregontx"
	"github.com/hatstand/oregontx/rf"
	"go.uber.org/zap"
)

var pin = flag.String("pin", "GPIO17", "GPIO connected to the transmitter")
var channel = flag.Int("channel", 1, "Channel 1, 2 or 3")
var id = flag.Int("id", -1, "Rolling id to pair as. Random if negative")
var humidity = flag.Bool("humidity", false, "Pair as a THGR228N instead of a THN132N")
var count = flag.Int("count", 10, "Number of transmissions")
var delay = flag.Duration("delay", 5*time.Second, "Pause between transmissions")

// A base station in search mode learns whichever id it hears first on a
// channel, the same as after a sensor's batteries are replaced.
func main() {
	flag.Parse()

	code := oregontx.ChannelCode(*channel)
	if code == 0 {
		log.Fatalf("Channel must be 1, 2 or 3: %d", *channel)
	}
	if *id > 0xff {
		log.Fatal("id must fit in a byte")
	}
	if *id < 0 {
		rand.Seed(time.Now().UnixNano())
		*id = rand.Intn(0x100)
	}

	logger, err := zap.NewDevelopment()
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer logger.Sync()

	p, err := rf.Open(*pin, logger)
	if err != nil {
		logger.Fatal("Failed to open pin", zap.Error(err))
	}
	defer p.Close()

	sender := oregontx.NewSender(rf.Spin{}, logger)
	sender.Configure(p, code, byte(*id), *humidity)

	logger.Info("Pairing", zap.Int("id", *id), zap.Int("channel", *channel), zap.Stringer("variant", sender.Variant()))
	for i := 0; i < *count; i++ {
		sender.Send(50, 20, true)
		if err := p.Err(); err != nil {
			logger.Fatal("Transmission failed", zap.Error(err))
		}
		time.Sleep(*delay)
	}
}
