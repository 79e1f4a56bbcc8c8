package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/hatstand/oregontx"
	"github.com/hatstand/oregontx/rf"
)

var temperature = flag.Float64("temperature", 21.5, "Temperature in Celsius")
var humidity = flag.Uint("humidity", 0, "Relative humidity; implies a THGR228N frame when non-zero")
var batteryLow = flag.Bool("battery-low", false, "Report a low battery")
var channel = flag.Int("channel", 1, "Channel 1, 2 or 3")
var id = flag.Uint("id", 0x42, "Rolling sensor id")
var png = flag.String("png", "", "Also renders the pulse trace to this PNG file")

func main() {
	flag.Parse()

	code := oregontx.ChannelCode(*channel)
	if code == 0 {
		log.Fatalf("Channel must be 1, 2 or 3: %d", *channel)
	}
	if *id > 0xff || *humidity > 99 {
		log.Fatal("id must fit in a byte and humidity must be below 100")
	}

	rec := rf.NewRecorder()
	sender := oregontx.NewSender(rec, nil)
	sender.Configure(rec, code, byte(*id), *humidity != 0)
	sender.Send(byte(*humidity), float32(*temperature), !*batteryLow)

	frame := sender.Frame()
	fmt.Printf("%s %s checksum ok: %v\n", frame.Variant(), frame, frame.VerifyChecksum())
	fmt.Printf("airtime: %v\n", rec.Elapsed())
	fmt.Println(rec)

	if *png != "" {
		f, err := os.Create(*png)
		if err != nil {
			log.Fatalf("Failed to create %s: %v", *png, err)
		}
		defer f.Close()
		if err := rec.Chart(frame.String(), f); err != nil {
			log.Fatalf("Failed to render chart: %v", err)
		}
	}
}
