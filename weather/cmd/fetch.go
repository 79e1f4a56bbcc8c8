package main

import (
	"context"
	"flag"
	"log"
	"time"

	"github.com/hatstand/oregontx/weather"
)

var apiKey = flag.String("key", "", "OpenWeatherMap API key")
var location = flag.String("location", "London", "Location to fetch conditions for")

func main() {
	flag.Parse()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	c := weather.NewClient(*apiKey, time.Minute, nil)
	w, err := c.FetchCurrentWeather(ctx, *location)
	if err != nil {
		log.Fatalf("Failed to fetch weather: %v", err)
	}
	log.Printf("%+v", w)

	r, err := (&weather.Source{Client: c, Location: *location}).Read(ctx)
	if err != nil {
		log.Fatalf("Failed to read weather: %v", err)
	}
	log.Printf("Would send: %s", r)
}
