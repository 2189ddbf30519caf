package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"secrethouse/internal/ai"
	"secrethouse/internal/dates"
	"secrethouse/internal/modules/booking"
	"secrethouse/internal/modules/pricing"
)

func main() {
	pricingPath := flag.String("pricing", "config/pricing_config.json", "tariff table to price the result with")
	flag.Parse()

	apiKey := os.Getenv("GEMINI_API_KEY")
	if apiKey == "" {
		log.Fatal("GEMINI_API_KEY environment variable not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	provider, err := ai.NewGeminiProvider(ctx, apiKey)
	if err != nil {
		log.Fatalf("Failed to initialize AI provider: %v", err)
	}
	defer provider.Close()

	userMessage := strings.Join(flag.Args(), " ")
	if userMessage == "" {
		userMessage = "Хочу забронировать 12 часов на 20 марта с 14:00 до 23:00, нас двое, с сауной, телефон +375291234567"
	}
	fmt.Printf("User: %s\n", userMessage)

	fields, err := provider.ExtractBookingFields(ctx, userMessage)
	if err != nil {
		log.Fatalf("Error extracting fields: %v", err)
	}

	loc, err := time.LoadLocation("Europe/Minsk")
	if err != nil {
		loc = time.UTC
	}
	var bc booking.Context
	bc.Merge(fields, dates.NewExtractor(loc, nil))
	out, _ := json.MarshalIndent(bc, "", "  ")
	fmt.Printf("Booking context:\n%s\n", out)

	table, err := pricing.LoadTable(*pricingPath)
	if err != nil {
		log.Printf("Skipping price: %v", err)
		return
	}
	id, ok := bc.TariffID()
	if !ok {
		fmt.Println("Tariff not recognised; nothing to price.")
		return
	}
	req := pricing.Request{TariffID: &id, AddOns: bc.AddOns(), Guests: bc.NumberGuests}
	if start, err := dates.ParseDate(bc.StartDate, loc); err == nil {
		if end, err := dates.ParseDate(bc.FinishDate, loc); err == nil {
			req.Start, req.End = start, end
		}
	}
	b, err := pricing.NewService(table, "BYN").Calculate(ctx, req)
	if err != nil {
		log.Fatalf("Error pricing booking: %v", err)
	}
	fmt.Println(pricing.FormatBreakdown(b))
}
