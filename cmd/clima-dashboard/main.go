package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"clima-dashboard/config"
	"clima-dashboard/internal/api"
	"clima-dashboard/internal/countries"
	"clima-dashboard/internal/lookup"
	"clima-dashboard/internal/mqtt"
	"clima-dashboard/internal/weather"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var (
	configFile string
	verbose    bool
)

func main() {
	if err := godotenv.Load(); err == nil {
		log.Println("Loaded environment from .env")
	}

	rootCmd := &cobra.Command{
		Use:   "clima-dashboard",
		Short: "Weather lookup dashboard",
		Long:  "Serves the weather widget and orchestrates OpenWeather lookups with air quality",
	}

	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(lookupCmd())
	rootCmd.AddCommand(testCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the dashboard service",
		Long:  "Start the HTTP API, the widget, and the optional MQTT publisher",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configFile)
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			client := weather.NewClient(
				cfg.Weather.APIKey,
				cfg.Weather.Units,
				cfg.Weather.Lang,
				cfg.Weather.Timeout,
			)

			probe := lookup.NewDialProbe(
				cfg.Connectivity.ProbeAddress,
				cfg.Connectivity.ProbeTimeout,
				cfg.Connectivity.CacheTTL,
			)

			// Build the session directory once at startup. Load degrades to
			// the static fallback set when the reference API is unreachable.
			loader := countries.NewLoader(cfg.Countries.Timeout)
			loadCtx, loadCancel := context.WithTimeout(context.Background(), cfg.Countries.Timeout)
			directory := loader.Load(loadCtx)
			loadCancel()
			log.Printf("Country directory loaded: %d entries", directory.Len())

			session := lookup.NewSession(directory, probe)
			service := lookup.NewService(lookup.ServiceConfig{
				API:            client,
				Session:        session,
				RequireCountry: cfg.Weather.RequireCountry,
			})

			publisher, err := mqtt.NewPublisher(mqtt.PublisherConfig{
				Broker:      cfg.MQTT.Broker,
				ClientID:    cfg.MQTT.ClientID,
				Username:    cfg.MQTT.Username,
				Password:    cfg.MQTT.Password,
				TopicPrefix: cfg.MQTT.TopicPrefix,
				Enabled:     cfg.MQTT.Enabled,
			})
			if err != nil {
				log.Printf("Warning: MQTT connection failed: %v", err)
			} else if cfg.MQTT.Enabled {
				log.Printf("MQTT connected to %s", cfg.MQTT.Broker)
				defer publisher.Close()
				service.OnOutcome(func(o lookup.Outcome) {
					if err := publisher.Publish(o); err != nil {
						log.Printf("MQTT publish failed: %v", err)
					}
				})
			}

			sigChan := make(chan os.Signal, 1)
			signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

			var server *api.Server
			if cfg.API.Enabled {
				server = api.NewServer(api.ServerConfig{
					Port:    cfg.API.Port,
					Service: service,
					Session: session,
					Loader:  loader,
					WebPath: cfg.API.WebPath,
				})

				go func() {
					if err := server.Start(); err != nil {
						log.Printf("API server error: %v", err)
					}
				}()
			}

			log.Println("Clima Dashboard started. Press Ctrl+C to stop.")

			<-sigChan
			log.Println("Shutting down...")

			if server != nil {
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := server.Stop(ctx); err != nil {
					log.Printf("Server shutdown error: %v", err)
				}
			}

			return nil
		},
	}
}

func lookupCmd() *cobra.Command {
	var country string
	var lat, lon float64

	cmd := &cobra.Command{
		Use:   "lookup [city]",
		Short: "Look up the weather once",
		Long:  "Run one lookup by city (optionally with --country) or by --lat/--lon and print the result",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configFile)
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			client := weather.NewClient(
				cfg.Weather.APIKey,
				cfg.Weather.Units,
				cfg.Weather.Lang,
				cfg.Weather.Timeout,
			)

			// One-shot path: the transport timeout is the only gate needed.
			session := lookup.NewSession(countries.Fallback(), lookup.StaticProbe(true))
			service := lookup.NewService(lookup.ServiceConfig{
				API:     client,
				Session: session,
			})

			var outcome lookup.Outcome
			byCoords := cmd.Flags().Changed("lat") && cmd.Flags().Changed("lon")
			switch {
			case byCoords:
				outcome = service.SubmitCoordinates(cmd.Context(), lat, lon)
			case len(args) == 1:
				outcome = service.SubmitQuery(cmd.Context(), args[0], country)
			default:
				return fmt.Errorf("provide a city argument or both --lat and --lon")
			}

			if !outcome.OK() {
				return fmt.Errorf("%s", outcome.Err.Message)
			}

			output, _ := json.MarshalIndent(outcome.View, "", "  ")
			fmt.Println(string(output))

			return nil
		},
	}

	cmd.Flags().StringVar(&country, "country", "", "ISO 3166-1 alpha-2 country code")
	cmd.Flags().Float64Var(&lat, "lat", 0, "latitude")
	cmd.Flags().Float64Var(&lon, "lon", 0, "longitude")

	return cmd
}

func testCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "test",
		Short: "Test upstream connectivity",
		Long:  "Check the connectivity probe, the country reference API, and the OpenWeather API key",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configFile)
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			probe := lookup.NewDialProbe(
				cfg.Connectivity.ProbeAddress,
				cfg.Connectivity.ProbeTimeout,
				cfg.Connectivity.CacheTTL,
			)

			fmt.Printf("Probing %s...\n", cfg.Connectivity.ProbeAddress)
			if !probe.Online() {
				fmt.Println("Connectivity FAILED: no network")
				return fmt.Errorf("offline")
			}
			fmt.Println("Connectivity OK")

			loader := countries.NewLoader(cfg.Countries.Timeout)
			directory := loader.Load(cmd.Context())
			if directory.FromNetwork() {
				fmt.Printf("Country list OK (%d entries)\n", directory.Len())
			} else {
				fmt.Printf("Country list FAILED, using fallback (%d entries)\n", directory.Len())
			}

			client := weather.NewClient(
				cfg.Weather.APIKey,
				cfg.Weather.Units,
				cfg.Weather.Lang,
				cfg.Weather.Timeout,
			)

			reading, err := client.CurrentByQuery(cmd.Context(), "Madrid,ES")
			if err != nil {
				fmt.Printf("Weather API FAILED: %v\n", err)
				return err
			}

			fmt.Println("Weather API OK!")
			fmt.Printf("\nSample reading:\n")
			fmt.Printf("  Place:       %s\n", reading.PlaceName)
			fmt.Printf("  Temperature: %.1f °C\n", reading.TemperatureC)
			fmt.Printf("  Conditions:  %s\n", reading.Description)
			fmt.Printf("  Humidity:    %d %%\n", reading.HumidityPct)
			fmt.Printf("  Wind:        %.1f m/s\n", reading.WindSpeedMs)

			return nil
		},
	}
}
