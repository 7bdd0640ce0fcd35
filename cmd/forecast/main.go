package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/smarttransit/revenue-backend/internal/scenario"
	"github.com/smarttransit/revenue-backend/pkg/jwt"
	"github.com/urfave/cli/v2"
)

func main() {
	logger := logrus.New()
	logger.SetOutput(os.Stderr)
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	app := &cli.App{
		Name:  "forecast",
		Usage: "Offline revenue forecasts from scenario files",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "debug",
				Usage: "enable debug logging",
			},
		},
		Before: func(c *cli.Context) error {
			if c.Bool("debug") {
				logger.SetLevel(logrus.DebugLevel)
			}
			return nil
		},
		Commands: []*cli.Command{
			runCommand(logger),
			validateCommand(logger),
			tokenCommand(),
		},
	}

	if err := app.Run(os.Args); err != nil {
		logger.WithError(err).Fatal("forecast failed")
	}
}

func scenarioFlag() cli.Flag {
	return &cli.StringFlag{
		Name:     "scenario",
		Aliases:  []string{"s"},
		Usage:    "path to the scenario YAML file",
		Required: true,
	}
}

func loadScenario(c *cli.Context, logger *logrus.Logger) (*scenario.Report, error) {
	path := c.String("scenario")
	file, err := scenario.Load(path)
	if err != nil {
		return nil, err
	}

	service, unmatched, err := file.Build(time.Now)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	for _, booking := range unmatched {
		logger.WithFields(logrus.Fields{
			"origin":      booking.Origin.ID,
			"destination": booking.Destination.ID,
			"sale_day_x":  booking.SaleDayX,
			"price":       booking.Price,
		}).Warn("Dropped booking that matches no OD")
	}
	if c.Bool("strict") && len(unmatched) > 0 {
		return nil, fmt.Errorf("%s: %d bookings match no OD", path, len(unmatched))
	}

	report, err := scenario.BuildReport(file, service, unmatched, scenario.Filter{
		Origin:      c.String("origin"),
		Destination: c.String("destination"),
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	logger.WithFields(logrus.Fields{
		"service": report.Service,
		"day_x":   report.DayX,
		"stops":   len(report.Itinerary),
		"ods":     len(report.ODs),
	}).Debug("Scenario resolved")

	return report, nil
}

func runCommand(logger *logrus.Logger) *cli.Command {
	return &cli.Command{
		Name:  "run",
		Usage: "print itinerary, leg loads, histories and forecasts as JSON",
		Flags: []cli.Flag{
			scenarioFlag(),
			&cli.StringFlag{Name: "origin", Usage: "only report ODs leaving this stop"},
			&cli.StringFlag{Name: "destination", Usage: "only report ODs arriving at this stop"},
			&cli.BoolFlag{Name: "strict", Usage: "fail when a booking matches no OD"},
		},
		Action: func(c *cli.Context) error {
			report, err := loadScenario(c, logger)
			if err != nil {
				return err
			}

			encoder := json.NewEncoder(c.App.Writer)
			encoder.SetIndent("", "  ")
			return encoder.Encode(report)
		},
	}
}

func validateCommand(logger *logrus.Logger) *cli.Command {
	return &cli.Command{
		Name:  "validate",
		Usage: "check a scenario resolves without printing it",
		Flags: []cli.Flag{
			scenarioFlag(),
			&cli.BoolFlag{Name: "strict", Usage: "fail when a booking matches no OD"},
		},
		Action: func(c *cli.Context) error {
			path := c.String("scenario")
			file, err := scenario.Load(path)
			if err != nil {
				return err
			}

			service, unmatched, err := file.Build(time.Now)
			if err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
			if c.Bool("strict") && len(unmatched) > 0 {
				return fmt.Errorf("%s: %d bookings match no OD", path, len(unmatched))
			}

			logger.WithFields(logrus.Fields{
				"service":   service.Name,
				"legs":      len(service.Legs()),
				"ods":       len(service.ODs()),
				"unmatched": len(unmatched),
			}).Info("Scenario is valid")
			return nil
		},
	}
}

func tokenCommand() *cli.Command {
	return &cli.Command{
		Name:  "token",
		Usage: "issue an access token for the revenue API, signed with JWT_SECRET",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "email", Required: true},
			&cli.StringFlag{Name: "roles", Value: "analyst", Usage: "comma separated roles"},
			&cli.DurationFlag{Name: "ttl", Value: time.Hour},
		},
		Action: func(c *cli.Context) error {
			_ = godotenv.Load()

			secret := os.Getenv("JWT_SECRET")
			if secret == "" {
				return fmt.Errorf("JWT_SECRET is not set")
			}

			roles := []string{}
			for _, role := range strings.Split(c.String("roles"), ",") {
				if role = strings.TrimSpace(role); role != "" {
					roles = append(roles, role)
				}
			}

			token, err := jwt.NewService(secret, c.Duration("ttl")).GenerateAccessToken(uuid.New(), c.String("email"), roles)
			if err != nil {
				return err
			}

			fmt.Fprintln(c.App.Writer, token)
			return nil
		},
	}
}
