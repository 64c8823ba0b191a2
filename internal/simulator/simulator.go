// Package simulator drives a rental.Service through a synthetic day of rides
// on a virtual clock.
package simulator

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand"
	"slices"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/ukydev/bikeshare/internal/auth"
	"github.com/ukydev/bikeshare/internal/metrics"
	"github.com/ukydev/bikeshare/internal/models"
	"github.com/ukydev/bikeshare/internal/rental"
)

const minRideDuration = 5 * time.Minute

// Cities for realistic fleets
var cities = []models.Location{
	{Latitude: 51.5074, Longitude: -0.1278},   // London
	{Latitude: 40.7128, Longitude: -74.0060},  // New York
	{Latitude: 40.4168, Longitude: -3.7038},   // Madrid
	{Latitude: 48.8566, Longitude: 2.3522},    // Paris
	{Latitude: 52.5200, Longitude: 13.4050},   // Berlin
	{Latitude: 52.3676, Longitude: 4.9041},    // Amsterdam
	{Latitude: 55.6761, Longitude: 12.5683},   // Copenhagen
	{Latitude: 35.6762, Longitude: 139.6503},  // Tokyo
	{Latitude: -23.5505, Longitude: -46.6333}, // São Paulo
	{Latitude: 43.6532, Longitude: -79.3832},  // Toronto
}

var bikeTypes = map[string][]string{
	"mountain bike": {"Caloi Explorer", "Trek Marlin", "Specialized Rockhopper"},
	"road bike":     {"Cannondale CAAD", "Giant Contend", "Bianchi Via Nirone"},
	"city bike":     {"Gazelle Esprit", "Brompton C Line", "Dutch Omafiets"},
}

// Config sizes one simulation run.
type Config struct {
	Riders          int
	Bikes           int
	Rides           int
	MaxRideDuration time.Duration
	Seed            int64
	// Start is the virtual time the simulation begins at.
	Start time.Time
}

// Report summarises a simulation run.
type Report struct {
	Riders     int
	Bikes      int
	Rides      int
	Rejected   int
	Revenue    float64
	DistanceKm float64
	Elapsed    time.Duration
}

type rider struct {
	email    string
	password string
}

type ride struct {
	bikeID string
	token  string
	from   models.Location
	to     models.Location
	end    time.Time
}

// virtualClock only moves when the simulation advances it.
type virtualClock struct {
	now time.Time
}

func (c *virtualClock) Now() time.Time { return c.now }

// Simulator registers a fleet and riders and plays rides against a rental.Service.
type Simulator struct {
	cfg     Config
	rng     *rand.Rand
	clock   *virtualClock
	service *rental.Service
	tokens  *auth.TokenService
	log     log.FieldLogger

	riders []rider
	bikes  []*models.Bike
	active []*ride
}

// New creates a Simulator whose rental.Service runs on the simulator's clock.
func New(cfg Config, crypt auth.Crypt, tokens *auth.TokenService, logger log.FieldLogger, recorder *metrics.Recorder) *Simulator {
	if cfg.Start.IsZero() {
		cfg.Start = time.Date(2024, 6, 1, 7, 0, 0, 0, time.UTC)
	}
	if cfg.MaxRideDuration < minRideDuration {
		cfg.MaxRideDuration = minRideDuration
	}
	clock := &virtualClock{now: cfg.Start}
	return &Simulator{
		cfg:   cfg,
		rng:   rand.New(rand.NewSource(cfg.Seed)),
		clock: clock,
		service: rental.NewService(crypt, rental.Options{
			Now:     clock.Now,
			Logger:  logger,
			Metrics: recorder,
		}),
		tokens: tokens,
		log:    logger,
	}
}

// Service exposes the simulated rental service.
func (s *Simulator) Service() *rental.Service {
	return s.service
}

// Run registers the fleet and riders, then plays cfg.Rides ride requests.
// Requests for a bike that is already out are counted as rejected.
func (s *Simulator) Run(ctx context.Context) (*Report, error) {
	report := &Report{}

	if err := s.registerFleet(); err != nil {
		return nil, err
	}
	if err := s.registerRiders(ctx); err != nil {
		return nil, err
	}
	report.Bikes = len(s.bikes)
	report.Riders = len(s.riders)

	requested := 0
	for requested < s.cfg.Rides || len(s.active) > 0 {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		next := s.earliestRide()
		arrival := s.clock.now.Add(time.Duration(1+s.rng.Intn(15)) * time.Minute)

		if next >= 0 && (requested >= s.cfg.Rides || !s.active[next].end.After(arrival)) {
			if err := s.finishRide(next, report); err != nil {
				return nil, err
			}
			continue
		}

		s.clock.now = arrival
		requested++
		if err := s.startRide(report); err != nil {
			return nil, err
		}
	}

	report.Elapsed = s.clock.now.Sub(s.cfg.Start)

	s.log.WithFields(log.Fields{
		"rides":    report.Rides,
		"rejected": report.Rejected,
		"revenue":  report.Revenue,
		"distance": report.DistanceKm,
		"elapsed":  report.Elapsed,
	}).Info("Simulation completed")
	return report, nil
}

func (s *Simulator) registerFleet() error {
	types := make([]string, 0, len(bikeTypes))
	for t := range bikeTypes {
		types = append(types, t)
	}
	// map order is random; keep runs reproducible under a seed
	slices.Sort(types)

	for i := 0; i < s.cfg.Bikes; i++ {
		bikeType := types[s.rng.Intn(len(types))]
		names := bikeTypes[bikeType]
		bike := models.NewBike(
			names[s.rng.Intn(len(names))],
			bikeType,
			48+s.rng.Intn(14),
			90+s.rng.Intn(60),
			math.Round((5+s.rng.Float64()*20)*100)/100,
			fmt.Sprintf("Fleet bike #%d", i+1),
			1+s.rng.Intn(5),
			nil,
		)
		bike.SerialNumber = fmt.Sprintf("SN-%08X", s.rng.Uint32())
		bike.Parts = []string{"frame", "fork", "wheelset", "drivetrain"}
		if err := s.service.RegisterBike(bike); err != nil {
			return fmt.Errorf("registering bike: %w", err)
		}
		if err := s.service.MoveBikeTo(bike.ID, s.randomLocation()); err != nil {
			return fmt.Errorf("placing bike: %w", err)
		}
		s.bikes = append(s.bikes, bike)
	}
	return nil
}

func (s *Simulator) registerRiders(ctx context.Context) error {
	for i := 0; i < s.cfg.Riders; i++ {
		r := rider{
			email:    fmt.Sprintf("rider%d@bikeshare.test", i+1),
			password: fmt.Sprintf("pw-%x", s.rng.Int63()),
		}
		user := models.NewUser(fmt.Sprintf("Rider %d", i+1), r.email, r.password)
		if err := s.service.RegisterUser(ctx, user); err != nil {
			return fmt.Errorf("registering rider: %w", err)
		}
		s.riders = append(s.riders, r)
	}
	return nil
}

// login authenticates the rider and returns a session token.
func (s *Simulator) login(r rider) (string, error) {
	user, err := s.service.Authenticate(r.email, r.password)
	if err != nil {
		return "", fmt.Errorf("authenticating rider: %w", err)
	}
	return s.tokens.GenerateToken(user)
}

func (s *Simulator) startRide(report *Report) error {
	if len(s.riders) == 0 || len(s.bikes) == 0 {
		return nil
	}
	r := s.riders[s.rng.Intn(len(s.riders))]
	bike := s.bikes[s.rng.Intn(len(s.bikes))]

	token, err := s.login(r)
	if err != nil {
		return err
	}
	claims, err := s.tokens.ValidateToken(token)
	if err != nil {
		return fmt.Errorf("validating token: %w", err)
	}

	if _, err := s.service.RentBike(bike.ID, claims.Email); err != nil {
		if errors.Is(err, rental.ErrUnavailableBike) {
			report.Rejected++
			return nil
		}
		return fmt.Errorf("renting bike: %w", err)
	}

	span := s.cfg.MaxRideDuration - minRideDuration
	duration := minRideDuration
	if span > 0 {
		duration += time.Duration(s.rng.Int63n(int64(span)))
	}
	speedKmh := 12 + s.rng.Float64()*8
	distance := speedKmh * duration.Hours()

	s.active = append(s.active, &ride{
		bikeID: bike.ID,
		token:  token,
		from:   bike.Location,
		to:     offset(bike.Location, distance, s.rng.Float64()*2*math.Pi),
		end:    s.clock.now.Add(duration),
	})
	return nil
}

func (s *Simulator) finishRide(i int, report *Report) error {
	rd := s.active[i]
	s.active = append(s.active[:i], s.active[i+1:]...)
	s.clock.now = rd.end

	claims, err := s.tokens.ValidateToken(rd.token)
	if err != nil {
		return fmt.Errorf("validating token: %w", err)
	}
	if err := s.service.MoveBikeTo(rd.bikeID, rd.to); err != nil {
		return fmt.Errorf("moving bike: %w", err)
	}
	amount, err := s.service.ReturnBike(rd.bikeID, claims.Email)
	if err != nil {
		return fmt.Errorf("returning bike: %w", err)
	}

	report.Rides++
	report.Revenue += amount
	report.DistanceKm += haversineKm(rd.from, rd.to)
	return nil
}

// earliestRide returns the index of the active ride ending first, or -1.
func (s *Simulator) earliestRide() int {
	idx := -1
	for i, rd := range s.active {
		if idx < 0 || rd.end.Before(s.active[idx].end) {
			idx = i
		}
	}
	return idx
}

func (s *Simulator) randomLocation() models.Location {
	base := cities[s.rng.Intn(len(cities))]
	return s.jitterLocation(base, 2000)
}

func (s *Simulator) jitterLocation(base models.Location, meters float64) models.Location {
	latMetersPerDeg := 111320.0
	lonMetersPerDeg := 111320.0 * math.Cos(base.Latitude*math.Pi/180)
	dLat := (s.rng.Float64()*2 - 1) * (meters / latMetersPerDeg)
	dLon := (s.rng.Float64()*2 - 1) * (meters / lonMetersPerDeg)
	return models.Location{Latitude: base.Latitude + dLat, Longitude: base.Longitude + dLon}
}

// offset moves base by km along bearing (radians, clockwise from north).
func offset(base models.Location, km, bearing float64) models.Location {
	kmPerDeg := 111.32
	dLat := km * math.Cos(bearing) / kmPerDeg
	dLon := km * math.Sin(bearing) / (kmPerDeg * math.Cos(base.Latitude*math.Pi/180))
	return models.Location{Latitude: base.Latitude + dLat, Longitude: base.Longitude + dLon}
}

func haversineKm(a, b models.Location) float64 {
	R := 6371.0
	dLat := (b.Latitude - a.Latitude) * math.Pi / 180
	dLon := (b.Longitude - a.Longitude) * math.Pi / 180
	lat1 := a.Latitude * math.Pi / 180
	lat2 := b.Latitude * math.Pi / 180
	h := math.Sin(dLat/2)*math.Sin(dLat/2) + math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
	return R * c
}
