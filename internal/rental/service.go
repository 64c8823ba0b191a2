// Package rental coordinates users, bikes and rents of the bike sharing
// service and enforces the invariants between them.
package rental

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"github.com/ukydev/bikeshare/internal/auth"
	"github.com/ukydev/bikeshare/internal/metrics"
	"github.com/ukydev/bikeshare/internal/models"
)

// Options configure a Service. Zero values select the defaults.
type Options struct {
	// Now is the clock used to stamp and bill rents. Defaults to time.Now.
	Now func() time.Time
	// Logger receives one entry per state change. Defaults to the logrus standard logger.
	Logger log.FieldLogger
	// Metrics is optional.
	Metrics *metrics.Recorder
}

// Service owns every user, bike and rent. It is not safe for concurrent use.
type Service struct {
	crypt   auth.Crypt
	now     func() time.Time
	log     log.FieldLogger
	metrics *metrics.Recorder

	users map[string]*models.User
	bikes map[string]*models.Bike
	rents []*models.Rent
}

// NewService creates an empty Service protecting passwords with crypt.
func NewService(crypt auth.Crypt, opts Options) *Service {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Logger == nil {
		opts.Logger = log.StandardLogger()
	}
	return &Service{
		crypt:   crypt,
		now:     opts.Now,
		log:     opts.Logger,
		metrics: opts.Metrics,
		users:   make(map[string]*models.User),
		bikes:   make(map[string]*models.Bike),
	}
}

type protectResult struct {
	protected string
	err       error
}

// protect derives the protected form of password off the caller's goroutine.
func (s *Service) protect(ctx context.Context, password string) <-chan protectResult {
	ch := make(chan protectResult, 1)
	go func() {
		protected, err := s.crypt.Encrypt(ctx, password)
		ch <- protectResult{protected: protected, err: err}
	}()
	return ch
}

// RegisterUser protects the user's password and stores the user. It blocks
// until the password is protected or ctx is done; in the latter case nothing
// is stored and ctx.Err() is returned.
func (s *Service) RegisterUser(ctx context.Context, user *models.User) error {
	if _, ok := s.users[user.Email]; ok {
		return s.reject("register_user", ErrUserAlreadyRegistered, log.Fields{"email": user.Email})
	}

	var res protectResult
	select {
	case res = <-s.protect(ctx, user.Password):
	case <-ctx.Done():
		return ctx.Err()
	}
	if res.err != nil {
		return fmt.Errorf("protecting password: %w", res.err)
	}

	user.Password = res.protected
	s.users[user.Email] = user

	s.log.WithField("email", user.Email).Info("Registered user")
	return nil
}

// RemoveUser deletes the user. Rent history is kept.
func (s *Service) RemoveUser(email string) error {
	if _, ok := s.users[email]; !ok {
		return s.reject("remove_user", ErrUserNotFound, log.Fields{"email": email})
	}
	delete(s.users, email)

	s.log.WithField("email", email).Info("Removed user")
	return nil
}

// FindUser returns the user registered with email.
func (s *Service) FindUser(email string) (*models.User, error) {
	user, ok := s.users[email]
	if !ok {
		return nil, s.reject("find_user", ErrUserNotFound, log.Fields{"email": email})
	}
	return user, nil
}

// Authenticate checks password against the protected password of the user
// registered with email.
func (s *Service) Authenticate(email, password string) (*models.User, error) {
	user, ok := s.users[email]
	if !ok {
		return nil, s.reject("authenticate", ErrUserNotFound, log.Fields{"email": email})
	}

	match, err := s.crypt.Compare(password, user.Password)
	if err != nil {
		return nil, fmt.Errorf("comparing password: %w", err)
	}
	if !match {
		return nil, s.reject("authenticate", ErrUserNotAuthenticated, log.Fields{"email": email})
	}
	return user, nil
}

// RegisterBike stores bike as available, unless a rent of the same ID is still
// open. A bike without an ID gets a new one.
func (s *Service) RegisterBike(bike *models.Bike) error {
	if bike.ID == "" {
		bike.ID = uuid.NewString()
	}
	if _, ok := s.bikes[bike.ID]; ok {
		return s.reject("register_bike", ErrBikeAlreadyRegistered, log.Fields{"bike_id": bike.ID})
	}

	// a bike removed while rented stays out until that rent is returned
	bike.Available = s.openRentOf(bike.ID) == nil
	s.bikes[bike.ID] = bike

	s.log.WithFields(log.Fields{"bike_id": bike.ID, "rate": bike.Rate}).Info("Registered bike")
	return nil
}

// RemoveBike deletes the bike. Rent history is kept.
func (s *Service) RemoveBike(id string) error {
	if _, ok := s.bikes[id]; !ok {
		return s.reject("remove_bike", ErrBikeNotFound, log.Fields{"bike_id": id})
	}
	delete(s.bikes, id)

	s.log.WithField("bike_id", id).Info("Removed bike")
	return nil
}

// FindBike returns the bike registered with id.
func (s *Service) FindBike(id string) (*models.Bike, error) {
	bike, ok := s.bikes[id]
	if !ok {
		return nil, s.reject("find_bike", ErrBikeNotFound, log.Fields{"bike_id": id})
	}
	return bike, nil
}

// MoveBikeTo replaces the location of the bike.
func (s *Service) MoveBikeTo(id string, location models.Location) error {
	bike, ok := s.bikes[id]
	if !ok {
		return s.reject("move_bike", ErrBikeNotFound, log.Fields{"bike_id": id})
	}
	bike.Location = location

	if s.metrics != nil {
		s.metrics.BikeMoved()
	}
	s.log.WithFields(log.Fields{
		"bike_id": id,
		"lat":     location.Latitude,
		"lon":     location.Longitude,
	}).Info("Moved bike")
	return nil
}

// RentBike opens a rent of the bike for the user, starting now.
//
// Checks run in a fixed order: bike exists, user exists, bike available.
func (s *Service) RentBike(bikeID, email string) (*models.Rent, error) {
	bike, ok := s.bikes[bikeID]
	if !ok {
		return nil, s.reject("rent_bike", ErrBikeNotFound, log.Fields{"bike_id": bikeID, "email": email})
	}
	user, ok := s.users[email]
	if !ok {
		return nil, s.reject("rent_bike", ErrUserNotFound, log.Fields{"bike_id": bikeID, "email": email})
	}
	if !bike.Available {
		return nil, s.reject("rent_bike", ErrUnavailableBike, log.Fields{"bike_id": bikeID, "email": email})
	}

	bike.Available = false
	rent := models.NewRent(bike, user, s.now())
	s.rents = append(s.rents, rent)

	if s.metrics != nil {
		s.metrics.RentStarted()
	}
	s.log.WithFields(log.Fields{
		"bike_id": bikeID,
		"email":   email,
		"rent_id": rent.ID.Hex(),
	}).Info("Rented bike")
	return rent, nil
}

// ReturnBike closes the latest open rent of the bike by the user and returns
// the amount charged: elapsed hours times the bike's hourly rate.
//
// Checks run in a fixed order: bike exists, user exists, open rent exists.
func (s *Service) ReturnBike(bikeID, email string) (float64, error) {
	bike, ok := s.bikes[bikeID]
	if !ok {
		return 0, s.reject("return_bike", ErrBikeNotFound, log.Fields{"bike_id": bikeID, "email": email})
	}
	user, ok := s.users[email]
	if !ok {
		return 0, s.reject("return_bike", ErrUserNotFound, log.Fields{"bike_id": bikeID, "email": email})
	}
	rent := s.openRent(bike, user)
	if rent == nil {
		return 0, s.reject("return_bike", ErrRentNotFound, log.Fields{"bike_id": bikeID, "email": email})
	}

	end := s.now()
	elapsed := rent.Duration(end)
	amount := elapsed.Hours() * bike.Rate

	bike.Available = true
	rent.End = &end
	rent.Amount = amount

	if s.metrics != nil {
		s.metrics.RentReturned(amount, elapsed)
	}
	s.log.WithFields(log.Fields{
		"bike_id":  bikeID,
		"email":    email,
		"rent_id":  rent.ID.Hex(),
		"duration": elapsed,
		"amount":   amount,
	}).Info("Returned bike")
	return amount, nil
}

// openRent returns the most recent open rent of bike by user, or nil.
func (s *Service) openRent(bike *models.Bike, user *models.User) *models.Rent {
	for i := len(s.rents) - 1; i >= 0; i-- {
		r := s.rents[i]
		if r.Open() && r.Bike.ID == bike.ID && r.User.Email == user.Email {
			return r
		}
	}
	return nil
}

// openRentOf returns the most recent open rent of the bike by any user, or nil.
func (s *Service) openRentOf(bikeID string) *models.Rent {
	for i := len(s.rents) - 1; i >= 0; i-- {
		if r := s.rents[i]; r.Open() && r.Bike.ID == bikeID {
			return r
		}
	}
	return nil
}

// Users returns the registered users ordered by email.
func (s *Service) Users() []*models.User {
	users := make([]*models.User, 0, len(s.users))
	for _, u := range s.users {
		users = append(users, u)
	}
	slices.SortFunc(users, func(a, b *models.User) int { return strings.Compare(a.Email, b.Email) })
	return users
}

// Bikes returns the registered bikes ordered by ID.
func (s *Service) Bikes() []*models.Bike {
	bikes := make([]*models.Bike, 0, len(s.bikes))
	for _, b := range s.bikes {
		bikes = append(bikes, b)
	}
	slices.SortFunc(bikes, func(a, b *models.Bike) int { return strings.Compare(a.ID, b.ID) })
	return bikes
}

// Rents returns the rent history in the order rents were opened.
func (s *Service) Rents() []*models.Rent {
	return slices.Clone(s.rents)
}

func (s *Service) reject(op string, kind ErrorKind, fields log.Fields) error {
	if s.metrics != nil {
		s.metrics.Rejected(op, kind.String())
	}
	s.log.WithFields(fields).WithField("op", op).WithError(kind).Debug("Rejected operation")
	return kind
}
