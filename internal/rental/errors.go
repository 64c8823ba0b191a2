package rental

// ErrorKind is the closed set of failures reported by Service. Every kind is
// an error value itself, so callers match with errors.Is or switch on it.
type ErrorKind uint8

const (
	ErrUserAlreadyRegistered ErrorKind = iota + 1
	ErrUserNotFound
	ErrUserNotAuthenticated
	ErrBikeAlreadyRegistered
	ErrBikeNotFound
	ErrUnavailableBike
	ErrRentNotFound
)

var kindMessages = map[ErrorKind]string{
	ErrUserAlreadyRegistered: "already registered user",
	ErrUserNotFound:          "user not found",
	ErrUserNotAuthenticated:  "user not authenticated",
	ErrBikeAlreadyRegistered: "already registered bike",
	ErrBikeNotFound:          "bike not found",
	ErrUnavailableBike:       "unavailable bike",
	ErrRentNotFound:          "rent not found",
}

var kindNames = map[ErrorKind]string{
	ErrUserAlreadyRegistered: "UserAlreadyRegistered",
	ErrUserNotFound:          "UserNotFound",
	ErrUserNotAuthenticated:  "UserNotAuthenticated",
	ErrBikeAlreadyRegistered: "BikeAlreadyRegistered",
	ErrBikeNotFound:          "BikeNotFound",
	ErrUnavailableBike:       "UnavailableBike",
	ErrRentNotFound:          "RentNotFound",
}

func (k ErrorKind) Error() string {
	if msg, ok := kindMessages[k]; ok {
		return msg
	}
	return "unknown rental error"
}

// String returns the kind name, e.g. "BikeNotFound".
func (k ErrorKind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "Unknown"
}
