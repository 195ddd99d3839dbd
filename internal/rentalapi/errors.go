package rentalapi

import (
	"errors"
	"fmt"
	"net/http"
)

// StatusError is a non-2xx upstream response.
type StatusError struct {
	Path   string
	Status int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("rentalapi: GET %s: status %d", e.Path, e.Status)
}

// OpError tags a failure with the operation that produced it.
type OpError struct {
	Op  string
	Err error
}

func (e *OpError) Error() string { return "rentalapi: " + e.Op + ": " + e.Err.Error() }
func (e *OpError) Unwrap() error { return e.Err }

func IsNotFound(err error) bool {
	var se *StatusError
	return errors.As(err, &se) && se.Status == http.StatusNotFound
}

// UserMessage is the text shown to people when err surfaces in the UI.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	var se *StatusError
	if errors.As(err, &se) {
		switch se.Status {
		case http.StatusNotFound:
			return "The requested car could not be found."
		case http.StatusInternalServerError:
			return "The rental service ran into a problem. Please try again later."
		case http.StatusServiceUnavailable:
			return "The rental service is temporarily unavailable. Please try again later."
		}
		return "Something went wrong while contacting the rental service."
	}
	var oe *OpError
	if errors.As(err, &oe) {
		switch oe.Op {
		case OpCars:
			return "Failed to fetch cars from API."
		case OpDetails:
			return "Failed to fetch car details."
		case OpBrands:
			return "Failed to fetch brands."
		}
	}
	return "Something went wrong while contacting the rental service."
}
