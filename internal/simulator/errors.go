package simulator

import "errors"

var (
	errAlreadyEnded          = errors.New("Call already ended")
	errTranslatorNotFound    = errors.New("Translator not found")
	errTranslatorUnavailable = errors.New("Translator is not available")
	errLanguageUnsupported   = errors.New("Translator does not support this language")
	errBadDuration           = errors.New("Duration must be either 30 or 60 minutes")
	errBookingConflict       = errors.New("Translator already has a booking at this time")
)
